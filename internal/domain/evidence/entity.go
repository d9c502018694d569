package evidence

import (
	"time"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// Type enum for evidence items. Dispatch in the processor is keyed by this
// enum; unrecognized strings are rejected at the boundary.
type Type string

const (
	TypeWitnessStatement  Type = "witness_statement"
	TypeSCADALog          Type = "scada_log"
	TypeMaintenanceRecord Type = "maintenance_record"
	TypePhoto             Type = "photo"
	TypePIDDrawing        Type = "pid_drawing"
	TypeHAZOPReport       Type = "hazop_report"
	TypeProcedure         Type = "procedure"
	TypeAuditReport       Type = "audit_report"
	TypeVideo             Type = "video"
)

var knownTypes = map[Type]bool{
	TypeWitnessStatement:  true,
	TypeSCADALog:          true,
	TypeMaintenanceRecord: true,
	TypePhoto:             true,
	TypePIDDrawing:        true,
	TypeHAZOPReport:       true,
	TypeProcedure:         true,
	TypeAuditReport:       true,
	TypeVideo:             true,
}

// ParseType validates a raw evidence type string.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !knownTypes[t] {
		return "", unsupportedType(s)
	}
	return t, nil
}

// Item is one unit of submitted material. Immutable once stored; the raw
// content lives in the content store under ContentKey.
type Item struct {
	ID         string            `json:"evidence_id"`
	CaseID     string            `json:"case_id"`
	TenantID   string            `json:"tenant_id"`
	Type       Type              `json:"type"`
	ContentKey string            `json:"content_key"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IngestedAt time.Time         `json:"ingested_at"`
	Ordinal    int               `json:"ordinal"` // ingestion order within the case, 1-based
}

// ProcessingResult holds what the oracle extracted from one item during one
// analysis run. Recomputed wholesale on every run, never patched.
type ProcessingResult struct {
	EvidenceID string                    `json:"evidence_id"`
	Facts      []string                  `json:"facts,omitempty"`
	Events     []analysis.TimelineEvent  `json:"events,omitempty"`
	Unanchored []analysis.UnanchoredFact `json:"unanchored,omitempty"`
	Entities   map[string][]string       `json:"entities,omitempty"`
	Causes     []analysis.Cause          `json:"causes,omitempty"`
	Summary    string                    `json:"summary,omitempty"`
	Confidence float64                   `json:"confidence"`
	Error      string                    `json:"error,omitempty"`
}

// Failed reports whether the item degraded to a zero-confidence result.
func (r *ProcessingResult) Failed() bool { return r.Error != "" }
