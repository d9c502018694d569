package cases

import (
	"time"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// ID tipe untuk Case
type CaseID string

// State enum for the investigation lifecycle
type State string

const (
	StateDraft              State = "draft"
	StateEvidenceCollection State = "evidence_collection"
	StateAnalysisInProgress State = "analysis_in_progress"
	StateAnalyzed           State = "analyzed"
	StateAnalysisFailed     State = "analysis_failed"
	StateReporting          State = "reporting"
	StateClosed             State = "closed"
)

// Severity enum for the incident itself
type Severity string

const (
	SeverityMinor        Severity = "minor"
	SeverityModerate     Severity = "moderate"
	SeverityMajor        Severity = "major"
	SeverityCatastrophic Severity = "catastrophic"
)

// RecognizedSeverities is the closed set accepted at case creation.
var RecognizedSeverities = map[Severity]bool{
	SeverityMinor:        true,
	SeverityModerate:     true,
	SeverityMajor:        true,
	SeverityCatastrophic: true,
}

// Metadata holds the incident details supplied at creation time.
type Metadata struct {
	IncidentID                     string            `json:"incident_id"`
	DateOccurred                   time.Time         `json:"date_occurred"`
	Location                       string            `json:"location"`
	Industry                       string            `json:"industry"`
	FacilityType                   string            `json:"facility_type"`
	IncidentType                   string            `json:"incident_type"`
	Severity                       Severity          `json:"severity"`
	ActualConsequences             map[string]any    `json:"actual_consequences,omitempty"`
	RegulatoryNotificationRequired bool              `json:"regulatory_notification_required"`
	StandardsApplicable            []string          `json:"standards_applicable,omitempty"`
	Extra                          map[string]string `json:"extra,omitempty"`
}

// Aggregate Root: Case
type Case struct {
	ID          CaseID                        `json:"id"`
	TenantID    string                        `json:"tenant_id"`
	Metadata    Metadata                      `json:"metadata"`
	State       State                         `json:"state"`
	EvidenceIDs []string                      `json:"evidence_ids"`
	Result      *analysis.InvestigationResult `json:"result,omitempty"`
	FailureNote string                        `json:"failure_note,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// CanAddEvidence reports whether evidence may be attached in the current state.
// Adding evidence after a failed run is allowed so the case can be retried.
func (c *Case) CanAddEvidence() bool {
	return c.State == StateEvidenceCollection || c.State == StateAnalysisFailed
}

// CanInvestigate reports whether an analysis run may start.
func (c *Case) CanInvestigate() bool {
	return c.State == StateEvidenceCollection || c.State == StateAnalysisFailed
}

// HasResult reports whether a completed analysis is cached on the case.
func (c *Case) HasResult() bool {
	return c.Result != nil &&
		(c.State == StateAnalyzed || c.State == StateReporting || c.State == StateClosed)
}

// Validate checks the required creation fields.
func (m Metadata) Validate() error {
	switch {
	case m.IncidentID == "":
		return invalidMetadata("incident_id is required")
	case m.DateOccurred.IsZero():
		return invalidMetadata("date_occurred is required")
	case m.Location == "":
		return invalidMetadata("location is required")
	case m.Industry == "":
		return invalidMetadata("industry is required")
	case m.IncidentType == "":
		return invalidMetadata("incident_type is required")
	case m.Severity == "":
		return invalidMetadata("severity is required")
	case !RecognizedSeverities[m.Severity]:
		return invalidMetadata("severity must be one of minor, moderate, major, catastrophic")
	}
	return nil
}
