package oracle

import "context"

// Extraction is the structured shape the oracle must return. Fields are
// best-effort; the processor validates and normalizes before trusting them.
type Extraction struct {
	KeyFacts        []string            `json:"key_facts"`
	TimelineEvents  []RawEvent          `json:"timeline_events"`
	Entities        map[string][]string `json:"entities,omitempty"`
	Causes          []RawCause          `json:"causes,omitempty"`
	Summary         string              `json:"summary,omitempty"`
	ConfidenceScore *float64            `json:"confidence_score,omitempty"`
}

// RawEvent is an oracle-reported occurrence before timestamp parsing.
type RawEvent struct {
	Time        string `json:"time"`
	Description string `json:"event"`
	Severity    string `json:"severity,omitempty"`
}

// RawCause is an oracle-reported cause before taxonomy normalization.
type RawCause struct {
	Description      string  `json:"cause"`
	Category         string  `json:"category,omitempty"`
	Level            string  `json:"level,omitempty"` // immediate|contributing|systemic
	Confidence       float64 `json:"confidence"`
	StandardViolated string  `json:"standard_violated,omitempty"`
}

// Client is the reasoning oracle port. The core treats this as a capability:
// test doubles substitute without touching pipeline logic.
type Client interface {
	Extract(ctx context.Context, evidenceType, content, instructions string) (*Extraction, error)
}
