package analysis

import "time"

// EventSeverity ordinal for timeline events and inconsistencies
type EventSeverity string

const (
	SeverityLow      EventSeverity = "low"
	SeverityMedium   EventSeverity = "medium"
	SeverityHigh     EventSeverity = "high"
	SeverityCritical EventSeverity = "critical"
)

// TimelineEvent is a single dated occurrence derived from one evidence item.
// Every event traces to exactly one source; corroborating sources are
// recorded on the kept event when duplicates merge.
type TimelineEvent struct {
	Timestamp        time.Time     `json:"timestamp"`
	Description      string        `json:"description"`
	SourceEvidenceID string        `json:"source_evidence_id"`
	Severity         EventSeverity `json:"severity"`
	CorroboratedBy   []string      `json:"corroborated_by,omitempty"`
}

// UnanchoredFact is a timeline candidate whose timestamp could not be parsed.
// Surfaced on the result instead of being dropped.
type UnanchoredFact struct {
	Description      string `json:"description"`
	SourceEvidenceID string `json:"source_evidence_id"`
}

// ConflictSeverity scales an inconsistency by the magnitude of divergence.
type ConflictSeverity string

const (
	ConflictMinor  ConflictSeverity = "minor"  // < 5 minutes apart
	ConflictMedium ConflictSeverity = "medium" // 5-30 minutes
	ConflictMajor  ConflictSeverity = "major"  // > 30 minutes
)

// Inconsistency is a detected conflict between two or more evidence sources
// about the same occurrence. Symmetric: source order never matters.
type Inconsistency struct {
	SourceEvidenceIDs []string         `json:"source_evidence_ids"`
	Description       string           `json:"description"`
	Severity          ConflictSeverity `json:"severity"`
	DivergentValues   []string         `json:"divergent_values"`
}

// CauseCategory per the CCPS-style taxonomy
type CauseCategory string

const (
	CategoryEquipmentMaterial        CauseCategory = "Equipment/Material"
	CategoryHumanPersonnel           CauseCategory = "Human/Personnel"
	CategoryOrganizationalManagement CauseCategory = "Organizational/Management"
	CategoryEnvironmental            CauseCategory = "Environmental"
)

// CauseBucket: immediate trigger, enabling condition, or organizational failure
type CauseBucket string

const (
	BucketImmediate    CauseBucket = "immediate"
	BucketContributing CauseBucket = "contributing"
	BucketSystemic     CauseBucket = "systemic"
)

// Cause is one aggregated root cause with its supporting evidence.
type Cause struct {
	Description        string        `json:"description"`
	Category           CauseCategory `json:"category"`
	Bucket             CauseBucket   `json:"bucket"`
	Confidence         float64       `json:"confidence"`
	StandardViolated   string        `json:"standard_violated,omitempty"`
	SupportingEvidence []string      `json:"supporting_evidence,omitempty"`
}

// SimilarCaseMatch references a related historical case.
type SimilarCaseMatch struct {
	CaseID          string  `json:"case_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Title           string  `json:"title"`
}

// Recommendation is a corrective/preventive measure derived from a cause.
type Recommendation struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"` // low|medium|high|critical
	Timeline string `json:"timeline"` // immediate|30_days|90_days
	CauseRef string `json:"cause_ref,omitempty"`
}

// EvidenceSummary records the per-item processing outcome on the result so
// degraded items stay visible.
type EvidenceSummary struct {
	EvidenceID string  `json:"evidence_id"`
	Confidence float64 `json:"confidence"`
	FactCount  int     `json:"fact_count"`
	EventCount int     `json:"event_count"`
	Error      string  `json:"error,omitempty"`
}

// InvestigationResult is the single artifact cached on an analyzed case.
type InvestigationResult struct {
	Timeline        []TimelineEvent    `json:"timeline"`
	UnanchoredFacts []UnanchoredFact   `json:"unanchored_facts,omitempty"`
	Inconsistencies []Inconsistency    `json:"inconsistencies,omitempty"`
	Causes          []Cause            `json:"causes,omitempty"`
	SimilarCases    []SimilarCaseMatch `json:"similar_cases"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
	Evidence        []EvidenceSummary  `json:"evidence"`
	Degraded        bool               `json:"degraded"`
	DegradedReasons []string           `json:"degraded_reasons,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// CausesByBucket groups the aggregated causes for report consumers.
func (r *InvestigationResult) CausesByBucket() map[CauseBucket][]Cause {
	out := make(map[CauseBucket][]Cause, 3)
	for _, c := range r.Causes {
		out[c.Bucket] = append(out[c.Bucket], c)
	}
	return out
}

// MarkDegraded records a recovered failure on the result.
func (r *InvestigationResult) MarkDegraded(reason string) {
	r.Degraded = true
	r.DegradedReasons = append(r.DegradedReasons, reason)
}
