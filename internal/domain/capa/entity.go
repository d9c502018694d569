package capa

import "time"

// Status enum for a tracked action
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDeferred   Status = "deferred"
)

var knownStatuses = map[Status]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusDeferred:   true,
}

// ValidStatus reports whether s is a recognized action status.
func ValidStatus(s Status) bool { return knownStatuses[s] }

// Action is one corrective/preventive item derived from a recommendation.
type Action struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"` // low|medium|high|critical
	Status    Status    `json:"status"`
	Timeline  string    `json:"timeline"` // immediate|30_days|90_days
	CauseRef  string    `json:"cause_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker summarizes the CAPA state of a case.
type Tracker struct {
	CaseID         string    `json:"case_id"`
	TotalActions   int       `json:"total_actions"`
	CompletionRate float64   `json:"completion_rate"`
	Actions        []*Action `json:"actions,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Completion computes the completed fraction over a set of actions.
func Completion(actions []*Action) float64 {
	if len(actions) == 0 {
		return 0
	}
	done := 0
	for _, a := range actions {
		if a.Status == StatusCompleted {
			done++
		}
	}
	return float64(done) / float64(len(actions))
}
