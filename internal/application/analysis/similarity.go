package analysis

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/similarity"
)

// Matcher queries the historical case index. Similarity is advisory: on any
// store failure the investigation degrades to empty matches instead of
// failing.
type Matcher struct {
	Store   similarity.Store
	TopK    int
	Timeout time.Duration
	Log     *zap.Logger
}

// Find builds a case descriptor from the incident metadata and the aggregated
// root-cause categories and runs a bounded-time lookup. The returned string
// is a degradation reason; empty means the lookup succeeded.
func (m *Matcher) Find(ctx context.Context, c *cases.Case, causes []domain.Cause) ([]domain.SimilarCaseMatch, string) {
	if m.Store == nil {
		return nil, "similarity store not configured"
	}

	topK := m.TopK
	if topK <= 0 {
		topK = 5
	}
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	matches, err := m.Store.Query(ctx, Descriptor(c, causes), topK)
	if err != nil {
		m.Log.Warn("similarity lookup degraded",
			zap.String("case_id", string(c.ID)), zap.Error(err))
		return nil, "similarity lookup failed: " + err.Error()
	}
	return matches, ""
}

// Descriptor renders the searchable text for a case: incident type, facility
// type, industry, and distinct cause categories.
func Descriptor(c *cases.Case, causes []domain.Cause) string {
	parts := []string{
		c.Metadata.IncidentType,
		c.Metadata.FacilityType,
		c.Metadata.Industry,
	}
	seen := make(map[string]bool)
	var cats []string
	for _, cause := range causes {
		s := string(cause.Category)
		if !seen[s] {
			seen[s] = true
			cats = append(cats, s)
		}
	}
	sort.Strings(cats)
	parts = append(parts, cats...)
	return strings.Join(parts, " ")
}
