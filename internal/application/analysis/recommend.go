package analysis

import (
	"fmt"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// minRecommendationConfidence filters speculative causes out of the CAPA feed.
const minRecommendationConfidence = 0.4

// DeriveRecommendations turns aggregated causes into corrective/preventive
// recommendations. Deterministic: one recommendation per qualifying cause, in
// cause order, ids sequential.
func DeriveRecommendations(causes []domain.Cause) []domain.Recommendation {
	var out []domain.Recommendation
	for _, c := range causes {
		if c.Confidence < minRecommendationConfidence {
			continue
		}
		out = append(out, domain.Recommendation{
			ID:       fmt.Sprintf("REC-%03d", len(out)+1),
			Title:    "Address " + c.Description,
			Priority: recommendationPriority(c),
			Timeline: recommendationTimeline(c.Bucket),
			CauseRef: c.Description,
		})
	}
	return out
}

func recommendationPriority(c domain.Cause) string {
	switch c.Bucket {
	case domain.BucketImmediate:
		if c.Confidence >= 0.8 {
			return "critical"
		}
		return "high"
	case domain.BucketSystemic:
		return "high"
	default:
		return "medium"
	}
}

func recommendationTimeline(b domain.CauseBucket) string {
	switch b {
	case domain.BucketImmediate:
		return "immediate"
	case domain.BucketContributing:
		return "30_days"
	default:
		return "90_days"
	}
}
