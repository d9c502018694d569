package analysis

import (
	"sort"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
)

// corroborationBoost is added per independent corroborating source beyond the
// first. Corroboration increases but never decreases confidence.
const corroborationBoost = 0.1

// AggregateCauses merges per-evidence extracted causes into the bucketed case
// view. Causes with the same normalized description are treated as the same
// cause: confidence becomes the single-source maximum plus a boost per extra
// independent source, clamped to [0,1].
func AggregateCauses(results []*evidence.ProcessingResult) []domain.Cause {
	type agg struct {
		cause   domain.Cause
		sources map[string]bool
		maxConf float64
	}

	byKey := make(map[string]*agg)
	var order []string // first-seen order keeps output deterministic
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, c := range res.Causes {
			key := normalizeDescription(c.Description)
			if key == "" {
				continue
			}
			a, ok := byKey[key]
			if !ok {
				a = &agg{cause: c, sources: make(map[string]bool), maxConf: c.Confidence}
				byKey[key] = a
				order = append(order, key)
			}
			for _, src := range c.SupportingEvidence {
				a.sources[src] = true
			}
			if c.Confidence > a.maxConf {
				a.maxConf = c.Confidence
			}
			if a.cause.StandardViolated == "" && c.StandardViolated != "" {
				a.cause.StandardViolated = c.StandardViolated
			}
		}
	}

	out := make([]domain.Cause, 0, len(byKey))
	for _, key := range order {
		a := byKey[key]
		conf := a.maxConf
		if n := len(a.sources); n >= 2 {
			conf = a.maxConf + corroborationBoost*float64(n-1)
		}
		if conf > 1 {
			conf = 1
		}
		if conf < 0 {
			conf = 0
		}

		ids := make([]string, 0, len(a.sources))
		for id := range a.sources {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		c := a.cause
		c.Confidence = conf
		c.SupportingEvidence = ids
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := bucketRank(out[i].Bucket), bucketRank(out[j].Bucket)
		if bi != bj {
			return bi < bj
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Description < out[j].Description
	})
	return out
}

func bucketRank(b domain.CauseBucket) int {
	switch b {
	case domain.BucketImmediate:
		return 0
	case domain.BucketContributing:
		return 1
	default:
		return 2
	}
}
