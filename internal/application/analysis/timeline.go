package analysis

import (
	"sort"
	"strings"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
)

// BuildTimeline merges per-evidence timeline events into one globally ordered
// timeline. Results must be in evidence ingestion order; ties on timestamp
// break by ingestion order (earlier-added evidence wins placement) and then
// lexically by description, so the order is reproducible regardless of
// processing concurrency. Exact duplicates (same timestamp, same normalized
// description) collapse into the first occurrence; extra sources are recorded
// as corroboration. Candidates without a parseable timestamp surface as
// unanchored facts.
func BuildTimeline(results []*evidence.ProcessingResult) ([]domain.TimelineEvent, []domain.UnanchoredFact) {
	type candidate struct {
		event   domain.TimelineEvent
		ordinal int
	}

	var all []candidate
	var unanchored []domain.UnanchoredFact
	for i, res := range results {
		if res == nil {
			continue
		}
		for _, ev := range res.Events {
			all = append(all, candidate{event: ev, ordinal: i})
		}
		unanchored = append(unanchored, res.Unanchored...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.event.Timestamp.Equal(b.event.Timestamp) {
			return a.event.Timestamp.Before(b.event.Timestamp)
		}
		if a.ordinal != b.ordinal {
			return a.ordinal < b.ordinal
		}
		return a.event.Description < b.event.Description
	})

	type dupKey struct {
		unix int64
		desc string
	}
	seen := make(map[dupKey]int) // key -> index into merged
	var merged []domain.TimelineEvent
	for _, c := range all {
		key := dupKey{c.event.Timestamp.Unix(), normalizeDescription(c.event.Description)}
		if idx, ok := seen[key]; ok {
			kept := &merged[idx]
			if kept.SourceEvidenceID != c.event.SourceEvidenceID &&
				!containsString(kept.CorroboratedBy, c.event.SourceEvidenceID) {
				kept.CorroboratedBy = append(kept.CorroboratedBy, c.event.SourceEvidenceID)
			}
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, c.event)
	}

	return merged, unanchored
}

// normalizeDescription lowercases and collapses whitespace/punctuation so
// trivially re-worded duplicates still match.
func normalizeDescription(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
