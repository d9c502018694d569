package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

// DefaultTimestampTolerance is the divergence below which two reports of the
// same occurrence are considered to agree.
const DefaultTimestampTolerance = 2 * time.Minute

// Detector flags cross-source conflicts on the merged timeline. Detection
// never mutates the timeline; it only annotates.
type Detector struct {
	Tolerance time.Duration
}

func NewDetector(tolerance time.Duration) *Detector {
	if tolerance <= 0 {
		tolerance = DefaultTimestampTolerance
	}
	return &Detector{Tolerance: tolerance}
}

// Detect groups events that describe the same real-world occurrence and emits
// one Inconsistency per group whose timestamps diverge beyond the tolerance.
// Relatedness is transitive: if A~B and B~C, all three are compared as one
// group. Output is symmetric in the input order of sources.
func (d *Detector) Detect(events []domain.TimelineEvent) []domain.Inconsistency {
	n := len(events)
	if n < 2 {
		return nil
	}

	tokens := make([][]string, n)
	for i, ev := range events {
		tokens[i] = descriptionTokens(ev.Description)
	}

	// Union-find over pairwise relatedness keeps grouping transitive.
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) { parent[find(i)] = find(j) }

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if related(tokens[i], tokens[j]) {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	var out []domain.Inconsistency
	for _, members := range groups {
		inc := d.checkGroup(events, members)
		if inc != nil {
			out = append(out, *inc)
		}
	}

	// Deterministic output order regardless of map iteration.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return strings.Join(out[i].SourceEvidenceIDs, ",") < strings.Join(out[j].SourceEvidenceIDs, ",")
	})
	return out
}

// checkGroup emits an inconsistency when a related group spans more than one
// source and its timestamps spread beyond the tolerance.
func (d *Detector) checkGroup(events []domain.TimelineEvent, members []int) *domain.Inconsistency {
	if len(members) < 2 {
		return nil
	}

	sources := make(map[string]bool)
	min, max := events[members[0]].Timestamp, events[members[0]].Timestamp
	for _, i := range members {
		ev := events[i]
		sources[ev.SourceEvidenceID] = true
		if ev.Timestamp.Before(min) {
			min = ev.Timestamp
		}
		if ev.Timestamp.After(max) {
			max = ev.Timestamp
		}
	}
	if len(sources) < 2 {
		return nil
	}

	// A spread equal to the tolerance already counts as disagreement.
	spread := max.Sub(min)
	if spread < d.Tolerance {
		return nil
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	values := make([]string, 0, len(members))
	seen := make(map[string]bool)
	for _, i := range members {
		ev := events[i]
		v := fmt.Sprintf("%s: %q at %s", ev.SourceEvidenceID, ev.Description,
			ev.Timestamp.UTC().Format(time.RFC3339))
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)

	return &domain.Inconsistency{
		SourceEvidenceIDs: ids,
		Description: fmt.Sprintf("sources disagree on %q by %s",
			events[members[0]].Description, spread.Round(time.Second)),
		Severity:        conflictSeverity(spread),
		DivergentValues: values,
	}
}

func conflictSeverity(spread time.Duration) domain.ConflictSeverity {
	switch {
	case spread > 30*time.Minute:
		return domain.ConflictMajor
	case spread >= 5*time.Minute:
		return domain.ConflictMedium
	default:
		return domain.ConflictMinor
	}
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "at": true, "in": true, "on": true,
	"of": true, "to": true, "was": true, "is": true, "and": true, "for": true,
}

func descriptionTokens(s string) []string {
	fields := strings.Fields(normalizeDescription(s))
	out := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

// related uses token overlap: two descriptions refer to the same occurrence
// when more than half of the smaller description's tokens appear in the
// other. Symmetric by construction.
func related(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	overlap := 0
	for _, t := range b {
		if set[t] {
			overlap++
		}
	}
	small := len(a)
	if len(b) < small {
		small = len(b)
	}
	return overlap*2 > small
}
