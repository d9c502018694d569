package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/oracle"
)

const (
	// defaultConfidence is used when the oracle omits confidence_score.
	defaultConfidence = 0.5
	maxOracleAttempts = 3
)

// Processor normalizes one evidence item into a ProcessingResult. Safe for
// concurrent use; it mutates no shared state.
type Processor struct {
	Oracle  oracle.Client
	Content evidence.ContentStore
	Log     *zap.Logger
}

// Process dispatches the item to its extraction strategy, invokes the oracle
// with bounded retry, and validates the structured output. Item-level
// failures are recorded on the result with confidence 0; they never abort the
// case pipeline.
func (p *Processor) Process(ctx context.Context, item *evidence.Item, baseDate time.Time) *evidence.ProcessingResult {
	res := &evidence.ProcessingResult{EvidenceID: item.ID}

	strat, ok := strategies[item.Type]
	if !ok {
		res.Error = fmt.Sprintf("%v: %q", evidence.ErrUnsupportedType, item.Type)
		return res
	}

	content, err := p.readContent(ctx, item.ContentKey)
	if err != nil {
		res.Error = fmt.Sprintf("read content: %v", err)
		return res
	}
	if strings.TrimSpace(content) == "" {
		// Short-circuit: no oracle call for empty evidence.
		res.Error = evidence.ErrEmptyContent.Error()
		return res
	}

	ext, err := p.extractWithRetry(ctx, item, strat, content)
	if err != nil {
		p.Log.Warn("evidence extraction degraded",
			zap.String("evidence_id", item.ID),
			zap.String("type", string(item.Type)),
			zap.Error(err))
		res.Error = err.Error()
		return res
	}

	p.normalize(res, item, strat, ext, baseDate)
	return res
}

func (p *Processor) readContent(ctx context.Context, key string) (string, error) {
	rc, err := p.Content.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// extractWithRetry wraps the oracle call with exponential backoff on
// transient failures (timeouts, malformed output). Permanent errors such as
// context cancellation stop immediately.
func (p *Processor) extractWithRetry(ctx context.Context, item *evidence.Item, strat strategy, content string) (*oracle.Extraction, error) {
	var ext *oracle.Extraction

	op := func() error {
		var err error
		ext, err = p.Oracle.Extract(ctx, string(item.Type), content, strat.Instructions)
		if err == nil {
			return nil
		}
		if errors.Is(err, oracle.ErrTimeout) || errors.Is(err, oracle.ErrMalformedResponse) {
			return err // transient, retry
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, maxOracleAttempts-1), ctx))
	if err != nil {
		return nil, err
	}
	return ext, nil
}

// normalize validates the oracle output against the strategy's expected shape
// and converts it into domain types. Partially usable output is accepted
// best-effort; completely unusable output degrades to the empty-result path.
func (p *Processor) normalize(res *evidence.ProcessingResult, item *evidence.Item, strat strategy, ext *oracle.Extraction, baseDate time.Time) {
	for _, key := range strat.RequiredKeys {
		if key == "key_facts" && len(ext.KeyFacts) == 0 {
			p.Log.Debug("oracle output missing key_facts", zap.String("evidence_id", item.ID))
		}
	}

	for _, f := range ext.KeyFacts {
		if s := strings.TrimSpace(f); s != "" {
			res.Facts = append(res.Facts, s)
		}
	}

	for _, raw := range ext.TimelineEvents {
		desc := strings.TrimSpace(raw.Description)
		if desc == "" {
			continue
		}
		ts, ok := parseEventTime(raw.Time, baseDate)
		if !ok {
			res.Unanchored = append(res.Unanchored, domain.UnanchoredFact{
				Description:      desc,
				SourceEvidenceID: item.ID,
			})
			continue
		}
		res.Events = append(res.Events, domain.TimelineEvent{
			Timestamp:        ts,
			Description:      desc,
			SourceEvidenceID: item.ID,
			Severity:         parseEventSeverity(raw.Severity),
		})
	}

	if len(ext.Entities) > 0 {
		res.Entities = make(map[string][]string, len(ext.Entities))
		for cat, names := range ext.Entities {
			uniq := dedupeStrings(names)
			if len(uniq) > 0 {
				res.Entities[cat] = uniq
			}
		}
	}

	for _, rc := range ext.Causes {
		desc := strings.TrimSpace(rc.Description)
		if desc == "" {
			continue
		}
		cat := parseCauseCategory(rc.Category)
		res.Causes = append(res.Causes, domain.Cause{
			Description:        desc,
			Category:           cat,
			Bucket:             parseCauseBucket(rc.Level, cat),
			Confidence:         clamp01(rc.Confidence),
			StandardViolated:   strings.TrimSpace(rc.StandardViolated),
			SupportingEvidence: []string{item.ID},
		})
	}

	res.Summary = strings.TrimSpace(ext.Summary)
	if ext.ConfidenceScore != nil {
		res.Confidence = clamp01(*ext.ConfidenceScore)
	} else {
		res.Confidence = defaultConfidence
	}
}

// eventTimeLayouts are tried in order; time-of-day-only stamps anchor to the
// incident date.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM"}

func parseEventTime(s string, baseDate time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			anchored := time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
			return anchored, true
		}
	}
	return time.Time{}, false
}

func parseEventSeverity(s string) domain.EventSeverity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return domain.SeverityCritical
	case "high":
		return domain.SeverityHigh
	case "medium", "moderate":
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func parseCauseCategory(s string) domain.CauseCategory {
	c := strings.ToLower(s)
	switch {
	case strings.Contains(c, "equipment"), strings.Contains(c, "material"), strings.Contains(c, "technical"):
		return domain.CategoryEquipmentMaterial
	case strings.Contains(c, "human"), strings.Contains(c, "personnel"), strings.Contains(c, "operator"):
		return domain.CategoryHumanPersonnel
	case strings.Contains(c, "organiz"), strings.Contains(c, "management"):
		return domain.CategoryOrganizationalManagement
	default:
		return domain.CategoryEnvironmental
	}
}

// parseCauseBucket trusts an explicit oracle level when it is recognized,
// otherwise derives the bucket from the category: equipment and acute
// triggers are immediate, people/procedure gaps contributing, organizational
// failures systemic.
func parseCauseBucket(level string, cat domain.CauseCategory) domain.CauseBucket {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "immediate":
		return domain.BucketImmediate
	case "contributing":
		return domain.BucketContributing
	case "systemic":
		return domain.BucketSystemic
	}
	switch cat {
	case domain.CategoryEquipmentMaterial:
		return domain.BucketImmediate
	case domain.CategoryOrganizationalManagement:
		return domain.BucketSystemic
	default:
		return domain.BucketContributing
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
