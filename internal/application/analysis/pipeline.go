package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
)

// ErrNoUsableEvidence is a pipeline-level failure: every item degraded and no
// timeline could be built at all. Aborts the investigate() call.
var ErrNoUsableEvidence = errors.New("no usable evidence: all items failed processing")

// ErrNoEvidence is returned when investigate() runs on a case with no
// evidence attached.
var ErrNoEvidence = errors.New("case has no evidence")

// Pipeline runs the full analysis sequence for one case: concurrent evidence
// processing, then (after the barrier) timeline merge, inconsistency
// detection, root cause aggregation, and similarity lookup in strict order.
type Pipeline struct {
	Processor      *Processor
	Detector       *Detector
	Matcher        *Matcher
	MaxConcurrency int
	Log            *zap.Logger
}

// Run executes the pipeline. Evidence-level failures are isolated into the
// per-item summaries; only the inability to build any timeline aborts the run.
func (p *Pipeline) Run(ctx context.Context, c *cases.Case, items []*evidence.Item, now time.Time) (*domain.InvestigationResult, error) {
	if len(items) == 0 {
		return nil, ErrNoEvidence
	}

	// Fan-out: each item gets its own result slot; no shared mutation. The
	// Wait below is the barrier the merge stages depend on.
	slots := make([]*evidence.ProcessingResult, len(items))

	workers := p.MaxConcurrency
	if workers <= 0 {
		workers = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	baseDate := c.Metadata.DateOccurred.UTC()
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = p.Processor.Process(gctx, item, baseDate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evidence processing aborted: %w", err)
	}

	result := &domain.InvestigationResult{GeneratedAt: now.UTC()}

	failed := 0
	for _, res := range slots {
		result.Evidence = append(result.Evidence, domain.EvidenceSummary{
			EvidenceID: res.EvidenceID,
			Confidence: res.Confidence,
			FactCount:  len(res.Facts),
			EventCount: len(res.Events),
			Error:      res.Error,
		})
		if res.Failed() {
			failed++
			result.MarkDegraded(fmt.Sprintf("evidence %s: %s", res.EvidenceID, res.Error))
		}
	}
	if failed == len(slots) {
		return nil, ErrNoUsableEvidence
	}

	timeline, unanchored := BuildTimeline(slots)
	result.Timeline = timeline
	result.UnanchoredFacts = unanchored

	result.Inconsistencies = p.Detector.Detect(timeline)
	result.Causes = AggregateCauses(slots)
	result.Recommendations = DeriveRecommendations(result.Causes)

	matches, degradedReason := p.Matcher.Find(ctx, c, result.Causes)
	if degradedReason != "" {
		result.MarkDegraded(degradedReason)
	}
	if matches == nil {
		matches = []domain.SimilarCaseMatch{}
	}
	result.SimilarCases = matches

	p.Log.Info("investigation pipeline complete",
		zap.String("case_id", string(c.ID)),
		zap.Int("evidence", len(items)),
		zap.Int("evidence_failed", failed),
		zap.Int("timeline_events", len(result.Timeline)),
		zap.Int("inconsistencies", len(result.Inconsistencies)),
		zap.Int("causes", len(result.Causes)),
		zap.Int("similar_cases", len(result.SimilarCases)),
		zap.Bool("degraded", result.Degraded))

	return result, nil
}
