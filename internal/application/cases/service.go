package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/incident-orchestrator/internal/application"
	appanalysis "github.com/bryanwahyu/incident-orchestrator/internal/application/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/capa"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/report"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/similarity"
)

// Service implements the case lifecycle use-cases. Thread-safe: concurrent
// calls on different cases run freely, a second Investigate on the same case
// fails fast with ErrCaseState.
type Service struct {
	Cases    domain.Repository
	Evidence evidence.Repository
	Content  evidence.ContentStore
	Pipeline *appanalysis.Pipeline
	Reports  report.Generator
	CAPA     capa.Repository
	Clock    application.Clock
	// Index is optional. When set, closed cases are added to the
	// historical similarity index.
	Index similarity.Indexer
	Log   *zap.Logger

	mu       sync.Mutex
	inFlight map[domain.CaseID]bool
	evLocks  map[domain.CaseID]*sync.Mutex
}

// evidenceLock returns the per-case mutex that serializes evidence intake,
// keeping EVD ordinals unique and EvidenceIDs appends lost-update free.
func (s *Service) evidenceLock(id domain.CaseID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evLocks == nil {
		s.evLocks = make(map[domain.CaseID]*sync.Mutex)
	}
	l, ok := s.evLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.evLocks[id] = l
	}
	return l
}

// CreateInvestigation validates the incident metadata, creates the case in
// draft, and immediately moves it to evidence collection.
func (s *Service) CreateInvestigation(ctx context.Context, tenant string, md domain.Metadata) (*domain.Case, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	if md.FacilityType == "" {
		md.FacilityType = "industrial"
	}

	now := s.Clock.Now().UTC()
	c := &domain.Case{
		ID:        domain.CaseID("CASE-" + uuid.New().String()),
		TenantID:  tenant,
		Metadata:  md,
		State:     domain.StateDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Draft exists only momentarily; the case is immediately open for evidence.
	c.State = domain.StateEvidenceCollection

	if err := s.Cases.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save case: %w", err)
	}

	s.Log.Info("investigation created",
		zap.String("case_id", string(c.ID)),
		zap.String("incident_id", md.IncidentID),
		zap.String("industry", md.Industry),
		zap.String("severity", string(md.Severity)))
	return c, nil
}

// AddEvidence stores the raw content and appends an immutable evidence record.
// Legal only while collecting evidence or after a failed analysis run.
func (s *Service) AddEvidence(ctx context.Context, tenant string, caseID domain.CaseID, rawType string, content io.Reader, size int64, contentType string, metadata map[string]string) (*evidence.Item, error) {
	l := s.evidenceLock(caseID)
	l.Lock()
	defer l.Unlock()

	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	if !c.CanAddEvidence() {
		return nil, domain.StateError(c.ID, c.State, "add evidence")
	}

	evType, err := evidence.ParseType(rawType)
	if err != nil {
		return nil, err
	}

	n, err := s.Evidence.CountByCase(ctx, tenant, string(caseID))
	if err != nil {
		return nil, fmt.Errorf("count evidence: %w", err)
	}
	ordinal := n + 1
	id := fmt.Sprintf("EVD-%03d", ordinal)

	key := fmt.Sprintf("cases/%s/evidence/%s", caseID, id)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	storedKey, err := s.Content.Put(ctx, key, content, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store evidence content: %w", err)
	}

	item := &evidence.Item{
		ID:         id,
		CaseID:     string(caseID),
		TenantID:   tenant,
		Type:       evType,
		ContentKey: storedKey,
		Metadata:   metadata,
		IngestedAt: s.Clock.Now().UTC(),
		Ordinal:    ordinal,
	}
	if err := s.Evidence.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save evidence: %w", err)
	}

	c.EvidenceIDs = append(c.EvidenceIDs, id)
	c.State = domain.StateEvidenceCollection
	c.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Cases.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}

	s.Log.Info("evidence added",
		zap.String("case_id", string(caseID)),
		zap.String("evidence_id", id),
		zap.String("type", rawType))
	return item, nil
}

// Investigate runs the full analysis pipeline. The case is held exclusively
// in analysis_in_progress for the duration; on success the result is cached
// atomically and the case becomes analyzed, on failure nothing is cached and
// the case lands in analysis_failed with the triggering error attached.
func (s *Service) Investigate(ctx context.Context, tenant string, caseID domain.CaseID) (*analysis.InvestigationResult, error) {
	if err := s.acquire(caseID); err != nil {
		return nil, err
	}
	defer s.release(caseID)

	// The read happens under the guard: a snapshot taken outside it could
	// predate a run that finished in between and pass the state check with
	// stale data, clobbering the cached result.
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	if !c.CanInvestigate() {
		return nil, domain.StateError(c.ID, c.State, "investigate")
	}

	c.State = domain.StateAnalysisInProgress
	c.FailureNote = ""
	c.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Cases.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("mark analysis in progress: %w", err)
	}

	items, err := s.Evidence.ListByCase(ctx, tenant, string(caseID))
	if err != nil {
		s.failCase(ctx, c, err)
		return nil, fmt.Errorf("list evidence: %w", err)
	}

	result, err := s.Pipeline.Run(ctx, c, items, s.Clock.Now())
	if err != nil {
		s.failCase(ctx, c, err)
		return nil, err
	}

	c.Result = result
	c.State = domain.StateAnalyzed
	c.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Cases.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cache investigation result: %w", err)
	}
	return result, nil
}

// failCase records the triggering error on the case for operator visibility.
// No partial result is cached.
func (s *Service) failCase(ctx context.Context, c *domain.Case, cause error) {
	c.State = domain.StateAnalysisFailed
	c.Result = nil
	c.FailureNote = cause.Error()
	c.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Cases.Save(ctx, c); err != nil {
		s.Log.Error("failed to persist analysis_failed state",
			zap.String("case_id", string(c.ID)), zap.Error(err))
	}
	s.Log.Warn("investigation failed",
		zap.String("case_id", string(c.ID)), zap.Error(cause))
}

func (s *Service) acquire(id domain.CaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[domain.CaseID]bool)
	}
	if s.inFlight[id] {
		return domain.StateError(id, domain.StateAnalysisInProgress, "investigate concurrently")
	}
	s.inFlight[id] = true
	return nil
}

func (s *Service) release(id domain.CaseID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// GenerateReport renders the cached result through the document collaborator.
// Legal only once the case is analyzed.
func (s *Service) GenerateReport(ctx context.Context, tenant string, caseID domain.CaseID, template, language, format string) (string, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return "", err
	}
	if !c.HasResult() {
		return "", domain.StateError(c.ID, c.State, "generate report")
	}

	if c.State == domain.StateAnalyzed {
		c.State = domain.StateReporting
		c.UpdatedAt = s.Clock.Now().UTC()
		if err := s.Cases.Save(ctx, c); err != nil {
			return "", fmt.Errorf("mark reporting: %w", err)
		}
	}

	path, err := s.Reports.Render(ctx, report.Request{
		Case:     c,
		Result:   c.Result,
		Template: template,
		Language: language,
		Format:   format,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", report.ErrGeneration, err)
	}
	s.Log.Info("report generated",
		zap.String("case_id", string(caseID)),
		zap.String("template", template),
		zap.String("path", path))
	return path, nil
}

// GenerateDiagram renders one analytical diagram from the cached result.
func (s *Service) GenerateDiagram(ctx context.Context, tenant string, caseID domain.CaseID, diagramType, format string) (string, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return "", err
	}
	if !c.HasResult() {
		return "", domain.StateError(c.ID, c.State, "generate diagram")
	}
	path, err := s.Reports.Diagram(ctx, report.DiagramRequest{
		Case:   c,
		Result: c.Result,
		Type:   diagramType,
		Format: format,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", report.ErrGeneration, err)
	}
	return path, nil
}

// CreateCAPATracker derives one action per cached recommendation and persists
// them. Re-creating reuses stored actions rather than duplicating them.
func (s *Service) CreateCAPATracker(ctx context.Context, tenant string, caseID domain.CaseID) (*capa.Tracker, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	if !c.HasResult() {
		return nil, domain.StateError(c.ID, c.State, "create CAPA tracker")
	}

	existing, err := s.CAPA.ListByCase(ctx, tenant, string(caseID))
	if err != nil {
		return nil, fmt.Errorf("list capa actions: %w", err)
	}
	actions := existing
	if len(actions) == 0 {
		now := s.Clock.Now().UTC()
		for _, rec := range c.Result.Recommendations {
			a := &capa.Action{
				ID:        fmt.Sprintf("CAPA-%s-%s", c.Metadata.IncidentID, rec.ID),
				CaseID:    string(caseID),
				Title:     rec.Title,
				Priority:  rec.Priority,
				Status:    capa.StatusOpen,
				Timeline:  rec.Timeline,
				CauseRef:  rec.CauseRef,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.CAPA.Save(ctx, a); err != nil {
				return nil, fmt.Errorf("save capa action: %w", err)
			}
			actions = append(actions, a)
		}
	}

	tracker := &capa.Tracker{
		CaseID:         string(caseID),
		TotalActions:   len(actions),
		CompletionRate: capa.Completion(actions),
		Actions:        actions,
		CreatedAt:      s.Clock.Now().UTC(),
	}
	s.Log.Info("capa tracker created",
		zap.String("case_id", string(caseID)),
		zap.Int("total_actions", tracker.TotalActions))
	return tracker, nil
}

// UpdateCAPAStatus moves one action through its lifecycle.
func (s *Service) UpdateCAPAStatus(ctx context.Context, tenant string, caseID domain.CaseID, actionID string, status capa.Status) (*capa.Action, error) {
	if !capa.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown capa status %q", domain.ErrInvalidMetadata, status)
	}
	a, err := s.CAPA.Get(ctx, tenant, string(caseID), actionID)
	if err != nil {
		return nil, err
	}
	a.Status = status
	a.UpdatedAt = s.Clock.Now().UTC()
	if err := s.CAPA.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("update capa action: %w", err)
	}
	return a, nil
}

// CloseCase archives a reported case. Cases are never deleted.
func (s *Service) CloseCase(ctx context.Context, tenant string, caseID domain.CaseID) (*domain.Case, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	if c.State != domain.StateReporting && c.State != domain.StateAnalyzed {
		return nil, domain.StateError(c.ID, c.State, "close")
	}
	c.State = domain.StateClosed
	c.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Cases.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("close case: %w", err)
	}

	// Indexing is advisory: a failure never blocks the close.
	if s.Index != nil && c.HasResult() {
		title := c.Metadata.IncidentID + " " + c.Metadata.IncidentType
		desc := appanalysis.Descriptor(c, c.Result.Causes)
		if err := s.Index.Index(ctx, string(c.ID), title, desc); err != nil {
			s.Log.Warn("similarity index update failed",
				zap.String("case_id", string(c.ID)), zap.Error(err))
		}
	}
	return c, nil
}

// Get returns one case.
func (s *Service) Get(ctx context.Context, tenant string, caseID domain.CaseID) (*domain.Case, error) {
	return s.Cases.Get(ctx, tenant, caseID)
}

// List returns cases for the tenant, optionally filtered by state.
func (s *Service) List(ctx context.Context, tenant string, state domain.State, limit int) ([]*domain.Case, error) {
	return s.Cases.List(ctx, tenant, state, limit)
}

// SimilarCases returns the cached similarity matches.
func (s *Service) SimilarCases(ctx context.Context, tenant string, caseID domain.CaseID) ([]analysis.SimilarCaseMatch, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	if !c.HasResult() {
		return nil, domain.StateError(c.ID, c.State, "list similar cases")
	}
	return c.Result.SimilarCases, nil
}

// GetInvestigationStatus summarizes progress for dashboards.
func (s *Service) GetInvestigationStatus(ctx context.Context, tenant string, caseID domain.CaseID) (map[string]any, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}

	status := map[string]any{
		"case_id":        string(c.ID),
		"incident_id":    c.Metadata.IncidentID,
		"state":          string(c.State),
		"evidence_count": len(c.EvidenceIDs),
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	}
	if c.Result != nil {
		status["timeline_events"] = len(c.Result.Timeline)
		status["inconsistencies"] = len(c.Result.Inconsistencies)
		status["causes_identified"] = len(c.Result.Causes)
		status["recommendations_count"] = len(c.Result.Recommendations)
		status["degraded"] = c.Result.Degraded
	}
	if c.FailureNote != "" {
		status["failure"] = c.FailureNote
	}
	return status, nil
}

// ExportCase serializes the complete case, result included, as JSON.
func (s *Service) ExportCase(ctx context.Context, tenant string, caseID domain.CaseID) ([]byte, error) {
	c, err := s.Cases.Get(ctx, tenant, caseID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(c, "", "  ")
}
