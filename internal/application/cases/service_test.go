package cases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/incident-orchestrator/internal/application/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/capa"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/oracle"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/report"
)

// ---- in-memory collaborators ----

type memCaseRepo struct {
	mu    sync.Mutex
	cases map[domain.CaseID]*domain.Case
}

func newMemCaseRepo() *memCaseRepo {
	return &memCaseRepo{cases: make(map[domain.CaseID]*domain.Case)}
}

func (r *memCaseRepo) Save(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *memCaseRepo) Get(_ context.Context, tenant string, id domain.CaseID) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok || c.TenantID != tenant {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCaseRepo) List(_ context.Context, tenant string, state domain.State, limit int) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Case
	for _, c := range r.cases {
		if c.TenantID != tenant {
			continue
		}
		if state != "" && c.State != state {
			continue
		}
		cp := *c
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type memEvidenceRepo struct {
	mu    sync.Mutex
	items map[string][]*evidence.Item // caseID -> items
}

func newMemEvidenceRepo() *memEvidenceRepo {
	return &memEvidenceRepo{items: make(map[string][]*evidence.Item)}
}

func (r *memEvidenceRepo) Save(_ context.Context, item *evidence.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.CaseID] = append(r.items[item.CaseID], item)
	return nil
}

func (r *memEvidenceRepo) Get(_ context.Context, _, caseID, id string) (*evidence.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items[caseID] {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("evidence %s not found", id)
}

func (r *memEvidenceRepo) ListByCase(_ context.Context, _, caseID string) ([]*evidence.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*evidence.Item(nil), r.items[caseID]...), nil
}

func (r *memEvidenceRepo) CountByCase(_ context.Context, _, caseID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items[caseID]), nil
}

type memContent struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemContent() *memContent { return &memContent{blobs: make(map[string][]byte)} }

func (m *memContent) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.blobs[key] = b
	m.mu.Unlock()
	return key, nil
}

func (m *memContent) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	b, ok := m.blobs[key]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no content at %s", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type memCAPARepo struct {
	mu      sync.Mutex
	actions map[string]*capa.Action
}

func newMemCAPARepo() *memCAPARepo { return &memCAPARepo{actions: make(map[string]*capa.Action)} }

func (r *memCAPARepo) Save(_ context.Context, a *capa.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.actions[a.ID] = &cp
	return nil
}

func (r *memCAPARepo) Get(_ context.Context, _, caseID, id string) (*capa.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok || a.CaseID != caseID {
		return nil, fmt.Errorf("capa action %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (r *memCAPARepo) ListByCase(_ context.Context, _, caseID string) ([]*capa.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*capa.Action
	for _, a := range r.actions {
		if a.CaseID == caseID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeGenerator struct {
	renderErr error
}

func (g *fakeGenerator) Render(_ context.Context, req report.Request) (string, error) {
	if g.renderErr != nil {
		return "", g.renderErr
	}
	return fmt.Sprintf("cases/%s/reports/%s.md", req.Case.ID, strings.ToLower(req.Template)), nil
}

func (g *fakeGenerator) Diagram(_ context.Context, req report.DiagramRequest) (string, error) {
	return fmt.Sprintf("cases/%s/diagrams/%s.dot", req.Case.ID, req.Type), nil
}

// blockingOracle parks every Extract call until released so concurrent
// investigations overlap deterministically.
type blockingOracle struct {
	entered chan struct{}
	release chan struct{}
}

func (o *blockingOracle) Extract(ctx context.Context, _, _, _ string) (*oracle.Extraction, error) {
	o.entered <- struct{}{}
	select {
	case <-o.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	score := 0.8
	return &oracle.Extraction{
		KeyFacts: []string{"fact"},
		TimelineEvents: []oracle.RawEvent{
			{Time: "2026-03-14T14:25:00Z", Description: "alarm sounded", Severity: "high"},
		},
		ConfidenceScore: &score,
	}, nil
}

type instantOracle struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (o *instantOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func (o *instantOracle) Extract(context.Context, string, string, string) (*oracle.Extraction, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	score := 0.75
	return &oracle.Extraction{
		KeyFacts: []string{"valve left open"},
		TimelineEvents: []oracle.RawEvent{
			{Time: "2026-03-14T14:25:00Z", Description: "relief valve lifted", Severity: "high"},
		},
		Causes: []oracle.RawCause{
			{Description: "relief valve undersized", Category: "equipment", Level: "immediate", Confidence: 0.7},
		},
		ConfidenceScore: &score,
	}, nil
}

// ---- fixture ----

func validMetadata() domain.Metadata {
	return domain.Metadata{
		IncidentID:   "INC-2026-001",
		DateOccurred: time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC),
		Location:     "Unit 3",
		Industry:     "chemical",
		IncidentType: "fire",
		Severity:     domain.SeverityMajor,
	}
}

func newService(t *testing.T, o oracle.Client) (*Service, *memContent) {
	t.Helper()
	content := newMemContent()
	pipeline := &appanalysis.Pipeline{
		Processor: &appanalysis.Processor{Oracle: o, Content: content, Log: zap.NewNop()},
		Detector:  appanalysis.NewDetector(0),
		Matcher:   &appanalysis.Matcher{Log: zap.NewNop()}, // similarity not configured
		Log:       zap.NewNop(),
	}
	svc := &Service{
		Cases:    newMemCaseRepo(),
		Evidence: newMemEvidenceRepo(),
		Content:  content,
		Pipeline: pipeline,
		Reports:  &fakeGenerator{},
		CAPA:     newMemCAPARepo(),
		Clock:    fixedClock{t: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)},
		Log:      zap.NewNop(),
	}
	return svc, content
}

func addEvidence(t *testing.T, svc *Service, caseID domain.CaseID, typ, body string) *evidence.Item {
	t.Helper()
	item, err := svc.AddEvidence(context.Background(), "acme", caseID, typ,
		strings.NewReader(body), int64(len(body)), "text/plain", nil)
	require.NoError(t, err)
	return item
}

// ---- tests ----

func TestCreateInvestigation(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})

	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(c.ID), "CASE-"))
	assert.Equal(t, domain.StateEvidenceCollection, c.State)
	assert.Equal(t, "industrial", c.Metadata.FacilityType) // default applied
	assert.Equal(t, "acme", c.TenantID)
}

func TestCreateInvestigation_RejectsBadMetadata(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})

	cases := []struct {
		name   string
		mutate func(*domain.Metadata)
	}{
		{"missing incident id", func(m *domain.Metadata) { m.IncidentID = "" }},
		{"missing date", func(m *domain.Metadata) { m.DateOccurred = time.Time{} }},
		{"missing location", func(m *domain.Metadata) { m.Location = "" }},
		{"unknown severity", func(m *domain.Metadata) { m.Severity = "apocalyptic" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			md := validMetadata()
			tc.mutate(&md)
			_, err := svc.CreateInvestigation(context.Background(), "acme", md)
			assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
		})
	}
}

func TestAddEvidence_AssignsSequentialIDs(t *testing.T) {
	svc, content := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	first := addEvidence(t, svc, c.ID, "witness_statement", "I saw smoke")
	second := addEvidence(t, svc, c.ID, "scada_log", "14:25 ALM PT-301 HI")

	assert.Equal(t, "EVD-001", first.ID)
	assert.Equal(t, "EVD-002", second.ID)
	assert.Equal(t, 1, first.Ordinal)
	assert.Equal(t, 2, second.Ordinal)

	// Raw bytes live in the content store under the case key.
	rc, err := content.Get(context.Background(), first.ContentKey)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "I saw smoke", string(b))

	got, err := svc.Get(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"EVD-001", "EVD-002"}, got.EvidenceIDs)
}

func TestAddEvidence_RejectsUnsupportedType(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	_, err = svc.AddEvidence(context.Background(), "acme", c.ID, "telepathy",
		strings.NewReader("x"), 1, "", nil)
	assert.ErrorIs(t, err, evidence.ErrUnsupportedType)
}

func TestAddEvidence_RejectedAfterAnalysis(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")

	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	_, err = svc.AddEvidence(context.Background(), "acme", c.ID, "photo",
		strings.NewReader("scene"), 5, "", nil)
	assert.ErrorIs(t, err, domain.ErrCaseState)
}

func TestInvestigate_CachesResultAtomically(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")
	addEvidence(t, svc, c.ID, "maintenance_record", "pump overhaul deferred")

	result, err := svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	got, err := svc.Get(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAnalyzed, got.State)
	require.NotNil(t, got.Result)
	assert.Len(t, got.Result.Evidence, 2)
	assert.NotNil(t, got.Result.SimilarCases) // empty slice, never nil
}

func TestInvestigate_FailureLeavesNoPartialResult(t *testing.T) {
	svc, _ := newService(t, &instantOracle{err: fmt.Errorf("oracle hard down")})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")

	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.Error(t, err)

	got, err := svc.Get(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAnalysisFailed, got.State)
	assert.Nil(t, got.Result)
	assert.NotEmpty(t, got.FailureNote)

	// A failed case accepts more evidence and can retry.
	assert.True(t, got.CanAddEvidence())
	assert.True(t, got.CanInvestigate())
}

func TestInvestigate_RejectsEmptyCase(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	assert.ErrorIs(t, err, appanalysis.ErrNoEvidence)
}

func TestInvestigate_ConcurrentCallFailsFast(t *testing.T) {
	blocker := &blockingOracle{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc, _ := newService(t, blocker)
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Investigate(context.Background(), "acme", c.ID)
		errCh <- err
	}()

	<-blocker.entered // first run is now inside the oracle call

	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	assert.ErrorIs(t, err, domain.ErrCaseState)

	close(blocker.release)
	require.NoError(t, <-errCh)
}

func TestInvestigate_RerunAfterCompletionRejected(t *testing.T) {
	o := &instantOracle{}
	svc, _ := newService(t, o)
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")

	first, err := svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	callsAfterFirst := o.callCount()

	// A rerun on the analyzed case is rejected; the state check runs on a
	// fresh read taken under the guard, not on a snapshot from before the
	// first run finished.
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	assert.ErrorIs(t, err, domain.ErrCaseState)

	got, err := svc.Get(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAnalyzed, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, first.GeneratedAt, got.Result.GeneratedAt)
	assert.Equal(t, callsAfterFirst, o.callCount(), "pipeline must not re-run")
}

func TestAddEvidence_ConcurrentAddsMintDistinctIDs(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	const n = 8
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("statement %d", i)
			item, err := svc.AddEvidence(context.Background(), "acme", c.ID, "witness_statement",
				strings.NewReader(body), int64(len(body)), "text/plain", nil)
			assert.NoError(t, err)
			if err == nil {
				ids <- item.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate evidence id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	got, err := svc.Get(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Len(t, got.EvidenceIDs, n)
}

func TestGenerateReport_RequiresResult(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	_, err = svc.GenerateReport(context.Background(), "acme", c.ID, "OSHA_PSM", "en", "md")
	assert.ErrorIs(t, err, domain.ErrCaseState)
}

func TestGenerateReport_MovesToReporting(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	key, err := svc.GenerateReport(context.Background(), "acme", c.ID, "OSHA_PSM", "en", "md")
	require.NoError(t, err)
	assert.Contains(t, key, "osha_psm")

	got, _ := svc.Get(context.Background(), "acme", c.ID)
	assert.Equal(t, domain.StateReporting, got.State)

	// Reporting state still serves further reports off the cached result.
	_, err = svc.GenerateReport(context.Background(), "acme", c.ID, "ISO_45001", "en", "md")
	assert.NoError(t, err)
}

func TestCAPATracker_LifecycleAndCompletionRate(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	tracker, err := svc.CreateCAPATracker(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, tracker.TotalActions)
	assert.Zero(t, tracker.CompletionRate)
	action := tracker.Actions[0]
	assert.Equal(t, capa.StatusOpen, action.Status)

	_, err = svc.UpdateCAPAStatus(context.Background(), "acme", c.ID, action.ID, capa.StatusCompleted)
	require.NoError(t, err)

	tracker, err = svc.CreateCAPATracker(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.TotalActions) // reused, not duplicated
	assert.Equal(t, 1.0, tracker.CompletionRate)
}

func TestUpdateCAPAStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	_, err = svc.UpdateCAPAStatus(context.Background(), "acme", c.ID, "CAPA-x", "wontfix")
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}

func TestCloseCase(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	// Closing before analysis is a state error.
	_, err = svc.CloseCase(context.Background(), "acme", c.ID)
	assert.ErrorIs(t, err, domain.ErrCaseState)

	addEvidence(t, svc, c.ID, "witness_statement", "account")
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	closed, err := svc.CloseCase(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, closed.State)

	// Closed cases still serve their cached result.
	matches, err := svc.SimilarCases(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.NotNil(t, matches)
}

type recordingIndexer struct {
	caseID, title, descriptor string
	err                       error
}

func (r *recordingIndexer) Index(_ context.Context, caseID, title, descriptor string) error {
	r.caseID, r.title, r.descriptor = caseID, title, descriptor
	return r.err
}

func TestCloseCase_AddsToSimilarityIndex(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	idx := &recordingIndexer{}
	svc.Index = idx

	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	_, err = svc.CloseCase(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	assert.Equal(t, string(c.ID), idx.caseID)
	assert.Equal(t, "INC-2026-001 fire", idx.title)
	assert.Contains(t, idx.descriptor, "fire")
	assert.Contains(t, idx.descriptor, "chemical")
	assert.Contains(t, idx.descriptor, "Equipment/Material")
}

func TestCloseCase_IndexFailureDoesNotBlockClose(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	svc.Index = &recordingIndexer{err: errors.New("index offline")}

	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")
	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	closed, err := svc.CloseCase(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, closed.State)
}

func TestGetInvestigationStatus(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)
	addEvidence(t, svc, c.ID, "witness_statement", "account")

	status, err := svc.GetInvestigationStatus(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StateEvidenceCollection), status["state"])
	assert.Equal(t, 1, status["evidence_count"])
	assert.NotContains(t, status, "timeline_events")

	_, err = svc.Investigate(context.Background(), "acme", c.ID)
	require.NoError(t, err)

	status, err = svc.GetInvestigationStatus(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StateAnalyzed), status["state"])
	assert.Contains(t, status, "timeline_events")
	assert.Contains(t, status, "recommendations_count")
}

func TestTenantIsolation(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "other-tenant", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportCase(t *testing.T) {
	svc, _ := newService(t, &instantOracle{})
	c, err := svc.CreateInvestigation(context.Background(), "acme", validMetadata())
	require.NoError(t, err)

	data, err := svc.ExportCase(context.Background(), "acme", c.ID)
	require.NoError(t, err)
	assert.Contains(t, string(data), string(c.ID))
	assert.Contains(t, string(data), "INC-2026-001")
}
