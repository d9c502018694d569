package analysis

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

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/oracle"
)

// memContent is an in-memory ContentStore for tests.
type memContent struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemContent() *memContent {
	return &memContent{blobs: make(map[string][]byte)}
}

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

func (m *memContent) put(key, content string) {
	m.mu.Lock()
	m.blobs[key] = []byte(content)
	m.mu.Unlock()
}

// fakeOracle scripts Extract responses per call.
type fakeOracle struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, evidenceType, content string) (*oracle.Extraction, error)
}

func (f *fakeOracle) Extract(_ context.Context, evidenceType, content, _ string) (*oracle.Extraction, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call, evidenceType, content)
}

func confidence(v float64) *float64 { return &v }

func witnessItem(id string) *evidence.Item {
	return &evidence.Item{
		ID:         id,
		CaseID:     "CASE-x",
		Type:       evidence.TypeWitnessStatement,
		ContentKey: "cases/CASE-x/evidence/" + id,
	}
}

func newProcessor(o oracle.Client, content evidence.ContentStore) *Processor {
	return &Processor{Oracle: o, Content: content, Log: zap.NewNop()}
}

var baseDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestProcess_NormalizesExtraction(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "I heard the alarm and saw smoke near the pump.")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		return &oracle.Extraction{
			KeyFacts: []string{"alarm sounded", " smoke near pump "},
			TimelineEvents: []oracle.RawEvent{
				{Time: "14:25", Description: "alarm sounded", Severity: "high"},
				{Time: "just before lunch", Description: "smelled solvent"},
			},
			Causes: []oracle.RawCause{
				{Description: "pump seal failure", Category: "equipment", Confidence: 0.7},
			},
			Summary:         "witness account of pump failure",
			ConfidenceScore: confidence(0.9),
		}, nil
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)

	require.Empty(t, res.Error)
	assert.Equal(t, []string{"alarm sounded", "smoke near pump"}, res.Facts)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)

	// The 14:25 clock stamp anchors to the incident date.
	require.Len(t, res.Events, 1)
	assert.Equal(t, time.Date(2026, 3, 14, 14, 25, 0, 0, time.UTC), res.Events[0].Timestamp)
	assert.Equal(t, domain.SeverityHigh, res.Events[0].Severity)
	assert.Equal(t, "EVD-001", res.Events[0].SourceEvidenceID)

	// The unparseable stamp becomes an unanchored fact, not a dropped event.
	require.Len(t, res.Unanchored, 1)
	assert.Equal(t, "smelled solvent", res.Unanchored[0].Description)

	require.Len(t, res.Causes, 1)
	assert.Equal(t, domain.CategoryEquipmentMaterial, res.Causes[0].Category)
	assert.Equal(t, domain.BucketImmediate, res.Causes[0].Bucket)
	assert.Equal(t, []string{"EVD-001"}, res.Causes[0].SupportingEvidence)
}

func TestProcess_DefaultConfidenceWhenOmitted(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "log line")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		return &oracle.Extraction{KeyFacts: []string{"fact"}}, nil
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	require.Empty(t, res.Error)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestProcess_EmptyContentShortCircuits(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "   \n\t ")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		t.Fatal("oracle must not be called for empty content")
		return nil, nil
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	assert.True(t, res.Failed())
	assert.Equal(t, evidence.ErrEmptyContent.Error(), res.Error)
	assert.Zero(t, res.Confidence)
	assert.Zero(t, o.calls)
}

func TestProcess_UnknownTypeDegrades(t *testing.T) {
	item := witnessItem("EVD-001")
	item.Type = evidence.Type("telepathy")

	res := newProcessor(&fakeOracle{}, newMemContent()).Process(context.Background(), item, baseDate)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "telepathy")
}

func TestProcess_RetriesTransientThenSucceeds(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "scada dump")

	o := &fakeOracle{fn: func(call int, _, _ string) (*oracle.Extraction, error) {
		if call < 3 {
			return nil, oracle.ErrMalformedResponse
		}
		return &oracle.Extraction{KeyFacts: []string{"recovered"}, ConfidenceScore: confidence(0.8)}, nil
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	require.Empty(t, res.Error)
	assert.Equal(t, 3, o.calls)
	assert.Equal(t, []string{"recovered"}, res.Facts)
}

func TestProcess_ExhaustedRetriesDegrade(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "scada dump")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		return nil, oracle.ErrTimeout
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	assert.True(t, res.Failed())
	assert.Equal(t, maxOracleAttempts, o.calls)
	assert.Zero(t, res.Confidence)
}

func TestProcess_PermanentErrorStopsImmediately(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "scada dump")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		return nil, errors.New("invalid api key")
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	assert.True(t, res.Failed())
	assert.Equal(t, 1, o.calls)
}

func TestProcess_ConfidenceClamped(t *testing.T) {
	content := newMemContent()
	content.put("cases/CASE-x/evidence/EVD-001", "report text")

	o := &fakeOracle{fn: func(int, string, string) (*oracle.Extraction, error) {
		return &oracle.Extraction{ConfidenceScore: confidence(3.5)}, nil
	}}

	res := newProcessor(o, content).Process(context.Background(), witnessItem("EVD-001"), baseDate)
	require.Empty(t, res.Error)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestParseEventTime(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2026-03-14T14:25:00Z", true, time.Date(2026, 3, 14, 14, 25, 0, 0, time.UTC)},
		{"2026-03-14 14:25", true, time.Date(2026, 3, 14, 14, 25, 0, 0, time.UTC)},
		{"14:25:30", true, time.Date(2026, 3, 14, 14, 25, 30, 0, time.UTC)},
		{"2:05 PM", true, time.Date(2026, 3, 14, 14, 5, 0, 0, time.UTC)},
		{"around midnight", false, time.Time{}},
		{"", false, time.Time{}},
	}
	for _, tc := range cases {
		got, ok := parseEventTime(tc.in, baseDate)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.True(t, got.Equal(tc.want), "input %q: got %s", tc.in, got)
		}
	}
}

func TestStrategies_CoverAllEvidenceTypes(t *testing.T) {
	for _, typ := range []evidence.Type{
		evidence.TypeWitnessStatement, evidence.TypeSCADALog,
		evidence.TypeMaintenanceRecord, evidence.TypePhoto,
		evidence.TypePIDDrawing, evidence.TypeHAZOPReport,
		evidence.TypeProcedure, evidence.TypeAuditReport, evidence.TypeVideo,
	} {
		strat, ok := strategies[typ]
		assert.True(t, ok, "missing strategy for %s", typ)
		assert.False(t, strings.TrimSpace(strat.Instructions) == "", "empty instructions for %s", typ)
	}
}
