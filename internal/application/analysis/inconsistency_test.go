package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/analysis"
)

func TestDetect_TwoMinuteGapIsMinorConflict(t *testing.T) {
	// A witness and the SCADA log disagree on the alarm time by exactly the
	// default tolerance.
	events := []domain.TimelineEvent{
		event(ts(14, 25), "alarm sounded in control room", "EVD-001"),
		event(ts(14, 27), "alarm sounded in control room", "EVD-002"),
	}

	out := NewDetector(0).Detect(events)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ConflictMinor, out[0].Severity)
	assert.Equal(t, []string{"EVD-001", "EVD-002"}, out[0].SourceEvidenceIDs)
	assert.Len(t, out[0].DivergentValues, 2)
}

func TestDetect_Symmetric(t *testing.T) {
	a := event(ts(14, 25), "alarm sounded in control room", "EVD-001")
	b := event(ts(14, 35), "alarm sounded in control room", "EVD-002")

	forward := NewDetector(0).Detect([]domain.TimelineEvent{a, b})
	reversed := NewDetector(0).Detect([]domain.TimelineEvent{b, a})

	require.Len(t, forward, 1)
	require.Len(t, reversed, 1)
	assert.Equal(t, forward[0].SourceEvidenceIDs, reversed[0].SourceEvidenceIDs)
	assert.Equal(t, forward[0].Severity, reversed[0].Severity)
	assert.Equal(t, forward[0].DivergentValues, reversed[0].DivergentValues)
}

func TestDetect_TransitiveGrouping(t *testing.T) {
	// A~B and B~C puts all three in one group, one inconsistency.
	events := []domain.TimelineEvent{
		event(ts(14, 0), "pump impeller failure detected", "EVD-001"),
		event(ts(14, 20), "impeller failure pump casing cracked", "EVD-002"),
		event(ts(14, 40), "pump casing cracked open", "EVD-003"),
	}

	out := NewDetector(0).Detect(events)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"EVD-001", "EVD-002", "EVD-003"}, out[0].SourceEvidenceIDs)
	assert.Equal(t, domain.ConflictMajor, out[0].Severity)
}

func TestDetect_SeverityBands(t *testing.T) {
	cases := []struct {
		name string
		gap  time.Duration
		want domain.ConflictSeverity
	}{
		{"three minutes is minor", 3 * time.Minute, domain.ConflictMinor},
		{"ten minutes is medium", 10 * time.Minute, domain.ConflictMedium},
		{"forty five minutes is major", 45 * time.Minute, domain.ConflictMajor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := []domain.TimelineEvent{
				event(ts(14, 0), "flange gasket blew out", "EVD-001"),
				event(ts(14, 0).Add(tc.gap), "flange gasket blew out", "EVD-002"),
			}
			out := NewDetector(0).Detect(events)
			require.Len(t, out, 1)
			assert.Equal(t, tc.want, out[0].Severity)
		})
	}
}

func TestDetect_WithinToleranceAgrees(t *testing.T) {
	events := []domain.TimelineEvent{
		event(ts(14, 25), "alarm sounded in control room", "EVD-001"),
		event(ts(14, 26), "alarm sounded in control room", "EVD-002"),
	}

	out := NewDetector(0).Detect(events)
	assert.Empty(t, out)
}

func TestDetect_SingleSourceNeverConflicts(t *testing.T) {
	// The same witness revising their own account is not a cross-source conflict.
	events := []domain.TimelineEvent{
		event(ts(14, 0), "smelled gas near unit 3", "EVD-001"),
		event(ts(14, 30), "smelled gas near unit 3", "EVD-001"),
	}

	out := NewDetector(0).Detect(events)
	assert.Empty(t, out)
}

func TestDetect_UnrelatedDescriptionsIgnored(t *testing.T) {
	events := []domain.TimelineEvent{
		event(ts(14, 0), "compressor discharge temperature spiked", "EVD-001"),
		event(ts(15, 0), "forklift parked outside warehouse", "EVD-002"),
	}

	out := NewDetector(0).Detect(events)
	assert.Empty(t, out)
}

func TestDetect_NeverMutatesTimeline(t *testing.T) {
	events := []domain.TimelineEvent{
		event(ts(14, 25), "alarm sounded in control room", "EVD-001"),
		event(ts(14, 40), "alarm sounded in control room", "EVD-002"),
	}
	snapshot := make([]domain.TimelineEvent, len(events))
	copy(snapshot, events)

	NewDetector(0).Detect(events)
	assert.Equal(t, snapshot, events)
}
