package gaps

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dated(id string, eventType domain.EventType, day int) domain.Event {
	d := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	return domain.Event{
		EventID:   id,
		EventType: eventType,
		Date:      domain.EventDate{Kind: domain.DateKindSingle, Single: &d},
	}
}

func TestDetectFindsGapAboveThreshold(t *testing.T) {
	events := []domain.Event{dated("e1", domain.EventOfficeVisit, 1), dated("e2", domain.EventOfficeVisit, 60)}
	out := Detect(events, 45)
	require.Len(t, out, 1)
	assert.Equal(t, "routine_continuity_gap", out[0].RationaleTag)
}

func TestDetectTagsPostAdmissionFollowupMissing(t *testing.T) {
	events := []domain.Event{dated("e1", domain.EventHospitalDischarge, 1), dated("e2", domain.EventOfficeVisit, 60)}
	out := Detect(events, 45)
	require.Len(t, out, 1)
	assert.Equal(t, "post_admission_followup_missing", out[0].RationaleTag)
}

func TestDetectCollapsesThreeConsecutiveRoutineGaps(t *testing.T) {
	events := []domain.Event{
		dated("e1", domain.EventOfficeVisit, 1),
		dated("e2", domain.EventOfficeVisit, 50),
		dated("e3", domain.EventOfficeVisit, 100),
		dated("e4", domain.EventOfficeVisit, 150),
	}
	out := Detect(events, 45)
	require.Len(t, out, 1)
	assert.True(t, out[0].Collapsed)
	assert.Equal(t, 3, out[0].CollapsedCount)
	assert.Equal(t, "routine_continuity_gap_collapsed", out[0].RationaleTag)
}

func TestDetectIgnoresEventsBelowThreshold(t *testing.T) {
	events := []domain.Event{dated("e1", domain.EventOfficeVisit, 1), dated("e2", domain.EventOfficeVisit, 10)}
	assert.Empty(t, Detect(events, 45))
}
