package projection

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateVariants(t *testing.T) {
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-04 (time not documented)", FormatDate(domain.EventDate{Kind: domain.DateKindSingle, Single: &d}))
	assert.Equal(t, "2024-03-04 1430", FormatDate(domain.EventDate{Kind: domain.DateKindSingle, Single: &d, Time: "1430"}))
	assert.Equal(t, "Undated", FormatDate(domain.EventDate{Kind: domain.DateKindRelative}))
}

func TestBuildMergesIdenticalEntries(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	date := domain.EventDate{Kind: domain.DateKindSingle, Single: &d}
	events := []domain.Event{
		{EventID: "e1", EventType: domain.EventOfficeVisit, Date: date, ProviderID: "p1", Facts: []domain.Fact{{Text: "a"}}},
		{EventID: "e2", EventType: domain.EventOfficeVisit, Date: date, ProviderID: "p1", Facts: []domain.Fact{{Text: "a"}}},
	}
	entries := Build(events, map[string]string{"p1": "Dr. Smith"})
	require.Len(t, entries, 1)
	assert.Equal(t, "Dr. Smith", entries[0].ProviderDisplay)
}

func TestBuildRelabelsInpatientProgressWithoutMarkers(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []domain.Event{
		{EventID: "e1", EventType: domain.EventInpatientDailyNote, Date: domain.EventDate{Kind: domain.DateKindSingle, Single: &d}},
	}
	entries := Build(events, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, "Clinical Note", entries[0].EventTypeDisplay)
}
