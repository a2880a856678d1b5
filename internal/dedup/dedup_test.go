package dedup

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sameDate() domain.EventDate {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return domain.EventDate{Kind: domain.DateKindSingle, Single: &d}
}

func TestDedupeKeepsEventWithMoreFacts(t *testing.T) {
	events := []domain.Event{
		{EventID: "e1", ProviderID: "p1", EventType: domain.EventOfficeVisit, Date: sameDate(), Facts: []domain.Fact{{Text: "a"}}},
		{EventID: "e2", ProviderID: "p1", EventType: domain.EventOfficeVisit, Date: sameDate(), Facts: []domain.Fact{{Text: "a"}, {Text: "b"}}},
	}
	out := Dedupe(events)
	require.Len(t, out, 1)
	assert.Equal(t, "e2", out[0].EventID)
}

func TestDedupeTiesBreakByConfidenceThenEventID(t *testing.T) {
	events := []domain.Event{
		{EventID: "e2", ProviderID: "p1", EventType: domain.EventOfficeVisit, Date: sameDate(), Confidence: 50},
		{EventID: "e1", ProviderID: "p1", EventType: domain.EventOfficeVisit, Date: sameDate(), Confidence: 50},
	}
	out := Dedupe(events)
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0].EventID)
}

func TestDedupeKeepsDistinctEvents(t *testing.T) {
	events := []domain.Event{
		{EventID: "e1", ProviderID: "p1", EventType: domain.EventOfficeVisit, Date: sameDate()},
		{EventID: "e2", ProviderID: "p2", EventType: domain.EventOfficeVisit, Date: sameDate()},
	}
	assert.Len(t, Dedupe(events), 2)
}
