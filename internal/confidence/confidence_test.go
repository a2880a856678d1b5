package confidence

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScoreHighValueFullySupportedEvent(t *testing.T) {
	e := domain.Event{
		ProviderID:        "p1",
		EventType:         domain.EventERVisit,
		Date:              domain.EventDate{Source: domain.DateTier1},
		Facts:             []domain.Fact{{Kind: domain.FactChiefComplaint}, {Kind: domain.FactAssessment}, {Kind: domain.FactPlan}},
		CitationIDs:       []string{"c1", "c2"},
		SourcePageNumbers: []int{1, 2},
	}
	// 35 (tier1) + 20 (provider) + 15 (high-value) + 15 (narrative, capped) + 5 (facts>=3) + 5 (citations>=2) + 5 (multi-page) = 100
	assert.Equal(t, 100, Score(e))
}

func TestScoreMinimalEventIsAnchorDateOnly(t *testing.T) {
	e := domain.Event{Date: domain.EventDate{Source: domain.DateAnchor}}
	// 15 (anchor-derived date, §4.I) + nothing else.
	assert.Equal(t, 15, Score(e))
}

func TestScoreAllFlagsLowConfidence(t *testing.T) {
	events := []domain.Event{
		{Date: domain.EventDate{Source: domain.DateAnchor}},
	}
	ScoreAll(events, 60)
	assert.True(t, events[0].HasFlag(LowConfidenceFlag))
}
