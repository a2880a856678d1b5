package enrichment

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichSynthesizesMissingBucket(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Patient presented to Emergency Department with chest pain."},
	}
	out := Enrich(pages, nil, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NotEmpty(t, out)
	assert.True(t, out[0].Synthesized)
}

func TestEnrichSkipsBucketsAlreadyCovered(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Patient presented to Emergency Department with chest pain."},
	}
	events := []domain.Event{{EventType: domain.EventERVisit}}
	out := Enrich(pages, events, nil, time.Time{})
	assert.Empty(t, out)
}

func TestEnrichSkipsBucketsWithNoSourceSignal(t *testing.T) {
	out := Enrich(nil, nil, nil, time.Time{})
	assert.Empty(t, out)
}
