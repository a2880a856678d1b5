package citation

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessFillsMissingTextHash(t *testing.T) {
	citations := []domain.Citation{
		{CitationID: "c1", Snippet: "Chief Complaint: back pain", PageNumber: 1},
	}
	out, warnings := Process(citations)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].TextHash)
	assert.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnBBoxFallback, warnings[0].Code)
}

func TestProcessPreservesExistingHashAndBBox(t *testing.T) {
	citations := []domain.Citation{
		{CitationID: "c1", Snippet: "x", PageNumber: 1, TextHash: "already-set", BBox: domain.BoundingBox{X: 1, Y: 1, W: 1, H: 1}},
	}
	out, warnings := Process(citations)
	assert.Equal(t, "already-set", out[0].TextHash)
	assert.Empty(t, warnings)
}

func TestTextHashNormalizesWhitespace(t *testing.T) {
	assert.Equal(t, TextHash("Foo   Bar"), TextHash("foo bar"))
}
