package qa

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	_ domain.QualityScorer = LUQA{}
	_ domain.QualityScorer = AttorneyReadiness{}
	_ domain.QualityScorer = LegalUsability{}
)

func TestLUQAFlagsBannedMetaLanguage(t *testing.T) {
	report := LUQA{}.Score("As an AI, I cannot verify this.", &domain.EvidenceGraph{}, nil)
	assert.False(t, report.Pass)
	assert.LessOrEqual(t, report.Score, 60)
}

func TestAttorneyReadinessFailsWithoutRequiredHeaders(t *testing.T) {
	report := AttorneyReadiness{}.Score("no headers here", &domain.EvidenceGraph{}, nil)
	assert.False(t, report.Pass)
}

func TestAttorneyReadinessPassesWithHeadersAndRows(t *testing.T) {
	report := AttorneyReadiness{}.Score("Executive Summary\nChronological Medical Timeline\n", &domain.EvidenceGraph{}, []domain.ChronologyProjectionEntry{
		{Facts: []string{"a"}, CitationDisplay: "p1"},
	})
	assert.True(t, report.Pass)
	assert.Equal(t, 100, report.Score)
}

func TestLegalUsabilityCatchesBrokenCitationChain(t *testing.T) {
	graph := &domain.EvidenceGraph{
		Events: []domain.Event{{EventID: "e1", CitationIDs: []string{"missing"}}},
	}
	report := LegalUsability{}.Score("Moat Analysis\nExecutive Summary\n", graph, nil)
	assert.False(t, report.Pass)
}
