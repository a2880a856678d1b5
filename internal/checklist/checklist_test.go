package checklist

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/citeline/chronology-core/internal/qa"
	"github.com/stretchr/testify/assert"
)

func TestEvaluatePassesCleanGraph(t *testing.T) {
	graph := &domain.EvidenceGraph{
		Events:    []domain.Event{{EventID: "e1", Date: domain.EventDate{Source: domain.DateTier1}, CitationIDs: []string{"c1"}}},
		Citations: []domain.Citation{{CitationID: "c1"}},
	}
	projection := []domain.ChronologyProjectionEntry{{EventID: "e1", Facts: []string{"a"}, CitationDisplay: "p1"}}
	report := "Moat Analysis\nExecutive Summary\nChronological Medical Timeline\n"

	result := Evaluate(report, graph, projection, []domain.QualityScorer{qa.LUQA{}, qa.AttorneyReadiness{}, qa.LegalUsability{}}, nil)
	assert.True(t, result.HardPass)
}

func TestEvaluateFailsHardGateOnUnknownPatientRow(t *testing.T) {
	graph := &domain.EvidenceGraph{
		Events: []domain.Event{{EventID: "e1", Date: domain.EventDate{Source: domain.DateTier1}}},
	}
	projection := []domain.ChronologyProjectionEntry{{EventID: "e1", PatientLabel: domain.UnknownPatientLabel, CitationDisplay: "p1"}}
	result := Evaluate("", graph, projection, nil, nil)
	assert.False(t, result.HardPass)
	assert.False(t, result.Pass)
}

func TestEvaluateFailsHardGateOnProviderContamination(t *testing.T) {
	graph := &domain.EvidenceGraph{
		Events: []domain.Event{{EventID: "e1", Date: domain.EventDate{Source: domain.DateTier1}}},
	}
	projection := []domain.ChronologyProjectionEntry{{EventID: "e1", ProviderDisplay: "Synthea Test Facility", CitationDisplay: "p1"}}
	result := Evaluate("", graph, projection, nil, nil)
	assert.False(t, result.HardPass)
}
