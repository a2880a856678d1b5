package claimledger

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClaimEdgesDecomposesFactsIntoTypedClaims(t *testing.T) {
	entry := domain.ChronologyProjectionEntry{
		EventID:          "e1",
		SortDate:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ProviderDisplay:  "Dr. Smith",
		EventTypeDisplay: "Imaging Study",
		PatientLabel:     "Unknown Patient",
		Facts:            []string{"Impression: disc herniation at L4-L5."},
		CitationDisplay:  "p. 4",
	}
	edges := BuildClaimEdges([]domain.ChronologyProjectionEntry{entry}, nil, nil)
	require.Len(t, edges, 1)
	assert.Equal(t, domain.ClaimImagingFinding, edges[0].ClaimType)
	assert.NotEmpty(t, edges[0].ID)
}

func TestBuildClaimEdgesFlagsLateralityConflict(t *testing.T) {
	entries := []domain.ChronologyProjectionEntry{
		{
			EventID: "e1", SortDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EventTypeDisplay: "Office Visit", ProviderDisplay: "Dr. Smith",
			Facts: []string{"Left shoulder pain with decreased ROM."}, CitationDisplay: "p. 1",
		},
		{
			EventID: "e2", SortDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EventTypeDisplay: "Office Visit", ProviderDisplay: "Dr. Smith",
			Facts: []string{"Right shoulder pain noted on exam."}, CitationDisplay: "p. 2",
		},
	}
	edges := BuildClaimEdges(entries, nil, nil)
	found := false
	for _, e := range edges {
		for _, f := range e.Flags {
			if f == "laterality_conflict" {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestBuildClaimEdgesEmitsGapInCareAboveThreshold(t *testing.T) {
	gap := domain.Gap{
		GapID:        "g1",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationDays: 90,
	}
	edges := BuildClaimEdges(nil, []domain.Gap{gap}, nil)
	require.Len(t, edges, 1)
	assert.Equal(t, domain.ClaimGapInCare, edges[0].ClaimType)
	assert.Equal(t, 5, edges[0].SupportScore)
}

func TestBuildClaimEdgesSkipsGapBelowThreshold(t *testing.T) {
	gap := domain.Gap{GapID: "g1", StartDate: time.Now(), DurationDays: 10}
	edges := BuildClaimEdges(nil, []domain.Gap{gap}, nil)
	assert.Empty(t, edges)
}

func TestSelectTopFiltersAdminOnlyAndUncitedClaims(t *testing.T) {
	claims := []domain.ClaimEdge{
		{ID: "a", Assertion: "Please fax records to attorney office.", ClaimType: domain.ClaimTreatmentVisit, Citations: []string{"p. 1"}},
		{ID: "b", Assertion: "MRI impression: disc herniation confirmed.", ClaimType: domain.ClaimImagingFinding, Citations: []string{"p. 2"}, SupportScore: 5, MaterialityWeight: 3},
		{ID: "c", Assertion: "MRI impression: disc bulge at C5-C6.", ClaimType: domain.ClaimImagingFinding, SupportScore: 5, MaterialityWeight: 3},
	}
	top := SelectTop(claims, 10, DefaultSelectionConfig)
	ids := make([]string, 0, len(top))
	for _, c := range top {
		ids = append(ids, c.ID)
	}
	assert.NotContains(t, ids, "a")
	assert.Contains(t, ids, "b")
	assert.NotContains(t, ids, "c")
}

func TestSummarizeRiskFlagsCountsAndFormats(t *testing.T) {
	claims := []domain.ClaimEdge{
		{Flags: []string{"laterality_conflict"}},
		{Flags: []string{"laterality_conflict", "treatment_gap"}},
	}
	summary := SummarizeRiskFlags(claims)
	assert.Contains(t, summary, "Laterality Conflict (2 mentions)")
	assert.Contains(t, summary, "Treatment Gap (1 mention)")
}

func TestDepoSafeRewriteSoftensUnsupportedCausation(t *testing.T) {
	claims := []domain.ClaimEdge{{Assertion: "Patient reports back pain.", ClaimType: domain.ClaimSymptom}}
	out := DepoSafeRewrite("Injury caused by the collision is permanent.", claims)
	assert.Contains(t, out, "reported after")
	assert.Contains(t, out, "ongoing")
}

func TestDepoSafeRewritePreservesSupportedCausation(t *testing.T) {
	claims := []domain.ClaimEdge{{Assertion: "Onset reported as due to motor vehicle collision.", ClaimType: domain.ClaimInjuryDx}}
	out := DepoSafeRewrite("Herniation due to the collision was documented.", claims)
	assert.Contains(t, out, "due to")
}
