package provider

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
)

func TestDetectClustersSimilarNames(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Facility: St. Mary Medical Center\nPatient seen today."},
		{PageNumber: 2, Text: "Provider: Saint Mary Medical Center\nFollowup visit."},
	}

	providers := Detect("src-1", pages)
	if len(providers) != 1 {
		t.Fatalf("expected candidates to cluster into 1 provider, got %d: %+v", len(providers), providers)
	}
	if len(providers[0].Evidence) != 2 {
		t.Errorf("expected 2 evidence entries, got %d", len(providers[0].Evidence))
	}
}

func TestDetectRejectsShortAndSentenceLikeCandidates(t *testing.T) {
	if !rejectCandidate("Hi") {
		t.Error("expected too-short candidate to be rejected")
	}
	if !rejectCandidate("the patient was seen today by the team") {
		t.Error("expected sentence-like candidate to be rejected")
	}
	if !rejectCandidate("Chief Complaint") {
		t.Error("expected stoplist term to be rejected")
	}
}

func TestNormalizeNameAbbreviations(t *testing.T) {
	if got := normalizeName("Saint Mary Medical Center"); got != "st mary medical ctr" {
		t.Errorf("unexpected normalization: %q", got)
	}
}

func TestInferTypeFromKeyword(t *testing.T) {
	if got := inferType("ABC Imaging Center"); got != domain.ProviderImaging {
		t.Errorf("expected imaging provider type, got %s", got)
	}
}
