package segment

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
)

func TestBuildSplitsOnTypeChange(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, PageType: domain.PageClinicalNote, Confidence: 80},
		{PageNumber: 2, PageType: domain.PageClinicalNote, Confidence: 80},
		{PageNumber: 3, PageType: domain.PageImagingReport, Confidence: 90},
	}

	docs := Build("src-1", pages)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].PageStart != 1 || docs[0].PageEnd != 2 {
		t.Errorf("expected first document to span 1-2, got %d-%d", docs[0].PageStart, docs[0].PageEnd)
	}
	if docs[0].DeclaredType != domain.PageClinicalNote {
		t.Errorf("expected clinical_note declared type, got %s", docs[0].DeclaredType)
	}
	if docs[1].PageStart != 3 || docs[1].PageEnd != 3 {
		t.Errorf("expected second document to be page 3 only, got %d-%d", docs[1].PageStart, docs[1].PageEnd)
	}
}

func TestBuildSpansPartitionExactly(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 10, PageType: domain.PageLab},
		{PageNumber: 11, PageType: domain.PageLab},
	}
	docs := Build("src-1", pages)
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	spans := docs[0].PageTypes
	if len(spans) != 1 || spans[0].Start != 10 || spans[0].End != 11 {
		t.Errorf("expected single span 10-11, got %+v", spans)
	}
}
