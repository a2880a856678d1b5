package dateextract

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

func TestExtractTier1(t *testing.T) {
	d, ok := ExtractTier1("Date of Service: 03/14/2024\nPatient seen for followup.")
	if !ok {
		t.Fatal("expected tier1 match")
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 14 {
		t.Errorf("unexpected date: %v", d)
	}
}

func TestResolvePageDatePrefersTier1(t *testing.T) {
	c := ResolvePageDate("DOS: 01/02/2024\nHeader date 05/05/2020", time.Now(), time.Time{})
	if c.Source != domain.DateTier1 {
		t.Errorf("expected tier1, got %s", c.Source)
	}
}

func TestResolvePageDateFallsBackToPropagated(t *testing.T) {
	propagated := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	c := ResolvePageDate("no date markers here at all", propagated, time.Time{})
	if c.Source != domain.DatePropagated {
		t.Errorf("expected propagated, got %s", c.Source)
	}
	if !c.Date.Equal(propagated) {
		t.Errorf("expected propagated date to carry through")
	}
}

func TestExtractAnchor(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d, ok := ExtractAnchor("Hospital Day 3 progress note", anchor)
	if !ok {
		t.Fatal("expected anchor match")
	}
	if !d.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected anchor-resolved date: %v", d)
	}
}

func TestContextYear(t *testing.T) {
	if y := ContextYear("seen on 02/14/2024 for followup", 2026); y != 2024 {
		t.Errorf("expected 2024, got %d", y)
	}
}
