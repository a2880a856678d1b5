package pageclass

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
)

func TestClassifyBilling(t *testing.T) {
	pt, conf := Classify("Statement of Account - Balance Due $120.00, CPT 99213")
	if pt != domain.PageBilling {
		t.Errorf("expected billing, got %s", pt)
	}
	if conf <= 0 {
		t.Error("expected positive confidence")
	}
}

func TestClassifyImaging(t *testing.T) {
	pt, _ := Classify("MRI Lumbar Spine: Findings: disc herniation. Impression: L4-L5 protrusion.")
	if pt != domain.PageImagingReport {
		t.Errorf("expected imaging_report, got %s", pt)
	}
}

func TestClassifyOtherWhenNoSignal(t *testing.T) {
	pt, conf := Classify("random unrelated text with no clinical markers")
	if pt != domain.PageOther {
		t.Errorf("expected other, got %s", pt)
	}
	if conf != 40 {
		t.Errorf("expected default confidence 40, got %d", conf)
	}
}
