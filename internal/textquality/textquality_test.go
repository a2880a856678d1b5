package textquality

import "testing"

func TestIsNoise(t *testing.T) {
	if !IsNoise("FROM: the front desk TO: all of the staff at the other site") {
		t.Error("expected fax banner to be noise")
	}
	if IsNoise("Patient prescribed amoxicillin 500 mg for acute sinusitis, ICD-10 J01.90") {
		t.Error("expected dense clinical text to not be noise")
	}
}

func TestHasStructuredSignals(t *testing.T) {
	if !HasStructuredSignals("Diagnosis: J01.90") {
		t.Error("expected ICD-10 code to be a structured signal")
	}
	if !HasStructuredSignals("CPT 99213 billed") {
		t.Error("expected 5-digit CPT code to be a structured signal")
	}
	if !HasStructuredSignals("prescribed 500 mg ibuprofen") {
		t.Error("expected dosage expression to be a structured signal")
	}
	if HasStructuredSignals("just a regular sentence with no markers at all here") {
		t.Error("expected plain prose to carry no structured signal")
	}
}

func TestClean(t *testing.T) {
	in := "FROM: Front Desk\nDr. Smith seen\nDr. Smith seen\nTO: 555-123-4567"
	out := Clean(in)
	if out != "Dr. Smith seen" {
		t.Errorf("expected deduped single line, got %q", out)
	}
}
