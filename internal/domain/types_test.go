package domain

import "testing"

func TestDateSourceRank(t *testing.T) {
	tests := []struct {
		name string
		a, b DateSource
	}{
		{"tier1 beats tier2", DateTier1, DateTier2},
		{"tier2 beats propagated", DateTier2, DatePropagated},
		{"propagated beats neither lower", DatePropagated, DateSource("bogus")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Rank() <= tt.b.Rank() {
				t.Errorf("expected %s to rank above %s", tt.a, tt.b)
			}
		})
	}
}

func TestClassPriorityRank(t *testing.T) {
	if ClassPriorityRank(PageBilling) >= ClassPriorityRank(PageOther) {
		t.Error("billing should outrank other in tiebreaks")
	}
	if ClassPriorityRank(PageType("unknown")) != len(classPriority) {
		t.Error("unknown page type should sort last")
	}
}

func TestRunStatusTransitions(t *testing.T) {
	if !RunPending.CanTransitionTo(RunRunning) {
		t.Error("pending should be able to transition to running")
	}
	if !RunRunning.CanTransitionTo(RunSuccess) {
		t.Error("running should be able to transition to success")
	}
	if RunSuccess.CanTransitionTo(RunRunning) {
		t.Error("terminal states must not transition backwards")
	}
	if RunFailed.CanTransitionTo(RunPartial) {
		t.Error("one terminal state cannot transition to another")
	}
}

func TestValidateYear(t *testing.T) {
	if err := ValidateYear(1969, 2026); err == nil {
		t.Error("expected error for year before 1970")
	}
	if err := ValidateYear(2027, 2026); err == nil {
		t.Error("expected error for year after current")
	}
	if err := ValidateYear(2020, 2026); err != nil {
		t.Errorf("expected no error for sane year, got %v", err)
	}
}

func TestPageTypeIsValid(t *testing.T) {
	if !PageClinicalNote.IsValid() {
		t.Error("clinical_note should be valid")
	}
	if PageType("nonsense").IsValid() {
		t.Error("unknown page type should be invalid")
	}
}
