package mp4source

import "testing"

func TestStepZeroDuration(t *testing.T) {
	if got := Step(30, 0); got != 1 {
		t.Errorf("Step(30, 0) = %d, want 1", got)
	}
}

func TestStepExactDivision(t *testing.T) {
	if got := Step(30, 3); got != 10 {
		t.Errorf("Step(30, 3) = %d, want 10", got)
	}
}

func TestStepRoundsUp(t *testing.T) {
	// ceil(31/3) = 11
	if got := Step(31, 3); got != 11 {
		t.Errorf("Step(31, 3) = %d, want 11", got)
	}
}

func TestStepNeverBelowOne(t *testing.T) {
	if got := Step(0, 3); got != 1 {
		t.Errorf("Step(0, 3) = %d, want 1", got)
	}
	if got := Step(1, 1000); got != 1 {
		t.Errorf("Step(1, 1000) = %d, want 1", got)
	}
}

func TestStepNegativeDurationTreatedAsUnknown(t *testing.T) {
	if got := Step(30, -1); got != 1 {
		t.Errorf("Step(30, -1) = %d, want 1", got)
	}
}
