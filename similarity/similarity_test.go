package similarity

import "testing"

func TestCompareArraysEmpty(t *testing.T) {
	if got := CompareArrays(nil, []float64{1, 2}); got != 0 {
		t.Errorf("CompareArrays(nil, ...) = %v, want 0", got)
	}
	if got := CompareArrays([]float64{1}, nil); got != 0 {
		t.Errorf("CompareArrays(..., nil) = %v, want 0", got)
	}
}

func TestCompareArraysIdentical(t *testing.T) {
	a := []float64{2, 4, 5, 7}
	if got := CompareArrays(a, a); got != 1 {
		t.Errorf("CompareArrays(a, a) = %v, want 1", got)
	}
}

func TestCompareArraysLengthPenalty(t *testing.T) {
	a := []float64{2, 4, 5, 7}
	b := []float64{2, 4}
	got := CompareArrays(a, b)
	// minLen=2 maxLen=4, all positions match -> 1 * (1 - 2/4) = 0.5
	if got != 0.5 {
		t.Errorf("CompareArrays with length mismatch = %v, want 0.5", got)
	}
}

func TestDetectTransposition(t *testing.T) {
	midi1 := []int{60, 62, 64}
	midi2 := []int{62, 64, 66}
	if got := DetectTransposition(midi1, midi2); got != 2 {
		t.Errorf("DetectTransposition = %d, want 2", got)
	}
	if got := DetectTransposition(nil, midi2); got != 0 {
		t.Errorf("DetectTransposition(nil, ...) = %d, want 0", got)
	}
}

func TestMelodicSimilarityWeighting(t *testing.T) {
	intervals := []float64{2, 2, -2}
	rhythm := []float64{1, 1, 2}
	got := MelodicSimilarity(intervals, intervals, rhythm, rhythm)
	if got != 1 {
		t.Errorf("MelodicSimilarity(identical, identical) = %v, want 1", got)
	}
}

func TestIsInversion(t *testing.T) {
	i1 := []float64{2, 2, -4}
	i2 := []float64{-2, -2, 4}
	if !IsInversion(i1, i2) {
		t.Error("expected exact negation to be an inversion")
	}
	if IsInversion(i1, []float64{2, 2}) {
		t.Error("expected mismatched lengths to not be an inversion")
	}
	if IsInversion(nil, nil) {
		t.Error("expected empty input to not be an inversion")
	}
}
