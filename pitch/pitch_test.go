package pitch

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func TestTonicFromKeyMajor(t *testing.T) {
	cases := []struct {
		fifths int
		want   int
	}{
		{0, 0},  // C major
		{1, 7},  // G major
		{3, 9},  // A major
		{-1, 5}, // F major
		{-3, 3}, // Eb major
	}
	for _, c := range cases {
		if got := TonicFromKey(c.fifths, model.ModeMajor); got != c.want {
			t.Errorf("TonicFromKey(%d, major) = %d, want %d", c.fifths, got, c.want)
		}
	}
}

func TestTonicFromKeyMinor(t *testing.T) {
	// A minor shares C major's key signature (fifths=0).
	if got := TonicFromKey(0, model.ModeMinor); got != 9 {
		t.Errorf("TonicFromKey(0, minor) = %d, want 9 (A)", got)
	}
	// E minor shares G major's signature (fifths=1).
	if got := TonicFromKey(1, model.ModeMinor); got != 4 {
		t.Errorf("TonicFromKey(1, minor) = %d, want 4 (E)", got)
	}
}

func TestTonicFromKeyClampsOutOfRange(t *testing.T) {
	if got := TonicFromKey(20, model.ModeMajor); got != sharpTonics[7] {
		t.Errorf("expected clamp to 7 sharps, got %d", got)
	}
	if got := TonicFromKey(-20, model.ModeMajor); got != flatTonics[7] {
		t.Errorf("expected clamp to 7 flats, got %d", got)
	}
}

func TestScaleDegree(t *testing.T) {
	// Tonic C (0): diatonic degrees at 0,2,4,5,7,9,11.
	for pc, want := range map[int]int{0: 0, 2: 1, 4: 2, 5: 3, 7: 4, 9: 5, 11: 6} {
		if got := ScaleDegree(pc, 0, model.ModeMajor); got != want {
			t.Errorf("ScaleDegree(%d, 0) = %d, want %d", pc, got, want)
		}
	}
	for _, pc := range []int{1, 3, 6, 8, 10} {
		if got := ScaleDegree(pc, 0, model.ModeMajor); got != -1 {
			t.Errorf("ScaleDegree(%d, 0) = %d, want -1 (chromatic)", pc, got)
		}
	}
}

func TestScaleDegreeTransposed(t *testing.T) {
	// Tonic G (7): D (2) is the fifth degree (interval 7 semitones).
	if got := ScaleDegree(2, 7, model.ModeMajor); got != 4 {
		t.Errorf("ScaleDegree(2, 7) = %d, want 4", got)
	}
}

func TestMIDIDefaultsOnBadStep(t *testing.T) {
	p := model.PitchName{Step: -1, Octave: 4}
	if got := MIDI(p); got != 60 {
		t.Errorf("MIDI(bad step) = %d, want 60", got)
	}
}

func TestNameWrapsAroundRange(t *testing.T) {
	if got := Name(12); got != "C" {
		t.Errorf("Name(12) = %q, want C", got)
	}
	if got := Name(-1); got != "B" {
		t.Errorf("Name(-1) = %q, want B", got)
	}
}
