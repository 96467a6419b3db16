package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func TestDetectMotivesRequiresTwoNotes(t *testing.T) {
	notes := []model.Note{note(1, 0, 60, 4)}
	timeSig := model.TimeSignature{Beats: 4, BeatType: 4}
	motives := DetectMotives(notes, timeSig)
	if len(motives) != 0 {
		t.Errorf("expected no motives from a single note, got %d", len(motives))
	}
}

func TestDetectMotivesSplitsOnStrongBeatsIn4_4(t *testing.T) {
	notes := []model.Note{
		note(1, 0, 60, 1),
		note(1, 1, 62, 1),
		note(1, 2, 64, 1),
		note(1, 3, 65, 1),
	}
	timeSig := model.TimeSignature{Beats: 4, BeatType: 4}
	motives := DetectMotives(notes, timeSig)
	if len(motives) != 2 {
		t.Fatalf("expected 2 motives split at beat 2, got %d", len(motives))
	}
	if motives[0].StartBeat != 0 || motives[1].StartBeat != 2 {
		t.Errorf("unexpected start beats: %v, %v", motives[0].StartBeat, motives[1].StartBeat)
	}
}

func TestDetectMotivesRepetitionClassifiedByHighSimilarity(t *testing.T) {
	// Two measures of an identical rising triad rhythm/interval shape.
	notes := []model.Note{
		note(1, 0, 60, 1), note(1, 1, 64, 1), note(1, 2, 67, 1), note(1, 3, 72, 1),
		note(2, 0, 60, 1), note(2, 1, 64, 1), note(2, 2, 67, 1), note(2, 3, 72, 1),
	}
	timeSig := model.TimeSignature{Beats: 4, BeatType: 4}
	motives := DetectMotives(notes, timeSig)
	if len(motives) < 2 {
		t.Fatalf("expected at least 2 motives, got %d", len(motives))
	}
	found := false
	for _, m := range motives[1:] {
		if m.Relationship == model.DevelopmentRepetition {
			found = true
		}
	}
	if !found {
		t.Errorf("expected at least one repetition-classified motive, got %+v", motives)
	}
}
