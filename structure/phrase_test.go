package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func TestDetectPhrasesCoversFullRange(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 8; m++ {
		notes = append(notes, note(m, 0, 60, 4))
	}
	cadences := []model.Cadence{
		{Measure: 4, Type: model.CadencePAC, Strength: model.StrengthStrong, Confidence: 0.95},
	}
	phrases := DetectPhrases(notes, cadences, 1, 8)
	if len(phrases) == 0 {
		t.Fatal("expected at least one phrase")
	}
	if phrases[0].StartMeasure != 1 {
		t.Errorf("first phrase should start at measure 1, got %d", phrases[0].StartMeasure)
	}
	last := phrases[len(phrases)-1]
	if last.EndMeasure != 8 {
		t.Errorf("last phrase should end at measure 8, got %d", last.EndMeasure)
	}
}

func TestDetectPhrasesSplitsLongSpan(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 20; m++ {
		notes = append(notes, note(m, 0, 60, 4))
	}
	cadences := []model.Cadence{
		{Measure: 20, Type: model.CadencePAC, Strength: model.StrengthStrong, Confidence: 0.95},
	}
	phrases := DetectPhrases(notes, cadences, 1, 20)
	if len(phrases) != 2 {
		t.Fatalf("expected a 20-measure closed span to split into 2 phrases, got %d", len(phrases))
	}
}

func TestDetectPhrasesMergesCadencesOneMeasureApart(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 9; m++ {
		notes = append(notes, note(m, 0, 60, 4))
	}
	cadences := []model.Cadence{
		{Measure: 4, Type: model.CadencePAC, Strength: model.StrengthStrong, Confidence: 0.95},
		{Measure: 5, Type: model.CadenceHalf, Strength: model.StrengthModerate, Confidence: 0.8},
		{Measure: 9, Type: model.CadencePAC, Strength: model.StrengthStrong, Confidence: 0.95},
	}
	phrases := DetectPhrases(notes, cadences, 1, 9)
	for _, p := range phrases {
		length := p.EndMeasure - p.StartMeasure + 1
		if length < phraseMinLength {
			t.Errorf("phrase [%d,%d] has length %d, want >= %d", p.StartMeasure, p.EndMeasure, length, phraseMinLength)
		}
	}
}

func TestClosureReflectsCadenceStrength(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 4; m++ {
		notes = append(notes, note(m, 0, 60, 4))
	}
	strongCadence := []model.Cadence{{Measure: 4, Type: model.CadencePAC, Confidence: 0.95}}
	phrases := DetectPhrases(notes, strongCadence, 1, 4)
	if phrases[0].Closure != model.ClosureClosed {
		t.Errorf("PAC-closed phrase should be Closure=closed, got %v", phrases[0].Closure)
	}
}
