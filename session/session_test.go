package session

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

func note(measure int, beat float64, midi int, duration float64) model.Note {
	octave := midi/12 - 1
	pc := midi % 12
	steps := []model.Step{model.StepC, model.StepC, model.StepD, model.StepD, model.StepE, model.StepF, model.StepF, model.StepG, model.StepG, model.StepA, model.StepA, model.StepB}
	return model.Note{
		Pitch:    &model.PitchName{Step: steps[pc], Accidental: model.AccidentalNatural, Octave: octave},
		Duration: duration,
		Measure:  measure,
		Beat:     beat,
	}
}

func buildScore(numMeasures int) *model.ParsedScore {
	score := &model.ParsedScore{
		KeySignature:  model.KeySignature{Fifths: 0, Mode: model.ModeMajor},
		TimeSignature: model.TimeSignature{Beats: 4, BeatType: 4},
	}
	for m := 1; m <= numMeasures; m++ {
		score.Measures = append(score.Measures, model.MeasureInfo{Number: m})
		score.Notes = append(score.Notes,
			note(m, 0, 60, 1), note(m, 1, 62, 1), note(m, 2, 64, 1), note(m, 3, 65, 1))
	}
	return score
}

func TestAnalyzeCompleteBuildsTree(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	analysis, err := s.AnalyzeComplete(buildScore(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Tree == nil || len(analysis.Tree.Nodes) == 0 {
		t.Fatal("expected a non-empty tree")
	}
}

func TestGetRecommendationsReturnsRuleBasedSchemesInitially(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	analysis, err := s.AnalyzeComplete(buildScore(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	schemes, err := s.GetRecommendations(analysis.Tree.Root, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schemes) == 0 {
		t.Fatal("expected at least one recommended scheme")
	}
	for _, sch := range schemes {
		if sch.FromPreference {
			t.Error("expected rule-based schemes before any preference history exists")
		}
	}
}

func TestRecordSelectionRejectsUnknownScheme(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	analysis, err := s.AnalyzeComplete(buildScore(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RecordSelection(analysis.Tree.Root, "nonexistent-scheme", "accept"); err == nil {
		t.Error("expected an error for an unrecorded scheme id")
	}
}

func TestRecordSelectionAcceptsRecommendedScheme(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	analysis, err := s.AnalyzeComplete(buildScore(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	schemes, err := s.GetRecommendations(analysis.Tree.Root, 3)
	if err != nil || len(schemes) == 0 {
		t.Fatalf("setup failed: %v", err)
	}
	if err := s.RecordSelection(analysis.Tree.Root, schemes[0].ID, "accept"); err != nil {
		t.Errorf("expected accept to succeed, got %v", err)
	}
}

func TestExportRequiresAnalysis(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	if _, err := s.Export(); err == nil {
		t.Error("expected Export to fail before AnalyzeComplete")
	}
}

func TestExportImportRoundTripsTree(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	analysis, err := s.AnalyzeComplete(buildScore(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := s.Export()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := NewSession("s2", config.DefaultConfig(), nil)
	if err := restored.Import(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(restored.analysis.Tree.Nodes) != len(analysis.Tree.Nodes) {
		t.Errorf("expected %d nodes after import, got %d", len(analysis.Tree.Nodes), len(restored.analysis.Tree.Nodes))
	}
}

func TestResetClearsAnalysis(t *testing.T) {
	s := NewSession("s1", config.DefaultConfig(), nil)
	if _, err := s.AnalyzeComplete(buildScore(16)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Reset()
	if s.analysis != nil {
		t.Error("expected Reset to clear the analysis")
	}
}
