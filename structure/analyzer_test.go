package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/config"
)

func TestAnalyzerAnalyzeDeterministic(t *testing.T) {
	score := buildScore(16)
	analyzer := NewAnalyzer(config.DefaultAnalysisConfig(), nil)

	first, err := analyzer.Analyze(score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := analyzer.Analyze(score)
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}

	if first.Form.FormType != second.Form.FormType {
		t.Errorf("expected deterministic form classification, got %v then %v", first.Form.FormType, second.Form.FormType)
	}
	if first.Statistics.CadenceCount != second.Statistics.CadenceCount {
		t.Errorf("expected deterministic cadence count, got %d then %d", first.Statistics.CadenceCount, second.Statistics.CadenceCount)
	}
	if len(first.Tree.Nodes) != len(second.Tree.Nodes) {
		t.Errorf("expected deterministic tree size, got %d then %d", len(first.Tree.Nodes), len(second.Tree.Nodes))
	}
}

func TestAnalyzerRejectsInvalidScore(t *testing.T) {
	score := buildScore(4)
	score.KeySignature.Fifths = 99
	analyzer := NewAnalyzer(config.DefaultAnalysisConfig(), nil)

	if _, err := analyzer.Analyze(score); err == nil {
		t.Error("expected an error for an out-of-range key signature")
	}
}

func TestAnalyzerHandlesInsufficientData(t *testing.T) {
	score := buildScore(1)
	score.Notes = nil
	analyzer := NewAnalyzer(config.DefaultAnalysisConfig(), nil)

	result, err := analyzer.Analyze(score)
	if err != nil {
		t.Fatalf("unexpected error for insufficient data: %v", err)
	}
	if result == nil || result.Tree == nil {
		t.Error("expected a non-nil (possibly empty) analysis for insufficient data")
	}
}
