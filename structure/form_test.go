package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func makePeriod(index int, material string, start, end int) model.Period {
	return model.Period{
		Index:        index,
		StartMeasure: start,
		EndMeasure:   end,
		Material:     material,
		Phrases:      []model.Phrase{makePhrase(start, end, model.ClosureClosed, 0.9)},
	}
}

func TestClassifyFormZeroPeriods(t *testing.T) {
	form := ClassifyForm(nil, 1, 1)
	if form.FormType != model.FormOnePart {
		t.Errorf("expected one_part for zero periods, got %v", form.FormType)
	}
	if form.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", form.Confidence)
	}
}

func TestClassifyFormSinglePeriod(t *testing.T) {
	periods := []model.Period{makePeriod(0, "a", 1, 8)}
	form := ClassifyForm(periods, 1, 8)
	if form.FormType != model.FormOnePart {
		t.Errorf("expected one_part for a single period, got %v", form.FormType)
	}
	if form.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", form.Confidence)
	}
}

func TestBuildMaterialPatternRecapitulation(t *testing.T) {
	periods := []model.Period{
		makePeriod(0, "a", 1, 8),
		makePeriod(1, "b", 9, 16),
		makePeriod(2, "a", 17, 24),
	}
	pattern := buildMaterialPattern(periods)
	if pattern.Pattern != "aba" {
		t.Errorf("expected pattern 'aba', got %q", pattern.Pattern)
	}
	if !pattern.HasRecapitulation {
		t.Error("expected HasRecapitulation true when first material == last material")
	}
}

func TestTryPopularFormAABA(t *testing.T) {
	pattern := model.MaterialPattern{Pattern: "aaba", Counts: map[string]int{"a": 3, "b": 1}}
	form, ok := tryPopularForm(pattern)
	if !ok || form.FormType != model.FormAABA {
		t.Errorf("expected aaba form, got %v ok=%v", form, ok)
	}
}
