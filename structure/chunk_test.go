package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

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

func TestRunLocalDetectorsSmallScoreUnchunked(t *testing.T) {
	score := buildScore(8)
	cfg := config.DefaultAnalysisConfig()
	motives, subPhrases, skipped := RunLocalDetectors(score, cfg, nil)
	if len(motives) == 0 {
		t.Error("expected motives from an 8-measure score")
	}
	if len(subPhrases) == 0 {
		t.Error("expected sub-phrases from an 8-measure score")
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped chunks for a small score, got %v", skipped)
	}
}

func TestRunLocalDetectorsLargeScoreChunks(t *testing.T) {
	score := buildScore(200)
	cfg := config.DefaultAnalysisConfig()
	motives, subPhrases, _ := RunLocalDetectors(score, cfg, nil)
	if len(motives) == 0 {
		t.Error("expected motives from a large chunked score")
	}
	if len(subPhrases) == 0 {
		t.Error("expected sub-phrases from a large chunked score")
	}
}
