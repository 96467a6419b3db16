package alignment

import (
	"math"
	"testing"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

func makeResult(measureToTime map[int]float64, timeToMeasure map[float64]int, confidence float64) model.AlignmentResult {
	if timeToMeasure == nil {
		timeToMeasure = map[float64]int{}
	}
	return model.AlignmentResult{MeasureToTime: measureToTime, TimeToMeasure: timeToMeasure, Confidence: confidence}
}

func identityChroma(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, 12)
		row[i%12] = 1
		out[i] = row
	}
	return out
}

func TestAlignIdenticalSequencesIsDiagonalWithConfidence1(t *testing.T) {
	chroma := identityChroma(5)
	al := NewAligner(config.DefaultDTWConfig())
	timestamps := []float64{0, 1, 2, 3, 4}

	result := al.Align(chroma, 1, chroma, timestamps)
	if result.Confidence != 1 {
		t.Errorf("expected confidence 1 for identical sequences, got %v", result.Confidence)
	}
	for i, p := range result.Path {
		if p.SymbolicIndex != i || p.AcousticIndex != i {
			t.Errorf("expected diagonal path, got %+v at step %d", p, i)
		}
	}
}

func TestAlignEmptySequenceIsDegenerate(t *testing.T) {
	al := NewAligner(config.DefaultDTWConfig())
	result := al.Align(nil, 1, identityChroma(3), []float64{0, 1, 2})
	if len(result.Path) != 0 {
		t.Errorf("expected an empty path for a degenerate alignment, got %v", result.Path)
	}
	if !math.IsInf(result.Distance, 1) {
		t.Errorf("expected infinite distance for degenerate alignment, got %v", result.Distance)
	}
}

func TestMeasureToTimeInterpolates(t *testing.T) {
	r := makeResult(map[int]float64{1: 0.0, 3: 2.0}, nil, 1)
	got := MeasureToTime(r, 2)
	if got != 1.0 {
		t.Errorf("expected linear interpolation to 1.0, got %v", got)
	}
}

func TestAdjustAlignmentNeverBelowMinConfidence(t *testing.T) {
	al := NewAligner(config.DefaultDTWConfig())
	r := makeResult(map[int]float64{1: 0}, nil, 0.52)
	al.AdjustAlignment(&r, 2, 1.0)
	al.AdjustAlignment(&r, 2, 1.1)
	al.AdjustAlignment(&r, 2, 1.2)
	if r.Confidence < al.cfg.MinConfidence {
		t.Errorf("confidence should never drop below MinConfidence, got %v", r.Confidence)
	}
}
