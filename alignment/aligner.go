package alignment

import (
	"math"
	"sort"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

// Aligner wraps RunDTW with the measure<->time mapping and manual
// adjustment behaviour of C11.
type Aligner struct {
	cfg config.DTWConfig
}

// NewAligner builds an Aligner. A zero-value cfg falls back to
// config.DefaultDTWConfig.
func NewAligner(cfg config.DTWConfig) *Aligner {
	if cfg.FramesPerMeasure == 0 {
		cfg = config.DefaultDTWConfig()
	}
	return &Aligner{cfg: cfg}
}

// Align computes the DTW alignment between symbolic chroma matrix s
// (derived from notes, firstMeasure-indexed) and acoustic chroma matrix a
// with timestamps, building the measure<->time maps and reporting
// confidence (spec.md §4.11).
func (al *Aligner) Align(s [][]float64, firstMeasure int, a [][]float64, timestamps []float64) model.AlignmentResult {
	if len(s) == 0 || len(a) == 0 {
		return model.AlignmentResult{
			Path:          nil,
			MeasureToTime: map[int]float64{},
			TimeToMeasure: map[float64]int{},
			Confidence:    0,
			Distance:      math.Inf(1),
		}
	}

	dtw := RunDTW(s, a)

	measureToTime := make(map[int]float64)
	timeToMeasure := make(map[float64]int)
	for _, p := range dtw.path {
		measure := firstMeasure + p.i/framesPerMeasure
		var t float64
		if p.j < len(timestamps) {
			t = timestamps[p.j]
		}
		measureToTime[measure] = t
		quantized := quantize(t, al.cfg.TimeQuantizeSeconds)
		timeToMeasure[quantized] = measure
	}

	points := make([]model.AlignPoint, len(dtw.path))
	for i, p := range dtw.path {
		points[i] = model.AlignPoint{SymbolicIndex: p.i, AcousticIndex: p.j}
	}

	return model.AlignmentResult{
		Path:          points,
		MeasureToTime: measureToTime,
		TimeToMeasure: timeToMeasure,
		Confidence:    dtw.confidence,
		Distance:      dtw.distance,
	}
}

func quantize(t, step float64) float64 {
	if step <= 0 {
		return t
	}
	return math.Round(t/step) * step
}

// MeasureToTime returns the time for measure m by linear interpolation
// between the two closest known measures in result. Convention: if result
// is degenerate (empty path), returns 0.
func MeasureToTime(result model.AlignmentResult, m int) float64 {
	if t, ok := result.MeasureToTime[m]; ok {
		return t
	}
	if len(result.MeasureToTime) == 0 {
		return 0
	}

	measures := sortedKeys(result.MeasureToTime)
	below, above := -1, -1
	for _, km := range measures {
		if km <= m {
			below = km
		}
		if km >= m && above == -1 {
			above = km
		}
	}

	switch {
	case below == -1:
		return result.MeasureToTime[above]
	case above == -1:
		return result.MeasureToTime[below]
	case below == above:
		return result.MeasureToTime[below]
	default:
		tBelow, tAbove := result.MeasureToTime[below], result.MeasureToTime[above]
		frac := float64(m-below) / float64(above-below)
		return tBelow + frac*(tAbove-tBelow)
	}
}

// TimeToMeasure looks up the measure nearest to t via the 0.1s-quantised
// reverse map, falling back to a full scan if t's own bucket is unpopulated.
func TimeToMeasure(result model.AlignmentResult, t float64, quantizeStep float64) int {
	if quantizeStep <= 0 {
		quantizeStep = config.DefaultDTWConfig().TimeQuantizeSeconds
	}
	key := quantize(t, quantizeStep)
	if m, ok := result.TimeToMeasure[key]; ok {
		return m
	}

	bestMeasure := 0
	bestDist := math.Inf(1)
	for k, m := range result.TimeToMeasure {
		if d := math.Abs(k - t); d < bestDist {
			bestDist = d
			bestMeasure = m
		}
	}
	return bestMeasure
}

// AdjustAlignment manually overwrites both directions of the mapping for
// measure m and time t, then reduces confidence by ManualEditPenalty,
// never below MinConfidence (§4.11).
func (al *Aligner) AdjustAlignment(result *model.AlignmentResult, m int, t float64) {
	result.MeasureToTime[m] = t
	result.TimeToMeasure[quantize(t, al.cfg.TimeQuantizeSeconds)] = m

	result.Confidence -= al.cfg.ManualEditPenalty
	if result.Confidence < al.cfg.MinConfidence {
		result.Confidence = al.cfg.MinConfidence
	}
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
