package structure

import (
	"math"
	"sort"

	"github.com/RyanBlaney/scoreform-go/model"
	"gonum.org/v1/gonum/stat"
)

// scaleProfiles enumerates the candidate scales checked against a
// tonic-relative pitch-class histogram, each as a set of in-scale degrees
// (semitones from tonic).
var scaleProfiles = []struct {
	name    string
	degrees []int
}{
	{"major", []int{0, 2, 4, 5, 7, 9, 11}},
	{"natural_minor", []int{0, 2, 3, 5, 7, 8, 10}},
	{"harmonic_minor", []int{0, 2, 3, 5, 7, 8, 11}},
	{"dorian", []int{0, 2, 3, 5, 7, 9, 10}},
	{"phrygian", []int{0, 1, 3, 5, 7, 8, 10}},
	{"lydian", []int{0, 2, 4, 6, 7, 9, 11}},
	{"mixolydian", []int{0, 2, 4, 5, 7, 9, 10}},
	{"aeolian", []int{0, 2, 3, 5, 7, 8, 10}},
	{"locrian", []int{0, 1, 3, 5, 6, 8, 10}},
	{"major_pentatonic", []int{0, 2, 4, 7, 9}},
	{"minor_pentatonic", []int{0, 3, 5, 7, 10}},
	{"egyptian_pentatonic", []int{0, 2, 5, 7, 10}},
	{"blues_minor_pentatonic", []int{0, 3, 5, 8, 10}},
	{"blues_major_pentatonic", []int{0, 2, 5, 7, 9}},
}

// ModeResult is the outcome of the mode detector: the winning scale's name
// and score, plus the runner-up for context.
type ModeResult struct {
	Mode            string
	Confidence      float64
	RunnerUp        string
	RunnerUpScore   float64
}

// DetectMode builds a duration-weighted, tonic-relative pitch-class
// histogram and scores every candidate scale by the fraction of weight
// that falls on scale degrees, returning the top match and runner-up
// (§4.8). There is no accept/reject threshold; the score doubles as a
// confidence value.
func DetectMode(notes []model.Note, tonic int) ModeResult {
	histogram := make([]float64, 12)
	var total float64
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		pc := ((n.Pitch.PitchClass()-tonic)%12 + 12) % 12
		histogram[pc] += n.Duration
		total += n.Duration
	}
	if total == 0 {
		return ModeResult{Mode: "major", Confidence: 0}
	}

	type scored struct {
		name        string
		score       float64
		correlation float64
	}
	results := make([]scored, 0, len(scaleProfiles))
	for _, profile := range scaleProfiles {
		template := make([]float64, 12)
		for _, d := range profile.degrees {
			template[d] = 1
		}
		// Coverage ratio as a histogram-weighted mean of the scale's
		// binary template: sum(histogram[pc]*template[pc]) / sum(histogram).
		score := stat.Mean(template, histogram)
		corr := stat.Correlation(histogram, template, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		results = append(results, scored{profile.name, score, corr})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if math.Abs(results[i].score-results[j].score) > 1e-9 {
			return results[i].score > results[j].score
		}
		// Break near-ties with the shape correlation between histogram
		// and template, rather than leaving them in scaleProfiles order.
		return results[i].correlation > results[j].correlation
	})

	out := ModeResult{Mode: results[0].name, Confidence: results[0].score}
	if len(results) > 1 {
		out.RunnerUp = results[1].name
		out.RunnerUpScore = results[1].score
	}
	return out
}
