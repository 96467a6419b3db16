package structure

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/similarity"
)

// minMotiveNotes is the smallest note count a motive candidate may carry.
const minMotiveNotes = 2

// DetectMotives segments notes into motive candidates at strong-beat
// boundaries within each measure and classifies each motive's relationship
// to its predecessor (spec.md §4.4).
func DetectMotives(notes []model.Note, timeSig model.TimeSignature) []model.Motive {
	byMeasure := groupByMeasure(notes)
	measures := sortedMeasures(byMeasure)

	strongBeats := []float64{0}
	if timeSig.Beats == 4 {
		strongBeats = append(strongBeats, 2)
	}

	var motives []model.Motive
	index := 0
	for _, m := range measures {
		measureNotes := append([]model.Note(nil), byMeasure[m]...)
		sort.Slice(measureNotes, func(i, j int) bool { return measureNotes[i].Beat < measureNotes[j].Beat })

		for b := 0; b < len(strongBeats); b++ {
			start := strongBeats[b]
			end := -1.0
			if b+1 < len(strongBeats) {
				end = strongBeats[b+1]
			}

			var candidate []model.Note
			for _, n := range measureNotes {
				if n.Beat < start {
					continue
				}
				if end >= 0 && n.Beat >= end {
					continue
				}
				candidate = append(candidate, n)
			}
			if len(candidate) < minMotiveNotes {
				continue
			}

			motive := buildMotive(index, m, start, candidate)
			if len(motives) > 0 {
				classifyMotiveRelationship(&motive, motives[len(motives)-1])
			}
			motives = append(motives, motive)
			index++
		}
	}

	return motives
}

func buildMotive(index, measure int, startBeat float64, notes []model.Note) model.Motive {
	intervals := make([]int, 0, len(notes)-1)
	rhythm := make([]float64, 0, len(notes))
	for i, n := range notes {
		rhythm = append(rhythm, n.Duration)
		if i == 0 || n.IsRest() || notes[i-1].IsRest() {
			continue
		}
		intervals = append(intervals, n.Pitch.MIDI()-notes[i-1].Pitch.MIDI())
	}

	return model.Motive{
		ID:              model.MotiveID(fmt.Sprintf("m%d", index)),
		Index:           index,
		Measure:         measure,
		StartBeat:       startBeat,
		Notes:           notes,
		IntervalPattern: intervals,
		RhythmPattern:   rhythm,
		Contour:         contourOf(intervals),
		Relationship:    model.DevelopmentNew,
		Confidence:      0.6,
	}
}

func contourOf(intervals []int) model.Contour {
	sum := 0
	for _, iv := range intervals {
		sum += iv
	}
	switch {
	case sum > 0:
		return model.ContourAscending
	case sum < 0:
		return model.ContourDescending
	default:
		return model.ContourStatic
	}
}

// classifyMotiveRelationship fills in cur's Relationship/Confidence/
// Transposition/RelatedTo against the previous motive, following the
// first-matching row of §4.4's development-technique table.
func classifyMotiveRelationship(cur *model.Motive, prev model.Motive) {
	f1, f2 := toFloat(prev.IntervalPattern), toFloat(cur.IntervalPattern)
	r1, r2 := prev.RhythmPattern, cur.RhythmPattern

	intervalSim := similarity.CompareArrays(f1, f2)
	rhythmSim := similarity.CompareArrays(r1, r2)
	transposition := similarity.DetectTransposition(notesMIDI(prev.Notes), notesMIDI(cur.Notes))

	prevID := prev.ID

	switch {
	case intervalSim > 0.9 && rhythmSim > 0.9:
		cur.Relationship, cur.Confidence = model.DevelopmentRepetition, 0.95
	case intervalSim > 0.8 && rhythmSim > 0.7 && transposition != 0:
		cur.Relationship, cur.Confidence, cur.Transposition = model.DevelopmentSequence, 0.85, transposition
	case rhythmSim > 0.8 && intervalSim < 0.5:
		cur.Relationship, cur.Confidence = model.DevelopmentVariation, 0.70
	case isFragmentation(f1, f2):
		cur.Relationship, cur.Confidence = model.DevelopmentFragmentation, 0.75
	case similarity.IsInversion(f1, f2):
		cur.Relationship, cur.Confidence = model.DevelopmentInversion, 0.80
	default:
		cur.Relationship, cur.Confidence = model.DevelopmentNew, 0.60
		return
	}
	cur.RelatedTo = &prevID
}

// isFragmentation requires the second interval pattern to be meaningfully
// shorter than the first, with its truncated prefix still resembling it.
func isFragmentation(i1, i2 []float64) bool {
	if len(i1) == 0 {
		return false
	}
	if float64(len(i2)) >= 0.8*float64(len(i1)) {
		return false
	}
	n := len(i2)
	if n > len(i1) {
		n = len(i1)
	}
	return similarity.CompareArrays(i1[:n], i2) > 0.7
}

func toFloat(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func notesMIDI(notes []model.Note) []int {
	var out []int
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		out = append(out, n.Pitch.MIDI())
	}
	return out
}
