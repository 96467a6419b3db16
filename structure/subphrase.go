package structure

import (
	"fmt"

	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/similarity"
)

// splitNoteThreshold and splitDurationThreshold gate the internal-break
// split rule: a measure splits into two sub-phrases when it carries more
// than this many notes and contains a note whose duration crosses the
// threshold (or a non-boundary rest) partway through.
const (
	splitNoteThreshold     = 4
	splitDurationThreshold = 2.0
)

// DetectSubPhrases emits one sub-phrase per measure, splitting a measure in
// two when it is dense and contains an internal rhythmic break, then labels
// material greedily by comparison with every earlier sub-phrase (§4.4).
func DetectSubPhrases(notes []model.Note) []model.SubPhrase {
	// Rests stay in each measure's notes (groupByMeasure drops them) so
	// hasInternalBreak can see a non-boundary rest.
	byMeasure := make(map[int][]model.Note)
	for _, n := range notes {
		byMeasure[n.Measure] = append(byMeasure[n.Measure], n)
	}
	measures := sortedMeasures(byMeasure)

	var subPhrases []model.SubPhrase
	index := 0
	for _, m := range measures {
		measureNotes := byMeasure[m]
		for _, seg := range segmentMeasure(measureNotes) {
			sp := model.SubPhrase{
				ID:           model.SubPhraseID(fmt.Sprintf("sp%d", index)),
				Index:        index,
				StartMeasure: m,
				EndMeasure:   m,
				StartBeat:    seg.startBeat,
				EndBeat:      seg.endBeat,
				Notes:        seg.notes,
			}
			labelMaterial(&sp, subPhrases)
			subPhrases = append(subPhrases, sp)
			index++
		}
	}
	return subPhrases
}

type measureSegment struct {
	startBeat, endBeat float64
	notes              []model.Note
}

func segmentMeasure(notes []model.Note) []measureSegment {
	if !hasInternalBreak(notes) {
		return []measureSegment{{startBeat: 0, endBeat: 4, notes: notes}}
	}

	mid := len(notes) / 2
	return []measureSegment{
		{startBeat: 0, endBeat: 2, notes: notes[:mid]},
		{startBeat: 2, endBeat: 4, notes: notes[mid:]},
	}
}

func hasInternalBreak(notes []model.Note) bool {
	if len(notes) <= splitNoteThreshold {
		return false
	}
	for i, n := range notes {
		isBoundary := i == 0 || i == len(notes)-1
		if isBoundary {
			continue
		}
		if n.Duration >= splitDurationThreshold {
			return true
		}
		if n.IsRest() {
			return true
		}
	}
	return false
}

// labelMaterial compares sp against every earlier sub-phrase and assigns
// the greedy material label per §4.4: suffix ' for the best match at
// similarity >= 0.8, suffix v at >= 0.5, otherwise a fresh letter.
func labelMaterial(sp *model.SubPhrase, earlier []model.SubPhrase) {
	if len(earlier) == 0 {
		sp.Material = "a"
		return
	}

	bestSim := -1.0
	var bestOf model.SubPhrase
	for _, prev := range earlier {
		sim := subPhraseSimilarity(*sp, prev)
		if sim > bestSim {
			bestSim = sim
			bestOf = prev
		}
	}

	switch {
	case bestSim >= 0.8:
		sp.Material = bestOf.Material + "'"
		sp.SimilarTo = &bestOf.ID
		sp.Similarity = bestSim
	case bestSim >= 0.5:
		sp.Material = bestOf.Material + "v"
		sp.SimilarTo = &bestOf.ID
		sp.Similarity = bestSim
	default:
		sp.Material = nextLetter(earlier)
	}
}

func subPhraseSimilarity(a, b model.SubPhrase) float64 {
	ia, ra := intervalAndRhythm(a.Notes)
	ib, rb := intervalAndRhythm(b.Notes)
	return 0.6*similarity.CompareArrays(ia, ib) + 0.4*similarity.CompareArrays(ra, rb)
}

func intervalAndRhythm(notes []model.Note) (intervals, rhythm []float64) {
	for i, n := range notes {
		rhythm = append(rhythm, n.Duration)
		if i == 0 || n.IsRest() || notes[i-1].IsRest() {
			continue
		}
		intervals = append(intervals, float64(n.Pitch.MIDI()-notes[i-1].Pitch.MIDI()))
	}
	return intervals, rhythm
}

// nextLetter returns the next material letter not yet used as a base label
// (stripping ' and v suffixes) among earlier sub-phrases.
func nextLetter(earlier []model.SubPhrase) string {
	used := make(map[byte]bool)
	for _, sp := range earlier {
		if len(sp.Material) > 0 {
			used[sp.Material[0]] = true
		}
	}
	for c := byte('a'); c <= 'z'; c++ {
		if !used[c] {
			return string(c)
		}
	}
	return "a"
}
