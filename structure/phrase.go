package structure

import (
	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/similarity"
)

// phraseSplitMax is the measure length above which a closed span is split
// into two phrases; phraseMinLength is the smallest span worth emitting.
const (
	phraseMinLength   = 2
	phraseSplitMax    = 12
	headTailCap       = 8
	strongCadenceMin  = 0.7
)

// DetectPhrases walks the sorted cadence list and carves the measure range
// into phrases, closing one at each cadence and splitting any span longer
// than phraseSplitMax (§4.5).
func DetectPhrases(notes []model.Note, cadences []model.Cadence, firstMeasure, lastMeasure int) []model.Phrase {
	byMeasure := groupByMeasure(notes)

	var phrases []model.Phrase
	start := firstMeasure
	for _, c := range cadences {
		end := c.Measure
		if end < start {
			continue
		}
		if end-start+1 < phraseMinLength {
			// Too short to stand on its own (e.g. two cadences one measure
			// apart); merge forward into whatever phrase the next cadence,
			// or the tail branch below, closes instead of dropping it.
			continue
		}
		phrases = append(phrases, carvePhrase(byMeasure, start, end, &c)...)
		start = end + 1
	}

	if start <= lastMeasure && lastMeasure-start+1 >= phraseMinLength {
		phrases = append(phrases, carvePhrase(byMeasure, start, lastMeasure, nil)...)
	}

	for i := 1; i < len(phrases); i++ {
		classifyPhraseRelationship(&phrases[i], phrases[i-1])
	}
	return phrases
}

func carvePhrase(byMeasure map[int][]model.Note, start, end int, cadence *model.Cadence) []model.Phrase {
	length := end - start + 1
	if length > phraseSplitMax {
		mid := start + length/2
		first := buildPhrase(byMeasure, start, mid-1, nil)
		second := buildPhrase(byMeasure, mid, end, cadence)
		return []model.Phrase{first, second}
	}
	return []model.Phrase{buildPhrase(byMeasure, start, end, cadence)}
}

func buildPhrase(byMeasure map[int][]model.Note, start, end int, cadence *model.Cadence) model.Phrase {
	var notes []model.Note
	for m := start; m <= end; m++ {
		notes = append(notes, byMeasure[m]...)
	}

	p := model.Phrase{
		StartMeasure: start,
		EndMeasure:   end,
		Notes:        notes,
		Cadence:      cadence,
		Material:     "a",
		Closure:      model.ClosureOpen,
	}
	if cadence != nil && model.CadenceStrengthValue(cadence) > strongCadenceMin {
		p.Closure = model.ClosureClosed
	}
	return p
}

func classifyPhraseRelationship(cur *model.Phrase, prev model.Phrase) {
	headSim := headTailSimilarity(prev.Notes, cur.Notes, true)
	tailSim := headTailSimilarity(prev.Notes, cur.Notes, false)

	switch {
	case headSim > 0.7 && tailSim < 0.5:
		cur.Relationship = model.RelationParallel
		cur.Material = prev.Material + "'"
	case headSim > 0.7 && tailSim > 0.7:
		cur.Relationship = model.RelationRepetition
		cur.Material = prev.Material + "r"
	case headSim < 0.3:
		cur.Relationship = model.RelationContrasting
	default:
		cur.Relationship = model.RelationDevelopment
	}
	cur.HeadSimilarity = headSim
}

func headTailSimilarity(prevNotes, curNotes []model.Note, head bool) float64 {
	a := selectEdge(prevNotes, head)
	b := selectEdge(curNotes, head)
	ia, ra := intervalAndRhythm(a)
	ib, rb := intervalAndRhythm(b)
	return 0.6*similarity.CompareArrays(ia, ib) + 0.4*similarity.CompareArrays(ra, rb)
}

func selectEdge(notes []model.Note, head bool) []model.Note {
	n := len(notes)
	if n <= headTailCap {
		return notes
	}
	if head {
		return notes[:headTailCap]
	}
	return notes[n-headTailCap:]
}
