package structure

import (
	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/similarity"
)

const maxPeriodPhrases = 4

// GroupPeriods greedily accumulates phrases into periods, closing a period
// when a strong cadence closes it with >=2 phrases, 4 phrases have
// accumulated, or the next phrase starts a new section (§4.6).
func GroupPeriods(phrases []model.Phrase) []model.Period {
	var periods []model.Period
	var current []model.Phrase

	flush := func() {
		if len(current) == 0 {
			return
		}
		periods = append(periods, buildPeriod(len(periods), current))
		current = nil
	}

	for i, p := range phrases {
		current = append(current, p)

		strongClose := p.Cadence != nil && model.CadenceStrengthValue(p.Cadence) > strongCadenceMin
		endByStrongCadence := strongClose && len(current) >= 2
		endByCount := len(current) >= maxPeriodPhrases
		endByNewSection := false
		if strongClose && i+1 < len(phrases) {
			headSim := headTailSimilarity(p.Notes, phrases[i+1].Notes, true)
			endByNewSection = headSim < 0.3
		}

		if endByStrongCadence || endByCount || endByNewSection {
			flush()
		}
	}
	flush()

	return detectCompoundPeriods(periods)
}

func buildPeriod(index int, phrases []model.Phrase) model.Period {
	p := model.Period{
		Index:        index,
		StartMeasure: phrases[0].StartMeasure,
		EndMeasure:   phrases[len(phrases)-1].EndMeasure,
		Phrases:      phrases,
		Material:     phrases[0].Material,
	}
	p.Type = classifyPeriodType(phrases)
	p.Proportion = classifyProportion(phrases)
	p.Closure = phrases[len(phrases)-1].Closure
	return p
}

func classifyPeriodType(phrases []model.Phrase) model.PeriodType {
	switch len(phrases) {
	case 0, 1:
		return model.PeriodParallel
	case 2:
		second := phrases[1]
		headSim := headTailSimilarity(phrases[0].Notes, second.Notes, true)
		if second.Relationship == model.RelationParallel || headSim > 0.7 {
			return model.PeriodParallel
		}
		if isSequentialRelation(phrases[0], second) {
			return model.PeriodSequential
		}
		return model.PeriodContrasting
	case 3:
		return model.PeriodThreePhrase
	case 4:
		return model.PeriodFourPhrase
	default:
		return model.PeriodCompound
	}
}

// isSequentialRelation holds when two phrases' melodic material repeats at
// a nonzero transposition with reasonably high interval similarity.
func isSequentialRelation(a, b model.Phrase) bool {
	ia, _ := intervalAndRhythm(a.Notes)
	ib, _ := intervalAndRhythm(b.Notes)
	if similarity.CompareArrays(ia, ib) <= 0.7 {
		return false
	}
	transposition := similarity.DetectTransposition(notesMIDI(a.Notes), notesMIDI(b.Notes))
	return transposition != 0
}

func classifyProportion(phrases []model.Phrase) model.Proportion {
	if len(phrases) == 0 {
		return model.ProportionNonSquare
	}
	length := phrases[0].Length()
	equal := true
	for _, p := range phrases {
		if p.Length() != length {
			equal = false
			break
		}
	}
	if !equal {
		return model.ProportionNonSquare
	}
	if length >= 4 && isPowerOfTwo(length) {
		return model.ProportionSquare
	}
	return model.ProportionRegular
}

func isPowerOfTwo(n int) bool {
	if n <= 0 {
		return false
	}
	return n&(n-1) == 0
}

// detectCompoundPeriods merges consecutive period pairs into a single
// compound AA' period when the second period's opening phrase resembles
// the first's and closes more strongly (§4.6), replacing both entries
// with one period spanning their combined phrases and boundaries.
func detectCompoundPeriods(periods []model.Period) []model.Period {
	out := make([]model.Period, 0, len(periods))
	for i := 0; i < len(periods); i++ {
		if i+1 < len(periods) {
			p1, p2 := periods[i], periods[i+1]
			if len(p1.Phrases) > 0 && len(p2.Phrases) > 0 {
				headSim := comparePhraseHeads(p1.Phrases[0], p2.Phrases[0])
				c1 := cadenceStrengthOf(p1)
				c2 := cadenceStrengthOf(p2)
				if headSim > 0.7 && c2 > c1 {
					out = append(out, mergeCompoundPeriod(p1, p2, len(out)))
					i++
					continue
				}
			}
		}
		p := periods[i]
		p.Index = len(out)
		out = append(out, p)
	}
	return out
}

// mergeCompoundPeriod combines p1 and p2 into one period spanning both,
// tagged PeriodCompound with p2's material as p1's prime form.
func mergeCompoundPeriod(p1, p2 model.Period, index int) model.Period {
	phrases := make([]model.Phrase, 0, len(p1.Phrases)+len(p2.Phrases))
	phrases = append(phrases, p1.Phrases...)
	phrases = append(phrases, p2.Phrases...)
	return model.Period{
		Index:        index,
		StartMeasure: p1.StartMeasure,
		EndMeasure:   p2.EndMeasure,
		Phrases:      phrases,
		Material:     p1.Material + "'",
		Type:         model.PeriodCompound,
		Proportion:   classifyProportion(phrases),
		Closure:      p2.Closure,
	}
}

func comparePhraseHeads(a, b model.Phrase) float64 {
	return headTailSimilarity(a.Notes, b.Notes, true)
}

func cadenceStrengthOf(p model.Period) float64 {
	c := p.Cadence()
	if c == nil {
		return 0
	}
	return model.CadenceStrengthValue(c)
}
