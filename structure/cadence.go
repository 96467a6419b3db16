// Package structure implements the rule-based structural analysis cascade:
// cadences, motives, sub-phrases, phrases, periods, form, mode, the
// hierarchical tree builder, and the chunked driver (spec.md §4.3-§4.10).
package structure

import (
	"sort"

	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/pitch"
)

// scale degrees used by the cadence classification table.
const (
	degreeTonic      = 0
	degreeSubdominant = 3
	degreeDominant   = 4
	degreeSubmediant = 5
	degreeLeadingTone = 6
)

// DetectCadences scans every adjacent measure pair with notes and classifies
// the harmonic motion between them per spec.md §4.3's top-down table.
func DetectCadences(notes []model.Note, key model.KeySignature) []model.Cadence {
	tonic := pitch.TonicFromKey(key.Fifths, key.Mode)
	byMeasure := groupByMeasure(notes)

	measures := sortedMeasures(byMeasure)
	var cadences []model.Cadence

	for i := 0; i+1 < len(measures); i++ {
		m, mNext := measures[i], measures[i+1]
		curMeasureNotes := byMeasure[m]
		nextMeasureNotes := byMeasure[mNext]
		if len(curMeasureNotes) == 0 || len(nextMeasureNotes) == 0 {
			continue
		}

		bassPrev := lowestPitch(curMeasureNotes)
		bassCurr := lowestPitch(nextMeasureNotes)
		soprano := highestPitch(nextMeasureNotes)
		if bassPrev == nil || bassCurr == nil || soprano == nil {
			continue
		}

		prevDeg := pitch.ScaleDegree(bassPrev.PitchClass(), tonic, key.Mode)
		currDeg := pitch.ScaleDegree(bassCurr.PitchClass(), tonic, key.Mode)
		melodyDeg := pitch.ScaleDegree(soprano.PitchClass(), tonic, key.Mode)

		cType, strength, confidence, ok := classifyCadence(prevDeg, currDeg, melodyDeg, key.Mode)
		if !ok {
			continue
		}

		cadences = append(cadences, model.Cadence{
			Measure:    mNext,
			Beat:       0,
			Type:       cType,
			Strength:   strength,
			Confidence: confidence,
		})
	}

	sort.Slice(cadences, func(i, j int) bool { return cadences[i].Measure < cadences[j].Measure })
	return cadences
}

// classifyCadence implements the §4.3 decision table, checked top-down;
// the first matching row wins.
func classifyCadence(prevDeg, currDeg, melodyDeg int, mode model.Mode) (model.CadenceType, model.CadenceStrength, float64, bool) {
	switch {
	case prevDeg == degreeDominant && currDeg == degreeTonic && melodyDeg == degreeTonic:
		return model.CadencePAC, model.StrengthStrong, 0.95, true
	case prevDeg == degreeDominant && currDeg == degreeTonic && melodyDeg != degreeTonic:
		return model.CadenceIAC, model.StrengthModerate, 0.8, true
	case (prevDeg == degreeDominant || prevDeg == degreeLeadingTone) && currDeg == degreeTonic && melodyDeg != degreeTonic:
		return model.CadenceIAC, model.StrengthModerate, 0.75, true
	case currDeg == degreeDominant:
		return model.CadenceHalf, model.StrengthWeak, 0.8, true
	case prevDeg == degreeDominant && currDeg == degreeSubmediant:
		return model.CadenceDeceptive, model.StrengthModerate, 0.85, true
	case prevDeg == degreeSubdominant && currDeg == degreeTonic:
		return model.CadencePlagal, model.StrengthModerate, 0.75, true
	case mode == model.ModeMinor && prevDeg == degreeSubdominant && currDeg == degreeDominant:
		return model.CadencePhrygian, model.StrengthWeak, 0.7, true
	default:
		return 0, 0, 0, false
	}
}

func groupByMeasure(notes []model.Note) map[int][]model.Note {
	byMeasure := make(map[int][]model.Note)
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		byMeasure[n.Measure] = append(byMeasure[n.Measure], n)
	}
	return byMeasure
}

func sortedMeasures(byMeasure map[int][]model.Note) []int {
	measures := make([]int, 0, len(byMeasure))
	for m := range byMeasure {
		measures = append(measures, m)
	}
	sort.Ints(measures)
	return measures
}

func lowestPitch(notes []model.Note) *model.PitchName {
	var lowest *model.PitchName
	lowestMIDI := 0
	for i := range notes {
		if notes[i].Pitch == nil {
			continue
		}
		m := notes[i].Pitch.MIDI()
		if lowest == nil || m < lowestMIDI {
			lowest = notes[i].Pitch
			lowestMIDI = m
		}
	}
	return lowest
}

func highestPitch(notes []model.Note) *model.PitchName {
	var highest *model.PitchName
	highestMIDI := 0
	for i := range notes {
		if notes[i].Pitch == nil {
			continue
		}
		m := notes[i].Pitch.MIDI()
		if highest == nil || m > highestMIDI {
			highest = notes[i].Pitch
			highestMIDI = m
		}
	}
	return highest
}
