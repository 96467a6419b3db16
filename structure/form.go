package structure

import (
	"regexp"
	"sort"

	"github.com/RyanBlaney/scoreform-go/model"
)

const typicalPhraseLength = 4

// ClassifyForm runs the §4.7 decision cascade over a sequence of periods
// and returns the overall form plus its large-scale sections.
func ClassifyForm(periods []model.Period, firstMeasure, lastMeasure int) model.FormAnalysis {
	n := len(periods)
	pattern := buildMaterialPattern(periods)

	switch n {
	case 0:
		return model.FormAnalysis{FormType: model.FormOnePart, Confidence: 0.5}
	case 1:
		return model.FormAnalysis{
			FormType:   model.FormOnePart,
			Confidence: 0.9,
			Sections:   []model.Section{sectionFor("A", model.FunctionTheme, periods[0:1])},
		}
	}

	var result model.FormAnalysis
	switch n {
	case 2:
		recap := lastPhraseHeadSim(periods[1], periods[0]) > 0.6
		if recap {
			result = model.FormAnalysis{
				FormType:   model.FormBinaryRounded,
				Confidence: 0.8,
				Sections:   []model.Section{sectionFor("A", model.FunctionExposition, periods[0:1]), sectionFor("B", model.FunctionRecap, periods[1:2])},
			}
		} else {
			result = model.FormAnalysis{
				FormType:   model.FormBinaryParallel,
				Confidence: 0.8,
				Sections:   []model.Section{sectionFor("A", model.FunctionExposition, periods[0:1]), sectionFor("B", model.FunctionExposition, periods[1:2])},
			}
		}
	case 3:
		if pattern.HasRecapitulation {
			middle := classifyMiddleSection(periods[0], periods[1])
			sections := []model.Section{
				sectionFor("A", model.FunctionTheme, periods[0:1]),
				sectionFor("B", model.FunctionEpisode, periods[1:2]),
				sectionFor("A'", model.FunctionRecap, periods[2:3]),
			}
			sections[1].MiddleType = middle
			result = model.FormAnalysis{FormType: model.FormTernarySimple, Confidence: 0.8, Sections: sections}
		} else {
			result = model.FormAnalysis{
				FormType:   model.FormTernaryParallel,
				Confidence: 0.8,
				Sections: []model.Section{
					sectionFor("A", model.FunctionTheme, periods[0:1]),
					sectionFor("B", model.FunctionTheme, periods[1:2]),
					sectionFor("C", model.FunctionTheme, periods[2:3]),
				},
			}
		}
	default:
		result = model.FormAnalysis{FormType: model.FormOnePart, Confidence: 0.5}
	}

	if variation, ok := tryVariation(periods); ok && variation.Confidence > result.Confidence {
		result = variation
	}
	if n >= 5 {
		if rondo, ok := tryRondo(periods, pattern); ok && rondo.Confidence > result.Confidence {
			result = rondo
		}
	}
	if n >= 3 {
		if sonata, ok := trySonata(periods); ok && sonata.Confidence > result.Confidence {
			result = sonata
		}
	}
	if n >= 4 && pattern.HasRecapitulation {
		if result.FormType != model.FormSonata && result.FormType != model.FormRondo {
			result = model.FormAnalysis{
				FormType:   model.FormTernaryCompound,
				Confidence: 0.75,
				Sections:   compoundTernarySections(periods),
			}
		}
	}
	if popular, ok := tryPopularForm(pattern); ok && popular.Confidence > result.Confidence {
		popular.Sections = result.Sections
		result = popular
	}

	return result
}

func buildMaterialPattern(periods []model.Period) model.MaterialPattern {
	pattern := make([]byte, 0, len(periods))
	counts := make(map[string]int)
	for _, p := range periods {
		letter := firstLetter(p.Material)
		pattern = append(pattern, letter)
		counts[string(letter)]++
	}

	main := ""
	best := -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > best {
			best = counts[k]
			main = k
		}
	}

	hasRecap := len(periods) >= 3 && len(pattern) > 0 && pattern[0] == pattern[len(pattern)-1]
	return model.MaterialPattern{
		Pattern:           string(pattern),
		Counts:            counts,
		MainMaterial:      main,
		HasRecapitulation: hasRecap,
	}
}

func firstLetter(material string) byte {
	if material == "" {
		return 'a'
	}
	return material[0]
}

func lastPhraseHeadSim(p2, p1 model.Period) float64 {
	if len(p1.Phrases) == 0 || len(p2.Phrases) == 0 {
		return 0
	}
	return comparePhraseHeads(p1.Phrases[0], p2.Phrases[len(p2.Phrases)-1])
}

func classifyMiddleSection(a, b model.Period) model.MiddleSectionType {
	sim := periodSimilarity(a, b)
	if sim > 0.5 && b.PhraseCount() < 2 {
		return model.MiddleDevelopment
	}
	if b.Closure == model.ClosureClosed && b.PhraseCount() >= 2 {
		return model.MiddleTrio
	}
	return model.MiddleEpisode
}

func periodSimilarity(a, b model.Period) float64 {
	if len(a.Phrases) == 0 || len(b.Phrases) == 0 {
		return 0
	}
	return comparePhraseHeads(a.Phrases[0], b.Phrases[0])
}

func tryVariation(periods []model.Period) (model.FormAnalysis, bool) {
	n := len(periods)
	if n < 2 {
		return model.FormAnalysis{}, false
	}
	matches := 0
	for i := 1; i < n; i++ {
		sim := periodSimilarity(periods[0], periods[i])
		if sim > 0.3 && sim < 0.9 {
			matches++
		}
	}
	ratio := float64(matches) / float64(n-1)
	if ratio < 0.6 {
		return model.FormAnalysis{}, false
	}
	sections := make([]model.Section, 0, n)
	sections = append(sections, sectionFor("Theme", model.FunctionTheme, periods[0:1]))
	for i := 1; i < n; i++ {
		s := sectionFor("Variation", model.FunctionVariation, periods[i:i+1])
		sections = append(sections, s)
	}
	return model.FormAnalysis{FormType: model.FormVariation, Confidence: 0.7 + 0.2*ratio, Sections: sections}, true
}

func tryRondo(periods []model.Period, pattern model.MaterialPattern) (model.FormAnalysis, bool) {
	mainCount := pattern.Counts[pattern.MainMaterial]
	if mainCount < 3 {
		return model.FormAnalysis{}, false
	}
	episodeLabels := make(map[string]bool)
	for letter := range pattern.Counts {
		if letter != pattern.MainMaterial {
			episodeLabels[letter] = true
		}
	}
	if len(episodeLabels) < 2 {
		return model.FormAnalysis{}, false
	}
	confidence := 0.5 + 0.1*float64(mainCount) + 0.1*float64(len(episodeLabels))
	if confidence > 0.9 {
		confidence = 0.9
	}

	sections := make([]model.Section, 0, len(periods))
	for i, p := range periods {
		letter := string(firstLetter(p.Material))
		if letter == pattern.MainMaterial {
			s := sectionFor("Refrain", model.FunctionRefrain, periods[i:i+1])
			s.IsRecurrence = i > 0
			sections = append(sections, s)
		} else {
			sections = append(sections, sectionFor("Episode", model.FunctionEpisode, periods[i:i+1]))
		}
	}
	return model.FormAnalysis{FormType: model.FormRondo, Confidence: confidence, Sections: sections}, true
}

func trySonata(periods []model.Period) (model.FormAnalysis, bool) {
	n := len(periods)
	thirdStart := n - n/3
	if thirdStart >= n {
		thirdStart = n - 1
	}
	found := false
	for i := thirdStart; i < n; i++ {
		if periodSimilarity(periods[0], periods[i]) > 0.5 {
			found = true
			break
		}
	}
	if !found {
		return model.FormAnalysis{}, false
	}

	expoEnd := n / 3
	devEnd := 2 * n / 3
	if expoEnd < 1 {
		expoEnd = 1
	}
	if devEnd <= expoEnd {
		devEnd = expoEnd + 1
	}
	if devEnd > n {
		devEnd = n
	}

	sections := []model.Section{
		sectionFor("Exposition", model.FunctionExposition, periods[0:expoEnd]),
	}
	if devEnd > expoEnd {
		sections = append(sections, sectionFor("Development", model.FunctionDevelopment, periods[expoEnd:devEnd]))
	}
	recap := sectionFor("Recapitulation", model.FunctionRecap, periods[devEnd:])
	for i := devEnd; i < n; i++ {
		sim := periodSimilarity(periods[0], periods[i])
		label := "component"
		if sim < 0.8 {
			label = "component_varied"
		}
		recap.Components = append(recap.Components, label)
	}
	sections = append(sections, recap)

	return model.FormAnalysis{FormType: model.FormSonata, Confidence: 0.75, Sections: sections}, true
}

func compoundTernarySections(periods []model.Period) []model.Section {
	n := len(periods)
	mid := n / 2
	a := sectionFor("A", model.FunctionTheme, periods[0:1])
	b := sectionFor("B", model.FunctionEpisode, periods[1:mid])
	aPrime := sectionFor("A'", model.FunctionRecap, periods[mid:n])
	sim := periodSimilarity(periods[0], periods[n-1])
	if sim >= 0.8 {
		aPrime.RecapitulationType = "complete"
	} else {
		aPrime.RecapitulationType = "partial"
	}
	return []model.Section{a, b, aPrime}
}

var verseChorusPattern = regexp.MustCompile(`^(ab)+a?$|^(ba)+b?$`)

func tryPopularForm(pattern model.MaterialPattern) (model.FormAnalysis, bool) {
	if len(pattern.Counts) == 2 && verseChorusPattern.MatchString(pattern.Pattern) {
		return model.FormAnalysis{FormType: model.FormVerseChorus, Confidence: 0.75}, true
	}
	if pattern.Pattern == "aaba" {
		return model.FormAnalysis{FormType: model.FormAABA, Confidence: 0.8}, true
	}
	return model.FormAnalysis{}, false
}

func sectionFor(name string, fn model.SectionFunction, periods []model.Period) model.Section {
	if len(periods) == 0 {
		return model.Section{Name: name, Type: fn, Function: fn}
	}
	return model.Section{
		Name:         name,
		Type:         fn,
		Function:     fn,
		StartMeasure: periods[0].StartMeasure,
		EndMeasure:   periods[len(periods)-1].EndMeasure,
		Periods:      periods,
	}
}

// Introduction returns the measure range before the first period, nil if
// there is none.
func Introduction(periods []model.Period, firstMeasure int) *model.Section {
	if len(periods) == 0 || periods[0].StartMeasure <= firstMeasure {
		return nil
	}
	return &model.Section{
		Name:         "Introduction",
		Type:         model.FunctionIntroduction,
		Function:     model.FunctionIntroduction,
		StartMeasure: firstMeasure,
		EndMeasure:   periods[0].StartMeasure - 1,
	}
}

// Coda returns the trailing measure range after the last period, classified
// as coda (>4 measures) or codetta (otherwise); nil if there is none.
func Coda(periods []model.Period, lastMeasure int) *model.Section {
	if len(periods) == 0 {
		return nil
	}
	last := periods[len(periods)-1]
	if last.EndMeasure >= lastMeasure {
		return nil
	}
	length := lastMeasure - last.EndMeasure
	fn := model.FunctionCodetta
	name := "Codetta"
	if length > 4 {
		fn = model.FunctionCoda
		name = "Coda"
	}
	return &model.Section{
		Name:         name,
		Type:         fn,
		Function:     fn,
		StartMeasure: last.EndMeasure + 1,
		EndMeasure:   lastMeasure,
	}
}

// Transitions returns the measure gaps between consecutive periods, if any.
func Transitions(periods []model.Period) []model.Section {
	var out []model.Section
	for i := 0; i+1 < len(periods); i++ {
		gapStart := periods[i].EndMeasure + 1
		gapEnd := periods[i+1].StartMeasure - 1
		if gapEnd >= gapStart {
			out = append(out, model.Section{
				Name:         "Transition",
				Type:         model.FunctionTransition,
				Function:     model.FunctionTransition,
				StartMeasure: gapStart,
				EndMeasure:   gapEnd,
			})
		}
	}
	return out
}

// Extensions returns phrases whose length exceeds 1.5x the typical
// 4-measure phrase length.
func Extensions(phrases []model.Phrase) []model.Phrase {
	var out []model.Phrase
	threshold := 1.5 * float64(typicalPhraseLength)
	for _, p := range phrases {
		if float64(p.Length()) > threshold {
			out = append(out, p)
		}
	}
	return out
}
