package model

// PeriodType classifies how a period's phrases relate to one another.
type PeriodType int

const (
	PeriodParallel PeriodType = iota
	PeriodContrasting
	PeriodSequential
	PeriodThreePhrase
	PeriodFourPhrase
	PeriodCompound
)

func (t PeriodType) String() string {
	switch t {
	case PeriodParallel:
		return "parallel"
	case PeriodContrasting:
		return "contrasting"
	case PeriodSequential:
		return "sequential"
	case PeriodThreePhrase:
		return "three_phrase"
	case PeriodFourPhrase:
		return "four_phrase"
	case PeriodCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Proportion classifies phrase-length regularity within a period.
type Proportion int

const (
	ProportionSquare Proportion = iota
	ProportionRegular
	ProportionNonSquare
)

func (p Proportion) String() string {
	switch p {
	case ProportionSquare:
		return "square"
	case ProportionRegular:
		return "regular"
	default:
		return "non_square"
	}
}

// Period is an ordered group of phrases forming a paragraph.
type Period struct {
	Index        int
	StartMeasure int
	EndMeasure   int
	Phrases      []Phrase
	Type         PeriodType
	Proportion   Proportion
	Closure      Closure
	Material     string
}

// PhraseCount returns len(Phrases).
func (p Period) PhraseCount() int { return len(p.Phrases) }

// Cadence returns the cadence of the period's final phrase, if any.
func (p Period) Cadence() *Cadence {
	if len(p.Phrases) == 0 {
		return nil
	}
	return p.Phrases[len(p.Phrases)-1].Cadence
}
