package model

// Closure marks whether a phrase ends in a strong harmonic closure.
type Closure int

const (
	ClosureOpen Closure = iota
	ClosureClosed
)

func (c Closure) String() string {
	if c == ClosureClosed {
		return "closed"
	}
	return "open"
}

// PhraseRelationship classifies how a phrase relates to its predecessor.
type PhraseRelationship int

const (
	RelationNone PhraseRelationship = iota
	RelationParallel
	RelationContrasting
	RelationRepetition
	RelationDevelopment
	RelationSequence
)

func (r PhraseRelationship) String() string {
	switch r {
	case RelationParallel:
		return "parallel"
	case RelationContrasting:
		return "contrasting"
	case RelationRepetition:
		return "repetition"
	case RelationDevelopment:
		return "development"
	case RelationSequence:
		return "sequence"
	default:
		return "none"
	}
}

// Phrase is a 2-12 measure unit closing on a cadence, a "complete clause".
type Phrase struct {
	Index         int
	StartMeasure  int
	EndMeasure    int
	Cadence       *Cadence
	Notes         []Note
	SubPhrases    []SubPhrase
	Material      string
	Closure       Closure
	Relationship  PhraseRelationship
	HeadSimilarity float64
}

// Length returns endMeasure - startMeasure + 1.
func (p Phrase) Length() int { return p.EndMeasure - p.StartMeasure + 1 }
