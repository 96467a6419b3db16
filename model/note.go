package model

// Step is a diatonic letter name, C through B.
type Step int

const (
	StepC Step = iota
	StepD
	StepE
	StepF
	StepG
	StepA
	StepB
)

// Accidental alters a Step by a number of semitones.
type Accidental int

const (
	AccidentalDoubleFlat Accidental = iota - 2
	AccidentalFlat
	AccidentalNatural
	AccidentalSharp
	AccidentalDoubleSharp
)

// stepSemitones maps a natural Step to its semitone offset from C.
var stepSemitones = [...]int{0, 2, 4, 5, 7, 9, 11}

// PitchName is a spelled pitch: a step, an accidental, and an octave.
type PitchName struct {
	Step       Step
	Accidental Accidental
	Octave     int
}

// PitchClass returns the 0-11 pitch class of the spelled pitch.
func (p PitchName) PitchClass() int {
	pc := stepSemitones[int(p.Step)%7] + int(p.Accidental)
	return ((pc % 12) + 12) % 12
}

// MIDI converts the pitch to a MIDI note number: pc + (octave+1)*12.
// Defaults to 60 (middle C) when the step is out of the known range.
func (p PitchName) MIDI() int {
	if p.Step < StepC || p.Step > StepB {
		return 60
	}
	return p.PitchClass() + (p.Octave+1)*12
}

// DynMark is a notated dynamic marking, kept as a short string (pp..fff)
// since the domain is open-ended but the core only needs categorical
// strength, computed from it in the emotion package.
type DynMark string

// Note is a single notated event; Pitch is nil for a rest.
type Note struct {
	Pitch    *PitchName
	Duration float64 // in beats
	Measure  int      // 1-based
	Beat     float64  // beats from measure start
	Voice    int
	Dynamics *DynMark
}

// IsRest reports whether the note carries no pitch.
func (n Note) IsRest() bool { return n.Pitch == nil }
