package model

import "fmt"

// Mode is the diatonic mode of a key signature as notated in the score
// (distinct from the broader scale palette structure.Mode works over).
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

// KeySignature is a circle-of-fifths key signature: fifths in [-7,7]
// (negative = flats, positive = sharps), plus major/minor mode.
type KeySignature struct {
	Fifths int
	Mode   Mode
}

// TimeSignature is a notated meter.
type TimeSignature struct {
	Beats     int // numerator
	BeatType  int // denominator
}

// MeasureInfo records a measure's appearance-order number.
type MeasureInfo struct {
	Number int
}

// Part is a named instrumental/vocal line; the core treats parts as opaque
// grouping metadata (not consulted by the structural rules) but preserves
// them for provenance and export round-tripping.
type Part struct {
	ID   string
	Name string
}

// ParsedScore is the contract produced by the (out-of-scope) MusicXML
// decoder. Invariants the core relies on: notes sorted by
// (measure, beat, voice); measures numbered contiguously from 1 in
// appearance order; KeySignature.Fifths in [-7,7]; TimeSignature.Beats >= 1.
type ParsedScore struct {
	Measures      []MeasureInfo
	Notes         []Note
	KeySignature  KeySignature
	TimeSignature TimeSignature
	Tempo         float64 // BPM, default 120
	Parts         []Part
}

// Validate checks the invariants the core relies on, returning an
// InvalidScore AnalysisError on violation. This is the only place the core
// surfaces an error to a caller.
func (s *ParsedScore) Validate() error {
	known := make(map[int]bool, len(s.Measures))
	for i, m := range s.Measures {
		if m.Number != i+1 {
			return NewError("ParsedScore.Validate", InvalidScore,
				fmt.Errorf("measure %d out of appearance order (got number %d)", i+1, m.Number))
		}
		known[m.Number] = true
	}
	for _, n := range s.Notes {
		if !known[n.Measure] {
			return NewError("ParsedScore.Validate", InvalidScore,
				fmt.Errorf("note references measure %d absent from measures[]", n.Measure))
		}
	}
	if s.KeySignature.Fifths < -7 || s.KeySignature.Fifths > 7 {
		return NewError("ParsedScore.Validate", InvalidScore,
			fmt.Errorf("key signature fifths %d out of range [-7,7]", s.KeySignature.Fifths))
	}
	if s.TimeSignature.Beats < 1 {
		return NewError("ParsedScore.Validate", InvalidScore,
			fmt.Errorf("time signature beats %d must be >= 1", s.TimeSignature.Beats))
	}
	return nil
}

// IsInsufficient reports whether the score is too small for the
// structural detectors to run meaningfully (spec InsufficientData).
func (s *ParsedScore) IsInsufficient() bool {
	return len(s.Measures) < 2 || len(s.Notes) == 0
}
