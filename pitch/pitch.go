// Package pitch implements pitch-class encoding, tonic resolution, and
// scale-degree arithmetic on top of model.PitchName (spec.md §4.1).
package pitch

import "github.com/RyanBlaney/scoreform-go/model"

// Names is the canonical pitch-class name table, sharp-spelled.
var Names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// sharpTonics[fifths] is the major tonic pitch class for a key signature
// with `fifths` sharps (0..7): C G D A E B F# C#.
var sharpTonics = [8]int{0, 7, 2, 9, 4, 11, 6, 1}

// flatTonics[-fifths] is the major tonic pitch class for a key signature
// with -fifths flats (0..7): C F Bb Eb Ab Db Gb Cb.
var flatTonics = [8]int{0, 5, 10, 3, 8, 1, 6, 11}

// minorThirdDown shifts a major tonic down a minor third (9 semitones, mod
// 12) to find the relative minor's own tonic.
const minorThirdDown = 9

// TonicFromKey resolves the tonic pitch class of a key signature. fifths is
// clamped to [-7, 7]; mode selects the major tonic directly or the relative
// minor tonic (major tonic shifted down a minor third).
func TonicFromKey(fifths int, mode model.Mode) int {
	if fifths > 7 {
		fifths = 7
	}
	if fifths < -7 {
		fifths = -7
	}

	var majorTonic int
	if fifths >= 0 {
		majorTonic = sharpTonics[fifths]
	} else {
		majorTonic = flatTonics[-fifths]
	}

	if mode == model.ModeMinor {
		return ((majorTonic+minorThirdDown)%12 + 12) % 12
	}
	return majorTonic
}

// degreeBySemitone maps a tonic-relative semitone interval to a diatonic
// scale degree 0..6 for the seven steps of a major/minor scale; -1 for any
// chromatic (non-scale) interval.
var degreeBySemitone = map[int]int{0: 0, 2: 1, 4: 2, 5: 3, 7: 4, 9: 5, 11: 6}

// ScaleDegree returns the scale degree (0..6) of pitchClass relative to
// tonic, or -1 if the interval is chromatic. mode is accepted for callers
// that want degree relative to the tonic's own natural scale; the mapping
// table is the same shape for major and natural minor since both are built
// from a diatonic semitone pattern rooted at the tonic.
func ScaleDegree(pitchClass, tonic int, mode model.Mode) int {
	interval := ((pitchClass-tonic)%12 + 12) % 12
	if degree, ok := degreeBySemitone[interval]; ok {
		return degree
	}
	return -1
}

// MIDI converts a spelled pitch to a MIDI note number, deferring to
// PitchName.MIDI (pc + (octave+1)*12, defaulting to 60 for bad input).
func MIDI(p model.PitchName) int {
	return p.MIDI()
}

// Name returns the sharp-spelled name of a pitch class 0..11, wrapping
// around for out-of-range input.
func Name(pitchClass int) string {
	return Names[((pitchClass%12)+12)%12]
}
