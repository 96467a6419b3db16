package alignment

import "github.com/RyanBlaney/scoreform-go/model"

// framesPerMeasure is the uniform sampling rate used to derive the
// symbolic chroma matrix from notes (spec.md §4.11).
const framesPerMeasure = 10

// SymbolicChroma builds a 12-bin chroma matrix from notes, sampling
// framesPerMeasure frames per measure with uniform-occupancy weighting
// (each frame accumulates the pitch classes of notes sounding during it,
// each weighted by the note's full duration) and L1-normalizing every frame
// row.
func SymbolicChroma(notes []model.Note, firstMeasure, lastMeasure int, beatsPerMeasure float64) [][]float64 {
	if lastMeasure < firstMeasure {
		return nil
	}

	numMeasures := lastMeasure - firstMeasure + 1
	frames := make([][]float64, numMeasures*framesPerMeasure)
	for i := range frames {
		frames[i] = make([]float64, 12)
	}

	frameDuration := beatsPerMeasure / framesPerMeasure

	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		measureOffset := n.Measure - firstMeasure
		if measureOffset < 0 || measureOffset >= numMeasures {
			continue
		}

		startFrame := measureOffset*framesPerMeasure + int(n.Beat/frameDuration)
		endBeat := n.Beat + n.Duration
		endFrame := measureOffset*framesPerMeasure + int(endBeat/frameDuration)
		if endFrame >= len(frames) {
			endFrame = len(frames) - 1
		}
		if startFrame < 0 {
			startFrame = 0
		}

		pc := n.Pitch.PitchClass()
		for f := startFrame; f <= endFrame && f < len(frames); f++ {
			frames[f][pc] += n.Duration
		}
	}

	for _, frame := range frames {
		l1Normalize(frame)
	}
	return frames
}

func l1Normalize(frame []float64) {
	sum := 0.0
	for _, v := range frame {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range frame {
		frame[i] /= sum
	}
}
