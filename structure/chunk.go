package structure

import (
	"fmt"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/logging"
	"github.com/RyanBlaney/scoreform-go/model"
)

// maxNotesPerChunk, together with the configured chunk window, gates
// whether the chunked path runs at all (§4.10); maxMeasuresPerChunk is the
// window used when the configured one is not positive, and overlapMeasures
// is the number of measures adjacent chunks share.
const (
	maxNotesPerChunk    = 1000
	maxMeasuresPerChunk = 32
	overlapMeasures     = 4
)

// ChunkResult is the local-detector output of one measure-range chunk.
type ChunkResult struct {
	StartMeasure int
	EndMeasure   int
	Motives      []model.Motive
	SubPhrases   []model.SubPhrase
	Err          error
}

// RunLocalDetectors runs motive and sub-phrase detection across the score,
// either on the whole note stream (small scores) or chunked with overlap
// merge (large scores), per the chunked-driver thresholds in cfg (§4.10).
// A chunk whose local detectors error is logged and skipped; remaining
// chunks and the always-global detectors still proceed.
func RunLocalDetectors(score *model.ParsedScore, cfg config.AnalysisConfig, logger logging.Logger) (motives []model.Motive, subPhrases []model.SubPhrase, skipped [][2]int) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	threshold := cfg.ChunkMeasures
	if threshold <= 0 {
		threshold = maxMeasuresPerChunk
	}

	if len(score.Notes) < 2*maxNotesPerChunk && len(score.Measures) < 2*threshold {
		motives, _ = safeDetectMotives(score.Notes, score.TimeSignature, logger, 1, len(score.Measures))
		subPhrases, _ = safeDetectSubPhrases(score.Notes, logger, 1, len(score.Measures))
		return motives, subPhrases, nil
	}

	stride := threshold - overlapMeasures
	if stride < 1 {
		stride = threshold
	}

	var results []ChunkResult
	for start := 1; start <= len(score.Measures); start += stride {
		end := start + threshold - 1
		if end > len(score.Measures) {
			end = len(score.Measures)
		}

		chunkNotes := notesInRange(score.Notes, start, end)
		chunkMotives, motiveErr := safeDetectMotives(chunkNotes, score.TimeSignature, logger, start, end)
		chunkSubPhrases, subPhraseErr := safeDetectSubPhrases(chunkNotes, logger, start, end)

		result := ChunkResult{StartMeasure: start, EndMeasure: end, Motives: chunkMotives, SubPhrases: chunkSubPhrases}
		if motiveErr != nil || subPhraseErr != nil {
			if motiveErr != nil {
				result.Err = motiveErr
			} else {
				result.Err = subPhraseErr
			}
		}
		results = append(results, result)

		if end >= len(score.Measures) {
			break
		}
	}

	return mergeChunks(results, stride)
}

func notesInRange(notes []model.Note, start, end int) []model.Note {
	var out []model.Note
	for _, n := range notes {
		if n.Measure >= start && n.Measure <= end {
			out = append(out, n)
		}
	}
	return out
}

func safeDetectMotives(notes []model.Note, timeSig model.TimeSignature, logger logging.Logger, start, end int) (out []model.Motive, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("motive detection panicked: %v", r)
			logger.Error(err, "skipping chunk", logging.Fields{"start": start, "end": end})
			out = nil
		}
	}()
	return DetectMotives(notes, timeSig), nil
}

func safeDetectSubPhrases(notes []model.Note, logger logging.Logger, start, end int) (out []model.SubPhrase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sub-phrase detection panicked: %v", r)
			logger.Error(err, "skipping chunk", logging.Fields{"start": start, "end": end})
			out = nil
		}
	}()
	return DetectSubPhrases(notes), nil
}

// mergeChunks drops items whose start measure falls in the first half of
// the overlap region shared with the preceding chunk, and items of the
// preceding chunk from the second half onward, so duplicated boundary
// material is not double-counted.
func mergeChunks(results []ChunkResult, stride int) (motives []model.Motive, subPhrases []model.SubPhrase, skipped [][2]int) {
	for i, r := range results {
		if r.Err != nil {
			skipped = append(skipped, [2]int{r.StartMeasure, r.EndMeasure})
			continue
		}

		overlapStart := r.StartMeasure
		overlapHalf := r.StartMeasure + overlapMeasures/2
		isFirstChunk := i == 0
		cutoff := r.EndMeasure + 1
		if i+1 < len(results) && results[i+1].Err == nil {
			cutoff = results[i+1].StartMeasure + overlapMeasures/2
		}

		for _, m := range r.Motives {
			if (!isFirstChunk && m.Measure >= overlapStart && m.Measure < overlapHalf) || m.Measure >= cutoff {
				continue
			}
			motives = append(motives, m)
		}
		for _, sp := range r.SubPhrases {
			if (!isFirstChunk && sp.StartMeasure >= overlapStart && sp.StartMeasure < overlapHalf) || sp.StartMeasure >= cutoff {
				continue
			}
			subPhrases = append(subPhrases, sp)
		}
	}
	return motives, subPhrases, skipped
}
