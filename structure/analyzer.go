package structure

import (
	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/logging"
	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/pitch"
	"gonum.org/v1/gonum/stat"
)

// Analyzer runs the full rule-based structural cascade over a validated
// score: local detectors (chunked when the score is large), global
// harmonic-context detectors, form classification, tree assembly, and
// confidence propagation.
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger logging.Logger
}

// NewAnalyzer builds an Analyzer. A nil logger falls back to a no-op
// logger; a zero-value cfg falls back to config.DefaultAnalysisConfig.
func NewAnalyzer(cfg config.AnalysisConfig, logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	if cfg.ChunkMeasures == 0 {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze runs the complete pipeline over a validated score and returns the
// full structural analysis (spec.md §4.3-§4.10).
func (a *Analyzer) Analyze(score *model.ParsedScore) (*model.FullAnalysis, error) {
	if err := score.Validate(); err != nil {
		return nil, err
	}
	if score.IsInsufficient() {
		a.logger.Warn("score has insufficient data for structural analysis",
			logging.Fields{"measures": len(score.Measures), "notes": len(score.Notes)})
		return emptyAnalysis(score), nil
	}

	motives, subPhrases, skipped := RunLocalDetectors(score, a.cfg, a.logger)
	chunkWindow := a.cfg.ChunkMeasures
	if chunkWindow <= 0 {
		chunkWindow = maxMeasuresPerChunk
	}
	chunked := len(skipped) > 0 || (len(score.Notes) >= 2*maxNotesPerChunk || len(score.Measures) >= 2*chunkWindow)

	cadences := DetectCadences(score.Notes, score.KeySignature)

	firstMeasure := 1
	lastMeasure := len(score.Measures)
	phrases := DetectPhrases(score.Notes, cadences, firstMeasure, lastMeasure)
	periods := GroupPeriods(phrases)
	form := ClassifyForm(periods, firstMeasure, lastMeasure)

	tonic := pitch.TonicFromKey(score.KeySignature.Fifths, score.KeySignature.Mode)
	modeResult := DetectMode(score.Notes, tonic)

	introduction := Introduction(periods, firstMeasure)
	coda := Coda(periods, lastMeasure)
	transitions := Transitions(periods)
	extensions := Extensions(phrases)

	tree := BuildTree(form, motives, subPhrases, firstMeasure, lastMeasure)

	tooltips := make(map[model.NodeID]model.TooltipData, len(tree.Nodes))
	for id, node := range tree.Nodes {
		tooltips[id] = node.TooltipData
	}

	stats := computeStatistics(motives, subPhrases, phrases, periods, cadences, tree, modeResult)

	return &model.FullAnalysis{
		Tree:         tree,
		Motives:      motives,
		SubPhrases:   subPhrases,
		Phrases:      phrases,
		Periods:      periods,
		Cadences:     cadences,
		Form:         form,
		Themes:       form.Sections,
		Introduction: introduction,
		Coda:         coda,
		Transitions:  transitions,
		Extensions:   extensions,
		Statistics:   stats,
		TooltipMap:   tooltips,
		ProcessingInfo: model.ProcessingInfo{
			Chunked:       chunked,
			ChunkCount:    chunkCount(score, a.cfg),
			SkippedRanges: skipped,
		},
	}, nil
}

func chunkCount(score *model.ParsedScore, cfg config.AnalysisConfig) int {
	threshold := cfg.ChunkMeasures
	if threshold <= 0 {
		threshold = maxMeasuresPerChunk
	}
	if len(score.Notes) < 2*maxNotesPerChunk && len(score.Measures) < 2*threshold {
		return 1
	}
	stride := threshold - overlapMeasures
	if stride < 1 {
		stride = threshold
	}
	count := 0
	for start := 1; start <= len(score.Measures); start += stride {
		count++
		end := start + threshold - 1
		if end >= len(score.Measures) {
			break
		}
	}
	return count
}

func emptyAnalysis(score *model.ParsedScore) *model.FullAnalysis {
	tree := model.NewTree()
	return &model.FullAnalysis{
		Tree:       tree,
		TooltipMap: map[model.NodeID]model.TooltipData{},
		ProcessingInfo: model.ProcessingInfo{
			Chunked: false,
		},
	}
}

func computeStatistics(motives []model.Motive, subPhrases []model.SubPhrase, phrases []model.Phrase, periods []model.Period, cadences []model.Cadence, tree *model.Tree, mode ModeResult) model.Statistics {
	confidences := make([]float64, 0, len(tree.Nodes))
	for _, n := range tree.Nodes {
		confidences = append(confidences, n.Confidence)
	}
	mean := 0.0
	if len(confidences) > 0 {
		mean = stat.Mean(confidences, nil)
	}
	return model.Statistics{
		MotiveCount:    len(motives),
		SubPhraseCount: len(subPhrases),
		PhraseCount:    len(phrases),
		PeriodCount:    len(periods),
		CadenceCount:   len(cadences),
		MeanConfidence: mean,
		ModeName:       mode.Mode,
		ModeConfidence: mode.Confidence,
	}
}
