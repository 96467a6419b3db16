// Package config collects the tunables for every analyzer package so a
// caller can build a single configuration tree instead of threading
// parameters through each constructor individually.
package config

// AnalysisConfig drives the rule-engine cascade (motives through form) and
// the chunked driver.
type AnalysisConfig struct {
	// ChunkMeasures is the measure window size used by the chunked driver.
	// Scores with at least twice this many measures (or at least 2000
	// notes) are analyzed in overlapping windows of this size. Zero counts
	// as unset: NewAnalyzer then uses DefaultAnalysisConfig.
	ChunkMeasures int `json:"chunk_measures"`

	// ChunkOverlap records the number of measures two adjacent chunks
	// share. The chunked driver uses its own fixed 4-measure overlap and
	// does not read this field.
	ChunkOverlap int `json:"chunk_overlap"`

	// MinMotiveNotes records the smallest note count considered for a
	// motive. The motive detector uses its own fixed minimum of 2 and does
	// not read this field.
	MinMotiveNotes int `json:"min_motive_notes"`

	// SequenceTranspositionTolerance records how many semitones a repeated
	// interval pattern may be transposed by and still count as a sequence.
	// The motive detector does not read this field.
	SequenceTranspositionTolerance int `json:"sequence_transposition_tolerance"`
}

// DefaultAnalysisConfig returns the baseline tuning used when no override
// is supplied.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		ChunkMeasures:                  32,
		ChunkOverlap:                   4,
		MinMotiveNotes:                 2,
		SequenceTranspositionTolerance: 12,
	}
}

// DTWConfig tunes the alignment component (C11).
type DTWConfig struct {
	// FramesPerMeasure records the uniform-occupancy sampling rate of the
	// symbolic chroma matrix. The alignment package samples at its own
	// fixed 10 frames per measure; NewAligner only checks this field for
	// zero.
	FramesPerMeasure int `json:"frames_per_measure"`

	// TimeQuantizeSeconds is the bucket width used when building the
	// reverse (time -> measure) lookup.
	TimeQuantizeSeconds float64 `json:"time_quantize_seconds"`

	// ManualEditPenalty is subtracted from confidence on every manual
	// adjustAlignment call.
	ManualEditPenalty float64 `json:"manual_edit_penalty"`

	// MinConfidence is the floor manual edits may never push confidence
	// below.
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultDTWConfig returns the spec-mandated DTW defaults.
func DefaultDTWConfig() DTWConfig {
	return DTWConfig{
		FramesPerMeasure:    10,
		TimeQuantizeSeconds: 0.1,
		ManualEditPenalty:   0.05,
		MinConfidence:       0.5,
	}
}

// RecommenderConfig tunes the weighted-KNN preference learner (C14).
type RecommenderConfig struct {
	// KSmall is used while the example buffer holds at most KSmallCutoff
	// examples.
	KSmall       int `json:"k_small"`
	KSmallCutoff int `json:"k_small_cutoff"`

	// KMedium, KLarge and KLargeCutoff govern the remaining adaptation
	// tiers: >KLargeCutoff examples -> KLarge, >KSmallCutoff -> KMedium,
	// else KSmall.
	KMedium       int `json:"k_medium"`
	KLarge        int `json:"k_large"`
	KLargeCutoff  int `json:"k_large_cutoff"`

	// RecencyDecay is the per-minute multiplicative decay applied to an
	// example's age when scoring.
	RecencyDecay float64 `json:"recency_decay"`

	// DistanceEpsilon avoids a divide-by-zero for an exact feature match.
	DistanceEpsilon float64 `json:"distance_epsilon"`

	// WeightIncrement/WeightDecrement are applied to the relevant feature
	// buckets on every recorded selection, clamped to [WeightMin, WeightMax].
	WeightIncrement float64 `json:"weight_increment"`
	WeightDecrement float64 `json:"weight_decrement"`
	WeightMin       float64 `json:"weight_min"`
	WeightMax       float64 `json:"weight_max"`

	// InitialWeights seeds the 23-dimension feature weight vector.
	InitialWeights [23]float64 `json:"initial_weights"`
}

// DefaultRecommenderConfig returns the spec-mandated KNN defaults, with the
// initial feature weight vector laid out as:
// structureType (6 one-hot dims), confidence, duration, materialVariation
// (2 dims), cadenceType (5 dims), periodType (4 dims), emotionTempo,
// emotionDynamics, emotionTension.
func DefaultRecommenderConfig() RecommenderConfig {
	cfg := RecommenderConfig{
		KSmall:          3,
		KSmallCutoff:    10,
		KMedium:         5,
		KLarge:          7,
		KLargeCutoff:    20,
		RecencyDecay:    0.95,
		DistanceEpsilon: 0.1,
		WeightIncrement: 0.05,
		WeightDecrement: 0.03,
		WeightMin:       0.1,
		WeightMax:       2.0,
	}
	i := 0
	for ; i < 6; i++ {
		cfg.InitialWeights[i] = 1.0 // structureType
	}
	cfg.InitialWeights[i] = 0.5 // confidence
	i++
	cfg.InitialWeights[i] = 0.8 // duration
	i++
	cfg.InitialWeights[i] = 0.7 // materialVariation
	i++
	cfg.InitialWeights[i] = 0.7 // materialVariation
	i++
	for n := 0; n < 5; n, i = n+1, i+1 {
		cfg.InitialWeights[i] = 0.9 // cadenceType
	}
	for n := 0; n < 4; n, i = n+1, i+1 {
		cfg.InitialWeights[i] = 0.8 // periodType
	}
	cfg.InitialWeights[i] = 0.6 // emotionTempo
	i++
	cfg.InitialWeights[i] = 0.6 // emotionDynamics
	i++
	cfg.InitialWeights[i] = 0.7 // emotionTension
	return cfg
}

// VisualConfig tunes the visual-scheme recommender (C13) and the
// confidence -> visual-style mapping used by the tree builder (C9).
type VisualConfig struct {
	// SchemeCount is the number of schemes GetRecommendations returns by
	// default.
	SchemeCount int `json:"scheme_count"`

	// HighConfidence/MediumConfidence/LowConfidence hold the same values as
	// the fixed thresholds in model.StyleForConfidence (>= HighConfidence ->
	// solid/low-uncertainty, down to dotted/very-high-uncertainty below
	// LowConfidence); StyleForConfidence does not read these fields.
	HighConfidence   float64 `json:"high_confidence"`
	MediumConfidence float64 `json:"medium_confidence"`
	LowConfidence    float64 `json:"low_confidence"`
}

// DefaultVisualConfig returns the spec-mandated visual-style thresholds.
func DefaultVisualConfig() VisualConfig {
	return VisualConfig{
		SchemeCount:      5,
		HighConfidence:   0.8,
		MediumConfidence: 0.6,
		LowConfidence:    0.4,
	}
}

// Config is the full tunable tree for a session.
type Config struct {
	Analysis    AnalysisConfig    `json:"analysis"`
	DTW         DTWConfig         `json:"dtw"`
	Recommender RecommenderConfig `json:"recommender"`
	Visual      VisualConfig      `json:"visual"`
}

// DefaultConfig returns a Config with every section at its documented
// default.
func DefaultConfig() Config {
	return Config{
		Analysis:    DefaultAnalysisConfig(),
		DTW:         DefaultDTWConfig(),
		Recommender: DefaultRecommenderConfig(),
		Visual:      DefaultVisualConfig(),
	}
}
