package model

import "time"

// FeatureVectorSize is the fixed dimensionality of a preference feature
// vector (spec.md §4.14): one-hot(type,6) + confidence + length + hasPrime +
// isCompound + one-hot(cadence,5) + one-hot(periodType,4) + tempo/dynamics/tension,
// which fills 22 dimensions; index 22 is a reserved pad.
const FeatureVectorSize = 23

// PreferenceExample is one recorded accept/modify/reject signal.
type PreferenceExample struct {
	FeatureVector [FeatureVectorSize]float64
	Scheme        VisualScheme
	Reward        float64
	Timestamp     time.Time
}

// Reward values for the three user actions (spec.md §4.14).
const (
	RewardAccept = 1.0
	RewardModify = 0.5
	RewardReject = -1.0
)
