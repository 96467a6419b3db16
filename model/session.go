package model

import "time"

// PersistedState is the full JSON-serialisable snapshot of a session,
// produced by a session's Export and consumed by its Import (spec.md §6).
type PersistedState struct {
	Version        string                   `json:"version"`
	Session        PersistedSession         `json:"session"`
	Structure      PersistedStructure       `json:"structure"`
	VisualMappings map[NodeID]VisualScheme  `json:"visualMappings"`
	Preferences    PersistedPreferences     `json:"preferences"`
}

// PersistedSession carries the session's inputs and alignment result.
type PersistedSession struct {
	SessionID     string              `json:"sessionId"`
	CreatedAt     time.Time           `json:"createdAt"`
	ParsedScore   *ParsedScore        `json:"parsedScore"`
	AudioFeatures *AudioFeatureStream `json:"audioFeatures,omitempty"`
	Alignment     PersistedAlignment  `json:"alignment"`
}

// PersistedAlignment is the reduced measure<->time mapping carried across
// export/import (the reverse TimeToMeasure index is rebuilt on import).
type PersistedAlignment struct {
	MeasureToTime map[int]float64 `json:"measureToTime"`
	Confidence    float64         `json:"confidence"`
}

// PersistedStructure is the tree and the global detector outputs needed to
// reconstruct a FullAnalysis without re-running the cascade.
type PersistedStructure struct {
	Root         NodeID                    `json:"root"`
	Nodes        map[NodeID]*StructureNode `json:"nodes"`
	FormAnalysis FormAnalysis              `json:"formAnalysis"`
	Cadences     []Cadence                 `json:"cadences"`
	Phrases      []Phrase                  `json:"phrases"`
	Periods      []Period                  `json:"periods"`
}

// LearningEvent is one recorded accept/modify/reject action in session
// history.
type LearningEvent struct {
	Action    string    `json:"action"`
	NodeID    NodeID    `json:"nodeId"`
	SchemeID  string    `json:"schemeId"`
	Timestamp time.Time `json:"timestamp"`
}

// PersistedPreferences is the preference learner's exported state: summary
// counts plus the full action history. The feature-vector buffer itself is
// not exported, and Import does not replay the history into it.
type PersistedPreferences struct {
	ExampleCount    int             `json:"exampleCount"`
	AcceptCount     int             `json:"acceptCount"`
	ModifyCount     int             `json:"modifyCount"`
	RejectCount     int             `json:"rejectCount"`
	LearningHistory []LearningEvent `json:"learningHistory"`
}
