// Package session is the top-level facade over one score's lifecycle:
// structural analysis, DTW alignment, visual-scheme recommendation and
// preference learning, plus export/import of the full session state
// (spec.md §6). It is the orchestration layer callers (UI, CLI) embed;
// the detector packages underneath it never hold session-scoped state
// themselves.
package session

import (
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/scoreform-go/alignment"
	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/emotion"
	"github.com/RyanBlaney/scoreform-go/logging"
	"github.com/RyanBlaney/scoreform-go/model"
	"github.com/RyanBlaney/scoreform-go/preference"
	"github.com/RyanBlaney/scoreform-go/structure"
	"github.com/RyanBlaney/scoreform-go/visual"
)

const stateVersion = "1.0.0"

// Session owns one score's analysis, alignment, visual scheme candidates
// and preference-learning history (spec.md §5's resource policy: the tree
// and preference buffer are exclusively session-owned).
type Session struct {
	id        string
	createdAt time.Time
	cfg       config.Config
	logger    logging.Logger

	aligner   *alignment.Aligner
	generator *visual.Generator
	learner   *preference.Learner

	score           *model.ParsedScore
	audio           *model.AudioFeatureStream
	analysis        *model.FullAnalysis
	alignmentResult model.AlignmentResult

	schemeCandidates map[model.NodeID][]model.VisualScheme
	history          []model.LearningEvent
}

// NewSession builds a Session identified by id. A zero-value cfg falls
// back to config.DefaultConfig; a nil logger falls back to a no-op logger.
func NewSession(id string, cfg config.Config, logger logging.Logger) *Session {
	if cfg.Analysis.ChunkMeasures == 0 {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Session{
		id:               id,
		createdAt:        time.Now(),
		cfg:              cfg,
		logger:           logger,
		aligner:          alignment.NewAligner(cfg.DTW),
		generator:        visual.NewGenerator(cfg.Visual),
		learner:          preference.NewLearner(cfg.Recommender, logger),
		schemeCandidates: make(map[model.NodeID][]model.VisualScheme),
	}
}

// AnalyzeComplete runs the full structural cascade over score using the
// session's configured chunk window.
func (s *Session) AnalyzeComplete(score *model.ParsedScore) (*model.FullAnalysis, error) {
	return s.analyzeWith(score, s.cfg.Analysis)
}

// AnalyzeCompleteChunked runs the cascade with chunkMeasures overriding the
// session's configured chunk window for this run only.
func (s *Session) AnalyzeCompleteChunked(score *model.ParsedScore, chunkMeasures int) (*model.FullAnalysis, error) {
	cfg := s.cfg.Analysis
	if chunkMeasures > 0 {
		cfg.ChunkMeasures = chunkMeasures
	}
	return s.analyzeWith(score, cfg)
}

func (s *Session) analyzeWith(score *model.ParsedScore, cfg config.AnalysisConfig) (*model.FullAnalysis, error) {
	analyzer := structure.NewAnalyzer(cfg, s.logger)
	analysis, err := analyzer.Analyze(score)
	if err != nil {
		return nil, err
	}
	s.score = score
	s.analysis = analysis
	s.schemeCandidates = make(map[model.NodeID][]model.VisualScheme)
	return analysis, nil
}

// Align computes the DTW alignment between the session's score and audio,
// storing the result for subsequent MeasureToTime/TimeToMeasure lookups
// and for emotion-feature acoustic overrides.
func (s *Session) Align(audio *model.AudioFeatureStream) (model.AlignmentResult, error) {
	if s.score == nil {
		return model.AlignmentResult{}, fmt.Errorf("session: Align called before AnalyzeComplete")
	}
	symbolic := alignment.SymbolicChroma(s.score.Notes, 1, len(s.score.Measures), float64(s.score.TimeSignature.Beats))
	result := s.aligner.Align(symbolic, 1, audio.Chroma, audio.Timestamps)
	s.audio = audio
	s.alignmentResult = result
	return result, nil
}

// AdjustAlignment manually overwrites the mapping for measure m and time t.
func (s *Session) AdjustAlignment(m int, t float64) {
	s.aligner.AdjustAlignment(&s.alignmentResult, m, t)
}

// GetRecommendations returns up to count VisualSchemes for nodeID: the
// preference learner's grouped recommendations first, filled out with the
// rule-based generator's output (§4.13/§4.14).
func (s *Session) GetRecommendations(nodeID model.NodeID, count int) ([]model.VisualScheme, error) {
	if s.analysis == nil || s.analysis.Tree == nil {
		return nil, fmt.Errorf("session: GetRecommendations called before AnalyzeComplete")
	}
	node := s.analysis.Tree.Get(nodeID)
	if node == nil {
		return nil, fmt.Errorf("session: unknown node %q", nodeID)
	}
	if count <= 0 {
		count = s.cfg.Visual.SchemeCount
	}

	duration := node.EndMeasure - node.StartMeasure + 1
	rms, centroid := s.scalarsAtNode(node)
	emo := emotion.Extract(node, len(node.Children), float64(duration), s.audio, rms, centroid)

	ruleBased := s.generator.GenerateSchemes(node, emo, s.relatedNodes(node), count)
	query := preference.FeatureVector(node, duration, emo)
	preferred := s.learner.Recommend(query, time.Now(), count)

	merged := mergeSchemes(preferred, ruleBased, count)
	s.schemeCandidates[nodeID] = merged
	return merged, nil
}

func mergeSchemes(preferred, ruleBased []model.VisualScheme, count int) []model.VisualScheme {
	out := make([]model.VisualScheme, 0, count)
	out = append(out, preferred...)
	for _, scheme := range ruleBased {
		if len(out) >= count {
			break
		}
		out = append(out, scheme)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out
}

func (s *Session) relatedNodes(node *model.StructureNode) []*model.StructureNode {
	if node.Parent == nil {
		return nil
	}
	parent := s.analysis.Tree.Get(*node.Parent)
	if parent == nil {
		return nil
	}
	related := make([]*model.StructureNode, 0, len(parent.Children))
	for _, id := range parent.Children {
		if id == node.ID {
			continue
		}
		if sibling := s.analysis.Tree.Get(id); sibling != nil {
			related = append(related, sibling)
		}
	}
	return related
}

// scalarsAtNode samples RMS/spectral-centroid at the alignment-mapped time
// of node's first measure, if both alignment and audio are present.
func (s *Session) scalarsAtNode(node *model.StructureNode) (rms, centroid *float64) {
	if s.audio == nil || len(s.alignmentResult.MeasureToTime) == 0 {
		return nil, nil
	}
	t := alignment.MeasureToTime(s.alignmentResult, node.StartMeasure)
	idx := nearestFrame(s.audio.Timestamps, t)
	if idx < 0 {
		return nil, nil
	}
	if idx < len(s.audio.RMS) {
		v := s.audio.RMS[idx]
		rms = &v
	}
	if idx < len(s.audio.SpectralCentroid) {
		v := s.audio.SpectralCentroid[idx]
		centroid = &v
	}
	return rms, centroid
}

func nearestFrame(timestamps []float64, t float64) int {
	if len(timestamps) == 0 {
		return -1
	}
	best, bestDist := 0, math.Abs(timestamps[0]-t)
	for i, ts := range timestamps {
		if d := math.Abs(ts - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// RecordSelection records a user's accept/modify/reject action on a
// previously recommended scheme, feeding the preference learner and
// appending to session history (§4.14).
func (s *Session) RecordSelection(nodeID model.NodeID, schemeID string, action string) error {
	if s.analysis == nil || s.analysis.Tree == nil {
		return fmt.Errorf("session: RecordSelection called before AnalyzeComplete")
	}
	node := s.analysis.Tree.Get(nodeID)
	if node == nil {
		return fmt.Errorf("session: unknown node %q", nodeID)
	}

	var scheme model.VisualScheme
	found := false
	for _, c := range s.schemeCandidates[nodeID] {
		if c.ID == schemeID {
			scheme, found = c, true
			break
		}
	}
	if !found {
		return fmt.Errorf("session: unknown scheme %q for node %q", schemeID, nodeID)
	}

	reward, err := rewardFor(action)
	if err != nil {
		return err
	}

	duration := node.EndMeasure - node.StartMeasure + 1
	rms, centroid := s.scalarsAtNode(node)
	emo := emotion.Extract(node, len(node.Children), float64(duration), s.audio, rms, centroid)
	vec := preference.FeatureVector(node, duration, emo)

	now := time.Now()
	s.learner.Record(model.PreferenceExample{FeatureVector: vec, Scheme: scheme, Reward: reward, Timestamp: now})
	s.history = append(s.history, model.LearningEvent{Action: action, NodeID: nodeID, SchemeID: schemeID, Timestamp: now})
	return nil
}

func rewardFor(action string) (float64, error) {
	switch action {
	case "accept":
		return model.RewardAccept, nil
	case "modify":
		return model.RewardModify, nil
	case "reject":
		return model.RewardReject, nil
	default:
		return 0, fmt.Errorf("session: unknown action %q", action)
	}
}

// Reset clears the session's analysis, alignment, scheme candidates,
// history and preference buffer, keeping only its id/config/logger.
func (s *Session) Reset() {
	s.score = nil
	s.audio = nil
	s.analysis = nil
	s.alignmentResult = model.AlignmentResult{}
	s.schemeCandidates = make(map[model.NodeID][]model.VisualScheme)
	s.history = nil
	s.learner = preference.NewLearner(s.cfg.Recommender, s.logger)
}

// Export serialises the session to its persisted-state layout (§6). Only
// the top-ranked scheme candidate per node is exported as that node's
// visual mapping.
func (s *Session) Export() (*model.PersistedState, error) {
	if s.analysis == nil || s.analysis.Tree == nil {
		return nil, fmt.Errorf("session: Export called before AnalyzeComplete")
	}

	visualMappings := make(map[model.NodeID]model.VisualScheme, len(s.schemeCandidates))
	for nodeID, candidates := range s.schemeCandidates {
		if len(candidates) > 0 {
			visualMappings[nodeID] = candidates[0]
		}
	}

	accept, modify, reject := 0, 0, 0
	for _, h := range s.history {
		switch h.Action {
		case "accept":
			accept++
		case "modify":
			modify++
		case "reject":
			reject++
		}
	}

	return &model.PersistedState{
		Version: stateVersion,
		Session: model.PersistedSession{
			SessionID:     s.id,
			CreatedAt:     s.createdAt,
			ParsedScore:   s.score,
			AudioFeatures: s.audio,
			Alignment: model.PersistedAlignment{
				MeasureToTime: s.alignmentResult.MeasureToTime,
				Confidence:    s.alignmentResult.Confidence,
			},
		},
		Structure: model.PersistedStructure{
			Root:         s.analysis.Tree.Root,
			Nodes:        s.analysis.Tree.Nodes,
			FormAnalysis: s.analysis.Form,
			Cadences:     s.analysis.Cadences,
			Phrases:      s.analysis.Phrases,
			Periods:      s.analysis.Periods,
		},
		VisualMappings: visualMappings,
		Preferences: model.PersistedPreferences{
			ExampleCount:    accept + modify + reject,
			AcceptCount:     accept,
			ModifyCount:     modify,
			RejectCount:     reject,
			LearningHistory: s.history,
		},
	}, nil
}

// Import rebuilds the session's node graph and bookkeeping from a
// previously exported snapshot. Each StructureNode already carries its own
// parent/children references, so rebuilding the arena is a single
// create-all pass; a second pass would only be needed if nodes referenced
// each other by a key not already present on the node itself. The
// preference buffer's examples are not replayed -- the learner restarts at
// its documented initial weights, with only the summary counts and action
// history restored.
func (s *Session) Import(state *model.PersistedState) error {
	if state == nil {
		return fmt.Errorf("session: Import given a nil state")
	}

	tree := model.NewTree()
	for id, node := range state.Structure.Nodes {
		clone := *node
		clone.ID = id
		tree.Nodes[id] = &clone
	}
	tree.Root = state.Structure.Root

	s.id = state.Session.SessionID
	s.createdAt = state.Session.CreatedAt
	s.score = state.Session.ParsedScore
	s.audio = state.Session.AudioFeatures
	s.alignmentResult = model.AlignmentResult{
		MeasureToTime: state.Session.Alignment.MeasureToTime,
		TimeToMeasure: rebuildReverseIndex(state.Session.Alignment.MeasureToTime, s.cfg.DTW.TimeQuantizeSeconds),
		Confidence:    state.Session.Alignment.Confidence,
	}

	s.analysis = &model.FullAnalysis{
		Tree:     tree,
		Form:     state.Structure.FormAnalysis,
		Cadences: state.Structure.Cadences,
		Phrases:  state.Structure.Phrases,
		Periods:  state.Structure.Periods,
	}

	s.schemeCandidates = make(map[model.NodeID][]model.VisualScheme, len(state.VisualMappings))
	for nodeID, scheme := range state.VisualMappings {
		s.schemeCandidates[nodeID] = []model.VisualScheme{scheme}
	}

	s.history = append([]model.LearningEvent(nil), state.Preferences.LearningHistory...)
	s.learner = preference.NewLearner(s.cfg.Recommender, s.logger)
	return nil
}

func rebuildReverseIndex(measureToTime map[int]float64, quantizeStep float64) map[float64]int {
	if quantizeStep <= 0 {
		quantizeStep = config.DefaultDTWConfig().TimeQuantizeSeconds
	}
	out := make(map[float64]int, len(measureToTime))
	for m, t := range measureToTime {
		out[roundTo(t, quantizeStep)] = m
	}
	return out
}

func roundTo(t, step float64) float64 {
	if step <= 0 {
		return t
	}
	return math.Round(t/step) * step
}
