// Package preference implements the weighted-KNN visual-scheme recommender
// (spec.md §4.14): an append-only buffer of accept/modify/reject signals,
// a recency- and distance-weighted nearest-neighbour score, and additive
// per-bucket weight updates.
package preference

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/logging"
	"github.com/RyanBlaney/scoreform-go/model"
	"gonum.org/v1/gonum/floats"
)

// minExamplesForRecommendation is the buffer floor below which Recommend
// always returns an empty list, so the caller falls back entirely on the
// rule-based generator (§4.14 Failure modes).
const minExamplesForRecommendation = 2

const (
	idxTypeStart    = 0
	idxTypeEnd      = 6
	idxConfidence   = 6
	idxDuration     = 7
	idxHasPrime     = 8
	idxIsCompound   = 9
	idxCadenceStart = 10
	idxCadenceEnd   = 15
	idxPeriodStart  = 15
	idxPeriodEnd    = 19
	idxTempo        = 19
	idxDynamics     = 20
	idxTension      = 21
	// index 22 is reserved: the vector's component sum per spec.md §4.14 is
	// 22 dims but model.FeatureVectorSize is declared 23; left as a
	// constant-zero pad so it never influences distance regardless of its
	// weight.
)

// Learner owns the preference buffer and feature-weight vector for one
// session.
type Learner struct {
	cfg     config.RecommenderConfig
	weights [model.FeatureVectorSize]float64
	buffer  []model.PreferenceExample
	logger  logging.Logger
}

// NewLearner builds a Learner seeded with cfg's initial weights. A
// zero-value cfg falls back to config.DefaultRecommenderConfig.
func NewLearner(cfg config.RecommenderConfig, logger logging.Logger) *Learner {
	if cfg.KSmall == 0 {
		cfg = config.DefaultRecommenderConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Learner{cfg: cfg, weights: cfg.InitialWeights, logger: logger}
}

// FeatureVector builds the 23-dim feature vector for node (§4.14).
func FeatureVector(node *model.StructureNode, lengthMeasures int, emotion model.EmotionFeatures) [model.FeatureVectorSize]float64 {
	var v [model.FeatureVectorSize]float64

	if int(node.Type) >= 0 && int(node.Type) < idxTypeEnd-idxTypeStart {
		v[idxTypeStart+int(node.Type)] = 1
	}
	v[idxConfidence] = node.Confidence
	v[idxDuration] = math.Min(1, float64(lengthMeasures)/16.0)
	if strings.HasSuffix(node.Material, "'") {
		v[idxHasPrime] = 1
	}
	if isCompound(node) {
		v[idxIsCompound] = 1
	}

	cb := cadenceBucket(node.Features.Cadence)
	v[idxCadenceStart+cb] = 1

	pb := periodBucket(node.Features.PeriodType)
	v[idxPeriodStart+pb] = 1

	v[idxTempo] = tempoValue(emotion.Tempo)
	v[idxDynamics] = dynamicsValue(emotion.Dynamics)
	v[idxTension] = tensionValue(emotion.Tension)

	return v
}

func isCompound(node *model.StructureNode) bool {
	if node.Features.PeriodType != nil && *node.Features.PeriodType == model.PeriodCompound {
		return true
	}
	if node.Features.FormType != nil && *node.Features.FormType == model.FormTernaryCompound {
		return true
	}
	return false
}

// cadenceBucket maps a cadence to one of 4 real categories (PAC, IAC,
// Half, other) plus a none bucket, 5 slots total (§4.14).
func cadenceBucket(c *model.Cadence) int {
	if c == nil {
		return 4
	}
	switch c.Type {
	case model.CadencePAC:
		return 0
	case model.CadenceIAC:
		return 1
	case model.CadenceHalf:
		return 2
	default:
		return 3
	}
}

// periodBucket maps a period type to one of 3 real categories (parallel,
// contrasting, other) plus a none bucket, 4 slots total (§4.14).
func periodBucket(pt *model.PeriodType) int {
	if pt == nil {
		return 3
	}
	switch *pt {
	case model.PeriodParallel:
		return 0
	case model.PeriodContrasting:
		return 1
	default:
		return 2
	}
}

func tempoValue(t model.TempoFeel) float64 {
	switch t {
	case model.TempoFast:
		return 1
	case model.TempoSlow:
		return 0
	default:
		return 0.5
	}
}

func dynamicsValue(d model.DynamicsFeel) float64 {
	switch d {
	case model.DynamicsStrong:
		return 1
	case model.DynamicsSoft:
		return 0
	default:
		return 0.5
	}
}

func tensionValue(t model.TensionFeel) float64 {
	switch t {
	case model.TensionTense:
		return 1
	case model.TensionRelaxed:
		return 0
	default:
		return 0.5
	}
}

// Record appends a new example to the buffer and applies the additive
// weight update to the buckets active in its feature vector (§4.14).
func (l *Learner) Record(example model.PreferenceExample) {
	l.buffer = append(l.buffer, example)

	adjust := -l.cfg.WeightDecrement
	if example.Reward > 0 {
		adjust = l.cfg.WeightIncrement
	}

	l.nudge(idxTypeStart, idxTypeEnd, example.FeatureVector, adjust)
	l.nudge(idxCadenceStart, idxCadenceEnd, example.FeatureVector, adjust)
	l.nudge(idxPeriodStart, idxPeriodEnd, example.FeatureVector, adjust)

	l.logger.Debug("preference example recorded", logging.Fields{"reward": example.Reward, "buffer_size": len(l.buffer)})
}

// nudge adjusts the weight of whichever index in [start,end) is active
// (one-hot = 1) in vec, clamped to [WeightMin, WeightMax].
func (l *Learner) nudge(start, end int, vec [model.FeatureVectorSize]float64, adjust float64) {
	for i := start; i < end; i++ {
		if vec[i] == 0 {
			continue
		}
		w := l.weights[i] + adjust
		if w < l.cfg.WeightMin {
			w = l.cfg.WeightMin
		}
		if w > l.cfg.WeightMax {
			w = l.cfg.WeightMax
		}
		l.weights[i] = w
	}
}

// k returns the adapted neighbour count for the current buffer size
// (§4.14 K adaptation).
func (l *Learner) k() int {
	switch {
	case len(l.buffer) > l.cfg.KLargeCutoff:
		return l.cfg.KLarge
	case len(l.buffer) > l.cfg.KSmallCutoff:
		return l.cfg.KMedium
	default:
		return l.cfg.KSmall
	}
}

// Recommend scores the buffer against query at time now, and returns up
// to count grouped VisualSchemes tagged fromPreference=true. Returns an
// empty list if the buffer has fewer than minExamplesForRecommendation
// examples (caller falls back to the rule-based generator).
func (l *Learner) Recommend(query [model.FeatureVectorSize]float64, now time.Time, count int) []model.VisualScheme {
	if len(l.buffer) < minExamplesForRecommendation {
		return nil
	}

	type scored struct {
		example  model.PreferenceExample
		combined float64
	}

	candidates := make([]scored, 0, len(l.buffer))
	for _, ex := range l.buffer {
		if ex.Reward <= 0 {
			continue
		}
		dist := l.weightedDistance(query, ex.FeatureVector)
		ageMinutes := now.Sub(ex.Timestamp).Minutes()
		if ageMinutes < 0 {
			ageMinutes = 0
		}
		recency := math.Pow(l.cfg.RecencyDecay, ageMinutes)
		combined := (1.0 / (dist + l.cfg.DistanceEpsilon)) * ex.Reward * recency
		candidates = append(candidates, scored{example: ex, combined: combined})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].combined > candidates[j].combined })

	k := l.k()
	if k > len(candidates) {
		k = len(candidates)
	}
	top := candidates[:k]

	type group struct {
		scheme  model.VisualScheme
		total   float64
		matches int
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(top))
	for _, c := range top {
		key := canonicalKey(c.example.Scheme)
		g, ok := groups[key]
		if !ok {
			g = &group{scheme: c.example.Scheme}
			groups[key] = g
			order = append(order, key)
		}
		g.total += c.combined
		g.matches++
	}

	sort.Slice(order, func(i, j int) bool { return groups[order[i]].total > groups[order[j]].total })

	if count <= 0 {
		count = len(order)
	}
	if count > len(order) {
		count = len(order)
	}

	out := make([]model.VisualScheme, 0, count)
	for _, key := range order[:count] {
		g := groups[key]
		scheme := g.scheme
		scheme.RecommendationSource = model.SourcePreferenceLearning
		scheme.FromPreference = true
		scheme.PreferenceScore = g.total
		scheme.MatchCount = g.matches
		out = append(out, scheme)
	}
	return out
}

// weightedDistance is the weighted Euclidean distance between q and e: each
// per-dimension difference is scaled by sqrt(weight) before taking the L2
// norm, so the result equals sqrt(sum(weight_i * (q_i-e_i)^2)).
func (l *Learner) weightedDistance(q, e [model.FeatureVectorSize]float64) float64 {
	scaled := make([]float64, len(q))
	for i := range q {
		scaled[i] = math.Sqrt(l.weights[i]) * (q[i] - e[i])
	}
	return floats.Norm(scaled, 2)
}

// canonicalKey groups schemes by shape types, colours and animation,
// ignoring size/arrangement/relationship (§4.14).
func canonicalKey(s model.VisualScheme) string {
	var b strings.Builder
	for _, sh := range s.Shapes {
		b.WriteString(string(sh.Type))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, c := range s.Colors {
		b.WriteString(c)
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(string(s.Animation))
	return b.String()
}
