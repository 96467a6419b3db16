package preference

import (
	"testing"
	"time"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

func exampleNode() *model.StructureNode {
	return &model.StructureNode{Type: model.NodePhrase, Confidence: 0.8, Material: "a"}
}

func TestFeatureVectorOneHotType(t *testing.T) {
	v := FeatureVector(exampleNode(), 8, model.EmotionFeatures{Tempo: model.TempoModerate, Dynamics: model.DynamicsModerate, Tension: model.TensionNeutral})
	if v[idxTypeStart+int(model.NodePhrase)] != 1 {
		t.Error("expected one-hot at the phrase type index")
	}
	if v[idxConfidence] != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", v[idxConfidence])
	}
	if v[idxDuration] != 0.5 {
		t.Errorf("expected duration 8/16=0.5, got %v", v[idxDuration])
	}
}

func TestFeatureVectorCadenceAndPeriodNoneBuckets(t *testing.T) {
	v := FeatureVector(exampleNode(), 4, model.EmotionFeatures{})
	if v[idxCadenceStart+4] != 1 {
		t.Error("expected the none-cadence bucket set when no cadence present")
	}
	if v[idxPeriodStart+3] != 1 {
		t.Error("expected the none-period bucket set when no period type present")
	}
}

func TestRecommendBelowMinExamplesReturnsEmpty(t *testing.T) {
	l := NewLearner(config.DefaultRecommenderConfig(), nil)
	l.Record(model.PreferenceExample{Reward: model.RewardAccept, Timestamp: time.Now()})

	got := l.Recommend([model.FeatureVectorSize]float64{}, time.Now(), 3)
	if got != nil {
		t.Errorf("expected nil recommendations below the example floor, got %v", got)
	}
}

func TestRecommendGroupsAndTagsPreferenceSource(t *testing.T) {
	l := NewLearner(config.DefaultRecommenderConfig(), nil)
	scheme := model.VisualScheme{Shapes: []model.Shape{{Type: model.ShapeCircle}}, Colors: []string{"#fff"}, Animation: model.AnimationPulse}
	now := time.Now()

	l.Record(model.PreferenceExample{FeatureVector: [model.FeatureVectorSize]float64{idxConfidence: 0.8}, Scheme: scheme, Reward: model.RewardAccept, Timestamp: now})
	l.Record(model.PreferenceExample{FeatureVector: [model.FeatureVectorSize]float64{idxConfidence: 0.8}, Scheme: scheme, Reward: model.RewardAccept, Timestamp: now})

	query := [model.FeatureVectorSize]float64{idxConfidence: 0.8}
	got := l.Recommend(query, now, 3)
	if len(got) != 1 {
		t.Fatalf("expected the two identical examples to group into 1 scheme, got %d", len(got))
	}
	if !got[0].FromPreference || got[0].RecommendationSource != model.SourcePreferenceLearning {
		t.Error("expected the recommended scheme to be tagged as preference-sourced")
	}
	if got[0].MatchCount != 2 {
		t.Errorf("expected match count 2, got %d", got[0].MatchCount)
	}
}

func TestRecordWeightUpdateClampsToBounds(t *testing.T) {
	cfg := config.DefaultRecommenderConfig()
	l := NewLearner(cfg, nil)
	var vec [model.FeatureVectorSize]float64
	vec[idxTypeStart] = 1

	for i := 0; i < 200; i++ {
		l.Record(model.PreferenceExample{FeatureVector: vec, Reward: model.RewardAccept, Timestamp: time.Now()})
	}
	if l.weights[idxTypeStart] > cfg.WeightMax {
		t.Errorf("expected weight to clamp at WeightMax, got %v", l.weights[idxTypeStart])
	}
}
