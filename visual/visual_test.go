package visual

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

func TestShapeCountByDuration(t *testing.T) {
	cases := []struct {
		duration int
		want     int
	}{
		{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {20, 4},
	}
	for _, c := range cases {
		if got := shapeCountFor(c.duration); got != c.want {
			t.Errorf("shapeCountFor(%d) = %d, want %d", c.duration, got, c.want)
		}
	}
}

func TestArrangementByDuration(t *testing.T) {
	if arrangementFor(2) != model.ArrangementSingle {
		t.Error("expected single arrangement for duration 2")
	}
	if arrangementFor(8) != model.ArrangementSequence {
		t.Error("expected sequence arrangement for duration 8")
	}
	if arrangementFor(9) != model.ArrangementGrid {
		t.Error("expected grid arrangement for duration 9")
	}
}

func TestGenerateSchemesReturnsAtLeastThree(t *testing.T) {
	g := NewGenerator(config.DefaultVisualConfig())
	node := &model.StructureNode{ID: "n1", Type: model.NodePhrase, StartMeasure: 1, EndMeasure: 4, Material: "a"}
	emotion := model.EmotionFeatures{Tempo: model.TempoModerate, Dynamics: model.DynamicsModerate, Tension: model.TensionNeutral}

	schemes := g.GenerateSchemes(node, emotion, nil, 2)
	if len(schemes) < 3 {
		t.Fatalf("expected at least 3 schemes after top-up, got %d", len(schemes))
	}
	for _, s := range schemes {
		if len(s.Shapes) != 2 {
			t.Errorf("expected shapeCount 2 for a 4-measure phrase, got %d", len(s.Shapes))
		}
	}
}

func TestRecapitulatedMaterialGetsWarmColor(t *testing.T) {
	g := NewGenerator(config.DefaultVisualConfig())
	node := &model.StructureNode{ID: "n2", Type: model.NodePeriod, StartMeasure: 1, EndMeasure: 2, Material: "a'"}
	emotion := model.EmotionFeatures{Tempo: model.TempoModerate, Dynamics: model.DynamicsModerate, Tension: model.TensionNeutral}

	schemes := g.GenerateSchemes(node, emotion, nil, 1)
	if schemes[0].Relationship != model.RelRecapitulated {
		t.Errorf("expected recapitulated relationship for material ending in ', got %v", schemes[0].Relationship)
	}
}

func TestSimilarMaterialSharesLetterWithRelated(t *testing.T) {
	g := NewGenerator(config.DefaultVisualConfig())
	node := &model.StructureNode{ID: "n3", Type: model.NodePhrase, StartMeasure: 1, EndMeasure: 4, Material: "b"}
	related := []*model.StructureNode{{ID: "n0", Material: "b"}}
	emotion := model.EmotionFeatures{Tempo: model.TempoModerate, Dynamics: model.DynamicsModerate, Tension: model.TensionNeutral}

	schemes := g.GenerateSchemes(node, emotion, related, 1)
	if schemes[0].Relationship != model.RelSimilar {
		t.Errorf("expected similar relationship for shared material letter, got %v", schemes[0].Relationship)
	}
}

func TestDedupSchemesDropsIdenticalKeys(t *testing.T) {
	a := model.VisualScheme{Shapes: []model.Shape{{Type: model.ShapeCircle}}, Colors: []string{"#fff"}, Animation: model.AnimationNone}
	b := a
	deduped := dedupSchemes([]model.VisualScheme{a, b})
	if len(deduped) != 1 {
		t.Errorf("expected duplicate scheme to be dropped, got %d", len(deduped))
	}
}
