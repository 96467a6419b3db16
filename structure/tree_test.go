package structure

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func TestBuildTreeRootSpansFullRange(t *testing.T) {
	periods := []model.Period{makePeriod(0, "a", 1, 8)}
	form := ClassifyForm(periods, 1, 8)
	tree := BuildTree(form, nil, nil, 1, 8)

	root := tree.Get(tree.Root)
	if root == nil {
		t.Fatal("expected a root node")
	}
	if root.StartMeasure != 1 || root.EndMeasure != 8 {
		t.Errorf("root should span [1,8], got [%d,%d]", root.StartMeasure, root.EndMeasure)
	}
}

func TestStyleForConfidenceMonotone(t *testing.T) {
	confidences := []float64{0.95, 0.7, 0.5, 0.2}
	var prevOpacity float64 = 2 // above max
	for _, c := range confidences {
		style := model.StyleForConfidence(c)
		if style.Opacity > prevOpacity {
			t.Errorf("opacity should be non-increasing as confidence drops: %v at %v after %v", style.Opacity, c, prevOpacity)
		}
		prevOpacity = style.Opacity
	}
}

func findNodeByType(tree *model.Tree, t model.StructureType) *model.StructureNode {
	for _, n := range tree.Nodes {
		if n.Type == t {
			return n
		}
	}
	return nil
}

func TestPeriodNodeGetsCadenceBonus(t *testing.T) {
	withCadence := model.Period{
		Index: 0, StartMeasure: 1, EndMeasure: 8, Material: "a",
		Phrases: []model.Phrase{makePhrase(1, 8, model.ClosureClosed, 0.9)},
	}
	withoutCadence := model.Period{
		Index: 0, StartMeasure: 1, EndMeasure: 8, Material: "a",
		Phrases: []model.Phrase{makePhrase(1, 8, model.ClosureClosed, 0)},
	}

	formWith := ClassifyForm([]model.Period{withCadence}, 1, 8)
	treeWith := BuildTree(formWith, nil, nil, 1, 8)
	nodeWith := findNodeByType(treeWith, model.NodePeriod)
	if nodeWith == nil {
		t.Fatal("expected a period node")
	}
	if nodeWith.Features.Cadence == nil {
		t.Fatal("expected the period node to carry its final phrase's cadence")
	}

	formWithout := ClassifyForm([]model.Period{withoutCadence}, 1, 8)
	treeWithout := BuildTree(formWithout, nil, nil, 1, 8)
	nodeWithout := findNodeByType(treeWithout, model.NodePeriod)
	if nodeWithout == nil {
		t.Fatal("expected a period node")
	}
	if nodeWithout.Features.Cadence != nil {
		t.Fatal("expected no cadence on a period whose last phrase has none")
	}

	if nodeWith.Confidence <= nodeWithout.Confidence {
		t.Errorf("period with a cadence should score higher confidence: with=%v without=%v",
			nodeWith.Confidence, nodeWithout.Confidence)
	}
}

func TestUpdateMaterialIdempotent(t *testing.T) {
	periods := []model.Period{makePeriod(0, "a", 1, 8)}
	form := ClassifyForm(periods, 1, 8)
	tree := BuildTree(form, nil, nil, 1, 8)

	root := tree.Get(tree.Root)
	before := root.Confidence

	UpdateMaterial(tree, tree.Root, "newMaterial")
	afterFirst := root.Confidence
	if afterFirst >= before {
		t.Errorf("expected confidence to strictly decrease after an edit, before=%v after=%v", before, afterFirst)
	}

	UpdateMaterial(tree, tree.Root, "newMaterial")
	afterSecond := root.Confidence
	if afterSecond != afterFirst {
		t.Errorf("expected UpdateMaterial to be idempotent on an unchanged material, got %v then %v", afterFirst, afterSecond)
	}
}

func TestUpdateMaterialNeverBelowFloor(t *testing.T) {
	periods := []model.Period{makePeriod(0, "a", 1, 8)}
	form := ClassifyForm(periods, 1, 8)
	tree := BuildTree(form, nil, nil, 1, 8)

	root := tree.Get(tree.Root)
	for i := 0; i < 10; i++ {
		UpdateMaterial(tree, tree.Root, "m"+string(rune('a'+i)))
	}
	if root.Confidence < editConfidenceFloor {
		t.Errorf("confidence should never drop below the editing floor, got %v", root.Confidence)
	}
}
