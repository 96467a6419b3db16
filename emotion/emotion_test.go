package emotion

import (
	"testing"

	"github.com/RyanBlaney/scoreform-go/model"
)

func TestExtractTempoFromChildDensity(t *testing.T) {
	node := &model.StructureNode{Type: model.NodePhrase}
	fast := Extract(node, 10, 4, nil, nil, nil)
	if fast.Tempo != model.TempoFast {
		t.Errorf("expected fast tempo for high child density, got %v", fast.Tempo)
	}
	slow := Extract(node, 1, 4, nil, nil, nil)
	if slow.Tempo != model.TempoSlow {
		t.Errorf("expected slow tempo for low child density, got %v", slow.Tempo)
	}
}

func TestExtractDynamicsByNodeType(t *testing.T) {
	motive := &model.StructureNode{Type: model.NodeMotive}
	got := Extract(motive, 2, 2, nil, nil, nil)
	if got.Dynamics != model.DynamicsSoft {
		t.Errorf("expected soft dynamics for a motive, got %v", got.Dynamics)
	}

	section := &model.StructureNode{Type: model.NodeSection}
	got = Extract(section, 2, 2, nil, nil, nil)
	if got.Dynamics != model.DynamicsStrong {
		t.Errorf("expected strong dynamics for a section, got %v", got.Dynamics)
	}
}

func TestExtractTensionFromCadence(t *testing.T) {
	pac := &model.StructureNode{
		Type:     model.NodePhrase,
		Features: model.Features{Cadence: &model.Cadence{Type: model.CadencePAC}},
	}
	got := Extract(pac, 2, 2, nil, nil, nil)
	if got.Tension != model.TensionRelaxed {
		t.Errorf("expected relaxed tension for a PAC cadence, got %v", got.Tension)
	}
}

func TestExtractAudioOverridesNodeDerived(t *testing.T) {
	node := &model.StructureNode{Type: model.NodeMotive}
	audio := &model.AudioFeatureStream{}
	strongRMS := 0.9
	tenseCentroid := 4000.0
	got := Extract(node, 1, 4, audio, &strongRMS, &tenseCentroid)
	if got.Dynamics != model.DynamicsStrong {
		t.Errorf("expected audio RMS to override dynamics to strong, got %v", got.Dynamics)
	}
	if got.Tension != model.TensionTense {
		t.Errorf("expected audio centroid to override tension to tense, got %v", got.Tension)
	}
}
