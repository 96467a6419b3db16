// Package emotion derives qualitative emotional descriptors (tempo,
// dynamics, tension) from a structural node, optionally overridden by
// acoustic features (spec.md §4.12).
package emotion

import "github.com/RyanBlaney/scoreform-go/model"

const (
	fastChildRatio = 2.0
	slowChildRatio = 0.5

	rmsStrongThreshold = 0.7
	rmsSoftThreshold   = 0.3

	centroidTenseHz    = 3000.0
	centroidRelaxedHz  = 1000.0
)

// dynamicsByType is the fixed node-type -> dynamics table (§4.12).
var dynamicsByType = map[model.StructureType]model.DynamicsFeel{
	model.NodeMotive:    model.DynamicsSoft,
	model.NodeSubPhrase: model.DynamicsSoft,
	model.NodePhrase:    model.DynamicsModerate,
	model.NodePeriod:    model.DynamicsModerate,
	model.NodeTheme:     model.DynamicsStrong,
	model.NodeSection:   model.DynamicsStrong,
}

// Extract derives a node's EmotionFeatures. childCount/durationMeasures give
// the node's children-per-duration ratio for the tempo rule; audio is nil when
// no acoustic stream accompanies the score.
func Extract(node *model.StructureNode, childCount int, durationMeasures float64, audio *model.AudioFeatureStream, rmsAtNode, centroidAtNode *float64) model.EmotionFeatures {
	features := model.EmotionFeatures{
		Tempo:    tempoFeel(childCount, durationMeasures),
		Dynamics: dynamicsByType[node.Type],
		Tension:  tensionFeel(node),
	}

	if audio != nil {
		if rmsAtNode != nil {
			switch {
			case *rmsAtNode > rmsStrongThreshold:
				features.Dynamics = model.DynamicsStrong
			case *rmsAtNode < rmsSoftThreshold:
				features.Dynamics = model.DynamicsSoft
			}
		}
		if centroidAtNode != nil {
			switch {
			case *centroidAtNode > centroidTenseHz:
				features.Tension = model.TensionTense
			case *centroidAtNode < centroidRelaxedHz:
				features.Tension = model.TensionRelaxed
			}
		}
	}

	return features
}

func tempoFeel(childCount int, durationMeasures float64) model.TempoFeel {
	if durationMeasures <= 0 {
		return model.TempoModerate
	}
	ratio := float64(childCount) / durationMeasures
	switch {
	case ratio > fastChildRatio:
		return model.TempoFast
	case ratio < slowChildRatio:
		return model.TempoSlow
	default:
		return model.TempoModerate
	}
}

func tensionFeel(node *model.StructureNode) model.TensionFeel {
	if node.Features.Cadence != nil {
		switch node.Features.Cadence.Type {
		case model.CadencePAC:
			return model.TensionRelaxed
		case model.CadenceHalf, model.CadenceDeceptive:
			return model.TensionTense
		}
	}
	if node.Features.Closure != nil {
		if *node.Features.Closure == model.ClosureClosed {
			return model.TensionRelaxed
		}
		return model.TensionTense
	}
	return model.TensionNeutral
}
