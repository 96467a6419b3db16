// Package visual generates candidate VisualScheme renderings for a
// StructureNode from its type, duration, material and emotional features
// (spec.md §4.13). It is the rule-based half of the recommender; the
// preference half lives in package preference.
package visual

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/scoreform-go/config"
	"github.com/RyanBlaney/scoreform-go/model"
)

var warmPalette = []string{"#E8573F", "#F2A341", "#D94F70", "#C2452B", "#F4D35E"}
var coolPalette = []string{"#3B82C4", "#2FA39A", "#4A5FB5", "#6FB7D6", "#355E8C"}

// shapePool is the structural-default shape set per node type (§4.13).
var shapePool = map[model.StructureType][]model.ShapeType{
	model.NodeMotive:    {model.ShapeCircle, model.ShapeDiamond, model.ShapeStar4},
	model.NodeSubPhrase: {model.ShapeSquare, model.ShapeTriangle, model.ShapeHexagon},
	model.NodePhrase:    {model.ShapeCircle, model.ShapeSquare, model.ShapeStar5},
	model.NodePeriod:    {model.ShapeHexagon, model.ShapeOctagon, model.ShapeStar6},
	model.NodeTheme:     {model.ShapeStar5, model.ShapeSun, model.ShapeBurst},
	model.NodeSection:   {model.ShapeOctagon, model.ShapeSpiral, model.ShapeWave},
}

var sizeByDynamics = map[model.DynamicsFeel]model.ShapeSize{
	model.DynamicsStrong:   model.SizeLarge,
	model.DynamicsModerate: model.SizeMedium,
	model.DynamicsSoft:     model.SizeSmall,
}

var animationDefaultByType = map[model.StructureType]model.AnimationType{
	model.NodeMotive:    model.AnimationNone,
	model.NodeSubPhrase: model.AnimationNone,
	model.NodePhrase:    model.AnimationPulse,
	model.NodePeriod:    model.AnimationPulse,
	model.NodeTheme:     model.AnimationGlow,
	model.NodeSection:   model.AnimationDrift,
}

// Generator produces VisualScheme candidates for structure nodes.
type Generator struct {
	cfg config.VisualConfig
}

// NewGenerator builds a Generator. A zero-value cfg falls back to
// config.DefaultVisualConfig.
func NewGenerator(cfg config.VisualConfig) *Generator {
	if cfg.SchemeCount == 0 {
		cfg = config.DefaultVisualConfig()
	}
	return &Generator{cfg: cfg}
}

// GenerateSchemes produces count candidate schemes for node, given its
// emotion features and the sibling/related nodes used for the
// material-relationship colour override (§4.13).
func (g *Generator) GenerateSchemes(node *model.StructureNode, emotion model.EmotionFeatures, related []*model.StructureNode, count int) []model.VisualScheme {
	if count <= 0 {
		count = g.cfg.SchemeCount
	}

	duration := durationMeasures(node)
	shapeCount := shapeCountFor(duration)
	arrangement := arrangementFor(duration)
	pool := shapePool[node.Type]
	if len(pool) == 0 {
		pool = shapePool[model.NodePhrase]
	}

	schemes := make([]model.VisualScheme, 0, count)
	for i := 0; i < count; i++ {
		scheme := model.VisualScheme{
			ID:                   fmt.Sprintf("%s-v%d", node.ID, i),
			Shapes:               shapesFor(pool, shapeCount, i, emotion),
			Animation:            animationFor(node.Type, emotion, i),
			Arrangement:          arrangement,
			EmotionFeatures:      &emotion,
			RecommendationSource: model.SourceRuleBased,
		}
		scheme.Colors = colorsFor(node, emotion, shapeCount, i)
		applyMaterialRelationship(&scheme, node, related)
		schemes = append(schemes, scheme)
	}

	schemes = dedupSchemes(schemes)
	return topUp(schemes, node, emotion, pool, shapeCount, arrangement, count)
}

func durationMeasures(node *model.StructureNode) int {
	d := node.EndMeasure - node.StartMeasure + 1
	if d < 1 {
		return 1
	}
	return d
}

func shapeCountFor(duration int) int {
	switch {
	case duration <= 2:
		return 1
	case duration <= 4:
		return 2
	case duration <= 8:
		return 3
	default:
		return 4
	}
}

func arrangementFor(duration int) model.Arrangement {
	switch {
	case duration <= 2:
		return model.ArrangementSingle
	case duration <= 8:
		return model.ArrangementSequence
	default:
		return model.ArrangementGrid
	}
}

func shapesFor(pool []model.ShapeType, shapeCount, variant int, emotion model.EmotionFeatures) []model.Shape {
	size := sizeByDynamics[emotion.Dynamics]
	if size == "" {
		size = model.SizeMedium
	}
	shapes := make([]model.Shape, shapeCount)
	for k := 0; k < shapeCount; k++ {
		idx := (variant + k) % len(pool)
		shapes[k] = model.Shape{Type: pool[idx], Size: size}
	}
	return shapes
}

func animationFor(nodeType model.StructureType, emotion model.EmotionFeatures, variant int) model.AnimationType {
	var base model.AnimationType
	switch {
	case emotion.Tempo == model.TempoFast:
		base = model.AnimationSpin
	case emotion.Tempo == model.TempoSlow:
		base = model.AnimationDrift
	case emotion.Tension == model.TensionTense:
		base = model.AnimationPulse
	case emotion.Tension == model.TensionRelaxed:
		base = model.AnimationGlow
	default:
		base = animationDefaultByType[nodeType]
	}
	if variant%2 == 1 && base == model.AnimationNone {
		return model.AnimationGlow
	}
	return base
}

func colorsFor(node *model.StructureNode, emotion model.EmotionFeatures, shapeCount, variant int) []string {
	n := shapeCount
	if n > 3 {
		n = 3
	}
	if n < 1 {
		n = 1
	}

	if variant == 0 && tensionProvidesColors(emotion) {
		return cyclicPick(paletteForTension(emotion.Tension), n)
	}

	palette := coolPalette
	if isClosed(node) || hasPAC(node) {
		palette = warmPalette
	}
	switch emotion.Tempo {
	case model.TempoFast:
		palette = warmPalette
	case model.TempoSlow:
		palette = coolPalette
	case model.TempoModerate:
		palette = mixedPalette()
	}
	return cyclicPick(palette, n)
}

func tensionProvidesColors(emotion model.EmotionFeatures) bool {
	return emotion.Tension == model.TensionTense || emotion.Tension == model.TensionRelaxed
}

func paletteForTension(t model.TensionFeel) []string {
	if t == model.TensionTense {
		return warmPalette
	}
	return coolPalette
}

func mixedPalette() []string {
	mixed := make([]string, 0, len(warmPalette)+len(coolPalette))
	for i := 0; i < len(warmPalette) || i < len(coolPalette); i++ {
		if i < len(warmPalette) {
			mixed = append(mixed, warmPalette[i])
		}
		if i < len(coolPalette) {
			mixed = append(mixed, coolPalette[i])
		}
	}
	return mixed
}

func cyclicPick(palette []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func isClosed(node *model.StructureNode) bool {
	return node.Features.Closure != nil && *node.Features.Closure == model.ClosureClosed
}

func hasPAC(node *model.StructureNode) bool {
	return node.Features.Cadence != nil && node.Features.Cadence.Type == model.CadencePAC
}

// applyMaterialRelationship overrides relationship/colours based on how
// node's material compares to its related siblings (§4.13).
func applyMaterialRelationship(scheme *model.VisualScheme, node *model.StructureNode, related []*model.StructureNode) {
	switch {
	case strings.HasSuffix(node.Material, "'"):
		scheme.Relationship = model.RelRecapitulated
		base := baseLetter(node.Material)
		if base != 0 {
			scheme.Colors = prependColor(scheme.Colors, warmPalette[int(base)%len(warmPalette)])
		}
	case sharesLetter(node.Material, related):
		scheme.Relationship = model.RelSimilar
		scheme.Colors = remapPalette(scheme.Colors, warmPalette)
	case len(related) > 0:
		scheme.Relationship = model.RelContrasting
		scheme.Colors = remapPalette(scheme.Colors, coolPalette)
	}
}

func baseLetter(material string) rune {
	trimmed := strings.TrimRight(material, "'")
	for _, r := range trimmed {
		return r
	}
	return 0
}

func sharesLetter(material string, related []*model.StructureNode) bool {
	letter := baseLetter(material)
	if letter == 0 {
		return false
	}
	for _, r := range related {
		if baseLetter(r.Material) == letter {
			return true
		}
	}
	return false
}

func remapPalette(colors []string, palette []string) []string {
	out := make([]string, len(colors))
	for i := range colors {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func prependColor(colors []string, c string) []string {
	if len(colors) == 0 {
		return []string{c}
	}
	out := make([]string, len(colors))
	copy(out, colors)
	out[0] = c
	return out
}

// dedupSchemes drops schemes whose (shape types, colours, animation) key
// duplicates an earlier scheme's.
func dedupSchemes(schemes []model.VisualScheme) []model.VisualScheme {
	seen := make(map[string]bool)
	out := make([]model.VisualScheme, 0, len(schemes))
	for _, s := range schemes {
		key := schemeKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func schemeKey(s model.VisualScheme) string {
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

// topUp fills the result back up to max(3, count) schemes by generating
// further variants, respecting the same emotion tables, once dedup has
// dropped entries.
func topUp(schemes []model.VisualScheme, node *model.StructureNode, emotion model.EmotionFeatures, pool []model.ShapeType, shapeCount int, arrangement model.Arrangement, count int) []model.VisualScheme {
	target := count
	if target < 3 {
		target = 3
	}
	variant := len(schemes)
	for len(schemes) < target {
		scheme := model.VisualScheme{
			ID:                   fmt.Sprintf("%s-v%d", node.ID, variant),
			Shapes:               shapesFor(pool, shapeCount, variant, emotion),
			Animation:            animationFor(node.Type, emotion, variant),
			Arrangement:          arrangement,
			EmotionFeatures:      &emotion,
			RecommendationSource: model.SourceRuleBased,
		}
		scheme.Colors = colorsFor(node, emotion, shapeCount, variant)
		key := schemeKey(scheme)
		variant++
		duplicate := false
		for _, existing := range schemes {
			if schemeKey(existing) == key {
				duplicate = true
				break
			}
		}
		if duplicate {
			if variant > len(pool)*4+target {
				break
			}
			continue
		}
		schemes = append(schemes, scheme)
	}
	return schemes
}
