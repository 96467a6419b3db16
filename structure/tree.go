package structure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RyanBlaney/scoreform-go/model"
)

// modelVersion tags every tooltip produced by this build of the rule
// cascade so a caller can tell which detector version produced a node.
const modelVersion = "rule-cascade-v1"

const (
	rootBaseConfidence    = 0.8
	sectionBaseConfidence = 0.7
	periodBaseConfidence  = 0.75
	phraseClosedBase      = 0.7
	phraseOpenBase        = 0.55
	subPhraseDefaultBase  = 0.6
	motiveDefaultBase     = 0.6

	editConfidencePenalty = 0.1
	editConfidenceFloor   = 0.5

	longPhraseMeasures = 4
	shortSpanMeasures  = 2
)

// treeBuildContext carries intermediate per-node note data the relabeling
// pass needs but model.StructureNode does not persist.
type treeBuildContext struct {
	tree        *model.Tree
	nextID      int
	noteIntervals map[model.NodeID][]int
	seenHashes    []materialHash
}

type materialHash struct {
	nodeID   model.NodeID
	material string
	prefix   []int
}

func (c *treeBuildContext) newID(kind string) model.NodeID {
	c.nextID++
	return model.NodeID(fmt.Sprintf("%s-%d", kind, c.nextID))
}

// BuildTree assembles the Section->Theme->Period->Phrase->SubPhrase->Motive
// hierarchy, propagates confidence post-order, derives visual style and
// tooltip data, and runs the material-relabelling pass (§4.9).
func BuildTree(form model.FormAnalysis, allMotives []model.Motive, allSubPhrases []model.SubPhrase, firstMeasure, lastMeasure int) *model.Tree {
	ctx := &treeBuildContext{
		tree:          model.NewTree(),
		noteIntervals: make(map[model.NodeID][]int),
	}

	rootID := ctx.newID("root")
	root := &model.StructureNode{
		ID:           rootID,
		Type:         model.NodeSection,
		StartMeasure: firstMeasure,
		EndMeasure:   lastMeasure,
		Material:     "root",
		Confidence:   rootBaseConfidence,
	}
	ctx.tree.Add(root)
	ctx.tree.Root = rootID

	for _, section := range form.Sections {
		ctx.buildSection(section, rootID, allMotives, allSubPhrases)
	}

	propagateConfidence(ctx.tree, rootID)
	relabelMaterials(ctx)
	applyVisualStyle(ctx.tree)
	attachTooltips(ctx.tree)

	return ctx.tree
}

func (c *treeBuildContext) buildSection(section model.Section, parent model.NodeID, allMotives []model.Motive, allSubPhrases []model.SubPhrase) {
	id := c.newID("theme")
	fn := section.Function
	node := &model.StructureNode{
		ID:           id,
		Type:         model.NodeTheme,
		StartMeasure: section.StartMeasure,
		EndMeasure:   section.EndMeasure,
		Material:     section.Name,
		Confidence:   sectionBaseConfidence,
		Parent:       &parent,
		Features:     model.Features{Function: &fn},
	}
	c.tree.Add(node)

	for _, period := range section.Periods {
		c.buildPeriod(period, id, allMotives, allSubPhrases)
	}
}

func (c *treeBuildContext) buildPeriod(period model.Period, parent model.NodeID, allMotives []model.Motive, allSubPhrases []model.SubPhrase) {
	id := c.newID("period")
	pType := period.Type
	node := &model.StructureNode{
		ID:           id,
		Type:         model.NodePeriod,
		StartMeasure: period.StartMeasure,
		EndMeasure:   period.EndMeasure,
		Material:     period.Material,
		Confidence:   periodBaseConfidence,
		Parent:       &parent,
		Features:     model.Features{PeriodType: &pType, Closure: closurePtr(period.Closure), Cadence: period.Cadence()},
	}
	c.tree.Add(node)

	for _, phrase := range period.Phrases {
		c.buildPhrase(phrase, id, allMotives, allSubPhrases)
	}
}

func (c *treeBuildContext) buildPhrase(phrase model.Phrase, parent model.NodeID, allMotives []model.Motive, allSubPhrases []model.SubPhrase) {
	id := c.newID("phrase")
	base := phraseOpenBase
	if phrase.Closure == model.ClosureClosed {
		base = phraseClosedBase
	}
	node := &model.StructureNode{
		ID:           id,
		Type:         model.NodePhrase,
		StartMeasure: phrase.StartMeasure,
		EndMeasure:   phrase.EndMeasure,
		Material:     phrase.Material,
		Confidence:   base,
		Parent:       &parent,
		Features:     model.Features{Cadence: phrase.Cadence, Closure: closurePtr(phrase.Closure)},
	}
	c.noteIntervals[id] = noteIntervals(phrase.Notes)
	c.tree.Add(node)

	if phrase.Length() >= longPhraseMeasures {
		mid := phrase.StartMeasure + phrase.Length()/2
		c.buildSyntheticSubPhrase(phrase.Material+"₁", phrase.StartMeasure, mid-1, id, allMotives, phrase.Notes)
		c.buildSyntheticSubPhrase(phrase.Material+"₂", mid, phrase.EndMeasure, id, allMotives, phrase.Notes)
		return
	}

	for _, sp := range allSubPhrases {
		if sp.StartMeasure >= phrase.StartMeasure && sp.EndMeasure <= phrase.EndMeasure {
			c.buildSubPhrase(sp, id, allMotives)
		}
	}
}

func (c *treeBuildContext) buildSyntheticSubPhrase(material string, start, end int, parent model.NodeID, allMotives []model.Motive, phraseNotes []model.Note) {
	id := c.newID("subphrase")
	node := &model.StructureNode{
		ID:           id,
		Type:         model.NodeSubPhrase,
		StartMeasure: start,
		EndMeasure:   end,
		Material:     material,
		Confidence:   subPhraseDefaultBase,
		Parent:       &parent,
	}
	var notes []model.Note
	for _, n := range phraseNotes {
		if n.Measure >= start && n.Measure <= end {
			notes = append(notes, n)
		}
	}
	c.noteIntervals[id] = noteIntervals(notes)
	c.tree.Add(node)
	c.buildMotives(start, end, id, allMotives)
}

func (c *treeBuildContext) buildSubPhrase(sp model.SubPhrase, parent model.NodeID, allMotives []model.Motive) {
	id := c.newID("subphrase")
	node := &model.StructureNode{
		ID:           id,
		Type:         model.NodeSubPhrase,
		StartMeasure: sp.StartMeasure,
		EndMeasure:   sp.EndMeasure,
		Material:     sp.Material,
		Confidence:   subPhraseDefaultBase,
		Parent:       &parent,
	}
	c.noteIntervals[id] = noteIntervals(sp.Notes)
	c.tree.Add(node)
	c.buildMotives(sp.StartMeasure, sp.EndMeasure, id, allMotives)
}

func (c *treeBuildContext) buildMotives(start, end int, parent model.NodeID, allMotives []model.Motive) {
	stride := 2
	if end-start+1 <= shortSpanMeasures {
		stride = 1
	}

	for cursor := start; cursor <= end; cursor += stride {
		windowEnd := cursor + stride - 1
		if windowEnd > end {
			windowEnd = end
		}

		var matched []model.Motive
		for _, m := range allMotives {
			if m.Measure >= cursor && m.Measure <= windowEnd {
				matched = append(matched, m)
			}
		}

		confidence := motiveDefaultBase
		var notes []model.Note
		material := "motive"
		if len(matched) > 0 {
			sum := 0.0
			for _, m := range matched {
				sum += m.Confidence
				notes = append(notes, m.Notes...)
			}
			confidence = sum / float64(len(matched))
			material = matched[0].Relationship.String()
		}

		id := c.newID("motive")
		node := &model.StructureNode{
			ID:           id,
			Type:         model.NodeMotive,
			StartMeasure: cursor,
			EndMeasure:   windowEnd,
			Material:     material,
			Confidence:   confidence,
			Parent:       &parent,
		}
		if len(matched) > 0 {
			rel := matched[0].Relationship
			node.Features = model.Features{Relationship: &rel}
		}
		c.noteIntervals[id] = noteIntervals(notes)
		c.tree.Add(node)
	}
}

func closurePtr(c model.Closure) *model.Closure { return &c }

func noteIntervals(notes []model.Note) []int {
	var out []int
	limit := 4
	for i := 1; i < len(notes) && len(out) < limit; i++ {
		if notes[i].IsRest() || notes[i-1].IsRest() {
			continue
		}
		out = append(out, notes[i].Pitch.MIDI()-notes[i-1].Pitch.MIDI())
	}
	return out
}

// propagateConfidence recomputes every node's confidence post-order:
// (detectConfidence + mean(children.confidence)) / 2, +0.1 if the node
// carries a cadence feature, clamped to [0,1].
func propagateConfidence(tree *model.Tree, id model.NodeID) float64 {
	node := tree.Get(id)
	if node == nil {
		return 0
	}

	detectConfidence := node.Confidence
	if len(node.Children) == 0 {
		node.Confidence = clamp01(withCadenceBonus(detectConfidence, node))
		return node.Confidence
	}

	sum := 0.0
	for _, childID := range node.Children {
		sum += propagateConfidence(tree, childID)
	}
	mean := sum / float64(len(node.Children))

	node.Confidence = clamp01(withCadenceBonus((detectConfidence+mean)/2, node))
	return node.Confidence
}

func withCadenceBonus(confidence float64, node *model.StructureNode) float64 {
	if node.Features.Cadence != nil {
		return confidence + 0.1
	}
	return confidence
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// applyVisualStyle derives every node's VisualStyle from its final
// confidence.
func applyVisualStyle(tree *model.Tree) {
	for _, node := range tree.Nodes {
		node.VisualStyle = model.StyleForConfidence(node.Confidence)
	}
}

// relabelMaterials appends a prime to a node's material when its leading
// interval shape matches an earlier-registered node's within tolerance
// (§4.9's material relabelling pass).
func relabelMaterials(ctx *treeBuildContext) {
	ids := make([]model.NodeID, 0, len(ctx.tree.Nodes))
	for id := range ctx.tree.Nodes {
		ids = append(ids, id)
	}
	// Stable, deterministic order: by ID since IDs are assigned
	// sequentially during the single-threaded build walk.
	sortNodeIDs(ids)

	for _, id := range ids {
		node := ctx.tree.Get(id)
		prefix := ctx.noteIntervals[id]
		if len(prefix) == 0 {
			continue
		}

		matchedAgainst := ""
		for _, seen := range ctx.seenHashes {
			if intervalHashMatches(seen.prefix, prefix) {
				matchedAgainst = seen.material
				break
			}
		}

		if matchedAgainst != "" {
			node.Material = matchedAgainst + "'"
		} else {
			ctx.seenHashes = append(ctx.seenHashes, materialHash{nodeID: id, material: node.Material, prefix: prefix})
		}
	}
}

func intervalHashMatches(a, b []int) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return false
	}
	matches := 0
	for i := 0; i < n; i++ {
		if abs(a[i]-b[i]) <= 2 {
			matches++
		}
	}
	return float64(matches)/float64(n) > 0.7
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sortNodeIDs(ids []model.NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && nodeSeq(ids[j-1]) > nodeSeq(ids[j]); j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// nodeSeq returns the build counter that nextID appended to id.
func nodeSeq(id model.NodeID) int {
	s := string(id)
	n, _ := strconv.Atoi(s[strings.LastIndexByte(s, '-')+1:])
	return n
}

// attachTooltips fills in each node's TooltipData: a deterministic
// used-features list by node type plus any feature-specific entries.
func attachTooltips(tree *model.Tree) {
	for _, node := range tree.Nodes {
		used := baseFeaturesFor(node.Type)
		details := make(map[string]string)

		if node.Features.Cadence != nil {
			used = append(used, "cadence")
			details["cadenceType"] = node.Features.Cadence.Type.String()
		}
		if node.Features.PeriodType != nil {
			used = append(used, "periodType")
			details["periodType"] = node.Features.PeriodType.String()
		}
		if node.Features.Closure != nil {
			used = append(used, "closure")
			details["closure"] = node.Features.Closure.String()
		}
		if node.Features.Relationship != nil {
			used = append(used, "relationship")
			details["relationship"] = node.Features.Relationship.String()
		}
		if node.Features.Function != nil {
			used = append(used, "function")
			details["function"] = string(*node.Features.Function)
		}

		node.TooltipData = model.TooltipData{
			UsedFeatures:     used,
			SimilarityScores: map[string]float64{},
			DetectionDetails: details,
			ModelVersion:     modelVersion,
		}
	}
}

func baseFeaturesFor(t model.StructureType) []string {
	switch t {
	case model.NodeMotive:
		return []string{"intervalPattern", "rhythmPattern", "contour"}
	case model.NodeSubPhrase:
		return []string{"material", "notes"}
	case model.NodePhrase:
		return []string{"material", "closure"}
	case model.NodePeriod:
		return []string{"periodType", "proportion"}
	case model.NodeTheme:
		return []string{"function"}
	default:
		return []string{"form"}
	}
}

// UpdateBoundaries edits a node's measure range. Idempotent, and strictly
// decrements confidence (floored) rather than re-running detection.
func UpdateBoundaries(tree *model.Tree, id model.NodeID, start, end int) {
	node := tree.Get(id)
	if node == nil {
		return
	}
	if node.StartMeasure == start && node.EndMeasure == end {
		return
	}
	node.StartMeasure = start
	node.EndMeasure = end
	penalizeEdit(node)
}

// UpdateType edits a node's structural type.
func UpdateType(tree *model.Tree, id model.NodeID, t model.StructureType) {
	node := tree.Get(id)
	if node == nil || node.Type == t {
		return
	}
	node.Type = t
	penalizeEdit(node)
}

// UpdateMaterial edits a node's material label. Idempotent: setting the
// same label twice only penalizes confidence once.
func UpdateMaterial(tree *model.Tree, id model.NodeID, material string) {
	node := tree.Get(id)
	if node == nil || node.Material == material {
		return
	}
	node.Material = material
	penalizeEdit(node)
}

func penalizeEdit(node *model.StructureNode) {
	node.Confidence -= editConfidencePenalty
	if node.Confidence < editConfidenceFloor {
		node.Confidence = editConfidenceFloor
	}
	node.VisualStyle = model.StyleForConfidence(node.Confidence)
}
