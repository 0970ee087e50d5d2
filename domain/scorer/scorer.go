// Package scorer provides the scoring tree: leaf scorers that boil world
// observations down to a Score in 0.0..=1.0, and composite scorers that
// combine their children's Scores. Trees evaluate leaves before roots so a
// composite always reads fresh child values.
package scorer

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/thinker-go/domain/score"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Template instantiates a fresh scorer node subtree on demand. Like action
// templates, scorer templates are shareable and never mutated after
// construction.
type Template interface {
	Spawn(cmd *world.Commands, actor world.Handle) world.Handle
}

// Kind is the per-node payload driving a scorer node: it computes and
// writes the node's Score each tick. Composite kinds read their children's
// already-computed Scores.
type Kind interface {
	Evaluate(w *world.World, node world.Handle)
}

// Evaluate walks the subtree rooted at node post-order, children before
// parents, evaluating every scorer kind along the way. A scorer node
// without a kind payload means the tree was built incorrectly.
func Evaluate(w *world.World, node world.Handle) {
	for _, child := range w.Children(node) {
		Evaluate(w, child)
	}
	kind, ok := w.Data(node).(Kind)
	if !ok {
		panic(fmt.Sprintf("scorer: %v carries no scorer kind", node))
	}
	kind.Evaluate(w, node)
}

// spawner attaches a kind payload and the child subtrees; it is the shared
// Template implementation behind every built-in scorer.
type spawner struct {
	kind     Kind
	children []Template
}

// Spawn implements Template.
func (s spawner) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	h := cmd.SpawnScorer(actor)
	cmd.SetData(h, s.kind)
	for _, child := range s.children {
		cmd.AddChild(h, child.Spawn(cmd, actor))
	}
	return h
}

// Func is a leaf scorer reading world state through a plain function. The
// function must return a value in 0.0..=1.0 and should report absent world
// input as 0 rather than failing.
type Func func(actor world.Handle) float64

// Evaluate implements Kind.
func (f Func) Evaluate(w *world.World, node world.Handle) {
	w.Score(node).Set(f(w.Actor(node)))
}

// Spawn implements Template.
func (f Func) Spawn(cmd *world.Commands, actor world.Handle) world.Handle {
	return spawner{kind: f}.Spawn(cmd, actor)
}

type fixed struct {
	value float64
}

func (k fixed) Evaluate(w *world.World, node world.Handle) {
	w.Score(node).Set(k.value)
}

// Fixed creates a leaf scorer that always produces the same score. Good for
// combining with things creatively.
func Fixed(value float64) Template {
	return spawner{kind: fixed{value: value}}
}

// Idle creates a leaf scorer producing the smallest positive score: it only
// wins arbitration when everything else scores zero.
func Idle() Template {
	return spawner{kind: fixed{value: math.SmallestNonzeroFloat64}}
}

type allOrNothing struct {
	threshold float64
}

func (k allOrNothing) Evaluate(w *world.World, node world.Handle) {
	sum := 0.0
	for _, child := range w.Children(node) {
		v := w.Score(child).Get()
		if v < k.threshold {
			sum = 0.0
			break
		}
		sum += v
	}
	w.Score(node).Set(score.Clamp(sum, 0.0, 1.0))
}

// AllOrNothing creates a composite scorer yielding the sum of its children
// if every individual child scores at or above threshold, else 0.
func AllOrNothing(threshold float64, children ...Template) Template {
	return spawner{kind: allOrNothing{threshold: threshold}, children: children}
}

type sumOf struct {
	threshold float64
}

func (k sumOf) Evaluate(w *world.World, node world.Handle) {
	sum := 0.0
	for _, child := range w.Children(node) {
		sum += w.Score(child).Get()
	}
	if sum < k.threshold {
		sum = 0.0
	}
	w.Score(node).Set(score.Clamp(sum, 0.0, 1.0))
}

// SumOf creates a composite scorer yielding the sum of its children if the
// total reaches threshold, else 0.
func SumOf(threshold float64, children ...Template) Template {
	return spawner{kind: sumOf{threshold: threshold}, children: children}
}

type productOf struct {
	threshold   float64
	compensated bool
}

func (k productOf) Evaluate(w *world.World, node world.Handle) {
	product := 1.0
	children := w.Children(node)
	for _, child := range children {
		product *= w.Score(child).Get()
	}

	// Compensation counteracts the shrinking product as more scorers are
	// multiplied in; see the "Building a Better Centaur" GDC talk.
	if k.compensated && product < 1.0 && len(children) > 0 {
		modFactor := 1.0 - 1.0/float64(len(children))
		makeup := (1.0 - product) * modFactor
		product += makeup * product
	}

	if product < k.threshold {
		product = 0.0
	}
	w.Score(node).Set(score.Clamp(product, 0.0, 1.0))
}

// ProductOf creates a composite scorer yielding the product of its children,
// gated to 0 below threshold.
func ProductOf(threshold float64, children ...Template) Template {
	return spawner{kind: productOf{threshold: threshold}, children: children}
}

// CompensatedProductOf is ProductOf with a compensation factor applied for
// the number of children before the threshold gate.
func CompensatedProductOf(threshold float64, children ...Template) Template {
	return spawner{kind: productOf{threshold: threshold, compensated: true}, children: children}
}

type winning struct {
	threshold float64
}

func (k winning) Evaluate(w *world.World, node world.Handle) {
	best := 0.0
	for _, child := range w.Children(node) {
		if v := w.Score(child).Get(); v > best {
			best = v
		}
	}
	if best < k.threshold {
		best = 0.0
	}
	w.Score(node).Set(score.Clamp(best, 0.0, 1.0))
}

// Winning creates a composite scorer yielding its single highest child
// score if that score reaches threshold, else 0.
func Winning(threshold float64, children ...Template) Template {
	return spawner{kind: winning{threshold: threshold}, children: children}
}

type evaluating struct {
	evaluator score.Evaluator
}

func (k evaluating) Evaluate(w *world.World, node world.Handle) {
	children := w.Children(node)
	if len(children) != 1 {
		panic(fmt.Sprintf("scorer: evaluating scorer %v needs exactly one child, has %d", node, len(children)))
	}
	inner := w.Score(children[0]).Get()
	w.Score(node).Set(score.Clamp(k.evaluator.Evaluate(inner), 0.0, 1.0))
}

// Evaluating creates a composite scorer that reshapes its single child's
// score through an evaluator curve. Unlike the other composites it takes
// exactly one child.
func Evaluating(evaluator score.Evaluator, child Template) Template {
	return spawner{kind: evaluating{evaluator: evaluator}, children: []Template{child}}
}

// WeightedChild pairs a child template with the weight a measured scorer
// assigns to it. Order matters: weights are matched to children
// positionally.
type WeightedChild struct {
	Child  Template
	Weight float64
}

// Weight is a convenience constructor for WeightedChild.
func Weight(child Template, weight float64) WeightedChild {
	return WeightedChild{Child: child, Weight: weight}
}

type measured struct {
	threshold float64
	measure   score.Measure
	weights   []float64
}

func (k measured) Evaluate(w *world.World, node world.Handle) {
	children := w.Children(node)
	if len(children) != len(k.weights) {
		panic(fmt.Sprintf("scorer: measured scorer %v has %d children for %d weights", node, len(children), len(k.weights)))
	}
	inputs := make([]score.Weighted, len(children))
	for i, child := range children {
		inputs[i] = score.Weighted{Score: w.Score(child).Get(), Weight: k.weights[i]}
	}
	measuredScore := k.measure.Calculate(inputs)
	if measuredScore < k.threshold {
		w.Score(node).Set(0.0)
		return
	}
	w.Score(node).Set(score.Clamp(measuredScore, 0.0, 1.0))
}

// Measured creates a composite scorer that combines its children through an
// explicit measure, gated to 0 below threshold. A nil measure falls back to
// the default WeightedMeasure.
func Measured(threshold float64, measure score.Measure, children ...WeightedChild) Template {
	if measure == nil {
		measure = score.WeightedMeasure{}
	}
	templates := make([]Template, len(children))
	weights := make([]float64, len(children))
	for i, wc := range children {
		templates[i] = wc.Child
		weights[i] = wc.Weight
	}
	return spawner{
		kind:     measured{threshold: threshold, measure: measure, weights: weights},
		children: templates,
	}
}
