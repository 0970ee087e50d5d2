package config

import (
	"fmt"

	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/picker"
	"github.com/felixgeelhaar/thinker-go/domain/score"
	"github.com/felixgeelhaar/thinker-go/domain/scorer"
	"github.com/felixgeelhaar/thinker-go/domain/sequence"
	"github.com/felixgeelhaar/thinker-go/domain/thinker"
)

// Registry resolves the leaf scorer and action names a definition refers to.
// Definitions describe structure; leaves are domain code the caller supplies.
type Registry struct {
	scorers map[string]scorer.Template
	actions map[string]action.Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scorers: make(map[string]scorer.Template),
		actions: make(map[string]action.Template),
	}
}

// RegisterScorer registers a leaf scorer template under a name. Later
// registrations replace earlier ones.
func (r *Registry) RegisterScorer(name string, tmpl scorer.Template) *Registry {
	r.scorers[name] = tmpl
	return r
}

// RegisterAction registers a leaf action template under a name.
func (r *Registry) RegisterAction(name string, tmpl action.Template) *Registry {
	r.actions[name] = tmpl
	return r
}

// Scorer looks up a registered scorer template.
func (r *Registry) Scorer(name string) (scorer.Template, bool) {
	tmpl, ok := r.scorers[name]
	return tmpl, ok
}

// Action looks up a registered action template.
func (r *Registry) Action(name string) (action.Template, bool) {
	tmpl, ok := r.actions[name]
	return tmpl, ok
}

// Builder builds a thinker from a definition.
type Builder struct {
	def      *Definition
	registry *Registry
}

// NewBuilder creates a builder for the given definition and registry.
func NewBuilder(def *Definition, registry *Registry) *Builder {
	return &Builder{def: def, registry: registry}
}

// Build builds a thinker builder from the definition.
func (b *Builder) Build() (*thinker.Builder, error) {
	p, err := b.buildPicker(&b.def.Picker)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	tb := thinker.New(p)

	for i, c := range b.def.Choices {
		when, err := b.buildScorer(&c.When)
		if err != nil {
			return nil, fmt.Errorf("%w: choices[%d].when: %w", ErrBuildFailed, i, err)
		}
		then, err := b.buildAction(&c.Then)
		if err != nil {
			return nil, fmt.Errorf("%w: choices[%d].then: %w", ErrBuildFailed, i, err)
		}
		tb.When(when, then)
	}

	if b.def.Otherwise != nil {
		otherwise, err := b.buildAction(b.def.Otherwise)
		if err != nil {
			return nil, fmt.Errorf("%w: otherwise: %w", ErrBuildFailed, err)
		}
		tb.Otherwise(otherwise)
	}

	return tb, nil
}

func (b *Builder) buildPicker(def *PickerDef) (picker.Picker, error) {
	switch def.Type {
	case "highest":
		return picker.NewHighest(def.Threshold), nil
	case "first_to_score":
		return picker.NewFirstToScore(def.Threshold), nil
	default:
		return nil, fmt.Errorf("%w: picker type %q", ErrUnknownKind, def.Type)
	}
}

func (b *Builder) buildScorer(def *ScorerDef) (scorer.Template, error) {
	switch def.Kind {
	case "fixed":
		return scorer.Fixed(def.Value), nil

	case "idle":
		return scorer.Idle(), nil

	case "leaf":
		tmpl, ok := b.registry.Scorer(def.Name)
		if !ok {
			return nil, fmt.Errorf("%w: scorer %q", ErrUnregisteredName, def.Name)
		}
		return tmpl, nil

	case "all_or_nothing":
		children, err := b.buildScorers(def.Children)
		if err != nil {
			return nil, err
		}
		return scorer.AllOrNothing(def.Threshold, children...), nil

	case "sum":
		children, err := b.buildScorers(def.Children)
		if err != nil {
			return nil, err
		}
		return scorer.SumOf(def.Threshold, children...), nil

	case "product":
		children, err := b.buildScorers(def.Children)
		if err != nil {
			return nil, err
		}
		return scorer.ProductOf(def.Threshold, children...), nil

	case "compensated_product":
		children, err := b.buildScorers(def.Children)
		if err != nil {
			return nil, err
		}
		return scorer.CompensatedProductOf(def.Threshold, children...), nil

	case "winning":
		children, err := b.buildScorers(def.Children)
		if err != nil {
			return nil, err
		}
		return scorer.Winning(def.Threshold, children...), nil

	case "evaluating":
		if len(def.Children) != 1 {
			return nil, fmt.Errorf("evaluating scorer requires exactly one child, got %d", len(def.Children))
		}
		if def.Evaluator == nil {
			return nil, fmt.Errorf("evaluating scorer requires an evaluator")
		}
		evaluator, err := b.buildEvaluator(def.Evaluator)
		if err != nil {
			return nil, err
		}
		child, err := b.buildScorer(&def.Children[0])
		if err != nil {
			return nil, err
		}
		return scorer.Evaluating(evaluator, child), nil

	case "measured":
		if len(def.Weights) != len(def.Children) {
			return nil, fmt.Errorf("measured scorer has %d weights for %d children", len(def.Weights), len(def.Children))
		}
		measure, err := b.buildMeasure(def.Measure)
		if err != nil {
			return nil, err
		}
		weighted := make([]scorer.WeightedChild, 0, len(def.Children))
		for i := range def.Children {
			child, err := b.buildScorer(&def.Children[i])
			if err != nil {
				return nil, err
			}
			weighted = append(weighted, scorer.Weight(child, def.Weights[i]))
		}
		return scorer.Measured(def.Threshold, measure, weighted...), nil

	default:
		return nil, fmt.Errorf("%w: scorer kind %q", ErrUnknownKind, def.Kind)
	}
}

func (b *Builder) buildScorers(defs []ScorerDef) ([]scorer.Template, error) {
	children := make([]scorer.Template, 0, len(defs))
	for i := range defs {
		child, err := b.buildScorer(&defs[i])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (b *Builder) buildEvaluator(def *EvaluatorDef) (score.Evaluator, error) {
	if def.partiallyCalibrated() {
		return nil, fmt.Errorf("evaluator calibration requires all of xa, ya, xb, yb")
	}

	switch def.Type {
	case "linear":
		if def.calibrated() {
			return score.NewLinear(*def.XA, *def.YA, *def.XB, *def.YB), nil
		}
		return score.DefaultLinear(), nil

	case "power":
		if def.calibrated() {
			return score.NewFullPower(def.Power, *def.XA, *def.YA, *def.XB, *def.YB), nil
		}
		return score.NewPower(def.Power), nil

	case "sigmoid":
		if def.calibrated() {
			return score.NewFullSigmoid(def.K, *def.XA, *def.YA, *def.XB, *def.YB), nil
		}
		return score.NewSigmoid(def.K), nil

	default:
		return nil, fmt.Errorf("%w: evaluator type %q", ErrUnknownKind, def.Type)
	}
}

func (b *Builder) buildMeasure(name string) (score.Measure, error) {
	switch name {
	case "", "weighted":
		return score.WeightedMeasure{}, nil
	case "sum":
		return score.WeightedSum{}, nil
	case "product":
		return score.WeightedProduct{}, nil
	case "chebyshev":
		return score.ChebyshevDistance{}, nil
	default:
		return nil, fmt.Errorf("%w: measure %q", ErrUnknownKind, name)
	}
}

func (b *Builder) buildAction(def *ActionDef) (action.Template, error) {
	switch def.Kind {
	case "leaf":
		tmpl, ok := b.registry.Action(def.Name)
		if !ok {
			return nil, fmt.Errorf("%w: action %q", ErrUnregisteredName, def.Name)
		}
		return tmpl, nil

	case "noop":
		return action.Noop(), nil

	case "join":
		steps, err := b.buildActions(def.Steps)
		if err != nil {
			return nil, err
		}
		return sequence.Join(steps...), nil

	case "race":
		steps, err := b.buildActions(def.Steps)
		if err != nil {
			return nil, err
		}
		return sequence.Race(steps...), nil

	case "step":
		steps, err := b.buildActions(def.Steps)
		if err != nil {
			return nil, err
		}
		return sequence.Step(steps...), nil

	default:
		return nil, fmt.Errorf("%w: action kind %q", ErrUnknownKind, def.Kind)
	}
}

func (b *Builder) buildActions(defs []ActionDef) ([]action.Template, error) {
	steps := make([]action.Template, 0, len(defs))
	for i := range defs {
		step, err := b.buildAction(&defs[i])
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
