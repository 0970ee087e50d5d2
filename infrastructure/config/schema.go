package config

import (
	"fmt"
	"strings"
)

// Definition is the root of an externally-authored thinker definition.
type Definition struct {
	// Picker selects how choices are arbitrated.
	Picker PickerDef `yaml:"picker" json:"picker"`

	// Choices pairs scorer trees with the actions they gate. List order is
	// significant for first_to_score pickers and for tie-breaking.
	Choices []ChoiceDef `yaml:"choices" json:"choices"`

	// Otherwise is the fallback action when no choice qualifies.
	Otherwise *ActionDef `yaml:"otherwise,omitempty" json:"otherwise,omitempty"`
}

// PickerDef configures the arbitration strategy.
type PickerDef struct {
	// Type is the picker kind: "highest" or "first_to_score".
	Type string `yaml:"type" json:"type"`

	// Threshold is the minimum qualifying score.
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// ChoiceDef pairs a scorer tree with an action.
type ChoiceDef struct {
	When ScorerDef `yaml:"when" json:"when"`
	Then ActionDef `yaml:"then" json:"then"`
}

// ScorerDef describes one node of a scorer tree.
type ScorerDef struct {
	// Kind is the scorer kind: "fixed", "idle", "leaf", "all_or_nothing",
	// "sum", "product", "compensated_product", "winning", "evaluating",
	// or "measured".
	Kind string `yaml:"kind" json:"kind"`

	// Name resolves a "leaf" kind through the registry.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Value is the constant for "fixed".
	Value float64 `yaml:"value,omitempty" json:"value,omitempty"`

	// Threshold gates composite kinds.
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Evaluator transforms the child score for "evaluating".
	Evaluator *EvaluatorDef `yaml:"evaluator,omitempty" json:"evaluator,omitempty"`

	// Measure names the combination function for "measured": "sum",
	// "product", "chebyshev", or "weighted" (the default).
	Measure string `yaml:"measure,omitempty" json:"measure,omitempty"`

	// Weights are matched positionally to children for "measured".
	Weights []float64 `yaml:"weights,omitempty" json:"weights,omitempty"`

	// Children are the sub-scorers of composite kinds, in order.
	Children []ScorerDef `yaml:"children,omitempty" json:"children,omitempty"`
}

// EvaluatorDef describes a response curve. When all four calibration points
// are present the curve passes through (XA,YA) and (XB,YB); otherwise the
// default (0,0)..(1,1) window applies.
type EvaluatorDef struct {
	// Type is the curve kind: "linear", "power", or "sigmoid".
	Type string `yaml:"type" json:"type"`

	// Power is the exponent for "power" curves.
	Power float64 `yaml:"power,omitempty" json:"power,omitempty"`

	// K is the curvature for "sigmoid" curves.
	K float64 `yaml:"k,omitempty" json:"k,omitempty"`

	XA *float64 `yaml:"xa,omitempty" json:"xa,omitempty"`
	YA *float64 `yaml:"ya,omitempty" json:"ya,omitempty"`
	XB *float64 `yaml:"xb,omitempty" json:"xb,omitempty"`
	YB *float64 `yaml:"yb,omitempty" json:"yb,omitempty"`
}

// calibrated reports whether all four calibration points are present.
func (e *EvaluatorDef) calibrated() bool {
	return e.XA != nil && e.YA != nil && e.XB != nil && e.YB != nil
}

// partiallyCalibrated reports whether some but not all points are present.
func (e *EvaluatorDef) partiallyCalibrated() bool {
	set := 0
	for _, p := range []*float64{e.XA, e.YA, e.XB, e.YB} {
		if p != nil {
			set++
		}
	}
	return set > 0 && set < 4
}

// ActionDef describes an action template.
type ActionDef struct {
	// Kind is the action kind: "leaf", "noop", "join", "race", or "step".
	Kind string `yaml:"kind" json:"kind"`

	// Name resolves a "leaf" kind through the registry.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Steps are the children of composite kinds, in order.
	Steps []ActionDef `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// ValidationError represents a definition validation error.
type ValidationError struct {
	// Path is the path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates thinker definitions.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the definition and returns any errors.
func (v *Validator) Validate(def *Definition) ValidationErrors {
	v.errors = nil

	v.validatePicker(&def.Picker)
	if len(def.Choices) == 0 && def.Otherwise == nil {
		v.addError("choices", "at least one choice or an otherwise action is required")
	}
	for i := range def.Choices {
		path := fmt.Sprintf("choices[%d]", i)
		v.validateScorer(path+".when", &def.Choices[i].When)
		v.validateAction(path+".then", &def.Choices[i].Then)
	}
	if def.Otherwise != nil {
		v.validateAction("otherwise", def.Otherwise)
	}

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validatePicker(p *PickerDef) {
	switch p.Type {
	case "highest", "first_to_score":
	case "":
		v.addError("picker.type", "picker type is required")
	default:
		v.addError("picker.type", fmt.Sprintf("unknown picker type: %s", p.Type))
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		v.addError("picker.threshold", "threshold must be in [0, 1]")
	}
}

func (v *Validator) validateScorer(path string, s *ScorerDef) {
	switch s.Kind {
	case "fixed":
		if s.Value < 0 || s.Value > 1 {
			v.addError(path+".value", "value must be in [0, 1]")
		}
	case "idle":
	case "leaf":
		if s.Name == "" {
			v.addError(path+".name", "leaf scorer name is required")
		}
	case "all_or_nothing", "sum", "product", "compensated_product", "winning":
		if len(s.Children) == 0 {
			v.addError(path+".children", "composite scorer requires at least one child")
		}
	case "evaluating":
		if len(s.Children) != 1 {
			v.addError(path+".children", "evaluating scorer requires exactly one child")
		}
		if s.Evaluator == nil {
			v.addError(path+".evaluator", "evaluating scorer requires an evaluator")
		} else {
			v.validateEvaluator(path+".evaluator", s.Evaluator)
		}
	case "measured":
		if len(s.Children) == 0 {
			v.addError(path+".children", "measured scorer requires at least one child")
		}
		if len(s.Weights) != len(s.Children) {
			v.addError(path+".weights", "weights must match children positionally")
		}
		switch s.Measure {
		case "", "weighted", "sum", "product", "chebyshev":
		default:
			v.addError(path+".measure", fmt.Sprintf("unknown measure: %s", s.Measure))
		}
	case "":
		v.addError(path+".kind", "scorer kind is required")
	default:
		v.addError(path+".kind", fmt.Sprintf("unknown scorer kind: %s", s.Kind))
	}

	for i := range s.Children {
		v.validateScorer(fmt.Sprintf("%s.children[%d]", path, i), &s.Children[i])
	}
}

func (v *Validator) validateEvaluator(path string, e *EvaluatorDef) {
	switch e.Type {
	case "linear", "power", "sigmoid":
	case "":
		v.addError(path+".type", "evaluator type is required")
	default:
		v.addError(path+".type", fmt.Sprintf("unknown evaluator type: %s", e.Type))
	}
	if e.partiallyCalibrated() {
		v.addError(path, "calibration requires all of xa, ya, xb, yb")
	}
}

func (v *Validator) validateAction(path string, a *ActionDef) {
	switch a.Kind {
	case "leaf":
		if a.Name == "" {
			v.addError(path+".name", "leaf action name is required")
		}
	case "noop":
	case "join", "race":
		if len(a.Steps) == 0 {
			v.addError(path+".steps", "composite action requires at least one step")
		}
	case "step":
		// A step with no children completes immediately; allowed.
	case "":
		v.addError(path+".kind", "action kind is required")
	default:
		v.addError(path+".kind", fmt.Sprintf("unknown action kind: %s", a.Kind))
	}

	for i := range a.Steps {
		v.validateAction(fmt.Sprintf("%s.steps[%d]", path, i), &a.Steps[i])
	}
}
