// Package score provides the scalar score value and the pure curve and
// combination functions used by the scoring tree.
package score

import "fmt"

// Score is a desirability value between 0.0 and 1.0 associated with a
// scorer node. Composite scorers combine the Scores of their children;
// pickers arbitrate over the Scores of a thinker's choices.
type Score struct {
	value float64
}

// Get returns the Score's current value.
func (s *Score) Get() float64 {
	return s.value
}

// Set sets the Score's value. Panics if value isn't within 0.0..=1.0;
// writing an out-of-range score through the checked mutator indicates the
// scoring tree was built incorrectly.
func (s *Score) Set(value float64) {
	if value < 0.0 || value > 1.0 {
		panic(fmt.Sprintf("score: value must be between 0.0 and 1.0, got %v", value))
	}
	s.value = value
}

// SetUnchecked sets the Score's value without range checking. Composite
// scorers that accumulate intermediate values outside 0.0..=1.0 use this
// before clamping; everything else should use Set.
func (s *Score) SetUnchecked(value float64) {
	s.value = value
}

// Clamp returns v limited to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
