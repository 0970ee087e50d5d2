// Package picker provides the arbitration policies that turn a list of
// scored choices into at most one winning action template.
package picker

import (
	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// Choice is an immutable pairing of a scorer subtree root and the action
// instance to run when the choice wins.
type Choice struct {
	Scorer world.Handle
	Action action.Instance
}

// Picker arbitrates over the ordered choice list and returns the winning
// action instance, or false when nothing qualifies. Implementations must
// preserve their documented tie-break rules exactly: behavior that depends
// on arbitrary iteration order is a correctness bug.
type Picker interface {
	Pick(choices []Choice, scores Scores) (action.Instance, bool)
}

// Scores exposes the current score of a scorer node. *world.World
// satisfies it.
type Scores interface {
	ScoreValue(h world.Handle) float64
}

// FirstToScore picks the first choice, in list order, whose score is at or
// above Threshold. Ties are impossible by construction: the scan is
// deterministic left-to-right and the earliest qualifier wins.
type FirstToScore struct {
	Threshold float64
}

// NewFirstToScore creates a FirstToScore picker.
func NewFirstToScore(threshold float64) FirstToScore {
	return FirstToScore{Threshold: threshold}
}

// Pick implements Picker.
func (p FirstToScore) Pick(choices []Choice, scores Scores) (action.Instance, bool) {
	for _, choice := range choices {
		if scores.ScoreValue(choice.Scorer) >= p.Threshold {
			return choice.Action, true
		}
	}
	return action.Instance{}, false
}

// Highest picks the choice with the strictly greatest score above Threshold
// (and above zero). The fold compares with strict > against a running
// maximum seeded at the threshold, so the first of equal maxima wins.
type Highest struct {
	Threshold float64
}

// NewHighest creates a Highest picker.
func NewHighest(threshold float64) Highest {
	return Highest{Threshold: threshold}
}

// Pick implements Picker.
func (p Highest) Pick(choices []Choice, scores Scores) (action.Instance, bool) {
	maxScore := p.Threshold
	if maxScore < 0.0 {
		maxScore = 0.0
	}
	winner := action.Instance{}
	found := false
	for _, choice := range choices {
		v := scores.ScoreValue(choice.Scorer)
		if v > maxScore {
			maxScore = v
			winner = choice.Action
			found = true
		}
	}
	return winner, found
}
