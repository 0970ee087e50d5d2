package scorer

import (
	"math"
	"testing"

	"github.com/felixgeelhaar/thinker-go/domain/score"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// spawnTree builds the template into a fresh world and returns the root.
func spawnTree(t *testing.T, tmpl Template) (*world.World, world.Handle) {
	t.Helper()
	w := world.New()
	cmd := w.Commands()
	agent := w.SpawnAgent()
	root := tmpl.Spawn(cmd, agent)
	cmd.Flush()
	return w, root
}

// evaluateTree spawns the template, evaluates it once, and returns the
// root's score.
func evaluateTree(t *testing.T, tmpl Template) float64 {
	t.Helper()
	w, root := spawnTree(t, tmpl)
	Evaluate(w, root)
	return w.ScoreValue(root)
}

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestFunc_ReadsWorldThroughActor(t *testing.T) {
	w := world.New()
	cmd := w.Commands()
	agent := w.SpawnAgent()

	var seen world.Handle
	tmpl := Func(func(actor world.Handle) float64 {
		seen = actor
		return 0.4
	})
	root := tmpl.Spawn(cmd, agent)
	cmd.Flush()

	Evaluate(w, root)

	if seen != agent {
		t.Errorf("leaf saw actor %v, want %v", seen, agent)
	}
	if got := w.ScoreValue(root); got != 0.4 {
		t.Errorf("score = %v, want 0.4", got)
	}
	if w.Actor(root) != agent {
		t.Errorf("scorer node actor = %v, want %v", w.Actor(root), agent)
	}
}

func TestFixed(t *testing.T) {
	if got := evaluateTree(t, Fixed(0.65)); got != 0.65 {
		t.Errorf("Fixed(0.65) score = %v, want 0.65", got)
	}
}

func TestIdle_LosesToAnyPositiveScore(t *testing.T) {
	got := evaluateTree(t, Idle())
	if got <= 0.0 {
		t.Errorf("Idle score = %v, want positive", got)
	}
	if got >= 0.001 {
		t.Errorf("Idle score = %v, want smaller than any real scorer output", got)
	}
}

func TestAllOrNothing(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		children  []Template
		want      float64
	}{
		{"all above threshold sums", 0.3, []Template{Fixed(0.4), Fixed(0.5)}, 0.9},
		{"one below threshold zeroes", 0.3, []Template{Fixed(0.4), Fixed(0.2)}, 0.0},
		{"sum clamps to one", 0.3, []Template{Fixed(0.8), Fixed(0.8)}, 1.0},
		{"no children", 0.3, nil, 0.0},
		{"exactly at threshold counts", 0.3, []Template{Fixed(0.3)}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTree(t, AllOrNothing(tt.threshold, tt.children...))
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSumOf(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		children  []Template
		want      float64
	}{
		{"total reaches threshold", 0.5, []Template{Fixed(0.3), Fixed(0.3)}, 0.6},
		{"total below threshold zeroes", 0.5, []Template{Fixed(0.2), Fixed(0.2)}, 0.0},
		{"individual below threshold still counts", 0.5, []Template{Fixed(0.1), Fixed(0.45)}, 0.55},
		{"sum clamps to one", 0.5, []Template{Fixed(0.9), Fixed(0.9)}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTree(t, SumOf(tt.threshold, tt.children...))
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProductOf(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		children  []Template
		want      float64
	}{
		{"product above threshold", 0.1, []Template{Fixed(0.5), Fixed(0.5)}, 0.25},
		{"product below threshold zeroes", 0.3, []Template{Fixed(0.5), Fixed(0.5)}, 0.0},
		{"zero child collapses", 0.0, []Template{Fixed(0.0), Fixed(0.9)}, 0.0},
		{"no children is one", 0.0, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTree(t, ProductOf(tt.threshold, tt.children...))
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompensatedProductOf(t *testing.T) {
	// Two children at 0.5: raw product 0.25, mod factor 1 - 1/2 = 0.5,
	// makeup (1 - 0.25) * 0.5 = 0.375, result 0.25 + 0.375*0.25 = 0.34375.
	got := evaluateTree(t, CompensatedProductOf(0.0, Fixed(0.5), Fixed(0.5)))
	if !almostEqual(got, 0.34375) {
		t.Errorf("compensated score = %v, want 0.34375", got)
	}

	// Compensation keeps the result above the raw product but below the
	// smallest child.
	raw := evaluateTree(t, ProductOf(0.0, Fixed(0.5), Fixed(0.5), Fixed(0.5)))
	compensated := evaluateTree(t, CompensatedProductOf(0.0, Fixed(0.5), Fixed(0.5), Fixed(0.5)))
	if compensated <= raw {
		t.Errorf("compensated %v should exceed raw product %v", compensated, raw)
	}
	if compensated >= 0.5 {
		t.Errorf("compensated %v should stay below the smallest child 0.5", compensated)
	}
}

func TestWinning(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		children  []Template
		want      float64
	}{
		{"picks highest", 0.2, []Template{Fixed(0.4), Fixed(0.7), Fixed(0.3)}, 0.7},
		{"highest below threshold zeroes", 0.8, []Template{Fixed(0.4), Fixed(0.7)}, 0.0},
		{"no children", 0.0, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTree(t, Winning(tt.threshold, tt.children...))
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluating(t *testing.T) {
	got := evaluateTree(t, Evaluating(score.NewPower(2.0), Fixed(0.5)))
	if !almostEqual(got, 0.25) {
		t.Errorf("evaluating score = %v, want 0.25", got)
	}

	// Evaluator output is clamped into score range.
	doubling := score.EvaluatorFunc(func(v float64) float64 { return v * 3.0 })
	got = evaluateTree(t, Evaluating(doubling, Fixed(0.5)))
	if got != 1.0 {
		t.Errorf("clamped evaluating score = %v, want 1.0", got)
	}
}

func TestEvaluate_PostOrder(t *testing.T) {
	// The composite must read fresh child values, so children evaluate
	// first even when the leaf value changes between ticks.
	value := 0.2
	leaf := Func(func(world.Handle) float64 { return value })
	w, root := spawnTree(t, SumOf(0.0, leaf, leaf))

	Evaluate(w, root)
	if got := w.ScoreValue(root); !almostEqual(got, 0.4) {
		t.Fatalf("first evaluation = %v, want 0.4", got)
	}

	value = 0.45
	Evaluate(w, root)
	if got := w.ScoreValue(root); !almostEqual(got, 0.9) {
		t.Errorf("second evaluation = %v, want 0.9", got)
	}
}

func TestEvaluate_NestedComposites(t *testing.T) {
	tmpl := Winning(0.0,
		ProductOf(0.0, Fixed(0.9), Fixed(0.5)),
		SumOf(0.0, Fixed(0.3), Fixed(0.3)),
	)
	got := evaluateTree(t, tmpl)
	if !almostEqual(got, 0.6) {
		t.Errorf("nested score = %v, want 0.6", got)
	}
}

func TestMeasured(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		measure   score.Measure
		children  []WeightedChild
		want      float64
	}{
		{
			"weighted sum",
			0.0,
			score.WeightedSum{},
			[]WeightedChild{Weight(Fixed(0.5), 0.5), Weight(Fixed(0.8), 0.5)},
			0.65,
		},
		{
			"below threshold zeroes",
			0.9,
			score.WeightedSum{},
			[]WeightedChild{Weight(Fixed(0.5), 0.5), Weight(Fixed(0.8), 0.5)},
			0.0,
		},
		{
			"default measure preserves equal scores",
			0.0,
			nil,
			[]WeightedChild{Weight(Fixed(0.4), 1.0), Weight(Fixed(0.4), 2.0)},
			0.4,
		},
		{
			"chebyshev picks largest weighted",
			0.0,
			score.ChebyshevDistance{},
			[]WeightedChild{Weight(Fixed(0.9), 0.5), Weight(Fixed(0.4), 2.0)},
			0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTree(t, Measured(tt.threshold, tt.measure, tt.children...))
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluating_WrongChildCountPanics(t *testing.T) {
	// Build an evaluating node by hand with no children.
	w := world.New()
	cmd := w.Commands()
	agent := w.SpawnAgent()
	h := cmd.SpawnScorer(agent)
	cmd.SetData(h, evaluating{evaluator: score.DefaultLinear()})
	cmd.Flush()

	defer func() {
		if r := recover(); r == nil {
			t.Error("evaluating scorer without exactly one child did not panic")
		}
	}()
	Evaluate(w, h)
}

func TestEvaluate_MissingKindPanics(t *testing.T) {
	w := world.New()
	agent := w.SpawnAgent()
	h := w.SpawnScorer(agent)

	defer func() {
		if r := recover(); r == nil {
			t.Error("scorer node without a kind payload did not panic")
		}
	}()
	Evaluate(w, h)
}
