package score

import "math"

// Weighted pairs a child score with the weight assigned to it by a measured
// composite scorer.
type Weighted struct {
	Score  float64
	Weight float64
}

// Measure combines a list of weighted child scores into a single value.
// Measures are pure and never fail: inputs are pre-clamped by the scoring
// tree and degenerate cases (such as zero total weight) fall back to 0.
type Measure interface {
	Calculate(inputs []Weighted) float64
}

// WeightedSum is a Measure that adds every score multiplied by its weight.
type WeightedSum struct{}

// Calculate implements Measure.
func (WeightedSum) Calculate(inputs []Weighted) float64 {
	sum := 0.0
	for _, in := range inputs {
		sum += in.Score * in.Weight
	}
	return sum
}

// WeightedProduct is a Measure that multiplies every weighted score together.
type WeightedProduct struct{}

// Calculate implements Measure.
func (WeightedProduct) Calculate(inputs []Weighted) float64 {
	product := 1.0
	for _, in := range inputs {
		product *= in.Score * in.Weight
	}
	return product
}

// ChebyshevDistance is a Measure that returns the largest weighted score,
// the one-dimensional Chebyshev distance.
type ChebyshevDistance struct{}

// Calculate implements Measure.
func (ChebyshevDistance) Calculate(inputs []Weighted) float64 {
	best := 0.0
	for _, in := range inputs {
		if v := in.Score * in.Weight; v > best {
			best = v
		}
	}
	return best
}

// WeightedMeasure is the default Measure: a normalized quadratic blend that
// uses the weights to provide an intuitive curve. Returns 0 when the total
// weight is 0.
type WeightedMeasure struct{}

// Calculate implements Measure.
func (WeightedMeasure) Calculate(inputs []Weighted) float64 {
	wsum := 0.0
	for _, in := range inputs {
		wsum += in.Weight
	}
	if wsum == 0.0 {
		return 0.0
	}
	sum := 0.0
	for _, in := range inputs {
		sum += in.Weight / wsum * math.Pow(in.Score, 2.0)
	}
	return math.Pow(sum, 0.5)
}
