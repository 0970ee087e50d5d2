package score

import "math"

// Evaluator reshapes a raw scorer output into a different curve. Evaluators
// are pure: given the same parameters and input they always produce the same
// output and have no side effects.
type Evaluator interface {
	Evaluate(value float64) float64
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(value float64) float64

// Evaluate calls f(value).
func (f EvaluatorFunc) Evaluate(value float64) float64 {
	return f(value)
}

// Linear is an Evaluator that interpolates affinely between two calibration
// points and clamps to the output range outside the input domain.
type Linear struct {
	xa, ya   float64
	yb       float64
	dyOverDx float64
}

// NewLinear creates a Linear evaluator through (xa, ya) and (xb, yb).
func NewLinear(xa, ya, xb, yb float64) Linear {
	return Linear{
		xa:       xa,
		ya:       ya,
		yb:       yb,
		dyOverDx: (yb - ya) / (xb - xa),
	}
}

// NewRangedLinear creates a Linear evaluator mapping [min, max] onto [0, 1].
func NewRangedLinear(min, max float64) Linear {
	return NewLinear(min, 0.0, max, 1.0)
}

// NewInverseLinear creates a Linear evaluator mapping 1 to 0 and 0 to 1.
func NewInverseLinear() Linear {
	return NewLinear(1.0, 0.0, 0.0, 1.0)
}

// DefaultLinear creates the identity Linear evaluator over [0, 1].
func DefaultLinear() Linear {
	return NewLinear(0.0, 0.0, 1.0, 1.0)
}

// Evaluate implements Evaluator.
func (l Linear) Evaluate(value float64) float64 {
	v := l.ya + l.dyOverDx*(value-l.xa)
	lo, hi := l.ya, l.yb
	if lo > hi {
		lo, hi = hi, lo
	}
	return Clamp(v, lo, hi)
}

// Power is an Evaluator with an exponent curve: the output grows according
// to its power parameter. The input is clamped to the calibration domain
// before evaluation, and the power itself is clamped to [0, 10000] to avoid
// numerical blowup.
type Power struct {
	xa, ya float64
	xb     float64
	power  float64
	dy     float64
}

// NewPower creates a Power evaluator with the given exponent over [0, 1].
func NewPower(power float64) Power {
	return NewFullPower(power, 0.0, 0.0, 1.0, 1.0)
}

// NewRangedPower creates a Power evaluator mapping [min, max] onto [0, 1].
func NewRangedPower(power, min, max float64) Power {
	return NewFullPower(power, min, 0.0, max, 1.0)
}

// NewFullPower creates a Power evaluator through (xa, ya) and (xb, yb).
func NewFullPower(power, xa, ya, xb, yb float64) Power {
	return Power{
		power: Clamp(power, 0.0, 10000.0),
		dy:    yb - ya,
		xa:    xa,
		ya:    ya,
		xb:    xb,
	}
}

// Evaluate implements Evaluator.
func (p Power) Evaluate(value float64) float64 {
	cx := Clamp(value, p.xa, p.xb)
	return p.dy*math.Pow((cx-p.xa)/(p.xb-p.xa), p.power) + p.ya
}

// Sigmoid is an Evaluator producing a smooth S-curve through two calibration
// points. The curvature k is clamped to (-0.99999, 0.99999); exactly ±1 is a
// singularity of the curve and must be excluded.
type Sigmoid struct {
	xa, xb float64
	ya, yb float64
	k      float64
}

// NewSigmoid creates a Sigmoid evaluator with curvature k over [0, 1].
func NewSigmoid(k float64) Sigmoid {
	return NewFullSigmoid(k, 0.0, 0.0, 1.0, 1.0)
}

// NewRangedSigmoid creates a Sigmoid evaluator mapping [min, max] onto [0, 1].
func NewRangedSigmoid(k, min, max float64) Sigmoid {
	return NewFullSigmoid(k, min, 0.0, max, 1.0)
}

// NewFullSigmoid creates a Sigmoid evaluator through (xa, ya) and (xb, yb).
func NewFullSigmoid(k, xa, ya, xb, yb float64) Sigmoid {
	return Sigmoid{
		xa: xa,
		xb: xb,
		ya: ya,
		yb: yb,
		k:  Clamp(k, -0.99999, 0.99999),
	}
}

// DefaultSigmoid creates a Sigmoid evaluator with curvature -0.5.
func DefaultSigmoid() Sigmoid {
	return NewSigmoid(-0.5)
}

// Evaluate implements Evaluator.
func (s Sigmoid) Evaluate(x float64) float64 {
	xMean := (s.xa + s.xb) / 2.0
	yMean := (s.ya + s.yb) / 2.0
	dyOverTwo := (s.yb - s.ya) / 2.0
	oneMinusK := 1.0 - s.k
	twoOverDx := math.Abs(2.0 / (s.xb - s.xa))

	cxMinusXMean := Clamp(x, s.xa, s.xb) - xMean
	numerator := twoOverDx * cxMinusXMean * oneMinusK
	denominator := s.k*(1.0-2.0*math.Abs(twoOverDx*cxMinusXMean)) + 1.0
	return Clamp(dyOverTwo*(numerator/denominator)+yMean, s.ya, s.yb)
}
