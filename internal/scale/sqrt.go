package scale

import "math"

// Sqrt is a power scale with exponent 0.5, so mapped areas stay proportional
// to the input when the output is used as a radius.
type Sqrt struct {
	inner *Linear
}

// NewSqrt creates a square-root scale over [d0, d1] -> [r0, r1]
func NewSqrt(d0, d1, r0, r1 float64) *Sqrt {
	return &Sqrt{inner: NewLinear(signedSqrt(d0), signedSqrt(d1), r0, r1)}
}

// Map projects a domain value into the range
func (s *Sqrt) Map(x float64) float64 {
	return s.inner.Map(signedSqrt(x))
}

// Invert projects a range value back into the domain
func (s *Sqrt) Invert(y float64) float64 {
	v := s.inner.Invert(y)
	if v < 0 {
		return -v * v
	}
	return v * v
}

func signedSqrt(x float64) float64 {
	if x < 0 {
		return -math.Sqrt(-x)
	}
	return math.Sqrt(x)
}
