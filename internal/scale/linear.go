// Package scale maps data values onto pixel ranges and back.
//
// The behavior follows the conventions of the d3 scale family: a degenerate
// domain maps to the middle of the range, Nice widens the domain to round
// tick steps, and Ticks produces evenly spaced round values.
package scale

import (
	"math"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear is a continuous scale y = r0 + (x-d0)/(d1-d0) * (r1-r0)
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear creates a linear scale over [d0, d1] -> [r0, r1]
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the current domain
func (s *Linear) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the current range
func (s *Linear) Range() (float64, float64) { return s.r0, s.r1 }

// Map projects a domain value into the range
func (s *Linear) Map(x float64) float64 {
	return s.r0 + normalize(s.d0, s.d1, x)*(s.r1-s.r0)
}

// Invert projects a range value back into the domain
func (s *Linear) Invert(y float64) float64 {
	return s.d0 + normalize(s.r0, s.r1, y)*(s.d1-s.d0)
}

// Nice extends the domain outward to multiples of the tick step
func (s *Linear) Nice(count int) *Linear {
	s.d0, s.d1 = niceDomain(s.d0, s.d1, count)
	return s
}

// Ticks returns roughly count round values inside the domain
func (s *Linear) Ticks(count int) []float64 {
	return Ticks(s.d0, s.d1, count)
}

func normalize(a, b, x float64) float64 {
	if b == a {
		return 0.5
	}
	return (x - a) / (b - a)
}

// TickIncrement returns the tick step for [start, stop]. Negative results
// encode fractional steps as -1/step so repeated multiplication stays exact.
func TickIncrement(start, stop float64, count int) float64 {
	if count <= 0 {
		count = 10
	}
	step := (stop - start) / float64(count)
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Ticks returns round values in [start, stop] spaced by TickIncrement
func Ticks(start, stop float64, count int) []float64 {
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	inc := TickIncrement(start, stop, count)
	if inc == 0 {
		return nil
	}

	var ticks []float64
	if inc > 0 {
		i0, i1 := math.Ceil(start/inc), math.Floor(stop/inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i*inc)
		}
	} else {
		i0, i1 := math.Ceil(start*-inc), math.Floor(stop*-inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i / -inc)
		}
	}

	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

func niceDomain(d0, d1 float64, count int) (float64, float64) {
	reverse := d1 < d0
	start, stop := d0, d1
	if reverse {
		start, stop = d1, d0
	}

	prestep := math.NaN()
	for i := 0; i < 10; i++ {
		step := TickIncrement(start, stop, count)
		if step == prestep || step == 0 {
			break
		}
		if step > 0 {
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		} else {
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		}
		prestep = step
	}

	if reverse {
		return stop, start
	}
	return start, stop
}
