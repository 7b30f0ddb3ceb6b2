package correction

import "math"

// Tolerance decides when two concentrations are considered equal.
type Tolerance struct {
	Rel float64
	Abs float64
}

// DefaultTolerance matches a relative tolerance of 1e-9 with a 1e-9 absolute floor.
var DefaultTolerance = Tolerance{Rel: 1e-9, Abs: 1e-9}

func (t Tolerance) Close(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff <= math.Max(t.Rel*math.Max(math.Abs(a), math.Abs(b)), t.Abs)
}

// Zero reports whether v is within the absolute tolerance of zero.
func (t Tolerance) Zero(v float64) bool {
	return math.Abs(v) <= t.Abs
}

func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Mix returns the volume and concentrations after adding water, makeup solution and pure chemicals
// to a bath of volume v at concentrations c. Chemical amounts are in concentration units times
// litres and contribute amount*vf litres each.
func Mix(v float64, c []float64, water, makeup float64, mk, amounts, vf []float64) (float64, []float64) {
	final := v + water + makeup
	for i := range amounts {
		final += amounts[i] * vf[i]
	}

	conc := make([]float64, len(c))
	if final < DefaultTolerance.Abs {
		return 0, conc
	}
	for i := range c {
		amount := v * c[i]
		if mk != nil {
			amount += makeup * mk[i]
		}
		if amounts != nil {
			amount += amounts[i]
		}
		conc[i] = amount / final
	}
	return final, conc
}
