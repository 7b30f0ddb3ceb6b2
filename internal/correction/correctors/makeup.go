package correctors

import (
	"fmt"
	"math"

	"github.com/tankops/bath-planner/internal/correction"
)

// Compile-time assertion that MakeupBlend implements the Corrector interface.
var _ correction.Corrector = (*MakeupBlend)(nil)

// MakeupBlend corrects a 2-component bath by adding makeup solution and water.
type MakeupBlend struct{}

func NewMakeupBlend() *MakeupBlend {
	return &MakeupBlend{}
}

func (c *MakeupBlend) Type() correction.ModuleType {
	return correction.TwoComponent
}

func (c *MakeupBlend) Name() string {
	return "Makeup Blend"
}

// Fortify first tries the exact blend: the makeup volume m and water volume w solving
//
//	V*c_i + m*mk_i = t_i * (V + m + w)   for both components.
//
// When that blend needs a negative addition or does not fit in the tank, it falls back to the
// makeup volume that brings the bath closest to the target along the mixing line.
func (c *MakeupBlend) Fortify(s correction.State) correction.Recipe {
	if makeup, water, ok := exactBlend(s); ok {
		return correction.Recipe{
			Status:  correction.StatusOptimalFortification,
			Makeup:  makeup,
			Water:   water,
			Message: "Add the makeup solution and water below to reach the target exactly.",
		}
	}
	return bestBlend(s)
}

func exactBlend(s correction.State) (float64, float64, bool) {
	if len(s.Current) != 2 {
		return 0, 0, false
	}
	tol := s.Tolerance

	a11, a12, b1 := s.Makeup[0]-s.Target[0], -s.Target[0], s.Volume*(s.Target[0]-s.Current[0])
	a21, a22, b2 := s.Makeup[1]-s.Target[1], -s.Target[1], s.Volume*(s.Target[1]-s.Current[1])

	det := a11*a22 - a12*a21
	if tol.Zero(det) {
		return 0, 0, false
	}
	makeup := (b1*a22 - a12*b2) / det
	water := (a11*b2 - b1*a21) / det

	if makeup < -tol.Abs || water < -tol.Abs {
		return 0, 0, false
	}
	makeup, water = math.Max(0, makeup), math.Max(0, water)
	if makeup+water > s.Space()+tol.Abs {
		return 0, 0, false
	}
	return makeup, water, true
}

func bestBlend(s correction.State) correction.Recipe {
	tol := s.Tolerance
	space := s.Space()

	direction := correction.Sub(s.Makeup, s.Current)
	dd := correction.Dot(direction, direction)
	if tol.Zero(dd) {
		return correction.Recipe{
			Status:  correction.StatusBestEffort,
			Message: "The makeup solution matches the bath; adding it cannot change the concentrations.",
		}
	}

	// fraction of makeup in the final mix that lands closest to the target
	x := correction.Dot(correction.Sub(s.Target, s.Current), direction) / dd

	var makeup float64
	switch {
	case x <= tol.Abs:
		return correction.Recipe{
			Status:  correction.StatusBestEffort,
			Message: "Adding makeup solution would move the bath away from its targets; no addition recommended.",
		}
	case x >= 1-tol.Abs:
		makeup = space
	default:
		makeup = math.Min(s.Volume*x/(1-x), space)
	}

	return correction.Recipe{
		Status:  correction.StatusBestEffort,
		Makeup:  makeup,
		Message: fmt.Sprintf("A perfect correction is not possible; adding %.2f L of makeup gives the closest achievable state.", makeup),
	}
}
