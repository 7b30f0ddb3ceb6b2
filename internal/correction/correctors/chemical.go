package correctors

import (
	"fmt"
	"math"

	"github.com/tankops/bath-planner/internal/correction"
)

// Compile-time assertion that PureChemical implements the Corrector interface.
var _ correction.Corrector = (*PureChemical)(nil)

// PureChemical corrects a bath by adding each pure chemical and, when a component is too high,
// water. Liquid chemicals add volume according to their unit; solids are assumed not to.
type PureChemical struct{}

func NewPureChemical() *PureChemical {
	return &PureChemical{}
}

func (c *PureChemical) Type() correction.ModuleType {
	return correction.ThreeComponent
}

func (c *PureChemical) Name() string {
	return "Pure Chemical"
}

// Fortify finds the smallest final volume V' at which every component can reach its target with
// non-negative additions:
//
//	V' >= V * c_i / t_i                    (no component needs to be removed)
//	V' >= V * (1 - Σc_i*vf_i) / (1 - Σt_i*vf_i)   (liquid chemicals fit without negative water)
//
// and adds a_i = t_i*V' - c_i*V of each chemical plus the water that makes up the remaining volume.
func (c *PureChemical) Fortify(s correction.State) correction.Recipe {
	tol := s.Tolerance

	ratio := 1.0
	for i := range s.Current {
		if s.Target[i] > 0 {
			ratio = math.Max(ratio, s.Current[i]/s.Target[i])
		} else if !tol.Zero(s.Current[i]) {
			return bestEffort(s, fmt.Sprintf("Component %d has a zero target but is present in the bath; it cannot be removed by additions.", i+1))
		}
	}

	sumCurrent := correction.Dot(s.Current, s.VolumeFactor)
	sumTarget := correction.Dot(s.Target, s.VolumeFactor)
	if sumTarget >= 1 {
		return bestEffort(s, "The target concentrations exceed what pure chemicals can provide.")
	}

	final := math.Max(s.Volume*ratio, s.Volume*(1-sumCurrent)/(1-sumTarget))
	if final-s.Volume > s.Space()+tol.Abs {
		return bestEffort(s, fmt.Sprintf("The correction needs %.2f L but only %.2f L of space is available.", final-s.Volume, s.Space()))
	}

	amounts, water := recipeAt(s, final)
	msg := "Add the pure chemicals below to bring every component to its target."
	if water > tol.Abs {
		msg = "Add the pure chemicals and water below to bring every component to its target."
	}
	return correction.Recipe{
		Status:    correction.StatusOptimalFortification,
		Water:     water,
		Chemicals: amounts,
		Message:   msg,
	}
}

// recipeAt returns the chemical amounts and water that bring the bath to its targets at the
// given final volume.
func recipeAt(s correction.State, final float64) ([]float64, float64) {
	amounts := make([]float64, len(s.Current))
	water := final - s.Volume
	for i := range s.Current {
		amounts[i] = math.Max(0, s.Target[i]*final-s.Current[i]*s.Volume)
		water -= amounts[i] * s.VolumeFactor[i]
	}
	return amounts, math.Max(0, water)
}

// bestEffort fills the tank to capacity, fortifying every low component to its target there. If
// the chemicals alone do not fit, all additions are scaled down to the free volume.
func bestEffort(s correction.State, reason string) correction.Recipe {
	capacity := s.Volume + s.Space()
	amounts, _ := recipeAt(s, capacity)

	liquid := correction.Dot(amounts, s.VolumeFactor)
	water := s.Space() - liquid
	if water < 0 {
		scale := s.Space() / liquid
		for i := range amounts {
			amounts[i] *= scale
		}
		water = 0
	}

	return correction.Recipe{
		Status:    correction.StatusBestEffort,
		Water:     water,
		Chemicals: amounts,
		Message:   "A perfect correction is not possible. " + reason,
	}
}
