package correction

import (
	"fmt"
	"math"
)

// Refill computes the pure chemicals and water needed to fill the tank from its current state to
// its total volume at the target concentrations.
func (e *Engine) Refill(m Module, in Input) (RefillResult, error) {
	s, err := e.resolve(m, in.CurrentVolume, in.Current, in.Targets, nil)
	if err != nil {
		return RefillResult{}, err
	}

	amounts := make([]float64, len(m.Chemicals))
	var chemicalVolume float64
	for i, c := range m.Chemicals {
		goal := s.Capacity * s.Target[i]
		have := s.Volume * s.Current[i]
		if have > goal && !s.Tolerance.Close(have, goal) {
			return RefillResult{
				Status: StatusImpossible,
				Message: fmt.Sprintf("Correction impossible: current amount of %s (%.2f %s) is higher than the target for a full tank (%.2f %s).",
					c.Name, have, AmountUnit(c.Unit), goal, AmountUnit(c.Unit)),
				FinalVolume: s.Volume,
			}, nil
		}
		amounts[i] = math.Max(0, goal-have)
		chemicalVolume += amounts[i] * s.VolumeFactor[i]
	}

	water := s.Space() - chemicalVolume
	if water < 0 && !s.Tolerance.Zero(water) {
		return RefillResult{
			Status: StatusImpossible,
			Message: fmt.Sprintf("Calculation error: the chemicals to add (%.2f L) need more than the available space (%.2f L). Please check targets.",
				chemicalVolume, s.Space()),
			FinalVolume: s.Volume,
		}, nil
	}
	water = math.Max(0, water)

	return RefillResult{
		Status:      StatusRefill,
		Message:     "Refill the tank with the chemicals and water below.",
		AddWater:    water,
		Additions:   additions(m, amounts, s.VolumeFactor),
		FinalVolume: s.Volume + water + chemicalVolume,
	}, nil
}
