package correction

// Simulate shows the state of the bath after a manual addition. It does not optimize anything and
// accepts additions that overflow the tank, flagging them instead.
func (e *Engine) Simulate(m Module, in SimulationInput) (SimulationResult, error) {
	s, err := e.resolve(m, in.CurrentVolume, in.Current, nil, in.Makeup)
	if err != nil {
		return SimulationResult{}, err
	}
	if !finite(in.Water) || in.Water < 0 {
		return SimulationResult{}, NewErrInvalidInput("water to add must be a non-negative number")
	}
	if !finite(in.MakeupVolume) || in.MakeupVolume < 0 {
		return SimulationResult{}, NewErrInvalidInput("makeup to add must be a non-negative number")
	}
	if err := checkKeys(m, in.Chemicals); err != nil {
		return SimulationResult{}, err
	}

	amounts := make([]float64, len(m.Chemicals))
	for i, c := range m.Chemicals {
		v := in.Chemicals[c.InternalID]
		if !finite(v) || v < 0 {
			return SimulationResult{}, NewErrInvalidInput("amount of %q to add must be a non-negative number", c.InternalID)
		}
		amounts[i] = v
	}

	volume, final := Mix(s.Volume, s.Current, in.Water, in.MakeupVolume, s.Makeup, amounts, s.VolumeFactor)
	return SimulationResult{
		NewVolume: volume,
		Overflow:  volume > s.Capacity+s.Tolerance.Abs,
		Chemicals: chemicalStates(m, s.Target, s.Current, final),
	}, nil
}
