package correction

import (
	"fmt"
	"math"
)

// Corrector computes the fortification recipe for one module type. It is only called when at
// least one component is below its target and the bath is not empty.
type Corrector interface {
	// Type returns the module type this corrector serves.
	Type() ModuleType
	// Name returns a human-readable name, used in messages.
	Name() string
	// Fortify returns the additions for s.
	Fortify(s State) Recipe
}

// State is a resolved measurement: vectors are ordered like the module's chemicals.
type State struct {
	Volume       float64
	Capacity     float64
	Current      []float64
	Target       []float64
	Makeup       []float64
	VolumeFactor []float64
	Tolerance    Tolerance
}

// Space is the free volume left in the tank.
func (s State) Space() float64 {
	return math.Max(0, s.Capacity-s.Volume)
}

// Recipe is what a Corrector proposes. Chemicals, when set, holds pure chemical amounts aligned
// with the module's chemicals.
type Recipe struct {
	Status    Status
	Message   string
	Water     float64
	Makeup    float64
	Chemicals []float64
}

// Engine orchestrates correctors and owns the decision hierarchy shared by all module types.
type Engine struct {
	correctors map[ModuleType]Corrector
	tolerance  Tolerance
}

type Option func(*Engine)

// WithTolerance sets the tolerance used to compare concentrations. Non-positive values keep the default.
func WithTolerance(rel, abs float64) Option {
	return func(e *Engine) {
		if rel > 0 {
			e.tolerance.Rel = rel
		}
		if abs > 0 {
			e.tolerance.Abs = abs
		}
	}
}

// NewEngine creates an Engine with no correctors registered.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		correctors: make(map[ModuleType]Corrector),
		tolerance:  DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a Corrector. Register panics if a corrector for the same module type is already
// registered.
func (e *Engine) Register(c Corrector) {
	if existing, ok := e.correctors[c.Type()]; ok {
		panic(fmt.Sprintf("correction: module type %q already served by %q", c.Type(), existing.Name()))
	}
	e.correctors[c.Type()] = c
}

func (e *Engine) Tolerance() Tolerance {
	return e.tolerance
}

// Correct recommends the additions that bring the bath described by in closest to its targets.
// Errors are returned only for invalid input.
func (e *Engine) Correct(m Module, in Input) (Result, error) {
	s, err := e.resolve(m, in.CurrentVolume, in.Current, in.Targets, in.Makeup)
	if err != nil {
		return Result{}, err
	}

	ideal := true
	anyBelow := false
	for i := range s.Current {
		if s.Tolerance.Close(s.Current[i], s.Target[i]) {
			continue
		}
		ideal = false
		if s.Current[i] < s.Target[i] {
			anyBelow = true
		}
	}

	var recipe Recipe
	switch {
	case ideal:
		recipe = Recipe{Status: StatusPerfect, Message: "Concentrations are already at the target values."}
	case s.Tolerance.Zero(s.Volume):
		recipe = Recipe{Status: StatusBestEffort, Message: "The tank is empty; use the refill recipe to fill it."}
	case !anyBelow:
		recipe = Dilute(s)
	default:
		corrector, ok := e.correctors[m.Type]
		if !ok {
			return Result{}, NewErrUnsupportedModuleType(m.Type)
		}
		recipe = corrector.Fortify(s)
	}

	return e.finalize(m, s, recipe), nil
}

// Dilute computes the optimal water-only dilution for a bath with no component below target.
// The current vector is projected onto the target vector; its scale factor k = c·t / |t|² is the
// dilution ratio that brings the bath closest to the target recipe.
func Dilute(s State) Recipe {
	tt := Dot(s.Target, s.Target)
	if s.Tolerance.Zero(tt) {
		return Recipe{Status: StatusBestEffort, Message: "All targets are zero; no dilution can be computed."}
	}

	k := Dot(s.Current, s.Target) / tt
	water := math.Max(0, s.Volume*(k-1))
	space := s.Space()
	if water > space+s.Tolerance.Abs {
		return Recipe{
			Status:  StatusBestEffort,
			Water:   space,
			Message: fmt.Sprintf("Dilution requires %.2f L of water but only %.2f L of space is available.", water, space),
		}
	}
	return Recipe{
		Status:  StatusOptimalDilution,
		Water:   water,
		Message: "Dilute with water to bring the bath back to its target ratio.",
	}
}

func (e *Engine) resolve(m Module, volume float64, current, targets, makeup map[string]float64) (State, error) {
	if err := m.Validate(); err != nil {
		return State{}, err
	}
	if !finite(volume) || volume < 0 {
		return State{}, NewErrInvalidInput("current volume must be a non-negative number")
	}
	if volume > m.TotalVolume+e.tolerance.Abs {
		return State{}, NewErrInvalidInput("current volume %.2f L exceeds the module volume %.2f L", volume, m.TotalVolume)
	}
	for _, overrides := range []map[string]float64{current, targets, makeup} {
		if err := checkKeys(m, overrides); err != nil {
			return State{}, err
		}
	}

	n := len(m.Chemicals)
	s := State{
		Volume:       volume,
		Capacity:     m.TotalVolume,
		Current:      make([]float64, n),
		Target:       make([]float64, n),
		Makeup:       make([]float64, n),
		VolumeFactor: make([]float64, n),
		Tolerance:    e.tolerance,
	}
	for i, c := range m.Chemicals {
		v, ok := current[c.InternalID]
		if !ok {
			return State{}, NewErrInvalidInput("missing current concentration for %q", c.InternalID)
		}
		if !finite(v) || v < 0 {
			return State{}, NewErrInvalidInput("current concentration of %q must be a non-negative number", c.InternalID)
		}
		s.Current[i] = v

		s.Target[i] = c.Target
		if v, ok := targets[c.InternalID]; ok {
			if !finite(v) || v < 0 {
				return State{}, NewErrInvalidInput("target of %q must be a non-negative number", c.InternalID)
			}
			s.Target[i] = v
		}

		s.Makeup[i] = c.MakeupConcentration()
		if v, ok := makeup[c.InternalID]; ok {
			if !finite(v) || v < 0 {
				return State{}, NewErrInvalidInput("makeup concentration of %q must be a non-negative number", c.InternalID)
			}
			s.Makeup[i] = v
		}

		s.VolumeFactor[i] = VolumeFactor(c.Unit)
	}
	return s, nil
}

func checkKeys(m Module, values map[string]float64) error {
	for id := range values {
		found := false
		for _, c := range m.Chemicals {
			if c.InternalID == id {
				found = true
				break
			}
		}
		if !found {
			return NewErrInvalidInput("module %q has no chemical %q", m.Name, id)
		}
	}
	return nil
}

func (e *Engine) finalize(m Module, s State, r Recipe) Result {
	finalVolume, final := Mix(s.Volume, s.Current, r.Water, r.Makeup, s.Makeup, r.Chemicals, s.VolumeFactor)

	res := Result{
		Status:      r.Status,
		Message:     r.Message,
		AddWater:    r.Water,
		AddMakeup:   r.Makeup,
		FinalVolume: finalVolume,
		Chemicals:   chemicalStates(m, s.Target, s.Current, final),
	}
	if r.Status == StatusPerfect {
		res.FinalVolume = s.Volume
		res.Chemicals = chemicalStates(m, s.Target, s.Current, s.Current)
	}
	if r.Chemicals != nil {
		res.Additions = additions(m, r.Chemicals, s.VolumeFactor)
	}
	return res
}

func additions(m Module, amounts, vf []float64) []ChemicalAddition {
	out := make([]ChemicalAddition, 0, len(amounts))
	for i, c := range m.Chemicals {
		out = append(out, ChemicalAddition{
			InternalID: c.InternalID,
			Name:       c.Name,
			Amount:     amounts[i],
			AmountUnit: AmountUnit(c.Unit),
			Volume:     amounts[i] * vf[i],
		})
	}
	return out
}

func chemicalStates(m Module, target, initial, final []float64) []ChemicalState {
	out := make([]ChemicalState, 0, len(m.Chemicals))
	for i, c := range m.Chemicals {
		low, high := c.GreenZone(target[i])
		out = append(out, ChemicalState{
			InternalID:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       target[i],
			Initial:      initial[i],
			Final:        final[i],
			Delta:        final[i] - initial[i],
			GreenZoneMin: low,
			GreenZoneMax: high,
			InGreenZone:  final[i] >= low && final[i] <= high,
		})
	}
	return out
}
