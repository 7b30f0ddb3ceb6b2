package correction

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ModuleType selects the calculation engine used for a module.
type ModuleType string

const (
	TwoComponent   ModuleType = "2-Component Corrector"
	ThreeComponent ModuleType = "3-Component Corrector"
)

// ModuleTypes returns the known module types and the internal chemical ids each one requires.
func ModuleTypes() map[ModuleType][]string {
	return map[ModuleType][]string{
		TwoComponent:   {"A", "B"},
		ThreeComponent: {"cond", "cu", "h2o2"},
	}
}

// ComponentIDs returns the internal chemical ids required by t, or nil for an unknown type.
func (t ModuleType) ComponentIDs() []string {
	return ModuleTypes()[t]
}

func (t ModuleType) Valid() bool {
	_, ok := ModuleTypes()[t]
	return ok
}

// Status is the outcome of a calculation.
type Status string

const (
	StatusPerfect              Status = "PERFECT"
	StatusOptimalDilution      Status = "OPTIMAL_DILUTION"
	StatusOptimalFortification Status = "OPTIMAL_FORTIFICATION"
	StatusBestEffort           Status = "BEST_POSSIBLE_CORRECTION"
	StatusRefill               Status = "REFILL"
	StatusImpossible           Status = "IMPOSSIBLE"
)

// Optimal reports whether the status describes an exact correction.
func (s Status) Optimal() bool {
	return s == StatusPerfect || s == StatusOptimalDilution || s == StatusOptimalFortification
}

// greenZoneFraction is the default half width of the green zone around a target.
const greenZoneFraction = 0.10

// MinTotalVolume is the smallest tank a module can be configured with, in litres.
const MinTotalVolume = 0.1

type Chemical struct {
	InternalID   string
	Name         string
	Unit         string
	Target       float64
	Makeup       *float64
	GreenZoneMin *float64
	GreenZoneMax *float64
	TickInterval *float64
}

// MakeupConcentration is the concentration of the chemical in the makeup solution.
// The makeup solution is assumed to be mixed at target unless configured otherwise.
func (c Chemical) MakeupConcentration() float64 {
	if c.Makeup != nil {
		return *c.Makeup
	}
	return c.Target
}

// GreenZone returns the acceptable concentration range for target. A bound that is not configured
// defaults to target ±10%.
func (c Chemical) GreenZone(target float64) (float64, float64) {
	low, high := target*(1-greenZoneFraction), target*(1+greenZoneFraction)
	if c.GreenZoneMin != nil {
		low = *c.GreenZoneMin
	}
	if c.GreenZoneMax != nil {
		high = *c.GreenZoneMax
	}
	return low, high
}

type Module struct {
	Name        string
	Type        ModuleType
	TotalVolume float64
	Chemicals   []Chemical
}

// Validate checks the module invariants: a known type, a total volume of at least MinTotalVolume,
// named chemicals with units and non-negative targets, and exactly the chemicals the type requires.
func (m Module) Validate() error {
	if m.Name == "" {
		return NewErrInvalidInput("module name is required")
	}
	ids := m.Type.ComponentIDs()
	if ids == nil {
		return NewErrInvalidInput("module %q: unknown module type %q", m.Name, m.Type)
	}
	if !finite(m.TotalVolume) || m.TotalVolume < MinTotalVolume {
		return NewErrInvalidInput("module %q: total volume must be at least %g L", m.Name, MinTotalVolume)
	}
	if len(m.Chemicals) != len(ids) {
		return NewErrInvalidInput("module %q: type %q requires %d chemicals, got %d", m.Name, m.Type, len(ids), len(m.Chemicals))
	}

	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, c := range m.Chemicals {
		if !allowed[c.InternalID] {
			return NewErrInvalidInput("module %q: chemical id %q is not valid for type %q", m.Name, c.InternalID, m.Type)
		}
		if seen[c.InternalID] {
			return NewErrInvalidInput("module %q: duplicate chemical id %q", m.Name, c.InternalID)
		}
		seen[c.InternalID] = true
		if strings.TrimSpace(c.Name) == "" {
			return NewErrInvalidInput("module %q: chemical %q needs a name", m.Name, c.InternalID)
		}
		if strings.TrimSpace(c.Unit) == "" {
			return NewErrInvalidInput("module %q: chemical %q needs a unit", m.Name, c.InternalID)
		}
		if !finite(c.Target) || c.Target < 0 {
			return NewErrInvalidInput("module %q: target of %q must be a non-negative number", m.Name, c.InternalID)
		}
		if c.Makeup != nil && (!finite(*c.Makeup) || *c.Makeup < 0) {
			return NewErrInvalidInput("module %q: makeup concentration of %q must be a non-negative number", m.Name, c.InternalID)
		}
		if err := c.validateGreenZone(); err != nil {
			return NewErrInvalidInput("module %q: %q %s", m.Name, c.InternalID, err)
		}
	}
	return nil
}

func (c Chemical) validateGreenZone() error {
	for _, b := range []*float64{c.GreenZoneMin, c.GreenZoneMax} {
		if b != nil && (!finite(*b) || *b < 0) {
			return errors.New("green zone bounds must be non-negative numbers")
		}
	}
	low, high := c.GreenZone(c.Target)
	if low > high {
		return fmt.Errorf("green zone minimum %g is above its maximum %g", low, high)
	}
	return nil
}

// Input is a measurement of the bath, as entered by the operator.
type Input struct {
	CurrentVolume float64 `json:"current_volume"`
	// Current concentration per chemical internal id.
	Current map[string]float64 `json:"current"`
	// Targets and Makeup override the configured values per chemical internal id.
	Targets map[string]float64 `json:"targets,omitempty"`
	Makeup  map[string]float64 `json:"makeup,omitempty"`
}

// ChemicalAddition is an amount of pure chemical to add. Amount is expressed in AmountUnit
// (the numerator of the concentration unit) and Volume is the liquid volume it adds, in litres.
type ChemicalAddition struct {
	InternalID string  `json:"internal_id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	AmountUnit string  `json:"amount_unit"`
	Volume     float64 `json:"volume"`
}

// ChemicalState describes one chemical before and after a correction.
type ChemicalState struct {
	InternalID   string  `json:"internal_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Target       float64 `json:"target"`
	Initial      float64 `json:"initial"`
	Final        float64 `json:"final"`
	Delta        float64 `json:"delta"`
	GreenZoneMin float64 `json:"green_zone_min"`
	GreenZoneMax float64 `json:"green_zone_max"`
	InGreenZone  bool    `json:"in_green_zone"`
}

type Result struct {
	Status      Status             `json:"status"`
	Message     string             `json:"message"`
	AddWater    float64            `json:"add_water"`
	AddMakeup   float64            `json:"add_makeup"`
	Additions   []ChemicalAddition `json:"additions,omitempty"`
	FinalVolume float64            `json:"final_volume"`
	Chemicals   []ChemicalState    `json:"chemicals"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s: water=%.2fL makeup=%.2fL final=%.2fL", r.Status, r.AddWater, r.AddMakeup, r.FinalVolume)
}

// SimulationInput describes a manual "what-if" addition.
type SimulationInput struct {
	CurrentVolume float64            `json:"current_volume"`
	Current       map[string]float64 `json:"current"`
	Makeup        map[string]float64 `json:"makeup,omitempty"`
	Water         float64            `json:"water"`
	MakeupVolume  float64            `json:"makeup_volume"`
	// Chemicals holds pure chemical amounts per internal id, in the chemical's amount unit.
	Chemicals map[string]float64 `json:"chemicals,omitempty"`
}

type SimulationResult struct {
	NewVolume float64         `json:"new_volume"`
	Overflow  bool            `json:"overflow"`
	Chemicals []ChemicalState `json:"chemicals"`
}

type RefillResult struct {
	Status      Status             `json:"status"`
	Message     string             `json:"message"`
	AddWater    float64            `json:"add_water"`
	Additions   []ChemicalAddition `json:"additions,omitempty"`
	FinalVolume float64            `json:"final_volume"`
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
