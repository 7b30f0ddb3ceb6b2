package mappers

import (
	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/correction"
)

func ModuleFormApi(m v1alpha1.Module) correction.Module {
	chemicals := make([]correction.Chemical, 0, len(m.Chemicals))
	for _, c := range m.Chemicals {
		chemicals = append(chemicals, correction.Chemical{
			InternalID:   c.InternalId,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
		})
	}
	return correction.Module{
		Name:        m.Name,
		Type:        correction.ModuleType(m.ModuleType),
		TotalVolume: m.TotalVolume,
		Chemicals:   chemicals,
	}
}

func ModuleListFormApi(modules v1alpha1.ModuleList) []correction.Module {
	out := make([]correction.Module, 0, len(modules))
	for _, m := range modules {
		out = append(out, ModuleFormApi(m))
	}
	return out
}

func CorrectionFormApi(r v1alpha1.CorrectionRequest) correction.Input {
	return correction.Input{
		CurrentVolume: r.CurrentVolume,
		Current:       r.Current,
		Targets:       r.Targets,
		Makeup:        r.Makeup,
	}
}

func RefillFormApi(r v1alpha1.RefillRequest) correction.Input {
	return correction.Input{
		CurrentVolume: r.CurrentVolume,
		Current:       r.Current,
		Targets:       r.Targets,
	}
}

func SimulationFormApi(r v1alpha1.SimulationRequest) correction.SimulationInput {
	return correction.SimulationInput{
		CurrentVolume: r.CurrentVolume,
		Current:       r.Current,
		Makeup:        r.Makeup,
		Water:         r.Water,
		MakeupVolume:  r.MakeupVolume,
		Chemicals:     r.Chemicals,
	}
}
