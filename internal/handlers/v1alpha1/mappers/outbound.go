package mappers

import (
	"encoding/json"
	"sort"

	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/internal/store/model"
)

func ModuleToApi(m correction.Module) v1alpha1.Module {
	chemicals := make([]v1alpha1.Chemical, 0, len(m.Chemicals))
	for _, c := range m.Chemicals {
		chemicals = append(chemicals, v1alpha1.Chemical{
			InternalId:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
		})
	}
	return v1alpha1.Module{
		Name:        m.Name,
		ModuleType:  string(m.Type),
		TotalVolume: m.TotalVolume,
		Chemicals:   chemicals,
	}
}

func ModuleListToApi(modules []correction.Module) v1alpha1.ModuleList {
	out := make(v1alpha1.ModuleList, 0, len(modules))
	for _, m := range modules {
		out = append(out, ModuleToApi(m))
	}
	return out
}

// ModuleTypesToApi lists the module types sorted by name.
func ModuleTypesToApi(types map[correction.ModuleType][]string) []v1alpha1.ModuleTypeInfo {
	out := make([]v1alpha1.ModuleTypeInfo, 0, len(types))
	for t, ids := range types {
		out = append(out, v1alpha1.ModuleTypeInfo{Name: string(t), Components: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func SetupStatusToApi(s *service.SetupStatus) v1alpha1.SetupStatus {
	problems := s.Problems
	if problems == nil {
		problems = []string{}
	}
	return v1alpha1.SetupStatus{
		Configured:  s.Configured,
		Problems:    problems,
		Modules:     ModuleListToApi(s.Modules),
		ModuleTypes: ModuleTypesToApi(s.ModuleTypes),
		Template:    ModuleListToApi(s.Template),
	}
}

func additionsToApi(additions []correction.ChemicalAddition) []v1alpha1.ChemicalAddition {
	if len(additions) == 0 {
		return nil
	}
	out := make([]v1alpha1.ChemicalAddition, 0, len(additions))
	for _, a := range additions {
		out = append(out, v1alpha1.ChemicalAddition{
			InternalId: a.InternalID,
			Name:       a.Name,
			Amount:     a.Amount,
			AmountUnit: a.AmountUnit,
			Volume:     a.Volume,
		})
	}
	return out
}

func chemicalStatesToApi(states []correction.ChemicalState) []v1alpha1.ChemicalState {
	out := make([]v1alpha1.ChemicalState, 0, len(states))
	for _, c := range states {
		out = append(out, v1alpha1.ChemicalState{
			InternalId:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Initial:      c.Initial,
			Final:        c.Final,
			Delta:        c.Delta,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			InGreenZone:  c.InGreenZone,
		})
	}
	return out
}

func CorrectionResultToApi(r *correction.Result) v1alpha1.CorrectionResult {
	return v1alpha1.CorrectionResult{
		Status:      string(r.Status),
		Message:     r.Message,
		AddWater:    r.AddWater,
		AddMakeup:   r.AddMakeup,
		Additions:   additionsToApi(r.Additions),
		FinalVolume: r.FinalVolume,
		Chemicals:   chemicalStatesToApi(r.Chemicals),
	}
}

func SimulationResultToApi(r *correction.SimulationResult) v1alpha1.SimulationResult {
	return v1alpha1.SimulationResult{
		NewVolume: r.NewVolume,
		Overflow:  r.Overflow,
		Chemicals: chemicalStatesToApi(r.Chemicals),
	}
}

func RefillResultToApi(r *correction.RefillResult) v1alpha1.RefillResult {
	return v1alpha1.RefillResult{
		Status:      string(r.Status),
		Message:     r.Message,
		AddWater:    r.AddWater,
		Additions:   additionsToApi(r.Additions),
		FinalVolume: r.FinalVolume,
	}
}

func HistoryToApi(history model.CorrectionList) v1alpha1.HistoryList {
	out := make(v1alpha1.HistoryList, 0, len(history))
	for _, h := range history {
		out = append(out, v1alpha1.HistoryEntry{
			Id:        h.ID,
			Kind:      string(h.Kind),
			Status:    h.Status,
			CreatedAt: h.CreatedAt,
			Input:     rawJSON(h.Input),
			Result:    rawJSON(h.Result),
		})
	}
	return out
}

// rawJSON embeds a stored document as is. Corrupt documents are replaced by null.
func rawJSON(doc string) json.RawMessage {
	if !json.Valid([]byte(doc)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(doc)
}
