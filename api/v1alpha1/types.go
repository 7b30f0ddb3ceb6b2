// Package v1alpha1 holds the JSON documents exchanged over the bath planner API.
package v1alpha1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Chemical struct {
	InternalId   string   `json:"internal_id" validate:"required,max=32"`
	Name         string   `json:"name" validate:"required,max=100"`
	Unit         string   `json:"unit" validate:"required,chemical_unit"`
	Target       float64  `json:"target" validate:"gte=0"`
	Makeup       *float64 `json:"makeup,omitempty" validate:"omitempty,gte=0"`
	GreenZoneMin *float64 `json:"green_zone_min,omitempty" validate:"omitempty,gte=0"`
	GreenZoneMax *float64 `json:"green_zone_max,omitempty" validate:"omitempty,gte=0"`
	TickInterval *float64 `json:"tick_interval,omitempty" validate:"omitempty,gt=0"`
}

type Module struct {
	Name        string     `json:"name" validate:"required,module_name,max=100"`
	ModuleType  string     `json:"module_type" validate:"required,module_type"`
	TotalVolume float64    `json:"total_volume" validate:"gte=0.1"`
	Chemicals   []Chemical `json:"chemicals" validate:"required,min=1,dive"`
}

type ModuleList []Module

type ModuleTypeInfo struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
}

type SetupStatus struct {
	Configured  bool             `json:"configured"`
	Problems    []string         `json:"problems"`
	Modules     ModuleList       `json:"modules"`
	ModuleTypes []ModuleTypeInfo `json:"module_types"`
	Template    ModuleList       `json:"template"`
}

type SetupUpdate struct {
	Modules ModuleList `json:"modules" validate:"required,min=1,unique=Name,dive"`
}

type CorrectionRequest struct {
	CurrentVolume float64            `json:"current_volume" validate:"gte=0"`
	Current       map[string]float64 `json:"current" validate:"required,dive,gte=0"`
	Targets       map[string]float64 `json:"targets,omitempty" validate:"omitempty,dive,gte=0"`
	Makeup        map[string]float64 `json:"makeup,omitempty" validate:"omitempty,dive,gte=0"`
}

type RefillRequest struct {
	CurrentVolume float64            `json:"current_volume" validate:"gte=0"`
	Current       map[string]float64 `json:"current" validate:"required,dive,gte=0"`
	Targets       map[string]float64 `json:"targets,omitempty" validate:"omitempty,dive,gte=0"`
}

type SimulationRequest struct {
	CurrentVolume float64            `json:"current_volume" validate:"gte=0"`
	Current       map[string]float64 `json:"current" validate:"required,dive,gte=0"`
	Makeup        map[string]float64 `json:"makeup,omitempty" validate:"omitempty,dive,gte=0"`
	Water         float64            `json:"water" validate:"gte=0"`
	MakeupVolume  float64            `json:"makeup_volume" validate:"gte=0"`
	Chemicals     map[string]float64 `json:"chemicals,omitempty" validate:"omitempty,dive,gte=0"`
}

type ChemicalAddition struct {
	InternalId string  `json:"internal_id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	AmountUnit string  `json:"amount_unit"`
	Volume     float64 `json:"volume"`
}

type ChemicalState struct {
	InternalId   string  `json:"internal_id"`
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

type CorrectionResult struct {
	Status      string             `json:"status"`
	Message     string             `json:"message"`
	AddWater    float64            `json:"add_water"`
	AddMakeup   float64            `json:"add_makeup"`
	Additions   []ChemicalAddition `json:"additions,omitempty"`
	FinalVolume float64            `json:"final_volume"`
	Chemicals   []ChemicalState    `json:"chemicals"`
}

type SimulationResult struct {
	NewVolume float64         `json:"new_volume"`
	Overflow  bool            `json:"overflow"`
	Chemicals []ChemicalState `json:"chemicals"`
}

type RefillResult struct {
	Status      string             `json:"status"`
	Message     string             `json:"message"`
	AddWater    float64            `json:"add_water"`
	Additions   []ChemicalAddition `json:"additions,omitempty"`
	FinalVolume float64            `json:"final_volume"`
}

type HistoryEntry struct {
	Id        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
}

type HistoryList []HistoryEntry

type Info struct {
	GitCommit   string `json:"gitCommit"`
	VersionName string `json:"versionName"`
}

type Health struct {
	Status string `json:"status"`
}

type Error struct {
	Message   string `json:"message"`
	RequestId string `json:"requestId,omitempty"`
}
