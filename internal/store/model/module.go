package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/tankops/bath-planner/internal/correction"
)

type Module struct {
	Name        string  `gorm:"primaryKey;column:name;type:VARCHAR(255);"`
	Type        string  `gorm:"not null;type:VARCHAR(64)"`
	TotalVolume float64 `gorm:"not null"`
	// Position keeps the order modules were configured in.
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt *time.Time
	Chemicals []Chemical `gorm:"foreignKey:ModuleName;references:Name;constraint:OnDelete:CASCADE;"`
}

type Chemical struct {
	ModuleName   string  `gorm:"primaryKey;column:module_name;type:VARCHAR(255);"`
	InternalID   string  `gorm:"primaryKey;column:internal_id;type:VARCHAR(32);"`
	Name         string  `gorm:"not null;type:VARCHAR(255)"`
	Unit         string  `gorm:"not null;type:VARCHAR(32)"`
	Target       float64 `gorm:"not null"`
	Makeup       *float64
	GreenZoneMin *float64
	GreenZoneMax *float64
	TickInterval *float64
	Position     int `gorm:"not null;default:0"`
}

type ModuleList []Module

func (m Module) String() string {
	val, _ := json.Marshal(m)
	return string(val)
}

// NewModule converts a module definition into its stored form.
func NewModule(m correction.Module, position int) Module {
	chemicals := make([]Chemical, 0, len(m.Chemicals))
	for i, c := range m.Chemicals {
		chemicals = append(chemicals, Chemical{
			ModuleName:   m.Name,
			InternalID:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
			Position:     i,
		})
	}
	return Module{
		Name:        m.Name,
		Type:        string(m.Type),
		TotalVolume: m.TotalVolume,
		Position:    position,
		Chemicals:   chemicals,
	}
}

// ToDomain returns the module definition with chemicals in their configured order.
func (m Module) ToDomain() correction.Module {
	chemicals := make([]Chemical, len(m.Chemicals))
	copy(chemicals, m.Chemicals)
	sort.SliceStable(chemicals, func(i, j int) bool { return chemicals[i].Position < chemicals[j].Position })

	out := correction.Module{
		Name:        m.Name,
		Type:        correction.ModuleType(m.Type),
		TotalVolume: m.TotalVolume,
		Chemicals:   make([]correction.Chemical, 0, len(chemicals)),
	}
	for _, c := range chemicals {
		out.Chemicals = append(out.Chemicals, correction.Chemical{
			InternalID:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
		})
	}
	return out
}

func (ml ModuleList) ToDomain() []correction.Module {
	out := make([]correction.Module, 0, len(ml))
	for _, m := range ml {
		out = append(out, m.ToDomain())
	}
	return out
}
