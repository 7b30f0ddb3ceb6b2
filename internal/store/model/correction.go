package model

import (
	"time"

	"github.com/google/uuid"
)

// CorrectionKind tells which calculation produced a history entry.
type CorrectionKind string

const (
	KindCorrection CorrectionKind = "correction"
	KindSimulation CorrectionKind = "simulation"
	KindRefill     CorrectionKind = "refill"
)

// Correction is one recorded calculation. Input and Result hold the JSON documents exchanged
// with the caller.
type Correction struct {
	ID         uuid.UUID      `gorm:"primaryKey;column:id;type:VARCHAR(36);"`
	ModuleName string         `gorm:"not null;type:VARCHAR(255);index:corrections_module_name_created_at_idx"`
	ModuleType string         `gorm:"not null;type:VARCHAR(64)"`
	Kind       CorrectionKind `gorm:"not null;type:VARCHAR(32)"`
	Status     string         `gorm:"not null;type:VARCHAR(64)"`
	Input      string         `gorm:"not null;type:TEXT"`
	Result     string         `gorm:"not null;type:TEXT"`
	CreatedAt  time.Time      `gorm:"not null;index:corrections_module_name_created_at_idx"`
}

type CorrectionList []Correction

// Statistics summarizes the store content for metrics.
type Statistics struct {
	ModulesByType       map[string]int
	CorrectionsByStatus map[string]int
}
