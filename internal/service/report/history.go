// Package report renders correction history as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/xuri/excelize/v2"
)

const (
	HistorySheet = "History"
	ModuleSheet  = "Module"
)

// Row is one recorded calculation.
type Row struct {
	Time           time.Time
	Kind           string
	Status         string
	CurrentVolume  float64
	Water          float64
	Makeup         float64
	ChemicalVolume float64
	FinalVolume    float64
	Message        string
}

var historyHeaders = []string{
	"Time", "Kind", "Status", "Current Volume (L)", "Water (L)", "Makeup (L)", "Chemicals (L)", "Final Volume (L)", "Message",
}

var moduleHeaders = []string{"Chemical", "Internal ID", "Unit", "Target", "Makeup", "Green Zone Min", "Green Zone Max"}

// History builds a workbook with the history of module, oldest entry first, and a sheet
// describing the module configuration.
func History(module correction.Module, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(HistorySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := writeRow(f, HistorySheet, 1, toAny(historyHeaders)); err != nil {
		return nil, err
	}
	for i, r := range rows {
		values := []any{
			r.Time.UTC().Format(time.RFC3339),
			r.Kind,
			r.Status,
			round(r.CurrentVolume),
			round(r.Water),
			round(r.Makeup),
			round(r.ChemicalVolume),
			round(r.FinalVolume),
			r.Message,
		}
		if err := writeRow(f, HistorySheet, i+2, values); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(ModuleSheet); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(ModuleSheet, "A1", module.Name); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(ModuleSheet, "B1", string(module.Type)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(ModuleSheet, "C1", fmt.Sprintf("%.2f L", module.TotalVolume)); err != nil {
		return nil, err
	}
	if err := writeRow(f, ModuleSheet, 3, toAny(moduleHeaders)); err != nil {
		return nil, err
	}
	for i, c := range module.Chemicals {
		low, high := c.GreenZone(c.Target)
		values := []any{c.Name, c.InternalID, c.Unit, c.Target, c.MakeupConcentration(), round(low), round(high)}
		if err := writeRow(f, ModuleSheet, i+4, values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// round keeps two decimals, the precision shown to operators.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
