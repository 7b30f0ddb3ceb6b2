package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/correction/correctors"
	"github.com/tankops/bath-planner/internal/events"
	"github.com/tankops/bath-planner/internal/service/report"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/internal/store/model"
	"github.com/tankops/bath-planner/pkg/log"
	"github.com/tankops/bath-planner/pkg/metrics"
)

const defaultHistoryLimit = 100

// EventWriter publishes recorded calculations.
type EventWriter interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

type CorrectionService struct {
	store        store.Store
	engine       *correction.Engine
	historyLimit int
	events       EventWriter
	logger       *log.StructuredLogger
}

// CalculationEvent is the payload published for every recorded calculation.
type CalculationEvent struct {
	ID         uuid.UUID       `json:"id"`
	Module     string          `json:"module"`
	ModuleType string          `json:"module_type"`
	Kind       string          `json:"kind"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Input      json.RawMessage `json:"input"`
	Result     json.RawMessage `json:"result"`
}

type CorrectionServiceOption func(*correctionServiceOptions)

type correctionServiceOptions struct {
	engineOpts   []correction.Option
	historyLimit int
	events       EventWriter
}

// WithTolerance sets the tolerance the engine compares concentrations with.
func WithTolerance(rel, abs float64) CorrectionServiceOption {
	return func(o *correctionServiceOptions) {
		o.engineOpts = append(o.engineOpts, correction.WithTolerance(rel, abs))
	}
}

// WithHistoryLimit caps the number of history entries returned when the caller asks for none in particular.
func WithHistoryLimit(limit int) CorrectionServiceOption {
	return func(o *correctionServiceOptions) {
		if limit > 0 {
			o.historyLimit = limit
		}
	}
}

// WithEventWriter publishes every recorded calculation to w.
func WithEventWriter(w EventWriter) CorrectionServiceOption {
	return func(o *correctionServiceOptions) {
		o.events = w
	}
}

func NewCorrectionService(store store.Store, opts ...CorrectionServiceOption) *CorrectionService {
	o := &correctionServiceOptions{historyLimit: defaultHistoryLimit}
	for _, opt := range opts {
		opt(o)
	}

	engine := correction.NewEngine(o.engineOpts...)
	engine.Register(correctors.NewMakeupBlend())
	engine.Register(correctors.NewPureChemical())

	return &CorrectionService{
		store:        store,
		engine:       engine,
		historyLimit: o.historyLimit,
		events:       o.events,
		logger:       log.NewDebugLogger("correction_service"),
	}
}

func (cs *CorrectionService) Correct(ctx context.Context, moduleName string, in correction.Input) (*correction.Result, error) {
	tracer := cs.logger.WithContext(ctx).Operation("correct").
		WithString("module", moduleName).
		WithFloat("current_volume", in.CurrentVolume).
		Build()

	module, err := lookupModule(ctx, cs.store, moduleName)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	result, err := cs.engine.Correct(*module, in)
	if err != nil {
		tracer.Error(err).Log()
		return nil, mapCalculationError(err)
	}
	tracer.Step("calculated").WithString("status", string(result.Status)).Log()

	metrics.IncreaseCorrectionsTotalMetric(string(module.Type), string(result.Status))
	metrics.ObserveCorrectionAddition("water", result.AddWater)
	metrics.ObserveCorrectionAddition("makeup", result.AddMakeup)
	metrics.ObserveCorrectionAddition("chemical", additionsVolume(result.Additions))

	cs.record(ctx, tracer, *module, model.KindCorrection, string(result.Status), in, result)
	tracer.Success().WithFloat("final_volume", result.FinalVolume).Log()

	return &result, nil
}

func (cs *CorrectionService) Simulate(ctx context.Context, moduleName string, in correction.SimulationInput) (*correction.SimulationResult, error) {
	tracer := cs.logger.WithContext(ctx).Operation("simulate").WithString("module", moduleName).Build()

	module, err := lookupModule(ctx, cs.store, moduleName)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	result, err := cs.engine.Simulate(*module, in)
	if err != nil {
		tracer.Error(err).Log()
		return nil, mapCalculationError(err)
	}

	status := "SIMULATED"
	if result.Overflow {
		status = "OVERFLOW"
	}
	cs.record(ctx, tracer, *module, model.KindSimulation, status, in, result)
	tracer.Success().WithFloat("new_volume", result.NewVolume).Log()

	return &result, nil
}

func (cs *CorrectionService) Refill(ctx context.Context, moduleName string, in correction.Input) (*correction.RefillResult, error) {
	tracer := cs.logger.WithContext(ctx).Operation("refill").WithString("module", moduleName).Build()

	module, err := lookupModule(ctx, cs.store, moduleName)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	result, err := cs.engine.Refill(*module, in)
	if err != nil {
		tracer.Error(err).Log()
		return nil, mapCalculationError(err)
	}

	metrics.IncreaseCorrectionsTotalMetric(string(module.Type), string(result.Status))
	metrics.ObserveCorrectionAddition("water", result.AddWater)
	metrics.ObserveCorrectionAddition("chemical", additionsVolume(result.Additions))

	cs.record(ctx, tracer, *module, model.KindRefill, string(result.Status), in, result)
	tracer.Success().WithString("status", string(result.Status)).Log()

	return &result, nil
}

// History returns the recorded calculations of a module, newest first. kind may be empty to list
// every kind. A non-positive limit uses the configured default.
func (cs *CorrectionService) History(ctx context.Context, moduleName string, kind model.CorrectionKind, limit int) (model.CorrectionList, error) {
	if _, err := lookupModule(ctx, cs.store, moduleName); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > cs.historyLimit {
		limit = cs.historyLimit
	}

	filter := store.NewCorrectionQueryFilter().ByModule(moduleName)
	if kind != "" {
		filter = filter.ByKind(string(kind))
	}
	opts := store.NewCorrectionQueryOptions().WithSortOrder(store.SortByCreatedTimeDesc).WithLimit(limit)

	history, err := cs.store.Correction().List(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return history, nil
}

// ExportHistory renders the whole history of a module as an xlsx workbook.
func (cs *CorrectionService) ExportHistory(ctx context.Context, moduleName string) ([]byte, error) {
	tracer := cs.logger.WithContext(ctx).Operation("export_history").WithString("module", moduleName).Build()

	module, err := lookupModule(ctx, cs.store, moduleName)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	history, err := cs.store.Correction().List(ctx,
		store.NewCorrectionQueryFilter().ByModule(moduleName),
		store.NewCorrectionQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	rows := make([]report.Row, 0, len(history))
	for _, h := range history {
		rows = append(rows, historyRow(h))
	}

	content, err := report.History(*module, rows)
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to render history: %w", err)
	}
	tracer.Success().WithInt("rows", len(rows)).Log()

	return content, nil
}

// record stores a calculation in the history. A failure to record never fails the calculation.
func (cs *CorrectionService) record(ctx context.Context, tracer *log.OperationTracer, module correction.Module, kind model.CorrectionKind, status string, in, result any) {
	input, err := json.Marshal(in)
	if err != nil {
		tracer.Error(err).WithString("step", "encode_input").Log()
		return
	}
	output, err := json.Marshal(result)
	if err != nil {
		tracer.Error(err).WithString("step", "encode_result").Log()
		return
	}

	entry, err := cs.store.Correction().Create(ctx, model.Correction{
		ModuleName: module.Name,
		ModuleType: string(module.Type),
		Kind:       kind,
		Status:     status,
		Input:      string(input),
		Result:     string(output),
	})
	if err != nil {
		tracer.Error(err).WithString("step", "record_history").Log()
		return
	}
	tracer.Step("recorded").WithUUID("correction_id", entry.ID).Log()

	cs.publish(ctx, tracer, entry)
}

// publish sends a recorded calculation to the event writer, if one is configured.
func (cs *CorrectionService) publish(ctx context.Context, tracer *log.OperationTracer, entry *model.Correction) {
	if cs.events == nil {
		return
	}

	body, err := json.Marshal(CalculationEvent{
		ID:         entry.ID,
		Module:     entry.ModuleName,
		ModuleType: entry.ModuleType,
		Kind:       string(entry.Kind),
		Status:     entry.Status,
		CreatedAt:  entry.CreatedAt,
		Input:      json.RawMessage(entry.Input),
		Result:     json.RawMessage(entry.Result),
	})
	if err == nil {
		err = cs.events.Write(ctx, eventKind(entry.Kind), bytes.NewReader(body))
	}
	if err != nil {
		tracer.Error(err).WithString("step", "publish_event").Log()
	}
}

func eventKind(kind model.CorrectionKind) string {
	switch kind {
	case model.KindSimulation:
		return events.SimulationMessageKind
	case model.KindRefill:
		return events.RefillMessageKind
	default:
		return events.CorrectionMessageKind
	}
}

// recordedOutcome reads the fields shared by every recorded result kind.
type recordedOutcome struct {
	Message     string                        `json:"message"`
	AddWater    float64                       `json:"add_water"`
	AddMakeup   float64                       `json:"add_makeup"`
	FinalVolume float64                       `json:"final_volume"`
	NewVolume   float64                       `json:"new_volume"`
	Additions   []correction.ChemicalAddition `json:"additions"`
}

func historyRow(h model.Correction) report.Row {
	row := report.Row{
		Time:   h.CreatedAt,
		Kind:   string(h.Kind),
		Status: h.Status,
	}

	var in struct {
		CurrentVolume float64 `json:"current_volume"`
	}
	if err := json.Unmarshal([]byte(h.Input), &in); err == nil {
		row.CurrentVolume = in.CurrentVolume
	}

	var out recordedOutcome
	if err := json.Unmarshal([]byte(h.Result), &out); err == nil {
		row.Message = out.Message
		row.Water = out.AddWater
		row.Makeup = out.AddMakeup
		row.ChemicalVolume = additionsVolume(out.Additions)
		row.FinalVolume = out.FinalVolume
		if h.Kind == model.KindSimulation {
			row.FinalVolume = out.NewVolume
		}
	}
	return row
}

func additionsVolume(additions []correction.ChemicalAddition) float64 {
	var total float64
	for _, a := range additions {
		total += a.Volume
	}
	return total
}

func mapCalculationError(err error) error {
	var invalid *correction.ErrInvalidInput
	if errors.As(err, &invalid) {
		return NewErrInvalidRequest(err)
	}
	return fmt.Errorf("failed to calculate: %w", err)
}
