package log

import (
	"context"

	"github.com/google/uuid"
	"github.com/tankops/bath-planner/pkg/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger is a named logger for one component. Each call site starts an operation from
// it and logs steps through the resulting OperationTracer.
type StructuredLogger struct {
	name string
}

// NewDebugLogger returns a StructuredLogger named name. Steps and successes are logged at debug
// level, errors at error level.
func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{name: name}
}

func (l *StructuredLogger) WithContext(ctx context.Context) *LoggerBuilder {
	return &LoggerBuilder{name: l.name, ctx: ctx}
}

func (l *StructuredLogger) Operation(op string) *LoggerBuilder {
	return &LoggerBuilder{name: l.name, operation: op}
}

// LoggerBuilder collects the fields shared by every event of one operation.
type LoggerBuilder struct {
	name      string
	ctx       context.Context
	operation string
	fields    []zap.Field
}

// WithContext attaches the request id found in ctx, if any.
func (b *LoggerBuilder) WithContext(ctx context.Context) *LoggerBuilder {
	b.ctx = ctx
	return b
}

func (b *LoggerBuilder) Operation(op string) *LoggerBuilder {
	b.operation = op
	return b
}

func (b *LoggerBuilder) WithString(key, value string) *LoggerBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *LoggerBuilder) WithInt(key string, value int) *LoggerBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *LoggerBuilder) WithFloat(key string, value float64) *LoggerBuilder {
	b.fields = append(b.fields, zap.Float64(key, value))
	return b
}

func (b *LoggerBuilder) WithUUID(key string, value uuid.UUID) *LoggerBuilder {
	b.fields = append(b.fields, zap.String(key, value.String()))
	return b
}

func (b *LoggerBuilder) Build() *OperationTracer {
	fields := make([]zap.Field, 0, len(b.fields)+2)
	if b.operation != "" {
		fields = append(fields, zap.String("operation", b.operation))
	}
	if b.ctx != nil {
		if id := requestid.FromContext(b.ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
	}
	fields = append(fields, b.fields...)

	return &OperationTracer{
		logger: zap.L().Named(b.name).WithOptions(zap.AddCallerSkip(1)).With(fields...),
	}
}

type OperationTracer struct {
	logger *zap.Logger
}

// Step records progress through the operation.
func (l *OperationTracer) Step(step string) *Event {
	return l.event(zapcore.DebugLevel, step, zap.String("step", step))
}

func (l *OperationTracer) Success() *Event {
	return l.event(zapcore.DebugLevel, "success", zap.Bool("success", true))
}

func (l *OperationTracer) Error(err error) *Event {
	return l.event(zapcore.ErrorLevel, "failed", zap.Error(err))
}

func (l *OperationTracer) event(level zapcore.Level, msg string, fields ...zap.Field) *Event {
	return &Event{logger: l.logger, level: level, msg: msg, fields: fields}
}

// Event is a single log line. Nothing is written until Log is called.
type Event struct {
	logger *zap.Logger
	level  zapcore.Level
	msg    string
	fields []zap.Field
}

func (e *Event) WithString(key, value string) *Event {
	e.fields = append(e.fields, zap.String(key, value))
	return e
}

func (e *Event) WithInt(key string, value int) *Event {
	e.fields = append(e.fields, zap.Int(key, value))
	return e
}

func (e *Event) WithFloat(key string, value float64) *Event {
	e.fields = append(e.fields, zap.Float64(key, value))
	return e
}

func (e *Event) WithUUID(key string, value uuid.UUID) *Event {
	e.fields = append(e.fields, zap.String(key, value.String()))
	return e
}

func (e *Event) Log() {
	if ce := e.logger.Check(e.level, e.msg); ce != nil {
		ce.Write(e.fields...)
	}
}
