package events

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter logs every event instead of delivering it anywhere.
type StdoutWriter struct{}

func (s *StdoutWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("stdout_writer").Infow("event written", "topic", topic, "type", e.Type(), "id", e.ID(), "data", string(e.Data()))
	return nil
}

func (s *StdoutWriter) Close(_ context.Context) error {
	return nil
}
