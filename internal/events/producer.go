package events

import (
	"context"
	"io"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	CorrectionMessageKind string = "bath.planner.events.correction"
	SimulationMessageKind string = "bath.planner.events.simulation"
	RefillMessageKind     string = "bath.planner.events.refill"
	defaultTopic          string = "bath.planner.events"
	defaultSource         string = "bath.planner"
	closeTimeout                 = 5 * time.Second
)

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer queues events and hands them to the Writer from its own goroutine so a slow
// writer never holds up a calculation.
type EventProducer struct {
	buffer    *buffer
	wakeCh    chan struct{}
	doneCh    chan struct{}
	stoppedCh chan struct{}
	writer    Writer
	topic     string
	source    string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:    newBuffer(),
		wakeCh:    make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		writer:    w,
		topic:     defaultTopic,
		source:    defaultSource,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

// Write queues body as the data of an event of the given kind.
func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	ep.buffer.PushBack(&message{Kind: kind, Data: d})

	select {
	case ep.wakeCh <- struct{}{}:
	default:
		// already signalled
	}
	return nil
}

// Close sends what is still queued and closes the writer.
func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		close(ep.doneCh)
		select {
		case <-ep.stoppedCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		return ep.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Named("event_producer").Errorw("event producer closed with error", "error", err)
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")
	return nil
}

func (ep *EventProducer) run() {
	defer close(ep.stoppedCh)
	for {
		ep.drain()

		select {
		case <-ep.wakeCh:
		case <-ep.doneCh:
			ep.drain()
			return
		}
	}
}

func (ep *EventProducer) drain() {
	for msg := ep.buffer.Pop(); msg != nil; msg = ep.buffer.Pop() {
		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(ep.source)
		e.SetType(msg.Kind)
		e.SetTime(msg.At)
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to send event", "error", err, "type", msg.Kind)
		}
	}
}
