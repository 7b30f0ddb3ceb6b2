package events

import (
	"bytes"
	"context"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", func() {
	It("delivers events in order", func() {
		w := newTestWriter()
		p := NewEventProducer(w, WithOutputTopic("bath.test"), WithSource("test"))

		Expect(p.Write(context.TODO(), CorrectionMessageKind, bytes.NewReader([]byte(`{"status":"PERFECT"}`)))).To(Succeed())
		Expect(p.Write(context.TODO(), RefillMessageKind, bytes.NewReader([]byte(`{"status":"REFILL"}`)))).To(Succeed())

		Eventually(w.Len).Should(Equal(2))

		events := w.Events()
		Expect(events[0].Type()).To(Equal(CorrectionMessageKind))
		Expect(events[0].Source()).To(Equal("test"))
		Expect(string(events[0].Data())).To(Equal(`{"status":"PERFECT"}`))
		Expect(events[1].Type()).To(Equal(RefillMessageKind))
		Expect(w.Topics()).To(ConsistOf("bath.test", "bath.test"))

		Expect(p.Close()).To(Succeed())
		Expect(w.Closed()).To(BeTrue())
	})

	It("flushes queued events on close", func() {
		w := newTestWriter()
		p := NewEventProducer(w)
		for i := 0; i < 10; i++ {
			Expect(p.Write(context.TODO(), SimulationMessageKind, bytes.NewReader([]byte("{}")))).To(Succeed())
		}

		Expect(p.Close()).To(Succeed())
		Expect(w.Len()).To(Equal(10))
		Expect(w.Topics()[0]).To(Equal(defaultTopic))
	})
})

type testwriter struct {
	lock   sync.Mutex
	events []cloudevents.Event
	topics []string
	closed bool
}

func newTestWriter() *testwriter {
	return &testwriter{}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.events = append(t.events, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
	return nil
}

func (t *testwriter) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.events)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]cloudevents.Event(nil), t.events...)
}

func (t *testwriter) Topics() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string(nil), t.topics...)
}

func (t *testwriter) Closed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.closed
}
