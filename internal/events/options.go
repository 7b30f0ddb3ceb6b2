package events

type ProducerOptions func(e *EventProducer)

func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		if topic != "" {
			e.topic = topic
		}
	}
}

// WithSource sets the source attribute of every produced event.
func WithSource(source string) ProducerOptions {
	return func(e *EventProducer) {
		if source != "" {
			e.source = source
		}
	}
}
