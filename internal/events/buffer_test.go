package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", func() {
	It("keeps messages in order", func() {
		buffer := newBuffer()
		buffer.PushBack(&message{Kind: CorrectionMessageKind, Data: []byte("msg1")})
		buffer.PushBack(&message{Kind: RefillMessageKind, Data: []byte("msg2")})
		buffer.PushBack(&message{Kind: SimulationMessageKind, Data: []byte("msg3")})
		Expect(buffer.Size()).To(Equal(3))

		for _, want := range []string{"msg1", "msg2", "msg3"} {
			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(string(m.Data)).To(Equal(want))
			Expect(m.At.IsZero()).To(BeFalse())
		}

		Expect(buffer.Size()).To(Equal(0))
		Expect(buffer.head).To(BeNil())
		Expect(buffer.tail).To(BeNil())
		Expect(buffer.Pop()).To(BeNil())
	})

	It("accepts messages after being emptied", func() {
		buffer := newBuffer()
		buffer.PushBack(&message{Data: []byte("msg1")})
		Expect(buffer.Pop()).NotTo(BeNil())

		buffer.PushBack(&message{Data: []byte("msg2")})
		Expect(buffer.Size()).To(Equal(1))
		Expect(string(buffer.Pop().Data)).To(Equal("msg2"))
	})
})
