package sim

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Process", func() {
	var engine *SerialEngine

	BeforeEach(func() {
		engine = NewSerialEngine()
	})

	It("should suspend for the requested time", func() {
		var times []VTimeInSec

		p := NewProcess("cpu0", engine, func(ctx context.Context) {
			self, ok := ProcessFromContext(ctx)
			Expect(ok).To(BeTrue())

			times = append(times, self.Now())
			self.Wait(1)
			times = append(times, self.Now())
			self.Wait(2)
			times = append(times, self.Now())
		})
		p.StartAt(0.5)

		Expect(engine.Run()).To(Succeed())
		Expect(times).To(Equal([]VTimeInSec{0.5, 1.5, 3.5}))
		Expect(p.Done()).To(BeTrue())
	})

	It("should interleave processes by simulated time", func() {
		var log []string

		mk := func(name string, period VTimeInSec) *Process {
			return NewProcess(name, engine, func(ctx context.Context) {
				self, _ := ProcessFromContext(ctx)
				for i := 0; i < 3; i++ {
					log = append(log, name)
					self.Wait(period)
				}
			})
		}

		a := mk("a", 2)
		b := mk("b", 3)
		a.Start()
		b.Start()

		Expect(engine.Run()).To(Succeed())
		// a @0,2,4  b @0,3,6
		Expect(log).To(Equal([]string{"a", "b", "a", "b", "a", "b"}))
	})

	It("should wake up on a signal", func() {
		sig := NewSignal(engine)
		var wokeAt VTimeInSec

		waiter := NewProcess("waiter", engine, func(ctx context.Context) {
			self, _ := ProcessFromContext(ctx)
			self.WaitSignal(sig)
			wokeAt = self.Now()
		})
		notifier := NewProcess("notifier", engine, func(ctx context.Context) {
			self, _ := ProcessFromContext(ctx)
			self.Wait(5)
			Expect(sig.NumWaiters()).To(Equal(1))
			sig.Notify()
		})

		waiter.Start()
		notifier.Start()

		Expect(engine.Run()).To(Succeed())
		Expect(wokeAt).To(Equal(VTimeInSec(5)))
	})

	It("should not find a process in a plain context", func() {
		_, ok := ProcessFromContext(context.Background())
		Expect(ok).To(BeFalse())
	})

	It("should panic when started twice", func() {
		p := NewProcess("p", engine, func(ctx context.Context) {})
		p.Start()
		Expect(func() { p.Start() }).To(Panic())
	})
})
