package trafficgen

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/ram"
	"github.com/sarchlab/vplat/mem/router"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

var _ = Describe("Comp", func() {
	var (
		engine  *sim.SerialEngine
		quantum *timing.Quantum
		memory  *ram.Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		quantum = timing.NewQuantum(2.5)
		memory = ram.MakeBuilder().
			WithEngine(engine).
			WithNewStorage(0x1000).
			WithLatencies(1, 1).
			Build("RAM")
	})

	It("should synchronize when the quantum is exceeded", func() {
		gen := MakeBuilder().
			WithEngine(engine).
			WithQuantum(quantum).
			WithDMI(false).
			WithThinkTime(1).
			WithRequests([]Request{
				{Command: txn.CommandWrite, Address: 0x0, Size: 4},
				{Command: txn.CommandWrite, Address: 0x4, Size: 4},
				{Command: txn.CommandWrite, Address: 0x8, Size: 4},
			}).
			Build("Gen")
		endpoint.Connect(gen.Initiator(), memory.Target)

		gen.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(gen.Done()).To(BeTrue())
		stats := gen.Stats()
		Expect(stats.Writes).To(Equal(uint64(3)))
		Expect(stats.Bytes).To(Equal(uint64(12)))
		Expect(stats.FinishedAt).To(Equal(sim.VTimeInSec(6)))
	})

	It("should count failed requests", func() {
		gen := MakeBuilder().
			WithEngine(engine).
			WithRequests([]Request{
				{Command: txn.CommandRead, Address: 0x2000, Size: 4},
			}).
			Build("Gen")
		endpoint.Connect(gen.Initiator(), memory.Target)

		gen.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(gen.Stats().Errors).To(Equal(uint64(1)))
	})

	It("should share a memory with another generator", func() {
		bus := router.MakeBuilder().
			WithEngine(engine).
			WithNumInPorts(2).
			Build("Bus")
		endpoint.Connect(bus.OutPort(0), memory.Target)
		bus.Map(0, dmi.MakeRange(0x10000, 0x10fff), 0, "")

		var gens []*Comp
		for i := 0; i < 2; i++ {
			base := uint64(0x10000 + i*0x800)
			gen := MakeBuilder().
				WithEngine(engine).
				WithQuantum(quantum).
				WithThinkTime(0.5).
				WithVerification().
				WithRequests(RandomRequests(int64(i), 64,
					dmi.RangeOfSize(base, 0x800), 8, 0.5)).
				Build([]string{"GenA", "GenB"}[i])
			endpoint.Connect(gen.Initiator(), bus.InPort(i))
			gen.Start()
			gens = append(gens, gen)
		}

		Expect(engine.Run()).To(Succeed())

		for _, gen := range gens {
			Expect(gen.Done()).To(BeTrue())
			stats := gen.Stats()
			Expect(stats.Errors).To(BeZero())
			Expect(stats.Mismatches).To(BeZero())
			Expect(stats.Reads + stats.Writes).To(Equal(uint64(64)))
		}

		Expect(memory.NumDecodes()).To(BeNumerically("<", 128))
	})
})

var _ = Describe("RandomRequests", func() {
	It("should stay aligned inside the range", func() {
		rng := dmi.MakeRange(0x100, 0x1ff)

		for _, req := range RandomRequests(7, 100, rng, 16, 0.3) {
			Expect(req.Address % 16).To(BeZero())
			Expect(rng.Includes(dmi.RangeOfSize(req.Address, 16))).To(BeTrue())
		}
	})

	It("should panic if the size does not fit", func() {
		Expect(func() {
			RandomRequests(1, 1, dmi.MakeRange(0, 3), 8, 0.5)
		}).To(Panic())
	})
})
