package ram

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

var _ = Describe("Storage", func() {
	It("should reject accesses beyond capacity", func() {
		s := NewStorage(16)

		Expect(s.Write(12, []byte{1, 2, 3, 4})).To(Succeed())
		Expect(s.Write(13, []byte{1, 2, 3, 4})).NotTo(Succeed())
		Expect(s.Read(16, make([]byte, 1))).NotTo(Succeed())
		Expect(s.Contains(^uint64(0), 2)).To(BeFalse())

		data := make([]byte, 4)
		Expect(s.Read(12, data)).To(Succeed())
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})
})

var _ = Describe("Comp", func() {
	var (
		ram  *Comp
		init *endpoint.Initiator
		ctx  context.Context
	)

	BeforeEach(func() {
		ram = MakeBuilder().
			WithNewStorage(0x100).
			WithLatencies(2, 3).
			Build("RAM")
		init = endpoint.MakeInitiatorBuilder().
			WithDMI(false).
			Build("CPU")
		endpoint.Connect(init, ram.Target)
		ctx = context.Background()
	})

	It("should write and read back", func() {
		Expect(init.Write(ctx, 0x10, []byte{1, 2, 3, 4}, txn.SidebandNone)).
			To(Equal(txn.StatusOK))

		data := make([]byte, 4)
		Expect(init.Read(ctx, 0x10, data, txn.SidebandNone)).
			To(Equal(txn.StatusOK))
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
		Expect(init.Keeper().Local()).To(Equal(sim.VTimeInSec(5)))
		Expect(ram.NumDecodes()).To(Equal(uint64(2)))
	})

	It("should report address errors beyond capacity", func() {
		status := init.Read(ctx, 0xfe, make([]byte, 4), txn.SidebandNone)

		Expect(status).To(Equal(txn.StatusAddressError))
	})

	It("should repeat a burst over the same bytes", func() {
		tx := txn.MakeBuilder().
			WithCommand(txn.CommandWrite).
			WithAddress(0x20).
			WithData([]byte{1, 2, 3, 4, 5, 6}).
			WithStreamingWidth(2).
			Build()

		init.Send(ctx, tx, txn.SidebandNone)

		Expect(tx.Status).To(Equal(txn.StatusOK))
		Expect(ram.Storage.Bytes()[0x20:0x23]).To(Equal([]byte{5, 6, 0}))
	})

	It("should offer DMI for the whole storage", func() {
		tx := txn.New(txn.CommandRead, 0x40, make([]byte, 8))

		ram.Accept(ctx, tx, txn.SidebandNone)

		Expect(tx.DMIAllowed).To(BeTrue())
		region, ok := ram.DMI(tx)
		Expect(ok).To(BeTrue())
		Expect(region.Range).To(Equal(dmi.MakeRange(0, 0xff)))
		Expect(&region.Mem[0]).To(BeIdenticalTo(&ram.Storage.Bytes()[0]))
	})

	It("should serve repeated accesses through DMI", func() {
		init.AllowDMI(true)

		init.Read(ctx, 0x40, make([]byte, 8), txn.SidebandNone)
		init.Read(ctx, 0x40, make([]byte, 8), txn.SidebandNone)

		Expect(ram.NumDecodes()).To(Equal(uint64(1)))
		Expect(init.NumDMIHits()).To(Equal(uint64(1)))
		Expect(init.Keeper().Local()).To(Equal(sim.VTimeInSec(4)))
	})

	Context("when read-only", func() {
		BeforeEach(func() {
			ram = MakeBuilder().WithNewStorage(0x100).WithReadOnly().Build("ROM")
			init = endpoint.MakeInitiatorBuilder().Build("Loader")
			endpoint.Connect(init, ram.Target)
		})

		It("should reject normal writes", func() {
			status := init.Write(ctx, 0, []byte{1}, txn.SidebandNone)

			Expect(status).To(Equal(txn.StatusCommandError))
		})

		It("should accept debug writes", func() {
			status := init.DebugAccess(txn.CommandWrite, 0, []byte{7})

			Expect(status).To(Equal(txn.StatusOK))
			Expect(ram.Storage.Bytes()[0]).To(Equal(byte(7)))
		})

		It("should grant read-only DMI", func() {
			init.Read(ctx, 0, make([]byte, 4), txn.SidebandNone)

			regions := init.DMICache().Regions()
			Expect(regions).To(HaveLen(1))
			Expect(regions[0].Access).To(Equal(dmi.AccessRead))

			status := init.Write(ctx, 0, []byte{1}, txn.SidebandNone)
			Expect(status).To(Equal(txn.StatusCommandError))
		})
	})
})
