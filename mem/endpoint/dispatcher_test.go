package endpoint

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
)

func completeWith(
	status txn.Status,
	n uint64,
) func(context.Context, *txn.Transaction, txn.Sideband) uint64 {
	return func(_ context.Context, tx *txn.Transaction, _ txn.Sideband) uint64 {
		tx.SetStatus(status)
		return n
	}
}

var _ = Describe("Dispatcher", func() {
	var (
		mockCtrl *gomock.Controller
		low      *MockHandler
		high     *MockHandler
		raw      *MockRawAccessor
		d        *Dispatcher
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		low = NewMockHandler(mockCtrl)
		high = NewMockHandler(mockCtrl)
		raw = NewMockRawAccessor(mockCtrl)

		d = NewDispatcher()
		d.Register(dmi.MakeRange(0x10, 0x1f), high)
		d.Register(dmi.MakeRange(0x00, 0x0f), low)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep handlers sorted", func() {
		Expect(d.Ranges()).To(Equal([]dmi.Range{
			dmi.MakeRange(0x00, 0x0f),
			dmi.MakeRange(0x10, 0x1f),
		}))
	})

	It("should panic on overlapping registration and keep the table", func() {
		Expect(func() {
			d.Register(dmi.MakeRange(0x08, 0x17), NewMockHandler(mockCtrl))
		}).To(PanicWith(ContainSubstring("0x00000000..0x0000000f")))

		Expect(d.Ranges()).To(HaveLen(2))
	})

	It("should only call the handler that overlaps", func() {
		tx := txn.New(txn.CommandRead, 0x14, make([]byte, 4))
		high.EXPECT().Decode(gomock.Any(), tx, txn.SidebandNone).
			DoAndReturn(completeWith(txn.StatusOK, 4))

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(4)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should call every overlapping handler in order", func() {
		tx := txn.New(txn.CommandWrite, 0x0c, make([]byte, 8))
		gomock.InOrder(
			low.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
				DoAndReturn(completeWith(txn.StatusOK, 4)),
			high.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
				DoAndReturn(completeWith(txn.StatusOK, 4)),
		)

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(8)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should stop at the first handler error", func() {
		tx := txn.New(txn.CommandWrite, 0x0c, make([]byte, 8))
		low.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
			DoAndReturn(completeWith(txn.StatusCommandError, 0))

		d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(tx.Status).To(Equal(txn.StatusCommandError))
	})

	It("should report address error without fallback", func() {
		tx := txn.New(txn.CommandRead, 0x100, make([]byte, 4))

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(BeZero())
		Expect(tx.Status).To(Equal(txn.StatusAddressError))
	})

	It("should fall back to raw access", func() {
		d.SetRaw(raw)
		tx := txn.New(txn.CommandRead, 0x100, make([]byte, 4))
		raw.EXPECT().
			ReadRaw(gomock.Any(), uint64(0x100), tx.Data, txn.SidebandNone).
			Return(txn.StatusOK)

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(4)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should fall back to raw access one enabled byte at a time", func() {
		d.SetRaw(raw)
		data := []byte{1, 2, 3, 4}
		tx := txn.MakeBuilder().
			WithCommand(txn.CommandWrite).
			WithAddress(0x100).
			WithData(data).
			WithByteEnable([]byte{0xff, 0}).
			Build()

		gomock.InOrder(
			raw.EXPECT().
				WriteRaw(gomock.Any(), uint64(0x100), data[0:1], gomock.Any()).
				Return(txn.StatusOK),
			raw.EXPECT().
				WriteRaw(gomock.Any(), uint64(0x102), data[2:3], gomock.Any()).
				Return(txn.StatusOK),
		)

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(2)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should send the bytes no handler owns to raw access", func() {
		d.SetRaw(raw)
		tx := txn.New(txn.CommandRead, 0x1c, make([]byte, 8))
		high.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
			DoAndReturn(completeWith(txn.StatusOK, 4))
		raw.EXPECT().
			ReadRaw(gomock.Any(), uint64(0x20), tx.Data[4:8], gomock.Any()).
			Return(txn.StatusOK)

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(8)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should send the gap between handlers to raw access", func() {
		d.SetRaw(raw)
		gap := NewMockHandler(mockCtrl)
		d.Register(dmi.MakeRange(0x24, 0x27), gap)
		tx := txn.New(txn.CommandWrite, 0x1e, make([]byte, 10))
		gomock.InOrder(
			high.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
				DoAndReturn(completeWith(txn.StatusOK, 2)),
			gap.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
				DoAndReturn(completeWith(txn.StatusOK, 4)),
			raw.EXPECT().
				WriteRaw(gomock.Any(), uint64(0x20), tx.Data[2:6], gomock.Any()).
				Return(txn.StatusOK),
		)

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(10)))
		Expect(tx.Status).To(Equal(txn.StatusOK))
	})

	It("should fail a partly handled access without raw access", func() {
		tx := txn.New(txn.CommandRead, 0x1c, make([]byte, 8))
		high.EXPECT().Decode(gomock.Any(), tx, gomock.Any()).
			DoAndReturn(completeWith(txn.StatusOK, 4))

		n := d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(n).To(Equal(uint64(4)))
		Expect(tx.Status).To(Equal(txn.StatusAddressError))
	})

	It("should reject malformed bursts", func() {
		tx := txn.MakeBuilder().
			WithCommand(txn.CommandRead).
			WithData(make([]byte, 6)).
			WithStreamingWidth(4).
			Build()

		d.Dispatch(context.Background(), tx, txn.SidebandNone)

		Expect(tx.Status).To(Equal(txn.StatusBurstError))
	})
})
