package endpoint

import (
	"context"
	"fmt"
	"sort"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
)

type dispatchEntry struct {
	rng     dmi.Range
	handler Handler
}

// A Dispatcher is a Device that forwards transactions to the handlers
// registered for the addresses they touch. Accesses that no handler
// completes go to the raw accessor, if there is one.
type Dispatcher struct {
	entries []dispatchEntry
	raw     RawAccessor
}

// NewDispatcher creates a Dispatcher without handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// SetRaw sets the accessor that services the unclaimed accesses.
func (d *Dispatcher) SetRaw(raw RawAccessor) {
	d.raw = raw
}

// Register adds a handler for the range. It panics if the range overlaps
// with the range of another handler.
func (d *Dispatcher) Register(r dmi.Range, h Handler) {
	if r.IsEmpty() {
		panic(fmt.Sprintf("cannot register a handler for empty range %s", r))
	}

	i := d.firstEndingAtOrAfter(r.Start)
	if i < len(d.entries) && d.entries[i].rng.Overlaps(r) {
		panic(fmt.Sprintf("handler range %s overlaps with %s",
			r, d.entries[i].rng))
	}

	d.entries = append(d.entries, dispatchEntry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = dispatchEntry{rng: r, handler: h}
}

// Ranges returns the registered ranges in ascending order.
func (d *Dispatcher) Ranges() []dmi.Range {
	out := make([]dmi.Range, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.rng
	}

	return out
}

func (d *Dispatcher) firstEndingAtOrAfter(addr uint64) int {
	return sort.Search(len(d.entries), func(i int) bool {
		return d.entries[i].rng.End >= addr
	})
}

// Dispatch calls every handler whose range overlaps with the transaction,
// in ascending address order, until one of them reports an error. A handler
// only services the bytes inside its own range. The bytes that no handler
// owns go to the raw accessor; without one, the transaction fails with an
// address error.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	if st := tx.Validate(); !st.IsOK() {
		tx.SetStatus(st)
		return 0
	}

	span := Span(tx)
	n := uint64(0)

	for i := d.firstEndingAtOrAfter(span.Start); i < len(d.entries); i++ {
		e := d.entries[i]
		if e.rng.Start > span.End {
			break
		}

		n += e.handler.Decode(ctx, tx, sb)
		if tx.Status.IsError() {
			return n
		}
	}

	if tx.Status == txn.StatusIncomplete {
		return n + d.dispatchRaw(ctx, tx, sb, ForEachAccess)
	}

	if (!tx.IsRead() && !tx.IsWrite()) || n >= accessBytes(tx) {
		return n
	}

	return n + d.dispatchRaw(ctx, tx, sb, d.forEachUnclaimed)
}

func (d *Dispatcher) dispatchRaw(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
	each func(tx *txn.Transaction, fn func(addr uint64, data []byte) bool),
) uint64 {
	if d.raw == nil {
		tx.SetStatus(txn.StatusAddressError)
		return 0
	}

	n := uint64(0)
	status := txn.StatusOK

	each(tx, func(addr uint64, data []byte) bool {
		switch tx.Command {
		case txn.CommandRead:
			status = d.raw.ReadRaw(ctx, addr, data, sb)
		case txn.CommandWrite:
			status = d.raw.WriteRaw(ctx, addr, data, sb)
		default:
			status = txn.StatusOK
		}

		if !status.IsOK() {
			return false
		}

		n += uint64(len(data))

		return true
	})

	tx.SetStatus(status)

	return n
}

// forEachUnclaimed is ForEachAccess restricted to the bytes that lie
// outside every registered range.
func (d *Dispatcher) forEachUnclaimed(
	tx *txn.Transaction,
	fn func(addr uint64, data []byte) bool,
) {
	ForEachAccess(tx, func(addr uint64, data []byte) bool {
		size := uint64(len(data))
		last := addr + size - 1
		off := uint64(0)

		for i := d.firstEndingAtOrAfter(addr); i < len(d.entries) && off < size; i++ {
			rng := d.entries[i].rng
			if rng.Start > last {
				break
			}

			if rng.Start > addr+off {
				if !fn(addr+off, data[off:rng.Start-addr]) {
					return false
				}
			}

			if rng.End >= last {
				off = size
			} else {
				off = rng.End - addr + 1
			}
		}

		if off < size {
			return fn(addr+off, data[off:])
		}

		return true
	})
}

func accessBytes(tx *txn.Transaction) uint64 {
	n := uint64(0)

	ForEachAccess(tx, func(_ uint64, data []byte) bool {
		n += uint64(len(data))
		return true
	})

	return n
}

// ForEachAccess breaks a transaction into contiguous, fully enabled
// accesses. With a byte enable mask, every enabled byte is one access. With
// a streaming width shorter than the buffer, every pass is one access. The
// iteration stops when fn returns false.
func ForEachAccess(tx *txn.Transaction, fn func(addr uint64, data []byte) bool) {
	width := tx.Width()
	length := tx.Length()

	if width == 0 {
		return
	}

	if tx.HasByteEnable() {
		for i := uint64(0); i < length; i++ {
			if !tx.ByteEnabled(i) {
				continue
			}

			if !fn(tx.Address+i%width, tx.Data[i:i+1]) {
				return
			}
		}

		return
	}

	for off := uint64(0); off < length; off += width {
		if !fn(tx.Address, tx.Data[off:off+width]) {
			return
		}
	}
}
