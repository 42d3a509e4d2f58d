// Package endpoint provides the two ends of a memory connection. An
// Initiator issues transactions and keeps a DMI cache; a Target serializes
// incoming transactions, hands them to a Device, charges latency and
// manages the DMI regions it grants.
package endpoint

import (
	"context"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
)

// A Device services the transactions that arrive at a Target. It must set
// the status of the transaction and returns the number of bytes serviced.
type Device interface {
	Dispatch(ctx context.Context, tx *txn.Transaction, sb txn.Sideband) uint64
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(
	ctx context.Context, tx *txn.Transaction, sb txn.Sideband,
) uint64

// Dispatch calls f.
func (f DeviceFunc) Dispatch(
	ctx context.Context, tx *txn.Transaction, sb txn.Sideband,
) uint64 {
	return f(ctx, tx, sb)
}

// A Handler services the transactions that overlap with the range it is
// registered for in a Dispatcher.
type Handler interface {
	Decode(ctx context.Context, tx *txn.Transaction, sb txn.Sideband) uint64
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(
	ctx context.Context, tx *txn.Transaction, sb txn.Sideband,
) uint64

// Decode calls f.
func (f HandlerFunc) Decode(
	ctx context.Context, tx *txn.Transaction, sb txn.Sideband,
) uint64 {
	return f(ctx, tx, sb)
}

// A RawAccessor services the accesses that no handler claims. The address
// and the data describe one contiguous, fully enabled access.
type RawAccessor interface {
	ReadRaw(ctx context.Context, addr uint64, data []byte, sb txn.Sideband) txn.Status
	WriteRaw(ctx context.Context, addr uint64, data []byte, sb txn.Sideband) txn.Status
}

// A DMIOfferer can grant direct access to the memory behind a transaction.
// Returning false vetoes DMI for the access.
type DMIOfferer interface {
	OfferDMI(tx *txn.Transaction) (dmi.Region, bool)
}

// A DMIProvider answers DMI requests on behalf of a target. Routers provide
// DMI for their in ports by asking the targets behind them.
type DMIProvider interface {
	ProvideDMI(t *Target, tx *txn.Transaction) (dmi.Region, bool)
}

// Invalidatable is implemented by the endpoints that cache DMI regions.
type Invalidatable interface {
	InvalidateDMI(r dmi.Range)
}

// Span returns the range that one streaming pass of tx touches.
func Span(tx *txn.Transaction) dmi.Range {
	if tx.Length() == 0 {
		return dmi.RangeOfSize(tx.Address, 0)
	}

	return dmi.MakeRange(tx.Start(), tx.End())
}

// Overlap returns the part of r that tx touches.
func Overlap(tx *txn.Transaction, r dmi.Range) (dmi.Range, bool) {
	return Span(tx).Intersect(r)
}

// FullRange covers the whole address space.
var FullRange = dmi.MakeRange(0, ^uint64(0))
