package endpoint

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// An Initiator issues transactions to the target it is bound to. It serves
// accesses from its DMI cache when it can.
type Initiator struct {
	*sim.ComponentBase

	target   *Target
	keeper   *timing.Keeper
	busWidth int
	sideband txn.Sideband
	allowDMI bool
	cache    *dmi.Cache
	idGen    sim.IDGenerator

	// Debug accesses may be issued while a normal access is in flight, so
	// each path has its own transaction.
	normalTx txn.Transaction
	debugTx  txn.Transaction

	onInvalidate []func(r dmi.Range)

	numSent    atomic.Uint64
	numDMIHits atomic.Uint64
}

// Read reads len(data) bytes at addr into data.
func (i *Initiator) Read(
	ctx context.Context,
	addr uint64,
	data []byte,
	sb txn.Sideband,
) txn.Status {
	return i.Access(ctx, txn.CommandRead, addr, data, sb)
}

// Write writes data at addr.
func (i *Initiator) Write(
	ctx context.Context,
	addr uint64,
	data []byte,
	sb txn.Sideband,
) txn.Status {
	return i.Access(ctx, txn.CommandWrite, addr, data, sb)
}

// DebugAccess performs an access that does not consume simulated time and
// does not have side effects on the timing of the system.
func (i *Initiator) DebugAccess(
	cmd txn.Command,
	addr uint64,
	data []byte,
) txn.Status {
	return i.Access(context.Background(), cmd, addr, data, txn.SidebandDebug)
}

// Access performs a memory access. Before a normal access, the initiator
// synchronizes if its local time exceeds the quantum. The access is served
// from the DMI cache if possible, and sent to the target otherwise.
func (i *Initiator) Access(
	ctx context.Context,
	cmd txn.Command,
	addr uint64,
	data []byte,
	sb txn.Sideband,
) txn.Status {
	sb = sb.Or(i.sideband)

	if !sb.IsDebug() {
		ctx = timing.WithKeeper(ctx, i.keeper)
		i.keeper.SyncIfNeeded(ctx)
	}

	if status, ok := i.accessDMI(cmd, addr, data, sb); ok {
		return status
	}

	tx := &i.normalTx
	if sb.IsDebug() {
		tx = &i.debugTx
	}

	tx.Reset(cmd, addr, data)
	tx.ID = i.idGen.Generate()

	i.Send(ctx, tx, sb)

	return tx.Status
}

func (i *Initiator) accessDMI(
	cmd txn.Command,
	addr uint64,
	data []byte,
	sb txn.Sideband,
) (txn.Status, bool) {
	if !i.allowDMI || sb.IsNoDMI() || sb.IsExcl() ||
		cmd == txn.CommandIgnore || len(data) == 0 {
		return txn.StatusIncomplete, false
	}

	rng := dmi.RangeOfSize(addr, uint64(len(data)))

	region, ok := i.cache.Lookup(rng, cmd)
	if !ok {
		return txn.StatusIncomplete, false
	}

	mem := region.Bytes(rng)
	if cmd == txn.CommandRead {
		copy(data, mem)
	} else {
		copy(mem, data)
	}

	if !sb.IsDebug() {
		i.keeper.Advance(region.Latency(cmd))
	}

	i.numDMIHits.Add(1)

	return txn.StatusOK, true
}

// Send delivers a transaction to the target and returns the number of bytes
// serviced. Transactions with a byte enable mask are sent one enabled byte at
// a time; bursts are sent one streaming pass at a time. Delivery stops at the
// first error.
func (i *Initiator) Send(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	i.mustBeBound()

	tx.DMIAllowed = false

	if st := tx.Validate(); !st.IsOK() {
		tx.SetStatus(st)
		return 0
	}

	i.numSent.Add(1)

	var n uint64
	if tx.HasByteEnable() || tx.Width() < tx.Length() {
		n = i.sendSplit(ctx, tx, sb)
	} else {
		n = i.target.Accept(ctx, tx, sb)
	}

	if tx.IsOK() && tx.DMIAllowed && i.allowDMI && !sb.IsDebug() {
		i.fetchDMI(tx)
	}

	return n
}

func (i *Initiator) sendSplit(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	n := uint64(0)
	status := txn.StatusOK
	sub := &txn.Transaction{}
	k := 0

	ForEachAccess(tx, func(addr uint64, data []byte) bool {
		sub.Reset(tx.Command, addr, data)
		sub.ID = subID(tx.ID, k)
		k++

		n += i.target.Accept(ctx, sub, sb)
		status = sub.Status

		return status.IsOK()
	})

	tx.SetStatus(status)

	return n
}

// subID names the k-th access of a split transaction.
func subID(id string, k int) string {
	if id == "" {
		return ""
	}

	return fmt.Sprintf("%s.%d", id, k)
}

func (i *Initiator) fetchDMI(tx *txn.Transaction) {
	region, ok := i.target.DMI(tx)
	if !ok {
		return
	}

	i.cache.Insert(region)
}

func (i *Initiator) mustBeBound() {
	if i.target == nil {
		log.Panicf("initiator %s is not bound", i.Name())
	}
}

// InvalidateDMI drops the cached DMI regions in the range and notifies the
// callbacks registered with OnInvalidate.
func (i *Initiator) InvalidateDMI(r dmi.Range) {
	i.cache.Invalidate(r)

	for _, fn := range i.onInvalidate {
		fn(r)
	}
}

// OnInvalidate registers a callback that is called on every invalidation.
func (i *Initiator) OnInvalidate(fn func(r dmi.Range)) {
	i.onInvalidate = append(i.onInvalidate, fn)
}

// SetSideband sets the sideband that is added to every access.
func (i *Initiator) SetSideband(sb txn.Sideband) {
	i.sideband = sb
}

// Sideband returns the sideband that is added to every access.
func (i *Initiator) Sideband() txn.Sideband {
	return i.sideband
}

// AllowDMI enables or disables the DMI cache. Disabling drops all cached
// regions.
func (i *Initiator) AllowDMI(allow bool) {
	i.allowDMI = allow
	if !allow {
		i.cache.Clear()
	}
}

// DMIAllowed tells if the initiator uses DMI.
func (i *Initiator) DMIAllowed() bool {
	return i.allowDMI
}

// DMICache returns the cache of the initiator.
func (i *Initiator) DMICache() *dmi.Cache {
	return i.cache
}

// Keeper returns the keeper of the initiator.
func (i *Initiator) Keeper() *timing.Keeper {
	return i.keeper
}

// BusWidth returns the width of the bus in bits.
func (i *Initiator) BusWidth() int {
	return i.busWidth
}

// Target returns the target that the initiator is bound to.
func (i *Initiator) Target() *Target {
	return i.target
}

// NumSent returns the number of transactions sent to the target.
func (i *Initiator) NumSent() uint64 {
	return i.numSent.Load()
}

// NumDMIHits returns the number of accesses served from the DMI cache.
func (i *Initiator) NumDMIHits() uint64 {
	return i.numDMIHits.Load()
}

// Connect binds an initiator to a target. It panics if the initiator is
// already bound or if the bus widths differ.
func Connect(i *Initiator, t *Target) {
	if i.target != nil {
		panic(fmt.Sprintf("initiator %s is already bound to %s",
			i.Name(), i.target.Name()))
	}

	if i.busWidth != t.busWidth {
		panic(fmt.Sprintf("bus width mismatch: %s has %d bits, %s has %d bits",
			i.Name(), i.busWidth, t.Name(), t.busWidth))
	}

	t.bind(i)
	i.target = t
}
