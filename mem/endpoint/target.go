package endpoint

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// HookPosTxnStart is triggered when a target starts servicing a transaction.
// The hook item is the transaction and the detail is the sideband.
var HookPosTxnStart = &sim.HookPos{Name: "TxnStart"}

// HookPosTxnEnd is triggered after a target finishes a transaction.
var HookPosTxnEnd = &sim.HookPos{Name: "TxnEnd"}

// TxnHookDetail is the Detail of the transaction hooks. Time is the local
// time of the issuer, so it includes the annotated latency at the end
// position.
type TxnHookDetail struct {
	Sideband txn.Sideband
	Time     sim.VTimeInSec
}

// A Target receives transactions and passes them to its device one at a
// time.
type Target struct {
	*sim.ComponentBase

	engine   sim.EventScheduler
	device   Device
	offerer  DMIOfferer
	provider DMIProvider
	keeper   *timing.Keeper
	busWidth int

	readLatency  sim.VTimeInSec
	writeLatency sim.VTimeInSec
	access       dmi.Access
	dmiCache     *dmi.Cache

	initiators []*Initiator

	lock  sync.Mutex
	cond  *sync.Cond
	busy  bool
	owner *sim.Process
	depth int
	free  *sim.Signal
}

// Accept services a transaction and returns the number of bytes serviced.
// The result is recorded in the status of the transaction.
//
// A normal access that finds the target busy suspends the calling process
// until the target is free. Debug accesses are not serialized and must not
// consume simulated time.
func (t *Target) Accept(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	tx.DMIAllowed = false

	if sb.IsDebug() {
		return t.acceptDebug(ctx, tx, sb)
	}

	t.acquire(ctx)
	defer t.release()

	k := t.keeperFor(ctx)
	hookCtx := sim.HookCtx{
		Domain: t,
		Pos:    HookPosTxnStart,
		Item:   tx,
		Detail: TxnHookDetail{Sideband: sb, Time: k.Now()},
	}
	t.InvokeHook(hookCtx)

	n := t.device.Dispatch(ctx, tx, sb)
	t.mustBeComplete(tx)
	t.chargeLatency(ctx, tx)

	if tx.IsOK() && !sb.IsNoDMI() && t.provider == nil {
		t.grantDMI(tx)
	}

	hookCtx.Pos = HookPosTxnEnd
	hookCtx.Detail = TxnHookDetail{Sideband: sb, Time: k.Now()}
	t.InvokeHook(hookCtx)

	return n
}

func (t *Target) acceptDebug(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	k := t.keeperFor(ctx)
	local := k.Local()

	var now sim.VTimeInSec
	if t.engine != nil {
		now = t.engine.CurrentTime()
	}

	n := t.device.Dispatch(ctx, tx, sb)
	t.mustBeComplete(tx)

	if k.Local() != local ||
		(t.engine != nil && t.engine.CurrentTime() != now) {
		log.Panicf("debug access %s to %s consumed simulated time",
			tx, t.Name())
	}

	return n
}

func (t *Target) mustBeComplete(tx *txn.Transaction) {
	if tx.Status == txn.StatusIncomplete {
		log.Panicf("%s left transaction %s incomplete", t.Name(), tx)
	}
}

func (t *Target) acquire(ctx context.Context) {
	p, inProcess := sim.ProcessFromContext(ctx)

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.busy && inProcess && t.owner == p {
		t.depth++
		return
	}

	for t.busy {
		if !inProcess {
			t.cond.Wait()
			continue
		}

		if t.engine == nil {
			log.Panicf("%s needs an engine to serialize processes", t.Name())
		}

		t.lock.Unlock()
		p.WaitSignal(t.free)
		t.lock.Lock()
	}

	t.busy = true
	t.owner = p
	t.depth = 1
}

func (t *Target) release() {
	t.lock.Lock()

	t.depth--
	if t.depth > 0 {
		t.lock.Unlock()
		return
	}

	t.busy = false
	t.owner = nil
	t.cond.Broadcast()
	t.lock.Unlock()

	t.free.Notify()
}

// IsBusy tells if a transaction is being serviced.
func (t *Target) IsBusy() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busy
}

func (t *Target) keeperFor(ctx context.Context) *timing.Keeper {
	if k, ok := timing.KeeperFromContext(ctx); ok {
		return k
	}

	return t.keeper
}

func (t *Target) latencyOf(cmd txn.Command) sim.VTimeInSec {
	switch cmd {
	case txn.CommandRead:
		return t.readLatency
	case txn.CommandWrite:
		return t.writeLatency
	}

	return 0
}

func (t *Target) chargeLatency(ctx context.Context, tx *txn.Transaction) {
	d := t.latencyOf(tx.Command)
	if d == 0 {
		return
	}

	t.keeperFor(ctx).Advance(d)
}

func (t *Target) grantDMI(tx *txn.Transaction) {
	if t.offerer != nil {
		if region, ok := t.offerer.OfferDMI(tx); ok {
			t.insertDMI(region.WithLatencies(t.readLatency, t.writeLatency))
		}
	}

	_, ok := t.dmiCache.Lookup(Span(tx), tx.Command)
	tx.DMIAllowed = ok
}

func (t *Target) insertDMI(region dmi.Region) {
	region.Access &= t.access
	if region.Access == dmi.AccessNone {
		return
	}

	t.dmiCache.Insert(region)
}

// DMI returns a region that grants direct access to the memory behind the
// transaction.
func (t *Target) DMI(tx *txn.Transaction) (dmi.Region, bool) {
	if t.provider != nil {
		return t.provider.ProvideDMI(t, tx)
	}

	return t.dmiCache.Lookup(Span(tx), tx.Command)
}

// MapDMI grants DMI for a region without waiting for an access to it. The
// access of the region is limited by the access mode of the target.
func (t *Target) MapDMI(region dmi.Region) {
	t.insertDMI(region)
}

// UnmapDMI revokes DMI for a range, both in the target and in the
// initiators bound to it.
func (t *Target) UnmapDMI(r dmi.Range) {
	t.dmiCache.Invalidate(r)
	t.InvalidateUpstream(r)
}

// InvalidateUpstream asks the initiators bound to the target to drop their
// DMI regions in the range.
func (t *Target) InvalidateUpstream(r dmi.Range) {
	for _, i := range t.initiators {
		i.InvalidateDMI(r)
	}
}

// SetLatencies changes the read and write latencies. All DMI regions are
// revoked, as they carry the old latencies.
func (t *Target) SetLatencies(read, write sim.VTimeInSec) {
	t.readLatency = read
	t.writeLatency = write
	t.UnmapDMI(FullRange)
}

// Latencies returns the read and write latencies.
func (t *Target) Latencies() (read, write sim.VTimeInSec) {
	return t.readLatency, t.writeLatency
}

// SetAccess changes what DMI may be used for. All DMI regions are revoked.
func (t *Target) SetAccess(a dmi.Access) {
	t.access = a
	t.UnmapDMI(FullRange)
}

// Access returns what DMI may be used for.
func (t *Target) Access() dmi.Access {
	return t.access
}

// SetDMIProvider makes p answer the DMI requests of the target.
func (t *Target) SetDMIProvider(p DMIProvider) {
	t.provider = p
}

// DMICache returns the regions that the target grants.
func (t *Target) DMICache() *dmi.Cache {
	return t.dmiCache
}

// Keeper returns the keeper that is charged when the caller does not
// provide one.
func (t *Target) Keeper() *timing.Keeper {
	return t.keeper
}

// BusWidth returns the width of the bus in bits.
func (t *Target) BusWidth() int {
	return t.busWidth
}

// Device returns the device behind the target.
func (t *Target) Device() Device {
	return t.device
}

// Initiators returns the initiators bound to the target.
func (t *Target) Initiators() []*Initiator {
	return t.initiators
}

func (t *Target) bind(i *Initiator) {
	for _, bound := range t.initiators {
		if bound == i {
			panic(fmt.Sprintf("%s is already bound to %s", i.Name(), t.Name()))
		}
	}

	t.initiators = append(t.initiators, i)
}
