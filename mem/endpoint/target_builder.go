package endpoint

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// TargetBuilder can build targets.
type TargetBuilder struct {
	engine       sim.EventScheduler
	quantum      *timing.Quantum
	keeper       *timing.Keeper
	device       Device
	offerer      DMIOfferer
	offererSet   bool
	busWidth     int
	readLatency  sim.VTimeInSec
	writeLatency sim.VTimeInSec
	access       dmi.Access
}

// MakeTargetBuilder returns a TargetBuilder with default parameters.
func MakeTargetBuilder() TargetBuilder {
	return TargetBuilder{
		busWidth: 64,
		access:   dmi.AccessReadWrite,
	}
}

// WithEngine sets the engine that resumes the processes waiting for the
// target.
func (b TargetBuilder) WithEngine(engine sim.EventScheduler) TargetBuilder {
	b.engine = engine
	return b
}

// WithQuantum sets the quantum of the keeper that the target creates.
func (b TargetBuilder) WithQuantum(q *timing.Quantum) TargetBuilder {
	b.quantum = q
	return b
}

// WithKeeper sets the keeper of the target.
func (b TargetBuilder) WithKeeper(k *timing.Keeper) TargetBuilder {
	b.keeper = k
	return b
}

// WithDevice sets the device that services the transactions.
func (b TargetBuilder) WithDevice(d Device) TargetBuilder {
	b.device = d
	return b
}

// WithDMIOfferer sets what grants DMI regions after successful accesses. By
// default, the device does if it implements DMIOfferer.
func (b TargetBuilder) WithDMIOfferer(o DMIOfferer) TargetBuilder {
	b.offerer = o
	b.offererSet = true

	return b
}

// WithoutDMIOfferer stops the target from granting regions on access.
func (b TargetBuilder) WithoutDMIOfferer() TargetBuilder {
	return b.WithDMIOfferer(nil)
}

// WithBusWidth sets the bus width in bits.
func (b TargetBuilder) WithBusWidth(bits int) TargetBuilder {
	b.busWidth = bits
	return b
}

// WithLatencies sets the latencies charged for each read and write.
func (b TargetBuilder) WithLatencies(read, write sim.VTimeInSec) TargetBuilder {
	b.readLatency = read
	b.writeLatency = write

	return b
}

// WithAccess sets what the DMI regions granted may be used for.
func (b TargetBuilder) WithAccess(a dmi.Access) TargetBuilder {
	b.access = a
	return b
}

// Build creates a target with the given name.
func (b TargetBuilder) Build(name string) *Target {
	if b.device == nil {
		panic(fmt.Sprintf("target %s has no device", name))
	}

	if b.busWidth <= 0 {
		panic(fmt.Sprintf("target %s has invalid bus width %d", name, b.busWidth))
	}

	t := &Target{
		engine:       b.engine,
		device:       b.device,
		busWidth:     b.busWidth,
		readLatency:  b.readLatency,
		writeLatency: b.writeLatency,
		access:       b.access,
		dmiCache:     dmi.NewCache(),
		free:         sim.NewSignal(b.engine),
	}
	t.ComponentBase = sim.NewComponentBase(name)
	t.cond = sync.NewCond(&t.lock)

	t.offerer = b.offerer
	if !b.offererSet {
		t.offerer, _ = b.device.(DMIOfferer)
	}

	t.keeper = b.keeper
	if t.keeper == nil {
		t.keeper = timing.NewKeeper(name+".Keeper", b.engine, b.quantum)
	}

	return t
}
