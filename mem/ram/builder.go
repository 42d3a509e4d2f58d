package ram

import (
	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// Builder can build RAM components.
type Builder struct {
	engine       sim.EventScheduler
	quantum      *timing.Quantum
	capacity     uint64
	storage      *Storage
	busWidth     int
	readLatency  sim.VTimeInSec
	writeLatency sim.VTimeInSec
	access       dmi.Access
	readOnly     bool
	dmiDisabled  bool
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity: 4096,
		busWidth: 64,
		access:   dmi.AccessReadWrite,
	}
}

// WithEngine sets the engine that the target of the RAM uses.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithQuantum sets the quantum of the keeper of the RAM.
func (b Builder) WithQuantum(q *timing.Quantum) Builder {
	b.quantum = q
	return b
}

// WithNewStorage sets the capacity of the storage to create.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithStorage sets the storage of the RAM.
func (b Builder) WithStorage(s *Storage) Builder {
	b.storage = s
	return b
}

// WithBusWidth sets the bus width in bits.
func (b Builder) WithBusWidth(bits int) Builder {
	b.busWidth = bits
	return b
}

// WithLatencies sets the time each read and write takes.
func (b Builder) WithLatencies(read, write sim.VTimeInSec) Builder {
	b.readLatency = read
	b.writeLatency = write

	return b
}

// WithAccess sets what the DMI regions of the RAM may be used for.
func (b Builder) WithAccess(a dmi.Access) Builder {
	b.access = a
	return b
}

// WithReadOnly makes the RAM reject normal writes. Debug writes still go
// through, so that images can be loaded.
func (b Builder) WithReadOnly() Builder {
	b.readOnly = true
	return b
}

// WithoutDMI stops the RAM from granting DMI.
func (b Builder) WithoutDMI() Builder {
	b.dmiDisabled = true
	return b
}

// Build creates a RAM with the given name.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		Storage:  b.storage,
		readOnly: b.readOnly,
	}

	if c.Storage == nil {
		c.Storage = NewStorage(b.capacity)
	}

	tb := endpoint.MakeTargetBuilder().
		WithEngine(b.engine).
		WithQuantum(b.quantum).
		WithDevice(c).
		WithBusWidth(b.busWidth).
		WithLatencies(b.readLatency, b.writeLatency).
		WithAccess(b.access)

	if b.dmiDisabled {
		tb = tb.WithoutDMIOfferer()
	}

	c.Target = tb.Build(name)

	return c
}
