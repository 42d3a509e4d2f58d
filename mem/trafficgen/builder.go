package trafficgen

import (
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// Builder can build traffic generators.
type Builder struct {
	engine   sim.Engine
	quantum  *timing.Quantum
	idGen    sim.IDGenerator
	busWidth int
	requests []Request
	think    sim.VTimeInSec
	sideband txn.Sideband
	allowDMI bool
	verify   bool
	startAt  sim.VTimeInSec
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		busWidth: 64,
		allowDMI: true,
	}
}

// WithEngine sets the engine that runs the generator.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithQuantum sets the quantum that the generator synchronizes against.
func (b Builder) WithQuantum(q *timing.Quantum) Builder {
	b.quantum = q
	return b
}

// WithIDGenerator sets the generator of transaction IDs.
func (b Builder) WithIDGenerator(g sim.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithBusWidth sets the bus width of the initiator in bits.
func (b Builder) WithBusWidth(bits int) Builder {
	b.busWidth = bits
	return b
}

// WithRequests sets the requests to issue.
func (b Builder) WithRequests(reqs []Request) Builder {
	b.requests = reqs
	return b
}

// WithThinkTime sets the local time spent before each request.
func (b Builder) WithThinkTime(d sim.VTimeInSec) Builder {
	b.think = d
	return b
}

// WithSideband sets the sideband of the requests.
func (b Builder) WithSideband(sb txn.Sideband) Builder {
	b.sideband = sb
	return b
}

// WithDMI enables or disables DMI for the initiator.
func (b Builder) WithDMI(allow bool) Builder {
	b.allowDMI = allow
	return b
}

// WithVerification makes the generator check that reads return the data
// that it wrote before.
func (b Builder) WithVerification() Builder {
	b.verify = true
	return b
}

// WithStartTime sets when the generator starts.
func (b Builder) WithStartTime(t sim.VTimeInSec) Builder {
	b.startAt = t
	return b
}

// Build creates a generator with the given name.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("traffic generator " + name + " needs an engine")
	}

	c := &Comp{
		engine:   b.engine,
		requests: b.requests,
		think:    b.think,
		sideband: b.sideband,
		verify:   b.verify,
		startAt:  b.startAt,
		shadow:   make(map[uint64]byte),
	}
	c.ComponentBase = sim.NewComponentBase(name)

	c.initiator = endpoint.MakeInitiatorBuilder().
		WithClock(b.engine).
		WithQuantum(b.quantum).
		WithIDGenerator(b.idGen).
		WithBusWidth(b.busWidth).
		WithDMI(b.allowDMI).
		Build(name + ".Init")
	c.process = sim.NewProcess(name+".Proc", b.engine, c.run)

	return c
}
