package platform

import (
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// DefaultQuantum is the quantum used when none is given.
const DefaultQuantum sim.VTimeInSec = 1e-6

// Builder can build platforms.
type Builder struct {
	engine  sim.Engine
	quantum sim.VTimeInSec
	idGen   sim.IDGenerator
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		quantum: DefaultQuantum,
	}
}

// WithEngine sets the engine. By default, a SerialEngine is created.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithQuantum sets the global quantum.
func (b Builder) WithQuantum(q sim.VTimeInSec) Builder {
	b.quantum = q
	return b
}

// WithParallelIDGenerator generates transaction IDs that are unique across
// runs instead of sequential ones.
func (b Builder) WithParallelIDGenerator() Builder {
	b.idGen = sim.NewParallelIDGenerator()
	return b
}

// Build creates an empty platform.
func (b Builder) Build(name string) *Platform {
	sim.NameMustBeValid(name)

	p := &Platform{
		name:          name,
		engine:        b.engine,
		quantum:       timing.NewQuantum(b.quantum),
		idGen:         b.idGen,
		compNameIndex: make(map[string]int),
		targets:       make(map[string]*endpoint.Target),
	}

	if p.engine == nil {
		p.engine = sim.NewSerialEngine()
	}

	if p.idGen == nil {
		p.idGen = sim.NewSequentialIDGenerator()
	}

	return p
}
