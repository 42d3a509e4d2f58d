package router

import (
	"context"
	"fmt"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// Builder can build routers.
type Builder struct {
	engine      sim.EventScheduler
	idGen       sim.IDGenerator
	numInPorts  int
	numOutPorts int
	busWidth    int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numInPorts:  1,
		numOutPorts: 1,
		busWidth:    64,
	}
}

// WithEngine sets the engine that serializes the processes using the in
// ports.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithIDGenerator sets the ID generator of the out ports.
func (b Builder) WithIDGenerator(g sim.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithNumInPorts sets the number of in ports.
func (b Builder) WithNumInPorts(n int) Builder {
	b.numInPorts = n
	return b
}

// WithNumOutPorts sets the number of out ports.
func (b Builder) WithNumOutPorts(n int) Builder {
	b.numOutPorts = n
	return b
}

// WithBusWidth sets the width of all the ports in bits.
func (b Builder) WithBusWidth(bits int) Builder {
	b.busWidth = bits
	return b
}

// Build creates a router with the given name.
func (b Builder) Build(name string) *Router {
	if b.numInPorts <= 0 || b.numOutPorts <= 0 {
		panic(fmt.Sprintf("router %s needs at least one in and one out port",
			name))
	}

	r := &Router{}
	r.ComponentBase = sim.NewComponentBase(name)

	device := endpoint.DeviceFunc(func(
		ctx context.Context, tx *txn.Transaction, sb txn.Sideband,
	) uint64 {
		return r.Route(ctx, tx, sb)
	})

	for i := 0; i < b.numInPorts; i++ {
		in := endpoint.MakeTargetBuilder().
			WithEngine(b.engine).
			WithDevice(device).
			WithoutDMIOfferer().
			WithBusWidth(b.busWidth).
			Build(fmt.Sprintf("%s.In%d", name, i))
		in.SetDMIProvider(r)
		r.inPorts = append(r.inPorts, in)
	}

	for i := 0; i < b.numOutPorts; i++ {
		port := i
		out := endpoint.MakeInitiatorBuilder().
			WithBusWidth(b.busWidth).
			WithDMI(false).
			WithIDGenerator(b.idGen).
			Build(fmt.Sprintf("%s.Out%d", name, i))
		out.OnInvalidate(func(rng dmi.Range) {
			r.invalidate(port, rng)
		})
		r.outPorts = append(r.outPorts, out)
	}

	return r
}
