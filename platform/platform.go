// Package platform assembles memories, routers and traffic generators into a
// runnable virtual platform and owns the objects that the components share:
// the engine, the quantum and the ID generator.
package platform

import (
	"fmt"
	"sort"

	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/ram"
	"github.com/sarchlab/vplat/mem/router"
	"github.com/sarchlab/vplat/mem/trafficgen"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
	"github.com/sarchlab/vplat/tracing"
)

// A Platform holds everything that a simulation needs.
type Platform struct {
	name    string
	engine  sim.Engine
	quantum *timing.Quantum
	idGen   sim.IDGenerator

	components    []sim.Component
	compNameIndex map[string]int
	targets       map[string]*endpoint.Target
	targetNames   []string
	routers       []*router.Router
	generators    []*trafficgen.Comp

	teardowns []func()
	tornDown  bool
}

// Name returns the name of the platform.
func (p *Platform) Name() string {
	return p.name
}

// Engine returns the engine that runs the platform.
func (p *Platform) Engine() sim.Engine {
	return p.engine
}

// Quantum returns the quantum shared by all components.
func (p *Platform) Quantum() *timing.Quantum {
	return p.quantum
}

// IDGenerator returns the generator of transaction IDs.
func (p *Platform) IDGenerator() sim.IDGenerator {
	return p.idGen
}

// RegisterComponent adds a component. Names must be unique.
func (p *Platform) RegisterComponent(c sim.Component) {
	name := c.Name()
	if _, found := p.compNameIndex[name]; found {
		panic("component " + name + " already registered")
	}

	p.components = append(p.components, c)
	p.compNameIndex[name] = len(p.components) - 1

	switch c := c.(type) {
	case *router.Router:
		p.routers = append(p.routers, c)
		for i := 0; i < c.NumInPorts(); i++ {
			p.registerTarget(c.InPort(i))
		}
	case *trafficgen.Comp:
		p.generators = append(p.generators, c)
	case *ram.Comp:
		p.registerTarget(c.Target)
	case *endpoint.Target:
		p.registerTarget(c)
	}
}

func (p *Platform) registerTarget(t *endpoint.Target) {
	if _, found := p.targets[t.Name()]; found {
		panic("target " + t.Name() + " already registered")
	}

	p.targets[t.Name()] = t
	p.targetNames = append(p.targetNames, t.Name())
}

// Component returns the component with the given name.
func (p *Platform) Component(name string) (sim.Component, bool) {
	i, found := p.compNameIndex[name]
	if !found {
		return nil, false
	}

	return p.components[i], true
}

// Components returns the components in registration order.
func (p *Platform) Components() []sim.Component {
	return append([]sim.Component(nil), p.components...)
}

// Target returns the target with the given name. Router in ports are named
// after the router, e.g., "Bus.In0".
func (p *Platform) Target(name string) (*endpoint.Target, bool) {
	t, found := p.targets[name]
	return t, found
}

// Targets returns all the targets sorted by name.
func (p *Platform) Targets() []*endpoint.Target {
	names := append([]string(nil), p.targetNames...)
	sort.Strings(names)

	out := make([]*endpoint.Target, 0, len(names))
	for _, n := range names {
		out = append(out, p.targets[n])
	}

	return out
}

// Routers returns the routers in registration order.
func (p *Platform) Routers() []*router.Router {
	return append([]*router.Router(nil), p.routers...)
}

// Generators returns the traffic generators in registration order.
func (p *Platform) Generators() []*trafficgen.Comp {
	return append([]*trafficgen.Comp(nil), p.generators...)
}

// CollectTrace attaches the tracer to every target.
func (p *Platform) CollectTrace(tracer tracing.Tracer) {
	for _, t := range p.Targets() {
		tracing.CollectTrace(t, tracer)
	}
}

// OnTeardown registers a function to run when the platform is torn down.
// The functions run in the reverse order of registration.
func (p *Platform) OnTeardown(fn func()) {
	p.teardowns = append(p.teardowns, fn)
}

// Teardown runs the teardown functions. Calling it more than once has no
// effect.
func (p *Platform) Teardown() {
	if p.tornDown {
		return
	}

	p.tornDown = true

	for i := len(p.teardowns) - 1; i >= 0; i-- {
		p.teardowns[i]()
	}
}

// Run starts every traffic generator and runs the engine until no event is
// left.
func (p *Platform) Run() error {
	for _, g := range p.generators {
		g.Start()
	}

	if err := p.engine.Run(); err != nil {
		return fmt.Errorf("running platform %s: %w", p.name, err)
	}

	p.engine.Finished()

	for _, g := range p.generators {
		if !g.Done() {
			return fmt.Errorf("generator %s did not finish", g.Name())
		}
	}

	return nil
}
