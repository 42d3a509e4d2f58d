package platform

import (
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/ram"
	"github.com/sarchlab/vplat/mem/router"
	"github.com/sarchlab/vplat/mem/trafficgen"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// Build creates the platform described by the configuration. A nil engine
// is replaced by a new SerialEngine.
func Build(cfg *Config, engine sim.Engine) (*Platform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := MakeBuilder().
		WithEngine(engine).
		WithQuantum(cfg.Quantum.Seconds()).
		Build(cfg.Name)

	if cfg.Verbose {
		p.engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	for _, m := range cfg.Memories {
		p.RegisterComponent(buildMemory(p, m))
	}

	routers := make([]*router.Router, 0, len(cfg.Routers))
	for _, rc := range cfg.Routers {
		r := router.MakeBuilder().
			WithEngine(p.engine).
			WithIDGenerator(p.idGen).
			WithNumInPorts(rc.InPorts).
			WithNumOutPorts(len(rc.Outputs)).
			WithBusWidth(rc.BusWidth).
			Build(rc.Name)
		p.RegisterComponent(r)
		p.OnTeardown(r.Reset)
		routers = append(routers, r)
	}

	for i, rc := range cfg.Routers {
		connectRouter(p, routers[i], rc)
	}

	for _, gc := range cfg.Generators {
		g := buildGenerator(p, gc)
		p.RegisterComponent(g)
		endpoint.Connect(g.Initiator(), p.targets[gc.Target])

		if cfg.Verbose {
			logInvalidations(g.Initiator())
		}
	}

	return p, nil
}

func buildMemory(p *Platform, m MemoryConfig) *ram.Comp {
	access, _ := ParseAccess(m.Access)

	b := ram.MakeBuilder().
		WithEngine(p.engine).
		WithQuantum(p.quantum).
		WithNewStorage(uint64(m.Size)).
		WithBusWidth(m.BusWidth).
		WithLatencies(m.ReadLatency.Seconds(), m.WriteLatency.Seconds()).
		WithAccess(access)

	if m.ReadOnly {
		b = b.WithReadOnly()
	}

	if m.NoDMI {
		b = b.WithoutDMI()
	}

	return b.Build(m.Name)
}

func connectRouter(p *Platform, r *router.Router, rc RouterConfig) {
	for i, out := range rc.Outputs {
		endpoint.Connect(r.OutPort(i), p.targets[out])
	}

	for _, m := range rc.Mappings {
		if m.Default {
			r.MapDefault(m.Port, uint64(m.Offset), "")
			continue
		}

		r.Map(m.Port, m.Range(), uint64(m.Offset), "")
	}
}

func buildGenerator(p *Platform, gc GeneratorConfig) *trafficgen.Comp {
	reqs := trafficgen.RandomRequests(
		gc.Seed,
		gc.Count,
		dmi.RangeOfSize(uint64(gc.Start), uint64(gc.Size)),
		gc.AccessSize,
		gc.ReadRatio,
	)

	b := trafficgen.MakeBuilder().
		WithEngine(p.engine).
		WithQuantum(p.quantum).
		WithIDGenerator(p.idGen).
		WithBusWidth(gc.BusWidth).
		WithRequests(reqs).
		WithThinkTime(gc.Think.Seconds()).
		WithSideband(txn.SidebandNone).
		WithDMI(!gc.NoDMI).
		WithStartTime(gc.StartAt.Seconds())

	if gc.Verify {
		b = b.WithVerification()
	}

	return b.Build(gc.Name)
}

func logInvalidations(i *endpoint.Initiator) {
	i.OnInvalidate(func(r dmi.Range) {
		log.Printf("%s: DMI invalidated %s", i.Name(), r)
	})
}
