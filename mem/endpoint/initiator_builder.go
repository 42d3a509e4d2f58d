package endpoint

import (
	"fmt"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
	"github.com/sarchlab/vplat/timing"
)

// InitiatorBuilder can build initiators.
type InitiatorBuilder struct {
	clock    sim.TimeTeller
	quantum  *timing.Quantum
	keeper   *timing.Keeper
	busWidth int
	sideband txn.Sideband
	allowDMI bool
	idGen    sim.IDGenerator
}

// MakeInitiatorBuilder returns an InitiatorBuilder with default parameters.
func MakeInitiatorBuilder() InitiatorBuilder {
	return InitiatorBuilder{
		busWidth: 64,
		allowDMI: true,
	}
}

// WithClock sets the time teller of the keeper that the initiator creates.
func (b InitiatorBuilder) WithClock(clock sim.TimeTeller) InitiatorBuilder {
	b.clock = clock
	return b
}

// WithQuantum sets the quantum of the keeper that the initiator creates.
func (b InitiatorBuilder) WithQuantum(q *timing.Quantum) InitiatorBuilder {
	b.quantum = q
	return b
}

// WithKeeper sets the keeper that the initiator charges.
func (b InitiatorBuilder) WithKeeper(k *timing.Keeper) InitiatorBuilder {
	b.keeper = k
	return b
}

// WithBusWidth sets the bus width in bits.
func (b InitiatorBuilder) WithBusWidth(bits int) InitiatorBuilder {
	b.busWidth = bits
	return b
}

// WithSideband sets the sideband added to every access.
func (b InitiatorBuilder) WithSideband(sb txn.Sideband) InitiatorBuilder {
	b.sideband = sb
	return b
}

// WithDMI enables or disables the DMI cache.
func (b InitiatorBuilder) WithDMI(allow bool) InitiatorBuilder {
	b.allowDMI = allow
	return b
}

// WithIDGenerator sets the generator of transaction IDs.
func (b InitiatorBuilder) WithIDGenerator(g sim.IDGenerator) InitiatorBuilder {
	b.idGen = g
	return b
}

// Build creates an initiator with the given name.
func (b InitiatorBuilder) Build(name string) *Initiator {
	if b.busWidth <= 0 {
		panic(fmt.Sprintf("initiator %s has invalid bus width %d",
			name, b.busWidth))
	}

	i := &Initiator{
		keeper:   b.keeper,
		busWidth: b.busWidth,
		sideband: b.sideband,
		allowDMI: b.allowDMI,
		cache:    dmi.NewCache(),
		idGen:    b.idGen,
	}
	i.ComponentBase = sim.NewComponentBase(name)

	if i.keeper == nil {
		i.keeper = timing.NewKeeper(name+".Keeper", b.clock, b.quantum)
	}

	if i.idGen == nil {
		i.idGen = sim.NewSequentialIDGenerator()
	}

	return i
}
