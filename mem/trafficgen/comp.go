// Package trafficgen provides a component that issues a list of memory
// accesses from a simulated process, synchronizing with the engine whenever
// its local time exceeds the quantum.
package trafficgen

import (
	"context"
	"log"
	"sync"

	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// Stats summarizes what a generator did.
type Stats struct {
	Reads      uint64
	Writes     uint64
	Errors     uint64
	Mismatches uint64
	Bytes      uint64
	FinishedAt sim.VTimeInSec
}

// Comp issues requests through its initiator.
type Comp struct {
	*sim.ComponentBase

	engine    sim.Engine
	initiator *endpoint.Initiator
	process   *sim.Process
	requests  []Request
	think     sim.VTimeInSec
	sideband  txn.Sideband
	verify    bool
	startAt   sim.VTimeInSec

	lock   sync.Mutex
	stats  Stats
	shadow map[uint64]byte
}

// Initiator returns the initiator to connect to a target.
func (c *Comp) Initiator() *endpoint.Initiator {
	return c.initiator
}

// Start schedules the generator to run.
func (c *Comp) Start() {
	c.process.StartAt(c.startAt)
}

// Done tells if all the requests have been issued.
func (c *Comp) Done() bool {
	return c.process.Done()
}

// Stats returns a snapshot of the statistics.
func (c *Comp) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.stats
}

func (c *Comp) run(ctx context.Context) {
	keeper := c.initiator.Keeper()

	for _, req := range c.requests {
		keeper.Advance(c.think)

		data := make([]byte, req.Size)
		if req.Command == txn.CommandWrite {
			fillPattern(req.Address, data)
		}

		status := c.initiator.Access(ctx, req.Command, req.Address, data,
			c.sideband)
		c.record(req, data, status)
	}

	keeper.Sync(ctx)

	c.lock.Lock()
	c.stats.FinishedAt = c.engine.CurrentTime()
	c.lock.Unlock()
}

func (c *Comp) record(req Request, data []byte, status txn.Status) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if req.Command == txn.CommandRead {
		c.stats.Reads++
	} else {
		c.stats.Writes++
	}

	if !status.IsOK() {
		c.stats.Errors++
		log.Printf("%s: %s failed with %s", c.Name(), req, status)

		return
	}

	c.stats.Bytes += uint64(len(data))

	if !c.verify {
		return
	}

	for i, b := range data {
		addr := req.Address + uint64(i)

		if req.Command == txn.CommandWrite {
			c.shadow[addr] = b
			continue
		}

		if expected, ok := c.shadow[addr]; ok && expected != b {
			c.stats.Mismatches++
			return
		}
	}
}

func fillPattern(addr uint64, data []byte) {
	for i := range data {
		a := addr + uint64(i)
		data[i] = byte(a ^ a>>8)
	}
}
