package timing

import (
	"context"
	"log"
	"sync"

	"github.com/sarchlab/vplat/sim"
)

// A Keeper tracks how far a component runs ahead of the engine.
type Keeper struct {
	name    string
	clock   sim.TimeTeller
	quantum *Quantum

	lock  sync.Mutex
	local sim.VTimeInSec
}

// NewKeeper creates a keeper. A nil quantum means the keeper never requests
// synchronization on its own. A nil clock makes Now report the local offset
// only.
func NewKeeper(name string, clock sim.TimeTeller, quantum *Quantum) *Keeper {
	return &Keeper{
		name:    name,
		clock:   clock,
		quantum: quantum,
	}
}

// Name returns the name of the keeper.
func (k *Keeper) Name() string {
	return k.name
}

// Quantum returns the quantum that the keeper synchronizes against.
func (k *Keeper) Quantum() *Quantum {
	return k.quantum
}

// Local returns the time that the component is ahead of the engine.
func (k *Keeper) Local() sim.VTimeInSec {
	k.lock.Lock()
	defer k.lock.Unlock()

	return k.local
}

// Advance moves the local time forward.
func (k *Keeper) Advance(d sim.VTimeInSec) {
	if d < 0 {
		log.Panicf("keeper %s cannot advance by a negative time", k.name)
	}

	k.lock.Lock()
	k.local += d
	k.lock.Unlock()
}

// Now returns the time as seen by the component, i.e., the engine time plus
// the local offset.
func (k *Keeper) Now() sim.VTimeInSec {
	local := k.Local()
	if k.clock == nil {
		return local
	}

	return k.clock.CurrentTime() + local
}

// NeedSync tells if the local time has exceeded the quantum.
func (k *Keeper) NeedSync() bool {
	if k.quantum == nil {
		return false
	}

	return k.Local() > k.quantum.Get()
}

// Sync hands the local time back to the engine. If ctx carries a process,
// the process waits for the local time; otherwise the offset is dropped.
func (k *Keeper) Sync(ctx context.Context) {
	k.lock.Lock()
	d := k.local
	k.local = 0
	k.lock.Unlock()

	if d == 0 {
		return
	}

	if p, ok := sim.ProcessFromContext(ctx); ok {
		p.Wait(d)
	}
}

// SyncIfNeeded calls Sync if the quantum is exceeded and reports whether it
// did.
func (k *Keeper) SyncIfNeeded(ctx context.Context) bool {
	if !k.NeedSync() {
		return false
	}

	k.Sync(ctx)

	return true
}

// Reset drops the local offset without waiting.
func (k *Keeper) Reset() {
	k.lock.Lock()
	k.local = 0
	k.lock.Unlock()
}
