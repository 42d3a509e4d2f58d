// Package timing implements temporal decoupling. Components run ahead of
// the engine in a local time offset and synchronize once the offset exceeds
// a shared quantum.
package timing

import (
	"log"
	"sync"

	"github.com/sarchlab/vplat/sim"
)

// A Quantum is the amount of time that a component may run ahead of the
// engine before it has to synchronize. It is shared by all the keepers of a
// platform and can be changed while the simulation runs.
type Quantum struct {
	lock  sync.RWMutex
	value sim.VTimeInSec
}

// NewQuantum creates a quantum with the given value.
func NewQuantum(value sim.VTimeInSec) *Quantum {
	q := &Quantum{}
	q.Set(value)

	return q
}

// Get returns the current value.
func (q *Quantum) Get() sim.VTimeInSec {
	q.lock.RLock()
	defer q.lock.RUnlock()

	return q.value
}

// Set changes the value.
func (q *Quantum) Set(value sim.VTimeInSec) {
	if value < 0 {
		log.Panicf("quantum cannot be negative, got %.10f", value)
	}

	q.lock.Lock()
	q.value = value
	q.lock.Unlock()
}
