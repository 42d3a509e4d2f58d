package sim

import (
	"fmt"
	"sync"
)

// A CriticalSection arbitrates between the goroutine that drives the engine
// and goroutines that live outside of the simulation (I/O backends, monitors,
// GUIs). While a Holder is inside the section, the engine cannot dispatch
// events.
//
// The section is reentrant per Holder: nested Enter calls are counted and the
// section is released when the matching number of Exit calls is made. Waiting
// holders are served in arrival order.
type CriticalSection struct {
	lock sync.Mutex
	cond *sync.Cond

	owner *Holder
	depth int

	nextTicket uint64
	serving    uint64
}

// NewCriticalSection creates a CriticalSection that nobody holds.
func NewCriticalSection() *CriticalSection {
	cs := &CriticalSection{}
	cs.cond = sync.NewCond(&cs.lock)

	return cs
}

// A Holder identifies one party that can enter a CriticalSection. Each
// goroutine that needs the section should use its own Holder.
type Holder struct {
	name string
	cs   *CriticalSection
}

// NewHolder creates a new party that can enter the section.
func (cs *CriticalSection) NewHolder(name string) *Holder {
	return &Holder{name: name, cs: cs}
}

// Name returns the name of the holder.
func (h *Holder) Name() string {
	return h.name
}

// Enter blocks until the holder owns the section.
func (h *Holder) Enter() {
	cs := h.cs

	cs.lock.Lock()
	defer cs.lock.Unlock()

	if cs.owner == h {
		cs.depth++
		return
	}

	ticket := cs.nextTicket
	cs.nextTicket++

	for cs.owner != nil || cs.serving != ticket {
		cs.cond.Wait()
	}

	cs.serving++
	cs.owner = h
	cs.depth = 1
}

// Exit leaves the section once. The section is released when every Enter has
// been matched.
func (h *Holder) Exit() {
	cs := h.cs

	cs.lock.Lock()
	defer cs.lock.Unlock()

	if cs.owner != h {
		panic(fmt.Sprintf(
			"holder %s exits a critical section that it does not own", h.name))
	}

	cs.depth--
	if cs.depth > 0 {
		return
	}

	cs.owner = nil
	cs.cond.Broadcast()
}

// Do runs fn inside the section.
func (h *Holder) Do(fn func()) {
	h.Enter()
	defer h.Exit()

	fn()
}

// Owner returns the name of the current owner, or an empty string if the
// section is free.
func (cs *CriticalSection) Owner() string {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	if cs.owner == nil {
		return ""
	}

	return cs.owner.name
}

// Depth returns how many times the current owner has entered the section.
func (cs *CriticalSection) Depth() int {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	return cs.depth
}
