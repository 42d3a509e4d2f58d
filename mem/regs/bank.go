package regs

import (
	"context"
	"fmt"

	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
)

// A Bank is a device made of registers. Accesses that hit no register are
// handled by the raw accessor of the bank, if any.
type Bank struct {
	dispatcher *endpoint.Dispatcher
	registers  []*Register
	byName     map[string]*Register
	locked     bool
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		dispatcher: endpoint.NewDispatcher(),
		byName:     make(map[string]*Register),
	}
}

// Add places a register in the bank. It panics if the register overlaps
// with another one or if its name is taken.
func (b *Bank) Add(r *Register) *Register {
	if _, found := b.byName[r.name]; found {
		panic(fmt.Sprintf("register %s already exists", r.name))
	}

	if r.bank != nil {
		panic(fmt.Sprintf("register %s is already in a bank", r.name))
	}

	b.dispatcher.Register(r.Range(), r)
	r.bank = b
	b.registers = append(b.registers, r)
	b.byName[r.name] = r

	return r
}

// Register finds a register by name.
func (b *Bank) Register(name string) (*Register, bool) {
	r, ok := b.byName[name]
	return r, ok
}

// Registers returns the registers in the order they were added.
func (b *Bank) Registers() []*Register {
	return b.registers
}

// SetRaw sets the accessor of the addresses that hit no register.
func (b *Bank) SetRaw(raw endpoint.RawAccessor) {
	b.dispatcher.SetRaw(raw)
}

// Lock makes the lockable registers reject writes.
func (b *Bank) Lock() {
	b.locked = true
}

// Unlock allows writes to the lockable registers again.
func (b *Bank) Unlock() {
	b.locked = false
}

// IsLocked tells if the bank is locked.
func (b *Bank) IsLocked() bool {
	return b.locked
}

// Dispatch forwards the transaction to the registers it touches.
func (b *Bank) Dispatch(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	return b.dispatcher.Dispatch(ctx, tx, sb)
}

// Reset restores the initial value of every register.
func (b *Bank) Reset() {
	for _, r := range b.registers {
		r.value = r.init
	}
}
