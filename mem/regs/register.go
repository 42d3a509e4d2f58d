// Package regs models memory-mapped registers. Registers are handlers that
// are grouped in a Bank, which is the device of a peripheral's target.
package regs

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
)

// A Register is a little-endian value of 1, 2, 4, or 8 bytes.
type Register struct {
	name  string
	addr  uint64
	size  uint64
	init  uint64
	value uint64

	readOnly  bool
	writeOnly bool
	lockable  bool
	bank      *Bank

	readFunc  func(r *Register) uint64
	writeFunc func(r *Register, v uint64) uint64
}

// NewRegister creates a register at addr with an initial value.
func NewRegister(name string, addr uint64, size int, init uint64) *Register {
	switch size {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("register %s has unsupported size %d", name, size))
	}

	r := &Register{
		name: name,
		addr: addr,
		size: uint64(size),
	}
	r.init = r.truncate(init)
	r.value = r.init

	return r
}

func (r *Register) truncate(v uint64) uint64 {
	if r.size == 8 {
		return v
	}

	return v & (1<<(8*r.size) - 1)
}

// Name returns the name of the register.
func (r *Register) Name() string {
	return r.name
}

// Range returns the addresses that the register occupies.
func (r *Register) Range() dmi.Range {
	return dmi.RangeOfSize(r.addr, r.size)
}

// Get returns the stored value, without triggering the read callback.
func (r *Register) Get() uint64 {
	return r.value
}

// Set stores a value, without triggering the write callback.
func (r *Register) Set(v uint64) {
	r.value = r.truncate(v)
}

// SetReadOnly makes the register reject writes.
func (r *Register) SetReadOnly() *Register {
	r.readOnly = true
	return r
}

// SetWriteOnly makes the register reject reads.
func (r *Register) SetWriteOnly() *Register {
	r.writeOnly = true
	return r
}

// SetLockable makes the register reject writes while its bank is locked.
func (r *Register) SetLockable() *Register {
	r.lockable = true
	return r
}

// OnRead sets a callback that provides the value returned by reads.
func (r *Register) OnRead(fn func(r *Register) uint64) *Register {
	r.readFunc = fn
	return r
}

// OnWrite sets a callback that receives written values and returns the
// value to store.
func (r *Register) OnWrite(fn func(r *Register, v uint64) uint64) *Register {
	r.writeFunc = fn
	return r
}

func (r *Register) isLocked() bool {
	return r.lockable && r.bank != nil && r.bank.IsLocked()
}

// Decode services the bytes of the transaction that fall into the
// register. Partial accesses are supported.
func (r *Register) Decode(
	_ context.Context,
	tx *txn.Transaction,
	_ txn.Sideband,
) uint64 {
	if _, ok := endpoint.Overlap(tx, r.Range()); !ok {
		return 0
	}

	switch tx.Command {
	case txn.CommandRead:
		return r.decodeRead(tx)
	case txn.CommandWrite:
		return r.decodeWrite(tx)
	}

	tx.SetStatus(txn.StatusOK)

	return 0
}

func (r *Register) decodeRead(tx *txn.Transaction) uint64 {
	if r.writeOnly {
		tx.SetStatus(txn.StatusCommandError)
		return 0
	}

	v := r.value
	if r.readFunc != nil {
		v = r.truncate(r.readFunc(r))
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	n := r.eachOwnedByte(tx, func(offset uint64, b *byte) {
		*b = buf[offset]
	})

	tx.SetStatus(txn.StatusOK)

	return n
}

func (r *Register) decodeWrite(tx *txn.Transaction) uint64 {
	if r.readOnly || r.isLocked() {
		tx.SetStatus(txn.StatusCommandError)
		return 0
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], r.value)

	n := r.eachOwnedByte(tx, func(offset uint64, b *byte) {
		buf[offset] = *b
	})

	v := binary.LittleEndian.Uint64(buf[:])
	if r.writeFunc != nil {
		v = r.writeFunc(r, v)
	}

	r.value = r.truncate(v)
	tx.SetStatus(txn.StatusOK)

	return n
}

func (r *Register) eachOwnedByte(
	tx *txn.Transaction,
	fn func(offset uint64, b *byte),
) uint64 {
	rng := r.Range()
	n := uint64(0)

	endpoint.ForEachAccess(tx, func(addr uint64, data []byte) bool {
		for i := range data {
			a := addr + uint64(i)
			if rng.Contains(a) {
				fn(a-r.addr, &data[i])
				n++
			}
		}

		return true
	})

	return n
}
