// Package ram provides a memory device that can be accessed through a
// target and that grants DMI to its whole content.
package ram

import (
	"context"
	"sync/atomic"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
)

// Comp is a RAM (or, if read-only, a ROM) component.
type Comp struct {
	*endpoint.Target

	Storage *Storage

	readOnly   bool
	numDecodes atomic.Uint64
}

// Dispatch services a transaction from the storage.
func (c *Comp) Dispatch(
	_ context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	c.numDecodes.Add(1)

	if st := tx.Validate(); !st.IsOK() {
		tx.SetStatus(st)
		return 0
	}

	if tx.IsWrite() && c.readOnly && !sb.IsDebug() {
		tx.SetStatus(txn.StatusCommandError)
		return 0
	}

	n := uint64(0)
	status := txn.StatusOK

	endpoint.ForEachAccess(tx, func(addr uint64, data []byte) bool {
		var err error

		switch tx.Command {
		case txn.CommandRead:
			err = c.Storage.Read(addr, data)
		case txn.CommandWrite:
			err = c.Storage.Write(addr, data)
		default:
			if !c.Storage.Contains(addr, uint64(len(data))) {
				status = txn.StatusAddressError
				return false
			}
		}

		if err != nil {
			status = txn.StatusAddressError
			return false
		}

		n += uint64(len(data))

		return true
	})

	tx.SetStatus(status)

	return n
}

// OfferDMI grants DMI to the whole storage.
func (c *Comp) OfferDMI(_ *txn.Transaction) (dmi.Region, bool) {
	return dmi.NewRegion(0, c.Storage.Bytes(), c.dmiAccess()), true
}

func (c *Comp) dmiAccess() dmi.Access {
	if c.readOnly {
		return dmi.AccessRead
	}

	return dmi.AccessReadWrite
}

// IsReadOnly tells if the memory rejects writes.
func (c *Comp) IsReadOnly() bool {
	return c.readOnly
}

// NumDecodes returns how many transactions reached the device. Accesses
// served by DMI are not counted.
func (c *Comp) NumDecodes() uint64 {
	return c.numDecodes.Load()
}
