package txn

import "fmt"

// A Transaction describes one memory access. The Address is local to the
// component that currently handles the transaction; routers rewrite it on the
// way down and restore it on the way back.
type Transaction struct {
	ID      string
	Command Command
	Address uint64
	Data    []byte

	// StreamingWidth is the repeat unit of a burst. Zero means the whole
	// buffer is streamed in one pass.
	StreamingWidth uint64

	// ByteEnable is optional. When present, byte i takes part in the access
	// only if ByteEnable[i%len(ByteEnable)] is non-zero. A non-nil empty mask
	// is malformed.
	ByteEnable []byte

	Status Status

	// DMIAllowed is set by the servicing component if a direct memory
	// interface can be requested for the accessed range.
	DMIAllowed bool
}

// New creates a transaction that has not been serviced yet.
func New(cmd Command, addr uint64, data []byte) *Transaction {
	return &Transaction{
		Command: cmd,
		Address: addr,
		Data:    data,
	}
}

// Reset reuses the transaction for a new access.
func (t *Transaction) Reset(cmd Command, addr uint64, data []byte) {
	*t = Transaction{
		Command: cmd,
		Address: addr,
		Data:    data,
	}
}

// Length returns the number of bytes in the data buffer.
func (t *Transaction) Length() uint64 {
	return uint64(len(t.Data))
}

// Width returns the effective streaming width.
func (t *Transaction) Width() uint64 {
	if t.StreamingWidth == 0 {
		return t.Length()
	}

	return t.StreamingWidth
}

// Start returns the first address the transaction touches.
func (t *Transaction) Start() uint64 {
	return t.Address
}

// End returns the last address the transaction touches. Bursts revisit the
// same Width() bytes, so the span never exceeds one streaming pass.
func (t *Transaction) End() uint64 {
	w := t.Width()
	if w == 0 {
		return t.Address
	}

	return t.Address + w - 1
}

// IsRead returns true for read transactions.
func (t *Transaction) IsRead() bool {
	return t.Command == CommandRead
}

// IsWrite returns true for write transactions.
func (t *Transaction) IsWrite() bool {
	return t.Command == CommandWrite
}

// IsOK returns true if the transaction completed successfully.
func (t *Transaction) IsOK() bool {
	return t.Status == StatusOK
}

// SetStatus records the result of the transaction.
func (t *Transaction) SetStatus(s Status) {
	t.Status = s
}

// HasByteEnable tells if the transaction carries a byte enable mask.
func (t *Transaction) HasByteEnable() bool {
	return t.ByteEnable != nil
}

// ByteEnabled reports whether the i-th byte of the buffer takes part in the
// access.
func (t *Transaction) ByteEnabled(i uint64) bool {
	if len(t.ByteEnable) == 0 {
		return true
	}

	return t.ByteEnable[i%uint64(len(t.ByteEnable))] != 0
}

// Validate checks the shape of the transaction. It returns StatusOK or the
// error status that describes what is wrong.
func (t *Transaction) Validate() Status {
	if t.ByteEnable != nil && len(t.ByteEnable) == 0 {
		return StatusByteEnableError
	}

	length := t.Length()
	width := t.Width()

	if width == 0 || width > length || length%width != 0 {
		return StatusBurstError
	}

	return StatusOK
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s 0x%08x [%d bytes] (%s)",
		t.Command, t.Address, t.Length(), t.Status)
}
