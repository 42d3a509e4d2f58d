package txn

// Builder can build transactions.
type Builder struct {
	id             string
	cmd            Command
	address        uint64
	data           []byte
	streamingWidth uint64
	byteEnable     []byte
}

// MakeBuilder returns a builder for an ignore transaction at address 0.
func MakeBuilder() Builder {
	return Builder{}
}

// WithID sets the ID of the transaction to build.
func (b Builder) WithID(id string) Builder {
	b.id = id
	return b
}

// WithCommand sets the command of the transaction to build.
func (b Builder) WithCommand(cmd Command) Builder {
	b.cmd = cmd
	return b
}

// WithAddress sets the address of the transaction to build.
func (b Builder) WithAddress(addr uint64) Builder {
	b.address = addr
	return b
}

// WithData sets the data buffer of the transaction to build.
func (b Builder) WithData(data []byte) Builder {
	b.data = data
	return b
}

// WithStreamingWidth sets the burst repeat unit of the transaction to build.
func (b Builder) WithStreamingWidth(width uint64) Builder {
	b.streamingWidth = width
	return b
}

// WithByteEnable sets the byte enable mask of the transaction to build.
func (b Builder) WithByteEnable(mask []byte) Builder {
	b.byteEnable = mask
	return b
}

// Build creates a new Transaction.
func (b Builder) Build() *Transaction {
	t := New(b.cmd, b.address, b.data)
	t.ID = b.id
	t.StreamingWidth = b.streamingWidth
	t.ByteEnable = b.byteEnable

	return t
}
