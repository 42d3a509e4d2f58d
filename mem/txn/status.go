package txn

// Command is the kind of access a transaction performs.
type Command int

// The commands a transaction can carry.
const (
	CommandIgnore Command = iota
	CommandRead
	CommandWrite
)

func (c Command) String() string {
	switch c {
	case CommandIgnore:
		return "ignore"
	case CommandRead:
		return "read"
	case CommandWrite:
		return "write"
	}

	return "unknown"
}

// Status is the result of a transaction.
type Status int

// StatusIncomplete must never be observed by the caller once a transaction
// returns.
const (
	StatusIncomplete Status = iota
	StatusOK
	StatusAddressError
	StatusCommandError
	StatusBurstError
	StatusByteEnableError
)

func (s Status) String() string {
	switch s {
	case StatusIncomplete:
		return "incomplete"
	case StatusOK:
		return "ok"
	case StatusAddressError:
		return "address error"
	case StatusCommandError:
		return "command error"
	case StatusBurstError:
		return "burst error"
	case StatusByteEnableError:
		return "byte enable error"
	}

	return "unknown"
}

// IsOK returns true if the status reports success.
func (s Status) IsOK() bool {
	return s == StatusOK
}

// IsError returns true if the status reports a failure.
func (s Status) IsError() bool {
	return s != StatusOK && s != StatusIncomplete
}
