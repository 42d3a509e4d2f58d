package txn

import (
	"fmt"
	"strings"
)

// Sideband carries out-of-band information about an access. Flags occupy the
// low bits, the core id and the privilege level are packed above them.
type Sideband uint64

// Sideband flags.
const (
	SidebandDebug Sideband = 1 << iota
	SidebandNoDMI
	SidebandSync
	SidebandInsn
	SidebandExcl
	SidebandLock
)

// SidebandNone carries no information.
const SidebandNone Sideband = 0

const (
	sidebandFlagMask Sideband = 1<<6 - 1

	coreIDShift = 16
	coreIDBits  = 16
	coreIDMask  = Sideband(1<<coreIDBits-1) << coreIDShift

	privShift = 32
	privBits  = 8
	privMask  = Sideband(1<<privBits-1) << privShift
)

// MaxCoreID is the largest core id a sideband can carry.
const MaxCoreID = 1<<coreIDBits - 1

// MaxPrivilege is the largest privilege level a sideband can carry.
const MaxPrivilege = 1<<privBits - 1

// Has returns true if all the bits of flag are set.
func (s Sideband) Has(flag Sideband) bool {
	return s&flag == flag
}

// Or merges two sidebands.
func (s Sideband) Or(o Sideband) Sideband {
	return s | o
}

// And keeps what both sidebands have in common.
func (s Sideband) And(o Sideband) Sideband {
	return s & o
}

// Without clears the given flags.
func (s Sideband) Without(flag Sideband) Sideband {
	return s &^ (flag & sidebandFlagMask)
}

// IsDebug tells if the access must not have side effects on timing.
func (s Sideband) IsDebug() bool { return s.Has(SidebandDebug) }

// IsNoDMI tells if the access must not use or create DMI regions.
func (s Sideband) IsNoDMI() bool { return s.Has(SidebandNoDMI) }

// IsSync tells if the access requires a synchronization first.
func (s Sideband) IsSync() bool { return s.Has(SidebandSync) }

// IsInsn tells if the access is an instruction fetch.
func (s Sideband) IsInsn() bool { return s.Has(SidebandInsn) }

// IsExcl tells if the access is exclusive.
func (s Sideband) IsExcl() bool { return s.Has(SidebandExcl) }

// IsLock tells if the access locks the bus.
func (s Sideband) IsLock() bool { return s.Has(SidebandLock) }

// CoreID returns the id of the core that issued the access.
func (s Sideband) CoreID() int {
	return int((s & coreIDMask) >> coreIDShift)
}

// WithCoreID returns a copy of the sideband tagged with the given core id.
func (s Sideband) WithCoreID(id int) Sideband {
	if id < 0 || id > MaxCoreID {
		panic(fmt.Sprintf("core id %d out of range", id))
	}

	return s&^coreIDMask | Sideband(id)<<coreIDShift
}

// Privilege returns the privilege level of the access.
func (s Sideband) Privilege() int {
	return int((s & privMask) >> privShift)
}

// WithPrivilege returns a copy of the sideband with the given privilege
// level.
func (s Sideband) WithPrivilege(level int) Sideband {
	if level < 0 || level > MaxPrivilege {
		panic(fmt.Sprintf("privilege level %d out of range", level))
	}

	return s&^privMask | Sideband(level)<<privShift
}

func (s Sideband) String() string {
	var flags []string

	names := []struct {
		flag Sideband
		name string
	}{
		{SidebandDebug, "debug"},
		{SidebandNoDMI, "nodmi"},
		{SidebandSync, "sync"},
		{SidebandInsn, "insn"},
		{SidebandExcl, "excl"},
		{SidebandLock, "lock"},
	}

	for _, n := range names {
		if s.Has(n.flag) {
			flags = append(flags, n.name)
		}
	}

	return fmt.Sprintf("[%s] cpu=%d priv=%d",
		strings.Join(flags, ","), s.CoreID(), s.Privilege())
}
