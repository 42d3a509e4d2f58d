package dmi

import (
	"fmt"
	"unsafe"

	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// Access describes what a DMI region may be used for.
type Access int

// Access rights.
const (
	AccessNone  Access = 0
	AccessRead  Access = 1 << 0
	AccessWrite Access = 1 << 1

	AccessReadWrite = AccessRead | AccessWrite
)

// Permits tells if a command can use a region with this access. The ignore
// command is always permitted.
func (a Access) Permits(cmd txn.Command) bool {
	switch cmd {
	case txn.CommandRead:
		return a&AccessRead != 0
	case txn.CommandWrite:
		return a&AccessWrite != 0
	}

	return true
}

func (a Access) String() string {
	switch a {
	case AccessNone:
		return "none"
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	}

	return "unknown"
}

// A Region grants direct access to host memory. Mem[0] backs Range.Start and
// len(Mem) equals Range.Size().
type Region struct {
	Range

	Mem          []byte
	Access       Access
	ReadLatency  sim.VTimeInSec
	WriteLatency sim.VTimeInSec
}

// NewRegion creates a region covering mem, starting at the given address.
func NewRegion(start uint64, mem []byte, access Access) Region {
	if len(mem) == 0 {
		panic("a DMI region must cover at least one byte")
	}

	return Region{
		Range:  RangeOfSize(start, uint64(len(mem))),
		Mem:    mem,
		Access: access,
	}
}

// WithLatencies returns a copy of the region that charges the given
// latencies on each access.
func (r Region) WithLatencies(read, write sim.VTimeInSec) Region {
	r.ReadLatency = read
	r.WriteLatency = write

	return r
}

// Latency returns the time it costs to perform cmd through the region.
func (r Region) Latency(cmd txn.Command) sim.VTimeInSec {
	switch cmd {
	case txn.CommandRead:
		return r.ReadLatency
	case txn.CommandWrite:
		return r.WriteLatency
	}

	return 0
}

// Bytes returns the window of memory that backs sub. It panics if sub is not
// inside the region.
func (r Region) Bytes(sub Range) []byte {
	if !r.Includes(sub) {
		panic(fmt.Sprintf("range %s is outside of DMI region %s", sub, r.Range))
	}

	r.mustBeConsistent()

	return r.Mem[sub.Start-r.Start : sub.End-r.Start+1]
}

// Clip shrinks the region to the part inside window.
func (r Region) Clip(window Range) (Region, bool) {
	sub, ok := r.Intersect(window)
	if !ok {
		return Region{}, false
	}

	return r.sub(sub), true
}

// Translate moves the region to the address space where from appears at to.
// The memory is unchanged.
func (r Region) Translate(from, to uint64) Region {
	r.Range = r.Range.Translate(from, to)
	return r
}

func (r Region) sub(s Range) Region {
	r.mustBeConsistent()

	lo := s.Start - r.Start
	hi := s.End - r.Start + 1

	out := r
	out.Range = s
	out.Mem = r.Mem[lo:hi]

	return out
}

func (r Region) mustBeConsistent() {
	if uint64(len(r.Mem)) != r.Size() {
		panic(fmt.Sprintf("DMI region %s is backed by %d bytes",
			r.Range, len(r.Mem)))
	}
}

func (r Region) sameAttributes(o Region) bool {
	return r.Access == o.Access &&
		r.ReadLatency == o.ReadLatency &&
		r.WriteLatency == o.WriteLatency
}

func memAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// merge returns the union of two regions if they have the same attributes,
// touch or overlap, and are backed by the same contiguous memory.
func merge(a, b Region) (Region, bool) {
	if !a.sameAttributes(b) {
		return Region{}, false
	}

	if !a.Overlaps(b.Range) && !a.Adjacent(b.Range) {
		return Region{}, false
	}

	lo, hi := a, b
	if b.Start < a.Start {
		lo, hi = b, a
	}

	if memAddr(lo.Mem)+uintptr(hi.Start-lo.Start) != memAddr(hi.Mem) {
		return Region{}, false
	}

	end := max(lo.End, hi.End)
	size := end - lo.Start + 1

	// Both windows are slices of the same backing array only if lo can be
	// extended over hi.
	if uint64(cap(lo.Mem)) < size {
		return Region{}, false
	}

	out := lo
	out.Range = Range{Start: lo.Start, End: end}
	out.Mem = lo.Mem[:size]

	return out, true
}

func (r Region) String() string {
	return fmt.Sprintf("%s (%s)", r.Range, r.Access)
}
