// Package dmi implements the direct memory interface cache, which maps
// address ranges to windows of host memory so that accesses can bypass
// transaction dispatch.
package dmi

import "fmt"

// A Range is an inclusive address range. A range whose Start is greater than
// its End is empty.
type Range struct {
	Start uint64
	End   uint64
}

// MakeRange creates the range [start, end].
func MakeRange(start, end uint64) Range {
	return Range{Start: start, End: end}
}

// RangeOfSize creates the range that starts at start and covers size bytes.
// A zero size yields an empty range.
func RangeOfSize(start, size uint64) Range {
	if size == 0 {
		return Range{Start: 1, End: 0}
	}

	return Range{Start: start, End: start + size - 1}
}

// IsEmpty returns true if the range covers no address.
func (r Range) IsEmpty() bool {
	return r.Start > r.End
}

// Size returns the number of bytes the range covers. The full 64-bit space
// reports 0, as its size does not fit in a uint64.
func (r Range) Size() uint64 {
	if r.IsEmpty() {
		return 0
	}

	return r.End - r.Start + 1
}

// Contains tells if the address falls into the range.
func (r Range) Contains(addr uint64) bool {
	return addr >= r.Start && addr <= r.End
}

// Includes tells if o is fully inside r.
func (r Range) Includes(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}

	return o.Start >= r.Start && o.End <= r.End
}

// Overlaps tells if the two ranges share at least one address.
func (r Range) Overlaps(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}

	return r.Start <= o.End && o.Start <= r.End
}

// Adjacent tells if the two ranges touch without overlapping.
func (r Range) Adjacent(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}

	return (r.End != ^uint64(0) && r.End+1 == o.Start) ||
		(o.End != ^uint64(0) && o.End+1 == r.Start)
}

// Intersect returns the common part of the two ranges.
func (r Range) Intersect(o Range) (Range, bool) {
	if !r.Overlaps(o) {
		return Range{Start: 1, End: 0}, false
	}

	return Range{Start: max(r.Start, o.Start), End: min(r.End, o.End)}, true
}

// Translate moves the range from the address space where from is mapped to
// the address space where it appears at to.
func (r Range) Translate(from, to uint64) Range {
	return Range{Start: r.Start - from + to, End: r.End - from + to}
}

func (r Range) String() string {
	return fmt.Sprintf("0x%08x..0x%08x", r.Start, r.End)
}
