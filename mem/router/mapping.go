package router

import (
	"fmt"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
)

// A Mapping routes an upstream address range to an out port. The
// downstream address is addr - Range.Start + Offset.
type Mapping struct {
	Port   int
	Range  dmi.Range
	Offset uint64
	Peer   string

	isDefault bool
}

// IsDefault tells if the mapping is the default route.
func (m Mapping) IsDefault() bool {
	return m.isDefault
}

// ToDownstream translates an upstream address.
func (m Mapping) ToDownstream(addr uint64) uint64 {
	return addr - m.Range.Start + m.Offset
}

// ToUpstream translates a downstream address.
func (m Mapping) ToUpstream(addr uint64) uint64 {
	return addr - m.Offset + m.Range.Start
}

// Window returns the downstream range that the mapping reaches.
func (m Mapping) Window() dmi.Range {
	if m.isDefault {
		return endpoint.FullRange
	}

	return dmi.RangeOfSize(m.Offset, m.Range.Size())
}

func (m Mapping) String() string {
	w := m.Window()

	return fmt.Sprintf("%08x..%08x -> [%08x..%08x] %s",
		m.Range.Start, m.Range.End, w.Start, w.End, m.Peer)
}
