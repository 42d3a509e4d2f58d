// Package router provides a bus that forwards transactions from its in
// ports to its out ports according to an address map.
package router

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// A Router decodes the address of each transaction and forwards it to the
// out port that the address is mapped to.
type Router struct {
	*sim.ComponentBase

	inPorts      []*endpoint.Target
	outPorts     []*endpoint.Initiator
	mappings     []Mapping
	defaultRoute *Mapping
}

// InPort returns the i-th in port. Initiators connect to it.
func (r *Router) InPort(i int) *endpoint.Target {
	return r.inPorts[i]
}

// OutPort returns the i-th out port. It connects to a target.
func (r *Router) OutPort(i int) *endpoint.Initiator {
	return r.outPorts[i]
}

// NumInPorts returns the number of in ports.
func (r *Router) NumInPorts() int {
	return len(r.inPorts)
}

// NumOutPorts returns the number of out ports.
func (r *Router) NumOutPorts() int {
	return len(r.outPorts)
}

// Map routes the range rng to the out port. It panics if the range overlaps
// with an existing mapping. An empty peer is replaced by the name of the
// target that the out port is bound to, if any.
func (r *Router) Map(port int, rng dmi.Range, offset uint64, peer string) {
	r.mustBeValidPort(port)

	if rng.IsEmpty() {
		panic(fmt.Sprintf("%s: cannot map empty range %s", r.Name(), rng))
	}

	m := Mapping{
		Port:   port,
		Range:  rng,
		Offset: offset,
		Peer:   r.peerName(port, peer),
	}

	for _, existing := range r.mappings {
		if existing.Range.Overlaps(rng) {
			panic(fmt.Sprintf("%s: mapping %s overlaps with mapping %s",
				r.Name(), m, existing))
		}
	}

	r.mappings = append(r.mappings, m)
}

// MapDefault routes all the addresses that no mapping claims to the out
// port. The downstream address is addr + offset.
func (r *Router) MapDefault(port int, offset uint64, peer string) {
	r.mustBeValidPort(port)

	if r.defaultRoute != nil {
		panic(fmt.Sprintf("%s: default route is already mapped to %s",
			r.Name(), r.defaultRoute.Peer))
	}

	r.defaultRoute = &Mapping{
		Port:      port,
		Range:     endpoint.FullRange,
		Offset:    offset,
		Peer:      r.peerName(port, peer),
		isDefault: true,
	}
}

func (r *Router) mustBeValidPort(port int) {
	if port < 0 || port >= len(r.outPorts) {
		panic(fmt.Sprintf("%s: out port %d does not exist", r.Name(), port))
	}
}

func (r *Router) peerName(port int, peer string) string {
	if peer != "" {
		return peer
	}

	if t := r.outPorts[port].Target(); t != nil {
		return t.Name()
	}

	return r.outPorts[port].Name()
}

// Mappings returns the mappings sorted by start address. The default route
// is not included.
func (r *Router) Mappings() []Mapping {
	out := make([]Mapping, len(r.mappings))
	copy(out, r.mappings)

	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.Start < out[j].Range.Start
	})

	return out
}

// DefaultRoute returns the default route, if there is one.
func (r *Router) DefaultRoute() (Mapping, bool) {
	if r.defaultRoute == nil {
		return Mapping{}, false
	}

	return *r.defaultRoute, true
}

// Dump writes the address map, one mapping per line, sorted by start
// address, as "N: START..END -> [OFFSET..OFFSET+LEN-1] PEER". The default
// route, if any, follows on a "default:" line.
func (r *Router) Dump(w io.Writer) error {
	for i, m := range r.Mappings() {
		if _, err := fmt.Fprintf(w, "%d: %s\n", i, m); err != nil {
			return err
		}
	}

	if r.defaultRoute != nil {
		_, err := fmt.Fprintf(w, "default: +%08x %s\n",
			r.defaultRoute.Offset, r.defaultRoute.Peer)
		if err != nil {
			return err
		}
	}

	return nil
}

// Reset drops all the mappings and revokes the DMI regions granted through
// the router.
func (r *Router) Reset() {
	r.mappings = nil
	r.defaultRoute = nil

	for _, in := range r.inPorts {
		in.UnmapDMI(endpoint.FullRange)
	}
}

// lookup finds the mapping that covers the whole range.
func (r *Router) lookup(span dmi.Range) (Mapping, bool) {
	for _, m := range r.mappings {
		if m.Range.Includes(span) {
			return m, true
		}

		if m.Range.Overlaps(span) {
			return Mapping{}, false
		}
	}

	if r.defaultRoute != nil && !span.IsEmpty() {
		return *r.defaultRoute, true
	}

	return Mapping{}, false
}

// Route forwards a transaction. The address of the transaction is the same
// on return, whatever the outcome.
func (r *Router) Route(
	ctx context.Context,
	tx *txn.Transaction,
	sb txn.Sideband,
) uint64 {
	m, ok := r.lookup(endpoint.Span(tx))
	if !ok {
		tx.SetStatus(txn.StatusAddressError)
		return 0
	}

	addr := tx.Address
	tx.Address = m.ToDownstream(addr)
	n := r.outPorts[m.Port].Send(ctx, tx, sb)
	tx.Address = addr

	return n
}

// ProvideDMI asks the target behind the mapping for a DMI region and
// returns the part of it that is visible through the mapping, in upstream
// addresses.
func (r *Router) ProvideDMI(
	in *endpoint.Target,
	tx *txn.Transaction,
) (dmi.Region, bool) {
	m, ok := r.lookup(endpoint.Span(tx))
	if !ok {
		return dmi.Region{}, false
	}

	down := r.outPorts[m.Port].Target()
	if down == nil {
		return dmi.Region{}, false
	}

	addr := tx.Address
	tx.Address = m.ToDownstream(addr)
	region, ok := down.DMI(tx)
	tx.Address = addr

	if !ok {
		return dmi.Region{}, false
	}

	if !m.isDefault {
		region, ok = region.Clip(m.Window())
		if !ok {
			return dmi.Region{}, false
		}

		region = region.Translate(m.Offset, m.Range.Start)
	} else if m.Offset != 0 {
		region, ok = region.Clip(dmi.MakeRange(m.Offset, ^uint64(0)))
		if !ok {
			return dmi.Region{}, false
		}

		region = region.Translate(m.Offset, 0)
	}

	region.Access &= in.Access()
	if region.Access == dmi.AccessNone {
		return dmi.Region{}, false
	}

	return region, true
}

// invalidate translates a downstream range that the target behind the out
// port revoked, and forwards it to the initiators of every in port.
func (r *Router) invalidate(port int, down dmi.Range) {
	for _, m := range r.mappings {
		if m.Port != port {
			continue
		}

		sub, ok := down.Intersect(m.Window())
		if !ok {
			continue
		}

		r.broadcastInvalidation(sub.Translate(m.Offset, m.Range.Start))
	}

	if r.defaultRoute != nil && r.defaultRoute.Port == port {
		r.broadcastInvalidation(endpoint.FullRange)
	}
}

func (r *Router) broadcastInvalidation(up dmi.Range) {
	for _, in := range r.inPorts {
		in.InvalidateUpstream(up)
	}
}
