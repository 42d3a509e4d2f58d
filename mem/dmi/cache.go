package dmi

import (
	"sync"

	"github.com/sarchlab/vplat/mem/txn"
)

// A Cache keeps the DMI regions known to one endpoint. Regions in a cache
// never overlap.
type Cache struct {
	lock    sync.RWMutex
	regions []Region
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Insert adds a region. Regions that can be merged with it are absorbed.
// Parts of other regions that overlap with it are dropped.
func (c *Cache) Insert(r Region) {
	if r.IsEmpty() {
		return
	}

	r.mustBeConsistent()

	c.lock.Lock()
	defer c.lock.Unlock()

	c.insert(r)
}

func (c *Cache) insert(r Region) {
	for i, e := range c.regions {
		merged, ok := merge(e, r)
		if !ok {
			continue
		}

		c.regions = append(c.regions[:i], c.regions[i+1:]...)
		c.insert(merged)

		return
	}

	c.invalidate(r.Range)
	c.regions = append(c.regions, r)
}

// Invalidate removes the given range from all the regions. Regions that
// partially overlap with it are split.
func (c *Cache) Invalidate(rng Range) {
	if rng.IsEmpty() {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.invalidate(rng)
}

func (c *Cache) invalidate(rng Range) {
	kept := c.regions[:0:0]

	for _, e := range c.regions {
		if !e.Overlaps(rng) {
			kept = append(kept, e)
			continue
		}

		if e.Start < rng.Start {
			kept = append(kept, e.sub(Range{Start: e.Start, End: rng.Start - 1}))
		}

		if e.End > rng.End {
			kept = append(kept, e.sub(Range{Start: rng.End + 1, End: e.End}))
		}
	}

	c.regions = kept
}

// Lookup finds a region that covers rng and that can serve cmd.
func (c *Cache) Lookup(rng Range, cmd txn.Command) (Region, bool) {
	if rng.IsEmpty() {
		return Region{}, false
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	for _, e := range c.regions {
		if e.Includes(rng) && e.Access.Permits(cmd) {
			return e, true
		}
	}

	return Region{}, false
}

// Regions returns a copy of the regions in the cache.
func (c *Cache) Regions() []Region {
	c.lock.RLock()
	defer c.lock.RUnlock()

	out := make([]Region, len(c.regions))
	copy(out, c.regions)

	return out
}

// Len returns the number of regions in the cache.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.regions)
}

// Clear drops all the regions.
func (c *Cache) Clear() {
	c.lock.Lock()
	c.regions = nil
	c.lock.Unlock()
}
