package trafficgen

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/txn"
)

// A Request is one access that a generator issues.
type Request struct {
	Command txn.Command
	Address uint64
	Size    int
}

func (r Request) String() string {
	return fmt.Sprintf("%s 0x%08x [%d]", r.Command, r.Address, r.Size)
}

// RandomRequests creates n aligned accesses of the given size inside rng. A
// fraction readRatio of them are reads.
func RandomRequests(
	seed int64,
	n int,
	rng dmi.Range,
	size int,
	readRatio float64,
) []Request {
	if size <= 0 || uint64(size) > rng.Size() {
		panic(fmt.Sprintf("cannot fit %d-byte accesses in %s", size, rng))
	}

	r := rand.New(rand.NewSource(seed))
	slots := rng.Size() / uint64(size)
	out := make([]Request, n)

	for i := range out {
		cmd := txn.CommandWrite
		if r.Float64() < readRatio {
			cmd = txn.CommandRead
		}

		out[i] = Request{
			Command: cmd,
			Address: rng.Start + uint64(r.Int63n(int64(slots)))*uint64(size),
			Size:    size,
		}
	}

	return out
}
