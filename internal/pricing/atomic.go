package pricing

import (
	"math"
	"sync/atomic"
)

// atomic64 stores a float64 as its bit pattern so a price swap is a
// single atomic write.
type atomic64 struct {
	bits atomic.Uint64
}

func (a *atomic64) load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomic64) store(v float64) {
	a.bits.Store(math.Float64bits(v))
}
