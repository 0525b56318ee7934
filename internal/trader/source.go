package trader

import (
	"math/rand/v2"
)

// Source is the randomness a strategy draws from. *rand.Rand satisfies it, so
// a seeded generator makes every run replayable.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// NewSource returns a PCG generator seeded from seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// intBetween draws uniformly from [lo, hi]. An empty range collapses to lo.
func intBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// globalSource draws from the math/rand/v2 top-level generator. Used when a
// strategy is built without an explicit Source; such runs are not replayable.
type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

func orGlobal(src Source) Source {
	if src == nil {
		return globalSource{}
	}
	return src
}
