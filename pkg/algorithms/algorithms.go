// Package algorithms provides built-in user-defined algorithms. All are
// size-preserving and are registered for serialization from init.
package algorithms

import (
	"math/rand/v2"

	"github.com/pelago/pelago/pkg/algorithm"
)

func init() {
	algorithm.Register("DE", func() algorithm.UDA { return &DE{} })
	algorithm.Register("PSO", func() algorithm.UDA { return &PSO{} })
	algorithm.Register("NSGA-II", func() algorithm.UDA { return &NSGAII{} })
}

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
