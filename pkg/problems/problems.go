// Package problems provides built-in user-defined problems: classic
// single-objective benchmarks, multi-objective test suites and meta-problems
// that wrap other problems. All are registered for serialization from init.
package problems

import (
	"github.com/pelago/pelago/pkg/problem"
)

// TrueFronter is implemented by benchmark problems whose true Pareto front is
// known in closed form. It returns numPoints points on the front.
type TrueFronter interface {
	TrueParetoFront(numPoints int) [][]float64
}

func init() {
	problem.Register("Rosenbrock", func() problem.UDP { return &Rosenbrock{} })
	problem.Register("Schwefel", func() problem.UDP { return &Schwefel{} })
	problem.Register("Sphere", func() problem.UDP { return &Sphere{} })
	problem.Register("ZDT1", func() problem.UDP { return &ZDT1{} })
	problem.Register("DTLZ1", func() problem.UDP { return &DTLZ1{} })
	problem.Register("DTLZ2", func() problem.UDP { return &DTLZ2{} })
	problem.Register("translate", func() problem.UDP { return &Translate{} })
	problem.Register("cached", func() problem.UDP { return &Cached{} })
}
