package problems

import (
	"fmt"
	"math"
)

// ZDT1 is a benchmark function used to test the correctness of
// multi-objective algorithms. It has a convex Pareto front at g(x) = 1.
// For more details, check the article below:
// https://datacrayon.com/practical-evolutionary-algorithms/synthetic-objective-functions-and-zdt1/
type ZDT1 struct {
	Dim int `json:"dim"`
}

// NewZDT1 builds the problem with dim decision variables (dim >= 2).
func NewZDT1(dim int) (*ZDT1, error) {
	if dim < 2 {
		return nil, fmt.Errorf("zdt1 needs at least 2 dimensions, got %d", dim)
	}
	return &ZDT1{Dim: dim}, nil
}

func (p *ZDT1) Name() string { return "ZDT1" }

func (p *ZDT1) NObj() int { return 2 }

func (p *ZDT1) Bounds() (lb, ub []float64) {
	lb = make([]float64, p.Dim)
	ub = make([]float64, p.Dim)
	for i := range ub {
		ub[i] = 1
	}
	return lb, ub
}

func (p *ZDT1) Fitness(x []float64) ([]float64, error) {
	g := 1.0
	for i := 1; i < len(x); i++ {
		g += 9.0 * x[i] / float64(len(x)-1)
	}
	return []float64{x[0], g * (1.0 - math.Sqrt(x[0]/g))}, nil
}

// TrueParetoFront generates numPoints points on the true Pareto front.
func (p *ZDT1) TrueParetoFront(numPoints int) [][]float64 {
	points := make([][]float64, numPoints)
	for i := 0; i < numPoints; i++ {
		x := float64(i) / float64(numPoints-1)
		points[i] = []float64{x, 1.0 - math.Sqrt(x)}
	}
	return points
}
