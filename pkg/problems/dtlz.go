package problems

import (
	"fmt"
	"math"
)

// DTLZ1 is scalable to any number of objectives. It has a linear Pareto
// front and many local fronts. Recommended dim = nobj + 4.
type DTLZ1 struct {
	Dim  int `json:"dim"`
	Nobj int `json:"nobj"`
}

// NewDTLZ1 builds the problem with dim decision variables and nobj objectives.
func NewDTLZ1(dim, nobj int) (*DTLZ1, error) {
	if nobj < 2 {
		return nil, fmt.Errorf("dtlz1 needs at least 2 objectives, got %d", nobj)
	}
	if dim < nobj {
		return nil, fmt.Errorf("dtlz1 needs at least %d dimensions for %d objectives, got %d", nobj, nobj, dim)
	}
	return &DTLZ1{Dim: dim, Nobj: nobj}, nil
}

func (p *DTLZ1) Name() string { return "DTLZ1" }

func (p *DTLZ1) NObj() int { return p.Nobj }

func (p *DTLZ1) Bounds() (lb, ub []float64) {
	return unitBounds(p.Dim)
}

func (p *DTLZ1) g(x []float64) float64 {
	k := p.Dim - p.Nobj + 1
	sum := 0.0
	for i := p.Nobj - 1; i < p.Dim; i++ {
		sum += math.Pow(x[i]-0.5, 2) - math.Cos(20*math.Pi*(x[i]-0.5))
	}
	return 100 * (float64(k) + sum)
}

func (p *DTLZ1) Fitness(x []float64) ([]float64, error) {
	g := p.g(x)
	f := make([]float64, p.Nobj)
	for obj := 0; obj < p.Nobj; obj++ {
		v := 0.5 * (1 + g)
		for i := 0; i < p.Nobj-obj-1; i++ {
			v *= x[i]
		}
		if obj > 0 {
			v *= 1 - x[p.Nobj-obj-1]
		}
		f[obj] = v
	}
	return f, nil
}

// DTLZ2 is scalable to any number of objectives, with a spherical Pareto
// front at g(x) = 0.
type DTLZ2 struct {
	Dim  int `json:"dim"`
	Nobj int `json:"nobj"`
}

// NewDTLZ2 builds the problem with dim decision variables and nobj objectives.
func NewDTLZ2(dim, nobj int) (*DTLZ2, error) {
	if nobj < 2 {
		return nil, fmt.Errorf("dtlz2 needs at least 2 objectives, got %d", nobj)
	}
	if dim < nobj {
		return nil, fmt.Errorf("dtlz2 needs at least %d dimensions for %d objectives, got %d", nobj, nobj, dim)
	}
	return &DTLZ2{Dim: dim, Nobj: nobj}, nil
}

func (p *DTLZ2) Name() string { return "DTLZ2" }

func (p *DTLZ2) NObj() int { return p.Nobj }

func (p *DTLZ2) Bounds() (lb, ub []float64) {
	return unitBounds(p.Dim)
}

func (p *DTLZ2) g(x []float64) float64 {
	sum := 0.0
	for i := p.Nobj - 1; i < p.Dim; i++ {
		sum += math.Pow(x[i]-0.5, 2)
	}
	return sum
}

func (p *DTLZ2) Fitness(x []float64) ([]float64, error) {
	g := p.g(x)
	f := make([]float64, p.Nobj)
	for obj := 0; obj < p.Nobj; obj++ {
		v := 1 + g
		for i := 0; i < p.Nobj-obj-1; i++ {
			v *= math.Cos(x[i] * math.Pi / 2)
		}
		if obj > 0 {
			v *= math.Sin(x[p.Nobj-obj-1] * math.Pi / 2)
		}
		f[obj] = v
	}
	return f, nil
}

func unitBounds(dim int) (lb, ub []float64) {
	lb = make([]float64, dim)
	ub = make([]float64, dim)
	for i := range ub {
		ub[i] = 1
	}
	return lb, ub
}
