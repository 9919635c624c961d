package problems

import "fmt"

// Rosenbrock is the classic banana-valley benchmark, minimized at
// (1, ..., 1) with value 0.
type Rosenbrock struct {
	Dim int `json:"dim"`
}

// NewRosenbrock builds the problem in dim dimensions (dim >= 2).
func NewRosenbrock(dim int) (*Rosenbrock, error) {
	if dim < 2 {
		return nil, fmt.Errorf("rosenbrock needs at least 2 dimensions, got %d", dim)
	}
	return &Rosenbrock{Dim: dim}, nil
}

func (p *Rosenbrock) Name() string { return "Rosenbrock" }

func (p *Rosenbrock) NObj() int { return 1 }

func (p *Rosenbrock) Bounds() (lb, ub []float64) {
	lb = make([]float64, p.Dim)
	ub = make([]float64, p.Dim)
	for i := range lb {
		lb[i] = -5
		ub[i] = 10
	}
	return lb, ub
}

func (p *Rosenbrock) Fitness(x []float64) ([]float64, error) {
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		sum += 100*(x[i+1]-x[i]*x[i])*(x[i+1]-x[i]*x[i]) + (1-x[i])*(1-x[i])
	}
	return []float64{sum}, nil
}

func (p *Rosenbrock) Gradient(x []float64) ([]float64, error) {
	n := len(x)
	g := make([]float64, n)
	for i := 0; i < n-1; i++ {
		g[i] += -400*x[i]*(x[i+1]-x[i]*x[i]) - 2*(1-x[i])
		g[i+1] += 200 * (x[i+1] - x[i]*x[i])
	}
	return g, nil
}
