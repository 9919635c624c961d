package problems

import (
	"fmt"
	"math"
)

// Schwefel is a highly multimodal benchmark, minimized at
// (420.9687..., ...) with value 0.
type Schwefel struct {
	Dim int `json:"dim"`
}

// NewSchwefel builds the problem in dim dimensions.
func NewSchwefel(dim int) (*Schwefel, error) {
	if dim < 1 {
		return nil, fmt.Errorf("schwefel needs at least 1 dimension, got %d", dim)
	}
	return &Schwefel{Dim: dim}, nil
}

func (p *Schwefel) Name() string { return "Schwefel" }

func (p *Schwefel) NObj() int { return 1 }

func (p *Schwefel) Bounds() (lb, ub []float64) {
	lb = make([]float64, p.Dim)
	ub = make([]float64, p.Dim)
	for i := range lb {
		lb[i] = -500
		ub[i] = 500
	}
	return lb, ub
}

func (p *Schwefel) Fitness(x []float64) ([]float64, error) {
	sum := 0.0
	for _, xi := range x {
		sum += xi * math.Sin(math.Sqrt(math.Abs(xi)))
	}
	return []float64{418.9828872724338*float64(len(x)) - sum}, nil
}

// Sphere is the simplest convex benchmark, minimized at the origin.
type Sphere struct {
	Dim int `json:"dim"`
}

// NewSphere builds the problem in dim dimensions.
func NewSphere(dim int) (*Sphere, error) {
	if dim < 1 {
		return nil, fmt.Errorf("sphere needs at least 1 dimension, got %d", dim)
	}
	return &Sphere{Dim: dim}, nil
}

func (p *Sphere) Name() string { return "Sphere" }

func (p *Sphere) NObj() int { return 1 }

func (p *Sphere) Bounds() (lb, ub []float64) {
	lb = make([]float64, p.Dim)
	ub = make([]float64, p.Dim)
	for i := range lb {
		lb[i] = -5.12
		ub[i] = 5.12
	}
	return lb, ub
}

func (p *Sphere) Fitness(x []float64) ([]float64, error) {
	sum := 0.0
	for _, xi := range x {
		sum += xi * xi
	}
	return []float64{sum}, nil
}
