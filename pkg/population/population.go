// Package population holds sets of candidate solutions: decision vectors,
// their fitness vectors and per-individual identities, tied to the problem
// that evaluates them and to a seeded random stream.
package population

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/problem"
)

// Individual couples one decision vector with its fitness and a unique ID.
type Individual struct {
	ID uuid.UUID `json:"id"`
	X  []float64 `json:"x"`
	F  []float64 `json:"f"`
}

func (ind Individual) clone() Individual {
	return Individual{
		ID: ind.ID,
		X:  append([]float64(nil), ind.X...),
		F:  append([]float64(nil), ind.F...),
	}
}

// Population is an ordered set of individuals owned by a problem.
// Invariant: every decision vector has the problem's dimension and every
// fitness vector has the problem's fitness dimension.
//
// A Population is not safe for concurrent mutation; islands guard it with
// their own lock.
type Population struct {
	prob *problem.Problem
	inds []Individual
	seed uint64
	rng  *rand.Rand
}

// New builds a population of size random individuals with a random seed.
func New(prob *problem.Problem, size int) (*Population, error) {
	return NewSeeded(prob, size, rand.Uint64())
}

// NewSeeded builds a population of size individuals drawn uniformly within
// the problem bounds from the given seed. Two populations built from the same
// problem, size and seed are identical.
func NewSeeded(prob *problem.Problem, size int, seed uint64) (*Population, error) {
	if prob == nil {
		return nil, fmt.Errorf("%w: nil problem", framework.ErrInvalidArgument)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative population size %d", framework.ErrInvalidArgument, size)
	}
	pop := &Population{
		prob: prob,
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
	lb, ub := prob.Bounds()
	xs := make([][]float64, size)
	for i := range xs {
		x := make([]float64, prob.Dim())
		for j := range x {
			x[j] = lb[j] + pop.rng.Float64()*(ub[j]-lb[j])
		}
		xs[i] = x
	}
	fs, err := prob.FitnessBatch(xs)
	if err != nil {
		return nil, err
	}
	pop.inds = make([]Individual, size)
	for i := range xs {
		pop.inds[i] = Individual{ID: uuid.New(), X: xs[i], F: fs[i]}
	}
	return pop, nil
}

// Size is the number of individuals.
func (pop *Population) Size() int { return len(pop.inds) }

// Seed is the seed the random stream was built from.
func (pop *Population) Seed() uint64 { return pop.seed }

// Problem returns the owning problem.
func (pop *Population) Problem() *problem.Problem { return pop.prob }

// Rand exposes the population's random stream.
func (pop *Population) Rand() *rand.Rand { return pop.rng }

// Get returns a copy of the i-th individual.
func (pop *Population) Get(i int) (Individual, error) {
	if i < 0 || i >= len(pop.inds) {
		return Individual{}, fmt.Errorf("%w: individual index %d out of range [0, %d)",
			framework.ErrInvalidArgument, i, len(pop.inds))
	}
	return pop.inds[i].clone(), nil
}

// X returns a copy of the i-th decision vector. It panics if i is out of
// range; use Get for a checked lookup.
func (pop *Population) X(i int) []float64 { return append([]float64(nil), pop.inds[i].X...) }

// F returns a copy of the i-th fitness vector. It panics if i is out of
// range; use Get for a checked lookup.
func (pop *Population) F(i int) []float64 { return append([]float64(nil), pop.inds[i].F...) }

// ID returns the i-th individual's identity. It panics if i is out of range;
// use Get for a checked lookup.
func (pop *Population) ID(i int) uuid.UUID { return pop.inds[i].ID }

// Push evaluates x and appends it as a new individual.
func (pop *Population) Push(x []float64) error {
	f, err := pop.prob.Fitness(x)
	if err != nil {
		return err
	}
	pop.inds = append(pop.inds, Individual{
		ID: uuid.New(),
		X:  append([]float64(nil), x...),
		F:  f,
	})
	return nil
}

// SetX replaces the i-th decision vector, re-evaluating its fitness.
// The individual keeps its ID.
func (pop *Population) SetX(i int, x []float64) error {
	f, err := pop.prob.Fitness(x)
	if err != nil {
		return err
	}
	return pop.SetXF(i, x, f)
}

// SetXF replaces the i-th decision and fitness vectors after re-validating
// both lengths. The individual keeps its ID.
func (pop *Population) SetXF(i int, x, f []float64) error {
	if i < 0 || i >= len(pop.inds) {
		return fmt.Errorf("%w: individual index %d out of range [0, %d)",
			framework.ErrInvalidArgument, i, len(pop.inds))
	}
	if len(x) != pop.prob.Dim() {
		return fmt.Errorf("%w: decision vector has length %d, expected %d",
			framework.ErrInvalidArgument, len(x), pop.prob.Dim())
	}
	if len(f) != pop.prob.FDim() {
		return fmt.Errorf("%w: fitness vector has length %d, expected %d",
			framework.ErrInvalidArgument, len(f), pop.prob.FDim())
	}
	pop.inds[i].X = append([]float64(nil), x...)
	pop.inds[i].F = append([]float64(nil), f...)
	return nil
}

// Front returns copies of all fitness vectors, in individual order.
func (pop *Population) Front() [][]float64 {
	fs := make([][]float64, len(pop.inds))
	for i := range pop.inds {
		fs[i] = append([]float64(nil), pop.inds[i].F...)
	}
	return fs
}

// Champion returns the best individual of a single-objective, unconstrained
// population.
func (pop *Population) Champion() (Individual, error) {
	if pop.prob.FDim() != 1 {
		return Individual{}, fmt.Errorf("%w: champion is defined only for single-objective unconstrained problems, fitness dimension is %d",
			framework.ErrInvalidArgument, pop.prob.FDim())
	}
	if len(pop.inds) == 0 {
		return Individual{}, fmt.Errorf("%w: empty population has no champion", framework.ErrInvalidArgument)
	}
	f0 := make([]float64, len(pop.inds))
	for i := range pop.inds {
		f0[i] = pop.inds[i].F[0]
	}
	return pop.inds[floats.MinIdx(f0)].clone(), nil
}

// Clone returns a deep copy of the individuals sharing the problem reference.
// The clone's random stream restarts from the seed.
func (pop *Population) Clone() *Population {
	cp := &Population{
		prob: pop.prob,
		seed: pop.seed,
		rng:  rand.New(rand.NewPCG(pop.seed, pop.seed)),
		inds: make([]Individual, len(pop.inds)),
	}
	for i := range pop.inds {
		cp.inds[i] = pop.inds[i].clone()
	}
	return cp
}

func (pop *Population) String() string {
	var b strings.Builder
	b.WriteString(pop.prob.String())
	fmt.Fprintf(&b, "Population size: %d\n", pop.Size())
	fmt.Fprintf(&b, "Population seed: %d\n", pop.seed)
	b.WriteString("List of individuals:\n")
	for i := range pop.inds {
		fmt.Fprintf(&b, "#%d:\n", i)
		fmt.Fprintf(&b, "\tID:\t%s\n", pop.inds[i].ID)
		fmt.Fprintf(&b, "\tDecision vector:\t%v\n", pop.inds[i].X)
		fmt.Fprintf(&b, "\tFitness vector:\t%v\n", pop.inds[i].F)
	}
	return b.String()
}
