package algorithms

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// NSGAII is the elitist non-dominated sorting genetic algorithm: offspring are
// bred by binary tournament on (rank, crowding distance), SBX crossover and
// polynomial mutation, then parents and offspring compete for survival front
// by front.
type NSGAII struct {
	Gens          int     `json:"gens"`
	CrossoverRate float64 `json:"crossover_rate"`
	MutationRate  float64 `json:"mutation_rate"`
	Seed          uint64  `json:"seed"`

	verbosity int
	rng       *rand.Rand
	log       []framework.LogLine
}

// NewNSGAII builds the algorithm with crossover rate 0.8 and mutation
// rate 0.1.
func NewNSGAII(gens int, seed uint64) *NSGAII {
	return &NSGAII{Gens: gens, CrossoverRate: 0.8, MutationRate: 0.1, Seed: seed, rng: newRng(seed)}
}

func (n *NSGAII) Name() string { return "NSGA-II" }

func (n *NSGAII) SetSeed(seed uint64) {
	n.Seed = seed
	n.rng = newRng(seed)
}

func (n *NSGAII) SetVerbosity(level int) { n.verbosity = level }

func (n *NSGAII) Log() []framework.LogLine { return n.log }

func (n *NSGAII) ExtraInfo() string {
	return fmt.Sprintf("Generations: %d, crossover rate: %g, mutation rate: %g, seed: %d",
		n.Gens, n.CrossoverRate, n.MutationRate, n.Seed)
}

func (n *NSGAII) CloneUDA() algorithm.UDA {
	cp := *n
	cp.rng = newRng(n.Seed)
	cp.log = append([]framework.LogLine(nil), n.log...)
	return &cp
}

// nsgaIndividual is the working representation during a single Evolve call.
type nsgaIndividual struct {
	x    []float64
	f    []float64
	rank int
	dist float64
}

// Evolve runs Gens generations on a copy of pop. Requires a multi-objective,
// unconstrained problem and an even population of at least 4 individuals.
func (n *NSGAII) Evolve(pop *population.Population) (*population.Population, error) {
	prob := pop.Problem()
	if prob.NObj() < 2 {
		return nil, fmt.Errorf("%w: NSGA-II supports multi-objective problems, %d objective detected",
			framework.ErrInvalidArgument, prob.NObj())
	}
	if prob.NEC()+prob.NIC() > 0 {
		return nil, fmt.Errorf("%w: NSGA-II does not support constrained problems", framework.ErrInvalidArgument)
	}
	if pop.Size() < 4 || pop.Size()%2 != 0 {
		return nil, fmt.Errorf("%w: NSGA-II needs an even population of at least 4 individuals, %d detected",
			framework.ErrInvalidArgument, pop.Size())
	}
	if n.rng == nil {
		n.rng = newRng(n.Seed)
	}

	out := pop.Clone()
	lb, ub := prob.Bounds()
	size := out.Size()

	parents := make([]nsgaIndividual, size)
	for i := 0; i < size; i++ {
		parents[i] = nsgaIndividual{x: out.X(i), f: out.F(i)}
	}
	rankAndCrowd(parents)

	for gen := 0; gen < n.Gens; gen++ {
		offspring := make([]nsgaIndividual, 0, size)
		for i := 0; i < size; i += 2 {
			p1 := n.tournamentSelect(parents)
			p2 := n.tournamentSelect(parents)
			c1, c2 := n.crossover(p1.x, p2.x, lb, ub)
			n.mutate(c1, lb, ub)
			n.mutate(c2, lb, ub)
			for _, x := range [][]float64{c1, c2} {
				f, err := prob.Fitness(x)
				if err != nil {
					return nil, err
				}
				offspring = append(offspring, nsgaIndividual{x: x, f: f})
			}
		}

		parents = n.survive(append(parents, offspring...), size)

		if n.verbosity > 0 && gen%n.verbosity == 0 {
			n.log = append(n.log, framework.LogLine{Gen: gen, Fevals: prob.Fevals(), Best: parents[0].f[0]})
			klog.V(5).InfoS("NSGA-II generation", "gen", gen, "fevals", prob.Fevals())
		}
	}

	for i := 0; i < size; i++ {
		if err := out.SetXF(i, parents[i].x, parents[i].f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// survive selects size individuals from the combined parent+offspring pool,
// front by front, trimming the last admitted front by crowding distance.
func (n *NSGAII) survive(combined []nsgaIndividual, size int) []nsgaIndividual {
	points := make([][]float64, len(combined))
	for i := range combined {
		points[i] = combined[i].f
	}
	fronts := framework.NonDominatedSort(points)

	next := make([]nsgaIndividual, 0, size)
	for rank, front := range fronts {
		dist := framework.CrowdingDistance(points, front)
		if len(next)+len(front) <= size {
			for k, idx := range front {
				ind := combined[idx]
				ind.rank, ind.dist = rank, dist[k]
				next = append(next, ind)
			}
			if len(next) == size {
				break
			}
			continue
		}
		// Partial front: most crowded-out individuals are dropped first.
		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] > dist[order[b]] })
		for _, k := range order[:size-len(next)] {
			ind := combined[front[k]]
			ind.rank, ind.dist = rank, dist[k]
			next = append(next, ind)
		}
		break
	}
	return next
}

// rankAndCrowd annotates individuals with their front rank and crowding
// distance, used by tournament selection before the first survival pass.
func rankAndCrowd(inds []nsgaIndividual) {
	points := make([][]float64, len(inds))
	for i := range inds {
		points[i] = inds[i].f
	}
	for rank, front := range framework.NonDominatedSort(points) {
		dist := framework.CrowdingDistance(points, front)
		for k, idx := range front {
			inds[idx].rank, inds[idx].dist = rank, dist[k]
		}
	}
}

// tournamentSelect runs a binary tournament: lower rank wins, crowding
// distance breaks ties.
func (n *NSGAII) tournamentSelect(inds []nsgaIndividual) nsgaIndividual {
	best := inds[n.rng.IntN(len(inds))]
	contestant := inds[n.rng.IntN(len(inds))]
	if contestant.rank < best.rank || (contestant.rank == best.rank && contestant.dist > best.dist) {
		best = contestant
	}
	return best
}

// crossover performs simulated binary crossover with distribution index 2.
func (n *NSGAII) crossover(p1, p2, lb, ub []float64) ([]float64, []float64) {
	c1 := make([]float64, len(p1))
	c2 := make([]float64, len(p2))
	if n.rng.Float64() >= n.CrossoverRate {
		copy(c1, p1)
		copy(c2, p2)
		return c1, c2
	}
	for i := range p1 {
		var beta float64
		if n.rng.Float64() <= 0.5 {
			beta = math.Pow(2*n.rng.Float64(), 1.0/3.0)
		} else {
			beta = math.Pow(1.0/(2*(1.0-n.rng.Float64())), 1.0/3.0)
		}
		c1[i] = clamp(0.5*((1+beta)*p1[i]+(1-beta)*p2[i]), lb[i], ub[i])
		c2[i] = clamp(0.5*((1-beta)*p1[i]+(1+beta)*p2[i]), lb[i], ub[i])
	}
	return c1, c2
}

// mutate performs polynomial mutation componentwise.
func (n *NSGAII) mutate(x, lb, ub []float64) {
	for i := range x {
		if n.rng.Float64() >= n.MutationRate {
			continue
		}
		var delta float64
		if n.rng.Float64() <= 0.5 {
			delta = math.Pow(2*n.rng.Float64(), 1.0/3.0) - 1
		} else {
			delta = 1 - math.Pow(2*(1-n.rng.Float64()), 1.0/3.0)
		}
		x[i] = clamp(x[i]+delta*(ub[i]-lb[i]), lb[i], ub[i])
	}
}
