package algorithms

import (
	"fmt"
	"math/rand/v2"

	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// PSO is canonical particle swarm optimization with a constriction
// coefficient: particles track a personal best and the swarm best, velocities
// are damped by Omega and capped at half the bound range per component.
type PSO struct {
	Gens  int     `json:"gens"`
	Omega float64 `json:"omega"`
	Eta1  float64 `json:"eta1"`
	Eta2  float64 `json:"eta2"`
	Seed  uint64  `json:"seed"`

	verbosity int
	rng       *rand.Rand
	log       []framework.LogLine
}

// NewPSO builds the algorithm with the canonical constriction parameters.
func NewPSO(gens int, seed uint64) *PSO {
	return &PSO{Gens: gens, Omega: 0.7298, Eta1: 2.05, Eta2: 2.05, Seed: seed, rng: newRng(seed)}
}

func (pso *PSO) Name() string { return "PSO" }

func (pso *PSO) SetSeed(seed uint64) {
	pso.Seed = seed
	pso.rng = newRng(seed)
}

func (pso *PSO) SetVerbosity(level int) { pso.verbosity = level }

func (pso *PSO) Log() []framework.LogLine { return pso.log }

func (pso *PSO) ExtraInfo() string {
	return fmt.Sprintf("Generations: %d, omega: %g, eta1: %g, eta2: %g, seed: %d",
		pso.Gens, pso.Omega, pso.Eta1, pso.Eta2, pso.Seed)
}

func (pso *PSO) CloneUDA() algorithm.UDA {
	cp := *pso
	cp.rng = newRng(pso.Seed)
	cp.log = append([]framework.LogLine(nil), pso.log...)
	return &cp
}

// Evolve runs Gens generations on a copy of pop. Requires a single-objective,
// unconstrained problem and at least 2 individuals.
func (pso *PSO) Evolve(pop *population.Population) (*population.Population, error) {
	prob := pop.Problem()
	if prob.FDim() != 1 {
		return nil, fmt.Errorf("%w: PSO supports single-objective unconstrained problems, fitness dimension is %d",
			framework.ErrInvalidArgument, prob.FDim())
	}
	if pop.Size() < 2 {
		return nil, fmt.Errorf("%w: PSO needs at least 2 individuals in the population, %d detected",
			framework.ErrInvalidArgument, pop.Size())
	}
	if pso.rng == nil {
		pso.rng = newRng(pso.Seed)
	}

	out := pop.Clone()
	lb, ub := prob.Bounds()
	dim := prob.Dim()
	n := out.Size()

	// Swarm state lives only for the duration of the call.
	vel := make([][]float64, n)
	bestX := make([][]float64, n)
	bestF := make([]float64, n)
	gbest := 0
	for i := 0; i < n; i++ {
		vel[i] = make([]float64, dim)
		bestX[i] = out.X(i)
		bestF[i] = out.F(i)[0]
		if bestF[i] < bestF[gbest] {
			gbest = i
		}
	}

	for gen := 0; gen < pso.Gens; gen++ {
		for i := 0; i < n; i++ {
			x := out.X(i)
			for j := 0; j < dim; j++ {
				vmax := 0.5 * (ub[j] - lb[j])
				v := pso.Omega*vel[i][j] +
					pso.Eta1*pso.rng.Float64()*(bestX[i][j]-x[j]) +
					pso.Eta2*pso.rng.Float64()*(bestX[gbest][j]-x[j])
				vel[i][j] = clamp(v, -vmax, vmax)
				x[j] = clamp(x[j]+vel[i][j], lb[j], ub[j])
			}
			f, err := prob.Fitness(x)
			if err != nil {
				return nil, err
			}
			if err := out.SetXF(i, x, f); err != nil {
				return nil, err
			}
			if f[0] < bestF[i] {
				bestF[i] = f[0]
				bestX[i] = append([]float64(nil), x...)
				if f[0] < bestF[gbest] {
					gbest = i
				}
			}
		}
		if pso.verbosity > 0 && gen%pso.verbosity == 0 {
			pso.log = append(pso.log, framework.LogLine{Gen: gen, Fevals: prob.Fevals(), Best: bestF[gbest]})
			klog.V(5).InfoS("PSO generation", "gen", gen, "fevals", prob.Fevals(), "best", bestF[gbest])
		}
	}
	return out, nil
}
