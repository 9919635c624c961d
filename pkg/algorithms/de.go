package algorithms

import (
	"fmt"
	"math/rand/v2"

	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// DE is differential evolution in its rand/1/bin variant: for each individual
// a mutant is built from three distinct peers and crossed over binomially;
// the trial replaces the individual when it is no worse.
type DE struct {
	Gens int     `json:"gens"`
	F    float64 `json:"f"`
	CR   float64 `json:"cr"`
	Seed uint64  `json:"seed"`

	verbosity int
	rng       *rand.Rand
	log       []framework.LogLine
}

// NewDE builds the algorithm with the canonical F=0.8, CR=0.9 parameters.
func NewDE(gens int, seed uint64) *DE {
	return &DE{Gens: gens, F: 0.8, CR: 0.9, Seed: seed, rng: newRng(seed)}
}

func (de *DE) Name() string { return "DE" }

func (de *DE) SetSeed(seed uint64) {
	de.Seed = seed
	de.rng = newRng(seed)
}

func (de *DE) SetVerbosity(level int) { de.verbosity = level }

func (de *DE) Log() []framework.LogLine { return de.log }

func (de *DE) ExtraInfo() string {
	return fmt.Sprintf("Generations: %d, F: %g, CR: %g, seed: %d", de.Gens, de.F, de.CR, de.Seed)
}

func (de *DE) CloneUDA() algorithm.UDA {
	cp := *de
	cp.rng = newRng(de.Seed)
	cp.log = append([]framework.LogLine(nil), de.log...)
	return &cp
}

// Evolve runs Gens generations on a copy of pop. Requires a single-objective,
// unconstrained problem and at least 5 individuals.
func (de *DE) Evolve(pop *population.Population) (*population.Population, error) {
	prob := pop.Problem()
	if prob.FDim() != 1 {
		return nil, fmt.Errorf("%w: DE supports single-objective unconstrained problems, fitness dimension is %d",
			framework.ErrInvalidArgument, prob.FDim())
	}
	if pop.Size() < 5 {
		return nil, fmt.Errorf("%w: DE needs at least 5 individuals in the population, %d detected",
			framework.ErrInvalidArgument, pop.Size())
	}
	if de.rng == nil {
		de.rng = newRng(de.Seed)
	}

	out := pop.Clone()
	lb, ub := prob.Bounds()
	dim := prob.Dim()
	n := out.Size()

	for gen := 0; gen < de.Gens; gen++ {
		for i := 0; i < n; i++ {
			r1, r2, r3 := de.pickPeers(n, i)
			base, d1, d2 := out.X(r1), out.X(r2), out.X(r3)
			cur := out.X(i)

			trial := make([]float64, dim)
			jrand := de.rng.IntN(dim)
			for j := 0; j < dim; j++ {
				if de.rng.Float64() < de.CR || j == jrand {
					trial[j] = clamp(base[j]+de.F*(d1[j]-d2[j]), lb[j], ub[j])
				} else {
					trial[j] = cur[j]
				}
			}

			f, err := prob.Fitness(trial)
			if err != nil {
				return nil, err
			}
			if f[0] <= out.F(i)[0] {
				if err := out.SetXF(i, trial, f); err != nil {
					return nil, err
				}
			}
		}
		if de.verbosity > 0 && gen%de.verbosity == 0 {
			champ, _ := out.Champion()
			de.log = append(de.log, framework.LogLine{Gen: gen, Fevals: prob.Fevals(), Best: champ.F[0]})
			klog.V(5).InfoS("DE generation", "gen", gen, "fevals", prob.Fevals(), "best", champ.F[0])
		}
	}
	return out, nil
}

// pickPeers draws three distinct indices different from i.
func (de *DE) pickPeers(n, i int) (int, int, int) {
	pick := func(excl ...int) int {
	retry:
		for {
			r := de.rng.IntN(n)
			if r == i {
				continue
			}
			for _, e := range excl {
				if r == e {
					continue retry
				}
			}
			return r
		}
	}
	r1 := pick()
	r2 := pick(r1)
	r3 := pick(r1, r2)
	return r1, r2, r3
}
