package population

import (
	"encoding/json"
	"math/rand/v2"

	"github.com/pelago/pelago/pkg/problem"
)

type populationJSON struct {
	Problem     *problem.Problem `json:"problem"`
	Seed        uint64           `json:"seed"`
	Individuals []Individual     `json:"individuals"`
}

// MarshalJSON encodes the owning problem (through the problem registry), the
// seed and every individual.
func (pop *Population) MarshalJSON() ([]byte, error) {
	return json.Marshal(populationJSON{
		Problem:     pop.prob,
		Seed:        pop.seed,
		Individuals: pop.inds,
	})
}

// UnmarshalJSON restores the population. The random stream restarts from the
// stored seed.
func (pop *Population) UnmarshalJSON(data []byte) error {
	pj := populationJSON{Problem: &problem.Problem{}}
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	pop.prob = pj.Problem
	pop.seed = pj.Seed
	pop.rng = rand.New(rand.NewPCG(pj.Seed, pj.Seed))
	pop.inds = pj.Individuals
	return nil
}
