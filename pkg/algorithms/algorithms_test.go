package algorithms

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
	"github.com/pelago/pelago/pkg/problem"
	"github.com/pelago/pelago/pkg/problems"
)

func newPopulation(t *testing.T, udp problem.UDP, size int, seed uint64) *population.Population {
	t.Helper()
	prob, err := problem.New(udp)
	require.NoError(t, err)
	pop, err := population.NewSeeded(prob, size, seed)
	require.NoError(t, err)
	return pop
}

func championFitness(t *testing.T, pop *population.Population) float64 {
	t.Helper()
	champ, err := pop.Champion()
	require.NoError(t, err)
	return champ.F[0]
}

func TestDEImprovesRosenbrock(t *testing.T) {
	udp, err := problems.NewRosenbrock(5)
	require.NoError(t, err)
	pop := newPopulation(t, udp, 20, 7)
	before := championFitness(t, pop)

	de := NewDE(200, 1)
	out, err := de.Evolve(pop)
	require.NoError(t, err)

	require.Equal(t, pop.Size(), out.Size())
	after := championFitness(t, out)
	assert.Less(t, after, before)
	// The input population is untouched.
	assert.Equal(t, before, championFitness(t, pop))
}

func TestDEValidation(t *testing.T) {
	zdt, err := problems.NewZDT1(5)
	require.NoError(t, err)
	de := NewDE(10, 1)

	_, err = de.Evolve(newPopulation(t, zdt, 10, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)

	sphere, err := problems.NewSphere(2)
	require.NoError(t, err)
	_, err = de.Evolve(newPopulation(t, sphere, 3, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestDEDeterminism(t *testing.T) {
	sphere, err := problems.NewSphere(3)
	require.NoError(t, err)
	pop := newPopulation(t, sphere, 10, 3)

	out1, err := NewDE(50, 9).Evolve(pop)
	require.NoError(t, err)
	out2, err := NewDE(50, 9).Evolve(pop)
	require.NoError(t, err)

	for i := 0; i < out1.Size(); i++ {
		if diff := cmp.Diff(out1.X(i), out2.X(i)); diff != "" {
			t.Fatalf("same seed produced diverging populations at %d:\n%s", i, diff)
		}
	}
}

func TestDELogging(t *testing.T) {
	sphere, err := problems.NewSphere(3)
	require.NoError(t, err)
	pop := newPopulation(t, sphere, 10, 3)

	de := NewDE(20, 1)
	de.SetVerbosity(5)
	_, err = de.Evolve(pop)
	require.NoError(t, err)

	log := de.Log()
	require.Len(t, log, 4)
	assert.Equal(t, 0, log[0].Gen)
	assert.Equal(t, 15, log[3].Gen)
	assert.LessOrEqual(t, log[3].Best, log[0].Best)
}

func TestPSOImprovesSphere(t *testing.T) {
	sphere, err := problems.NewSphere(4)
	require.NoError(t, err)
	pop := newPopulation(t, sphere, 15, 5)
	before := championFitness(t, pop)

	pso := NewPSO(100, 2)
	out, err := pso.Evolve(pop)
	require.NoError(t, err)

	require.Equal(t, pop.Size(), out.Size())
	assert.Less(t, championFitness(t, out), before)
}

func TestPSOValidation(t *testing.T) {
	sphere, err := problems.NewSphere(2)
	require.NoError(t, err)
	pso := NewPSO(10, 1)
	_, err = pso.Evolve(newPopulation(t, sphere, 1, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)

	zdt, err := problems.NewZDT1(5)
	require.NoError(t, err)
	_, err = pso.Evolve(newPopulation(t, zdt, 10, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestNSGAIIWithZDT1(t *testing.T) {
	zdt, err := problems.NewZDT1(10)
	require.NoError(t, err)
	pop := newPopulation(t, zdt, 40, 11)

	nsga := NewNSGAII(100, 3)
	out, err := nsga.Evolve(pop)
	require.NoError(t, err)
	require.Equal(t, pop.Size(), out.Size())

	// The first front of the evolved population must be mutually
	// non-dominated.
	points := out.Front()
	fronts := framework.NonDominatedSort(points)
	require.NotEmpty(t, fronts)
	first := fronts[0]
	for _, i := range first {
		for _, j := range first {
			if i != j && framework.Dominates(points[i], points[j]) {
				t.Fatalf("first front contains dominated solution %d", j)
			}
		}
	}
}

func TestNSGAIIValidation(t *testing.T) {
	nsga := NewNSGAII(10, 1)

	sphere, err := problems.NewSphere(2)
	require.NoError(t, err)
	_, err = nsga.Evolve(newPopulation(t, sphere, 10, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)

	zdt, err := problems.NewZDT1(5)
	require.NoError(t, err)
	_, err = nsga.Evolve(newPopulation(t, zdt, 5, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
	_, err = nsga.Evolve(newPopulation(t, zdt, 2, 1))
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestSeedRestoredAfterJSON(t *testing.T) {
	wrapped, err := algorithm.New(NewDE(30, 17))
	require.NoError(t, err)

	raw, err := json.Marshal(wrapped)
	require.NoError(t, err)
	restored := &algorithm.Algorithm{}
	require.NoError(t, json.Unmarshal(raw, restored))

	assert.Equal(t, "DE", restored.Name())
	de, ok := restored.UDA().(*DE)
	require.True(t, ok)
	assert.Equal(t, uint64(17), de.Seed)
	assert.Equal(t, 30, de.Gens)

	// The restored algorithm lazily rebuilds its random stream and evolves
	// identically to the original.
	sphere, err := problems.NewSphere(2)
	require.NoError(t, err)
	pop := newPopulation(t, sphere, 8, 4)
	out1, err := NewDE(30, 17).Evolve(pop)
	require.NoError(t, err)
	out2, err := restored.Evolve(pop)
	require.NoError(t, err)
	assert.Equal(t, out1.X(0), out2.X(0))
}

func TestCloneRestartsStream(t *testing.T) {
	sphere, err := problems.NewSphere(2)
	require.NoError(t, err)
	pop := newPopulation(t, sphere, 8, 4)

	de := NewDE(10, 5)
	_, err = de.Evolve(pop)
	require.NoError(t, err)

	cp := de.CloneUDA().(*DE)
	out1, err := NewDE(10, 5).Evolve(pop)
	require.NoError(t, err)
	out2, err := cp.Evolve(pop)
	require.NoError(t, err)
	assert.Equal(t, out1.X(0), out2.X(0), "a clone restarts from the seed, not the current stream position")
}
