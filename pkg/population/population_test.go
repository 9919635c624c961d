package population_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
	"github.com/pelago/pelago/pkg/problem"
	"github.com/pelago/pelago/pkg/problems"
)

func sphereProblem(t *testing.T, dim int) *problem.Problem {
	t.Helper()
	udp, err := problems.NewSphere(dim)
	require.NoError(t, err)
	p, err := problem.New(udp)
	require.NoError(t, err)
	return p
}

func TestNewSeededDeterminism(t *testing.T) {
	a, err := population.NewSeeded(sphereProblem(t, 3), 20, 42)
	require.NoError(t, err)
	b, err := population.NewSeeded(sphereProblem(t, 3), 20, 42)
	require.NoError(t, err)

	require.Equal(t, a.Size(), b.Size())
	for i := 0; i < a.Size(); i++ {
		if diff := cmp.Diff(a.X(i), b.X(i)); diff != "" {
			t.Errorf("individual %d decision vectors diverge (-a +b):\n%s", i, diff)
		}
		assert.Equal(t, a.F(i), b.F(i))
	}

	c, err := population.NewSeeded(sphereProblem(t, 3), 20, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.X(0), c.X(0), "different seeds must yield different populations")
}

func TestIndividualsWithinBounds(t *testing.T) {
	prob := sphereProblem(t, 4)
	pop, err := population.NewSeeded(prob, 50, 7)
	require.NoError(t, err)

	lb, ub := prob.Bounds()
	for i := 0; i < pop.Size(); i++ {
		x := pop.X(i)
		for j := range x {
			assert.GreaterOrEqual(t, x[j], lb[j])
			assert.LessOrEqual(t, x[j], ub[j])
		}
	}
	assert.Equal(t, uint64(50), prob.Fevals())
}

func TestPushAndSet(t *testing.T) {
	prob := sphereProblem(t, 2)
	pop, err := population.NewSeeded(prob, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, pop.Size())

	require.NoError(t, pop.Push([]float64{1, 2}))
	require.Equal(t, 1, pop.Size())
	assert.Equal(t, []float64{5}, pop.F(0))

	id := pop.ID(0)
	require.NoError(t, pop.SetX(0, []float64{0, 0}))
	assert.Equal(t, []float64{0}, pop.F(0))
	assert.Equal(t, id, pop.ID(0), "replacing the decision vector keeps the identity")

	err = pop.SetXF(0, []float64{1}, []float64{1})
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
	err = pop.SetXF(0, []float64{1, 1}, []float64{1, 1})
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
	err = pop.SetXF(5, []float64{1, 1}, []float64{2})
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestChampion(t *testing.T) {
	prob := sphereProblem(t, 2)
	pop, err := population.NewSeeded(prob, 0, 1)
	require.NoError(t, err)

	_, err = pop.Champion()
	assert.ErrorIs(t, err, framework.ErrInvalidArgument, "empty population has no champion")

	require.NoError(t, pop.Push([]float64{2, 2}))
	require.NoError(t, pop.Push([]float64{1, 0}))
	require.NoError(t, pop.Push([]float64{3, 3}))

	champ, err := pop.Champion()
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, champ.F)
	assert.Equal(t, pop.ID(1), champ.ID)
}

func TestChampionMultiObjective(t *testing.T) {
	udp, err := problems.NewZDT1(3)
	require.NoError(t, err)
	prob, err := problem.New(udp)
	require.NoError(t, err)
	pop, err := population.NewSeeded(prob, 5, 1)
	require.NoError(t, err)

	_, err = pop.Champion()
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)

	front := pop.Front()
	require.Len(t, front, 5)
	assert.Len(t, front[0], 2)
}

func TestCloneIndependence(t *testing.T) {
	pop, err := population.NewSeeded(sphereProblem(t, 2), 3, 9)
	require.NoError(t, err)

	cp := pop.Clone()
	require.Equal(t, pop.Size(), cp.Size())
	assert.Equal(t, pop.ID(0), cp.ID(0))
	assert.Same(t, pop.Problem(), cp.Problem())

	require.NoError(t, cp.SetX(0, []float64{0, 0}))
	assert.NotEqual(t, pop.F(0), cp.F(0), "mutating the clone must not touch the original")
}

func TestGetOutOfRange(t *testing.T) {
	pop, err := population.NewSeeded(sphereProblem(t, 2), 2, 9)
	require.NoError(t, err)
	_, err = pop.Get(2)
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
	_, err = pop.Get(-1)
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestUncheckedAccessorsPanic(t *testing.T) {
	pop, err := population.NewSeeded(sphereProblem(t, 2), 2, 9)
	require.NoError(t, err)
	assert.Panics(t, func() { pop.X(2) })
	assert.Panics(t, func() { pop.F(-1) })
	assert.Panics(t, func() { pop.ID(2) })
}

func TestJSONRoundTrip(t *testing.T) {
	pop, err := population.NewSeeded(sphereProblem(t, 3), 4, 11)
	require.NoError(t, err)

	raw, err := json.Marshal(pop)
	require.NoError(t, err)

	restored := &population.Population{}
	require.NoError(t, json.Unmarshal(raw, restored))

	require.Equal(t, pop.Size(), restored.Size())
	assert.Equal(t, pop.Seed(), restored.Seed())
	for i := 0; i < pop.Size(); i++ {
		assert.Equal(t, pop.ID(i), restored.ID(i))
		assert.Equal(t, pop.X(i), restored.X(i))
		assert.Equal(t, pop.F(i), restored.F(i))
	}
	assert.Equal(t, pop.Problem().Name(), restored.Problem().Name())
	assert.Equal(t, pop.String(), restored.String())
}
