package problems_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/problem"
	"github.com/pelago/pelago/pkg/problems"
)

func mustProblem(t *testing.T, udp problem.UDP) *problem.Problem {
	t.Helper()
	p, err := problem.New(udp)
	require.NoError(t, err)
	return p
}

func TestRosenbrockOptimum(t *testing.T) {
	udp, err := problems.NewRosenbrock(5)
	require.NoError(t, err)
	p := mustProblem(t, udp)

	f, err := p.Fitness([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, f[0], 1e-12)

	g, err := p.Gradient([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	for _, v := range g {
		assert.InDelta(t, 0, v, 1e-12)
	}

	_, err = problems.NewRosenbrock(1)
	assert.Error(t, err)
}

func TestSchwefelOptimum(t *testing.T) {
	udp, err := problems.NewSchwefel(4)
	require.NoError(t, err)
	p := mustProblem(t, udp)

	x := []float64{420.9687, 420.9687, 420.9687, 420.9687}
	f, err := p.Fitness(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, f[0], 1e-3)
}

func TestSphere(t *testing.T) {
	udp, err := problems.NewSphere(3)
	require.NoError(t, err)
	p := mustProblem(t, udp)

	f, err := p.Fitness([]float64{0, 0, 0})
	require.NoError(t, err)
	assert.Zero(t, f[0])

	f, err = p.Fitness([]float64{1, 2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 9, f[0], 1e-12)
}

func TestZDT1(t *testing.T) {
	udp, err := problems.NewZDT1(2)
	require.NoError(t, err)
	p := mustProblem(t, udp)
	assert.Equal(t, 2, p.NObj())

	// On the true front g(x) = 1, so f = (x0, 1 - sqrt(x0)).
	f, err := p.Fitness([]float64{0.25, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f[0], 1e-12)
	assert.InDelta(t, 0.5, f[1], 1e-12)

	front := udp.TrueParetoFront(11)
	require.Len(t, front, 11)
	assert.Equal(t, []float64{0, 1}, front[0])
	assert.InDelta(t, 0, front[10][1], 1e-12)
}

func TestDTLZ2SphericalFront(t *testing.T) {
	udp, err := problems.NewDTLZ2(7, 3)
	require.NoError(t, err)
	p := mustProblem(t, udp)

	// With the distance variables at 0.5 the point lies on the unit sphere.
	f, err := p.Fitness([]float64{0.3, 0.7, 0.5, 0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	norm := 0.0
	for _, v := range f {
		norm += v * v
	}
	assert.InDelta(t, 1, norm, 1e-9)

	_, err = problems.NewDTLZ2(2, 3)
	assert.Error(t, err)
}

func TestTranslateSemantics(t *testing.T) {
	inner := mustProblem(t, &problems.Rosenbrock{Dim: 2})
	tr, err := problems.NewTranslate(inner, []float64{1, -1})
	require.NoError(t, err)
	p := mustProblem(t, tr)

	assert.Equal(t, "Rosenbrock [translated]", p.Name())

	lb, ub := p.Bounds()
	assert.Equal(t, []float64{-4, -6}, lb)
	assert.Equal(t, []float64{11, 9}, ub)

	// fitness(x) = inner(x - t): the optimum moves to (1,1) + t.
	f, err := p.Fitness([]float64{2, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, f[0], 1e-12)

	require.True(t, p.HasGradient())
	g, err := p.Gradient([]float64{2, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, g[0], 1e-12)
	assert.InDelta(t, 0, g[1], 1e-12)

	_, err = problems.NewTranslate(inner, []float64{1})
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestTranslateWithoutInnerGradient(t *testing.T) {
	inner := mustProblem(t, &problems.Sphere{Dim: 2})
	tr, err := problems.NewTranslate(inner, []float64{1, 1})
	require.NoError(t, err)
	p := mustProblem(t, tr)

	assert.False(t, p.HasGradient(), "translation must not invent a gradient")
	_, err = p.Gradient([]float64{0, 0})
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}

func TestTranslateJSONRoundTrip(t *testing.T) {
	inner := mustProblem(t, &problems.Sphere{Dim: 2})
	tr, err := problems.NewTranslate(inner, []float64{2, 3})
	require.NoError(t, err)
	p := mustProblem(t, tr)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	restored := &problem.Problem{}
	require.NoError(t, json.Unmarshal(raw, restored))

	assert.Equal(t, "Sphere [translated]", restored.Name())
	lb, ub := restored.Bounds()
	wantLB, wantUB := p.Bounds()
	assert.Equal(t, wantLB, lb)
	assert.Equal(t, wantUB, ub)
}

func TestCachedMemoizes(t *testing.T) {
	inner := mustProblem(t, &problems.Sphere{Dim: 2})
	c, err := problems.NewCached(inner, 0)
	require.NoError(t, err)
	p := mustProblem(t, c)

	assert.Equal(t, "Sphere [cached]", p.Name())

	x := []float64{1, 2}
	f1, err := p.Fitness(x)
	require.NoError(t, err)
	f2, err := p.Fitness(x)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	assert.Equal(t, uint64(1), c.Misses())
	assert.Equal(t, uint64(1), c.Hits())
	assert.Equal(t, uint64(1), inner.Fevals(), "second evaluation must come from the cache")

	_, err = p.Fitness([]float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), c.Misses())
}

func TestCachedCloneStartsCold(t *testing.T) {
	inner := mustProblem(t, &problems.Sphere{Dim: 2})
	c, err := problems.NewCached(inner, time.Minute)
	require.NoError(t, err)
	p := mustProblem(t, c)

	_, err = p.Fitness([]float64{1, 1})
	require.NoError(t, err)

	cp, err := p.Clone()
	require.NoError(t, err)
	cached, ok := cp.UDP().(*problems.Cached)
	require.True(t, ok)
	assert.Zero(t, cached.Hits())
	assert.Zero(t, cached.Misses())
}

func TestBoundsWithinRange(t *testing.T) {
	udp, err := problems.NewSchwefel(3)
	require.NoError(t, err)
	lb, ub := udp.Bounds()
	for i := range lb {
		assert.Equal(t, -500.0, lb[i])
		assert.Equal(t, 500.0, ub[i])
		assert.True(t, lb[i] < ub[i])
	}
	assert.False(t, math.IsNaN(lb[0]))
}
