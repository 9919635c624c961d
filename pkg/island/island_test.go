package island_test

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/algorithms"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/island"
	"github.com/pelago/pelago/pkg/population"
	"github.com/pelago/pelago/pkg/problem"
	"github.com/pelago/pelago/pkg/problems"
)

// blocker is a UDA whose evolutions park until released. It tracks the
// number of concurrent entries to prove tasks on one island never overlap.
type blocker struct {
	release     chan struct{}
	runs        atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func newBlocker() *blocker { return &blocker{release: make(chan struct{})} }

func (b *blocker) Name() string { return "blocker" }

func (b *blocker) Evolve(pop *population.Population) (*population.Population, error) {
	cur := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		max := b.maxInFlight.Load()
		if cur <= max || b.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	<-b.release
	b.runs.Add(1)
	return pop, nil
}

// CloneUDA shares the instance so the test keeps its handle on the counters.
func (b *blocker) CloneUDA() algorithm.UDA { return b }

// unsafeSphere declares no thread safety, which the thread runner must
// reject.
type unsafeSphere struct{ *problems.Sphere }

func (unsafeSphere) ThreadSafety() framework.ThreadSafety { return framework.None }

func (u unsafeSphere) CloneUDP() problem.UDP { return u }

// unsafeUDA is an algorithm without thread safety guarantees.
type unsafeUDA struct{}

func (unsafeUDA) Name() string { return "unsafe" }

func (unsafeUDA) Evolve(pop *population.Population) (*population.Population, error) { return pop, nil }

func (unsafeUDA) ThreadSafety() framework.ThreadSafety { return framework.None }

func (u unsafeUDA) CloneUDA() algorithm.UDA { return u }

func spherePopulation(t *testing.T, dim, size int, seed uint64) *population.Population {
	t.Helper()
	udp, err := problems.NewSphere(dim)
	require.NoError(t, err)
	prob, err := problem.New(udp)
	require.NoError(t, err)
	pop, err := population.NewSeeded(prob, size, seed)
	require.NoError(t, err)
	return pop
}

func deAlgorithm(t *testing.T, gens int, seed uint64) *algorithm.Algorithm {
	t.Helper()
	algo, err := algorithm.New(algorithms.NewDE(gens, seed))
	require.NoError(t, err)
	return algo
}

func TestEvolveImprovesPopulation(t *testing.T) {
	pop := spherePopulation(t, 3, 20, 7)
	before, err := pop.Champion()
	require.NoError(t, err)

	isl, err := island.NewDefault(deAlgorithm(t, 50, 1), pop)
	require.NoError(t, err)

	isl.Evolve(2)
	require.NoError(t, isl.Get())
	assert.False(t, isl.Busy())
	assert.Equal(t, "idle", isl.Status())

	after, err := isl.Population().Champion()
	require.NoError(t, err)
	assert.Less(t, after.F[0], before.F[0])
}

func TestTasksRunSequentially(t *testing.T) {
	b := newBlocker()
	algo, err := algorithm.New(b)
	require.NoError(t, err)
	isl, err := island.NewDefault(algo, spherePopulation(t, 2, 5, 1))
	require.NoError(t, err)

	isl.Evolve(3)
	assert.True(t, isl.Busy())
	assert.Equal(t, "busy", isl.Status())

	close(b.release)
	require.NoError(t, isl.Get())
	assert.Equal(t, int64(3), b.runs.Load())
	assert.Equal(t, int64(1), b.maxInFlight.Load(), "tasks on one island must never overlap")
}

func TestErrorLatching(t *testing.T) {
	// DE refuses populations smaller than 5, so every task fails.
	isl, err := island.NewDefault(deAlgorithm(t, 10, 1), spherePopulation(t, 2, 3, 1))
	require.NoError(t, err)

	isl.Evolve(2)
	err = isl.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)

	// Get drains the latch.
	assert.NoError(t, isl.Get())
	assert.Equal(t, "idle", isl.Status())
}

func TestWaitDiscardsErrors(t *testing.T) {
	isl, err := island.NewDefault(deAlgorithm(t, 10, 1), spherePopulation(t, 2, 3, 1))
	require.NoError(t, err)

	isl.Evolve(1)
	isl.Wait()
	assert.NoError(t, isl.Get())
	assert.Equal(t, "idle", isl.Status())
}

func TestStatusReportsLatchedErrors(t *testing.T) {
	isl, err := island.NewDefault(deAlgorithm(t, 10, 1), spherePopulation(t, 2, 3, 1))
	require.NoError(t, err)

	isl.Evolve(1)
	waitIdle(t, isl)
	assert.Equal(t, "idle - errors occurred", isl.Status())
	isl.Wait()
	assert.Equal(t, "idle", isl.Status())
}

// waitIdle spins until the island's queue drains without touching the error
// latch.
func waitIdle(t *testing.T, isl *island.Island) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for isl.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("island never went idle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestThreadSafetyViolations(t *testing.T) {
	prob, err := problem.New(unsafeSphere{&problems.Sphere{Dim: 2}})
	require.NoError(t, err)
	pop, err := population.NewSeeded(prob, 10, 1)
	require.NoError(t, err)

	isl, err := island.NewDefault(deAlgorithm(t, 10, 1), pop)
	require.NoError(t, err)
	isl.Evolve(1)
	assert.ErrorIs(t, isl.Get(), framework.ErrThreadSafety)

	algo, err := algorithm.New(unsafeUDA{})
	require.NoError(t, err)
	isl2, err := island.NewDefault(algo, spherePopulation(t, 2, 10, 1))
	require.NoError(t, err)
	isl2.Evolve(1)
	assert.ErrorIs(t, isl2.Get(), framework.ErrThreadSafety)
}

func TestAccessorsWhileBusy(t *testing.T) {
	b := newBlocker()
	algo, err := algorithm.New(b)
	require.NoError(t, err)
	isl, err := island.NewDefault(algo, spherePopulation(t, 2, 5, 1))
	require.NoError(t, err)

	isl.Evolve(1)

	// Accessors must not block on a running evolution.
	got := isl.Population()
	assert.Equal(t, 5, got.Size())
	isl.SetPopulation(spherePopulation(t, 2, 8, 2))
	assert.Equal(t, 8, isl.Population().Size())

	cp, err := isl.Clone()
	require.NoError(t, err)
	assert.False(t, cp.Busy(), "a clone starts with an empty task queue")

	close(b.release)
	require.NoError(t, isl.Get())
}

func TestSetPopulationCopies(t *testing.T) {
	pop := spherePopulation(t, 2, 5, 1)
	isl, err := island.NewDefault(deAlgorithm(t, 10, 1), pop)
	require.NoError(t, err)

	require.NoError(t, pop.SetX(0, []float64{0, 0}))
	assert.NotEqual(t, pop.F(0), isl.Population().F(0), "the island must hold its own copy")
}

func TestJSONRoundTrip(t *testing.T) {
	isl, err := island.NewDefault(deAlgorithm(t, 20, 5), spherePopulation(t, 3, 10, 9))
	require.NoError(t, err)

	isl.Evolve(1)
	require.NoError(t, isl.Get())

	raw, err := json.Marshal(isl)
	require.NoError(t, err)

	restored := &island.Island{}
	require.NoError(t, json.Unmarshal(raw, restored))

	assert.Equal(t, isl.Name(), restored.Name())
	assert.Equal(t, isl.String(), restored.String(), "a restored island is indistinguishable from the original")
	assert.False(t, restored.Busy())
	assert.NoError(t, restored.Get())
}

func TestUnknownRunnerRejected(t *testing.T) {
	restored := &island.Island{}
	err := json.Unmarshal([]byte(`{"runner":"no-such-runner","algorithm":{"uda":"DE"},"population":{"problem":{"udp":"Sphere","params":{"dim":2}},"seed":1,"individuals":[]}}`), restored)
	assert.ErrorIs(t, err, framework.ErrInvalidArgument)
}
