package island

import (
	"fmt"
	"sync"

	"github.com/pelago/pelago/pkg/framework"
)

// Runner is the island's evolution executor: it decides where and how one
// evolve task runs. RunEvolve is invoked from the island's task goroutine,
// never concurrently with itself on the same island.
type Runner interface {
	Name() string
	RunEvolve(isl *Island) error
}

// ExtraInfoRunner provides free-form details for String.
type ExtraInfoRunner interface {
	ExtraInfo() string
}

// ThreadRunner evolves on the task goroutine itself. It refuses problems and
// algorithms that do not guarantee at least basic thread safety, since other
// islands may evolve copies of the same components concurrently.
type ThreadRunner struct{}

func (ThreadRunner) Name() string { return "Thread island" }

func (ThreadRunner) RunEvolve(isl *Island) error {
	pop := isl.Population()
	algo, err := isl.Algorithm()
	if err != nil {
		return err
	}
	if ts := pop.Problem().ThreadSafety(); ts < framework.Basic {
		return fmt.Errorf("%w: problem %q provides thread safety %q, the thread runner needs at least basic",
			framework.ErrThreadSafety, pop.Problem().Name(), ts)
	}
	if ts := algo.ThreadSafety(); ts < framework.Basic {
		return fmt.Errorf("%w: algorithm %q provides thread safety %q, the thread runner needs at least basic",
			framework.ErrThreadSafety, algo.Name(), ts)
	}
	evolved, err := algo.Evolve(pop)
	if err != nil {
		return err
	}
	isl.SetPopulation(evolved)
	// The algorithm copy carries the evolution log and seed state forward.
	return isl.SetAlgorithm(algo)
}

// The runner registry restores islands from their serialized form.
var (
	runnerMu  sync.RWMutex
	runnerReg = map[string]func() Runner{}
)

// RegisterRunner associates a runner name with a factory. Registering the
// same name twice panics.
func RegisterRunner(name string, factory func() Runner) {
	runnerMu.Lock()
	defer runnerMu.Unlock()
	if _, dup := runnerReg[name]; dup {
		panic(fmt.Sprintf("island: RegisterRunner called twice for %q", name))
	}
	runnerReg[name] = factory
}

func decodeRunner(name string) (Runner, error) {
	runnerMu.RLock()
	factory, ok := runnerReg[name]
	runnerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no island runner registered under %q", framework.ErrInvalidArgument, name)
	}
	return factory(), nil
}

func init() {
	RegisterRunner(ThreadRunner{}.Name(), func() Runner { return ThreadRunner{} })
}
