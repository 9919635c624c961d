// Package island pairs a population with an algorithm and evolves them
// asynchronously. Evolve tasks on one island run strictly in submission
// order; distinct islands evolve in parallel.
package island

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// Island owns a population, an algorithm and a runner. All accessors exchange
// copies, so user code never shares mutable state with a running evolution.
//
// Errors raised by evolve tasks are latched on the island: Get drains them
// and returns the first, Wait drains and discards them.
type Island struct {
	mu     sync.Mutex // guards pop and algo
	pop    *population.Population
	algo   *algorithm.Algorithm
	runner Runner

	taskMu  sync.Mutex    // guards tail
	tail    chan struct{} // completion of the most recently enqueued task
	pending atomic.Int64

	errMu sync.Mutex
	errs  []error
}

// New builds an island from a runner, an algorithm and a population. The
// island stores copies.
func New(r Runner, algo *algorithm.Algorithm, pop *population.Population) (*Island, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil runner", framework.ErrInvalidArgument)
	}
	if algo == nil {
		return nil, fmt.Errorf("%w: nil algorithm", framework.ErrInvalidArgument)
	}
	if pop == nil {
		return nil, fmt.Errorf("%w: nil population", framework.ErrInvalidArgument)
	}
	ac, err := algo.Clone()
	if err != nil {
		return nil, err
	}
	return &Island{runner: r, algo: ac, pop: pop.Clone()}, nil
}

// NewDefault builds an island with the thread runner.
func NewDefault(algo *algorithm.Algorithm, pop *population.Population) (*Island, error) {
	return New(ThreadRunner{}, algo, pop)
}

// Evolve enqueues n asynchronous evolve tasks and returns immediately. Tasks
// on the same island run one at a time in submission order; a failed task
// latches its error without stopping later tasks.
func (isl *Island) Evolve(n int) {
	for i := 0; i < n; i++ {
		isl.enqueue()
	}
}

func (isl *Island) enqueue() {
	isl.taskMu.Lock()
	prev := isl.tail
	done := make(chan struct{})
	isl.tail = done
	isl.taskMu.Unlock()

	isl.pending.Add(1)
	go func() {
		defer close(done)
		defer isl.pending.Add(-1)
		if prev != nil {
			<-prev
		}
		if err := isl.runner.RunEvolve(isl); err != nil {
			klog.V(4).InfoS("island evolve task failed", "island", isl.Name(), "err", err)
			isl.errMu.Lock()
			isl.errs = append(isl.errs, err)
			isl.errMu.Unlock()
		}
	}()
}

// Busy reports whether evolve tasks are queued or running.
func (isl *Island) Busy() bool { return isl.pending.Load() > 0 }

// Wait blocks until all tasks enqueued so far have finished, then discards
// any latched errors.
func (isl *Island) Wait() {
	isl.waitTail()
	isl.errMu.Lock()
	isl.errs = nil
	isl.errMu.Unlock()
}

// Get blocks until all tasks enqueued so far have finished, then drains the
// latched errors and returns the first of them, nil when every task
// succeeded.
func (isl *Island) Get() error {
	isl.waitTail()
	isl.errMu.Lock()
	defer isl.errMu.Unlock()
	if len(isl.errs) == 0 {
		return nil
	}
	err := isl.errs[0]
	isl.errs = nil
	return err
}

func (isl *Island) waitTail() {
	isl.taskMu.Lock()
	tail := isl.tail
	isl.taskMu.Unlock()
	if tail != nil {
		<-tail
	}
}

// Population returns a copy of the island's population. Safe while the
// island is evolving.
func (isl *Island) Population() *population.Population {
	isl.mu.Lock()
	defer isl.mu.Unlock()
	return isl.pop.Clone()
}

// SetPopulation replaces the island's population with a copy of pop. Safe
// while the island is evolving; a running task keeps operating on its own
// snapshot.
func (isl *Island) SetPopulation(pop *population.Population) {
	cp := pop.Clone()
	isl.mu.Lock()
	isl.pop = cp
	isl.mu.Unlock()
}

// Algorithm returns a copy of the island's algorithm.
func (isl *Island) Algorithm() (*algorithm.Algorithm, error) {
	isl.mu.Lock()
	defer isl.mu.Unlock()
	return isl.algo.Clone()
}

// SetAlgorithm replaces the island's algorithm with a copy of algo.
func (isl *Island) SetAlgorithm(algo *algorithm.Algorithm) error {
	cp, err := algo.Clone()
	if err != nil {
		return err
	}
	isl.mu.Lock()
	isl.algo = cp
	isl.mu.Unlock()
	return nil
}

// ThreadSafety returns the declared levels of the island's problem and
// algorithm.
func (isl *Island) ThreadSafety() (prob, algo framework.ThreadSafety) {
	isl.mu.Lock()
	defer isl.mu.Unlock()
	return isl.pop.Problem().ThreadSafety(), isl.algo.ThreadSafety()
}

// Name returns the runner's name.
func (isl *Island) Name() string { return isl.runner.Name() }

// Status describes the task queue and the latched error state.
func (isl *Island) Status() string {
	isl.errMu.Lock()
	hasErr := len(isl.errs) > 0
	isl.errMu.Unlock()
	switch {
	case isl.Busy() && hasErr:
		return "busy - errors occurred"
	case isl.Busy():
		return "busy"
	case hasErr:
		return "idle - errors occurred"
	default:
		return "idle"
	}
}

// ExtraInfo returns runner details, empty when undeclared.
func (isl *Island) ExtraInfo() string {
	if e, ok := isl.runner.(ExtraInfoRunner); ok {
		return e.ExtraInfo()
	}
	return ""
}

// Clone returns an independent island with copies of the algorithm and the
// population and an empty task queue. Safe while the island is evolving.
func (isl *Island) Clone() (*Island, error) {
	isl.mu.Lock()
	pop := isl.pop.Clone()
	algo, err := isl.algo.Clone()
	isl.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &Island{runner: isl.runner, algo: algo, pop: pop}, nil
}

func (isl *Island) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Island name: %s\n", isl.Name())
	fmt.Fprintf(&b, "\tStatus: %s\n\n", isl.Status())
	if extra := isl.ExtraInfo(); extra != "" {
		fmt.Fprintf(&b, "Extra info:\n\t%s\n\n", extra)
	}
	isl.mu.Lock()
	defer isl.mu.Unlock()
	b.WriteString(isl.algo.String())
	b.WriteString("\n")
	b.WriteString(isl.pop.String())
	return b.String()
}

type islandJSON struct {
	Runner     string                 `json:"runner"`
	Algorithm  *algorithm.Algorithm   `json:"algorithm"`
	Population *population.Population `json:"population"`
}

// MarshalJSON encodes the runner name, the algorithm and the population.
// Callers should Wait first; an island snapshot taken mid-evolution is
// consistent but arbitrary.
func (isl *Island) MarshalJSON() ([]byte, error) {
	isl.mu.Lock()
	defer isl.mu.Unlock()
	return json.Marshal(islandJSON{
		Runner:     isl.runner.Name(),
		Algorithm:  isl.algo,
		Population: isl.pop,
	})
}

// UnmarshalJSON restores an island through the runner, algorithm and problem
// registries. The restored island starts idle with no latched errors.
func (isl *Island) UnmarshalJSON(data []byte) error {
	ij := islandJSON{
		Algorithm:  &algorithm.Algorithm{},
		Population: &population.Population{},
	}
	if err := json.Unmarshal(data, &ij); err != nil {
		return err
	}
	r, err := decodeRunner(ij.Runner)
	if err != nil {
		return err
	}
	isl.runner = r
	isl.algo = ij.Algorithm
	isl.pop = ij.Population
	isl.tail = nil
	isl.errs = nil
	return nil
}
