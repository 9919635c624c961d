// Package archipelago coordinates a fleet of islands evolving in parallel.
// The archipelago preserves island insertion order; all collective operations
// visit islands in that order.
package archipelago

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/island"
	"github.com/pelago/pelago/pkg/population"
	"github.com/pelago/pelago/pkg/problem"
)

// Archipelago is an ordered collection of islands. Methods on the archipelago
// are safe to call while islands are evolving.
type Archipelago struct {
	mu      sync.Mutex
	islands []*island.Island
}

// New builds an empty archipelago.
func New() *Archipelago { return &Archipelago{} }

// NewTemplate builds n islands sharing an algorithm and problem template,
// each with an independent problem copy and a randomly seeded population of
// popSize individuals.
func NewTemplate(n int, algo *algorithm.Algorithm, prob *problem.Problem, popSize int) (*Archipelago, error) {
	return NewTemplateSeeded(n, algo, prob, popSize, rand.Uint64())
}

// NewTemplateSeeded is NewTemplate with a deterministic master seed. The
// per-island population seeds are drawn from the master stream and are
// guaranteed pairwise distinct, so no two islands start from identical
// populations.
func NewTemplateSeeded(n int, algo *algorithm.Algorithm, prob *problem.Problem, popSize int, seed uint64) (*Archipelago, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative island count %d", framework.ErrInvalidArgument, n)
	}
	if algo == nil || prob == nil {
		return nil, fmt.Errorf("%w: nil algorithm or problem template", framework.ErrInvalidArgument)
	}
	master := rand.New(rand.NewPCG(seed, seed))
	used := make(map[uint64]struct{}, n)
	archi := New()
	for i := 0; i < n; i++ {
		islSeed := master.Uint64()
		for {
			if _, dup := used[islSeed]; !dup {
				break
			}
			islSeed = master.Uint64()
		}
		used[islSeed] = struct{}{}

		p, err := prob.Clone()
		if err != nil {
			return nil, fmt.Errorf("archipelago: island %d: %w", i, err)
		}
		pop, err := population.NewSeeded(p, popSize, islSeed)
		if err != nil {
			return nil, fmt.Errorf("archipelago: island %d: %w", i, err)
		}
		isl, err := island.NewDefault(algo, pop)
		if err != nil {
			return nil, fmt.Errorf("archipelago: island %d: %w", i, err)
		}
		archi.islands = append(archi.islands, isl)
	}
	klog.V(4).InfoS("archipelago built", "islands", n, "popSize", popSize, "seed", seed)
	return archi, nil
}

// PushBack appends an independent copy of isl.
func (a *Archipelago) PushBack(isl *island.Island) error {
	cp, err := isl.Clone()
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.islands = append(a.islands, cp)
	a.mu.Unlock()
	return nil
}

// PushBackNew builds an island with the thread runner from algo and pop and
// appends it.
func (a *Archipelago) PushBackNew(algo *algorithm.Algorithm, pop *population.Population) error {
	isl, err := island.NewDefault(algo, pop)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.islands = append(a.islands, isl)
	a.mu.Unlock()
	return nil
}

// Size is the number of islands.
func (a *Archipelago) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.islands)
}

// At returns the i-th island. The island itself is shared, not copied; its
// own accessors exchange copies.
func (a *Archipelago) At(i int) (*island.Island, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.islands) {
		return nil, fmt.Errorf("%w: island index %d out of range [0, %d)",
			framework.ErrInvalidArgument, i, len(a.islands))
	}
	return a.islands[i], nil
}

func (a *Archipelago) snapshot() []*island.Island {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*island.Island(nil), a.islands...)
}

// Evolve enqueues n evolve tasks on every island and returns immediately.
func (a *Archipelago) Evolve(n int) {
	for _, isl := range a.snapshot() {
		isl.Evolve(n)
	}
}

// Busy reports whether any island has tasks queued or running.
func (a *Archipelago) Busy() bool {
	for _, isl := range a.snapshot() {
		if isl.Busy() {
			return true
		}
	}
	return false
}

// Wait blocks until every island is idle, discarding latched errors.
func (a *Archipelago) Wait() {
	for _, isl := range a.snapshot() {
		isl.Wait()
	}
}

// Get blocks until every island is idle, drains all latched errors and
// returns the first one in island order, nil when every task succeeded.
func (a *Archipelago) Get() error {
	var first error
	for _, isl := range a.snapshot() {
		if err := isl.Get(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clone returns an independent archipelago with copies of every island. Safe
// while islands are evolving; busy islands are copied without waiting.
func (a *Archipelago) Clone() (*Archipelago, error) {
	cp := New()
	for i, isl := range a.snapshot() {
		ic, err := isl.Clone()
		if err != nil {
			return nil, fmt.Errorf("archipelago: cloning island %d: %w", i, err)
		}
		cp.islands = append(cp.islands, ic)
	}
	return cp, nil
}

func (a *Archipelago) String() string {
	islands := a.snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "Number of islands: %d\n", len(islands))
	fmt.Fprintf(&b, "Status: %s\n\n", map[bool]string{true: "busy", false: "idle"}[a.Busy()])
	b.WriteString("Islands summaries:\n")
	for i, isl := range islands {
		fmt.Fprintf(&b, "#%d: %s, population size %d, status %s\n", i, isl.Name(), isl.Population().Size(), isl.Status())
	}
	return b.String()
}

type archipelagoJSON struct {
	Islands []*island.Island `json:"islands"`
}

// MarshalJSON encodes every island. Callers should Wait first.
func (a *Archipelago) MarshalJSON() ([]byte, error) {
	return json.Marshal(archipelagoJSON{Islands: a.snapshot()})
}

// UnmarshalJSON restores every island through the registries.
func (a *Archipelago) UnmarshalJSON(data []byte) error {
	var aj archipelagoJSON
	if err := json.Unmarshal(data, &aj); err != nil {
		return err
	}
	a.mu.Lock()
	a.islands = aj.Islands
	a.mu.Unlock()
	return nil
}
