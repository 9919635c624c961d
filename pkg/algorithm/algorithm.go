// Package algorithm wraps user-defined optimization algorithms (UDAs) behind
// a uniform capability surface: evolve, seeding, verbosity, thread safety and
// the per-generation evolution log.
package algorithm

import (
	"fmt"
	"strings"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// UDA is the contract a user-defined algorithm needs to implement. Evolve
// takes a population and returns the evolved population; implementations are
// size-preserving.
type UDA interface {
	Name() string
	Evolve(pop *population.Population) (*population.Population, error)
}

// Optional UDA capabilities, discovered by type assertion.
type (
	// SeededUDA is implemented by stochastic algorithms.
	SeededUDA interface {
		SetSeed(seed uint64)
	}
	// VerboseUDA controls per-generation logging.
	VerboseUDA interface {
		SetVerbosity(level int)
	}
	// ThreadSafetyUDA overrides the default Basic thread safety level.
	ThreadSafetyUDA interface {
		ThreadSafety() framework.ThreadSafety
	}
	// ExtraInfoUDA provides free-form details for String.
	ExtraInfoUDA interface {
		ExtraInfo() string
	}
	// LogReporter exposes the evolution log.
	LogReporter interface {
		Log() []framework.LogLine
	}
	// ClonerUDA produces an independent copy of the UDA. Algorithms that do
	// not implement it are cloned through the serialization registry.
	ClonerUDA interface {
		CloneUDA() UDA
	}
)

// Algorithm owns a UDA. The evolve operation is logically pure with respect
// to the algorithm identity; seeds, verbosity and the log are the only
// mutable state.
type Algorithm struct {
	uda UDA
}

// New wraps a UDA.
func New(uda UDA) (*Algorithm, error) {
	if uda == nil {
		return nil, fmt.Errorf("%w: nil UDA", framework.ErrInvalidArgument)
	}
	return &Algorithm{uda: uda}, nil
}

// Evolve runs the UDA on pop and returns the evolved population.
func (a *Algorithm) Evolve(pop *population.Population) (*population.Population, error) {
	if pop == nil {
		return nil, fmt.Errorf("%w: nil population", framework.ErrInvalidArgument)
	}
	out, err := a.uda.Evolve(pop)
	if err != nil {
		return nil, fmt.Errorf("algorithm %q: evolve: %w", a.Name(), err)
	}
	return out, nil
}

// HasSetSeed reports whether the UDA is stochastic.
func (a *Algorithm) HasSetSeed() bool {
	_, ok := a.uda.(SeededUDA)
	return ok
}

// SetSeed reseeds a stochastic UDA.
func (a *Algorithm) SetSeed(seed uint64) error {
	s, ok := a.uda.(SeededUDA)
	if !ok {
		return fmt.Errorf("%w: algorithm %q is not stochastic", framework.ErrInvalidArgument, a.Name())
	}
	s.SetSeed(seed)
	return nil
}

// HasSetVerbosity reports whether the UDA supports verbosity control.
func (a *Algorithm) HasSetVerbosity() bool {
	_, ok := a.uda.(VerboseUDA)
	return ok
}

// SetVerbosity sets the UDA's log verbosity.
func (a *Algorithm) SetVerbosity(level int) error {
	v, ok := a.uda.(VerboseUDA)
	if !ok {
		return fmt.Errorf("%w: algorithm %q does not support verbosity", framework.ErrInvalidArgument, a.Name())
	}
	v.SetVerbosity(level)
	return nil
}

// ThreadSafety returns the UDA's declared level, Basic when undeclared.
func (a *Algorithm) ThreadSafety() framework.ThreadSafety {
	if ts, ok := a.uda.(ThreadSafetyUDA); ok {
		return ts.ThreadSafety()
	}
	return framework.Basic
}

// Name returns the UDA name.
func (a *Algorithm) Name() string { return a.uda.Name() }

// ExtraInfo returns UDA details, empty when undeclared.
func (a *Algorithm) ExtraInfo() string {
	if e, ok := a.uda.(ExtraInfoUDA); ok {
		return e.ExtraInfo()
	}
	return ""
}

// Log returns the UDA's evolution log, nil when the UDA keeps none.
func (a *Algorithm) Log() []framework.LogLine {
	if l, ok := a.uda.(LogReporter); ok {
		return l.Log()
	}
	return nil
}

// UDA exposes the wrapped algorithm for capability queries by concrete type.
func (a *Algorithm) UDA() UDA { return a.uda }

// Clone returns an independent copy of the algorithm. The UDA is copied
// through ClonerUDA when implemented, through the serialization registry
// otherwise.
func (a *Algorithm) Clone() (*Algorithm, error) {
	if c, ok := a.uda.(ClonerUDA); ok {
		return New(c.CloneUDA())
	}
	uda, err := decodeUDA(a.uda.Name(), mustMarshal(a.uda))
	if err != nil {
		return nil, fmt.Errorf("cloning algorithm %q: %w", a.Name(), err)
	}
	return New(uda)
}

func (a *Algorithm) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Algorithm name: %s\n", a.Name())
	fmt.Fprintf(&b, "\tThread safety: %s\n", a.ThreadSafety())
	if extra := a.ExtraInfo(); extra != "" {
		fmt.Fprintf(&b, "\tExtra info:\n\t\t%s\n", extra)
	}
	return b.String()
}
