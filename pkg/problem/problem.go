// Package problem wraps user-defined optimization problems (UDPs) behind a
// uniform capability surface: dimension, bounds, objective and constraint
// counts, optional gradients and hessians, thread safety and evaluation
// counters.
package problem

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pelago/pelago/pkg/framework"
)

// UDP is the contract a user-defined problem needs to implement.
// Fitness returns the concatenation of objectives, equality constraints and
// inequality constraints, all framed for minimization.
type UDP interface {
	Name() string
	Fitness(x []float64) ([]float64, error)
	Bounds() (lb, ub []float64)
	NObj() int
}

// Optional UDP capabilities, discovered by type assertion.
type (
	// ConstraintCounter declares equality/inequality constraint counts.
	ConstraintCounter interface {
		NEC() int
		NIC() int
	}
	// GradientUDP computes the fitness gradient. A UDP may additionally
	// implement HasGradient() bool to disable the capability dynamically
	// (meta-problems forwarding to an inner problem need this).
	GradientUDP interface {
		Gradient(x []float64) ([]float64, error)
	}
	// HessiansUDP computes one hessian per fitness component.
	HessiansUDP interface {
		Hessians(x []float64) ([][]float64, error)
	}
	// SeededUDP is implemented by stochastic problems.
	SeededUDP interface {
		SetSeed(seed uint64)
	}
	// ThreadSafetyUDP overrides the default Basic thread safety level.
	ThreadSafetyUDP interface {
		ThreadSafety() framework.ThreadSafety
	}
	// ExtraInfoUDP provides free-form details for String.
	ExtraInfoUDP interface {
		ExtraInfo() string
	}
	// ClonerUDP produces an independent copy of the UDP. Problems that do
	// not implement it are cloned through the serialization registry.
	ClonerUDP interface {
		CloneUDP() UDP
	}
	// TaggedUDP overrides the serialization tag. Meta-problems whose display
	// name depends on the wrapped problem need a stable tag; plain problems
	// serialize under their Name.
	TaggedUDP interface {
		Tag() string
	}
)

func tagOf(udp UDP) string {
	if t, ok := udp.(TaggedUDP); ok {
		return t.Tag()
	}
	return udp.Name()
}

// Problem owns a UDP and validates every evaluation against the dimensions
// declared at construction. The functional definition is immutable after New;
// only seeds and counters change.
type Problem struct {
	udp    UDP
	dim    int
	lb, ub []float64
	nobj   int
	nec    int
	nic    int

	fevals atomic.Uint64
	gevals atomic.Uint64
	hevals atomic.Uint64
}

// New validates the UDP's static properties and wraps it.
func New(udp UDP) (*Problem, error) {
	if udp == nil {
		return nil, fmt.Errorf("%w: nil UDP", framework.ErrInvalidArgument)
	}
	lb, ub := udp.Bounds()
	if len(lb) != len(ub) {
		return nil, fmt.Errorf("%w: problem %q: lower bounds have length %d, upper bounds %d",
			framework.ErrInvalidArgument, udp.Name(), len(lb), len(ub))
	}
	if len(lb) == 0 {
		return nil, fmt.Errorf("%w: problem %q has dimension 0", framework.ErrInvalidArgument, udp.Name())
	}
	for i := range lb {
		if lb[i] > ub[i] {
			return nil, fmt.Errorf("%w: problem %q: lower bound %g exceeds upper bound %g at component %d",
				framework.ErrInvalidArgument, udp.Name(), lb[i], ub[i], i)
		}
	}
	if udp.NObj() < 1 {
		return nil, fmt.Errorf("%w: problem %q declares %d objectives", framework.ErrInvalidArgument, udp.Name(), udp.NObj())
	}
	p := &Problem{
		udp:  udp,
		dim:  len(lb),
		lb:   append([]float64(nil), lb...),
		ub:   append([]float64(nil), ub...),
		nobj: udp.NObj(),
	}
	if cc, ok := udp.(ConstraintCounter); ok {
		p.nec, p.nic = cc.NEC(), cc.NIC()
		if p.nec < 0 || p.nic < 0 {
			return nil, fmt.Errorf("%w: problem %q declares negative constraint counts",
				framework.ErrInvalidArgument, udp.Name())
		}
	}
	return p, nil
}

// Dim is the decision vector length.
func (p *Problem) Dim() int { return p.dim }

// NObj is the number of objectives.
func (p *Problem) NObj() int { return p.nobj }

// NEC is the number of equality constraints.
func (p *Problem) NEC() int { return p.nec }

// NIC is the number of inequality constraints.
func (p *Problem) NIC() int { return p.nic }

// FDim is the fitness vector length: objectives plus constraints.
func (p *Problem) FDim() int { return p.nobj + p.nec + p.nic }

// Bounds returns copies of the lower and upper bounds.
func (p *Problem) Bounds() (lb, ub []float64) {
	return append([]float64(nil), p.lb...), append([]float64(nil), p.ub...)
}

// Fitness evaluates x and increments the fitness counter. The decision
// vector length and the returned fitness length are both validated.
func (p *Problem) Fitness(x []float64) ([]float64, error) {
	if len(x) != p.dim {
		return nil, fmt.Errorf("%w: problem %q: decision vector has length %d, expected %d",
			framework.ErrInvalidArgument, p.Name(), len(x), p.dim)
	}
	f, err := p.udp.Fitness(x)
	p.fevals.Add(1)
	if err != nil {
		return nil, fmt.Errorf("problem %q: fitness evaluation: %w", p.Name(), err)
	}
	if len(f) != p.FDim() {
		return nil, fmt.Errorf("%w: problem %q returned a fitness of length %d, expected %d",
			framework.ErrInvalidArgument, p.Name(), len(f), p.FDim())
	}
	return f, nil
}

// HasGradient reports whether the UDP computes gradients.
func (p *Problem) HasGradient() bool {
	if t, ok := p.udp.(interface{ HasGradient() bool }); ok {
		return t.HasGradient()
	}
	_, ok := p.udp.(GradientUDP)
	return ok
}

// Gradient evaluates the UDP gradient and increments the gradient counter.
func (p *Problem) Gradient(x []float64) ([]float64, error) {
	g, ok := p.udp.(GradientUDP)
	if !ok || !p.HasGradient() {
		return nil, fmt.Errorf("%w: problem %q has no gradient", framework.ErrInvalidArgument, p.Name())
	}
	if len(x) != p.dim {
		return nil, fmt.Errorf("%w: problem %q: decision vector has length %d, expected %d",
			framework.ErrInvalidArgument, p.Name(), len(x), p.dim)
	}
	p.gevals.Add(1)
	return g.Gradient(x)
}

// HasHessians reports whether the UDP computes hessians.
func (p *Problem) HasHessians() bool {
	_, ok := p.udp.(HessiansUDP)
	return ok
}

// Hessians evaluates the UDP hessians and increments the hessians counter.
func (p *Problem) Hessians(x []float64) ([][]float64, error) {
	h, ok := p.udp.(HessiansUDP)
	if !ok {
		return nil, fmt.Errorf("%w: problem %q has no hessians", framework.ErrInvalidArgument, p.Name())
	}
	if len(x) != p.dim {
		return nil, fmt.Errorf("%w: problem %q: decision vector has length %d, expected %d",
			framework.ErrInvalidArgument, p.Name(), len(x), p.dim)
	}
	p.hevals.Add(1)
	return h.Hessians(x)
}

// HasSetSeed reports whether the UDP is stochastic.
func (p *Problem) HasSetSeed() bool {
	_, ok := p.udp.(SeededUDP)
	return ok
}

// SetSeed reseeds a stochastic UDP.
func (p *Problem) SetSeed(seed uint64) error {
	s, ok := p.udp.(SeededUDP)
	if !ok {
		return fmt.Errorf("%w: problem %q is not stochastic", framework.ErrInvalidArgument, p.Name())
	}
	s.SetSeed(seed)
	return nil
}

// ThreadSafety returns the UDP's declared level, Basic when undeclared.
func (p *Problem) ThreadSafety() framework.ThreadSafety {
	if ts, ok := p.udp.(ThreadSafetyUDP); ok {
		return ts.ThreadSafety()
	}
	return framework.Basic
}

// Name returns the UDP name.
func (p *Problem) Name() string { return p.udp.Name() }

// ExtraInfo returns UDP details, empty when undeclared.
func (p *Problem) ExtraInfo() string {
	if e, ok := p.udp.(ExtraInfoUDP); ok {
		return e.ExtraInfo()
	}
	return ""
}

// Fevals returns the number of fitness evaluations so far.
func (p *Problem) Fevals() uint64 { return p.fevals.Load() }

// Gevals returns the number of gradient evaluations so far.
func (p *Problem) Gevals() uint64 { return p.gevals.Load() }

// Hevals returns the number of hessians evaluations so far.
func (p *Problem) Hevals() uint64 { return p.hevals.Load() }

// UDP exposes the wrapped problem for capability queries by concrete type.
func (p *Problem) UDP() UDP { return p.udp }

// Clone returns an independent copy of the problem with counters reset to
// the current values. The UDP is copied through ClonerUDP when implemented,
// through the serialization registry otherwise.
func (p *Problem) Clone() (*Problem, error) {
	var udp UDP
	if c, ok := p.udp.(ClonerUDP); ok {
		udp = c.CloneUDP()
	} else {
		var err error
		udp, err = decodeUDP(tagOf(p.udp), mustMarshal(p.udp))
		if err != nil {
			return nil, fmt.Errorf("cloning problem %q: %w", p.Name(), err)
		}
	}
	cp, err := New(udp)
	if err != nil {
		return nil, err
	}
	cp.fevals.Store(p.fevals.Load())
	cp.gevals.Store(p.gevals.Load())
	cp.hevals.Store(p.hevals.Load())
	return cp, nil
}

func (p *Problem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem name: %s\n", p.Name())
	fmt.Fprintf(&b, "\tDimension: %d\n", p.dim)
	fmt.Fprintf(&b, "\tObjectives: %d\n", p.nobj)
	fmt.Fprintf(&b, "\tEquality constraints: %d\n", p.nec)
	fmt.Fprintf(&b, "\tInequality constraints: %d\n", p.nic)
	fmt.Fprintf(&b, "\tLower bounds: %v\n", p.lb)
	fmt.Fprintf(&b, "\tUpper bounds: %v\n", p.ub)
	fmt.Fprintf(&b, "\tThread safety: %s\n", p.ThreadSafety())
	fmt.Fprintf(&b, "\tFitness evaluations: %d\n", p.Fevals())
	if extra := p.ExtraInfo(); extra != "" {
		fmt.Fprintf(&b, "\tExtra info:\n\t\t%s\n", extra)
	}
	return b.String()
}
