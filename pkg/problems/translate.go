package problems

import (
	"encoding/json"
	"fmt"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/problem"
)

// Translate is a meta-problem that shifts the whole search space of an inner
// problem by a fixed translation vector: fitness(x) = inner(x - t), with the
// box bounds shifted by t.
type Translate struct {
	inner       *problem.Problem
	translation []float64
}

// NewTranslate wraps inner so that its search space is shifted by translation,
// whose length must equal the inner problem's dimension.
func NewTranslate(inner *problem.Problem, translation []float64) (*Translate, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: nil inner problem", framework.ErrInvalidArgument)
	}
	if len(translation) != inner.Dim() {
		return nil, fmt.Errorf("%w: translation vector has length %d while the problem dimension is %d",
			framework.ErrInvalidArgument, len(translation), inner.Dim())
	}
	return &Translate{
		inner:       inner,
		translation: append([]float64(nil), translation...),
	}, nil
}

// Inner returns the wrapped problem.
func (p *Translate) Inner() *problem.Problem { return p.inner }

// Translation returns a copy of the translation vector.
func (p *Translate) Translation() []float64 {
	return append([]float64(nil), p.translation...)
}

func (p *Translate) Name() string { return p.inner.Name() + " [translated]" }

// Tag keeps the serialization key independent of the inner problem's name.
func (p *Translate) Tag() string { return "translate" }

func (p *Translate) NObj() int { return p.inner.NObj() }

func (p *Translate) NEC() int { return p.inner.NEC() }

func (p *Translate) NIC() int { return p.inner.NIC() }

func (p *Translate) Bounds() (lb, ub []float64) {
	lb, ub = p.inner.Bounds()
	for i := range lb {
		lb[i] += p.translation[i]
		ub[i] += p.translation[i]
	}
	return lb, ub
}

func (p *Translate) Fitness(x []float64) ([]float64, error) {
	return p.inner.Fitness(p.deshift(x))
}

func (p *Translate) Gradient(x []float64) ([]float64, error) {
	return p.inner.Gradient(p.deshift(x))
}

// HasGradient mirrors the inner problem; the wrapper's Gradient method alone
// would make every translated problem claim one.
func (p *Translate) HasGradient() bool { return p.inner.HasGradient() }

func (p *Translate) ThreadSafety() framework.ThreadSafety { return p.inner.ThreadSafety() }

func (p *Translate) ExtraInfo() string {
	return fmt.Sprintf("Translation vector: %v", p.translation)
}

func (p *Translate) CloneUDP() problem.UDP {
	inner, err := p.inner.Clone()
	if err != nil {
		// The inner problem was cloneable at construction time in every
		// supported path; reaching this is a defect.
		panic(fmt.Sprintf("translate: cloning inner problem: %v", err))
	}
	return &Translate{inner: inner, translation: p.Translation()}
}

func (p *Translate) deshift(x []float64) []float64 {
	shifted := make([]float64, len(x))
	for i := range x {
		shifted[i] = x[i] - p.translation[i]
	}
	return shifted
}

type translateJSON struct {
	Inner       *problem.Problem `json:"inner"`
	Translation []float64        `json:"translation"`
}

func (p *Translate) MarshalJSON() ([]byte, error) {
	return json.Marshal(translateJSON{Inner: p.inner, Translation: p.translation})
}

func (p *Translate) UnmarshalJSON(data []byte) error {
	tj := translateJSON{Inner: &problem.Problem{}}
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	p.inner = tj.Inner
	p.translation = tj.Translation
	return nil
}
