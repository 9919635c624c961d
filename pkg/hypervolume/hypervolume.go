// Package hypervolume measures the objective-space volume dominated by a set
// of fitness vectors relative to a reference point, under the minimization
// convention. It provides total, exclusive and per-point contribution
// computations with exact algorithms selected by dimension.
package hypervolume

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/population"
)

// Algorithm computes the hypervolume of a point set. Implementations may
// assume the inputs passed verification: uniform dimensions, every point
// weakly dominating the reference with at least one strict component.
type Algorithm interface {
	Name() string
	Supports(dim int) bool
	Compute(points [][]float64, ref []float64) float64
}

// contributionsAlgorithm is an optional fast path for per-point exclusive
// volumes over a duplicate-free point set.
type contributionsAlgorithm interface {
	Contributions(points [][]float64, ref []float64) []float64
}

// exclusiveTol bounds the cancellation noise tolerated when an exclusive
// volume comes out negative. The generic path subtracts two nearly equal
// totals, so results a few ulps below zero are rounding, not an algorithm
// defect; they are reported as exactly 0. Anything below the tolerance is an
// internal error.
const exclusiveTol = 1e-9

// Hypervolume holds an immutable snapshot of objective vectors.
type Hypervolume struct {
	points [][]float64
	dim    int
}

// New validates and copies a set of objective vectors. All points must share
// one dimension of at least 2.
func New(points [][]float64) (*Hypervolume, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: hypervolume of an empty point set", framework.ErrInvalidArgument)
	}
	dim := len(points[0])
	if dim < 2 {
		return nil, fmt.Errorf("%w: hypervolume requires points of dimension at least 2, got %d",
			framework.ErrInvalidArgument, dim)
	}
	cp := make([][]float64, len(points))
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: point %d has dimension %d, expected %d",
				framework.ErrInvalidArgument, i, len(p), dim)
		}
		cp[i] = append([]float64(nil), p...)
	}
	return &Hypervolume{points: cp, dim: dim}, nil
}

// FromPopulation snapshots the fitness vectors of a multi-objective
// population.
func FromPopulation(pop *population.Population) (*Hypervolume, error) {
	prob := pop.Problem()
	if prob.NObj() < 2 {
		return nil, fmt.Errorf("%w: hypervolume requires a multi-objective problem, %q has %d objective",
			framework.ErrInvalidArgument, prob.Name(), prob.NObj())
	}
	points := make([][]float64, pop.Size())
	for i := range points {
		points[i] = pop.F(i)
	}
	return New(points)
}

// Points returns a copy of the stored objective vectors.
func (hv *Hypervolume) Points() [][]float64 {
	cp := make([][]float64, len(hv.points))
	for i, p := range hv.points {
		cp[i] = append([]float64(nil), p...)
	}
	return cp
}

// Dim is the objective space dimension.
func (hv *Hypervolume) Dim() int { return hv.dim }

// RefPoint builds a valid reference point: the componentwise maximum over the
// stored points, shifted by offset in every component.
func (hv *Hypervolume) RefPoint(offset float64) []float64 {
	ref := append([]float64(nil), hv.points[0]...)
	for _, p := range hv.points[1:] {
		for i, v := range p {
			if v > ref[i] {
				ref[i] = v
			}
		}
	}
	floats.AddConst(offset, ref)
	return ref
}

// Compute returns the total dominated volume relative to ref, using the exact
// algorithm selected by dimension.
func (hv *Hypervolume) Compute(ref []float64) (float64, error) {
	return hv.ComputeWith(ref, nil)
}

// ComputeWith is Compute with an explicit algorithm. A nil algo selects by
// dimension.
func (hv *Hypervolume) ComputeWith(ref []float64, algo Algorithm) (float64, error) {
	algo, err := hv.verify(ref, algo)
	if err != nil {
		return 0, err
	}
	vol := algo.Compute(hv.points, ref)
	if vol < 0 {
		return 0, fmt.Errorf("%w: algorithm %q computed a negative hypervolume %g",
			framework.ErrInternal, algo.Name(), vol)
	}
	return vol, nil
}

// Exclusive returns the volume dominated solely by point idx. Duplicate
// points share no volume: the first occurrence carries the full exclusive
// contribution and later occurrences contribute zero.
func (hv *Hypervolume) Exclusive(idx int, ref []float64) (float64, error) {
	return hv.ExclusiveWith(idx, ref, nil)
}

// ExclusiveWith is Exclusive with an explicit algorithm.
func (hv *Hypervolume) ExclusiveWith(idx int, ref []float64, algo Algorithm) (float64, error) {
	if idx < 0 || idx >= len(hv.points) {
		return 0, fmt.Errorf("%w: point index %d out of range [0, %d)",
			framework.ErrInvalidArgument, idx, len(hv.points))
	}
	cs, err := hv.ContributionsWith(ref, algo)
	if err != nil {
		return 0, err
	}
	return cs[idx], nil
}

// Contributions returns the exclusive volume of every point, indexed like the
// constructor input. The result agrees elementwise with Exclusive.
func (hv *Hypervolume) Contributions(ref []float64) ([]float64, error) {
	return hv.ContributionsWith(ref, nil)
}

// ContributionsWith is Contributions with an explicit algorithm.
func (hv *Hypervolume) ContributionsWith(ref []float64, algo Algorithm) ([]float64, error) {
	algo, err := hv.verify(ref, algo)
	if err != nil {
		return nil, err
	}

	unique, firstOf := dedup(hv.points)
	uc := make([]float64, len(unique))
	if fast, ok := algo.(contributionsAlgorithm); ok {
		uc = fast.Contributions(unique, ref)
	} else {
		total := algo.Compute(unique, ref)
		rest := make([][]float64, 0, len(unique)-1)
		for i := range unique {
			rest = rest[:0]
			rest = append(rest, unique[:i]...)
			rest = append(rest, unique[i+1:]...)
			uc[i] = total
			if len(rest) > 0 {
				uc[i] -= algo.Compute(rest, ref)
			}
		}
	}
	for i, c := range uc {
		if c < 0 {
			if c < -exclusiveTol {
				return nil, fmt.Errorf("%w: algorithm %q computed a negative exclusive volume %g",
					framework.ErrInternal, algo.Name(), c)
			}
			uc[i] = 0
		}
	}

	cs := make([]float64, len(hv.points))
	for i, fi := range firstOf {
		if fi.first == i {
			cs[i] = uc[fi.pos]
		}
	}
	return cs, nil
}

// LeastContributor returns the index of the point with the smallest exclusive
// volume. Ties resolve to the lowest index.
func (hv *Hypervolume) LeastContributor(ref []float64) (int, error) {
	cs, err := hv.Contributions(ref)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, c := range cs {
		if c < cs[best] {
			best = i
		}
	}
	return best, nil
}

// GreatestContributor returns the index of the point with the largest
// exclusive volume. Ties resolve to the lowest index.
func (hv *Hypervolume) GreatestContributor(ref []float64) (int, error) {
	cs, err := hv.Contributions(ref)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, c := range cs {
		if c > cs[best] {
			best = i
		}
	}
	return best, nil
}

// verify checks the reference point against every stored point and resolves
// the algorithm. Every point must weakly dominate ref with at least one
// strictly smaller component.
func (hv *Hypervolume) verify(ref []float64, algo Algorithm) (Algorithm, error) {
	if len(ref) != hv.dim {
		return nil, fmt.Errorf("%w: reference point has dimension %d, points have %d",
			framework.ErrInvalidArgument, len(ref), hv.dim)
	}
	for i, p := range hv.points {
		strict := false
		for j, v := range p {
			if v > ref[j] {
				return nil, fmt.Errorf("%w: point %d exceeds the reference point in component %d (%g > %g)",
					framework.ErrInvalidArgument, i, j, v, ref[j])
			}
			if v < ref[j] {
				strict = true
			}
		}
		if !strict {
			return nil, fmt.Errorf("%w: point %d equals the reference point", framework.ErrInvalidArgument, i)
		}
	}
	if algo == nil {
		algo = algorithmFor(hv.dim)
	}
	if !algo.Supports(hv.dim) {
		return nil, fmt.Errorf("%w: algorithm %q does not support dimension %d",
			framework.ErrInvalidArgument, algo.Name(), hv.dim)
	}
	return algo, nil
}

func algorithmFor(dim int) Algorithm {
	switch dim {
	case 2:
		return HV2D{}
	case 3:
		return HV3D{}
	default:
		return WFG{}
	}
}

type occurrence struct {
	first int // index of the first point equal to this one
	pos   int // position of that first occurrence in the unique set
}

// dedup collapses equal points. It returns the duplicate-free set in first
// occurrence order and, per original index, its first occurrence and that
// occurrence's position in the unique set.
func dedup(points [][]float64) ([][]float64, []occurrence) {
	unique := make([][]float64, 0, len(points))
	firstOf := make([]occurrence, len(points))
	for i, p := range points {
		firstOf[i] = occurrence{first: i, pos: len(unique)}
		for j := 0; j < i; j++ {
			if floats.Equal(points[j], p) {
				firstOf[i] = firstOf[j]
				break
			}
		}
		if firstOf[i].first == i {
			unique = append(unique, p)
		}
	}
	return unique, firstOf
}
