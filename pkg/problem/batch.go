package problem

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/framework"
)

// FitnessBatch evaluates every decision vector in xs and returns the fitness
// vectors in matching order. When the problem declares Basic thread safety
// and can be cloned, the batch is fanned out over per-worker clones; the
// worker fitness counts are folded back into this problem's counter.
// Otherwise the batch runs serially on this instance.
func (p *Problem) FitnessBatch(xs [][]float64) ([][]float64, error) {
	fs := make([][]float64, len(xs))
	workers := runtime.NumCPU()
	if workers > len(xs) {
		workers = len(xs)
	}
	if workers <= 1 || p.ThreadSafety() < framework.Basic {
		if err := p.fitnessRange(xs, fs, 0, len(xs)); err != nil {
			return nil, err
		}
		return fs, nil
	}

	clones := make([]*Problem, workers)
	for i := range clones {
		c, err := p.Clone()
		if err != nil {
			// Unclonable problems fall back to serial evaluation.
			klog.V(4).InfoS("batch evaluation falling back to serial", "problem", p.Name(), "reason", err)
			if serr := p.fitnessRange(xs, fs, 0, len(xs)); serr != nil {
				return nil, serr
			}
			return fs, nil
		}
		c.fevals.Store(0)
		clones[i] = c
	}

	var g errgroup.Group
	chunk := (len(xs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > len(xs) {
			hi = len(xs)
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			return clones[w].fitnessRange(xs, fs, lo, hi)
		})
	}
	err := g.Wait()
	for _, c := range clones {
		p.fevals.Add(c.fevals.Load())
	}
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func (p *Problem) fitnessRange(xs, fs [][]float64, lo, hi int) error {
	for i := lo; i < hi; i++ {
		f, err := p.Fitness(xs[i])
		if err != nil {
			return err
		}
		fs[i] = f
	}
	return nil
}
