package hypervolume

// WFG is the walking-fish-group algorithm for arbitrary dimension: the total
// volume is the sum over points of inclusive volume minus the volume of the
// remaining points limited to the current one, computed recursively with a 2D
// base case.
type WFG struct{}

func (WFG) Name() string { return "wfg" }

func (WFG) Supports(dim int) bool { return dim >= 2 }

func (w WFG) Compute(points [][]float64, ref []float64) float64 {
	return w.recurse(points, ref)
}

func (w WFG) recurse(points [][]float64, ref []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if len(ref) == 2 {
		return HV2D{}.Compute(points, ref)
	}
	vol := 0.0
	for i, p := range points {
		vol += inclusive(p, ref) - w.recurse(limitSet(points[i+1:], p), ref)
	}
	return vol
}

// inclusive is the volume of the box spanned by a single point and ref.
func inclusive(p, ref []float64) float64 {
	v := 1.0
	for i := range p {
		v *= ref[i] - p[i]
	}
	return v
}

// limitSet projects each point onto the region dominated by p (componentwise
// maximum) and discards the weakly dominated projections.
func limitSet(points [][]float64, p []float64) [][]float64 {
	limited := make([][]float64, len(points))
	for i, q := range points {
		l := make([]float64, len(q))
		for j := range q {
			l[j] = q[j]
			if p[j] > l[j] {
				l[j] = p[j]
			}
		}
		limited[i] = l
	}

	// Keep only the non-dominated projections; the first of equal
	// projections survives.
	dominated := make([]bool, len(limited))
	for i := range limited {
		for j := range limited {
			if i == j || dominated[j] {
				continue
			}
			if weaklyDominates(limited[j], limited[i]) && (j < i || !weaklyDominates(limited[i], limited[j])) {
				dominated[i] = true
				break
			}
		}
	}
	kept := limited[:0]
	for i, q := range limited {
		if !dominated[i] {
			kept = append(kept, q)
		}
	}
	return kept
}

// weaklyDominates reports a componentwise <= b.
func weaklyDominates(a, b []float64) bool {
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}
