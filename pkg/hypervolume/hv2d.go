package hypervolume

import "sort"

// HV2D computes 2D hypervolumes with a single staircase sweep after sorting,
// O(n log n).
type HV2D struct{}

func (HV2D) Name() string { return "hv2d" }

func (HV2D) Supports(dim int) bool { return dim == 2 }

// Compute sweeps the points by ascending first objective and accumulates one
// rectangle per staircase step. Dominated points never lower the running
// minimum and add nothing.
func (HV2D) Compute(points [][]float64, ref []float64) float64 {
	sorted := sortedByX(points)
	area := 0.0
	prevY := ref[1]
	for _, p := range sorted {
		if p[1] < prevY {
			area += (ref[0] - p[0]) * (prevY - p[1])
			prevY = p[1]
		}
	}
	return area
}

// Contributions computes exclusive areas in one sweep: a staircase point's
// exclusive region is the rectangle between its successor's first objective
// and its predecessor's second objective, minus the area dominated points
// cover inside that rectangle. Dominated points themselves contribute zero.
func (HV2D) Contributions(points [][]float64, ref []float64) []float64 {
	type indexed struct {
		p   []float64
		idx int
	}
	sorted := make([]indexed, len(points))
	for i, p := range points {
		sorted[i] = indexed{p: p, idx: i}
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].p[0] != sorted[b].p[0] {
			return sorted[a].p[0] < sorted[b].p[0]
		}
		return sorted[a].p[1] < sorted[b].p[1]
	})

	// The staircase is the subsequence with strictly decreasing second
	// objective; everything else is dominated. A dominated point can only
	// intrude into the exclusive rectangle of its staircase predecessor in
	// the sweep order, so it is grouped with that point.
	stair := make([]indexed, 0, len(sorted))
	intruders := make([][][]float64, 0, len(sorted))
	minY := ref[1]
	for _, e := range sorted {
		if e.p[1] < minY {
			stair = append(stair, e)
			intruders = append(intruders, nil)
			minY = e.p[1]
			continue
		}
		if len(stair) > 0 {
			intruders[len(stair)-1] = append(intruders[len(stair)-1], e.p)
		}
	}

	cs := make([]float64, len(points))
	for i, e := range stair {
		nextX := ref[0]
		if i+1 < len(stair) {
			nextX = stair[i+1].p[0]
		}
		prevY := ref[1]
		if i > 0 {
			prevY = stair[i-1].p[1]
		}
		area := (nextX - e.p[0]) * (prevY - e.p[1])
		if len(intruders[i]) > 0 {
			area -= HV2D{}.Compute(intruders[i], []float64{nextX, prevY})
		}
		cs[e.idx] = area
	}
	return cs
}

func sortedByX(points [][]float64) [][]float64 {
	sorted := append([][]float64(nil), points...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a][0] != sorted[b][0] {
			return sorted[a][0] < sorted[b][0]
		}
		return sorted[a][1] < sorted[b][1]
	})
	return sorted
}
