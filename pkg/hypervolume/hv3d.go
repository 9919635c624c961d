package hypervolume

import "sort"

// HV3D computes 3D hypervolumes by sweeping the third objective in ascending
// order and integrating the 2D staircase area of the points seen so far over
// each slab.
type HV3D struct{}

func (HV3D) Name() string { return "hv3d" }

func (HV3D) Supports(dim int) bool { return dim == 3 }

func (HV3D) Compute(points [][]float64, ref []float64) float64 {
	sorted := append([][]float64(nil), points...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a][2] < sorted[b][2] })

	ref2 := ref[:2]
	var hv2 HV2D
	seen := make([][]float64, 0, len(sorted))
	vol := 0.0
	prevZ := sorted[0][2]
	for _, p := range sorted {
		vol += hv2.Compute(seen, ref2) * (p[2] - prevZ)
		seen = append(seen, p[:2])
		prevZ = p[2]
	}
	vol += hv2.Compute(seen, ref2) * (ref[2] - prevZ)
	return vol
}
