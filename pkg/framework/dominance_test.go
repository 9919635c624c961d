package framework

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better", []float64{1, 1}, []float64{2, 2}, true},
		{"better in one", []float64{1, 2}, []float64{2, 2}, true},
		{"equal", []float64{2, 2}, []float64{2, 2}, false},
		{"worse in one", []float64{1, 3}, []float64{2, 2}, false},
		{"strictly worse", []float64{3, 3}, []float64{2, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(tt.a, tt.b))
		})
	}
}

func TestNonDominatedSort(t *testing.T) {
	points := [][]float64{
		{1, 2},
		{2, 1},
		{3, 3},
		{4, 4},
	}
	fronts := NonDominatedSort(points)
	want := [][]int{{0, 1}, {2}, {3}}
	if diff := cmp.Diff(want, fronts); diff != "" {
		t.Errorf("fronts mismatch (-want +got):\n%s", diff)
	}
}

func TestNonDominatedSortSingleFront(t *testing.T) {
	points := [][]float64{{1, 3}, {2, 2}, {3, 1}}
	fronts := NonDominatedSort(points)
	assert.Len(t, fronts, 1)
	assert.ElementsMatch(t, []int{0, 1, 2}, fronts[0])
}

func TestCrowdingDistance(t *testing.T) {
	points := [][]float64{{0, 2}, {1, 1}, {2, 0}}
	front := []int{0, 1, 2}
	dist := CrowdingDistance(points, front)

	assert.True(t, math.IsInf(dist[0], 1))
	assert.True(t, math.IsInf(dist[2], 1))
	// Middle point: (2-0)/2 per objective.
	assert.InDelta(t, 2.0, dist[1], 1e-12)
}

func TestCrowdingDistanceSmallFront(t *testing.T) {
	points := [][]float64{{0, 2}, {2, 0}}
	dist := CrowdingDistance(points, []int{0, 1})
	for _, d := range dist {
		assert.True(t, math.IsInf(d, 1))
	}
}
