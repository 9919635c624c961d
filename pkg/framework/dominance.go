package framework

import (
	"math"
	"sort"
)

// Dominates checks if fitness vector a dominates fitness vector b under the
// minimization convention: a is componentwise <= b with at least one strict
// inequality.
func Dominates(a, b []float64) bool {
	better := false
	for i := 0; i < len(a); i++ {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			better = true
		}
	}
	return better
}

// NonDominatedSort performs non-dominated sorting on a set of fitness vectors
// and returns the fronts as slices of indices into points. The first front
// holds the non-dominated points, the second front the points dominated only
// by the first, and so on.
func NonDominatedSort(points [][]float64) [][]int {
	var fronts [][]int
	dominated := make(map[int][]int)
	domCount := make([]int, len(points))

	// Calculate domination for each point
	for i := 0; i < len(points); i++ {
		dominated[i] = []int{}
		for j := 0; j < len(points); j++ {
			if i != j {
				if Dominates(points[i], points[j]) {
					dominated[i] = append(dominated[i], j)
				} else if Dominates(points[j], points[i]) {
					domCount[i]++
				}
			}
		}
	}

	// Find first front
	currentFront := []int{}
	for i := 0; i < len(points); i++ {
		if domCount[i] == 0 {
			currentFront = append(currentFront, i)
		}
	}
	fronts = append(fronts, currentFront)

	// Find subsequent fronts
	for len(currentFront) > 0 {
		nextFront := []int{}
		for _, idx := range currentFront {
			for _, dominatedIdx := range dominated[idx] {
				domCount[dominatedIdx]--
				if domCount[dominatedIdx] == 0 {
					nextFront = append(nextFront, dominatedIdx)
				}
			}
		}
		if len(nextFront) > 0 {
			fronts = append(fronts, nextFront)
		}
		currentFront = nextFront
	}

	return fronts
}

// CrowdingDistance calculates the crowding distance for the points of a front.
// front holds indices into points; the result is indexed like front.
func CrowdingDistance(points [][]float64, front []int) []float64 {
	dist := make([]float64, len(front))
	if len(front) <= 2 {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	numObjectives := len(points[front[0]])
	order := make([]int, len(front))
	for m := 0; m < numObjectives; m++ {
		for i := range order {
			order[i] = i
		}
		// Sort by each objective
		sort.Slice(order, func(i, j int) bool {
			return points[front[order[i]]][m] < points[front[order[j]]][m]
		})

		// Boundary points go to infinity
		dist[order[0]] = math.Inf(1)
		dist[order[len(order)-1]] = math.Inf(1)

		objectiveRange := points[front[order[len(order)-1]]][m] - points[front[order[0]]][m]
		if objectiveRange == 0 {
			continue
		}

		for i := 1; i < len(order)-1; i++ {
			dist[order[i]] += (points[front[order[i+1]]][m] - points[front[order[i-1]]][m]) / objectiveRange
		}
	}
	return dist
}
