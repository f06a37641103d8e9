package services

import "math"

// MaxIntermediateStops bounds the free stops the exact solver accepts.
// Held-Karp needs O(2^m · m) memory and O(2^m · m²) time for m intermediates.
const MaxIntermediateStops = 15

// OptimalOrder returns the visiting order of all stops that minimizes total
// travel time, with the origin (0) first and the final stop (n-1) last.
func OptimalOrder(m *TimeMatrix) []int {
	order, _ := SolveOrder(m)
	return order
}

// SolveOrder runs Held-Karp over the intermediates 1..n-2 and returns the
// order together with its cost in seconds (+Inf when no finite tour exists).
//
// dp[mask][j] is the cheapest path that leaves the origin, visits exactly the
// intermediates in mask and ends at intermediate j. Both tables are flat
// slices indexed mask*k + j. Ties keep the first minimum in iteration order.
func SolveOrder(m *TimeMatrix) ([]int, float64) {
	n := m.Size()
	if n <= 2 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order, TourCost(m, order)
	}

	k := n - 2
	final := n - 1
	full := 1<<k - 1

	dp := make([]float64, (full+1)*k)
	parent := make([]int32, (full+1)*k)
	for i := range dp {
		dp[i] = math.Inf(1)
		parent[i] = -1
	}

	// Intermediate bit j is matrix index j+1.
	for j := 0; j < k; j++ {
		dp[(1<<j)*k+j] = m.At(0, j+1)
	}

	for mask := 1; mask <= full; mask++ {
		for j := 0; j < k; j++ {
			bit := 1 << j
			if mask&bit == 0 || mask == bit {
				continue
			}
			prev := mask ^ bit

			best := math.Inf(1)
			bestK := -1
			for p := 0; p < k; p++ {
				if prev&(1<<p) == 0 {
					continue
				}
				cand := dp[prev*k+p] + m.At(p+1, j+1)
				if bestK < 0 || cand < best {
					best = cand
					bestK = p
				}
			}
			dp[mask*k+j] = best
			parent[mask*k+j] = int32(bestK)
		}
	}

	bestCost := math.Inf(1)
	last := -1
	for j := 0; j < k; j++ {
		cand := dp[full*k+j] + m.At(j+1, final)
		if last < 0 || cand < bestCost {
			bestCost = cand
			last = j
		}
	}

	order := make([]int, n)
	order[0] = 0
	order[final] = final
	mask := full
	j := last
	for pos := final - 1; pos >= 1; pos-- {
		order[pos] = j + 1
		p := int(parent[mask*k+j])
		mask ^= 1 << j
		j = p
	}

	return order, bestCost
}

// TourCost sums the matrix cost of consecutive pairs in order.
func TourCost(m *TimeMatrix, order []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(order); i++ {
		total += m.At(order[i], order[i+1])
	}
	return total
}
