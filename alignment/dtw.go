// Package alignment implements the DTW aligner (C11): mapping between
// score measures and audio timestamps from two chroma matrices.
package alignment

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// dtwResult is the raw cost-matrix-and-path output of RunDTW, before it is
// wrapped into a model.AlignmentResult with measure/time mappings.
type dtwResult struct {
	path       []pathPoint
	distance   float64
	confidence float64
}

type pathPoint struct {
	i, j int
}

// RunDTW computes the minimum-cost monotone alignment between symbolic
// matrix S and acoustic matrix A (each a slice of 12-bin chroma frames),
// per spec.md §4.11: D[i][j] = d(S[i-1], A[j-1]) + min(D[i-1][j],
// D[i][j-1], D[i-1][j-1]), d = Euclidean. Backtrack prefers diagonal, else
// whichever of left/up is smaller. Confidence = clip(1 - D[n][m]/(n*m), 0, 1).
func RunDTW(s, a [][]float64) dtwResult {
	n, m := len(s), len(a)
	if n == 0 || m == 0 {
		return dtwResult{path: nil, distance: math.Inf(1), confidence: 0}
	}

	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
		}
	}
	cost[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			d := floats.Distance(s[i-1], a[j-1], 2)
			best := math.Min(cost[i-1][j], math.Min(cost[i][j-1], cost[i-1][j-1]))
			cost[i][j] = d + best
		}
	}

	path := backtrack(cost, n, m)
	distance := cost[n][m]
	confidence := clip01(1 - distance/float64(n*m))

	return dtwResult{path: path, distance: distance, confidence: confidence}
}

// backtrack walks from (n,m) to (0,0), preferring the diagonal predecessor
// and otherwise whichever of left/up carries the smaller cost.
func backtrack(cost [][]float64, n, m int) []pathPoint {
	var path []pathPoint
	i, j := n, m
	for i > 0 && j > 0 {
		path = append([]pathPoint{{i - 1, j - 1}}, path...)

		diag := cost[i-1][j-1]
		left := cost[i][j-1]
		up := cost[i-1][j]

		switch {
		case diag <= left && diag <= up:
			i, j = i-1, j-1
		case left < up:
			j--
		default:
			i--
		}
	}
	for i > 0 {
		path = append([]pathPoint{{i - 1, 0}}, path...)
		i--
	}
	for j > 0 {
		path = append([]pathPoint{{0, j - 1}}, path...)
		j--
	}
	return path
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
