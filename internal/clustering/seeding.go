package clustering

import "math/rand"

// SeedPlusPlus picks k initial centroids with K-means++: the first uniformly
// at random, each subsequent one with probability proportional to its squared
// distance to the nearest centroid chosen so far. Callers guarantee
// 1 <= k <= len(data).
func SeedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.Intn(n)]))

	// minDist[i] tracks the squared distance from point i to its nearest chosen centroid.
	minDist := make([]float64, n)
	for i, p := range data {
		minDist[i] = SquaredEuclidean(p, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range minDist {
			total += d
		}

		var chosen int
		if total == 0 {
			// Every point coincides with a centroid already.
			chosen = rng.Intn(n)
		} else {
			chosen = weightedPick(minDist, total, rng)
		}

		next := clone(data[chosen])
		centroids = append(centroids, next)
		for i, p := range data {
			if d := SquaredEuclidean(p, next); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centroids
}

// weightedPick samples an index with probability weights[i]/total.
func weightedPick(weights []float64, total float64, rng *rand.Rand) int {
	threshold := rng.Float64() * total
	var cumulative float64
	last := 0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		cumulative += w
		if cumulative > threshold {
			return i
		}
	}
	// Rounding can leave threshold just above the final cumulative sum.
	return last
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
