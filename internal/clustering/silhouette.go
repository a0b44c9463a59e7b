package clustering

import (
	"math"
	"math/rand"
	"sort"
)

// Silhouette returns the mean silhouette coefficient over the points listed
// in sample (all points when sample is nil). For each evaluated point, a is
// the mean distance to the other members of its cluster (0 for singletons),
// b is the smallest mean distance to any other non-empty cluster, and
// s = (b-a)/max(a,b), or 0 when both are 0. Cluster means are always taken
// over the full population, so a sampled score is an estimate of the exact
// one. Fewer than two clusters yields 0.
func Silhouette(data [][]float64, assignments []int, k int, sample []int) float64 {
	if k < 2 || len(data) == 0 {
		return 0
	}
	if sample == nil {
		sample = make([]int, len(data))
		for i := range sample {
			sample[i] = i
		}
	}
	if len(sample) == 0 {
		return 0
	}

	sizes := make([]int, k)
	for _, c := range assignments {
		sizes[c]++
	}

	sums := make([]float64, k)
	var total float64
	for _, i := range sample {
		for j := range sums {
			sums[j] = 0
		}
		for o, p := range data {
			if o == i {
				continue
			}
			sums[assignments[o]] += Euclidean(data[i], p)
		}
		total += pointSilhouette(assignments[i], sums, sizes)
	}

	return total / float64(len(sample))
}

// pointSilhouette computes s(i) from the summed distances of point i to
// every cluster (itself excluded) and the cluster sizes.
func pointSilhouette(own int, sums []float64, sizes []int) float64 {
	var a float64
	if sizes[own] > 1 {
		a = sums[own] / float64(sizes[own]-1)
	}

	b := math.Inf(1)
	for j, size := range sizes {
		if j == own || size == 0 {
			continue
		}
		if mean := sums[j] / float64(size); mean < b {
			b = mean
		}
	}
	if math.IsInf(b, 1) {
		// No other non-empty cluster to compare against.
		return 0
	}

	denom := math.Max(a, b)
	if denom == 0 {
		return 0
	}
	return (b - a) / denom
}

// SamplePoints returns m distinct point indices drawn uniformly from [0, n),
// sorted ascending. It returns nil when n <= m, meaning "evaluate every point".
func SamplePoints(n, m int, rng *rand.Rand) []int {
	if m <= 0 || n <= m {
		return nil
	}
	sample := rng.Perm(n)[:m]
	sort.Ints(sample)
	return sample
}

// ApproximateSilhouette estimates a silhouette coefficient for a point known
// only through its distances to the nearest (d1) and second-nearest (d2)
// centroids: (d2-d1)/max(d1,d2). It substitutes centroid distances for mean
// intra- and inter-cluster distances and is not the exact per-point value.
func ApproximateSilhouette(d1, d2 float64) float64 {
	if math.IsInf(d2, 1) {
		return 0
	}
	denom := math.Max(d1, d2)
	if denom == 0 || d1 == d2 {
		return 0
	}
	return (d2 - d1) / denom
}
