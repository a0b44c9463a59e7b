package clustering

import (
	"math/rand"

	"recoverypilot/domain/core"

	"gonum.org/v1/gonum/floats"
)

// Result is the raw output of one K-means run. Centroids are in the same
// space as the input data.
type Result struct {
	Assignments []int
	Centroids   [][]float64
	Iterations  int
	Converged   bool
}

// Run clusters data into k groups using K-means++ seeding followed by
// Lloyd's iterations. It stops once no assignment changes between passes or
// after maxIterations passes; hitting the cap is not an error and the
// best-effort result is returned with Converged=false.
func Run(data [][]float64, k, maxIterations int, rng *rand.Rand) (*Result, error) {
	n := len(data)
	if n == 0 {
		return nil, core.NewInvalidInputError("cannot cluster an empty dataset")
	}
	if k < 1 || k > n {
		return nil, core.NewInvalidKError(k, n)
	}
	if maxIterations < 1 {
		return nil, core.NewInvalidInputError("maxIterations must be at least 1")
	}
	dim := len(data[0])

	centroids := SeedPlusPlus(data, k, rng)

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	sums := make([][]float64, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}

	result := &Result{}
	reseeded := false
	for iter := 1; iter <= maxIterations; iter++ {
		result.Iterations = iter

		// Assignment step. A reseed in the previous update forces another
		// pass even if no point moves.
		changed := reseeded
		for i, p := range data {
			best, _ := nearestSquared(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			result.Converged = true
			break
		}

		// Update step
		for j := range sums {
			counts[j] = 0
			for d := range sums[j] {
				sums[j][d] = 0
			}
		}
		for i, p := range data {
			c := assignments[i]
			floats.Add(sums[c], p)
			counts[c]++
		}

		reseeded = false
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Degenerate cluster: move it onto a random data point.
				centroids[j] = clone(data[rng.Intn(n)])
				reseeded = true
				continue
			}
			copy(centroids[j], sums[j])
			floats.Scale(1/float64(counts[j]), centroids[j])
		}
	}

	if !result.Converged {
		// The cap was hit right after an update step; align assignments
		// with the centroids being returned.
		for i, p := range data {
			assignments[i], _ = nearestSquared(p, centroids)
		}
	}

	result.Assignments = assignments
	result.Centroids = centroids
	return result, nil
}

// Inertia is the sum of squared distances from each point to its centroid.
func Inertia(data [][]float64, assignments []int, centroids [][]float64) float64 {
	var total float64
	for i, p := range data {
		total += SquaredEuclidean(p, centroids[assignments[i]])
	}
	return total
}
