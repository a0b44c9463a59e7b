package clustering

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SquaredEuclidean returns the squared L2 distance, skipping the square root.
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// Nearest finds the closest and second-closest centroid to point.
// Ties go to the lower index. second is -1 and d2 is +Inf when there is
// only one centroid.
func Nearest(point []float64, centroids [][]float64) (best, second int, d1, d2 float64) {
	best, second = -1, -1
	d1, d2 = math.Inf(1), math.Inf(1)
	for j, c := range centroids {
		d := Euclidean(point, c)
		switch {
		case d < d1:
			second, d2 = best, d1
			best, d1 = j, d
		case d < d2:
			second, d2 = j, d
		}
	}
	return best, second, d1, d2
}

// nearestSquared is the assignment-step variant of Nearest.
func nearestSquared(point []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := SquaredEuclidean(point, centroids[0])
	for j := 1; j < len(centroids); j++ {
		if d := SquaredEuclidean(point, centroids[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}
