package clustering

import (
	"fmt"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"

	"github.com/montanaflynn/stats"
)

// ComputeStats returns per-feature mean and population standard deviation.
// Features with zero variance get a standard deviation of 1.
func ComputeStats(vectors [][]float64) (cluster.PopulationStats, error) {
	if len(vectors) == 0 {
		return cluster.PopulationStats{}, core.NewInvalidInputError("cannot compute statistics of an empty population")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return cluster.PopulationStats{}, core.NewInvalidInputError("feature vectors have no dimensions")
	}

	result := cluster.PopulationStats{
		Mean:   make([]float64, dim),
		StdDev: make([]float64, dim),
		N:      len(vectors),
	}

	column := make([]float64, len(vectors))
	for d := 0; d < dim; d++ {
		for i, v := range vectors {
			if len(v) != dim {
				return cluster.PopulationStats{}, fmt.Errorf("%w: row %d has %d features, expected %d", core.ErrInvalidInput, i, len(v), dim)
			}
			column[i] = v[d]
		}

		mean, err := stats.Mean(column)
		if err != nil {
			return cluster.PopulationStats{}, fmt.Errorf("%w: mean of feature %d: %v", core.ErrInvalidInput, d, err)
		}
		stdDev, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			return cluster.PopulationStats{}, fmt.Errorf("%w: std dev of feature %d: %v", core.ErrInvalidInput, d, err)
		}
		if stdDev == 0 {
			stdDev = 1
		}

		result.Mean[d] = mean
		result.StdDev[d] = stdDev
	}

	return result, nil
}

// Normalize z-scores every row against s. Input rows are not modified.
func Normalize(vectors [][]float64, s cluster.PopulationStats) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		out[i] = NormalizeOne(v, s)
	}
	return out
}

// NormalizeOne z-scores a single vector.
func NormalizeOne(v []float64, s cluster.PopulationStats) []float64 {
	out := make([]float64, len(v))
	for d, x := range v {
		out[d] = (x - s.Mean[d]) / s.StdDev[d]
	}
	return out
}

// Denormalize maps a z-space vector back to original units.
func Denormalize(v []float64, s cluster.PopulationStats) []float64 {
	out := make([]float64, len(v))
	for d, z := range v {
		out[d] = z*s.StdDev[d] + s.Mean[d]
	}
	return out
}
