package app

import (
	"context"
	"sort"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/internal/clustering"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// FindOptimalK runs a capped K-means pass for every k in [minK, maxK] over
// the current population and reports inertia and silhouette per k, in
// ascending k. Choosing k (e.g. by the elbow method) is left to the caller.
// The current clustering is not modified.
func (e *ClusteringEngine) FindOptimalK(ctx context.Context, minK, maxK int) ([]cluster.KEvaluation, error) {
	e.mu.Lock()
	e.ensureLoaded(ctx)
	population := e.population()
	e.mu.Unlock()

	n := len(population)
	if minK < 1 || minK > n {
		return nil, core.NewInvalidKError(minK, n)
	}
	if maxK < minK || maxK > n {
		return nil, core.NewInvalidKError(maxK, n)
	}

	raw := patient.ValuesOf(population)
	popStats, err := clustering.ComputeStats(raw)
	if err != nil {
		return nil, err
	}
	normalized := clustering.Normalize(raw, popStats)

	results := make([]cluster.KEvaluation, maxK-minK+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.OptimalKWorkers)
	for k := minK; k <= maxK; k++ {
		k := k
		g.Go(func() error {
			rng, err := e.rng.SeededStream(gctx, streamKMeans, e.cfg.Seed)
			if err != nil {
				return err
			}
			run, err := clustering.Run(normalized, k, e.cfg.OptimalKIterations, rng)
			if err != nil {
				return err
			}
			silRNG, err := e.rng.SeededStream(gctx, streamSilhouette, e.cfg.Seed)
			if err != nil {
				return err
			}
			sample := clustering.SamplePoints(n, e.cfg.SilhouetteSampleSize, silRNG)

			results[k-minK] = cluster.KEvaluation{
				K:          k,
				Inertia:    clustering.Inertia(normalized, run.Assignments, run.Centroids),
				Silhouette: clustering.Silhouette(normalized, run.Assignments, k, sample),
			}
			e.logger.Trace("optimal-k: k=%d iterations=%d converged=%t", k, run.Iterations, run.Converged)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetFeatureImportance ranks features by the variance of their value across
// the current centroids (original units), highest first. A clustering is
// computed first if none exists.
func (e *ClusteringEngine) GetFeatureImportance(ctx context.Context) ([]cluster.FeatureImportance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureClusteredLocked(ctx, "feature_importance"); err != nil {
		return nil, err
	}

	centroids := make([][]float64, len(e.centroids))
	for j, c := range e.centroids {
		centroids[j] = clustering.Denormalize(c, *e.stats)
	}

	importance := make([]cluster.FeatureImportance, patient.FeatureCount)
	column := make([]float64, len(centroids))
	for d, name := range patient.FeatureNames {
		for j, c := range centroids {
			column[j] = c[d]
		}
		variance, err := stats.PopulationVariance(column)
		if err != nil {
			return nil, err
		}
		importance[d] = cluster.FeatureImportance{Feature: name, Variance: variance}
	}

	sort.SliceStable(importance, func(i, j int) bool {
		return importance[i].Variance > importance[j].Variance
	})
	return importance, nil
}
