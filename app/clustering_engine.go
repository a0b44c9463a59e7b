package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/domain/phenotype"
	"recoverypilot/internal"
	"recoverypilot/internal/clustering"
	"recoverypilot/internal/metrics"
	"recoverypilot/ports"
)

// RNG stream names. Each run opens a fresh stream with the configured seed so
// identical populations always produce identical clusterings.
const (
	streamKMeans     = "kmeans"
	streamSilhouette = "silhouette"
)

// EngineConfig tunes the clustering engine
type EngineConfig struct {
	DefaultK             int
	MaxIterations        int
	OptimalKIterations   int
	Seed                 int64
	SilhouetteSampleSize int
	OptimalKWorkers      int
}

// DefaultEngineConfig returns the standard clustering parameters
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultK:             4,
		MaxIterations:        100,
		OptimalKIterations:   50,
		Seed:                 42,
		SilhouetteSampleSize: 500,
		OptimalKWorkers:      4,
	}
}

// ClusteringEngine owns the training population (seed corpus plus patients
// added since) and the most recent clustering derived from it.
//
// Mutating operations are serialized by an internal lock; AssignPatient only
// needs a read lock once a clustering exists.
type ClusteringEngine struct {
	mu sync.RWMutex

	store  ports.KVStore
	rng    ports.RNGPort
	cfg    EngineConfig
	logger *internal.Logger

	seed        []patient.FeatureVector
	newPatients []patient.FeatureVector
	loaded      bool

	stats      *cluster.PopulationStats
	centroids  [][]float64 // z-space
	lastResult *cluster.Result
	lastK      int
}

// NewClusteringEngine loads the seed corpus once and returns an engine with no
// clustering yet. Stored new patients are loaded lazily on first use.
func NewClusteringEngine(ctx context.Context, corpus ports.CorpusSupplier, store ports.KVStore, rng ports.RNGPort, cfg EngineConfig, logger *internal.Logger) (*ClusteringEngine, error) {
	if corpus == nil || store == nil || rng == nil {
		return nil, core.NewInvalidInputError("corpus, store and rng are required")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	defaults := DefaultEngineConfig()
	if cfg.DefaultK < 1 {
		cfg.DefaultK = defaults.DefaultK
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.OptimalKIterations < 1 {
		cfg.OptimalKIterations = defaults.OptimalKIterations
	}
	if cfg.OptimalKWorkers < 1 {
		cfg.OptimalKWorkers = defaults.OptimalKWorkers
	}

	seed, err := corpus.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load training corpus: %w", err)
	}

	seen := make(map[core.PatientID]bool, len(seed))
	vectors := make([]patient.FeatureVector, len(seed))
	for i, v := range seed {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("corpus patient %d (%s): %w", i, v.ID, err)
		}
		if v.ID.IsEmpty() {
			v.ID = core.NewPatientID()
		}
		if seen[v.ID] {
			return nil, core.NewInvalidInputError(fmt.Sprintf("duplicate corpus patient id %s", v.ID))
		}
		seen[v.ID] = true
		vectors[i] = v
	}

	metrics.PopulationSize.WithLabelValues("seed").Set(float64(len(vectors)))
	logger = logger.With("clustering")
	logger.Info("Loaded training corpus with %d patients", len(vectors))

	return &ClusteringEngine{
		store:  store,
		rng:    rng,
		cfg:    cfg,
		logger: logger,
		seed:   vectors,
	}, nil
}

// Cluster runs a full K-means pass over seed + new patients and makes the
// result current. maxIterations < 1 uses the configured default.
func (e *ClusteringEngine) Cluster(ctx context.Context, k, maxIterations int) (*cluster.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	return e.clusterLocked(ctx, "cluster", k, maxIterations)
}

// Recluster repeats Cluster over the current population. A nil k reuses the
// last k, or the default when nothing has been clustered yet.
func (e *ClusteringEngine) Recluster(ctx context.Context, k *int) (*cluster.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	target := e.cfg.DefaultK
	if e.lastK > 0 {
		target = e.lastK
	}
	if k != nil {
		target = *k
	}
	return e.clusterLocked(ctx, "recluster", target, e.cfg.MaxIterations)
}

func (e *ClusteringEngine) clusterLocked(ctx context.Context, operation string, k, maxIterations int) (*cluster.Result, error) {
	population := e.population()
	n := len(population)
	if k < 1 || k > n {
		metrics.ClusteringRunsTotal.WithLabelValues(operation, "invalid").Inc()
		return nil, core.NewInvalidKError(k, n)
	}
	if maxIterations < 1 {
		maxIterations = e.cfg.MaxIterations
	}

	start := time.Now()
	raw := patient.ValuesOf(population)
	popStats, err := clustering.ComputeStats(raw)
	if err != nil {
		return nil, err
	}
	normalized := clustering.Normalize(raw, popStats)

	rng, err := e.rng.SeededStream(ctx, streamKMeans, e.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s rng stream: %w", streamKMeans, err)
	}
	run, err := clustering.Run(normalized, k, maxIterations, rng)
	if err != nil {
		metrics.ClusteringRunsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	silRNG, err := e.rng.SeededStream(ctx, streamSilhouette, e.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s rng stream: %w", streamSilhouette, err)
	}
	sample := clustering.SamplePoints(n, e.cfg.SilhouetteSampleSize, silRNG)
	silhouette := clustering.Silhouette(normalized, run.Assignments, k, sample)

	ids := make([]core.PatientID, n)
	for i, p := range population {
		ids[i] = p.ID
	}

	result := &cluster.Result{
		Clusters:          buildClusters(population, run, popStats),
		Assignments:       make(map[core.PatientID]int, n),
		SilhouetteScore:   silhouette,
		SilhouetteSampled: sample != nil,
		Inertia:           clustering.Inertia(normalized, run.Assignments, run.Centroids),
		Iterations:        run.Iterations,
		Converged:         run.Converged,
		K:                 k,
		TotalPatients:     n,
		CompletedAt:       time.Now().UTC(),
		PopulationHash:    core.ComputePopulationHash(ids, raw),
	}
	for i, id := range ids {
		result.Assignments[id] = run.Assignments[i]
	}

	if err := e.persistModel(ctx, popStats, centroidsRecord{K: k, Centroids: run.Centroids, PopulationHash: result.PopulationHash}); err != nil {
		metrics.ClusteringRunsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	e.stats = &popStats
	e.centroids = run.Centroids
	e.lastResult = result
	e.lastK = k

	metrics.ClusteringRunsTotal.WithLabelValues(operation, "ok").Inc()
	metrics.ClusteringIterations.Observe(float64(run.Iterations))
	metrics.SilhouetteScore.Set(silhouette)

	if !run.Converged {
		e.logger.Warn("K-means hit the %d iteration cap without converging (k=%d, n=%d)", maxIterations, k, n)
	}
	e.logger.Info("%s: k=%d n=%d population=%s iterations=%d converged=%t silhouette=%.4f in %s",
		operation, k, n, result.PopulationHash.Short(), run.Iterations, run.Converged, silhouette, time.Since(start))
	for _, c := range result.Clusters {
		e.logger.Debug("cluster %d: %d patients, phenotype %s", c.ID, c.Size, c.Phenotype)
	}

	return result, nil
}

// buildClusters turns raw K-means output into reported clusters in original units.
func buildClusters(population []patient.FeatureVector, run *clustering.Result, s cluster.PopulationStats) []cluster.Cluster {
	clusters := make([]cluster.Cluster, len(run.Centroids))
	for j, c := range run.Centroids {
		centroid := clustering.Denormalize(c, s)
		fv, _ := patient.FromValues("", centroid)
		p, narrative := phenotype.Interpret(fv)
		clusters[j] = cluster.Cluster{
			ID:              j,
			Centroid:        centroid,
			MemberIDs:       []core.PatientID{},
			Phenotype:       p,
			Narrative:       narrative,
			FeatureAverages: fv.FeatureMap(),
		}
	}
	for i, p := range population {
		c := &clusters[run.Assignments[i]]
		c.MemberIDs = append(c.MemberIDs, p.ID)
		c.Size++
	}
	return clusters
}

// ensureClusteredLocked makes sure centroids exist, clustering with the last
// (or default) k when they do not. Callers hold the write lock.
func (e *ClusteringEngine) ensureClusteredLocked(ctx context.Context, operation string) error {
	e.ensureLoaded(ctx)
	if e.centroids != nil && !e.stats.IsEmpty() {
		return nil
	}

	n := len(e.seed) + len(e.newPatients)
	if n == 0 {
		return fmt.Errorf("%w: %v", core.ErrInvalidInput, core.ErrNotClusteredYet)
	}
	k := e.cfg.DefaultK
	if e.lastK > 0 {
		k = e.lastK
	}
	if k > n {
		k = n
	}
	e.logger.Debug("%s: no clustering available, clustering with k=%d", operation, k)
	_, err := e.clusterLocked(ctx, operation, k, e.cfg.MaxIterations)
	return err
}

func (e *ClusteringEngine) population() []patient.FeatureVector {
	all := make([]patient.FeatureVector, 0, len(e.seed)+len(e.newPatients))
	all = append(all, e.seed...)
	return append(all, e.newPatients...)
}

// GetSyntheticDataset returns a copy of the seed corpus
func (e *ClusteringEngine) GetSyntheticDataset() []patient.FeatureVector {
	return append([]patient.FeatureVector(nil), e.seed...)
}

// GetLastResult returns the current clustering, or nil before the first run.
// The result must be treated as read-only.
func (e *ClusteringEngine) GetLastResult() *cluster.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastResult
}

// GetNewPatients returns a copy of the patients added since construction
func (e *ClusteringEngine) GetNewPatients(ctx context.Context) []patient.FeatureVector {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	return append([]patient.FeatureVector(nil), e.newPatients...)
}

// PopulationSize returns seed + new patient count
func (e *ClusteringEngine) PopulationSize(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	return len(e.seed) + len(e.newPatients)
}
