package app

import (
	"context"
	"encoding/json"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/internal/metrics"
)

// Keys of the records kept in the key-value store.
const (
	KeyNewPatients     = "clustering:new_patients"
	KeyPopulationStats = "clustering:population_stats"
	KeyCentroids       = "clustering:centroids"
)

// statsRecord is the stored form of the population stats. The hash pairs it
// with the centroids record written in the same run.
type statsRecord struct {
	cluster.PopulationStats
	PopulationHash core.Hash `json:"population_hash"`
}

// centroidsRecord is the stored form of the current model. Centroids are in
// z-space and only meaningful together with the stored population stats.
type centroidsRecord struct {
	K              int         `json:"k"`
	Centroids      [][]float64 `json:"centroids"`
	PopulationHash core.Hash   `json:"population_hash"`
}

// ensureLoaded restores stored state once. Unreadable records are logged and
// treated as absent. Callers hold the write lock.
func (e *ClusteringEngine) ensureLoaded(ctx context.Context) {
	if e.loaded {
		return
	}
	e.loaded = true

	var stored []patient.FeatureVector
	if e.readRecord(ctx, KeyNewPatients, &stored) {
		valid := stored[:0]
		for _, v := range stored {
			if err := v.Validate(); err != nil || v.ID.IsEmpty() {
				e.logger.Warn("Dropping stored patient %q: invalid record", v.ID)
				continue
			}
			valid = append(valid, v)
		}
		e.newPatients = valid
		e.logger.Info("Restored %d new patients from store", len(valid))
	}
	metrics.PopulationSize.WithLabelValues("new").Set(float64(len(e.newPatients)))

	var statsRec statsRecord
	var model centroidsRecord
	if !e.readRecord(ctx, KeyPopulationStats, &statsRec) || !e.readRecord(ctx, KeyCentroids, &model) {
		return
	}
	if !modelConsistent(statsRec, model) {
		e.logger.Warn("Stored model is inconsistent; ignoring stored stats and centroids")
		return
	}
	popStats := statsRec.PopulationStats
	e.stats = &popStats
	e.centroids = model.Centroids
	e.lastK = model.K
	e.logger.Info("Restored model with k=%d from store", model.K)
	if current := e.populationHash(); model.PopulationHash != current {
		e.logger.Warn("Restored model was computed on population %s, current population is %s; recluster to refresh",
			model.PopulationHash.Short(), current.Short())
	}
}

// modelConsistent accepts a stats/centroids pair only when both records come
// from the same run and have usable shapes.
func modelConsistent(s statsRecord, m centroidsRecord) bool {
	if s.PopulationHash.IsEmpty() || s.PopulationHash != m.PopulationHash {
		return false
	}
	if s.IsEmpty() || len(s.Mean) != patient.FeatureCount {
		return false
	}
	for _, sd := range s.StdDev {
		if sd == 0 {
			return false
		}
	}
	if m.K < 1 || len(m.Centroids) != m.K {
		return false
	}
	for _, c := range m.Centroids {
		if len(c) != patient.FeatureCount {
			return false
		}
	}
	return true
}

// readRecord decodes key into out and reports whether a usable value was found.
func (e *ClusteringEngine) readRecord(ctx context.Context, key string, out interface{}) bool {
	data, ok, err := e.store.Get(ctx, key)
	if err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("read").Inc()
		e.logger.Warn("Falling back to empty state: %v", core.NewPersistenceReadError(key, err))
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("read").Inc()
		e.logger.Warn("Falling back to empty state: %v", core.NewPersistenceReadError(key, err))
		return false
	}
	return true
}

func (e *ClusteringEngine) writeRecord(ctx context.Context, key string, value interface{}) error {
	var data []byte
	if value != nil {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return core.NewPersistenceWriteError(key, err)
		}
	}
	if err := e.store.Set(ctx, key, data); err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("write").Inc()
		e.logger.Error("Failed to persist %s: %v", key, err)
		return core.NewPersistenceWriteError(key, err)
	}
	return nil
}

// persistModel writes stats then centroids. Both carry the population hash,
// so a pair left half-written by a failed second write is rejected on restore.
func (e *ClusteringEngine) persistModel(ctx context.Context, s cluster.PopulationStats, model centroidsRecord) error {
	if err := e.writeRecord(ctx, KeyPopulationStats, statsRecord{PopulationStats: s, PopulationHash: model.PopulationHash}); err != nil {
		return err
	}
	return e.writeRecord(ctx, KeyCentroids, model)
}

func (e *ClusteringEngine) populationHash() core.Hash {
	population := e.population()
	ids := make([]core.PatientID, len(population))
	for i, p := range population {
		ids[i] = p.ID
	}
	return core.ComputePopulationHash(ids, patient.ValuesOf(population))
}
