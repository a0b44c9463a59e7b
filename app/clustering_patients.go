package app

import (
	"context"
	"fmt"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/domain/phenotype"
	"recoverypilot/internal/clustering"
	"recoverypilot/internal/metrics"
)

// AddPatient appends a patient to the training population and persists the
// list before updating memory, so a failed write leaves the engine unchanged.
// Patients without an ID get a generated one. The current clustering is not
// touched until the next Recluster.
func (e *ClusteringEngine) AddPatient(ctx context.Context, v patient.FeatureVector) (patient.FeatureVector, error) {
	if err := v.Validate(); err != nil {
		return patient.FeatureVector{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	if v.ID.IsEmpty() {
		v.ID = core.NewPatientID()
	} else if e.hasPatient(v.ID) {
		return patient.FeatureVector{}, core.NewInvalidInputError(fmt.Sprintf("patient %s already exists", v.ID))
	}

	next := make([]patient.FeatureVector, 0, len(e.newPatients)+1)
	next = append(next, e.newPatients...)
	next = append(next, v)
	if err := e.writeRecord(ctx, KeyNewPatients, next); err != nil {
		return patient.FeatureVector{}, err
	}
	e.newPatients = next

	metrics.PopulationSize.WithLabelValues("new").Set(float64(len(next)))
	e.logger.Debug("Added patient %s (%d new patients)", v.ID, len(next))
	return v, nil
}

func (e *ClusteringEngine) hasPatient(id core.PatientID) bool {
	for _, p := range e.seed {
		if p.ID == id {
			return true
		}
	}
	for _, p := range e.newPatients {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ResetNewPatients drops every added patient and invalidates the current
// clustering, so the next operation recomputes from the seed corpus alone.
func (e *ClusteringEngine) ResetNewPatients(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureLoaded(ctx)
	// Model first: once it is cleared the stored patients alone are still a
	// consistent state if the final write fails.
	if err := e.writeRecord(ctx, KeyCentroids, nil); err != nil {
		return err
	}
	e.stats = nil
	e.centroids = nil
	e.lastResult = nil
	if err := e.writeRecord(ctx, KeyPopulationStats, nil); err != nil {
		return err
	}
	if err := e.writeRecord(ctx, KeyNewPatients, []patient.FeatureVector{}); err != nil {
		return err
	}

	e.newPatients = nil
	metrics.PopulationSize.WithLabelValues("new").Set(0)
	e.logger.Info("Reset new patients; clustering invalidated")
	return nil
}

// AssignPatient places v against the current centroids using the stats of
// the last run. If no clustering exists yet one is computed first. The patient
// is not added to the population.
func (e *ClusteringEngine) AssignPatient(ctx context.Context, v patient.FeatureVector) (*cluster.Assignment, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	if e.loaded && e.centroids != nil {
		defer e.mu.RUnlock()
		return e.assignLocked(v), nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureClusteredLocked(ctx, "assign"); err != nil {
		return nil, err
	}
	return e.assignLocked(v), nil
}

func (e *ClusteringEngine) assignLocked(v patient.FeatureVector) *cluster.Assignment {
	z := clustering.NormalizeOne(v.Values(), *e.stats)
	best, second, d1, d2 := clustering.Nearest(z, e.centroids)

	p := e.phenotypeOf(best)
	metrics.AssignmentsTotal.WithLabelValues(p.String()).Inc()

	return &cluster.Assignment{
		PatientID:             v.ID,
		ClusterID:             best,
		Phenotype:             p,
		DistanceToCentroid:    d1,
		SecondNearestCluster:  second,
		SilhouetteCoefficient: clustering.ApproximateSilhouette(d1, d2),
		Recommendations:       phenotype.Recommendations(p, v),
	}
}

// phenotypeOf reads the label from the last result, or re-derives it from the
// centroid when the model was restored from the store.
func (e *ClusteringEngine) phenotypeOf(clusterID int) phenotype.Phenotype {
	if c := e.lastResult.ClusterByID(clusterID); c != nil {
		return c.Phenotype
	}
	fv, err := patient.FromValues("", clustering.Denormalize(e.centroids[clusterID], *e.stats))
	if err != nil {
		return phenotype.Unassigned
	}
	p, _ := phenotype.Interpret(fv)
	return p
}
