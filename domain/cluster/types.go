package cluster

import (
	"time"

	"recoverypilot/domain/core"
	"recoverypilot/domain/phenotype"
)

// PopulationStats holds per-feature z-score parameters for one population.
// StdDev entries are never zero.
type PopulationStats struct {
	Mean   []float64 `json:"mean"`
	StdDev []float64 `json:"std_dev"`
	N      int       `json:"n"`
}

// IsEmpty reports whether stats were never computed.
func (s *PopulationStats) IsEmpty() bool {
	return s == nil || len(s.Mean) == 0 || len(s.Mean) != len(s.StdDev)
}

// Cluster is one group of a clustering run. Centroid is in original units.
type Cluster struct {
	ID              int                 `json:"id"`
	Centroid        []float64           `json:"centroid"`
	MemberIDs       []core.PatientID    `json:"member_ids"`
	Size            int                 `json:"size"`
	Phenotype       phenotype.Phenotype `json:"phenotype"`
	Narrative       string              `json:"narrative"`
	FeatureAverages map[string]float64  `json:"feature_averages"`
}

// Result is the outcome of one full clustering run.
type Result struct {
	Clusters    []Cluster              `json:"clusters"`
	Assignments map[core.PatientID]int `json:"assignments"`

	// SilhouetteScore is an estimate when SilhouetteSampled is true.
	SilhouetteScore   float64 `json:"silhouette_score"`
	SilhouetteSampled bool    `json:"silhouette_sampled"`

	Inertia       float64   `json:"inertia"`
	Iterations    int       `json:"iterations"`
	Converged     bool      `json:"converged"`
	K             int       `json:"k"`
	TotalPatients int       `json:"total_patients"`
	CompletedAt   time.Time `json:"completed_at"`

	// PopulationHash fingerprints the population the result was computed on
	PopulationHash core.Hash `json:"population_hash"`
}

// ClusterByID returns the cluster with the given id, or nil.
func (r *Result) ClusterByID(id int) *Cluster {
	if r == nil {
		return nil
	}
	for i := range r.Clusters {
		if r.Clusters[i].ID == id {
			return &r.Clusters[i]
		}
	}
	return nil
}

// Assignment places a single patient against the current centroids.
type Assignment struct {
	PatientID          core.PatientID      `json:"patient_id"`
	ClusterID          int                 `json:"cluster_id"`
	Phenotype          phenotype.Phenotype `json:"phenotype"`
	DistanceToCentroid float64             `json:"distance_to_centroid"`

	// SecondNearestCluster is -1 when only one centroid exists.
	SecondNearestCluster int `json:"second_nearest_cluster"`

	// SilhouetteCoefficient is the two-centroid approximation
	// (d2-d1)/max(d1,d2), not the exact per-point silhouette.
	SilhouetteCoefficient float64  `json:"silhouette_coefficient"`
	Recommendations       []string `json:"recommendations"`
}

// KEvaluation is one row of an elbow-method sweep.
type KEvaluation struct {
	K          int     `json:"k"`
	Inertia    float64 `json:"inertia"`
	Silhouette float64 `json:"silhouette"`
}

// FeatureImportance ranks a feature by how much centroids differ on it.
type FeatureImportance struct {
	Feature  string  `json:"feature"`
	Variance float64 `json:"variance"`
}
