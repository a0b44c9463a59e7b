package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered once on the default registry via promauto.
var (
	ClusteringRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recoverypilot_clustering_runs_total",
			Help: "Total number of K-means runs, labeled by triggering operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ClusteringIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recoverypilot_clustering_iterations",
			Help:    "Lloyd iterations needed per clustering run",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
	)

	SilhouetteScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recoverypilot_silhouette_score",
			Help: "Silhouette score of the current clustering",
		},
	)

	PopulationSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recoverypilot_population_size",
			Help: "Number of patients in the training population",
		},
		[]string{"source"},
	)

	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recoverypilot_assignments_total",
			Help: "Patients assigned to a phenotype",
		},
		[]string{"phenotype"},
	)

	PersistenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recoverypilot_persistence_errors_total",
			Help: "Failed reads and writes against the key-value store",
		},
		[]string{"operation"},
	)
)
