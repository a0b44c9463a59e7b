package ops

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PopulationSource reports the size of the training population
type PopulationSource interface {
	PopulationSize(ctx context.Context) int
}

// NewRouter builds the operations listener: health, prometheus metrics and,
// when profiling is enabled, pprof under /debug.
func NewRouter(source PopulationSource, profiling bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"population": source.PopulationSize(req.Context()),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	if profiling {
		r.Mount("/debug", middleware.Profiler())
	}
	return r
}
