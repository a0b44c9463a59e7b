package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPopulation int

func (f fixedPopulation) PopulationSize(ctx context.Context) int { return int(f) }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Healthz(t *testing.T) {
	w := get(t, NewRouter(fixedPopulation(202), false), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     string `json:"status"`
		Population int    `json:"population"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 202, body.Population)
}

func TestRouter_Metrics(t *testing.T) {
	w := get(t, NewRouter(fixedPopulation(0), false), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_Profiler(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, NewRouter(fixedPopulation(0), false), "/debug/pprof/").Code)
	assert.Equal(t, http.StatusOK, get(t, NewRouter(fixedPopulation(0), true), "/debug/pprof/").Code)
}
