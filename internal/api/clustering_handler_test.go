package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recoverypilot/app"
	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/internal"
	apperrors "recoverypilot/internal/errors"
	"recoverypilot/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, engine Engine) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewClusteringHandler(engine).RegisterRoutes(router)
	return router
}

func newTestEngine(t *testing.T) *app.ClusteringEngine {
	t.Helper()
	kit := testkit.NewTestKitWithConfig(testkit.PatientGeneratorConfig{
		PatientCount:     60,
		Seed:             3,
		FastWeight:       1,
		SteadyWeight:     1,
		StrugglingWeight: 1,
		ComplexWeight:    1,
	})
	logger := internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
	engine, err := app.NewClusteringEngine(context.Background(), kit.CorpusSupplier(), kit.KVStore(), kit.RNGAdapter(), app.DefaultEngineConfig(), logger)
	require.NoError(t, err)
	return engine
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func walkIn(id string) patient.FeatureVector {
	return patient.FeatureVector{
		ID: core.PatientID(id), Age: 58, BMI: 25, ComorbidityCount: 1,
		HeartRate: 72, SystolicBP: 122, OxygenSaturation: 97, Temperature: 36.8,
		Hemoglobin: 13.5, WhiteCellCount: 7, Creatinine: 0.9, Albumin: 4,
		PainLevel: 3, MobilityScore: 7, WoundHealing: 8, MedicationAdherence: 0.9,
		DaysSinceSurgery: 10, ExerciseCompletion: 0.8, SleepQuality: 7, Appetite: 7,
		Mood: 7, FunctionalIndependence: 7,
	}
}

func TestClusteringHandler_ClusterAndRead(t *testing.T) {
	router := newRouter(t, newTestEngine(t))

	w := do(t, router, http.MethodGet, "/api/clusters", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/clusters", map[string]int{"k": 3, "max_iterations": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result cluster.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.K)
	assert.Equal(t, 60, result.TotalPatients)

	w = do(t, router, http.MethodGet, "/api/clusters", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/clusters/recluster", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.K)
}

func TestClusteringHandler_InvalidK(t *testing.T) {
	router := newRouter(t, newTestEngine(t))

	w := do(t, router, http.MethodPost, "/api/clusters", map[string]int{"k": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeInvalidK, body["code"])

	w = do(t, router, http.MethodGet, "/api/clusters/optimal-k?min=5&max=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/clusters/optimal-k?min=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClusteringHandler_Patients(t *testing.T) {
	router := newRouter(t, newTestEngine(t))

	w := do(t, router, http.MethodPost, "/api/patients", walkIn("walk-in-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/patients", walkIn("walk-in-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/patients/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)

	w = do(t, router, http.MethodPost, "/api/patients/assign", walkIn("walk_in"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var assignment cluster.Assignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignment))
	assert.Equal(t, core.PatientID("walk_in"), assignment.PatientID)
	assert.NotEmpty(t, assignment.Recommendations)

	w = do(t, router, http.MethodDelete, "/api/patients/new", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/api/patients/new", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 0, listed.Count)
}

func TestClusteringHandler_Analysis(t *testing.T) {
	router := newRouter(t, newTestEngine(t))

	w := do(t, router, http.MethodGet, "/api/clusters/optimal-k?min=2&max=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var optimal struct {
		Evaluations []cluster.KEvaluation `json:"evaluations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &optimal))
	assert.Len(t, optimal.Evaluations, 3)

	w = do(t, router, http.MethodGet, "/api/features/importance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var importance struct {
		Features []cluster.FeatureImportance `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &importance))
	assert.Len(t, importance.Features, patient.FeatureCount)

	w = do(t, router, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dataset struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dataset))
	assert.Equal(t, 60, dataset.Count)
}

// failingEngine reports a storage outage on every write
type failingEngine struct {
	Engine
}

func (failingEngine) ResetNewPatients(ctx context.Context) error {
	return core.NewPersistenceWriteError("clustering:new_patients", errors.New("disk full"))
}

func (failingEngine) FindOptimalK(ctx context.Context, minK, maxK int) ([]cluster.KEvaluation, error) {
	return nil, errors.New("unexpected")
}

func TestClusteringHandler_ErrorMapping(t *testing.T) {
	router := newRouter(t, failingEngine{})

	w := do(t, router, http.MethodDelete, "/api/patients/new", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, router, http.MethodGet, "/api/clusters/optimal-k", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
