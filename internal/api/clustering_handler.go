package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"recoverypilot/domain/cluster"
	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	apperrors "recoverypilot/internal/errors"

	"github.com/gin-gonic/gin"
)

// Engine is the part of app.ClusteringEngine the HTTP surface needs
type Engine interface {
	Cluster(ctx context.Context, k, maxIterations int) (*cluster.Result, error)
	Recluster(ctx context.Context, k *int) (*cluster.Result, error)
	AddPatient(ctx context.Context, v patient.FeatureVector) (patient.FeatureVector, error)
	AssignPatient(ctx context.Context, v patient.FeatureVector) (*cluster.Assignment, error)
	FindOptimalK(ctx context.Context, minK, maxK int) ([]cluster.KEvaluation, error)
	GetFeatureImportance(ctx context.Context) ([]cluster.FeatureImportance, error)
	ResetNewPatients(ctx context.Context) error
	GetSyntheticDataset() []patient.FeatureVector
	GetLastResult() *cluster.Result
	GetNewPatients(ctx context.Context) []patient.FeatureVector
}

// Default range scanned by GET /api/clusters/optimal-k
const (
	defaultMinK = 2
	defaultMaxK = 8
)

// ClusteringHandler serves the clustering engine over JSON
type ClusteringHandler struct {
	engine Engine
}

// NewClusteringHandler creates a new clustering handler
func NewClusteringHandler(engine Engine) *ClusteringHandler {
	return &ClusteringHandler{engine: engine}
}

type clusterRequest struct {
	K             int `json:"k"`
	MaxIterations int `json:"max_iterations"`
}

type reclusterRequest struct {
	K *int `json:"k"`
}

// RegisterRoutes mounts the handler under /api
func (h *ClusteringHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/clusters", h.GetLastResult)
	api.POST("/clusters", h.Cluster)
	api.POST("/clusters/recluster", h.Recluster)
	api.GET("/clusters/optimal-k", h.FindOptimalK)
	api.GET("/features/importance", h.GetFeatureImportance)
	api.GET("/dataset", h.GetSyntheticDataset)
	api.POST("/patients", h.AddPatient)
	api.POST("/patients/assign", h.AssignPatient)
	api.GET("/patients/new", h.GetNewPatients)
	api.DELETE("/patients/new", h.ResetNewPatients)
}

// Cluster runs a fresh clustering with the requested k
func (h *ClusteringHandler) Cluster(c *gin.Context) {
	var req clusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": apperrors.CodeInvalidInput})
		return
	}

	result, err := h.engine.Cluster(c.Request.Context(), req.K, req.MaxIterations)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recluster reruns clustering over the current population. The body is optional.
func (h *ClusteringHandler) Recluster(c *gin.Context) {
	var req reclusterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": apperrors.CodeInvalidInput})
			return
		}
	}

	result, err := h.engine.Recluster(c.Request.Context(), req.K)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetLastResult returns the current clustering
func (h *ClusteringHandler) GetLastResult(c *gin.Context) {
	result := h.engine.GetLastResult()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No clustering has been computed yet", "code": apperrors.CodeNotFound})
		return
	}
	c.JSON(http.StatusOK, result)
}

// FindOptimalK evaluates every k in [min, max]
func (h *ClusteringHandler) FindOptimalK(c *gin.Context) {
	minK, err := queryInt(c, "min", defaultMinK)
	if err != nil {
		respondError(c, err)
		return
	}
	maxK, err := queryInt(c, "max", defaultMaxK)
	if err != nil {
		respondError(c, err)
		return
	}

	evaluations, err := h.engine.FindOptimalK(c.Request.Context(), minK, maxK)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evaluations})
}

// GetFeatureImportance ranks features by centroid variance
func (h *ClusteringHandler) GetFeatureImportance(c *gin.Context) {
	importance, err := h.engine.GetFeatureImportance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": importance})
}

// GetSyntheticDataset returns the seed corpus
func (h *ClusteringHandler) GetSyntheticDataset(c *gin.Context) {
	dataset := h.engine.GetSyntheticDataset()
	c.JSON(http.StatusOK, gin.H{"patients": dataset, "count": len(dataset)})
}

// AddPatient adds a patient to the training population
func (h *ClusteringHandler) AddPatient(c *gin.Context) {
	var v patient.FeatureVector
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient record", "code": apperrors.CodeInvalidInput})
		return
	}

	added, err := h.engine.AddPatient(c.Request.Context(), v)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// AssignPatient places a patient in the current clustering without adding it
func (h *ClusteringHandler) AssignPatient(c *gin.Context) {
	var v patient.FeatureVector
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient record", "code": apperrors.CodeInvalidInput})
		return
	}

	assignment, err := h.engine.AssignPatient(c.Request.Context(), v)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetNewPatients lists patients added since startup (or the last reset)
func (h *ClusteringHandler) GetNewPatients(c *gin.Context) {
	patients := h.engine.GetNewPatients(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"patients": patients, "count": len(patients)})
}

// ResetNewPatients drops all added patients
func (h *ClusteringHandler) ResetNewPatients(c *gin.Context) {
	if err := h.engine.ResetNewPatients(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewInvalidInputError(name + " must be an integer")
	}
	return v, nil
}

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsInvalidK(err), core.IsInvalidInput(err):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrPersistenceWrite):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}
