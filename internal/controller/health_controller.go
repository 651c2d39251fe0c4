package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datascout/internal/model"
)

// Pinger reports whether the annotation store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Store     DatabaseStatus `json:"store"`
}

type DatabaseStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthController struct {
	store   Pinger
	version string
}

func NewHealthController(store Pinger, version string) *HealthController {
	return &HealthController{store: store, version: version}
}

// Index answers the root path with a short banner
func (hc *HealthController) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "datascout",
		"version": hc.version,
		"engines": model.EngineKinds(),
	})
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "datascout",
		Version:   hc.version,
		Store: DatabaseStatus{
			Status:  "connected",
			Message: "Annotation store reachable",
		},
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hc.store.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Store = DatabaseStatus{
			Status:  "disconnected",
			Message: "Store ping failed: " + err.Error(),
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
