/*
 * @module api/controllers/health_controller
 * @description Health check controller for container probes and load balancers
 * @architecture MVC architecture - controller layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Stateless HTTP request handling
 * @rules Liveness never touches dependencies; readiness checks the database
 * @dependencies net/http
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"geoquality-service/service"
)

// HealthController serves the liveness and readiness probes.
type HealthController struct{}

// NewHealthController creates a health controller instance.
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse is the health probe payload.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"geoquality-service"`
}

// Health liveness probe
// @Summary Liveness probe
// @Description Reports that the process is alive
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "geoquality-service",
	})
}

// Ready readiness probe
// @Summary Readiness probe
// @Description Reports whether the service can reach its database
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "geoquality-service",
	}

	if sqlDB, err := service.DB.DB(); err != nil || sqlDB.Ping() != nil {
		response.Status = "not ready"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response)
}
