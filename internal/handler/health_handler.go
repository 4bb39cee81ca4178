package handler

import (
	"context"
	"net/http"
	"time"

	"SiteMonitorAPI/internal/database"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/metrics"
	"SiteMonitorAPI/internal/mqtt"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type HealthHandler struct {
	db             *database.Database
	publisher      *mqtt.Publisher
	pollingService service.IPollingService
	collector      *metrics.Collector
	log            *logger.Logger
}

type healthResponse struct {
	Status    string               `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Services  healthServices       `json:"services"`
	Poller    service.PollerStatus `json:"poller"`
}

type healthServices struct {
	Database bool `json:"database"`
	MQTT     bool `json:"mqtt"`
}

func NewHealthHandler(db *database.Database, publisher *mqtt.Publisher, pollingService service.IPollingService, collector *metrics.Collector, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:             db,
		publisher:      publisher,
		pollingService: pollingService,
		collector:      collector,
		log:            log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
	r.HandleFunc("/health/metrics", h.Metrics).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Poller:    h.pollingService.Status(),
	}

	dbErr := h.db.Health(ctx)
	response.Services.Database = (dbErr == nil)

	// MQTT is optional; only report it degraded when it was configured.
	response.Services.MQTT = h.publisher == nil || h.publisher.IsConnected()

	if !response.Services.Database || !response.Services.MQTT {
		response.Status = "degraded"
		h.log.Warn("Health check degraded - DB: %v, MQTT: %v", response.Services.Database, response.Services.MQTT)
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.log.Warn("Readiness check failed - DB error: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		respondError(w, http.StatusNotFound, "metrics collection is disabled")
		return
	}

	respondJSON(w, http.StatusOK, h.collector.CurrentSnapshot())
}
