package handler

import (
	"net/http"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type PollingHandler struct {
	pollingService service.IPollingService
	log            *logger.Logger
}

func NewPollingHandler(pollingService service.IPollingService, log *logger.Logger) *PollingHandler {
	return &PollingHandler{
		pollingService: pollingService,
		log:            log,
	}
}

func (h *PollingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/polling/start", h.Start).Methods("POST")
	r.HandleFunc("/polling/stop", h.Stop).Methods("POST")
	r.HandleFunc("/polling/status", h.Status).Methods("GET")
}

func (h *PollingHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.pollingService.Start() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "poller already running"})
		return
	}

	h.log.Info("Polling started via API")
	respondJSON(w, http.StatusOK, map[string]string{"status": "poller started"})
}

func (h *PollingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if !h.pollingService.Stop() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "poller not running"})
		return
	}

	h.log.Info("Polling stopped via API")
	respondJSON(w, http.StatusOK, map[string]string{"status": "poller stopped"})
}

func (h *PollingHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pollingService.Status())
}
