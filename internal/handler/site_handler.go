package handler

import (
	"net/http"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/repository"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type SiteHandler struct {
	sites            repository.ISiteRepository
	detectionService service.IDetectionService
	pollingService   service.IPollingService
	log              *logger.Logger
}

func NewSiteHandler(sites repository.ISiteRepository, detectionService service.IDetectionService, pollingService service.IPollingService, log *logger.Logger) *SiteHandler {
	return &SiteHandler{
		sites:            sites,
		detectionService: detectionService,
		pollingService:   pollingService,
		log:              log,
	}
}

func (h *SiteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/scan-sites", h.ScanSites).Methods("POST")
	r.HandleFunc("/scan-sites-with-alerts", h.ScanSitesWithAlerts).Methods("POST")
	r.HandleFunc("/sites", h.GetSites).Methods("GET")
	r.HandleFunc("/sites/outages", h.GetSitesInOutage).Methods("GET")
	r.HandleFunc("/sites/{site_id}", h.GetSite).Methods("GET")
}

// ScanSites runs one detection cycle without notifying anyone.
func (h *SiteHandler) ScanSites(w http.ResponseWriter, r *http.Request) {
	summary, err := h.detectionService.ScanAllSites(r.Context())
	if err != nil {
		h.log.Error("Manual scan failed: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ScanSitesWithAlerts runs one full cycle: detection plus notification
// dispatch for every event the cycle created or auto-resolved.
func (h *SiteHandler) ScanSitesWithAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := h.pollingService.TriggerManualScan(r.Context())
	if err != nil {
		h.log.Error("Manual scan with alerts failed: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *SiteHandler) GetSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.GetAll(r.Context())
	if err != nil {
		h.log.Error("Failed to list sites: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sites)
}

func (h *SiteHandler) GetSitesInOutage(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.GetByStatus(r.Context(), models.SiteDown, models.SiteDegraded)
	if err != nil {
		h.log.Error("Failed to list sites in outage: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sites)
}

func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	siteID := vars["site_id"]

	site, err := h.sites.GetBySiteID(r.Context(), siteID)
	if err != nil {
		h.log.Error("Failed to get site %s: %v", siteID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, site)
}
