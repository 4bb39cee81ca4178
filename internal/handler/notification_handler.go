package handler

import (
	"net/http"
	"strconv"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	notificationService service.INotificationService
	log                 *logger.Logger
}

func NewNotificationHandler(notificationService service.INotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.ListByStatus).Methods("GET")
	r.HandleFunc("/notifications/{id}/retry", h.Retry).Methods("POST")
	r.HandleFunc("/notifications/{id}/resend", h.Resend).Methods("POST")
}

func (h *NotificationHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.NotificationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.NotificationFailed
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.ListByStatus(r.Context(), status, limit)
	if err != nil {
		h.log.Error("Failed to list notifications: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// Retry bumps the retry counter without sending anything.
func (h *NotificationHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.IncrementRetryCount(r.Context(), id); err != nil {
		h.log.Error("Failed to increment retry count for notification %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "retry count incremented"})
}

// Resend pushes the stored message content through its channel again.
func (h *NotificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	notification, err := h.notificationService.Resend(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to resend notification %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

func notificationID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid notification ID")
		return 0, false
	}
	return id, true
}
