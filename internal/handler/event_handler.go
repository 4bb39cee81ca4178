package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	eventService        service.IEventService
	notificationService service.INotificationService
	log                 *logger.Logger
}

func NewEventHandler(eventService service.IEventService, notificationService service.INotificationService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		eventService:        eventService,
		notificationService: notificationService,
		log:                 log,
	}
}

func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/events", h.CreateEvent).Methods("POST")
	r.HandleFunc("/events", h.ListEvents).Methods("GET")
	r.HandleFunc("/events/active", h.GetActiveEvents).Methods("GET")
	r.HandleFunc("/events/{id}", h.GetEvent).Methods("GET")
	r.HandleFunc("/events/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/events/{id}/acknowledge", h.Acknowledge).Methods("POST")
	r.HandleFunc("/events/{id}/resolve", h.Resolve).Methods("POST")
	r.HandleFunc("/events/{id}/ignore", h.Ignore).Methods("POST")
	r.HandleFunc("/events/{id}/notify", h.Notify).Methods("POST")
	r.HandleFunc("/events/{id}/notifications", h.GetNotifications).Methods("GET")
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input service.CustomEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.CreateCustomEvent(r.Context(), input)
	if err != nil {
		h.log.Error("Failed to create event: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := models.EventFilter{}
	q := r.URL.Query()

	filter.Status = models.EventStatus(q.Get("status"))
	filter.Severity = models.EventSeverity(q.Get("severity"))
	filter.Type = models.EventType(q.Get("event_type"))
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			filter.Limit = parsed
		}
	}

	events, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		h.log.Error("Failed to list events: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

func (h *EventHandler) GetActiveEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.GetActiveEvents(r.Context())
	if err != nil {
		h.log.Error("Failed to get active events: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to get event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

type actionRequest struct {
	Actor string  `json:"actor"`
	Note  *string `json:"note"`
}

func (h *EventHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.Acknowledge(r.Context(), id, req.Actor, req.Note)
	if err != nil {
		h.log.Error("Failed to acknowledge event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.Resolve(r.Context(), id, req.Actor, req.Note, false)
	if err != nil {
		h.log.Error("Failed to resolve event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.Ignore(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to ignore event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Delete(r.Context(), id); err != nil {
		h.log.Error("Failed to delete event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Notify dispatches the event through every registered channel. The
// message_type query selects the shape: complete (default), summary,
// recovery, or both for complete plus summary in one call.
func (h *EventHandler) Notify(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var notifications []models.AlertNotification
	switch r.URL.Query().Get("message_type") {
	case "", "complete":
		notifications, err = h.notificationService.Dispatch(r.Context(), event, models.MessageComplete)
	case "summary":
		notifications, err = h.notificationService.Dispatch(r.Context(), event, models.MessageSummary)
	case "recovery":
		notifications, err = h.notificationService.Dispatch(r.Context(), event, models.MessageRecovery)
	case "both":
		notifications, err = h.notificationService.Dispatch(r.Context(), event, models.MessageComplete)
		if err == nil {
			var summaries []models.AlertNotification
			summaries, err = h.notificationService.Dispatch(r.Context(), event, models.MessageSummary)
			notifications = append(notifications, summaries...)
		}
	default:
		respondError(w, http.StatusBadRequest, "message_type must be complete, summary, both or recovery")
		return
	}
	if err != nil {
		h.log.Error("Failed to notify for event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

func (h *EventHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListByEvent(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to list notifications for event %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

func eventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid event ID")
		return 0, false
	}
	return id, true
}
