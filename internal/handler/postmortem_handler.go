package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/report"
	"SiteMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type PostMortemHandler struct {
	postMortemService service.IPostMortemService
	log               *logger.Logger
}

func NewPostMortemHandler(postMortemService service.IPostMortemService, log *logger.Logger) *PostMortemHandler {
	return &PostMortemHandler{
		postMortemService: postMortemService,
		log:               log,
	}
}

func (h *PostMortemHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/post-mortems", h.Create).Methods("POST")
	r.HandleFunc("/post-mortems", h.List).Methods("GET")
	r.HandleFunc("/post-mortems/{id}", h.Get).Methods("GET")
	r.HandleFunc("/post-mortems/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/post-mortems/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/post-mortems/{id}/complete", h.Complete).Methods("POST")
	r.HandleFunc("/post-mortems/{id}/review", h.Review).Methods("POST")
	r.HandleFunc("/post-mortems/{id}/report", h.Report).Methods("GET")
}

func (h *PostMortemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.PostMortemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pm, err := h.postMortemService.Create(r.Context(), input)
	if err != nil {
		h.log.Error("Failed to create post-mortem: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, pm)
}

func (h *PostMortemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	postMortems, err := h.postMortemService.List(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list post-mortems: %v", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, postMortems)
}

func (h *PostMortemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	pm, err := h.postMortemService.Get(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to get post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pm)
}

func (h *PostMortemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	var update service.PostMortemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pm, err := h.postMortemService.Update(r.Context(), id, update)
	if err != nil {
		h.log.Error("Failed to update post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pm)
}

func (h *PostMortemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	if err := h.postMortemService.Delete(r.Context(), id); err != nil {
		h.log.Error("Failed to delete post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostMortemHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	pm, err := h.postMortemService.Complete(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to complete post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pm)
}

func (h *PostMortemHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	var req struct {
		Reviewer string `json:"reviewer"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	pm, err := h.postMortemService.Review(r.Context(), id, req.Reviewer)
	if err != nil {
		h.log.Error("Failed to review post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pm)
}

// Report returns the write-up plus derived metrics, as JSON by default or
// as a PDF when format=pdf.
func (h *PostMortemHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := postMortemID(w, r)
	if !ok {
		return
	}

	rep, err := h.postMortemService.GenerateReport(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to build report for post-mortem %d: %v", id, err)
		respondServiceError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		respondJSON(w, http.StatusOK, rep)
	case "pdf":
		var buf bytes.Buffer
		if err := report.WritePDF(&buf, rep); err != nil {
			h.log.Error("Failed to render PDF for post-mortem %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="post-mortem-%d.pdf"`, id))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		respondError(w, http.StatusBadRequest, "format must be json or pdf")
	}
}

func postMortemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid post-mortem ID")
		return 0, false
	}
	return id, true
}
