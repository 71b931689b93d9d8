package handlers

import (
	"net/http"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// DateHandler handles scheduled playdates
type DateHandler struct {
	dateService *services.DateService
}

// NewDateHandler creates a new date handler
func NewDateHandler(dateService *services.DateService) *DateHandler {
	return &DateHandler{
		dateService: dateService,
	}
}

// Schedule handles POST /users/{username}/places/{id}/date
func (h *DateHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req services.DateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	date, err := h.dateService.Schedule(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"Date": date})
}

// ListForUser handles GET /users/{username}/dates
func (h *DateHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dateService.ListForUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// GetDate handles GET /users/{username}/places/{id}/date?timestamp=
func (h *DateHandler) GetDate(w http.ResponseWriter, r *http.Request) {
	timestamp := r.URL.Query().Get("timestamp")
	if timestamp == "" {
		respondError(w, r, apperror.Invalid([]string{"timestamp is required"}))
		return
	}

	date, err := h.dateService.Get(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "id"), timestamp)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"date": date})
}

// ListForPlace handles GET /users/places/{id}/dates
func (h *DateHandler) ListForPlace(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dateService.ListForPlace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// Cancel handles DELETE /users/{username}/places/{id}/date
func (h *DateHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req services.DateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cancelled, err := h.dateService.Cancel(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"Cancelled": cancelled})
}
