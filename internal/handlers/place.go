package handlers

import (
	"fmt"
	"net/http"

	"playdate-buddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PlaceHandler handles place search, saved places and reviews
type PlaceHandler struct {
	placeService  *services.PlaceService
	reviewService *services.ReviewService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(placeService *services.PlaceService, reviewService *services.ReviewService) *PlaceHandler {
	return &PlaceHandler{
		placeService:  placeService,
		reviewService: reviewService,
	}
}

// Search handles POST /users/place/search
func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req services.SearchQuery
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	place, err := h.placeService.Search(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"place": place})
}

// GetPlace handles GET /users/places/{id}
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.placeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"place": place})
}

// SavePlace handles POST /users/{username}/places/{id}
func (h *PlaceHandler) SavePlace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.placeService.Save(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"Saved": fmt.Sprintf("Place: %s", id)})
}

// ListSaved handles GET /users/{username}/places
func (h *PlaceHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.ListSaved(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"places": places})
}

// UnsavePlace handles DELETE /users/{username}/places/{id}
func (h *PlaceHandler) UnsavePlace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.placeService.Unsave(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": fmt.Sprintf("Place: %s", id)})
}

// LeaveReview handles POST /users/{username}/places/{id}/review
func (h *PlaceHandler) LeaveReview(w http.ResponseWriter, r *http.Request) {
	var req services.ReviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.reviewService.Leave(r.Context(), chi.URLParam(r, "username"), id, req); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"added": fmt.Sprintf("review for place: %s", id)})
}

// RemoveReview handles DELETE /users/{username}/places/{id}/review
func (h *PlaceHandler) RemoveReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.reviewService.Remove(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": fmt.Sprintf("review for place: %s", id)})
}
