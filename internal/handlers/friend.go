package handlers

import (
	"net/http"

	"playdate-buddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// FriendHandler handles friendship requests
type FriendHandler struct {
	friendService *services.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// AddFriend handles POST /users/{username}/friends/{user_friended}/add
func (h *FriendHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	friended := chi.URLParam(r, "user_friended")
	if err := h.friendService.Add(r.Context(), chi.URLParam(r, "username"), friended); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"friended": friended})
}

// ListFriends handles GET /users/{username}/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friendService.List(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

// RemoveFriend handles DELETE /users/{username}/friends/{user_friended}/remove
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	friended := chi.URLParam(r, "user_friended")
	if err := h.friendService.Remove(r.Context(), chi.URLParam(r, "username"), friended); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"unfriended": friended})
}
