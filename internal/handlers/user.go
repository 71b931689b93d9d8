package handlers

import (
	"net/http"
	"strconv"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService   *services.UserService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new user handler; avatarService may be nil
func NewUserHandler(userService *services.UserService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		avatarService: avatarService,
	}
}

// ListUsers handles GET /users?minAge=&maxAge=&gender=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	users, err := h.userService.FindUsers(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GetUser handles GET /users/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateUser handles PATCH /users/{username}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// DeleteUser handles DELETE /users/{username}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.userService.Remove(r.Context(), username); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": username})
}

// AddChild handles POST /users/{username}/children/add
func (h *UserHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req services.AddChildRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	children, err := h.userService.AddChild(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"children": children})
}

// SetPushToken handles PUT /users/{username}/push-token
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	var req services.PushTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.userService.SetPushToken(r.Context(), username, req.PushToken); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().
		Str("username", username).
		Bool("enabled", req.PushToken != nil).
		Msg("Push token updated")

	respondJSON(w, http.StatusOK, map[string]bool{"push_enabled": req.PushToken != nil})
}

// CreateAvatarUpload handles POST /users/{username}/avatar/upload
func (h *UserHandler) CreateAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.avatarService == nil {
		respondError(w, r, apperror.NotFound("Avatar uploads are not enabled"))
		return
	}

	var req services.AvatarUploadRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	upload, err := h.avatarService.CreateUpload(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, upload)
}

// ConfirmAvatarUpload handles PUT /users/{username}/avatar
func (h *UserHandler) ConfirmAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.avatarService == nil {
		respondError(w, r, apperror.NotFound("Avatar uploads are not enabled"))
		return
	}

	var req services.AvatarConfirmRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	avatar, err := h.avatarService.ConfirmUpload(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"avatar": avatar})
}

func parseUserFilter(r *http.Request) (models.UserFilter, error) {
	q := r.URL.Query()
	filter := models.UserFilter{Gender: q.Get("gender")}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"minAge", &filter.MinAge},
		{"maxAge", &filter.MaxAge},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, apperror.BadRequest("%s must be a non-negative integer", p.name)
		}
		*p.dst = &n
	}
	return filter, nil
}
