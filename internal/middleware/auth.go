package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"playdate-buddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const claimsKey contextKey = "claims"

const unauthorized = "Unauthorized"

// TokenValidator checks an access token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// Authenticate creates a middleware for JWT authentication. The token is read
// from the Authorization header, or from the token query parameter for
// WebSocket upgrades which cannot set headers from the browser.
func Authenticate(auth TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, unauthorized, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				respondError(w, unauthorized, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnsureCorrectUser rejects requests whose {username} path parameter is not
// the authenticated user. Must run after Authenticate.
func EnsureCorrectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil || claims.Username != chi.URLParam(r, "username") {
			respondError(w, unauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims extracts the token claims from context
func GetClaims(ctx context.Context) *services.Claims {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUsername extracts the authenticated username from context
func GetUsername(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Username
	}
	return ""
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
	if websocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]errorBody{
		"error": {Message: message, Status: statusCode},
	})
}
