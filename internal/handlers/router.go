package handlers

import (
	"net/http"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router wires the handlers to their routes. Health, Metrics and
// MetricsHandler are optional.
type Router struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Friends   *FriendHandler
	Places    *PlaceHandler
	Dates     *DateHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler

	Tokens         middleware.TokenValidator
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// Handler builds the HTTP handler
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(corsOptions(rt.AllowedOrigins)))
	if rt.Metrics != nil {
		r.Use(middleware.HTTPMetrics(rt.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperror.NotFound("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error: ErrorBody{Message: http.StatusText(http.StatusMethodNotAllowed), Status: http.StatusMethodNotAllowed},
		})
	})

	if rt.Health != nil {
		r.Get("/healthz", rt.Health.Health)
	}
	if rt.MetricsHandler != nil {
		r.Handle("/metrics", rt.MetricsHandler)
	}

	// Public routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", rt.Auth.Token)
		r.Post("/register", rt.Auth.Register)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.Tokens))

		r.Get("/ws", rt.WebSocket.HandleWebSocket)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", rt.Users.ListUsers)
			r.Post("/place/search", rt.Places.Search)
			r.Get("/places/{id}", rt.Places.GetPlace)
			r.Get("/places/{id}/dates", rt.Dates.ListForPlace)

			// Routes acting on behalf of {username}
			r.Route("/{username}", func(r chi.Router) {
				r.Use(middleware.EnsureCorrectUser)

				r.Get("/", rt.Users.GetUser)
				r.Patch("/", rt.Users.UpdateUser)
				r.Delete("/", rt.Users.DeleteUser)
				r.Post("/children/add", rt.Users.AddChild)
				r.Put("/push-token", rt.Users.SetPushToken)
				r.Post("/avatar/upload", rt.Users.CreateAvatarUpload)
				r.Put("/avatar", rt.Users.ConfirmAvatarUpload)

				r.Post("/friends/{user_friended}/add", rt.Friends.AddFriend)
				r.Get("/friends", rt.Friends.ListFriends)
				r.Delete("/friends/{user_friended}/remove", rt.Friends.RemoveFriend)

				r.Get("/places", rt.Places.ListSaved)
				r.Post("/places/{id}", rt.Places.SavePlace)
				r.Delete("/places/{id}", rt.Places.UnsavePlace)
				r.Post("/places/{id}/review", rt.Places.LeaveReview)
				r.Delete("/places/{id}/review", rt.Places.RemoveReview)

				r.Get("/dates", rt.Dates.ListForUser)
				r.Post("/places/{id}/date", rt.Dates.Schedule)
				r.Get("/places/{id}/date", rt.Dates.GetDate)
				r.Delete("/places/{id}/date", rt.Dates.Cancel)
			})
		})
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
