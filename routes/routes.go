package routes

import (
	"net/http"

	"github.com/compete-app/compete-backend/handlers"
	appmiddleware "github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Venue      *handlers.VenueHandler
	Alert      *handlers.AlertHandler
	Support    *handlers.SupportHandler
	Admin      *handlers.AdminHandler
	News       *handlers.NewsHandler
	Location   *handlers.LocationHandler
	WebSocket  *handlers.WebSocketHandler
}

func New(h Handlers, auth *appmiddleware.Authenticator, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Get("/news", h.News.List)

		// Public search carries optional identity so admins see inactive
		// rows on the same route.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuthenticate)
			r.Get("/tournaments", h.Tournament.Search)
			r.Get("/tournaments/{id}", h.Tournament.GetByID)
			r.Get("/tournaments/{id}/likes", h.Tournament.LikeCount)
			r.Get("/venues", h.Venue.List)
			r.Get("/venues/near", h.Venue.Near)
			r.Get("/venues/{id}", h.Venue.GetByID)
			r.Get("/locations/autocomplete", h.Location.Autocomplete)
			r.Get("/locations/reverse", h.Location.Reverse)
			r.Get("/locations/route", h.Location.RouteDistance)
			r.Get("/locations/places", h.Location.Places)
			r.Get("/locations/zip", h.Location.ResolveZip)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/auth/me", h.Auth.Me)

			r.Post("/tournaments", h.Tournament.Create)
			r.Put("/tournaments/{id}", h.Tournament.Update)
			r.Delete("/tournaments/{id}", h.Tournament.Delete)
			r.Post("/tournaments/{id}/flyer", h.Tournament.UploadFlyer)
			r.Post("/tournaments/{id}/like", h.Tournament.Like)
			r.Delete("/tournaments/{id}/like", h.Tournament.Unlike)

			r.Get("/alerts", h.Alert.List)
			r.Post("/alerts", h.Alert.Create)
			r.Put("/alerts/{id}", h.Alert.Update)
			r.Delete("/alerts/{id}", h.Alert.Delete)

			r.Post("/support", h.Support.Create)
			r.Get("/support", h.Support.ListMine)
			r.Post("/support/{id}/read", h.Support.MarkRead)
		})

		// Administrative routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(appmiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))

			r.Patch("/tournaments/{id}/status", h.Tournament.UpdateStatus)

			r.Post("/venues", h.Venue.Create)
			r.Put("/venues/{id}", h.Venue.Update)
			r.Delete("/venues/{id}", h.Venue.Delete)

			r.Get("/admin/dashboard", h.Admin.Dashboard)
			r.Get("/admin/venues/{id}/like-stats", h.Admin.VenueLikeStats)
			r.Post("/admin/tournaments/archive-expired", h.Admin.ArchiveExpired)

			r.Get("/admin/support", h.Support.ListAll)
			r.Post("/admin/support/{id}/respond", h.Support.Respond)
		})
	})

	r.Get("/ws/feed", h.WebSocket.Feed)
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/ws/alerts", h.WebSocket.Alerts)
	})

	return r
}
