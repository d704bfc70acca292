package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-travel-planner/docs"
	"github.com/FACorreiaa/go-travel-planner/internal/api/travel"
	"github.com/FACorreiaa/go-travel-planner/internal/api/workspace"
)

// Config contains the handlers mounted by SetupRouter. A nil
// AuthenticateMiddleware leaves /api/v1 open.
type Config struct {
	WorkspaceHandler       *workspace.Handler
	TravelHandler          *travel.Handler
	HealthHandler          http.HandlerFunc
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	RequestsPerMinute      int
}

// SetupRouter builds the API router. Server-wide middleware (request id,
// logging, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler)
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 120
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(limit, time.Minute))
		if cfg.AuthenticateMiddleware != nil {
			r.Use(cfg.AuthenticateMiddleware)
		}

		if cfg.TravelHandler != nil {
			r.Post("/travel/search", cfg.TravelHandler.Search)
		}
		if cfg.WorkspaceHandler != nil {
			r.Mount("/workspaces", WorkspaceRoutes(cfg.WorkspaceHandler))
		}
	})

	return r
}

// WorkspaceRoutes wires every per-workspace action.
func WorkspaceRoutes(h *workspace.Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.CreateWorkspace)

	r.Route("/{wsID}", func(r chi.Router) {
		r.Get("/", h.GetWorkspace)
		r.Delete("/", h.DeleteWorkspace)
		r.Put("/active", h.SetActive)

		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/", h.CreateItinerary)
			r.Route("/{itID}", func(r chi.Router) {
				r.Delete("/", h.DeleteItinerary)
				r.Post("/days", h.AddDay)
				r.Delete("/days/{dayID}/items/{itemID}", h.DeleteItem)
				r.Post("/save", h.SaveItinerary)
				r.Get("/ical", h.ExportICal)
			})
		})

		r.Get("/saved", h.ListSaved)
		r.Post("/saved/{savedID}/restore", h.RestoreSaved)
		r.Delete("/saved/{savedID}", h.DeleteSaved)

		r.Post("/drag/start", h.DragStart)
		r.Post("/drag/drop", h.DragDrop)
		r.Post("/drag/cancel", h.DragCancel)

		r.Get("/messages", h.GetMessages)
		r.Post("/messages", h.SendMessage)

		r.Route("/map", func(r chi.Router) {
			r.Post("/circle/start", h.CircleStart)
			r.Post("/circle/click", h.CircleClick)
			r.Post("/circle/move", h.CircleMove)
			r.Post("/circle/cancel", h.CircleCancel)
			r.Get("/markers", h.Markers)
			r.Post("/select", h.Select)
			r.Delete("/select", h.Unselect)
		})

		r.Route("/live", func(r chi.Router) {
			r.Get("/", h.GetLive)
			r.Post("/mood", h.UpdateMood)
			r.Post("/adjust", h.Adjust)
			r.Post("/accept", h.Accept)
			r.Post("/reject", h.Reject)
		})

		r.Post("/bookings", h.BookingOverview)
		r.Post("/bookings/{kind}", h.Booking)

		r.Get("/notifications", h.Notifications)
		r.Get("/events", h.Events)
	})
	return r
}
