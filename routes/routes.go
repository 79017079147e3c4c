package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/courtline/club-scheduler/config"
	"github.com/courtline/club-scheduler/handlers"
	"github.com/courtline/club-scheduler/middleware"
)

type Handlers struct {
	Player     *handlers.PlayerHandler
	Event      *handlers.EventHandler
	Scheduling *handlers.SchedulingHandler
}

func InitRoutes(cfg *config.Config, h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/players", func(r chi.Router) {
		r.Post("/", h.Player.CreateHandler)
		r.Get("/", h.Player.ListHandler)
		r.Get("/{playerID}", h.Player.GetByIDHandler)
		r.Put("/{playerID}", h.Player.UpdateHandler)
		r.Delete("/{playerID}", h.Player.DeleteHandler)
	})

	router.Route("/events", func(r chi.Router) {
		r.Post("/", h.Event.CreateHandler)
		r.Get("/", h.Event.ListHandler)

		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.Event.GetByIDHandler)
			r.Put("/", h.Event.UpdateHandler)
			r.Patch("/status", h.Event.UpdateStatusHandler)
			r.Delete("/", h.Event.DeleteHandler)

			r.Post("/roster", h.Player.AddToRosterHandler)
			r.Get("/roster", h.Player.ListRosterHandler)
			r.Delete("/roster/{playerID}", h.Player.RemoveFromRosterHandler)

			r.Post("/bracket", h.Scheduling.GenerateBracketHandler)
			r.Get("/bracket", h.Scheduling.GetBracketHandler)
			r.Post("/matches/{matchNumber}/result", h.Scheduling.SubmitResultHandler)

			r.Post("/rounds", h.Scheduling.GenerateRoundHandler)
			r.Get("/rounds", h.Scheduling.ListRoundsHandler)
		})
	})

	return router
}
