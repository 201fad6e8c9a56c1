package router

import (
	"net/http"

	"jersey-stock-api/internal/handler"
	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Log                *logger.Logger
	AllowedOrigins     []string
	Handler            *handler.Handler
	InventoryHandler   *handler.InventoryHandler
	SettingsHandler    *handler.SettingsHandler
	ActivityHandler    *handler.ActivityHandler
	CallHandler        *handler.CallHandler
	VoiceHandler       *handler.VoiceHandler
	PreferencesHandler *handler.PreferencesHandler
	DashboardHandler   *handler.DashboardHandler
	AdminHandler       *handler.AdminHandler
	StartCallHandler   *handler.StartCallHandler
	CallbackHandler    *handler.CallbackHandler
	AuthMiddleware     func(http.Handler) http.Handler
	RateLimit          func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.NewRecovery(cfg.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLogging(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}
	if cfg.StartCallHandler != nil {
		r.Post("/api/start-call", cfg.StartCallHandler.StartCall)
	}
	if cfg.CallbackHandler != nil {
		r.Post("/api/call-callback", cfg.CallbackHandler.Callback)
	}

	// AUTHENTICATED routes. Only these are rate limited; the provider boundary
	// routes above are exempt.
	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if h := cfg.InventoryHandler; h != nil {
				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", h.List)
					r.Post("/", h.Create)
					r.Get("/low-stock", h.LowStock)
					r.Post("/import", h.Import)
					r.Get("/export", h.Export)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Get)
						r.Patch("/", h.Update)
						r.Post("/adjust", h.Adjust)
						r.Post("/turn-in", h.TurnIn)
						r.Post("/send-to-league", h.SendToLeague)
						r.Get("/reorder-draft", h.ReorderDraft)
					})
				})
			}

			if h := cfg.SettingsHandler; h != nil {
				r.Route("/settings", func(r chi.Router) {
					r.Get("/", h.Get)
					r.Put("/", h.Save)
					r.Post("/test-alert", h.TestAlert)
				})
			}

			if h := cfg.ActivityHandler; h != nil {
				r.Get("/activity", h.List)
			}

			if h := cfg.CallHandler; h != nil {
				r.Route("/calls", func(r chi.Router) {
					r.Get("/", h.List)
					r.Post("/", h.Start)
					r.Get("/stats", h.Stats)
					r.Get("/{id}", h.Get)
				})
			}

			if h := cfg.VoiceHandler; h != nil {
				r.Route("/voice", func(r chi.Router) {
					r.Post("/interpret", h.Interpret)
					r.Post("/command", h.Command)
				})
			}

			if h := cfg.PreferencesHandler; h != nil {
				r.Route("/preferences", func(r chi.Router) {
					r.Get("/", h.Get)
					r.Put("/", h.Save)
				})
			}

			if h := cfg.DashboardHandler; h != nil {
				r.Get("/dashboard", h.Get)
			}

			if h := cfg.AdminHandler; h != nil {
				r.Get("/admin/stats", h.GetStats)
			}
		})
	})

	return r
}
