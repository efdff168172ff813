package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-intake-agent/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-intake-agent/internal/http/middleware"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	IntakeHandler       *handlers.IntakeHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	SpeechHandler       *handlers.SpeechHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthCheck)
		api.Post("/interpret-intent", cfg.IntakeHandler.InterpretIntent)
		api.Post("/propose-slots", cfg.IntakeHandler.ProposeSlots)
		api.Route("/appointments", func(ap chi.Router) {
			ap.Post("/", cfg.AppointmentsHandler.Finalize)
			ap.Get("/", cfg.AppointmentsHandler.List)
			ap.Patch("/{id}", cfg.AppointmentsHandler.Update)
		})
		if cfg.SpeechHandler != nil {
			api.Post("/tts", cfg.SpeechHandler.Synthesize)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
