package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vivenda/crm-platform/internal/http/handlers"
	httpmiddleware "github.com/vivenda/crm-platform/internal/http/middleware"
	"github.com/vivenda/crm-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	WhatsAppWebhooks  *handlers.WhatsAppWebhookHandler
	AdminAppointments *handlers.AdminAppointmentsHandler
	AdminAuthSecret   string
	MetricsHandler    http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.WhatsAppWebhooks != nil {
			public.Get("/webhooks/whatsapp", cfg.WhatsAppWebhooks.HandleVerify)
			public.Post("/webhooks/whatsapp", cfg.WhatsAppWebhooks.HandleMessages)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminAppointments != nil {
				admin.Get("/team/{memberID}/appointments", cfg.AdminAppointments.ListForMember)
			}
		})
	}

	return r
}
