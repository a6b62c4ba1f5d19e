package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/vivenda/crm-platform/internal/activity"
	"github.com/vivenda/crm-platform/internal/api/router"
	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/config"
	"github.com/vivenda/crm-platform/internal/gcal"
	"github.com/vivenda/crm-platform/internal/http/handlers"
	"github.com/vivenda/crm-platform/internal/leads"
	"github.com/vivenda/crm-platform/internal/messaging"
	"github.com/vivenda/crm-platform/internal/messaging/whatsappclient"
	observemetrics "github.com/vivenda/crm-platform/internal/observability/metrics"
	"github.com/vivenda/crm-platform/internal/pending"
	"github.com/vivenda/crm-platform/internal/schedule"
	"github.com/vivenda/crm-platform/internal/scheduling"
	"github.com/vivenda/crm-platform/internal/team"
	"github.com/vivenda/crm-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting crm-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	loc := schedule.Location(cfg.Timezone)

	teamStore := team.NewStore(pool)
	leadStore := leads.NewStore(pool)
	apptStore := appointments.NewStore(pool)
	activityLog := activity.NewRecorder(pool, logger.Named("activity"))
	selections := pending.NewStore(redisClient, cfg.PendingSelectTTL)

	var calendarEvents gcal.Events
	if cfg.GoogleCredentialsJSON != "" {
		calSvc, err := calendar.NewService(ctx, option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
		if err != nil {
			logger.Error("failed to create google calendar service", "error", err)
			os.Exit(1)
		}
		calendarEvents = gcal.NewClient(calSvc, cfg.GoogleCalendarID, cfg.Timezone, cfg.CalendarTimeout)
	} else {
		logger.Warn("google calendar disabled, no credentials configured")
	}

	var provider messaging.Provider
	if cfg.WhatsAppAccessToken != "" {
		provider, err = whatsappclient.New(whatsappclient.Config{
			BaseURL:       cfg.WhatsAppBaseURL,
			AccessToken:   cfg.WhatsAppAccessToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			Logger:        logger.Named("whatsapp").Logger,
		})
		if err != nil {
			logger.Error("failed to create whatsapp client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("whatsapp sending disabled, no access token configured")
	}

	schedulingMetrics := observemetrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)

	svc := scheduling.NewService(scheduling.Config{
		Leads:    leadStore,
		Appts:    apptStore,
		Calendar: calendarEvents,
		Activity: activityLog,
		Location: loc,
		PMCutoff: cfg.AmbiguousHourPMCutoff,
		Defaults: schedule.WorkHours{
			StartHour:       cfg.WorkStartHour,
			EndHour:         cfg.WorkEndHour,
			SaturdayEndHour: cfg.WorkEndSaturday,
		},
		Metrics:  schedulingMetrics,
		Logger:   logger.Named("scheduling"),
	})

	webhooks := handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
		Team:        teamStore,
		Service:     svc,
		Pending:     selections,
		Provider:    provider,
		Logger:      logger.Named("webhooks"),
		Metrics:     schedulingMetrics,
		VerifyToken: cfg.WhatsAppVerifyToken,
	})

	routerCfg := &router.Config{
		Logger:            logger,
		WhatsAppWebhooks:  webhooks,
		AdminAppointments: handlers.NewAdminAppointmentsHandler(apptStore, logger.Named("admin")),
		AdminAuthSecret:   cfg.AdminJWTSecret,
		MetricsHandler:    promhttp.Handler(),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
