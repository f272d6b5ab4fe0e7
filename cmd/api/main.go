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

	"github.com/alshifa-health/hms-platform/internal/api/router"
	"github.com/alshifa-health/hms-platform/internal/appointments"
	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/internal/chatbot"
	"github.com/alshifa-health/hms-platform/internal/chatws"
	appconfig "github.com/alshifa-health/hms-platform/internal/config"
	"github.com/alshifa-health/hms-platform/internal/doctors"
	"github.com/alshifa-health/hms-platform/internal/llm"
	"github.com/alshifa-health/hms-platform/internal/observability/metrics"
	"github.com/alshifa-health/hms-platform/internal/patients"
	"github.com/alshifa-health/hms-platform/internal/staff"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hms-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" || cfg.PatientSecret == "" {
		logger.Error("JWT_SECRET and PATIENT_JWT_SECRET are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
	}

	// Repositories
	staffRepo := staff.NewRepository(pool)
	patientRepo := patients.NewRepository(pool)
	doctorRepo := doctors.NewRepository(pool)
	apptRepo := appointments.NewRepository(pool)

	var directory doctors.Directory = doctorRepo
	if redisClient != nil {
		directory = doctors.NewCache(doctorRepo, redisClient, cfg.DoctorCacheTTL)
	}

	// Chatbot pipeline
	chatbotMetrics := metrics.NewChatbotMetrics(prometheus.DefaultRegisterer)
	resolver := doctors.NewResolver(directory, logger)
	negotiator := chatbot.NewNegotiator(apptRepo)

	var assistant chatbot.Assistant
	if client := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.GroqTimeout); client != nil {
		assistant = client
		logger.Info("AI assistant enabled", "model", cfg.GroqModel)
	}
	chatService := chatbot.NewService(chatbot.NewExtractor(), resolver, negotiator, assistant, chatbotMetrics, logger)

	var transcript chatws.Transcript
	if redisClient != nil {
		transcript = chatws.NewRedisTranscript(redisClient)
	} else {
		transcript = chatws.NewMemoryTranscript()
	}

	// Services and handlers
	staffIssuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	patientIssuer := auth.NewIssuer(cfg.PatientSecret, cfg.JWTExpiry)
	chatWS := chatws.NewHandler(chatService, transcript, cfg.PatientSecret, logger)
	apptService := appointments.NewService(apptRepo, logger).WithNotifier(chatWS)

	r := router.New(&router.Config{
		Logger:              logger,
		AuthHandler:         auth.NewHandler(staffRepo, patientRepo, staffIssuer, patientIssuer, logger),
		ChatbotHandler:      chatbot.NewHandler(chatService, logger),
		ChatWSHandler:       chatWS,
		DoctorsHandler:      doctors.NewHandler(directory, logger),
		AppointmentsHandler: appointments.NewHandler(apptService, logger),
		RoleResolver:        staffRepo,
		JWTSecret:           cfg.JWTSecret,
		PatientSecret:       cfg.PatientSecret,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSOrigins,
	})

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
