package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/pkg/logger/zerolog"
	"github.com/duynhne/placement-service/config"
	database "github.com/duynhne/placement-service/internal/core"
	"github.com/duynhne/placement-service/internal/chatbot"
	"github.com/duynhne/placement-service/internal/core/repository"
	logicv1 "github.com/duynhne/placement-service/internal/logic/v1"
	"github.com/duynhne/placement-service/internal/notify"
	"github.com/duynhne/placement-service/internal/storage"
	v1 "github.com/duynhne/placement-service/internal/web/v1"
	"github.com/duynhne/placement-service/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	zerolog.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Str("db_driver", cfg.Database.Driver).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Record store: Postgres through pgx, or the in-process store
	var pool *pgxpool.Pool
	var repos database.Repositories
	if cfg.Database.Driver == "memory" {
		repos = database.NewMemoryRepositories(repository.NewMemoryStore())
		log.Warn().Msg("Using in-memory store; data is lost on restart")
	} else {
		var err error
		pool, err = database.Connect(context.Background(), cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		log.Info().Msg("Database connection pool established")

		if cfg.Database.RunMigrations {
			if err := database.Migrate(context.Background(), pool); err != nil {
				log.Fatal().Err(err).Msg("Failed to run migrations")
			}
		}
		repos = database.NewPostgresRepositories(pool)
	}

	files, err := newFileStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file store")
	}

	auth := logicv1.NewAuthService(repos.Users, repos.Sessions, newNotifier(cfg), logicv1.AuthOptions{
		PublicBaseURL: cfg.Service.PublicBaseURL,
		SessionTTL:    cfg.GetSessionTTL(),
		NotifyTimeout: cfg.GetMailTimeout(),
	})
	profiles := logicv1.NewProfileService(repos.Profiles, files)
	portal := logicv1.NewPortalService(repos.Applications, repos.Stories, newResponder(cfg))

	handler := v1.NewHandler(auth, profiles, portal, v1.Options{
		CookieName:     cfg.Session.CookieName,
		CookieSecure:   cfg.Session.CookieSecure,
		SessionTTL:     cfg.GetSessionTTL(),
		MaxUploadBytes: cfg.GetMaxUploadBytes(),
		StaticDir:      cfg.Static.Dir,
	})

	r := gin.Default()

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware())

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if pool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Portal routes: pages, /verify-email and /api
	handler.RegisterRoutes(&r.RouterGroup)
	r.NoRoute(handler.NotFound)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting placement service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for the load balancer to notice.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Close database connections
	if pool != nil {
		pool.Close()
		log.Info().Msg("Database pool closed")
	}

	// 3. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}

func newFileStore(cfg *config.Config) (storage.FileStore, error) {
	if cfg.Storage.Backend == config.StorageS3 {
		log.Info().Str("bucket", cfg.Storage.S3Bucket).Msg("Resumes stored in S3")
		return storage.NewS3Store(context.Background(), cfg.Storage)
	}
	log.Info().Str("dir", cfg.Storage.UploadDir).Msg("Resumes stored on local disk")
	return storage.NewLocalStore(cfg.Storage.UploadDir), nil
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Mail.Backend == config.MailSMTP {
		log.Info().Str("host", cfg.Mail.SMTPHost).Msg("Verification emails sent over SMTP")
		return notify.NewSMTPNotifier(cfg.Mail)
	}
	log.Info().Msg("Verification emails written to the log (MAIL_BACKEND=log)")
	return notify.NewLogNotifier()
}

func newResponder(cfg *config.Config) chatbot.Responder {
	if cfg.Chatbot.Backend == config.ChatbotOpenAI {
		log.Info().Str("model", cfg.Chatbot.Model).Msg("Chatbot backed by OpenAI-compatible API")
		return chatbot.NewOpenAIResponder(cfg.Chatbot.APIKey, cfg.Chatbot.BaseURL, cfg.Chatbot.Model, cfg.GetChatbotTimeout())
	}
	return chatbot.NewRuleResponder()
}
