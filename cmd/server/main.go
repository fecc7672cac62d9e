package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/cipher"
	"github.com/clientlane/crm-server-go/internal/config"
	"github.com/clientlane/crm-server-go/internal/database"
	"github.com/clientlane/crm-server-go/internal/handler"
	"github.com/clientlane/crm-server-go/internal/jobs"
	"github.com/clientlane/crm-server-go/internal/middleware"
	"github.com/clientlane/crm-server-go/internal/redis"
	"github.com/clientlane/crm-server-go/internal/repository"
	"github.com/clientlane/crm-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	var cipherProvider cipher.Provider
	if cfg.CredentialEncryptionKey != "" {
		cipherProvider, err = cipher.NewAESGCM(cfg.CredentialEncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid credential encryption key")
		}
	} else {
		log.Warn().Msg("CREDENTIAL_ENCRYPTION_KEY not set: portal credential storage is disabled")
	}

	userRepo := repository.NewUserRepository(db.DB)
	clientRepo := repository.NewClientRepository(db.DB)
	projectRepo := repository.NewProjectRepository(db.DB)
	credentialRepo := repository.NewPortalCredentialRepository(db.DB)
	portalSessionRepo := repository.NewPortalSessionRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	markupRepo := repository.NewMarkupRepository(db.DB)
	attachmentRepo := repository.NewAttachmentRepository(db.DB)

	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(projectRepo, clientRepo)
	credentialService := service.NewCredentialService(db, credentialRepo, projectRepo, cipherProvider)
	sessionService := service.NewPortalSessionService(portalSessionRepo, projectRepo, cfg.PortalSessionTTL())
	identityService := service.NewIdentityService(userRepo, sessionService, cfg.AuthTokenSecret)
	collabService := service.NewCollaborationService(projectRepo, messageRepo, commentRepo, markupRepo, attachmentRepo)
	attemptLimiter := service.NewAttemptLimiter(redisClient)

	identityMiddleware := middleware.NewIdentityMiddleware(identityService)
	fastPathGate := middleware.NewFastPathGate(credentialService, sessionService, cfg.PortalMarkerSecret, isProduction)
	loginLimiter := middleware.NewLoginRateLimiter()
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(userService, loginLimiter, cfg.AuthTokenSecret, isProduction)
	projectHandler := handler.NewProjectHandler(projectService, credentialService, sessionService)
	collabHandler := handler.NewCollabHandler(collabService)
	portalHandler := handler.NewPortalHandler(
		credentialService, sessionService, collabService,
		attemptLimiter, fastPathGate, cfg.PortalMarkerSecret, isProduction,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(middleware.BodyLimit(0))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)
		r.Use(identityMiddleware.Handler)
		r.Mount("/", authHandler.Routes())
	})

	r.Route("/portal", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)
		r.Mount("/", portalHandler.Routes(identityMiddleware))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)
		r.Use(identityMiddleware.Handler)
		r.Mount("/projects", projectHandler.Routes())
		r.Mount("/collab", collabHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(portalSessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
