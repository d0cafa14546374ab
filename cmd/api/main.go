package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/consilium-health/consilium/internal/adapters/cache"
	"github.com/consilium-health/consilium/internal/adapters/database"
	"github.com/consilium-health/consilium/internal/api/handlers"
	"github.com/consilium-health/consilium/internal/api/routes"
	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/providers"
	"github.com/consilium-health/consilium/internal/domain/repositories"
	"github.com/consilium-health/consilium/internal/infrastructure/clients/openai"
	"github.com/consilium-health/consilium/internal/infrastructure/clients/postgres"
	"github.com/consilium-health/consilium/internal/infrastructure/clients/redis"
	"github.com/consilium-health/consilium/internal/infrastructure/observability"
	"github.com/consilium-health/consilium/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client. Consultations still work without
	// persistence, so a missing database only costs the audit trail.
	var consultationRepo repositories.ConsultationRepository
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL unavailable, consultations will not be persisted")
	} else {
		defer pgClient.Close()
		consultationRepo = database.NewConsultationAdapter(pgClient)
		log.Info().Msg("PostgreSQL client initialized")
	}

	// Initialize Redis client. Without it sessions are stateless.
	var conversationStore providers.ConversationStore
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, conversation history disabled")
	} else {
		defer redisClient.Close()
		ttl := time.Duration(cfg.Redis.ConversationTTLSeconds) * time.Second
		conversationStore = cache.NewRedisConversationStore(redisClient, ttl)
		log.Info().Msg("Redis client initialized")
	}

	// Initialize OpenAI client
	openaiClient, err := openai.NewClient(&cfg.OpenAI, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize OpenAI client")
	}

	// Initialize services
	emergencyService := services.NewEmergencyDetectionService()
	confidenceService := services.NewSpecialtyConfidenceService(nil)
	consensusService := services.NewConsensusService(openaiClient)
	consultationService := services.NewConsultationService(
		emergencyService,
		confidenceService,
		consensusService,
		openaiClient,
		consultationRepo,
		conversationStore,
	)

	// Initialize handlers
	consultationHandler := handlers.NewConsultationHandler(consultationService, consultationRepo, metrics)
	triageHandler := handlers.NewTriageHandler(emergencyService, metrics)

	var sessionHandler *handlers.SessionHandler
	if conversationStore != nil {
		sessionHandler = handlers.NewSessionHandler(conversationStore)
	}

	router := routes.NewRouter(consultationHandler, triageHandler, sessionHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server exited")
}
