package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-actions/pkg/validator"

	"github.com/johnquangdev/meeting-actions/internal/adapter/handler"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/directory"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/ticketing"
	httpmw "github.com/johnquangdev/meeting-actions/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-actions/internal/usecase/delivery"
	"github.com/johnquangdev/meeting-actions/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-actions/internal/usecase/identity"
	"github.com/johnquangdev/meeting-actions/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-actions/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	"github.com/johnquangdev/meeting-actions/pkg/jwt"
	"github.com/johnquangdev/meeting-actions/pkg/llm"
	"github.com/johnquangdev/meeting-actions/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Request-ID"},
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Resolution cache backend
	var resolutionCache cache.Store
	switch cfg.Directory.CacheBackend {
	case "redis":
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		resolutionCache = redisStore
	default:
		resolutionCache = cache.NewMemoryStore()
	}

	// Shared retry policy for outbound calls
	retryPolicy := retry.Policy{
		MaxAttempts: cfg.Pipeline.RetryAttempts,
		BaseDelay:   cfg.Pipeline.RetryBaseDelay,
		MaxDelay:    cfg.Pipeline.RetryMaxDelay,
		Jitter:      cfg.Pipeline.RetryJitter,
	}

	// Initialize extraction components
	log.Println("🤖 Initializing extraction service...")
	llmClient := llm.NewClient(&cfg.LLM, logger)
	chunker := transcript.NewChunker(cfg.Pipeline.ChunkThreshold)
	extractionService := extraction.NewService(llmClient, chunker, retryPolicy, logger)

	// Initialize identity resolver
	log.Println("🔎 Initializing identity resolver...")
	directoryClient := directory.NewClient(&cfg.Directory)
	resolver := identity.NewResolver(directoryClient, resolutionCache, cfg.Directory.CacheTTL, cfg.Pipeline.ResolveBatch, logger)

	// Initialize delivery orchestrator
	log.Println("📬 Initializing delivery orchestrator...")
	ticketingClient := ticketing.NewClient(&cfg.Ticketing)
	orchestrator := delivery.NewOrchestrator(ticketingClient, resolver, &cfg.Ticketing, &cfg.Pipeline, logger)

	// Initialize pipeline service
	log.Println("🧵 Initializing pipeline service...")
	pipelineService := pipeline.NewService(extractionService, orchestrator, logger)

	// Initialize JWT manager for service-to-service auth
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.Auth.ServiceSecret, cfg.Auth.TokenExpiry)
	authMW := httpmw.ServiceAuth(jwtManager, logger)

	// Initialize transcript handler
	log.Println("🚀 Initializing transcript handler...")
	transcriptHandler := handler.NewTranscript(pipelineService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, transcriptHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
