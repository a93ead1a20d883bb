// Package main is the entry point for the conversation intelligence API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/config"
	"github.com/zapfield/conversation-intelligence/internal/events"
	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/handler"
	"github.com/zapfield/conversation-intelligence/internal/middleware"
	"github.com/zapfield/conversation-intelligence/internal/provider"
	"github.com/zapfield/conversation-intelligence/internal/service"
	"github.com/zapfield/conversation-intelligence/internal/store"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting conversation intelligence API")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "conversation-intelligence", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Embedded store
	st, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Transport event bus
	natsClient, err := events.Connect(ctx, events.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	consumer := events.NewConsumer(natsClient, st, log)
	if err := consumer.Start(ctx); err != nil {
		log.Error("failed to start event consumer", zap.Error(err))
		os.Exit(1)
	}
	defer consumer.Stop()

	// Inference providers
	weights := extractor.WeightsFrom(cfg.Heuristics)
	remote := buildRemoteProvider(cfg, weights, log)
	gateway := provider.NewGateway(remote, provider.NewLocalProvider(weights), provider.GatewayOptions{
		ProbeTTL:     cfg.AvailabilityTTL,
		ProbeTimeout: cfg.AvailabilityTimeout,
	}, log)

	// Services
	analysisSvc := service.NewAnalysisService(st, st, gateway, log)
	bulkSvc := service.NewBulkService(st, cfg, log)
	kpiSvc := service.NewKPIService(st, cfg.Heuristics)

	// Handlers
	healthHandler := handler.NewHealthHandler(st, natsClient)
	analysisHandler := handler.NewAnalysisHandler(analysisSvc, bulkSvc, log)
	dashboardHandler := handler.NewDashboardHandler(kpiSvc, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/accounts/{accountID}/conversations/{contactNumber}/analysis/{kind}", analysisHandler.Get)
		r.Post("/analysis/bulk", analysisHandler.Bulk)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/kpis", dashboardHandler.KPIs)
			r.Get("/export", dashboardHandler.Export)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// buildRemoteProvider constructs the configured remote provider, or nil when
// no credentials are set. The service still works without one, on the local
// heuristic provider.
func buildRemoteProvider(cfg *config.Config, weights extractor.Weights, log *logger.Logger) provider.RemoteProvider {
	switch cfg.RemoteProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Warn("anthropic provider selected but no API key set, running local-only")
			return nil
		}
		p, err := provider.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.RemoteModel, cfg.RemoteTimeout, weights)
		if err != nil {
			log.Warn("failed to create Anthropic provider, running local-only", zap.Error(err))
			return nil
		}
		return p
	default:
		if cfg.RemoteAPIKey == "" {
			log.Warn("no remote API key set, running local-only")
			return nil
		}
		p, err := provider.NewOpenAIProvider(provider.OpenAIOptions{
			APIKey:     cfg.RemoteAPIKey,
			BaseURL:    cfg.RemoteBaseURL,
			Model:      cfg.RemoteModel,
			Timeout:    cfg.RemoteTimeout,
			MaxElapsed: cfg.RemoteMaxElapsed,
			Weights:    weights,
		})
		if err != nil {
			log.Warn("failed to create remote provider, running local-only", zap.Error(err))
			return nil
		}
		return p
	}
}
