package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Effnets/internal/analysis"
	"github.com/MikeSquared-Agency/Effnets/internal/api"
	"github.com/MikeSquared-Agency/Effnets/internal/config"
	"github.com/MikeSquared-Agency/Effnets/internal/hermes"
	"github.com/MikeSquared-Agency/Effnets/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("effnets failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// runRequestHandler runs the analysis for every well-formed run request and
// drops malformed ones.
func runRequestHandler(ctx context.Context, runAnalysis func(context.Context) error, logger *slog.Logger) func(string, []byte) {
	return func(_ string, data []byte) {
		var req hermes.RunRequestEvent
		if err := json.Unmarshal(data, &req); err != nil {
			logger.Warn("dropping malformed run request", "error", err)
			return
		}
		logger.Info("analysis run requested", "reason", req.Reason)
		if err := runAnalysis(ctx); err != nil {
			logger.Error("requested analysis failed", "error", err)
		}
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional)
	var resultStore store.Store
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		resultStore = db
		logger.Info("connected to database")
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	runner := analysis.NewRunner(cfg, resultStore, hermesClient, logger)
	if _, err := runner.Run(ctx); err != nil {
		if !cfg.Server.Enabled {
			return err
		}
		logger.Error("initial analysis failed, serving without results", "error", err)
	}
	if !cfg.Server.Enabled {
		return nil
	}

	if hermesClient != nil {
		err := hermesClient.Subscribe(hermes.SubjectRunRequest, runRequestHandler(ctx, func(ctx context.Context) error {
			_, err := runner.Run(ctx)
			return err
		}, logger))
		if err != nil {
			logger.Warn("failed to subscribe to run requests", "error", err)
		}
	}

	// API server
	router := api.NewRouter(runner, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}
