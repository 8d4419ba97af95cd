package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ksingh-08/devops-intelligence-platform/internal/api"
	"github.com/ksingh-08/devops-intelligence-platform/internal/config"
	"github.com/ksingh-08/devops-intelligence-platform/internal/engine"
	"github.com/ksingh-08/devops-intelligence-platform/internal/metrics"
	"github.com/ksingh-08/devops-intelligence-platform/internal/repo"
	"github.com/ksingh-08/devops-intelligence-platform/internal/services"
	"github.com/ksingh-08/devops-intelligence-platform/internal/store"
	"github.com/ksingh-08/devops-intelligence-platform/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting decision engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var decisionStore services.DecisionStore
	if cfg.Store.Enabled {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open decision store", slog.String("path", cfg.Store.Path), slog.Any("error", err))
			os.Exit(1)
		}
		defer s.Close()
		decisionStore = s
	}

	decisionEngine := engine.New(engine.Config{
		ConfidenceThreshold:       cfg.Engine.ConfidenceThreshold,
		MaxAutoDeploymentsPerHour: cfg.Engine.MaxAutoDeploymentsPerHour,
		BusinessHoursOnly:         cfg.Engine.BusinessHoursOnly,
		CriticalServices:          cfg.Engine.CriticalServices,
	}, logger)

	service := services.NewDecisionService(logger, decisionEngine, decisionStore)
	server := api.NewServer(cfg.Server, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	if cfg.Producer.BaseURL != "" && cfg.Producer.PollInterval > 0 {
		client := repo.NewAnalysisClient(cfg.Producer.BaseURL, cfg.Producer.AnalysisPath, cfg.Producer.Timeout)
		go service.Poll(ctx, client, cfg.Producer.PollInterval)
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("decision engine stopped")
}
