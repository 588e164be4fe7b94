package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"seatrack/backend/config"
	"seatrack/backend/fleet"
	"seatrack/backend/forecast"
	"seatrack/backend/ingest"
	"seatrack/backend/server"
)

func main() {
	var (
		addrDefault   = envString("SEATRACK_ADDR", "")
		dataDefault   = envString("SEATRACK_DATA", "")
		trialsDefault = envInt("SEATRACK_TRIALS", 0)
		configPath    = flag.String("config", "", "optional YAML config file")
		addr          = flag.String("addr", addrDefault, "HTTP listen address; overrides config when set")
		dataPath      = flag.String("data", dataDefault, "CSV file of vessel records to ingest at boot")
		trials        = flag.Int("trials", trialsDefault, "Monte Carlo trials per forecast; overrides config when set")
		enableAdmin   = flag.Bool("enable-admin", false, "enable admin endpoints like pprof")
	)
	flag.Parse()

	logger := slog.Default()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataPath != "" {
		cfg.Data.CSVPath = *dataPath
	}
	if *trials > 0 {
		cfg.Forecast.Trials = *trials
	}
	if *enableAdmin {
		cfg.Server.EnableAdmin = true
	}

	registry := fleet.New().WithLogger(logger)
	if cfg.Data.CSVPath != "" {
		records, err := ingest.LoadCSV(cfg.Data.CSVPath, cfg.Data.Vessels, logger)
		if err != nil {
			logger.Error("failed to ingest data", "path", cfg.Data.CSVPath, "err", err)
			os.Exit(1)
		}
		applied := registry.UpdateFromRecords(records)
		logger.Info("fleet loaded", "vessels", registry.Len(), "records", applied)
	}

	sim := forecast.NewSimulator(cfg.Region.Navigator(), forecast.AnalyticDrift{}).WithLogger(logger)

	srv := server.NewServer(registry, sim, cfg.Forecast.Options()).WithLogger(logger)
	if cfg.Server.EnableAdmin {
		srv = srv.WithAdminEnabled()
	}

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Routes()}

	errs := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "admin_enabled", cfg.Server.EnableAdmin)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-signals:
		logger.Info("shutting down server")
	case err := <-errs:
		logger.Error("server stopped unexpectedly", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func envString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
