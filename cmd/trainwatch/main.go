// cmd/trainwatch/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tamzrod/trainwatch/internal/config"
	"github.com/tamzrod/trainwatch/internal/server"
	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/watcher"
	"github.com/tamzrod/trainwatch/internal/writer"
)

func main() {
	dotEnvErr := loadDotEnv()

	logLevel := parseLogLevel(envOrDefault("TRAINWATCH_LOG_LEVEL", "info"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if dotEnvErr != nil {
		logger.Warn("ignoring unreadable .env", "error", dotEnvErr)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfgPath := envOrDefault("TRAINWATCH_CONFIG", "")
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			fatal(logger, "config load failed", err)
		}
		cfg = loaded
	}

	cfg.Watcher.UserAgent = envOrDefault("TRAINWATCH_USER_AGENT", cfg.Watcher.UserAgent)
	cfg.Server.Listen = envOrDefault("TRAINWATCH_LISTEN", cfg.Server.Listen)

	if err := config.Validate(&cfg); err != nil {
		fatal(logger, "config validation failed", err)
	}
	config.Normalize(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Sinks
	// --------------------

	var hub *server.Hub
	if cfg.Server.Listen != "" {
		hub = server.NewHub(logger)
	}

	var statusMemory *writer.Publisher

	callback := func(s status.Status, err error) {
		if err != nil {
			logger.Warn("cycle failed; previous status retained", "train", s.Train, "error", err)
		} else {
			for _, d := range s.Diffs {
				logger.Info("service changed",
					"service", d.Name,
					"train", d.Current.Train,
					"patch", d.Current.Patch,
				)
			}
			logger.Info("train status",
				"train", s.Train,
				"diffs", len(s.Diffs),
				"patches", len(s.Patches),
			)
		}

		if hub != nil {
			hub.Publish(s, err)
		}
		if statusMemory != nil {
			statusMemory.Publish(s, err)
		}
	}

	// --------------------
	// Watcher
	// --------------------

	opts := cfg.Watcher.Options()
	opts.Logger = logger

	w, err := watcher.New(callback, opts)
	if err != nil {
		fatal(logger, "watcher build failed", err)
	}

	if cfg.StatusMemory.Enabled() {
		sw, closeWriter, err := writer.Build(cfg.StatusMemory)
		if err != nil {
			logger.Warn("status memory disabled", "endpoint", cfg.StatusMemory.Endpoint, "error", err)
		} else {
			defer closeWriter()
			statusMemory = writer.NewPublisher(sw, w.Status(), logger)
			logger.Info("status memory enabled",
				"transport", cfg.StatusMemory.Transport,
				"endpoint", cfg.StatusMemory.Endpoint,
				"baseSlot", cfg.StatusMemory.BaseSlot,
			)
		}
	}

	cancel := w.Start()
	defer cancel()

	// --------------------
	// HTTP API
	// --------------------

	srvErr := make(chan error, 1)
	if cfg.Server.Listen != "" {
		srv := server.New(w, hub, logger)
		go func() { srvErr <- srv.ListenAndServe(ctx, cfg.Server.Listen) }()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-srvErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	cancel()
	stop()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return slog.LevelError
	case "warn":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		// slog has no trace level; map to debug.
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
