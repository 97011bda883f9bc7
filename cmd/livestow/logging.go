package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/livestow/config"
)

func setupLogging(cfg config.LogConfig) {
	logger := slog.New(newLogHandler(os.Stdout, cfg, os.Getenv("LIVESTOW_ENV")))
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(
		slog.NewLogLogger(
			slog.Default().Handler(),
			slog.LevelInfo,
		).Writer(),
	)
}

// newLogHandler picks JSON output for production and tint otherwise. An
// explicit log format wins over the environment.
func newLogHandler(w io.Writer, cfg config.LogConfig, env string) slog.Handler {
	jsonOutput := env == "prod" || env == "production"
	switch cfg.Format {
	case "json":
		jsonOutput = true
	case "text":
		jsonOutput = false
	}

	level := parseLevel(cfg.Level)

	if jsonOutput {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  true,
		TimeFormat: "15:04:05.000",
	})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
