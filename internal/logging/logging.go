// Package logging builds the station's root slog.Logger. Every service gets
// a child with its own "svc" attribute.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"weatherstation-go/internal/buildinfo"
	"weatherstation-go/services/config"
)

const appName = "weatherstation"

// NewWithWriter writes to w: coloured text for dev builds, JSON otherwise.
func NewWithWriter(w io.Writer, cfg config.Config, version string) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName, "board", cfg.Board)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"commit", buildinfo.Commit,
		"board", cfg.Board,
	)
}

// For returns the logger a service should use.
func For(root *slog.Logger, svc string) *slog.Logger {
	if root == nil {
		root = slog.Default()
	}
	return root.With("svc", svc)
}
