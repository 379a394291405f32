//go:build !rp2040 && !rp2350

package logging

import (
	"log/slog"
	"os"

	"weatherstation-go/internal/buildinfo"
	"weatherstation-go/services/config"
)

func New(cfg config.Config) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, buildinfo.Version)
}
