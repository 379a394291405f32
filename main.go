package main

import (
	"weatherstation-go/internal/app"
	"weatherstation-go/internal/logging"
	"weatherstation-go/internal/platform"
	"weatherstation-go/services/config"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	settle()

	cfg, cfgErr := config.Load(platform.BoardName)
	log := logging.New(cfg)
	log.Info("boot", "board", platform.BoardName)
	if cfgErr != nil {
		log.Warn("using default configuration", "err", cfgErr)
	}

	board, err := platform.Open(cfg)
	if err != nil {
		log.Error("board bring-up failed", "err", err)
		halt()
		return
	}

	ctx, stop := rootContext()
	err = app.Run(ctx, cfg, board, log)
	stop()
	if cerr := board.Close(); cerr != nil {
		log.Warn("board close", "err", cerr)
	}
	if err != nil {
		halt()
	}
}
