// Package app wires the station together: one clock, one bounded queue, and
// four concurrent tasks (sampler, renderer, heartbeat, button).
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"weatherstation-go/internal/buildinfo"
	"weatherstation-go/internal/logging"
	"weatherstation-go/internal/platform"
	"weatherstation-go/services/button"
	"weatherstation-go/services/clock"
	"weatherstation-go/services/config"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/services/display"
	"weatherstation-go/services/heartbeat"
	"weatherstation-go/services/sampler"
	"weatherstation-go/types"
	"weatherstation-go/x/spsc"
)

// Run starts every task and blocks until ctx is done. Only a clock that
// cannot be built is fatal; a renderer that stops is logged and the other
// tasks carry on.
func Run(ctx context.Context, cfg config.Config, b *platform.Board, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	clk, err := newClock(cfg, b, log)
	if err != nil {
		log.Error("clock unavailable", "err", err)
		return err
	}
	if now, err := clk.Now(); err != nil {
		log.Warn("clock cannot tell the time yet", "err", err)
	} else {
		log.Info("Now is", "time", now.Format(time.RFC1123Z), "zone", clk.Location().String())
	}

	q := spsc.New[types.Reading](cfg.QueueCapacity)

	smp := sampler.New(
		sampler.Config{Warmup: cfg.Warmup(), Period: cfg.Period()},
		b.Sensor, clk, q, logging.For(log, "sampler"),
	)
	rnd := display.New(b.Display, q,
		dashboard.New(cfg.DisplayWidth, cfg.DisplayHeight).Layout,
		logging.For(log, "display"),
	)

	var wg sync.WaitGroup
	spawn := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := run(ctx)
			switch {
			case err == nil, ctx.Err() != nil:
				log.Debug("task stopped", "task", name)
			default:
				log.Error("task stopped", "task", name, "err", err)
			}
		}()
	}

	log.Info("spawning tasks", "version", buildinfo.Short(), "queue_capacity", q.Cap())
	if b.LED != nil {
		hb := heartbeat.New(b.LED, logging.For(log, "heartbeat"), heartbeat.WithPattern(cfg.Pattern()))
		spawn("heartbeat", hb.Run)
	}
	spawn("sampler", smp.Run)
	if b.Display != nil {
		spawn("display", rnd.Run)
	} else {
		log.Warn("no display; readings will back up in the queue")
	}
	if b.Button != nil {
		btn := button.New(b.Button, logging.For(log, "button"), button.WithHold(cfg.Debounce()))
		spawn("button", btn.Run)
	}

	<-ctx.Done()
	q.Close()
	wg.Wait()
	log.Info("stopped", "sampler", smp.Stats(), "display", rnd.Stats())
	return nil
}

// newClock anchors at the linked-in boot epoch. Boards that keep real time
// may fall back to the current time when none was linked.
func newClock(cfg config.Config, b *platform.Board, log *slog.Logger) (clock.Clock, error) {
	c, err := clock.FromBuild(cfg.UTCOffsetHours)
	if err == nil || !b.WallClock || !errors.Is(err, buildinfo.ErrNoBootEpoch) {
		return c, err
	}
	log.Info("no boot epoch linked in; anchoring the clock at system time")
	return clock.New(uint64(time.Now().Unix()), cfg.UTCOffsetHours)
}
