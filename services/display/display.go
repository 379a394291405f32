// Package display is the consumer end of the pipeline: it takes readings off
// the queue, lays each one out and pushes the frame to the panel.
package display

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"weatherstation-go/errcode"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/types"
	"weatherstation-go/x/spsc"
)

const (
	ErrInit      = errcode.DisplayInit
	ErrDisplay   = errcode.DisplayDraw
	ErrDashboard = errcode.Dashboard
)

// Display is a panel that can show a dashboard frame.
type Display interface {
	Initialize(ctx context.Context) error
	Draw(ctx context.Context, buf *dashboard.Buffer) error
}

// Source yields readings in order, blocking while none are pending.
type Source interface {
	Receive(ctx context.Context) (types.Reading, error)
}

// LayoutFunc turns a reading into a frame.
type LayoutFunc func(types.Reading) (*dashboard.Buffer, error)

type Stats struct {
	Received     uint32
	Drawn        uint32
	LayoutErrors uint32
	DrawErrors   uint32
}

type Renderer struct {
	disp   Display
	src    Source
	layout LayoutFunc
	log    *slog.Logger

	received, drawn, layoutErrs, drawErrs atomic.Uint32
}

// New builds a renderer. A nil layout uses the default 128x64 dashboard.
func New(disp Display, src Source, layout LayoutFunc, log *slog.Logger) *Renderer {
	if layout == nil {
		layout = dashboard.New(dashboard.Width, dashboard.Height).Layout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{disp: disp, src: src, layout: layout, log: log}
}

// Run initialises the panel and then renders readings until the source is
// closed or ctx ends. A failed initialisation is returned before anything is
// taken from the source; per-reading failures are logged and skipped.
func (r *Renderer) Run(ctx context.Context) error {
	if err := r.disp.Initialize(ctx); err != nil {
		err = errcode.Wrap(ErrInit, "display.init", err)
		r.log.Error("display initialisation failed", "err", err)
		return err
	}
	r.log.Info("display ready")

	for {
		rd, err := r.src.Receive(ctx)
		if err != nil {
			if errors.Is(err, spsc.ErrClosed) {
				r.log.Warn("reading source closed")
			}
			return err
		}
		r.received.Add(1)
		r.render(ctx, rd)
	}
}

func (r *Renderer) render(ctx context.Context, rd types.Reading) {
	r.log.Info("reading",
		"taken_at", stamp(rd),
		"temperature_c", fixed2(rd.Sample.Temperature),
		"humidity_pct", fixed2(rd.Sample.Humidity),
		"pressure_hpa", fixed2(rd.Sample.Pressure),
	)

	buf, err := r.layout(rd)
	if err != nil {
		r.layoutErrs.Add(1)
		r.log.Error("dashboard layout failed", "err", errcode.Wrap(ErrDashboard, "display.layout", err))
		return
	}
	if err := r.disp.Draw(ctx, buf); err != nil {
		r.drawErrs.Add(1)
		r.log.Error("display draw failed", "err", errcode.Wrap(ErrDisplay, "display.draw", err))
		return
	}
	r.drawn.Add(1)
}

func (r *Renderer) Stats() Stats {
	return Stats{
		Received:     r.received.Load(),
		Drawn:        r.drawn.Load(),
		LayoutErrors: r.layoutErrs.Load(),
		DrawErrors:   r.drawErrs.Load(),
	}
}

func stamp(rd types.Reading) string {
	if !rd.HasTime() {
		return "unknown"
	}
	return rd.Time.Format("2006-01-02 15:04:05 -07:00")
}

func fixed2(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}
