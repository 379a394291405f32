// Package heartbeat blinks a status LED with a fixed double-pulse waveform so
// a glance at the board shows the firmware is alive.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"weatherstation-go/types"
	"weatherstation-go/x/timex"
)

// Output is a digital line the heartbeat drives.
type Output interface {
	Set(level types.Level)
}

// DefaultPattern: two short flashes, then a long gap. One loop takes 1 s.
var DefaultPattern = []types.Step{
	{Level: types.High, Hold: 100 * time.Millisecond},
	{Level: types.Low, Hold: 100 * time.Millisecond},
	{Level: types.High, Hold: 100 * time.Millisecond},
	{Level: types.Low, Hold: 700 * time.Millisecond},
}

type Service struct {
	out     Output
	pattern []types.Step
	wait    timex.WaitFunc
	log     *slog.Logger
}

type Option func(*Service)

// WithPattern replaces the waveform. An empty pattern keeps the default.
func WithPattern(p []types.Step) Option {
	return func(s *Service) {
		if len(p) > 0 {
			s.pattern = append([]types.Step(nil), p...)
		}
	}
}

func WithWait(w timex.WaitFunc) Option {
	return func(s *Service) {
		if w != nil {
			s.wait = w
		}
	}
}

func New(out Output, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{out: out, pattern: DefaultPattern, wait: timex.Sleep, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run plays the pattern until ctx is done. The line is left low on return.
func (s *Service) Run(ctx context.Context) error {
	defer s.out.Set(types.Low)
	for {
		s.log.Debug("blinking")
		for _, st := range s.pattern {
			s.out.Set(st.Level)
			if err := s.wait(ctx, st.Hold); err != nil {
				return err
			}
		}
	}
}

// Period is the length of one loop of the pattern.
func (s *Service) Period() time.Duration {
	var d time.Duration
	for _, st := range s.pattern {
		d += st.Hold
	}
	return d
}
