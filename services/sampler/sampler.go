// Package sampler runs the periodic producer of the telemetry pipeline.
//
// After a warm-up delay it loops forever: take a Sample, stamp it with the
// clock, hand the Reading to the queue (waiting while the queue is full), then
// sleep one period. Sensor and clock failures never stop the loop; the cycle
// substitutes a fallback Reading (sentinel time, synthetic sample) instead.
package sampler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"weatherstation-go/errcode"
	"weatherstation-go/types"
	"weatherstation-go/x/timex"
)

// Errors logged by the sampler. They never leave the task.
const (
	ErrSample = errcode.SampleFailed
	ErrSend   = errcode.SendFailed
)

// A short settle time, then one reading a minute.
const (
	DefaultWarmup = 10 * time.Millisecond
	DefaultPeriod = 60 * time.Second
)

// Sensor is a physical transducer or a stand-in. Read must return promptly.
type Sensor interface {
	Read(ctx context.Context) (types.Sample, error)
}

// Clock supplies the timestamp for each reading.
type Clock interface {
	Now() (time.Time, error)
}

// Sink receives readings; Send blocks while the sink is full.
type Sink interface {
	Send(ctx context.Context, r types.Reading) error
}

type Config struct {
	Warmup time.Duration
	Period time.Duration
}

// Stats counts what the loop has done since start.
type Stats struct {
	Cycles     uint32
	Fallbacks  uint32
	Sent       uint32
	SendErrors uint32
}

type Sampler struct {
	cfg    Config
	sensor Sensor
	clock  Clock
	sink   Sink
	gen    *Generator
	log    *slog.Logger
	wait   timex.WaitFunc

	cycles, fallbacks, sent, sendErrs atomic.Uint32
}

type Option func(*Sampler)

// WithWait replaces the delay function used for warm-up and period.
func WithWait(w timex.WaitFunc) Option {
	return func(s *Sampler) {
		if w != nil {
			s.wait = w
		}
	}
}

// WithGenerator sets the source of fallback samples.
func WithGenerator(g *Generator) Option {
	return func(s *Sampler) {
		if g != nil {
			s.gen = g
		}
	}
}

// New builds a sampler. A nil sensor samples the generator.
func New(cfg Config, sensor Sensor, clk Clock, sink Sink, log *slog.Logger, opts ...Option) *Sampler {
	if cfg.Warmup < 0 {
		cfg.Warmup = DefaultWarmup
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Sampler{
		cfg:   cfg,
		clock: clk,
		sink:  sink,
		log:   log,
		wait:  timex.Sleep,
	}
	for _, o := range opts {
		o(s)
	}
	if s.gen == nil {
		s.gen = NewGenerator(nil)
	}
	s.sensor = sensor
	if s.sensor == nil {
		s.sensor = s.gen
	}
	return s
}

// Run blocks until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	if id, ok := s.sensor.(interface{ Identify() string }); ok {
		s.log.Info("sensor ready", "sensor", id.Identify())
	}
	s.log.Info("waiting for sensor warm-up", "warmup", s.cfg.Warmup)
	if err := s.wait(ctx, s.cfg.Warmup); err != nil {
		return err
	}

	for {
		r := s.sample(ctx)
		s.cycles.Add(1)

		if err := s.sink.Send(ctx, r); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.sendErrs.Add(1)
			s.log.Error("sending measurement failed", "err", errcode.Wrap(ErrSend, "sampler.send", err))
		} else {
			s.sent.Add(1)
		}

		s.log.Debug("waiting for next sample", "period", s.cfg.Period)
		if err := s.wait(ctx, s.cfg.Period); err != nil {
			return err
		}
	}
}

func (s *Sampler) Stats() Stats {
	return Stats{
		Cycles:     s.cycles.Load(),
		Fallbacks:  s.fallbacks.Load(),
		Sent:       s.sent.Load(),
		SendErrors: s.sendErrs.Load(),
	}
}

// sample always yields a Reading: the measured one, or the fallback.
func (s *Sampler) sample(ctx context.Context) types.Reading {
	r, err := s.measure(ctx)
	if err == nil {
		return r
	}
	s.fallbacks.Add(1)
	s.log.Error("sensor measurement failed", "err", err)
	return types.Reading{Time: types.Sentinel, Sample: s.gen.Sample()}
}

func (s *Sampler) measure(ctx context.Context) (types.Reading, error) {
	smp, err := s.sensor.Read(ctx)
	if err != nil {
		return types.Reading{}, errcode.Wrap(ErrSample, "sampler.read", err)
	}
	now, err := s.clock.Now()
	if err != nil {
		return types.Reading{}, errcode.Wrap(ErrSample, "sampler.clock", err)
	}
	s.log.Debug("measured", "temperature_c", smp.Temperature, "humidity_pct", smp.Humidity, "pressure_hpa", smp.Pressure)
	return types.Reading{Time: now, Sample: smp}, nil
}
