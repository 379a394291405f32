// Package button turns a bouncy push-button into one event per press.
//
// The debouncer waits for the line to go high and ignores it for a hold
// period. It then waits for the line to go low, holds again so release bounce
// settles, and reports the press once the line is confirmed low. Contact
// bounce inside either hold is never observed.
package button

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"weatherstation-go/x/timex"
)

const DefaultHold = 250 * time.Millisecond

// Input is a digital line that can be awaited at a level. Both methods return
// immediately if the line is already at the requested level.
type Input interface {
	WaitForHigh(ctx context.Context) error
	WaitForLow(ctx context.Context) error
}

type State uint32

const (
	Idle State = iota
	PressDetected
	Settling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PressDetected:
		return "press_detected"
	case Settling:
		return "settling"
	default:
		return "unknown"
	}
}

// Press is delivered to the OnPress hook.
type Press struct {
	Seq uint32
	At  time.Time
}

type Debouncer struct {
	in      Input
	hold    time.Duration
	wait    timex.WaitFunc
	onPress func(Press)
	log     *slog.Logger

	state   atomic.Uint32
	presses atomic.Uint32
}

type Option func(*Debouncer)

func WithHold(d time.Duration) Option {
	return func(b *Debouncer) {
		if d > 0 {
			b.hold = d
		}
	}
}

// WithWait replaces the hold delay.
func WithWait(w timex.WaitFunc) Option {
	return func(b *Debouncer) {
		if w != nil {
			b.wait = w
		}
	}
}

// OnPress registers a hook called from the debouncer goroutine for every press.
// It must not block.
func OnPress(fn func(Press)) Option {
	return func(b *Debouncer) { b.onPress = fn }
}

func New(in Input, log *slog.Logger, opts ...Option) *Debouncer {
	if log == nil {
		log = slog.Default()
	}
	b := &Debouncer{in: in, hold: DefaultHold, wait: timex.Sleep, log: log}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Run blocks until ctx is done or the input fails.
func (b *Debouncer) Run(ctx context.Context) error {
	for {
		b.state.Store(uint32(Idle))
		if err := b.in.WaitForHigh(ctx); err != nil {
			return err
		}

		b.state.Store(uint32(PressDetected))
		if err := b.wait(ctx, b.hold); err != nil {
			return err
		}

		b.state.Store(uint32(Settling))
		if err := b.in.WaitForLow(ctx); err != nil {
			return err
		}
		if err := b.wait(ctx, b.hold); err != nil {
			return err
		}
		// Release bounce may have left the line high again.
		if err := b.in.WaitForLow(ctx); err != nil {
			return err
		}
		b.report()
	}
}

// coalescer is implemented by inputs that count edges merged into one wake-up.
type coalescer interface{ Coalesced() uint32 }

func (b *Debouncer) report() {
	p := Press{Seq: b.presses.Add(1), At: time.Now()}
	if c, ok := b.in.(coalescer); ok {
		b.log.Info("button pressed", "seq", p.Seq, "coalesced_edges", c.Coalesced())
	} else {
		b.log.Info("button pressed", "seq", p.Seq)
	}
	if b.onPress != nil {
		b.onPress(p)
	}
}

func (b *Debouncer) State() State    { return State(b.state.Load()) }
func (b *Debouncer) Presses() uint32 { return b.presses.Load() }
