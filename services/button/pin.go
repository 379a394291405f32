package button

import (
	"context"
	"sync/atomic"
)

// IRQPin is a GPIO input that can report edges through a callback. The
// callback may run in interrupt context.
type IRQPin interface {
	Get() bool
	SetIRQ(handler func()) error
	ClearIRQ() error
}

// PinInput adapts an IRQPin to Input. Every edge posts a wake-up on a 1-slot
// channel; waiters re-read the level, so coalesced or stale wake-ups are fine.
type PinInput struct {
	pin    IRQPin
	invert bool
	edges  chan struct{}
	drops  atomic.Uint32
}

// NewPinInput installs the edge handler. With invert set, a low line reads as
// high (active-low buttons).
func NewPinInput(pin IRQPin, invert bool) (*PinInput, error) {
	p := &PinInput{pin: pin, invert: invert, edges: make(chan struct{}, 1)}
	if err := pin.SetIRQ(p.edge); err != nil {
		return nil, err
	}
	return p, nil
}

// edge must not block.
func (p *PinInput) edge() {
	select {
	case p.edges <- struct{}{}:
	default:
		p.drops.Add(1)
	}
}

// Level is the logical level after inversion.
func (p *PinInput) Level() bool { return p.pin.Get() != p.invert }

func (p *PinInput) WaitForHigh(ctx context.Context) error { return p.waitFor(ctx, true) }
func (p *PinInput) WaitForLow(ctx context.Context) error  { return p.waitFor(ctx, false) }

func (p *PinInput) waitFor(ctx context.Context, level bool) error {
	for p.Level() != level {
		select {
		case <-p.edges:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Coalesced counts edges that arrived while a wake-up was already pending.
func (p *PinInput) Coalesced() uint32 { return p.drops.Load() }

func (p *PinInput) Close() error { return p.pin.ClearIRQ() }
