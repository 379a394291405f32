//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"weatherstation-go/types"
)

// FakePin is an in-memory GPIO line. It serves as the host LED and button
// and as a test double for the pin adapters.
type FakePin struct {
	mu      sync.Mutex
	number  int
	level   bool
	irqFunc func()
	edges   int
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

// Set drives the line. The IRQ handler runs on every change of level.
func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	changed := p.level != level
	p.level = level
	irq := p.irqFunc
	if changed {
		p.edges++
	}
	p.mu.Unlock()
	if changed && irq != nil {
		irq()
	}
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

// Edges counts level changes since creation.
func (p *FakePin) Edges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}

func (p *FakePin) SetIRQ(handler func()) error {
	p.mu.Lock()
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error { return p.SetIRQ(nil) }

// Bounce chatters n times around the current level and settles at final.
func (p *FakePin) Bounce(final bool, n int) {
	for i := 0; i < n; i++ {
		p.Set((i%2 == 0) == final)
	}
	p.Set(final)
}

// pinLED drives a FakePin from the heartbeat.
type pinLED struct{ p *FakePin }

func (l pinLED) Set(level types.Level) { l.p.Set(bool(level)) }
