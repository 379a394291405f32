//go:build !rp2040 && !rp2350 && !periph

package platform

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"weatherstation-go/services/button"
	"weatherstation-go/services/config"
	"weatherstation-go/services/sampler"
	"weatherstation-go/types"
)

const BoardName = "host"

// Host pin numbers when the board file leaves them unset.
const (
	hostLEDPin    = 25
	hostButtonPin = 15
)

// Open builds a simulated board. Each line read from stdin presses the
// button once, with contact bounce.
func Open(cfg config.Config) (*Board, error) {
	return OpenSim(cfg, os.Stdin, os.Stdout)
}

// OpenSim is Open with explicit terminal streams. A nil in disables the
// button feed.
func OpenSim(cfg config.Config, in io.Reader, out io.Writer) (*Board, error) {
	ledN, btnN := cfg.LEDPin, cfg.ButtonPin
	if ledN < 0 {
		ledN = hostLEDPin
	}
	if btnN < 0 {
		btnN = hostButtonPin
	}
	led := NewFakePin(ledN)
	btnPin := NewFakePin(btnN)
	btn, err := button.NewPinInput(btnPin, false)
	if err != nil {
		return nil, err
	}

	b := &Board{
		Name:      BoardName,
		Sensor:    newSimSensor(sampler.NewGenerator(nil)),
		Display:   NewTermDisplay(out, cfg.DisplayWidth, cfg.DisplayHeight),
		LED:       pinLED{led},
		Button:    btn,
		WallClock: true,
	}
	b.onClose(btn.Close)

	if in != nil {
		// The feeder stays blocked on in until the next line; cancel only
		// stops it from pressing again.
		ctx, cancel := context.WithCancel(context.Background())
		go feedPresses(ctx, in, btnPin)
		b.onClose(func() error { cancel(); return nil })
	}
	return b, nil
}

// feedPresses turns each input line into a bouncy press and release.
func feedPresses(ctx context.Context, in io.Reader, pin *FakePin) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		pin.Bounce(true, 6)
		time.Sleep(300 * time.Millisecond)
		pin.Bounce(false, 4)
	}
}

// simSensor drifts towards fresh random targets so consecutive readings look
// like a slowly changing room.
type simSensor struct {
	mu   sync.Mutex
	gen  *sampler.Generator
	last types.Sample
	warm bool
}

const driftRate = 0.2

func newSimSensor(g *sampler.Generator) *simSensor { return &simSensor{gen: g} }

func (s *simSensor) Read(ctx context.Context) (types.Sample, error) {
	if err := ctx.Err(); err != nil {
		return types.Sample{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.gen.Sample()
	if !s.warm {
		s.last, s.warm = target, true
		return s.last, nil
	}
	s.last = types.Sample{
		Temperature: s.last.Temperature + (target.Temperature-s.last.Temperature)*driftRate,
		Humidity:    s.last.Humidity + (target.Humidity-s.last.Humidity)*driftRate,
		Pressure:    s.last.Pressure + (target.Pressure-s.last.Pressure)*driftRate,
	}
	return s.last, nil
}

func (s *simSensor) Identify() string { return "simulated bme280" }
