//go:build periph && linux && !rp2040 && !rp2350

package platform

import (
	"context"
	"errors"
	"image"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"weatherstation-go/services/button"
	"weatherstation-go/services/config"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/types"
)

const BoardName = "linux"

// Open claims the I2C bus and GPIO lines named by cfg. A missing BME280 is
// fatal; the display is only probed when the renderer initialises it.
func Open(cfg config.Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, err
	}
	b := &Board{Name: BoardName, WallClock: true}
	b.onClose(bus.Close)

	dev, err := bmxx80.NewI2C(bus, cfg.BME280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.onClose(dev.Halt)
	b.Sensor = &bmeSensor{dev: dev}

	b.Display = &oledDisplay{bus: bus, opts: ssd1306.Opts{W: int(cfg.DisplayWidth), H: int(cfg.DisplayHeight)}}

	if cfg.LEDPin >= 0 {
		p := gpioreg.ByName("GPIO" + strconv.Itoa(cfg.LEDPin))
		if p == nil {
			_ = b.Close()
			return nil, errors.New("led pin not found")
		}
		if err := p.Out(gpio.Low); err != nil {
			_ = b.Close()
			return nil, err
		}
		b.LED = gpioLED{p}
		b.onClose(p.Halt)
	}

	if cfg.ButtonPin >= 0 {
		p := gpioreg.ByName("GPIO" + strconv.Itoa(cfg.ButtonPin))
		if p == nil {
			_ = b.Close()
			return nil, errors.New("button pin not found")
		}
		pull := gpio.PullDown
		if cfg.ButtonActiveLow {
			pull = gpio.PullUp
		}
		if err := p.In(pull, gpio.BothEdges); err != nil {
			_ = b.Close()
			return nil, err
		}
		in, err := button.NewPinInput(&edgePin{p: p}, cfg.ButtonActiveLow)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Button = in
		b.onClose(in.Close)
	}
	return b, nil
}

// ---- BME280 ----

type bmeSensor struct {
	mu  sync.Mutex
	dev *bmxx80.Dev
}

func (s *bmeSensor) Read(ctx context.Context) (types.Sample, error) {
	if err := ctx.Err(); err != nil {
		return types.Sample{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return types.Sample{}, err
	}
	return types.Sample{
		Temperature: float32(env.Temperature.Celsius()),
		Humidity:    float32(float64(env.Humidity) / float64(physic.PercentRH)),
		Pressure:    float32(float64(env.Pressure) / float64(100*physic.Pascal)),
	}, nil
}

func (s *bmeSensor) Identify() string { return s.dev.String() }

// ---- SSD1306 ----

type oledDisplay struct {
	bus  i2c.Bus
	opts ssd1306.Opts
	dev  *ssd1306.Dev
}

func (d *oledDisplay) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dev, err := ssd1306.NewI2C(d.bus, &d.opts)
	if err != nil {
		return err
	}
	d.dev = dev
	return nil
}

func (d *oledDisplay) Draw(ctx context.Context, buf *dashboard.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.dev == nil {
		return errors.New("ssd1306: not initialised")
	}
	return d.dev.Draw(d.dev.Bounds(), buf, image.Point{})
}

// ---- GPIO ----

type gpioLED struct{ p gpio.PinIO }

func (l gpioLED) Set(level types.Level) { _ = l.p.Out(gpio.Level(level)) }

// edgePin adapts periph's blocking WaitForEdge to the callback style the
// button input expects.
type edgePin struct {
	p    gpio.PinIO
	stop chan struct{}
	done chan struct{}
}

const edgePoll = 100 * time.Millisecond

func (e *edgePin) Get() bool { return e.p.Read() == gpio.High }

func (e *edgePin) SetIRQ(handler func()) error {
	if e.stop != nil {
		return errors.New("edge handler already installed")
	}
	e.stop, e.done = make(chan struct{}), make(chan struct{})
	go func() {
		defer close(e.done)
		for {
			select {
			case <-e.stop:
				return
			default:
			}
			if e.p.WaitForEdge(edgePoll) {
				handler()
			}
		}
	}()
	return nil
}

func (e *edgePin) ClearIRQ() error {
	if e.stop == nil {
		return nil
	}
	close(e.stop)
	<-e.done
	e.stop = nil
	return e.p.In(gpio.Float, gpio.NoEdge)
}
