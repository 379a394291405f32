//go:build rp2040 || rp2350

package platform

import (
	"context"
	"errors"
	"image/color"
	"machine"
	"sync"

	"tinygo.org/x/drivers/bme280"
	"tinygo.org/x/drivers/ssd1306"

	"weatherstation-go/services/button"
	"weatherstation-go/services/config"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/types"
)

// Open configures I2C0 and the LED/button pins. The sensor and the panel are
// only probed later, by the sampler and the renderer.
func Open(cfg config.Config) (*Board, error) {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		SDA:       machine.Pin(cfg.I2CSDAPin),
		SCL:       machine.Pin(cfg.I2CSCLPin),
		Frequency: cfg.I2CFreqHz,
	}); err != nil {
		return nil, err
	}

	b := &Board{Name: BoardName}

	sensor := bme280.New(bus)
	sensor.Address = cfg.BME280Addr
	sensor.Configure()
	b.Sensor = &bmeSensor{dev: &sensor}

	b.Display = &oledDisplay{bus: bus, cfg: ssd1306.Config{
		Address:  cfg.DisplayAddr,
		Width:    cfg.DisplayWidth,
		Height:   cfg.DisplayHeight,
		VccState: ssd1306.SWITCHCAPVCC,
	}}

	if cfg.LEDPin >= 0 {
		led := machine.Pin(cfg.LEDPin)
		led.Configure(machine.PinConfig{Mode: machine.PinOutput})
		led.Low()
		b.LED = pinLED{led}
	}

	if cfg.ButtonPin >= 0 {
		p := machine.Pin(cfg.ButtonPin)
		mode := machine.PinInputPulldown
		if cfg.ButtonActiveLow {
			mode = machine.PinInputPullup
		}
		p.Configure(machine.PinConfig{Mode: mode})
		in, err := button.NewPinInput(irqPin{p}, cfg.ButtonActiveLow)
		if err != nil {
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
	dev *bme280.Device
}

func (s *bmeSensor) Read(ctx context.Context) (types.Sample, error) {
	if err := ctx.Err(); err != nil {
		return types.Sample{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dev.Connected() {
		return types.Sample{}, errors.New("bme280: not connected")
	}
	t, err := s.dev.ReadTemperature() // milli-°C
	if err != nil {
		return types.Sample{}, err
	}
	p, err := s.dev.ReadPressure() // milli-Pa
	if err != nil {
		return types.Sample{}, err
	}
	h, err := s.dev.ReadHumidity() // hundredths of %RH
	if err != nil {
		return types.Sample{}, err
	}
	return types.Sample{
		Temperature: float32(t) / 1000,
		Humidity:    float32(h) / 100,
		Pressure:    float32(p) / 100000,
	}, nil
}

func (s *bmeSensor) Identify() string {
	if s.dev.Connected() {
		return "bme280 (chip id 0x60)"
	}
	return "bme280 (not responding)"
}

// ---- SSD1306 ----

var on = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type oledDisplay struct {
	bus *machine.I2C
	cfg ssd1306.Config
	dev *ssd1306.Device
}

// Initialize probes the panel with a NOP command before configuring it, so
// a missing panel fails here rather than on the first frame.
func (d *oledDisplay) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.bus.Tx(d.cfg.Address, []byte{0x00, 0xE3}, nil); err != nil {
		return err
	}
	d.dev = ssd1306.NewI2C(d.bus)
	d.dev.Configure(d.cfg)
	d.dev.ClearDisplay()
	return nil
}

func (d *oledDisplay) Draw(ctx context.Context, buf *dashboard.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.dev == nil {
		return errors.New("ssd1306: not initialised")
	}
	w, h := buf.Size()
	d.dev.ClearBuffer()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			if buf.Get(x, y) {
				d.dev.SetPixel(x, y, on)
			}
		}
	}
	return d.dev.Display()
}

// ---- GPIO ----

type pinLED struct{ p machine.Pin }

func (l pinLED) Set(level types.Level) { l.p.Set(bool(level)) }

// irqPin routes pin-change interrupts on both edges to the button input.
type irqPin struct{ p machine.Pin }

func (i irqPin) Get() bool { return i.p.Get() }

func (i irqPin) SetIRQ(handler func()) error {
	return i.p.SetInterrupt(machine.PinRising|machine.PinFalling, func(machine.Pin) { handler() })
}

func (i irqPin) ClearIRQ() error { return i.p.SetInterrupt(0, nil) }
