// cmd/boardtest/main.go
//
// boardtest checks each capability of a freshly assembled station once and
// prints a PASS/FAIL line per item. The LED then shows the verdict: two short
// flashes for pass, one long flash for fail.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"weatherstation-go/internal/logging"
	"weatherstation-go/internal/platform"
	"weatherstation-go/services/clock"
	"weatherstation-go/services/config"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/services/heartbeat"
	"weatherstation-go/types"
	"weatherstation-go/x/mathx"
)

// ---------- Configuration ----------

const (
	usbSettle      = 2 * time.Second
	sensorTimeout  = time.Second
	displayTimeout = 2 * time.Second
)

var buttonWindow = 5 * time.Second

// Datasheet operating ranges of the BME280.
var (
	tempRange  = [2]float32{-40, 85}
	humidRange = [2]float32{0, 100}
	pressRange = [2]float32{300, 1100}
)

type check struct {
	name string
	err  error
	skip bool
	note string
}

// ---------- Checks ----------

func checkSensor(ctx context.Context, b *platform.Board) (check, types.Sample) {
	c := check{name: "sensor"}
	if b.Sensor == nil {
		c.skip, c.note = true, "not fitted"
		return c, types.Sample{}
	}
	ctx, cancel := context.WithTimeout(ctx, sensorTimeout)
	defer cancel()
	s, err := b.Sensor.Read(ctx)
	if err != nil {
		c.err = err
		return c, s
	}
	if !mathx.Between(s.Temperature, tempRange[0], tempRange[1]) ||
		!mathx.Between(s.Humidity, humidRange[0], humidRange[1]) ||
		!mathx.Between(s.Pressure, pressRange[0], pressRange[1]) {
		c.err = fmt.Errorf("implausible reading %+v", s)
		return c, s
	}
	c.note = fmt.Sprintf("%.2f C  %.2f %%  %.2f hPa", s.Temperature, s.Humidity, s.Pressure)
	return c, s
}

func checkClock(cfg config.Config, b *platform.Board) (check, time.Time) {
	c := check{name: "clock"}
	clk, err := clock.FromBuild(cfg.UTCOffsetHours)
	if err != nil && b.WallClock {
		clk, err = clock.New(uint64(time.Now().Unix()), cfg.UTCOffsetHours)
		c.note = "system time; "
	}
	if err != nil {
		c.err = err
		return c, types.Sentinel
	}
	now, err := clk.Now()
	if err != nil {
		c.err = err
		return c, types.Sentinel
	}
	c.note += now.Format(time.RFC1123Z)
	return c, now
}

func checkDisplay(ctx context.Context, cfg config.Config, b *platform.Board, r types.Reading) check {
	c := check{name: "display"}
	if b.Display == nil {
		c.skip, c.note = true, "not fitted"
		return c
	}
	ctx, cancel := context.WithTimeout(ctx, displayTimeout)
	defer cancel()
	if err := b.Display.Initialize(ctx); err != nil {
		c.err = err
		return c
	}
	buf, err := dashboard.New(cfg.DisplayWidth, cfg.DisplayHeight).Layout(r)
	if err != nil {
		c.err = err
		return c
	}
	c.err = b.Display.Draw(ctx, buf)
	return c
}

func checkLED(ctx context.Context, cfg config.Config, b *platform.Board) check {
	c := check{name: "led"}
	if b.LED == nil {
		c.skip, c.note = true, "not fitted"
		return c
	}
	hb := heartbeat.New(b.LED, nil, heartbeat.WithPattern(cfg.Pattern()))
	ctx, cancel := context.WithTimeout(ctx, hb.Period())
	defer cancel()
	_ = hb.Run(ctx)
	c.note = "played one heartbeat; check by eye"
	return c
}

func checkButton(ctx context.Context, b *platform.Board, o io.Writer) check {
	c := check{name: "button"}
	if b.Button == nil {
		c.skip, c.note = true, "not fitted"
		return c
	}
	fmt.Fprintf(o, "press the button within %v\n", buttonWindow)
	ctx, cancel := context.WithTimeout(ctx, buttonWindow)
	defer cancel()
	if err := b.Button.WaitForHigh(ctx); err != nil {
		c.skip, c.note = true, "no press seen"
		return c
	}
	c.note = "press seen"
	return c
}

// ---------- Verdict ----------

func flashVerdict(led heartbeat.Output, pass bool) {
	if led == nil {
		return
	}
	if pass {
		// Double short
		for i := 0; i < 2; i++ {
			led.Set(types.High)
			time.Sleep(120 * time.Millisecond)
			led.Set(types.Low)
			time.Sleep(200 * time.Millisecond)
		}
		return
	}
	// Single long
	led.Set(types.High)
	time.Sleep(400 * time.Millisecond)
	led.Set(types.Low)
}

func report(o io.Writer, checks []check) bool {
	pass := true
	for _, c := range checks {
		switch {
		case c.err != nil:
			pass = false
			fmt.Fprintf(o, "[FAIL] %-8s %v\n", c.name, c.err)
		case c.skip:
			fmt.Fprintf(o, "[SKIP] %-8s %s\n", c.name, c.note)
		default:
			fmt.Fprintf(o, "[PASS] %-8s %s\n", c.name, c.note)
		}
	}
	return pass
}

func run(ctx context.Context, cfg config.Config, b *platform.Board, o io.Writer) bool {
	fmt.Fprintf(o, "=== boardtest: %s ===\n", b.Name)

	clk, now := checkClock(cfg, b)
	sen, s := checkSensor(ctx, b)
	checks := []check{
		clk,
		sen,
		checkDisplay(ctx, cfg, b, types.Reading{Time: now, Sample: s}),
		checkLED(ctx, cfg, b),
		checkButton(ctx, b, o),
	}
	pass := report(o, checks)
	flashVerdict(b.LED, pass)
	return pass
}

// ---------- Main ----------

func main() {
	time.Sleep(usbSettle)

	cfg, err := config.Load(platform.BoardName)
	log := logging.New(cfg)
	if err != nil {
		log.Warn("using default configuration", "err", err)
	}
	b, err := platform.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stdout, "[FAIL] open     %v\n", err)
		return
	}
	defer b.Close()

	if run(context.Background(), cfg, b, os.Stdout) {
		fmt.Fprintln(os.Stdout, "boardtest: all checks passed")
	} else {
		fmt.Fprintln(os.Stdout, "boardtest: failures above")
	}
}
