//go:build !rp2040 && !rp2350 && !periph

package platform

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"weatherstation-go/services/config"
	"weatherstation-go/services/dashboard"
	"weatherstation-go/services/sampler"
	"weatherstation-go/types"
)

func TestFakePinIRQOnChangeOnly(t *testing.T) {
	p := NewFakePin(3)
	n := 0
	_ = p.SetIRQ(func() { n++ })
	p.Set(false) // no change
	p.Set(true)
	p.Set(true)
	p.Toggle()
	if n != 2 || p.Edges() != 2 {
		t.Fatalf("irq calls = %d, edges = %d", n, p.Edges())
	}
	p.Bounce(true, 5)
	if !p.Get() {
		t.Fatal("Bounce did not settle high")
	}
	_ = p.ClearIRQ()
	before := n
	p.Toggle()
	if n != before {
		t.Fatal("handler ran after ClearIRQ")
	}
}

func TestSimSensorDriftsWithinRange(t *testing.T) {
	s := newSimSensor(sampler.NewGenerator(nil))
	ctx := context.Background()
	prev, _ := s.Read(ctx)
	for i := 0; i < 200; i++ {
		cur, err := s.Read(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !sampler.InRange(cur) {
			t.Fatalf("sample out of range: %+v", cur)
		}
		if d := cur.Temperature - prev.Temperature; d > 3.01 || d < -3.01 {
			t.Fatalf("temperature jumped %v", d)
		}
		prev = cur
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Read(cctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestTermDisplay(t *testing.T) {
	var out bytes.Buffer
	d := NewTermDisplay(&out, 0, 0)
	ctx := context.Background()
	buf, err := dashboard.New(dashboard.Width, dashboard.Height).Layout(types.Reading{
		Time:   types.Sentinel,
		Sample: types.Sample{Temperature: 20, Humidity: 50, Pressure: 1000},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Draw(ctx, buf); err == nil {
		t.Fatal("Draw before Initialize succeeded")
	}
	if err := d.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(ctx, buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "╭") || !strings.Contains(out.String(), "frame 1") {
		t.Fatalf("unexpected frame:\n%s", out.String())
	}
	if err := d.Draw(ctx, dashboard.NewBuffer(10, 10)); err == nil {
		t.Fatal("size mismatch accepted")
	}
	if d.Frames() != 1 {
		t.Fatalf("frames = %d", d.Frames())
	}
	if err := NewTermDisplay(nil, 0, 0).Initialize(ctx); err == nil {
		t.Fatal("nil output accepted")
	}
}

func TestRenderHalfBlocks(t *testing.T) {
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	b := dashboard.NewBuffer(3, 2)
	b.SetPixel(0, 0, white)
	b.SetPixel(1, 1, white)
	b.SetPixel(2, 0, white)
	b.SetPixel(2, 1, white)
	if got := Render(b); got != "▀▄█" {
		t.Fatalf("Render = %q", got)
	}
}

func TestOpenSimButtonFeed(t *testing.T) {
	cfg := config.Default()
	b, err := OpenSim(cfg, strings.NewReader("\n"), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.Sensor == nil || b.Display == nil || b.LED == nil || b.Button == nil || !b.WallClock {
		t.Fatalf("incomplete board: %+v", b)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Button.WaitForHigh(ctx); err != nil {
		t.Fatalf("press never arrived: %v", err)
	}
	if err := b.Button.WaitForLow(ctx); err != nil {
		t.Fatalf("release never arrived: %v", err)
	}
}

func TestBoardCloseOrder(t *testing.T) {
	var order []int
	b := &Board{}
	b.onClose(func() error { order = append(order, 1); return nil })
	b.onClose(func() error { order = append(order, 2); return errors.New("busy") })
	if err := b.Close(); err == nil || err.Error() != "busy" {
		t.Fatalf("err = %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("order = %v", order)
	}
}
