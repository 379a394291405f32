//go:build !rp2040 && !rp2350 && !periph

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"weatherstation-go/internal/platform"
	"weatherstation-go/services/config"
	"weatherstation-go/types"
)

type brokenSensor struct{}

func (brokenSensor) Read(context.Context) (types.Sample, error) {
	return types.Sample{}, errors.New("i2c nack")
}

func simBoard(t *testing.T) *platform.Board {
	t.Helper()
	b, err := platform.OpenSim(config.Default(), nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSimBoardPasses(t *testing.T) {
	old := buttonWindow
	buttonWindow = 10 * time.Millisecond
	t.Cleanup(func() { buttonWindow = old })

	cfg := config.Default()
	cfg.Heartbeat = []config.Step{{High: true, Ms: 5}, {High: false, Ms: 5}}

	var out bytes.Buffer
	if !run(context.Background(), cfg, simBoard(t), &out) {
		t.Fatalf("run failed:\n%s", out.String())
	}
	for _, want := range []string{"[PASS] sensor", "[PASS] clock", "[PASS] display", "[PASS] led", "[SKIP] button"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, out.String())
		}
	}
}

func TestBrokenSensorFails(t *testing.T) {
	old := buttonWindow
	buttonWindow = time.Millisecond
	t.Cleanup(func() { buttonWindow = old })

	cfg := config.Default()
	cfg.Heartbeat = []config.Step{{High: true, Ms: 1}}
	b := simBoard(t)
	b.Sensor = brokenSensor{}

	var out bytes.Buffer
	if run(context.Background(), cfg, b, &out) {
		t.Fatalf("run passed with a broken sensor:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[FAIL] sensor   i2c nack") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}
