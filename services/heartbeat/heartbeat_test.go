package heartbeat

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"weatherstation-go/types"
)

type event struct {
	level types.Level
	hold  time.Duration // zero for the final Set on return
}

// scope records every Set and the hold that followed it.
type scope struct{ events []event }

func (s *scope) Set(l types.Level) { s.events = append(s.events, event{level: l}) }

func (s *scope) wait(budget int) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		s.events[len(s.events)-1].hold = d
		if budget--; budget < 0 {
			return context.Canceled
		}
		return nil
	}
}

func TestPlaysDefaultWaveform(t *testing.T) {
	sc := &scope{}
	// Two full loops, then cancel on the first step of the third.
	svc := New(sc, slog.New(slog.NewTextHandler(io.Discard, nil)), WithWait(sc.wait(8)))

	if err := svc.Run(context.Background()); err != context.Canceled {
		t.Fatalf("Run err = %v", err)
	}

	ms := time.Millisecond
	want := []event{
		{types.High, 100 * ms}, {types.Low, 100 * ms}, {types.High, 100 * ms}, {types.Low, 700 * ms},
		{types.High, 100 * ms}, {types.Low, 100 * ms}, {types.High, 100 * ms}, {types.Low, 700 * ms},
		{types.High, 100 * ms},
		{types.Low, 0},
	}
	if len(sc.events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(sc.events), len(want), sc.events)
	}
	for i := range want {
		if sc.events[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, sc.events[i], want[i])
		}
	}
	if svc.Period() != time.Second {
		t.Fatalf("period = %v", svc.Period())
	}
}

func TestCustomPattern(t *testing.T) {
	sc := &scope{}
	p := []types.Step{{Level: types.High, Hold: time.Second}}
	svc := New(sc, nil, WithPattern(p), WithWait(sc.wait(2)))
	p[0].Hold = time.Hour // caller's slice is copied

	_ = svc.Run(context.Background())
	for _, e := range sc.events[:3] {
		if e.level != types.High || e.hold != time.Second {
			t.Fatalf("event = %+v", e)
		}
	}
}

func TestRealTimerStopsOnCancel(t *testing.T) {
	sc := &scope{}
	svc := New(sc, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := svc.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Run err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Run did not stop promptly")
	}
	if len(sc.events) < 2 || sc.events[0].level != types.High || sc.events[1].level != types.Low {
		t.Fatalf("events = %+v", sc.events)
	}
}
