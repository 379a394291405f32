package sampler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"weatherstation-go/types"
	"weatherstation-go/x/spsc"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSensor struct {
	sample types.Sample
	err    error
	reads  int
}

func (f *fakeSensor) Read(context.Context) (types.Sample, error) {
	f.reads++
	return f.sample, f.err
}

type fakeClock struct {
	t   time.Time
	err error
}

func (f fakeClock) Now() (time.Time, error) { return f.t, f.err }

// recordingWait logs every delay and stops the loop after `periods` period waits.
type recordingWait struct {
	mu      sync.Mutex
	period  time.Duration
	periods int
	calls   []time.Duration
}

func (w *recordingWait) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, d)
	if d == w.period {
		w.periods--
		if w.periods < 0 {
			return context.Canceled
		}
	}
	return nil
}

type sinkFunc func(ctx context.Context, r types.Reading) error

func (f sinkFunc) Send(ctx context.Context, r types.Reading) error { return f(ctx, r) }

func drain(q *spsc.Queue[types.Reading]) []types.Reading {
	var out []types.Reading
	for {
		r, ok, _ := q.TryReceive()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

func TestFailingSensorStillProducesOneReadingPerPeriod(t *testing.T) {
	const cycles = 5
	q := spsc.New[types.Reading](16)
	w := &recordingWait{period: time.Minute, periods: cycles - 1}
	sensor := &fakeSensor{err: errors.New("i2c nack")}
	clk := fakeClock{t: time.Unix(1_729_036_800, 0)}

	s := New(Config{Warmup: 10 * time.Millisecond, Period: time.Minute}, sensor, clk, q, quiet,
		WithWait(w.wait), WithGenerator(NewGenerator(rand.NewPCG(1, 2))))

	if err := s.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}

	got := drain(q)
	if len(got) != cycles {
		t.Fatalf("got %d readings, want %d", len(got), cycles)
	}
	for i, r := range got {
		if !r.Time.Equal(types.Sentinel) {
			t.Fatalf("reading %d: time %v, want sentinel", i, r.Time)
		}
		if !InRange(r.Sample) {
			t.Fatalf("reading %d: synthetic sample out of range: %+v", i, r.Sample)
		}
	}
	if sensor.reads != cycles {
		t.Fatalf("sensor read %d times, want %d", sensor.reads, cycles)
	}

	want := []time.Duration{10 * time.Millisecond, time.Minute, time.Minute, time.Minute, time.Minute, time.Minute}
	if len(w.calls) != len(want) {
		t.Fatalf("waits = %v, want %v", w.calls, want)
	}
	for i := range want {
		if w.calls[i] != want[i] {
			t.Fatalf("waits = %v, want %v", w.calls, want)
		}
	}

	st := s.Stats()
	if st.Cycles != cycles || st.Fallbacks != cycles || st.Sent != cycles || st.SendErrors != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestHealthyCycleStampsReading(t *testing.T) {
	q := spsc.New[types.Reading](4)
	w := &recordingWait{period: time.Second, periods: 0}
	want := types.Sample{Temperature: 21.5, Humidity: 40, Pressure: 1003.2}
	now := time.Date(2024, 10, 16, 13, 0, 0, 0, time.FixedZone("UTC+13", 13*3600))

	s := New(Config{Period: time.Second}, &fakeSensor{sample: want}, fakeClock{t: now}, q, quiet, WithWait(w.wait))
	_ = s.Run(context.Background())

	got := drain(q)
	if len(got) != 1 {
		t.Fatalf("got %d readings, want 1", len(got))
	}
	if got[0].Sample != want || !got[0].Time.Equal(now) {
		t.Fatalf("reading = %+v", got[0])
	}
	if !got[0].HasTime() {
		t.Fatal("HasTime = false for a stamped reading")
	}
}

func TestClockFailureFallsBack(t *testing.T) {
	q := spsc.New[types.Reading](4)
	w := &recordingWait{period: time.Second, periods: 1}
	measured := types.Sample{Temperature: -40, Humidity: 0, Pressure: 300}

	s := New(Config{Period: time.Second}, &fakeSensor{sample: measured},
		fakeClock{err: errors.New("out_of_range")}, q, quiet, WithWait(w.wait))
	_ = s.Run(context.Background())

	got := drain(q)
	if len(got) != 2 {
		t.Fatalf("got %d readings, want 2", len(got))
	}
	for _, r := range got {
		if r.HasTime() {
			t.Fatalf("expected sentinel time, got %v", r.Time)
		}
		if r.Sample == measured || !InRange(r.Sample) {
			t.Fatalf("expected a synthetic sample, got %+v", r.Sample)
		}
	}
}

func TestSendFailureDoesNotStopLoop(t *testing.T) {
	w := &recordingWait{period: time.Second, periods: 3}
	attempts := 0
	sink := sinkFunc(func(context.Context, types.Reading) error {
		attempts++
		return spsc.ErrClosed
	})

	s := New(Config{Period: time.Second}, nil, fakeClock{t: time.Unix(0, 0)}, sink, quiet, WithWait(w.wait))
	if err := s.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
	if attempts != 4 {
		t.Fatalf("send attempts = %d, want 4", attempts)
	}
	if st := s.Stats(); st.SendErrors != 4 || st.Sent != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestBackpressureSuspendsProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := spsc.New[types.Reading](3)
	s := New(Config{Warmup: 0, Period: time.Millisecond}, nil, fakeClock{t: time.Unix(1, 0)}, q, quiet)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(40 * time.Millisecond)
	if q.Len() != 3 {
		t.Fatalf("queue len = %d, want 3", q.Len())
	}
	if st := s.Stats(); st.Sent != 3 || st.Cycles != 4 {
		t.Fatalf("stats while blocked = %+v, want 3 sent and a 4th cycle waiting", st)
	}

	if _, err := q.Receive(ctx); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(200 * time.Millisecond)
	for s.Stats().Sent < 4 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Stats().Sent < 4 {
		t.Fatal("producer did not resume after space was freed")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Run did not return after cancel")
	}
}

func TestGeneratorRanges(t *testing.T) {
	g := NewGenerator(rand.NewPCG(7, 11))
	for i := 0; i < 10_000; i++ {
		if s := g.Sample(); !InRange(s) {
			t.Fatalf("sample %d out of range: %+v", i, s)
		}
	}
	if InRange(types.Sample{Temperature: 31, Humidity: 50, Pressure: 1000}) {
		t.Fatal("InRange accepted 31 °C")
	}
}
