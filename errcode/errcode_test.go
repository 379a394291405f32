package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("i2c nack")
	for _, c := range []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{OutOfRange, OutOfRange},
		{Wrap(DisplayDraw, "display.draw", cause), DisplayDraw},
		{cause, Error},
	} {
		if got := Of(c.err); got != c.want {
			t.Fatalf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestWrapIsAndUnwrap(t *testing.T) {
	cause := errors.New("busy line stuck")
	err := fmt.Errorf("render: %w", Wrap(DisplayInit, "display.init", cause))

	if !errors.Is(err, DisplayInit) {
		t.Fatal("errors.Is did not match the wrapped code")
	}
	if errors.Is(err, DisplayDraw) {
		t.Fatal("errors.Is matched an unrelated code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if got, want := Wrap(OutOfRange, "clock.now", nil).Error(), "clock.now: out_of_range"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
