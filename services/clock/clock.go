// Package clock derives wall-clock time on a board without an RTC: the Unix
// time stamped into the image at build time plus the monotonic time elapsed
// since start, shifted to a fixed UTC offset.
package clock

import (
	"math"
	"time"

	"weatherstation-go/errcode"
	"weatherstation-go/internal/buildinfo"
)

// Errors returned by the clock.
const (
	// ErrOutOfRange: the instant cannot be represented.
	ErrOutOfRange = errcode.OutOfRange
	// ErrInvalidOffset: the offset is unusable, or shifting by it leaves the
	// representable range.
	ErrInvalidOffset = errcode.InvalidOffset
)

// MaxOffsetHours bounds the fixed offset, as the usual calendar libraries do.
const MaxOffsetHours = 25

// Representable instants: years -9999 through 9999.
var (
	minUnix = time.Date(-9999, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxUnix = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// Monotonic reports time elapsed since the clock was created.
type Monotonic func() time.Duration

// Clock is immutable after construction and safe to copy between goroutines.
type Clock struct {
	bootEpoch   uint64
	offsetHours int
	loc         *time.Location
	elapsed     Monotonic
}

type Option func(*Clock)

// WithMonotonic replaces the elapsed-time source (tests, or a board timer).
func WithMonotonic(m Monotonic) Option {
	return func(c *Clock) {
		if m != nil {
			c.elapsed = m
		}
	}
}

// New creates a clock anchored at bootEpoch (Unix seconds) with a fixed
// offset of offsetHours from UTC.
func New(bootEpoch uint64, offsetHours int, opts ...Option) (Clock, error) {
	if offsetHours < -MaxOffsetHours || offsetHours > MaxOffsetHours {
		return Clock{}, &errcode.E{C: ErrInvalidOffset, Op: "clock.new", Msg: "offset must be within ±25h"}
	}
	start := time.Now()
	c := Clock{
		bootEpoch:   bootEpoch,
		offsetHours: offsetHours,
		loc:         time.FixedZone(zoneName(offsetHours), offsetHours*3600),
		elapsed:     func() time.Duration { return time.Since(start) },
	}
	for _, o := range opts {
		o(&c)
	}
	return c, nil
}

// FromBuild creates a clock anchored at the epoch stamped in at link time.
func FromBuild(offsetHours int, opts ...Option) (Clock, error) {
	boot, err := buildinfo.BootEpochSeconds()
	if err != nil {
		return Clock{}, errcode.Wrap(errcode.InvalidParams, "clock.from_build", err)
	}
	return New(boot, offsetHours, opts...)
}

// Now returns the current local time.
func (c Clock) Now() (time.Time, error) {
	now := c.NowAsUnixTimestamp()
	if now > math.MaxInt64 || int64(now) > maxUnix {
		return time.Time{}, errcode.Wrap(ErrOutOfRange, "clock.now", nil)
	}
	secs := int64(now)
	local := secs + int64(c.offsetHours)*3600
	if local < minUnix || local > maxUnix {
		return time.Time{}, errcode.Wrap(ErrInvalidOffset, "clock.now", nil)
	}
	return time.Unix(secs, 0).In(c.loc), nil
}

// NowAsUnixTimestamp returns boot epoch + whole seconds elapsed, with no
// offset or range check. It never goes below the boot epoch.
func (c Clock) NowAsUnixTimestamp() uint64 {
	d := c.elapsed()
	if d < 0 {
		d = 0
	}
	el := uint64(d / time.Second)
	if c.bootEpoch > math.MaxUint64-el {
		return math.MaxUint64
	}
	return c.bootEpoch + el
}

func (c Clock) BootEpoch() uint64        { return c.bootEpoch }
func (c Clock) OffsetHours() int         { return c.offsetHours }
func (c Clock) Location() *time.Location { return c.loc }

func zoneName(h int) string {
	if h == 0 {
		return "UTC"
	}
	sign := "+"
	if h < 0 {
		sign = "-"
		h = -h
	}
	s := "UTC" + sign
	if h >= 10 {
		s += string(rune('0' + h/10))
	}
	return s + string(rune('0'+h%10))
}
