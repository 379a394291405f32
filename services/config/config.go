// Package config holds the build-time configuration of the station. Values
// start from compiled defaults and are overlaid with the JSON document
// embedded for the board being built.
package config

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"weatherstation-go/errcode"
	"weatherstation-go/types"
)

const ErrInvalid = errcode.InvalidParams

//go:embed boards/*.json
var boards embed.FS

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, err := boards.ReadFile("boards/" + board + ".json")
	return b, err == nil
}

// Step is one heartbeat segment as written in the board file.
type Step struct {
	High bool `json:"high"`
	Ms   int  `json:"ms"`
}

type Config struct {
	Board string `json:"-"`

	LogLevel       string `json:"log_level"`
	UTCOffsetHours int    `json:"utc_offset_hours"`

	WarmupMs       int    `json:"warmup_ms"`
	SamplePeriodMs int    `json:"sample_period_ms"`
	QueueCapacity  int    `json:"queue_capacity"`
	DebounceMs     int    `json:"debounce_ms"`
	Heartbeat      []Step `json:"heartbeat"`

	I2CBus    string `json:"i2c_bus"` // periph bus name; "" picks the first
	I2CFreqHz uint32 `json:"i2c_freq_hz"`
	I2CSDAPin int    `json:"i2c_sda_pin"`
	I2CSCLPin int    `json:"i2c_scl_pin"`

	BME280Addr    uint16 `json:"bme280_addr"`
	DisplayAddr   uint16 `json:"display_addr"`
	DisplayWidth  int16  `json:"display_width"`
	DisplayHeight int16  `json:"display_height"`

	LEDPin          int  `json:"led_pin"`
	ButtonPin       int  `json:"button_pin"`
	ButtonActiveLow bool `json:"button_active_low"`

	LogUARTBaud uint32 `json:"log_uart_baud"` // 0 disables the UART log sink
}

func Default() Config {
	return Config{
		LogLevel:       "info",
		UTCOffsetHours: 13,
		WarmupMs:       10,
		SamplePeriodMs: 60_000,
		QueueCapacity:  3,
		DebounceMs:     250,
		Heartbeat: []Step{
			{High: true, Ms: 100},
			{High: false, Ms: 100},
			{High: true, Ms: 100},
			{High: false, Ms: 700},
		},
		I2CFreqHz:     100_000,
		BME280Addr:    0x76,
		DisplayAddr:   0x3C,
		DisplayWidth:  128,
		DisplayHeight: 64,
		LEDPin:        -1,
		ButtonPin:     -1,
	}
}

// Load returns the configuration for board. If the board has no embedded
// document the defaults are returned together with the error.
func Load(board string) (Config, error) {
	c := Default()
	c.Board = board

	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return c, &errcode.E{C: errcode.Unsupported, Op: "config.load", Msg: "no embedded config for board " + board}
	}
	if err := c.merge(raw); err != nil {
		return Default(), err
	}
	return c, nil
}

// merge overlays raw onto c and validates the result. Keys absent from raw
// keep their current value.
func (c *Config) merge(raw []byte) error {
	next := *c
	next.Heartbeat = nil
	if err := json.Unmarshal(raw, &next); err != nil {
		return errcode.Wrap(ErrInvalid, "config.decode", err)
	}
	if next.Heartbeat == nil {
		next.Heartbeat = c.Heartbeat
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func invalid(field, msg string) error {
	return &errcode.E{C: ErrInvalid, Op: "config.validate", Msg: field + ": " + msg}
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.UTCOffsetHours < -25 || c.UTCOffsetHours > 25 {
		return invalid("utc_offset_hours", "outside -25..25")
	}
	if c.WarmupMs < 0 {
		return invalid("warmup_ms", "negative")
	}
	if c.SamplePeriodMs <= 0 {
		return invalid("sample_period_ms", "must be positive")
	}
	if c.QueueCapacity < 1 {
		return invalid("queue_capacity", "must be at least 1")
	}
	if c.DebounceMs <= 0 {
		return invalid("debounce_ms", "must be positive")
	}
	if len(c.Heartbeat) == 0 {
		return invalid("heartbeat", "empty pattern")
	}
	total := 0
	for i, s := range c.Heartbeat {
		if s.Ms < 0 {
			return invalid("heartbeat["+strconv.Itoa(i)+"].ms", "negative")
		}
		total += s.Ms
	}
	if total == 0 {
		return invalid("heartbeat", "pattern has zero length")
	}
	if c.BME280Addr > 0x7F || c.DisplayAddr > 0x7F {
		return invalid("i2c address", "not a 7-bit address")
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return invalid("display size", "must be positive")
	}
	return nil
}

func (c Config) Warmup() time.Duration   { return time.Duration(c.WarmupMs) * time.Millisecond }
func (c Config) Period() time.Duration   { return time.Duration(c.SamplePeriodMs) * time.Millisecond }
func (c Config) Debounce() time.Duration { return time.Duration(c.DebounceMs) * time.Millisecond }

// Pattern converts the heartbeat steps for the heartbeat service.
func (c Config) Pattern() []types.Step {
	out := make([]types.Step, len(c.Heartbeat))
	for i, s := range c.Heartbeat {
		out[i] = types.Step{Level: types.Level(s.High), Hold: time.Duration(s.Ms) * time.Millisecond}
	}
	return out
}

// ParseLevel accepts debug, info, warn and error (any case).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, invalid("log_level", "unknown level "+strconv.Quote(s))
}
