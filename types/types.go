package types

import "time"

// ---- Environmental telemetry ----

// Sample is one set of environmental measurements.
type Sample struct {
	Temperature float32 `json:"temperature_c"` // °C
	Humidity    float32 `json:"humidity_pct"`  // %RH
	Pressure    float32 `json:"pressure_hpa"`  // hPa
}

// Reading is a Sample stamped with the local wall-clock time it was taken.
// Ownership moves sampler -> queue -> renderer; nothing keeps a copy.
type Reading struct {
	Time   time.Time `json:"time"`
	Sample Sample    `json:"sample"`
}

// Sentinel is the timestamp used when the real time could not be determined.
var Sentinel = time.Unix(0, 0).UTC()

// HasTime reports whether the reading carries a real timestamp.
func (r Reading) HasTime() bool { return !r.Time.Equal(Sentinel) }

// ---- Digital IO ----

// Level is a digital pin level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Step is one segment of an output waveform.
type Step struct {
	Level Level         `json:"level"`
	Hold  time.Duration `json:"hold"`
}
