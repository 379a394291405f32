package sampler

import (
	"context"
	"math/rand/v2"
	"time"

	"weatherstation-go/types"
	"weatherstation-go/x/mathx"
)

// Ranges of synthetic samples.
const (
	TempMinC    = 15.0
	TempMaxC    = 30.0
	HumidMinPct = 20.0
	HumidMaxPct = 80.0
	PressMinHPa = 990.0
	PressMaxHPa = 1010.0
)

// Generator produces plausible synthetic samples. It stands in for a sensor
// that is absent or failing. Not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator uses src, or a time-seeded PCG when src is nil.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>17|1)
	}
	return &Generator{rng: rand.New(src)}
}

// Sample draws a fresh sample uniformly within the fixed ranges.
func (g *Generator) Sample() types.Sample {
	return types.Sample{
		Temperature: mathx.Lerp[float32](TempMinC, TempMaxC, float32(g.rng.Float64())),
		Humidity:    mathx.Lerp[float32](HumidMinPct, HumidMaxPct, float32(g.rng.Float64())),
		Pressure:    mathx.Lerp[float32](PressMinHPa, PressMaxHPa, float32(g.rng.Float64())),
	}
}

// Read makes Generator a Sensor that never fails.
func (g *Generator) Read(context.Context) (types.Sample, error) { return g.Sample(), nil }

func (g *Generator) Identify() string { return "synthetic" }

// InRange reports whether s lies within the synthetic ranges.
func InRange(s types.Sample) bool {
	return mathx.Between[float32](s.Temperature, TempMinC, TempMaxC) &&
		mathx.Between[float32](s.Humidity, HumidMinPct, HumidMaxPct) &&
		mathx.Between[float32](s.Pressure, PressMinHPa, PressMaxHPa)
}
