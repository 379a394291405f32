// Package dashboard lays a Reading out as a 1-bit frame: one text line per
// quantity, each with a bar showing where the value sits in its usual range.
package dashboard

import (
	"image/color"
	"math"
	"strconv"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"weatherstation-go/errcode"
	"weatherstation-go/types"
	"weatherstation-go/x/mathx"
)

// ErrDashboard is returned when a reading cannot be laid out.
const ErrDashboard = errcode.Dashboard

// Bar ranges (wider than the synthetic ranges; these are what a room sees).
var (
	tempRange  = [2]float32{-10, 40}
	humidRange = [2]float32{0, 100}
	pressRange = [2]float32{950, 1050}
)

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

const (
	lineHeight = 15
	barWidth   = 30
	barHeight  = 6
)

// Dashboard renders readings onto fresh Buffers.
type Dashboard struct {
	font   tinyfont.Fonter
	width  int16
	height int16
}

func New(width, height int16) *Dashboard {
	if width <= 0 || height <= 0 {
		width, height = Width, Height
	}
	return &Dashboard{font: &proggy.TinySZ8pt7b, width: width, height: height}
}

// Layout draws r on a new Buffer.
func (d *Dashboard) Layout(r types.Reading) (*Buffer, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}
	if len(lines)*lineHeight > int(d.height) {
		return nil, &errcode.E{C: ErrDashboard, Op: "dashboard.layout", Msg: "panel too short"}
	}

	buf := NewBuffer(d.width, d.height)
	textMax := d.width - barWidth - 4
	for i, s := range lines {
		_, w := tinyfont.LineWidth(d.font, s)
		if int(w) > int(textMax) {
			return nil, &errcode.E{C: ErrDashboard, Op: "dashboard.layout", Msg: "line too wide: " + s}
		}
		y := int16((i + 1) * lineHeight)
		tinyfont.WriteLine(buf, d.font, 0, y-3, s, white)
	}

	s := r.Sample
	d.bar(buf, 1, mathx.Frac(s.Temperature, tempRange[0], tempRange[1]))
	d.bar(buf, 2, mathx.Frac(s.Humidity, humidRange[0], humidRange[1]))
	d.bar(buf, 3, mathx.Frac(s.Pressure, pressRange[0], pressRange[1]))
	return buf, nil
}

// bar draws an outlined bar on text line `line`, filled to frac.
func (d *Dashboard) bar(buf *Buffer, line int, frac float32) {
	x0 := d.width - barWidth
	y0 := int16(line*lineHeight + (lineHeight-barHeight)/2)
	fill := int16(mathx.Clamp(frac*float32(barWidth-2)+0.5, 0, barWidth-2))

	for x := int16(0); x < barWidth; x++ {
		buf.SetPixel(x0+x, y0, white)
		buf.SetPixel(x0+x, y0+barHeight-1, white)
	}
	for y := int16(0); y < barHeight; y++ {
		buf.SetPixel(x0, y0+y, white)
		buf.SetPixel(x0+barWidth-1, y0+y, white)
	}
	for x := int16(1); x <= fill; x++ {
		for y := int16(1); y < barHeight-1; y++ {
			buf.SetPixel(x0+x, y0+y, white)
		}
	}
}

// Lines is the text content of the dashboard for r.
func Lines(r types.Reading) ([]string, error) {
	s := r.Sample
	for _, v := range []float32{s.Temperature, s.Humidity, s.Pressure} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, &errcode.E{C: ErrDashboard, Op: "dashboard.lines", Msg: "value is not finite"}
		}
	}

	stamp := "--- --:--"
	if r.HasTime() {
		stamp = r.Time.Format("Jan02 15:04")
	}
	return []string{
		stamp,
		"T " + ftoa(s.Temperature, 1) + " C",
		"H " + ftoa(s.Humidity, 1) + " %",
		"P " + ftoa(s.Pressure, 1) + " hPa",
	}, nil
}

func ftoa(v float32, prec int) string {
	return strconv.FormatFloat(float64(v), 'f', prec, 32)
}
