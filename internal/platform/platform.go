// Package platform binds the pipeline to hardware. Exactly one Open is
// compiled in, chosen by build tags:
//
//	default       simulated sensor, terminal display, fake pins
//	periph,linux  BME280 + SSD1306 over /dev/i2c, GPIO via periph.io
//	rp2040/rp2350 TinyGo drivers on I2C0 and machine pins
package platform

import (
	"errors"

	"weatherstation-go/services/button"
	"weatherstation-go/services/display"
	"weatherstation-go/services/heartbeat"
	"weatherstation-go/services/sampler"
)

// Board is everything the pipeline needs from the hardware.
type Board struct {
	Name    string
	Sensor  sampler.Sensor
	Display display.Display
	LED     heartbeat.Output
	Button  button.Input

	// WallClock is set when the host keeps real time, so the clock may be
	// anchored at the current time if no boot epoch was linked in.
	WallClock bool

	closers []func() error
}

func (b *Board) onClose(fn func() error) { b.closers = append(b.closers, fn) }

// Close releases the hardware in reverse order of acquisition.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
