package dashboard

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// Default panel geometry (SSD1306 128x64).
const (
	Width  = 128
	Height = 64
)

// Buffer is a 1-bit off-screen frame. It is a drivers.Displayer, so tinyfont
// and tinydraw can paint on it, and an image.Image, so periph drivers can
// blit it.
type Buffer struct {
	w, h int16
	bits []byte // row-major, 1 bit per pixel, MSB first
}

var (
	_ drivers.Displayer = (*Buffer)(nil)
	_ image.Image       = (*Buffer)(nil)
)

func NewBuffer(w, h int16) *Buffer {
	if w <= 0 || h <= 0 {
		w, h = Width, Height
	}
	return &Buffer{w: w, h: h, bits: make([]byte, (int(w)*int(h)+7)/8)}
}

func (b *Buffer) Size() (x, y int16) { return b.w, b.h }

// SetPixel lights the pixel for any non-black colour. Out-of-bounds writes are ignored.
func (b *Buffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	i := int(y)*int(b.w) + int(x)
	if c.R|c.G|c.B != 0 {
		b.bits[i/8] |= 0x80 >> (i % 8)
	} else {
		b.bits[i/8] &^= 0x80 >> (i % 8)
	}
}

// Display is a no-op; a Buffer is never shown by itself.
func (b *Buffer) Display() error { return nil }

// Get reports whether the pixel is lit.
func (b *Buffer) Get(x, y int16) bool {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return false
	}
	i := int(y)*int(b.w) + int(x)
	return b.bits[i/8]&(0x80>>(i%8)) != 0
}

func (b *Buffer) Clear() {
	for i := range b.bits {
		b.bits[i] = 0
	}
}

// Lit counts lit pixels.
func (b *Buffer) Lit() int {
	n := 0
	for _, v := range b.bits {
		for ; v != 0; v &= v - 1 {
			n++
		}
	}
	return n
}

// image.Image

func (b *Buffer) ColorModel() color.Model { return color.GrayModel }
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, int(b.w), int(b.h)) }

func (b *Buffer) At(x, y int) color.Color {
	if b.Get(int16(x), int16(y)) {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{}
}
