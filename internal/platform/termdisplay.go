//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"weatherstation-go/services/dashboard"
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("239")).
	Foreground(lipgloss.Color("214"))

var captionStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")).
	Padding(0, 1)

// TermDisplay mirrors the OLED on a terminal, two pixel rows per text row.
type TermDisplay struct {
	mu     sync.Mutex
	out    io.Writer
	w, h   int16
	ready  bool
	frames int
}

func NewTermDisplay(out io.Writer, w, h int16) *TermDisplay {
	if w <= 0 || h <= 0 {
		w, h = dashboard.Width, dashboard.Height
	}
	return &TermDisplay{out: out, w: w, h: h}
}

func (d *TermDisplay) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.out == nil {
		return errors.New("terminal display: no output")
	}
	d.mu.Lock()
	d.ready = true
	d.mu.Unlock()
	return nil
}

func (d *TermDisplay) Draw(ctx context.Context, buf *dashboard.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return errors.New("terminal display: not initialised")
	}
	bw, bh := buf.Size()
	if bw != d.w || bh != d.h {
		return errors.New("terminal display: frame size mismatch")
	}
	d.frames++
	frame := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(Render(buf)),
		captionStyle.Render("oled "+strconv.Itoa(int(d.w))+"x"+strconv.Itoa(int(d.h))+"  frame "+strconv.Itoa(d.frames)),
	)
	_, err := io.WriteString(d.out, frame+"\n")
	return err
}

// Frames is the number of frames drawn.
func (d *TermDisplay) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Render draws buf with half-block characters.
func Render(buf *dashboard.Buffer) string {
	w, h := buf.Size()
	var sb strings.Builder
	for y := int16(0); y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := int16(0); x < w; x++ {
			top, bot := buf.Get(x, y), buf.Get(x, y+1)
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}
