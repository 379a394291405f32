//go:build rp2040 || rp2350

package logging

import (
	"io"
	"log/slog"
	"machine"
	"os"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"weatherstation-go/services/config"
)

// New logs as plain text to USB CDC and, when log_uart_baud is set, to UART0
// as well. Colour and JSON are skipped on the MCU.
func New(cfg config.Config) *slog.Logger {
	var w io.Writer = os.Stdout
	if cfg.LogUARTBaud > 0 {
		u := uartx.UART0
		if err := u.Configure(uartx.UARTConfig{
			BaudRate: cfg.LogUARTBaud,
			TX:       machine.UART0_TX_PIN,
			RX:       machine.UART0_RX_PIN,
		}); err == nil {
			w = io.MultiWriter(os.Stdout, u)
		}
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("board", cfg.Board)
}
