//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"
)

func settle() { time.Sleep(2 * time.Second) }

// The firmware never shuts down.
func rootContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// halt parks the board so the last log lines stay readable on the console.
func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
