//go:build rp2350

package platform

const BoardName = "pico2"
