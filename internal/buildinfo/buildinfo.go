// Package buildinfo holds values stamped into the binary at link time:
//
//	go build -ldflags "-X weatherstation-go/internal/buildinfo.BootEpoch=$(date +%s)"
//	tinygo flash -target=pico -ldflags "-X weatherstation-go/internal/buildinfo.BootEpoch=$(date +%s)" .
package buildinfo

import (
	"errors"
	"strconv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// BootEpoch is the Unix time (seconds) the image was built. The board has no RTC,
// so this is the wall-clock anchor for everything it timestamps.
var BootEpoch = ""

var ErrNoBootEpoch = errors.New("buildinfo: boot epoch not set")

// BootEpochSeconds parses BootEpoch.
func BootEpochSeconds() (uint64, error) {
	if BootEpoch == "" {
		return 0, ErrNoBootEpoch
	}
	return strconv.ParseUint(BootEpoch, 10, 64)
}

// Short returns a compact build identifier for logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}
