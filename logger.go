package quadfilter

import (
	"log/slog"

	"github.com/esimov/quadfilter/device"
)

// SetLogger configures the logger of the package and of the device runtime.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels in use:
//   - [slog.LevelDebug]: texture traffic and per dispatch timings
//   - [slog.LevelInfo]: GPU context creation and release
//   - [slog.LevelWarn]: fallback to the software device
func SetLogger(l *slog.Logger) {
	device.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return device.Logger()
}
