package quadfilter

import (
	"fmt"
	"time"

	"github.com/esimov/quadfilter/utils"
)

// Labels of the three execution strategies, as they appear in the reports.
const (
	LabelCPU              = "CPU"
	LabelHostToHost       = "OpenGL host-to-host"
	LabelTextureToTexture = "OpenGL texture-to-texture"
)

// Timer measures the wall-clock time of a named operation.
type Timer struct {
	label string
	start time.Time
}

// StartTimer starts a new measurement.
func StartTimer(label string) Timer {
	return Timer{label: label, start: time.Now()}
}

// Elapsed returns the time passed since the timer was started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Report returns a short description of the elapsed time, e.g. "CPU: 12.34ms".
func (t Timer) Report() string {
	return fmt.Sprintf("%s: %s", t.label, utils.FormatDuration(t.Elapsed()))
}
