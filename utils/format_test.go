package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Duration(t *testing.T) {
	assert.Equal(t, "1.50ms", FormatDuration(1500*time.Microsecond))
	assert.Equal(t, "0.00ms", FormatDuration(0))
	assert.Equal(t, "2.50s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "1m 30.00s", FormatDuration(90*time.Second))
	assert.Equal(t, "1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
}

func TestFormat_DecorateText(t *testing.T) {
	defer func(c bool) { Colorize = c }(Colorize)

	Colorize = false
	assert.Equal(t, "done", DecorateText("done", SuccessMessage))

	Colorize = true
	s := DecorateText("done", ErrorMessage)
	assert.True(t, strings.HasPrefix(s, ErrorColor))
	assert.True(t, strings.HasSuffix(s, DefaultColor))
}

func TestMath_MinMaxAbs(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, 2.5, Max(2.5, -1))
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, float32(0.5), Abs(float32(-0.5)))
}
