package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Info("BOOKING", "hidden")
	l.Warn("BOOKING", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[BOOKING] shown")
}

func TestHelpersTagLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.LogDatabase("INSERT", "bookings", "ok")
	l.LogAPI("GET", "/health", 200, time.Millisecond)
	l.LogAPI("POST", "/events/1/book", 409, time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "[DATABASE] INSERT bookings: ok")
	assert.Contains(t, out, "[API] GET /health 200")
	assert.Contains(t, out, "WARN")
}

func TestNilAndNopAreSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Error("X", "y") })
	assert.NotPanics(t, func() { Nop().Error("X", "y") })
}
