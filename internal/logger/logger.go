// Package logger provides a small leveled logger that prefixes every line
// with a level and a subsystem tag, e.g.
//
//	2026-01-02 15:04:05 INFO  [BOOKING] admitted booking 3f2c... quantity=2
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var levelNames = map[Level]string{
	LevelDebug: color.New(color.FgHiBlack).Sprint("DEBUG"),
	LevelInfo:  color.New(color.FgGreen).Sprint("INFO "),
	LevelWarn:  color.New(color.FgYellow).Sprint("WARN "),
	LevelError: color.New(color.FgRed, color.Bold).Sprint("ERROR"),
}

var tagColor = color.New(color.FgCyan).SprintFunc()

// Logger writes tagged lines at or above its minimum level.
type Logger struct {
	out   *log.Logger
	level Level
}

// New returns a Logger writing to w.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: log.New(w, "", 0), level: level}
}

// Default logs to stdout at the level named by s.
func Default(s string) *Logger {
	return New(os.Stdout, ParseLevel(s))
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return New(io.Discard, LevelError+1)
}

func (l *Logger) write(level Level, tag, msg string) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf("%s %s [%s] %s",
		time.Now().Format("2006-01-02 15:04:05"), levelNames[level], tagColor(tag), msg)
}

func (l *Logger) Debug(tag, msg string) { l.write(LevelDebug, tag, msg) }
func (l *Logger) Info(tag, msg string)  { l.write(LevelInfo, tag, msg) }
func (l *Logger) Warn(tag, msg string)  { l.write(LevelWarn, tag, msg) }
func (l *Logger) Error(tag, msg string) { l.write(LevelError, tag, msg) }

// Fatal logs at error level and exits the process.
func (l *Logger) Fatal(tag, msg string) {
	l.write(LevelError, tag, msg)
	os.Exit(1)
}

// LogDatabase records a storage operation against a table.
func (l *Logger) LogDatabase(op, table, msg string) {
	l.Info("DATABASE", fmt.Sprintf("%s %s: %s", op, table, msg))
}

// LogBooking records an admission or cancellation outcome.
func (l *Logger) LogBooking(op, id, msg string) {
	l.Info("BOOKING", fmt.Sprintf("%s %s: %s", op, id, msg))
}

// LogPublish records a domain event handed to a broker.
func (l *Logger) LogPublish(op, destination, msg string) {
	l.Info("EVENTS", fmt.Sprintf("%s %s: %s", op, destination, msg))
}

// LogAPI records one served HTTP request.
func (l *Logger) LogAPI(method, path string, status int, d time.Duration) {
	level := LevelInfo
	if status >= 500 {
		level = LevelError
	} else if status >= 400 {
		level = LevelWarn
	}
	l.write(level, "API", fmt.Sprintf("%s %s %d %s", method, path, status, d.Round(time.Microsecond)))
}
