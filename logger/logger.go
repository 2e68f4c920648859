// Package logger provides a level-filtered line logger that writes
// key=value fields.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lvillar/pdftrim"
)

// LogLevel represents different logging levels.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// AppLogger implements pdftrim.Logger.
type AppLogger struct {
	level  LogLevel
	logger *log.Logger
	now    func() time.Time
}

var _ pdftrim.Logger = (*AppLogger)(nil)

// New creates a logger writing to w at the named level. Unknown levels
// fall back to info.
func New(levelStr string, w io.Writer) *AppLogger {
	if w == nil {
		w = os.Stderr
	}
	return &AppLogger{
		level:  ParseLevel(levelStr),
		logger: log.New(w, "", 0),
		now:    time.Now,
	}
}

// Info logs an info message.
func (l *AppLogger) Info(msg string, fields ...any) {
	if l.level <= INFO {
		l.log("INFO", msg, fields...)
	}
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, err error, fields ...any) {
	if l.level <= ERROR {
		allFields := append([]any{"error", err}, fields...)
		l.log("ERROR", msg, allFields...)
	}
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, fields ...any) {
	if l.level <= DEBUG {
		l.log("DEBUG", msg, fields...)
	}
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, fields ...any) {
	if l.level <= WARN {
		l.log("WARN", msg, fields...)
	}
}

func (l *AppLogger) log(level, msg string, fields ...any) {
	timestamp := l.now().Format("2006-01-02 15:04:05")

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", timestamp, level, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	l.logger.Println(b.String())
}

// ParseLevel converts a level name to a LogLevel.
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
