package internal

import (
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides leveled logging
type Logger struct {
	mu     sync.RWMutex
	level  LogLevel
	prefix string

	quietDepth int      // nested Quiet calls in flight
	loudLevel  LogLevel // level restored when the last Quiet call returns
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level, defaulting to INFO
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(levelStr) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return &Logger{level: ParseLogLevel(os.Getenv("LOG_LEVEL"))}
}

// WithPrefix returns a child logger sharing this logger's level at creation time
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{level: l.GetLevel(), prefix: l.prefix + "[" + prefix + "] "}
}

func (l *Logger) logf(level LogLevel, tag, format string, args ...interface{}) {
	if l.GetLevel() >= level {
		log.Printf("["+tag+"] "+l.prefix+format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, "ERROR", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, "WARN", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, "INFO", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, "DEBUG", format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, "TRACE", format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel changes the log level. Inside Quiet it changes the level restored afterwards.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quietDepth > 0 {
		l.loudLevel = level
		return
	}
	l.level = level
}

// Quiet runs fn with the logger lowered to errors only. Calls may overlap;
// the level is restored when the last one returns.
// Chatty external solvers are wrapped in it.
func (l *Logger) Quiet(fn func() error) error {
	l.mu.Lock()
	if l.quietDepth == 0 {
		l.loudLevel = l.level
		l.level = LogLevelError
	}
	l.quietDepth++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.quietDepth--
		if l.quietDepth == 0 {
			l.level = l.loudLevel
		}
		l.mu.Unlock()
	}()
	return fn()
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
