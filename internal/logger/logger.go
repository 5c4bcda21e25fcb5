// Package logger implements the bot's leveled logging.
//
// Logging System:
//   - Thread-safe logging to the console and to a log file (bot.log by default)
//   - Five log levels: DEBUG, INFO, SUCCESS, WARN, ERROR
//   - DEBUG lines are dropped unless debug mode is on
//   - The log file is truncated (cleared) on each startup
//   - Global logger instance accessible via convenience functions
//
// Logging Best Practices:
//   - DEBUG: Detailed operation info (match boxes, OCR text, coordinates)
//   - INFO: Important events (state changes, chosen training, races)
//   - SUCCESS: A workflow finished as intended (race won, career started)
//   - WARN: Non-critical issues (template missing, OCR fallback used)
//   - ERROR: Serious problems (device errors, config errors)
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger provides thread-safe leveled logging on top of zerolog.
//
// The mutex serializes writes from the decision loop and the status server
// so console lines never interleave.
type Logger struct {
	file  *os.File
	zl    zerolog.Logger
	debug bool
	mu    sync.Mutex
}

var globalLogger = New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}, false)

// New creates a logger writing to w.
func New(w io.Writer, debug bool) *Logger {
	return &Logger{
		zl:    zerolog.New(w).With().Timestamp().Logger(),
		debug: debug,
	}
}

// Init replaces the global logger with one writing to the console and to
// path. The file is truncated on startup. An empty path logs to the console only.
func Init(path string, debug bool) error {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}
	if path == "" {
		globalLogger = New(console, debug)
		return nil
	}

	// Use O_TRUNC to clear the file on startup
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(zerolog.MultiLevelWriter(console, file), debug)
	l.file = file
	globalLogger = l

	globalLogger.Info("Logger initialized (log file cleared)")
	return nil
}

// Close closes the log file
func Close() {
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.Info("Logger closing")
		globalLogger.file.Close()
		globalLogger = New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}, globalLogger.debug)
	}
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debug {
		return
	}
	l.zl.Debug().Msgf(format, v...)
}

// Info logs info level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Info().Msgf(format, v...)
}

// Success logs info level messages tagged as a successful outcome
func (l *Logger) Success(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Info().Bool("success", true).Msgf(format, v...)
}

// Warn logs warning level messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Warn().Msgf(format, v...)
}

// Error logs error level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Error().Msgf(format, v...)
}

// LogDebug logs to the global logger
func LogDebug(format string, v ...interface{}) {
	globalLogger.Debug(format, v...)
}

// LogInfo logs to the global logger
func LogInfo(format string, v ...interface{}) {
	globalLogger.Info(format, v...)
}

// LogSuccess logs to the global logger
func LogSuccess(format string, v ...interface{}) {
	globalLogger.Success(format, v...)
}

// LogWarn logs to the global logger
func LogWarn(format string, v ...interface{}) {
	globalLogger.Warn(format, v...)
}

// LogError logs to the global logger
func LogError(format string, v ...interface{}) {
	globalLogger.Error(format, v...)
}
