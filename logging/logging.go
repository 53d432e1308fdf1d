/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package logging provides the leveled console logger used by archgen.
// Loggers travel in a context.Context; library code logs through the
// context helpers (InfoContext, WarnContext, ...) and never holds a global.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// OutputType represents the output format for logs
type OutputType int

// Output types for different log formats
const (
	PlainOutput OutputType = iota
	ColorOutput
	JSONOutput
)

// CustomLogger writes leveled messages to a console writer and structured
// results to an output writer.
type CustomLogger struct {
	mu            sync.Mutex
	LogLevel      slog.Level
	OutputType    OutputType
	Quiet         bool
	Verbose       bool
	ConsoleWriter io.Writer
	OutputWriter  io.Writer
}

// NewCustomLogger creates a plain-text logger writing to stderr.
func NewCustomLogger(level slog.Level) *CustomLogger {
	return &CustomLogger{
		LogLevel:      level,
		OutputType:    PlainOutput,
		ConsoleWriter: os.Stderr,
		OutputWriter:  os.Stdout,
	}
}

// NewCustomLoggerWithOptions creates a logger from the string forms used in
// config files and flags.
func NewCustomLoggerWithOptions(logLevelStr, outputFormat string, quiet, verbose bool) *CustomLogger {
	l := NewCustomLogger(DetermineLogLevel(logLevelStr))
	l.OutputType = DetermineOutputType(outputFormat)
	l.Quiet = quiet
	l.Verbose = verbose
	if verbose && l.LogLevel > slog.LevelDebug {
		l.LogLevel = slog.LevelDebug
	}
	return l
}

// Initialize validates the configured level and format and returns a logger
// for them. Unknown values are rejected rather than silently defaulted.
func Initialize(logLevelStr, outputFormat string, quiet, verbose bool) (*CustomLogger, error) {
	switch logLevelStr {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", logLevelStr)
	}
	switch outputFormat {
	case "", "text", "plain", "color", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", outputFormat)
	}
	return NewCustomLoggerWithOptions(logLevelStr, outputFormat, quiet, verbose), nil
}

// DetermineLogLevel converts a string to slog.Level
func DetermineLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DetermineOutputType maps a format name to an OutputType.
func DetermineOutputType(format string) OutputType {
	switch format {
	case "json":
		return JSONOutput
	case "color":
		return ColorOutput
	default:
		return PlainOutput
	}
}

// SetQuiet enables or disables quiet mode (errors only).
func (l *CustomLogger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Quiet = quiet
}

// SetVerbose enables or disables verbose mode (everything, including debug).
func (l *CustomLogger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Verbose = verbose
}

// IsQuiet returns whether the logger is in quiet mode.
func (l *CustomLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Quiet
}

// enabledLocked must be called while holding l.mu.
func (l *CustomLogger) enabledLocked(level slog.Level) bool {
	if l.Quiet {
		return level >= slog.LevelError
	}
	if l.Verbose {
		return true
	}
	return level >= l.LogLevel
}

func (l *CustomLogger) log(level slog.Level, message string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabledLocked(level) || l.ConsoleWriter == nil {
		return
	}

	msg := fmt.Sprintf(message, args...)
	now := time.Now()

	var line string
	switch l.OutputType {
	case JSONOutput:
		data, err := json.Marshal(map[string]string{
			"time":  now.Format(time.RFC3339),
			"level": level.String(),
			"msg":   msg,
		})
		if err != nil {
			line = msg
		} else {
			line = string(data)
		}
	case ColorOutput:
		line = fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04:05"), colorize(level, msg))
	default:
		line = fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04:05"), msg)
	}

	if _, err := fmt.Fprintln(l.ConsoleWriter, line); err != nil {
		fmt.Fprintln(os.Stderr, line)
	}
}

func colorize(level slog.Level, msg string) string {
	switch {
	case level >= slog.LevelError:
		return color.HiRedString("[ERROR] %s", msg)
	case level >= slog.LevelWarn:
		return color.HiYellowString("[WARN] %s", msg)
	case level >= slog.LevelInfo:
		return color.HiGreenString("[INFO] %s", msg)
	default:
		return color.HiBlackString("[DEBUG] %s", msg)
	}
}

// Debug logs a debug message.
func (l *CustomLogger) Debug(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args...)
}

// Info logs an informational message.
func (l *CustomLogger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *CustomLogger) Warn(format string, args ...interface{}) {
	l.log(slog.LevelWarn, format, args...)
}

// Error logs an error message. It accepts either an error, a format string,
// or any other value as the first argument.
func (l *CustomLogger) Error(firstArg interface{}, args ...interface{}) {
	switch v := firstArg.(type) {
	case error:
		l.log(slog.LevelError, "%s", v.Error())
	case string:
		l.log(slog.LevelError, v, args...)
	default:
		l.log(slog.LevelError, "%v", v)
	}
}

// Output writes a result value to the output writer: indented JSON in JSON
// mode, fmt's default formatting otherwise.
func (l *CustomLogger) Output(data interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.OutputWriter
	if w == nil {
		w = os.Stdout
	}

	if l.OutputType == JSONOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	_, err := fmt.Fprintln(w, data)
	return err
}

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// WithLogger returns a new context with the provided logger.
func WithLogger(ctx context.Context, l *CustomLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context, or a default info-level
// logger when none is stored.
func FromContext(ctx context.Context) *CustomLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*CustomLogger); ok && l != nil {
			return l
		}
	}
	return NewCustomLogger(slog.LevelInfo)
}

// DebugContext logs a debug message using the logger from context.
func DebugContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Debug(message, args...)
}

// InfoContext logs an informational message using the logger from context.
func InfoContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Info(message, args...)
}

// WarnContext logs a warning message using the logger from context.
func WarnContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Warn(message, args...)
}

// ErrorContext logs an error message using the logger from context.
func ErrorContext(ctx context.Context, firstArg interface{}, args ...interface{}) {
	FromContext(ctx).Error(firstArg, args...)
}

// OutputContext writes a result value using the logger from context.
func OutputContext(ctx context.Context, data interface{}) error {
	return FromContext(ctx).Output(data)
}
