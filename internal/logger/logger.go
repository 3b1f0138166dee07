// Package logger provides leveled logging for the synorenew CLI tool.
//
// Debug information goes to stderr, separate from the user-facing output
// printed by the output package, and can additionally be appended to a
// size-rotated log file. The file sink is meant for the DSM Task Scheduler,
// where nobody watches stderr and the renewal runs once every few weeks.
//
// # Log Levels
//
// Four log levels are supported, in order of severity:
//   - Debug: Detailed information for debugging
//   - Info: Workflow steps (backup, issue, distribute, activate)
//   - Warn: Problems that do not stop the run, e.g. cleanup failures
//   - Error: Errors that abort the run
//
// Init(verbose) enables Debug when verbose is true; otherwise only Warn
// and Error are shown.
//
// # Usage
//
//	logger.Info("backup %s -> %s", src, dst)
//	logger.DebugFields("copy", map[string]interface{}{"src": src, "dst": dst})
//
// Fields registered with With are appended to every line until Clear is
// called. The renewal workflow uses this for its run id:
//
//	logger.With("run", runID)
//	defer logger.Clear()
//
// # Output Format
//
//	[LEVEL] YYYY-MM-DD HH:MM:SS message key=value ...
//	[INFO] 2026-10-19 03:00:01 backup /usr/syno/etc/certificate/_archive/Ab12cD run=1b4e28ba
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FileOptions controls rotation of the log file sink.
type FileOptions struct {
	MaxSizeMB  int  // rotate after this many megabytes
	MaxBackups int  // rotated files to keep
	MaxAgeDays int  // days to keep rotated files, 0 keeps them forever
	Compress   bool // gzip rotated files
}

// DefaultFileOptions keeps a year of monthly runs comfortably.
var DefaultFileOptions = FileOptions{
	MaxSizeMB:  5,
	MaxBackups: 3,
	Compress:   true,
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	level  Level
	base   io.Writer
	file   *lumberjack.Logger
	fields map[string]interface{}
	mu     sync.Mutex
}

var std = &Logger{
	level: LevelWarn,
	base:  os.Stderr,
}

// Init initializes the global logger with the specified verbosity.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// SetOutput sets the terminal output destination. nil restores os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.base = w
}

// SetFile adds a rotating log file next to the terminal output.
// An empty path removes the file sink.
func SetFile(path string, opts FileOptions) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.file != nil {
		_ = std.file.Close()
		std.file = nil
	}
	if path == "" {
		return nil
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	// lumberjack opens lazily; fail now rather than on the first line
	if _, err := lj.Write(nil); err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	std.file = lj
	return nil
}

// CloseFile flushes and detaches the log file sink, if any.
func CloseFile() error {
	return SetFile("", FileOptions{})
}

// With registers a field appended to every subsequent line.
func With(key string, value interface{}) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.fields == nil {
		std.fields = make(map[string]interface{})
	}
	std.fields[key] = value
}

// Clear removes all fields registered with With.
func Clear() {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.fields = nil
}

func (l *Logger) write(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", level.String(), time.Now().Format("2006-01-02 15:04:05"), msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	b.WriteByte('\n')

	line := b.String()
	_, _ = io.WriteString(l.base, line)
	if l.file != nil {
		_, _ = io.WriteString(l.file, line)
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	std.write(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	std.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std.write(LevelError, fmt.Sprintf(format, args...), nil)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	std.write(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.write(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	std.write(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.write(LevelError, msg, fields)
}

// LogError logs err with a context message. nil errors are ignored.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	std.write(LevelError, fmt.Sprintf("%s: %v", msg, err), nil)
}
