// Package logger wraps zerolog for the command-line tool.
//
// Logs go to stderr by default so that status lines on stdout stay readable.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogFormat defines the available log formats.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
)

// String returns the string representation of the log format.
func (f LogFormat) String() string {
	return string(f)
}

// ParseLogFormat parses a string into a LogFormat. Unknown values mean console.
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON
	default:
		return FormatConsole
	}
}

// Config holds the configuration for the logger.
type Config struct {
	// Level is the log level (debug, info, warn, error).
	Level string
	// Format is the log format (json, console).
	Format LogFormat
	// Output is the output writer (default: os.Stderr).
	Output io.Writer
	// TimeFormat is the console time format (default: time.Kitchen).
	TimeFormat string
}

// DefaultLevel is used when no level is configured or the level is invalid.
const DefaultLevel = zerolog.WarnLevel

var (
	mu           sync.Mutex
	globalLogger *Logger
)

// Logger wraps zerolog.Logger.
type Logger struct {
	zerolog.Logger
	level zerolog.Level
}

// Setup (re)initializes the global logger.
func Setup(cfg Config) *Logger {
	l := New(cfg)

	mu.Lock()
	globalLogger = l
	mu.Unlock()

	return l
}

// New builds a logger without touching the global one.
func New(cfg Config) *Logger {
	level := DefaultLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	if cfg.Format == "" {
		cfg.Format = FormatConsole
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.Kitchen
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var zl zerolog.Logger
	switch cfg.Format {
	case FormatJSON:
		zl = zerolog.New(output)
	default:
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		})
	}

	return &Logger{
		Logger: zl.Level(level).With().Timestamp().Logger(),
		level:  level,
	}
}

// Get returns the global logger, creating a default one on first use.
func Get() *Logger {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		globalLogger = New(Config{})
	}
	return globalLogger
}

// ResetForTesting drops the global logger. Only for tests.
func ResetForTesting() {
	mu.Lock()
	globalLogger = nil
	mu.Unlock()
}

// GetLevel returns the level of the logger.
func (l *Logger) GetLevel() zerolog.Level {
	if l == nil {
		return zerolog.NoLevel
	}
	return l.level
}

// WithFields returns a child logger carrying fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if l == nil {
		return Get()
	}
	if len(fields) == 0 {
		return l
	}

	return &Logger{
		Logger: l.Logger.With().Fields(fields).Logger(),
		level:  l.level,
	}
}

// Debug logs at debug level with optional fields.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(zerolog.DebugLevel, msg, fields)
}

// Info logs at info level with optional fields.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(zerolog.InfoLevel, msg, fields)
}

// Warn logs at warn level with optional fields.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(zerolog.WarnLevel, msg, fields)
}

// Error logs at error level with optional fields.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(zerolog.ErrorLevel, msg, fields)
}

func (l *Logger) log(level zerolog.Level, msg string, fields []map[string]interface{}) {
	if l == nil {
		return
	}

	event := l.Logger.WithLevel(level)
	if len(fields) > 0 && len(fields[0]) > 0 {
		event = event.Fields(fields[0])
	}
	event.Msg(msg)
}
