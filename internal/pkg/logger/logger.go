// Package logger provides a global, Sugared Zap logger with optional
// OpenTelemetry integration and redaction-aware formatting for secret
// values. It emits JSON logs to stdout, supports configuring the log level
// via functional options, and adds an OTEL bridge core when a telemetry
// provider is available.
//
// Values wrapped with Secret render as a fixed placeholder unless the
// process opted into the secure sink with WithSecureOutput. Call sites never
// decide redaction themselves; they always wrap and let the configured mode
// decide.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// redactedPlaceholder is what a Secret value renders as outside the secure sink.
const redactedPlaceholder = "[REDACTED]"

var (
	// logger is the global SugaredLogger instance. It is initialized once by Init.
	logger *zap.SugaredLogger

	// initOnce ensures the logger is only configured a single time.
	initOnce sync.Once

	// secureOutput reports whether Secret values render in the clear.
	secureOutput bool
)

// config holds configuration options for the logger.
type config struct {
	level        string // minimum log level (debug, info, warn, error, panic, fatal)
	secureOutput bool   // whether Secret values render in the clear
}

// Option configures the logger before initialization.
type Option func(*config)

// WithLevel sets the minimum log level for the global logger.
// Example levels: "debug", "info", "warn", "error", "panic", "fatal".
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithSecureOutput enables the secure sink: values wrapped with Secret are
// rendered in the clear instead of the redaction placeholder. Intended for
// isolated diagnostic environments only.
func WithSecureOutput() Option {
	return func(c *config) {
		c.secureOutput = true
	}
}

// Init configures the global logger. By default it logs JSON to stdout at
// the "info" level with redaction enabled. If an OpenTelemetry
// LoggerProvider is registered via telemetry.LoggerProvider(), an OTEL
// bridge core forwards logs to the telemetry backend. Calling Init multiple
// times has no effect after the first successful initialization.
//
// Returns an error if parsing the log level fails.
func Init(opts ...Option) error {
	cfg := config{level: "info"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		secureOutput = cfg.secureOutput

		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// redacted wraps a sensitive value and masks it in every rendering path.
type redacted struct {
	value any
}

// String implements fmt.Stringer with the fixed placeholder.
func (redacted) String() string { return redactedPlaceholder }

// MarshalText masks the value in text-based encoders, including the JSON core.
func (redacted) MarshalText() ([]byte, error) { return []byte(redactedPlaceholder), nil }

// Secret marks a log value as sensitive. The value renders as "[REDACTED]"
// unless the logger was initialized with WithSecureOutput.
func Secret(v any) any {
	if secureOutput {
		return v
	}
	return redacted{value: v}
}

// Sync flushes any buffered log entries. It should be called on application
// shutdown to ensure all logs are written out.
func Sync() error {
	return logger.Sync()
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Infow(msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Warnw(msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Errorw(msg, keysAndValues...)
}

// Panic logs a panic-level message (and then panics) with optional key/value context.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Panicw(msg, keysAndValues...)
}

// Fatal logs a fatal-level message (and then exits) with optional key/value context.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Fatalw(msg, keysAndValues...)
}
