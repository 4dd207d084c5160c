// Package logging builds the hclog loggers used by the command-line tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level when no flag overrides it.
	EnvLogLevel = "UIXTOOL_LOG_LEVEL"

	// EnvJSONLog switches the output to JSON when set to "1".
	EnvJSONLog = "UIXTOOL_JSON_LOG"

	// DefaultLevel is used when neither a flag nor the environment sets a level.
	DefaultLevel = "warn"

	linePrefix = "uix: "
)

// Option configures NewLogger.
type Option func(*hclog.LoggerOptions)

// WithJSON forces JSON output on or off regardless of the environment.
func WithJSON(enabled bool) Option {
	return func(o *hclog.LoggerOptions) {
		o.JSONFormat = enabled
	}
}

// NewLogger creates a logger with UTC timestamps. Plain-text output gets a
// line prefix; JSON output is left untouched.
func NewLogger(name string, level string, output io.Writer, opts ...Option) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	lo := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: JSONEnabled(),
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(lo)
	}
	if lo.Level == hclog.NoLevel {
		lo.Level = hclog.LevelFromString(DefaultLevel)
	}

	if !lo.JSONFormat {
		output = NewPrefixWriter(linePrefix, output)
	}
	lo.Output = output

	return hclog.New(lo)
}

// GetLogLevel returns the configured log level from the environment.
func GetLogLevel() string {
	level := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if level == "" {
		level = DefaultLevel
	}
	return level
}

// JSONEnabled reports whether the environment requests JSON output.
func JSONEnabled() bool {
	return os.Getenv(EnvJSONLog) == "1"
}
