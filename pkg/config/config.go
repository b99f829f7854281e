// Package config holds runtime settings for convergence runs:
// the ambient timeout, the polling interval, logging, metrics,
// and the live monitor. Settings come from defaults, a YAML or
// JSON file, and CONVERGENCE_* environment variables, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"digital.vasic.convergence/pkg/logging"
)

// Log formats understood by NewLogger.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatZap     = "zap"
	FormatNone    = "none"
)

// Config holds runtime configuration for convergence runs.
type Config struct {
	// Timeout is the ambient timeout: the window for "when"
	// steps and the default duration for "always" steps.
	Timeout time.Duration

	// Interval is the pause between assertion checks.
	Interval time.Duration

	// Verbose enables debug logging regardless of LogLevel.
	Verbose bool

	// LogFormat is one of the Format* constants.
	LogFormat string

	// LogLevel is a level name such as "info" or "debug".
	LogLevel string

	// LogPath is the JSON log file. Empty means stdout.
	LogPath string

	// MetricsNamespace prefixes Prometheus metric names.
	MetricsNamespace string

	// MonitorAddr is the listen address for the live monitor.
	// Empty disables it.
	MonitorAddr string
}

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Timeout:          2 * time.Second,
		Interval:         10 * time.Millisecond,
		LogFormat:        FormatConsole,
		LogLevel:         "info",
		MetricsNamespace: "convergence",
	}
}

// Validate checks that the timing settings are usable and that
// the log settings are known.
func (c *Config) Validate() error {
	var errs []error

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf(
			"timeout must not be negative: %s", c.Timeout,
		))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf(
			"interval must be positive: %s", c.Interval,
		))
	}
	switch c.LogFormat {
	case FormatConsole, FormatJSON, FormatZap, FormatNone:
	default:
		errs = append(errs, fmt.Errorf(
			"unknown log format: %s", c.LogFormat,
		))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level returns the effective log level.
func (c *Config) Level() logging.LogLevel {
	if c.Verbose {
		return logging.LevelDebug
	}
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

// NewLogger builds the logger described by the log settings.
func (c *Config) NewLogger() (logging.Logger, error) {
	switch c.LogFormat {
	case "", FormatConsole:
		return logging.NewConsoleLoggerTo(os.Stdout, c.Level()), nil
	case FormatJSON:
		l, err := logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: c.LogPath,
			Level:      c.Level(),
		})
		if err != nil {
			return nil, err
		}
		return l, nil
	case FormatZap:
		l, err := logging.NewZapProduction(c.Level())
		if err != nil {
			return nil, fmt.Errorf("failed to build zap logger: %w", err)
		}
		return l, nil
	case FormatNone:
		return logging.NullLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", c.LogFormat)
	}
}
