package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk structure. Durations are written as
// Go duration strings ("250ms", "2s"). YAML is a superset of
// JSON, so one decoder reads both formats.
type fileConfig struct {
	Timeout          string `yaml:"timeout"`
	Interval         string `yaml:"interval"`
	Verbose          *bool  `yaml:"verbose"`
	LogFormat        string `yaml:"log_format"`
	LogLevel         string `yaml:"log_level"`
	LogPath          string `yaml:"log_path"`
	MetricsNamespace string `yaml:"metrics_namespace"`
	MonitorAddr      string `yaml:"monitor_addr"`
}

// Load reads a YAML or JSON file over the defaults and then
// applies CONVERGENCE_* variables from the process environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read config file %s: %w", path, err,
		)
	}

	cfg := NewConfig()
	if err := cfg.apply(data); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config from %s: %w", path, err,
		)
	}

	if err := cfg.ApplyEnv(OSEnv()); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Parse decodes YAML or JSON over the defaults. It does not read
// the environment.
func Parse(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.apply(data); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) apply(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if err := setDuration(&c.Timeout, "timeout", fc.Timeout); err != nil {
		return err
	}
	if err := setDuration(&c.Interval, "interval", fc.Interval); err != nil {
		return err
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogPath, fc.LogPath)
	setString(&c.MetricsNamespace, fc.MetricsNamespace)
	setString(&c.MonitorAddr, fc.MonitorAddr)

	return nil
}

// Environment variable names read by ApplyEnv.
const (
	EnvTimeout          = "CONVERGENCE_TIMEOUT"
	EnvInterval         = "CONVERGENCE_INTERVAL"
	EnvVerbose          = "CONVERGENCE_VERBOSE"
	EnvLogFormat        = "CONVERGENCE_LOG_FORMAT"
	EnvLogLevel         = "CONVERGENCE_LOG_LEVEL"
	EnvLogPath          = "CONVERGENCE_LOG_PATH"
	EnvMetricsNamespace = "CONVERGENCE_METRICS_NAMESPACE"
	EnvMonitorAddr      = "CONVERGENCE_MONITOR_ADDR"
)

// ApplyEnv overlays settings found in env. Unset or empty
// variables leave the current value alone.
func (c *Config) ApplyEnv(env Env) error {
	if err := setDuration(&c.Timeout, EnvTimeout, env.Get(EnvTimeout)); err != nil {
		return err
	}
	if err := setDuration(&c.Interval, EnvInterval, env.Get(EnvInterval)); err != nil {
		return err
	}
	if v := env.Get(EnvVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	setString(&c.LogFormat, env.Get(EnvLogFormat))
	setString(&c.LogLevel, env.Get(EnvLogLevel))
	setString(&c.LogPath, env.Get(EnvLogPath))
	setString(&c.MetricsNamespace, env.Get(EnvMetricsNamespace))
	setString(&c.MonitorAddr, env.Get(EnvMonitorAddr))
	return nil
}

// setDuration accepts Go duration strings and bare integers,
// which are read as milliseconds.
func setDuration(dst *time.Duration, name, value string) error {
	if value == "" {
		return nil
	}
	if ms, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
