package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Env looks up configuration variables.
type Env interface {
	Get(key string) string
}

// EnvMap is an Env backed by a map.
type EnvMap map[string]string

// Get returns the value for key, or "".
func (m EnvMap) Get(key string) string { return m[key] }

type osEnv struct{}

func (osEnv) Get(key string) string { return os.Getenv(key) }

// OSEnv returns the process environment.
func OSEnv() Env { return osEnv{} }

// DotEnv is an Env layered over a parsed .env file. Process
// variables take precedence over file values.
type DotEnv struct {
	vars map[string]string
}

// LoadDotEnv parses a .env file: KEY=VALUE lines, with blank
// lines and "#" comments ignored and surrounding quotes
// stripped.
func LoadDotEnv(path string) (*DotEnv, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = strings.Trim(
			strings.TrimSpace(value), `"'`,
		)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return &DotEnv{vars: vars}, nil
}

// Get returns the process value for key when set, else the file
// value.
func (d *DotEnv) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return d.vars[key]
}
