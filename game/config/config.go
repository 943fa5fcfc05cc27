// Package config holds the server's runtime configuration: defaults
// overridable through the environment (and, in main, through CLI flags).
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names recognized by FromEnv.
const (
	EnvAddr        = "OPENFOUR_ADDR"
	EnvMaxSessions = "OPENFOUR_MAX_SESSIONS"
	EnvSendQueue   = "OPENFOUR_SEND_QUEUE"
	EnvDebug       = "OPENFOUR_DEBUG"
)

// Config is the server's runtime configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string

	// MaxSessions bounds the number of concurrently live game sessions.
	MaxSessions int

	// SendQueueSize bounds each connection's outbound event queue.
	SendQueueSize int

	// Debug enables debug-level logging.
	Debug bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:          "localhost:8001",
		MaxSessions:   128,
		SendQueueSize: 256,
	}
}

// FromEnv returns the default configuration with environment overrides
// applied. Unset variables keep their defaults; malformed values fail.
func FromEnv() (Config, error) {
	cfg := Default()

	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Addr = addr
	}

	if v := os.Getenv(EnvMaxSessions); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s value %q", EnvMaxSessions, v)
		}
		cfg.MaxSessions = n
	}

	if v := os.Getenv(EnvSendQueue); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s value %q", EnvSendQueue, v)
		}
		cfg.SendQueueSize = n
	}

	if v := os.Getenv(EnvDebug); v == "true" || v == "1" {
		cfg.Debug = true
	}

	return cfg, nil
}
