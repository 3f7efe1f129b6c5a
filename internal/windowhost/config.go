package windowhost

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Environment variables honored by the host and by spawned windows.
const (
	controlAddrEnv  = "SESSIONDOCK_CONTROL"
	controlTokenEnv = "SESSIONDOCK_TOKEN"

	// listenAddrEnv overrides the control-channel bind address, mainly so a
	// development setup can pin a fixed port.
	listenAddrEnv = "SESSIONDOCK_CONTROL_ADDR"
)

// Config holds control-channel settings for the process host
type Config struct {
	// ListenAddr is the loopback address the control server binds to.
	// Port 0 lets the OS pick a free port.
	ListenAddr string `json:"listenAddr"`
	// HandshakeTimeout bounds how long a connecting window may take to
	// send its registration frame.
	HandshakeTimeout time.Duration `json:"handshakeTimeout"`
	// RequestTimeout bounds each command's write-and-await-reply cycle.
	RequestTimeout time.Duration `json:"requestTimeout"`
	// SpawnTimeout bounds how long a spawned window process may take to
	// connect and register before creation is abandoned.
	SpawnTimeout time.Duration `json:"spawnTimeout"`
	// Environment the config was built for (development, production, test)
	Environment string `json:"environment"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:       "127.0.0.1:0",
		HandshakeTimeout: 5 * time.Second,
		RequestTimeout:   10 * time.Second,
		SpawnTimeout:     30 * time.Second,
		Environment:      "production",
	}
}

// ConfigForEnvironment returns the control-channel configuration for the
// given environment. An empty environment means production.
func ConfigForEnvironment(env string) *Config {
	config := DefaultConfig()

	switch env {
	case "test":
		config.HandshakeTimeout = 2 * time.Second
		config.RequestTimeout = 2 * time.Second
		config.SpawnTimeout = 5 * time.Second
		config.Environment = "test"
	case "development":
		// Generous reply deadline: a window process stopped in a debugger
		// should not be reaped as unresponsive.
		config.RequestTimeout = 60 * time.Second
		config.Environment = "development"
	}

	if addr := os.Getenv(listenAddrEnv); addr != "" {
		config.ListenAddr = addr
	}

	return config
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	host, _, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	// The control channel carries window commands for this desktop session
	// only and must never be reachable from the network.
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("control channel must bind a loopback address, got %q", host)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake timeout must be positive, got %v", c.HandshakeTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.SpawnTimeout <= 0 {
		return fmt.Errorf("spawn timeout must be positive, got %v", c.SpawnTimeout)
	}
	return nil
}
