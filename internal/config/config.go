// Package config provides configuration loading for lswatch.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then LSWATCH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Config holds the complete lswatch configuration.
type Config struct {
	NATS      NATSConfig      `koanf:"nats"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// NATSConfig holds broker connection and listing bucket settings.
type NATSConfig struct {
	URL            string   `koanf:"url"`
	Token          Secret   `koanf:"token"`
	Bucket         string   `koanf:"bucket"`
	Prefix         string   `koanf:"prefix"` // KV key prefix for directory listings
	ConnectTimeout Duration `koanf:"connect_timeout"`
	MaxReconnects  int      `koanf:"max_reconnects"`
	ReconnectWait  Duration `koanf:"reconnect_wait"`
	CreateBucket   bool     `koanf:"create_bucket"`
}

// ServerConfig holds status HTTP server configuration.
type ServerConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds the logging settings exposed through configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
	Insecure    bool   `koanf:"insecure"`
	Protocol    string `koanf:"protocol"` // grpc or http/protobuf
}

var (
	bucketRe = regexp.MustCompile(`\A[a-zA-Z0-9_-]+\z`)
	prefixRe = regexp.MustCompile(`\A[-/_=.a-zA-Z0-9]*\z`)
)

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the NATS URL is empty or not a nats, tls, ws or wss URL
//   - the bucket name or key prefix contain characters NATS KV rejects
//   - the server is enabled with a port outside 1-65535
//   - the logging level or format is unknown
//   - telemetry is enabled without an endpoint or with an unknown protocol
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	for _, server := range strings.Split(c.NATS.URL, ",") {
		u, err := url.Parse(strings.TrimSpace(server))
		if err != nil {
			return fmt.Errorf("invalid nats.url %q: %w", server, err)
		}
		switch u.Scheme {
		case "nats", "tls", "ws", "wss":
		default:
			return fmt.Errorf("invalid nats.url %q: unsupported scheme %q", server, u.Scheme)
		}
	}
	if !bucketRe.MatchString(c.NATS.Bucket) {
		return fmt.Errorf("invalid nats.bucket %q", c.NATS.Bucket)
	}
	if !prefixRe.MatchString(c.NATS.Prefix) || strings.HasPrefix(c.NATS.Prefix, ".") {
		return fmt.Errorf("invalid nats.prefix %q", c.NATS.Prefix)
	}
	if c.NATS.ConnectTimeout.Duration() <= 0 {
		return errors.New("nats.connect_timeout must be positive")
	}
	if c.NATS.MaxReconnects < -1 {
		return fmt.Errorf("nats.max_reconnects must be -1 (unlimited) or more, got %d", c.NATS.MaxReconnects)
	}

	if c.Server.Enabled {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
		}
		if c.Server.ShutdownTimeout.Duration() <= 0 {
			return errors.New("server.shutdown_timeout must be positive")
		}
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.ServiceName == "" {
			return errors.New("telemetry.service_name is required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol)
		}
	}

	return nil
}
