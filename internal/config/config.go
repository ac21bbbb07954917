// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvWebhookURL   = "GOOGLE_CHAT_WEBHOOK_URL"
	EnvTaskOwner    = "TASK_OWNER"
	EnvHost         = "MCP_HOST"
	EnvPort         = "MCP_PORT"
	EnvTransport    = "MCP_TRANSPORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvDomainsFile  = "DOMAINS_FILE"
	defaultHost     = "0.0.0.0"
	defaultPort     = 8000
	defaultLogLevel = "info"
)

// Supported MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Error is a configuration problem. It is fatal for commands that need the
// affected setting.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// IsConfigError reports whether err is or wraps a *Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Config holds runtime settings.
type Config struct {
	WebhookURL  string
	TaskOwner   string
	Host        string
	Port        int
	Transport   string
	LogLevel    string
	DomainsFile string

	// rawPort is MCP_PORT as set, parsed by ResolveServe.
	rawPort string
}

// Load reads envFile (when it exists) into the process environment without
// overriding variables that are already set, then builds a Config from the
// environment. Port and Transport are only validated by ResolveServe.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load env file '%s': %w", envFile, err)
		}
	}

	cfg := Config{
		WebhookURL:  strings.TrimSpace(os.Getenv(EnvWebhookURL)),
		TaskOwner:   strings.TrimSpace(os.Getenv(EnvTaskOwner)),
		Host:        getEnvOrDefault(EnvHost, defaultHost),
		Port:        defaultPort,
		Transport:   strings.ToLower(getEnvOrDefault(EnvTransport, TransportSSE)),
		LogLevel:    getEnvOrDefault(EnvLogLevel, defaultLogLevel),
		DomainsFile: strings.TrimSpace(os.Getenv(EnvDomainsFile)),
		rawPort:     strings.TrimSpace(os.Getenv(EnvPort)),
	}
	return cfg, nil
}

// ResolveServe applies the serve command's transport and port overrides and
// validates MCP_TRANSPORT and MCP_PORT. Load leaves those two unchecked so
// that commands which never listen are not affected by them. Zero overrides
// keep the environment values.
func (c *Config) ResolveServe(transport string, port int) error {
	if t := strings.TrimSpace(transport); t != "" {
		c.Transport = strings.ToLower(t)
	}
	switch {
	case port != 0:
		if _, err := ParsePort(strconv.Itoa(port)); err != nil {
			return err
		}
		c.Port = port
	case c.rawPort != "":
		p, err := ParsePort(c.rawPort)
		if err != nil {
			return err
		}
		c.Port = p
	}
	c.rawPort = ""
	return ValidateTransport(c.Transport)
}

// RequireWebhook returns a configuration error when no webhook URL is set.
func (c Config) RequireWebhook() error {
	if c.WebhookURL == "" {
		return &Error{Key: EnvWebhookURL, Reason: "is required"}
	}
	return nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ParsePort validates a TCP port number.
func ParsePort(v string) (int, error) {
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		return 0, &Error{Key: EnvPort, Reason: fmt.Sprintf("must be an integer between 1 and 65535, got %q", v)}
	}
	return port, nil
}

// ValidateTransport checks that t names a supported transport.
func ValidateTransport(t string) error {
	switch t {
	case TransportStdio, TransportSSE:
		return nil
	default:
		return &Error{Key: EnvTransport, Reason: fmt.Sprintf("must be %q or %q, got %q", TransportStdio, TransportSSE, t)}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
