// Package config handles loading and managing application configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/csedclub/club-payments/internal/core/domain"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Payment gateway credentials
	Gateway GatewayConfig `envPrefix:"RAZORPAY_"`

	// Outbound mail, all-or-nothing
	Mail MailConfig `envPrefix:"SMTP_"`

	// Club backend ticket hand-off, optional
	ClubAPI ClubAPIConfig `envPrefix:"CLUB_API_"`

	Notify NotifyConfig `envPrefix:"NOTIFY_"`

	Log LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	GinMode        string   `env:"GIN_MODE" envDefault:"release"` // "debug", "release", or "test"
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// GatewayConfig holds the payment gateway key pair.
// Both keys are required; the key id is safe to expose, the secret is not.
type GatewayConfig struct {
	KeyID     string        `env:"KEY_ID"`
	KeySecret string        `env:"KEY_SECRET"`
	BaseURL   string        `env:"BASE_URL" envDefault:"https://api.razorpay.com"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// MailConfig holds SMTP settings for ticket emails.
type MailConfig struct {
	Host string `env:"HOST"`
	Port string `env:"PORT"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM"`
}

// Enabled reports whether every mail setting is present.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Port != "" && m.User != "" && m.Pass != "" && m.From != ""
}

// PortNumber parses the SMTP port.
func (m MailConfig) PortNumber() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(m.Port))
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid SMTP_PORT %q", m.Port)
	}
	return port, nil
}

// ClubAPIConfig points at the club backend that stores issued tickets.
type ClubAPIConfig struct {
	URL   string `env:"URL"`
	Token string `env:"TOKEN"`
}

// Enabled reports whether the ticket hand-off is configured.
func (c ClubAPIConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

// NotifyConfig sizes the asynchronous notification dispatcher.
type NotifyConfig struct {
	Workers   int           `env:"WORKERS" envDefault:"2"`
	QueueSize int           `env:"QUEUE_SIZE" envDefault:"64"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

// LogConfig selects the log level and output format ("json" or "console").
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	var missing []string
	if c.Gateway.KeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}
	if c.Gateway.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}
	if len(missing) > 0 {
		return domain.NewServiceError(domain.ErrConfiguration,
			strings.Join(missing, "/")+" environment variables are required",
			domain.CodeConfiguration)
	}
	if c.Gateway.BaseURL == "" {
		return domain.NewServiceError(domain.ErrConfiguration,
			"RAZORPAY_BASE_URL must not be empty", domain.CodeConfiguration)
	}
	return nil
}
