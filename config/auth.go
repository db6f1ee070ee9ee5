package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects which backend answers login and registration calls.
type AuthMode string

const (
	// AuthModeHTTP talks to the publishing backend over HTTP.
	AuthModeHTTP AuthMode = "http"
	// AuthModeMock uses the in-process dev backend (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "http", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: http, mock)", v)
	}
}

// DevAuthConfig controls the accounts served by the dev backend.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	// Users is a ';' separated list of name:secret:Role triples.
	Users      string        `env:"USERS"       envDefault:"reader:reader:Reader;author:author:Author;admin:admin:Admin"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"8h"`
	SigningKey string        `env:"SIGNING_KEY"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"http"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = AuthModeHTTP
	}
	c.DevAuth.Users = strings.TrimSpace(c.DevAuth.Users)
	if c.DevAuth.TokenTTL <= 0 {
		c.DevAuth.TokenTTL = 8 * time.Hour
	}
}

// IsMock reports whether the dev backend is selected.
func (c AuthConfig) IsMock() bool {
	return c.Mode == AuthModeMock
}
