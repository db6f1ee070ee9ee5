package config

import (
	"strings"
	"time"
)

const (
	defaultBackendTimeout   = 15 * time.Second
	defaultErrorMessagePath = "message"
)

// BackendConfig configures the HTTP client for the publishing backend.
type BackendConfig struct {
	// URL is the base URL the /auth endpoints hang off.
	URL string `env:"URL" envDefault:"http://localhost:5000/api"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// ErrorMessagePath is a JMESPath expression locating the human readable
	// message in an error response body.
	ErrorMessagePath string `env:"ERROR_MESSAGE_PATH" envDefault:"message"`

	UserAgent string `env:"USER_AGENT" envDefault:"pentopublic-client"`
}

// Sanitize applies guardrails to backend configuration values.
func (c *BackendConfig) Sanitize() {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultBackendTimeout
	}
	c.ErrorMessagePath = strings.TrimSpace(c.ErrorMessagePath)
	if c.ErrorMessagePath == "" {
		c.ErrorMessagePath = defaultErrorMessagePath
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
}
