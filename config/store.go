package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreDriver selects the medium behind the credential store.
type StoreDriver string

const (
	StoreDriverFile   StoreDriver = "file"
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverSQLite StoreDriver = "sqlite"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreDriver.
func (d *StoreDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StoreDriver(v) {
	case StoreDriverFile, StoreDriverMemory, StoreDriverRedis, StoreDriverSQLite:
		*d = StoreDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreDriver: %q (valid options: file, memory, redis, sqlite)", v)
	}
}

// StoreConfig configures where session credentials are persisted.
type StoreConfig struct {
	Driver StoreDriver `env:"DRIVER" envDefault:"file"`

	// Path is the JSON file used by the file driver.
	// Empty resolves to the user config dir at bootstrap.
	Path string `env:"PATH"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"pentopublic.db"`

	RedisPrefix string        `env:"REDIS_PREFIX" envDefault:"pentopublic:credentials:"`
	RedisTTL    time.Duration `env:"REDIS_TTL"    envDefault:"0"`

	// RejectExpiredTokens treats a stored JWT past its exp claim as absent.
	RejectExpiredTokens bool `env:"REJECT_EXPIRED_TOKENS" envDefault:"true"`
}

// Sanitize applies guardrails to store configuration values.
func (c *StoreConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = StoreDriverFile
	}
	c.Path = strings.TrimSpace(c.Path)
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	if c.SQLitePath == "" {
		c.SQLitePath = "pentopublic.db"
	}
	if c.RedisTTL < 0 {
		c.RedisTTL = 0
	}
}
