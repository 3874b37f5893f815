// Package config loads the bot configuration from a YAML file, a .env file and
// RAPIDHIRE_* environment variables, in increasing order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// Telegram intake modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

const redacted = "********"

// Config is the complete bot configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram" yaml:"telegram"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
	Sheets     SheetsConfig     `mapstructure:"sheets" yaml:"sheets"`
	Sessions   SessionsConfig   `mapstructure:"sessions" yaml:"sessions"`
	DeadLetter DeadLetterConfig `mapstructure:"dead_letter" yaml:"dead_letter"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type TelegramConfig struct {
	Token       string        `mapstructure:"token" yaml:"token"`
	Mode        string        `mapstructure:"mode" yaml:"mode"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	WebhookURL  string        `mapstructure:"webhook_url" yaml:"webhook_url"`
	WebhookPath string        `mapstructure:"webhook_path" yaml:"webhook_path"`
	SecretToken string        `mapstructure:"secret_token" yaml:"secret_token"`
	Debug       bool          `mapstructure:"debug" yaml:"debug"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

type SheetsConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file" yaml:"credentials_file"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
	SpreadsheetName string        `mapstructure:"spreadsheet_name" yaml:"spreadsheet_name"`
	Worksheet       string        `mapstructure:"worksheet" yaml:"worksheet"`
	TimeLayout      string        `mapstructure:"time_layout" yaml:"time_layout"`
	Timezone        string        `mapstructure:"timezone" yaml:"timezone"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Configured reports whether a target spreadsheet was given.
func (s SheetsConfig) Configured() bool {
	return s.SpreadsheetID != "" || s.SpreadsheetName != ""
}

// Location resolves Timezone.
func (s SheetsConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

type SessionsConfig struct {
	Backend  string        `mapstructure:"backend" yaml:"backend"`
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	Lock     bool          `mapstructure:"lock" yaml:"lock"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, session state is sealed at rest.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key"`
	// FallbackKeys are retired keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s SessionsConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

type DeadLetterConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Requirements selects which sections Validate insists on.
type Requirements struct {
	Telegram bool
	Sheets   bool
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate(req Requirements) error {
	var errs []error

	if req.Telegram {
		if c.Telegram.Token == "" {
			errs = append(errs, errors.New("telegram.token is required"))
		}
		switch c.Telegram.Mode {
		case ModePolling:
		case ModeWebhook:
			if c.Telegram.WebhookURL == "" {
				errs = append(errs, errors.New("telegram.webhook_url is required in webhook mode"))
			}
			if !c.HTTP.Enabled {
				errs = append(errs, errors.New("http.enabled must be true in webhook mode"))
			}
		default:
			errs = append(errs, fmt.Errorf("telegram.mode must be %q or %q, got %q", ModePolling, ModeWebhook, c.Telegram.Mode))
		}
	}

	if req.Sheets {
		if !c.Sheets.Configured() {
			errs = append(errs, errors.New("sheets.spreadsheet_id or sheets.spreadsheet_name is required"))
		}
		if c.Sheets.CredentialsFile == "" {
			errs = append(errs, errors.New("sheets.credentials_file is required"))
		} else if _, err := os.Stat(c.Sheets.CredentialsFile); err != nil {
			errs = append(errs, fmt.Errorf("sheets.credentials_file: %w", err))
		}
	}
	if _, err := c.Sheets.Location(); err != nil {
		errs = append(errs, fmt.Errorf("sheets.timezone: %w", err))
	}

	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Sessions.RedisURL == "" {
			errs = append(errs, errors.New("sessions.redis_url is required for the redis backend"))
		}
	case BackendFile:
		if c.Sessions.Dir == "" {
			errs = append(errs, errors.New("sessions.dir is required for the file backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("sessions.backend must be one of memory, redis, file; got %q", c.Sessions.Backend))
	}
	if c.Sessions.Lock && c.Sessions.Backend != BackendRedis {
		errs = append(errs, errors.New("sessions.lock requires the redis backend"))
	}
	if _, _, err := c.Sessions.Keys(); err != nil {
		errs = append(errs, fmt.Errorf("sessions.%w", err))
	}
	if len(c.Sessions.FallbackKeys) > 0 && c.Sessions.EncryptionKey == "" {
		errs = append(errs, errors.New("sessions.fallback_keys requires sessions.encryption_key"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy with secrets masked.
func (c Config) Redacted() Config {
	if c.Telegram.Token != "" {
		c.Telegram.Token = redacted
	}
	if c.Telegram.SecretToken != "" {
		c.Telegram.SecretToken = redacted
	}
	if u, err := url.Parse(c.Sessions.RedisURL); err == nil && u.User != nil {
		c.Sessions.RedisURL = u.Redacted()
	}
	if c.Sessions.EncryptionKey != "" {
		c.Sessions.EncryptionKey = redacted
	}
	if n := len(c.Sessions.FallbackKeys); n > 0 {
		c.Sessions.FallbackKeys = slices.Repeat([]string{redacted}, n)
	}
	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
