package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RAPIDHIRE_TELEGRAM_TOKEN.
const EnvPrefix = "RAPIDHIRE"

// DefaultConfigName is looked up as rapidhire.yaml in the working directory
// and in ./configs.
const DefaultConfigName = "rapidhire"

// Options controls where configuration is read from.
type Options struct {
	// File is an explicit config file. Missing explicit files are an error.
	File string

	// EnvFile is a dotenv file loaded before reading the environment.
	// Empty means ".env" when present.
	EnvFile string

	// Viper lets the caller bind flags before loading.
	Viper *viper.Viper
}

// Defaults applies the default values to v.
func Defaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.mode", ModePolling)
	v.SetDefault("telegram.poll_timeout", 30*time.Second)
	v.SetDefault("telegram.workers", 8)
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.webhook_path", "/telegram/webhook")
	v.SetDefault("telegram.secret_token", "")
	v.SetDefault("telegram.debug", false)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("sheets.credentials_file", "google_credentials.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.spreadsheet_name", "")
	v.SetDefault("sheets.worksheet", "")
	v.SetDefault("sheets.time_layout", "2006-01-02 15:04:05")
	v.SetDefault("sheets.timezone", "")
	v.SetDefault("sheets.timeout", 15*time.Second)

	v.SetDefault("sessions.backend", BackendMemory)
	v.SetDefault("sessions.redis_url", "")
	v.SetDefault("sessions.ttl", 24*time.Hour)
	v.SetDefault("sessions.dir", ".rapidhire/sessions")
	v.SetDefault("sessions.lock", false)
	v.SetDefault("sessions.lock_ttl", 30*time.Second)
	v.SetDefault("sessions.encryption_key", "")
	v.SetDefault("sessions.fallback_keys", []string{})

	v.SetDefault("dead_letter.path", ".rapidhire/dead-letter.jsonl")
}

// Load reads the configuration. It does not validate it; call Config.Validate
// with the requirements of the command being run.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}
