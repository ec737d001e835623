// Package config loads the example application's settings from a .env
// file, an optional config file, NETWORK_ environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "NETWORK"

// Keys understood by Load. Flags bound through [Load] use the same names
// with dashes instead of underscores.
const (
	KeyBaseURL       = "base_url"
	KeyPath          = "path"
	KeyTimeout       = "timeout"
	KeyLogLevel      = "log_level"
	KeyUserAgent     = "user_agent"
	KeyThrottleRPS   = "throttle_rps"
	KeyThrottleBurst = "throttle_burst"
	KeyAwait         = "await"
	KeyNoColor       = "no_color"
)

// Config holds the example application configuration.
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Path          string        `mapstructure:"path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LogLevel      string        `mapstructure:"log_level"`
	UserAgent     string        `mapstructure:"user_agent"`
	ThrottleRPS   int           `mapstructure:"throttle_rps"`
	ThrottleBurst int           `mapstructure:"throttle_burst"`
	Await         bool          `mapstructure:"await"`
	NoColor       bool          `mapstructure:"no_color"`
}

// Source names the optional inputs of [Load]. Empty fields are skipped.
type Source struct {
	EnvFile    string
	ConfigFile string
	Flags      *pflag.FlagSet
}

// Load reads configuration from src and validates the result.
// A missing EnvFile is ignored; a missing ConfigFile is an error.
func Load(src Source) (*Config, error) {
	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %q: %w", src.EnvFile, err)
		}
	}

	v := viper.New()

	v.SetDefault(KeyBaseURL, "https://jsonplaceholder.typicode.com")
	v.SetDefault(KeyPath, "/posts")
	v.SetDefault(KeyTimeout, 50*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyUserAgent, "network-example/1.0")
	v.SetDefault(KeyThrottleRPS, 0)
	v.SetDefault(KeyThrottleBurst, 0)
	v.SetDefault(KeyAwait, false)
	v.SetDefault(KeyNoColor, false)

	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", src.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if src.Flags != nil {
		for _, key := range v.AllKeys() {
			f := src.Flags.Lookup(FlagName(key))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %q: %w", f.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FlagName returns the command line flag name for a config key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (must be an absolute url)", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s (must not be negative)", c.Timeout)
	}
	if (c.ThrottleRPS > 0) != (c.ThrottleBurst > 0) {
		return fmt.Errorf("throttle_rps[%d] and throttle_burst[%d] must be set together", c.ThrottleRPS, c.ThrottleBurst)
	}
	if c.ThrottleRPS < 0 || c.ThrottleBurst < 0 {
		return fmt.Errorf("throttle_rps[%d] and throttle_burst[%d] must not be negative", c.ThrottleRPS, c.ThrottleBurst)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}
