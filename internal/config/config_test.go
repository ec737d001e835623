package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/adamwoolhether/network/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.Source{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	exp := &config.Config{
		BaseURL:   "https://jsonplaceholder.typicode.com",
		Path:      "/posts",
		Timeout:   50 * time.Second,
		LogLevel:  "info",
		UserAgent: "network-example/1.0",
	}
	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	l, err := cfg.Level()
	if err != nil || l != slog.LevelInfo {
		t.Errorf("exp level info, got %v, %v", l, err)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("path: /from-file\ntimeout: 3s\nlog_level: warn\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("NETWORK_TIMEOUT", "7s")
	t.Setenv("NETWORK_THROTTLE_RPS", "5")
	t.Setenv("NETWORK_THROTTLE_BURST", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.FlagName(config.KeyLogLevel), "info", "")
	flags.Bool(config.FlagName(config.KeyAwait), false, "")
	if err := flags.Parse([]string{"--log-level=debug", "--await"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(config.Source{ConfigFile: cfgFile, Flags: flags})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// file beats default, env beats file, flag beats env.
	if cfg.Path != "/from-file" {
		t.Errorf("exp path from file, got %q", cfg.Path)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("exp timeout from env, got %v", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("exp log level from flag, got %q", cfg.LogLevel)
	}
	if !cfg.Await {
		t.Error("exp await from flag")
	}
	if cfg.ThrottleRPS != 5 || cfg.ThrottleBurst != 2 {
		t.Errorf("exp throttle 5/2, got %d/%d", cfg.ThrottleRPS, cfg.ThrottleBurst)
	}
}

func TestLoad_UnchangedFlagKeepsEnv(t *testing.T) {
	t.Setenv("NETWORK_PATH", "/from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.FlagName(config.KeyPath), "/posts", "")
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(config.Source{Flags: flags})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Path != "/from-env" {
		t.Errorf("exp path from env, got %q", cfg.Path)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "NETWORK_USER_AGENT"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte(key+"=dotenv/2.0\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	cfg, err := config.Load(config.Source{EnvFile: envFile})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.UserAgent != "dotenv/2.0" {
		t.Errorf("exp user agent from env file, got %q", cfg.UserAgent)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := config.Load(config.Source{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("expected missing env file to be ignored, got: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := map[string]struct {
		key   string
		value string
	}{
		"relativeBaseURL": {key: "NETWORK_BASE_URL", value: "/api"},
		"negativeTimeout": {key: "NETWORK_TIMEOUT", value: "-1s"},
		"throttleRPSOnly": {key: "NETWORK_THROTTLE_RPS", value: "3"},
		"unknownLogLevel": {key: "NETWORK_LOG_LEVEL", value: "verbose"},
		"unparsedTimeout": {key: "NETWORK_TIMEOUT", value: "soon"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			if _, err := config.Load(config.Source{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	t.Run("missingConfigFile", func(t *testing.T) {
		_, err := config.Load(config.Source{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
