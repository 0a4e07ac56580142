package config

// loader.go - configuration loading from environment variables and
// .env files.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. .env file  (this file, via godotenv)
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads KEY=VALUE pairs from path into the process
// environment.  Variables already set are left alone, so the real
// environment wins over the file.  An empty path loads DefaultEnvFile
// if it exists; a missing default file is not an error.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the TMICHAT_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// syntax ("250ms", "5s") or a bare number of seconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TMICHAT_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("TMICHAT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("TMICHAT_SERVER"); v != "" {
		cfg.Server = v
	}
	if envBool("TMICHAT_TLS") {
		cfg.TLS = true
	}
	if v, ok := envDuration("TMICHAT_POLL_INTERVAL"); ok {
		cfg.PollInterval = v
	}
	if v, ok := envDuration("TMICHAT_SEND_INTERVAL"); ok {
		cfg.SendInterval = v
	}
	if v, ok := envDuration("TMICHAT_HANDSHAKE_TIMEOUT"); ok {
		cfg.HandshakeTimeout = v
	}
	if v, ok := envInt("TMICHAT_MAX_RECONNECTS"); ok {
		cfg.MaxReconnects = v
	}

	// SSH tunnel
	if v := os.Getenv("TMICHAT_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("TMICHAT_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("TMICHAT_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("TMICHAT_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("TMICHAT_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("TMICHAT_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Observability
	if v := os.Getenv("TMICHAT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	// Output
	if v, ok := envInt("TMICHAT_VERBOSE"); ok && v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return secondsDuration(n), true
	}
	return 0, false
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
