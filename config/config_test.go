package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	tmerr "tmichat/internal/errors"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestApplyTunnelSpec(t *testing.T) {
	cfg := Default()
	cfg.TunnelSpec = "ops@bastion:2022"
	if err := cfg.ApplyTunnelSpec(); err != nil {
		t.Fatal(err)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "ops" || cfg.TunnelHost != "bastion" || cfg.TunnelPort != 2022 {
		t.Errorf("got %+v", cfg)
	}

	cfg.TunnelSpec = "a@b:0"
	var ce *tmerr.ConfigError
	if err := cfg.ApplyTunnelSpec(); !errors.As(err, &ce) || ce.Field != "tunnel" {
		t.Errorf("expected tunnel ConfigError, got %v", err)
	}

	cfg.TunnelSpec = ""
	if err := cfg.ApplyTunnelSpec(); err != nil || cfg.TunnelEnabled {
		t.Errorf("empty spec should disable the tunnel (err %v)", err)
	}
}

// ── Derived values ───────────────────────────────────────────────────

func TestServerAddr(t *testing.T) {
	tests := []struct {
		server  string
		tls     bool
		want    string
		wantErr bool
	}{
		{"", false, "irc.chat.twitch.tv:6667", false},
		{"irc.chat.twitch.tv", false, "irc.chat.twitch.tv:6667", false},
		{"irc.chat.twitch.tv", true, "irc.chat.twitch.tv:6697", false},
		{"localhost:7000", true, "localhost:7000", false},
		{"[::1]", false, "[::1]:6667", false},
		{"host:notaport", false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			cfg := &Config{Server: tt.server, TLS: tt.tls}
			got, err := cfg.ServerAddr()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOAuthToken(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc123", "oauth:abc123"},
		{"oauth:abc123", "oauth:abc123"},
	}
	for _, tt := range tests {
		cfg := &Config{Token: tt.in}
		if got := cfg.OAuthToken(); got != tt.want {
			t.Errorf("OAuthToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func validConfig() *Config {
	cfg := Default()
	cfg.Username = "bot"
	cfg.Token = "oauth:abc"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string // "" = valid
	}{
		{"valid", func(*Config) {}, ""},
		{"valid tunnel", func(c *Config) { c.TunnelEnabled = true; c.TunnelHost = "gw"; c.UseSSHAgent = true }, ""},
		{"valid metrics", func(c *Config) { c.MetricsAddr = ":9090" }, ""},
		{"unlimited reconnects", func(c *Config) { c.MaxReconnects = 0 }, ""},
		{"no user", func(c *Config) { c.Username = "" }, "user"},
		{"bad user", func(c *Config) { c.Username = "bad-name" }, "user"},
		{"no token", func(c *Config) { c.Token = "" }, "token"},
		{"token with space", func(c *Config) { c.Token = "oauth:a b" }, "token"},
		{"bad server", func(c *Config) { c.Server = "host:99999" }, "server"},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, "interval"},
		{"negative send interval", func(c *Config) { c.SendInterval = -time.Second }, "send-interval"},
		{"zero handshake", func(c *Config) { c.HandshakeTimeout = 0 }, "handshake-timeout"},
		{"negative reconnects", func(c *Config) { c.MaxReconnects = -1 }, "max-reconnects"},
		{"tunnel no host", func(c *Config) { c.TunnelEnabled = true }, "tunnel"},
		{"ssh flags no tunnel", func(c *Config) { c.SSHKeyPath = "/k" }, "tunnel"},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "9090" }, "metrics-addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *tmerr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing user has hint", func(c *Config) { c.Username = "" }, "hint:"},
		{"missing token has hint", func(c *Config) { c.Token = "" }, "TMICHAT_TOKEN"},
		{"flag name shown", func(c *Config) { c.MaxReconnects = -3 }, "--max-reconnects=-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}
