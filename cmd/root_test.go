package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tmerr "tmichat/internal/errors"
)

// clearEnv keeps the caller's TMICHAT_* settings out of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "TMICHAT_") {
			t.Setenv(k, "")
		}
	}
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	clearEnv(t)
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_Help verifies --help (and no args) returns without error.
func TestExecute_Help(t *testing.T) {
	clearEnv(t)
	for _, args := range [][]string{{"--help"}, {}} {
		name := "no-args"
		if len(args) > 0 {
			name = args[0]
		}
		t.Run(name, func(t *testing.T) {
			if err := Execute(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	clearEnv(t)
	err := Execute(context.Background(), []string{
		"-u", "bot", "--token", "abc", "--tls", "-T", "ops@bastion", "--ssh-agent", "--dry-run",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunFromEnv verifies the environment fills in flags.
func TestExecute_DryRunFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMICHAT_USER", "bot")
	t.Setenv("TMICHAT_TOKEN", "oauth:abc")
	if err := Execute(context.Background(), []string{"--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_EnvFile verifies --env-file is loaded before validation.
func TestExecute_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("TMICHAT_USER")
	os.Unsetenv("TMICHAT_TOKEN")
	path := filepath.Join(t.TempDir(), "bot.env")
	if err := os.WriteFile(path, []byte("TMICHAT_USER=bot\nTMICHAT_TOKEN=oauth:abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("TMICHAT_USER")
		os.Unsetenv("TMICHAT_TOKEN")
	})

	if err := Execute(context.Background(), []string{"--env-file", path, "--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"missing token", []string{"-u", "bot", "--dry-run"}, "token"},
		{"bad user", []string{"-u", "not a login", "--token", "x", "--dry-run"}, "user"},
		{"bad interval", []string{"-u", "bot", "--token", "x", "-i", "0s", "--dry-run"}, "interval"},
		{"bad tunnel", []string{"-u", "bot", "--token", "x", "-T", "u@h:0", "--dry-run"}, "tunnel"},
		{"ssh without tunnel", []string{"-u", "bot", "--token", "x", "--ssh-agent", "--dry-run"}, "tunnel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Execute(context.Background(), tt.args)
			var ce *tmerr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	clearEnv(t)
	if err := Execute(context.Background(), []string{"--nonexistent-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestExecute_StrayArguments verifies positional arguments are rejected.
func TestExecute_StrayArguments(t *testing.T) {
	clearEnv(t)
	err := Execute(context.Background(), []string{"-u", "bot", "--token", "x", "extra"})
	if err == nil || !strings.Contains(err.Error(), "unexpected arguments") {
		t.Fatalf("got %v", err)
	}
}

func TestEnvFileArg(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--env-file", "a.env"}, "a.env"},
		{[]string{"-v", "--env-file=b.env"}, "b.env"},
		{[]string{"--env-file"}, ""},
		{[]string{"--", "--env-file", "c.env"}, ""},
	}
	for _, tt := range tests {
		if got := envFileArg(tt.args); got != tt.want {
			t.Errorf("envFileArg(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
