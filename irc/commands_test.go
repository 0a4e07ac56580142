package irc

import (
	"testing"

	tmerr "tmichat/internal/errors"
)

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"pass", Pass("oauth:abc123"), "PASS oauth:abc123\r\n"},
		{"nick", Nick("bot"), "NICK bot\r\n"},
		{"join", Join("bot"), "JOIN #bot\r\n"},
		{"pong", Pong(), "PONG\r\n"},
		{"channel", Channel("bot"), "#bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPrivmsg(t *testing.T) {
	line, err := Privmsg("bot", "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if line != "PRIVMSG #bot :hello there\r\n" {
		t.Errorf("got %q", line)
	}

	for _, bad := range []string{"a\r\nJOIN #other", "two\nlines", "cr\r"} {
		if _, err := Privmsg("bot", bad); !tmerr.Is(err, tmerr.ErrInvalidText) {
			t.Errorf("Privmsg(%q) err = %v, want ErrInvalidText", bad, err)
		}
	}
}
