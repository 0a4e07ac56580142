package irc

import (
	"strings"

	tmerr "tmichat/internal/errors"
)

// Outgoing frames.  Each returned string is a complete line including
// its CRLF terminator.

// Pass authenticates with an OAuth token ("oauth:..." for TMI).
func Pass(token string) string { return "PASS " + token + "\r\n" }

// Nick announces the login name.
func Nick(username string) string { return "NICK " + username + "\r\n" }

// Join enters the channel owned by username.
func Join(username string) string { return "JOIN " + Channel(username) + "\r\n" }

// Pong answers a keepalive request.
func Pong() string { return "PONG\r\n" }

// Privmsg posts text to the channel owned by username.  Text with CR or
// LF is rejected: it would smuggle extra commands onto the wire.
func Privmsg(username, text string) (string, error) {
	if strings.ContainsAny(text, "\r\n") {
		return "", tmerr.ErrInvalidText
	}
	return "PRIVMSG " + Channel(username) + " :" + text + "\r\n", nil
}

// Channel returns the channel name owned by username.
func Channel(username string) string { return "#" + username }
