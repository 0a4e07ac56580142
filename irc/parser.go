// Package irc implements the small slice of the TMI chat grammar that
// tmichat speaks: classifying incoming lines, extracting chat messages,
// reassembling lines from a byte stream and formatting outgoing
// commands.
//
// Everything here is pure.  Replying to a PING is the caller's job;
// [IsPing] only tells it that a reply is due.
package irc

import (
	"regexp"
	"unicode/utf8"

	tmerr "tmichat/internal/errors"
)

var (
	// pingRe matches the keepalive request from the production server
	// or from a *.testserver.local stand-in.
	pingRe = regexp.MustCompile(`^PING :(?:tmi\.twitch\.tv|[a-zA-Z0-9_]*\.testserver\.local)$`)

	// privmsgRe matches ":nick!user@host PRIVMSG #channel :text".
	// Groups: 1 nick, 2 channel (with '#'), 3 text.
	privmsgRe = regexp.MustCompile(`^:([a-zA-Z0-9_]+)![a-zA-Z0-9_]+@[a-zA-Z0-9_]+(?:\.tmi\.twitch\.tv|\.testserver\.local) PRIVMSG (#[a-zA-Z0-9_]+) :(.+)$`)

	// loginFailureRe matches the NOTICE sent in place of a welcome when
	// PASS/NICK are rejected.
	loginFailureRe = regexp.MustCompile(`^:(?:tmi\.twitch\.tv|testserver\.local) NOTICE \* :(?:Login unsuccessful|Login authentication failed|Improperly formatted auth)$`)
)

// Message is a chat message posted to a channel.  Values are produced
// only by [Parse] and are never modified afterwards.
type Message struct {
	Channel  string // channel name including the leading '#'
	Username string // sender's login (the nick of the prefix)
	Text     string // message body, valid UTF-8
}

func (m Message) String() string {
	return m.Channel + " <" + m.Username + "> " + m.Text
}

// IsPing reports whether line is a server keepalive request.
func IsPing(line string) bool {
	return pingRe.MatchString(line)
}

// IsChatMessage reports whether line is a PRIVMSG from a user to a
// channel.
func IsChatMessage(line string) bool {
	return privmsgRe.MatchString(line)
}

// IsLoginFailure reports whether line is the server's notice that the
// credentials were rejected.
func IsLoginFailure(line string) bool {
	return loginFailureRe.MatchString(line)
}

// Parse extracts the chat message carried by line, which must not
// include its trailing CRLF.
//
// ok is false for pings and for anything that is not a chat message
// (notices, JOIN acknowledgements, numerics); that is not an error.
// A chat message whose body is not valid UTF-8 yields a
// *errors.DecodeError and no message.
func Parse(line string) (msg Message, ok bool, err error) {
	if IsPing(line) {
		return Message{}, false, nil
	}
	m := privmsgRe.FindStringSubmatchIndex(line)
	if m == nil {
		return Message{}, false, nil
	}

	text := line[m[6]:m[7]]
	if !utf8.ValidString(text) {
		return Message{}, false, tmerr.NewDecodeError(line, text, m[6])
	}
	return Message{
		Channel:  line[m[4]:m[5]],
		Username: line[m[2]:m[3]],
		Text:     text,
	}, true, nil
}
