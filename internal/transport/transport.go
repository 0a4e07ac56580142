// Package transport opens the stream connection a chat session runs
// over.  Dialers handle the "how" (plain TCP, TLS, or through an SSH
// jump host) independent of the protocol spoken on top.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
//
// Connections returned by a Dialer must support read deadlines: the
// chat session polls with short deadlines instead of blocking.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
