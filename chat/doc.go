// Package chat implements a single-channel TMI chat session.
//
// A [Session] authenticates with PASS/NICK, joins the user's own channel
// and is then driven entirely by its owner:
//
//	sess, err := chat.New(ctx, "bot", "oauth:...", chat.WithAutoConnect(true))
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	for range ticker.C {
//		msgs, err := sess.Poll(ctx)
//		...
//	}
//
// Poll never waits for data: it drains whatever the socket already
// holds, answers keepalives and returns the chat messages found.  A
// dropped connection is re-established from Poll with exponential
// backoff, so the caller only ever sees a terminal failure.
//
// Outgoing traffic passes a [RateLimiter] that drops, rather than
// queues, anything sent within the flood-control interval of the
// previous send.
//
// A Session is not safe for concurrent use.
package chat
