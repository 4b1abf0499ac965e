package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix prefixes the subject of every NATS broadcast.
const DefaultSubjectPrefix = "ups.broadcast"

// NATS publishes envelopes on ups.broadcast.<eventType>. Targeted
// envelopes additionally carry the target in a header.
type NATS struct {
	conn   *nats.Conn
	prefix string
	owned  bool
}

// NATSOption configures a NATS transport.
type NATSOption func(*NATS)

// WithSubjectPrefix overrides DefaultSubjectPrefix.
func WithSubjectPrefix(prefix string) NATSOption {
	return func(n *NATS) {
		if prefix != "" {
			n.prefix = prefix
		}
	}
}

// NewNATS wraps an existing connection. Close leaves it open.
func NewNATS(conn *nats.Conn, opts ...NATSOption) *NATS {
	n := &NATS{conn: conn, prefix: DefaultSubjectPrefix}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// DialNATS connects to url and returns a transport that owns the
// connection.
func DialNATS(url string, opts ...NATSOption) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("ups-transport"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	n := NewNATS(conn, opts...)
	n.owned = true
	return n, nil
}

// Subject returns the subject an event type is published on.
func (n *NATS) Subject(eventType string) string {
	return n.prefix + "." + eventType
}

// Wildcard returns the subject that matches every broadcast.
func (n *NATS) Wildcard() string {
	return n.prefix + ".>"
}

func (n *NATS) Post(ctx context.Context, e Envelope) error {
	if n.conn == nil || n.conn.IsClosed() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := e.Marshal()
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.Subject(e.EventType))
	msg.Data = body
	if e.Target != "" {
		msg.Header.Set("Ups-Target", e.Target)
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Flush(); err != nil && !n.conn.IsClosed() {
		return fmt.Errorf("flush nats: %w", err)
	}
	if n.owned {
		n.conn.Close()
	}
	return nil
}
