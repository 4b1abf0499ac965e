package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/domain"
)

// NATSConnector keeps a NATS connection open as the real-time channel.
type NATSConnector struct {
	url  string
	name string
	log  zerolog.Logger

	mu       sync.Mutex
	conn     *nats.Conn
	status   domain.ConnectionStatus
	onStatus StatusFunc
}

// NATSOption configures a NATSConnector.
type NATSOption func(*NATSConnector)

// WithClientName sets the connection name shown by the server.
func WithClientName(name string) NATSOption {
	return func(c *NATSConnector) {
		c.name = name
	}
}

// WithNATSLogger sets the logger.
func WithNATSLogger(l zerolog.Logger) NATSOption {
	return func(c *NATSConnector) {
		c.log = l
	}
}

// NewNATSConnector returns a disconnected connector for url.
func NewNATSConnector(url string, opts ...NATSOption) *NATSConnector {
	c := &NATSConnector{
		url:    url,
		name:   "ups",
		log:    zerolog.Nop(),
		status: domain.ConnectionDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server. It is a no-op when already connected.
func (c *NATSConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil && !c.conn.IsClosed() {
		c.mu.Unlock()
		return nil
	}
	c.status = domain.ConnectionConnecting
	c.mu.Unlock()

	timeout := 5 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}

	conn, err := nats.Connect(c.url,
		nats.Name(c.name),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.log.Warn().Err(err).Msg("realtime channel disconnected")
				c.setStatus(domain.ConnectionError, err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.log.Info().Msg("realtime channel reconnected")
			c.setStatus(domain.ConnectionConnected, nil)
		}),
	)
	if err != nil {
		c.mu.Lock()
		c.status = domain.ConnectionError
		c.mu.Unlock()
		return fmt.Errorf("connect realtime channel %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.status = domain.ConnectionConnected
	c.mu.Unlock()
	c.log.Debug().Str("url", c.url).Msg("realtime channel connected")
	return nil
}

// Disconnect drains and closes the connection.
func (c *NATSConnector) Disconnect(context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.status = domain.ConnectionDisconnected
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Drain(); err != nil {
		conn.Close()
		return fmt.Errorf("drain realtime channel: %w", err)
	}
	return nil
}

func (c *NATSConnector) Status() domain.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *NATSConnector) OnStatusChange(fn StatusFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// Conn returns the live connection or nil. The NATS transport can share it.
func (c *NATSConnector) Conn() *nats.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *NATSConnector) setStatus(status domain.ConnectionStatus, err error) {
	c.mu.Lock()
	if c.conn == nil {
		// closed by Disconnect; ignore late callbacks
		c.mu.Unlock()
		return
	}
	c.status = status
	fn := c.onStatus
	c.mu.Unlock()

	if fn != nil {
		fn(status, err)
	}
}
