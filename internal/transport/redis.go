package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel broadcasts are published on.
const DefaultRedisChannel = "ups:broadcast"

// Redis publishes envelopes on a Redis pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
	owned   bool
}

// RedisOption configures a Redis transport.
type RedisOption func(*Redis)

// WithChannel overrides DefaultRedisChannel.
func WithChannel(channel string) RedisOption {
	return func(r *Redis) {
		if channel != "" {
			r.channel = channel
		}
	}
}

// NewRedis wraps an existing client. Close leaves it open.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, channel: DefaultRedisChannel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis parses a redis:// URL, pings the server and returns a
// transport that owns the client.
func DialRedis(ctx context.Context, url string, opts ...RedisOption) (*Redis, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(ropts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	r := NewRedis(client, opts...)
	r.owned = true
	return r, nil
}

// Channel returns the pub/sub channel name.
func (r *Redis) Channel() string {
	return r.channel
}

// Subscribe opens a pub/sub subscription on the broadcast channel.
func (r *Redis) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channel)
}

func (r *Redis) Post(ctx context.Context, e Envelope) error {
	body, err := e.Marshal()
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.channel, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
