package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/export"
	"github.com/kazi-app/ups/internal/logging"
	"github.com/kazi-app/ups/internal/server"
	"github.com/kazi-app/ups/internal/transport"
	"github.com/kazi-app/ups/internal/ups"
)

// dialTimeout bounds connecting to NATS and Redis at startup.
const dialTimeout = 5 * time.Second

// bootstrapper initializes components in dependency order and unwinds
// them when a step fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(a *Application) *bootstrapper {
	return &bootstrapper{app: a, initOrder: make([]string, 0, 5)}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"export store", b.initStore},
		{"transport", b.initTransport},
		{"assistant", b.initAssistant},
		{"provider", b.initProvider},
		{"server", b.initServer},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			b.cleanup()
			return fmt.Errorf("init %s: %w", s.name, err)
		}
		b.initOrder = append(b.initOrder, s.name)
	}
	b.app.log.Debug().Strs("order", b.initOrder).Msg("bootstrap complete")
	return nil
}

func (b *bootstrapper) cleanup() {
	_ = b.app.Shutdown()
}

func (b *bootstrapper) onShutdown(name string, fn func() error) {
	b.app.closers = append(b.app.closers, closer{name: name, fn: fn})
}

func (b *bootstrapper) initStore() error {
	path := b.app.opts.Config.Export.SQLitePath
	if path == "" {
		b.app.store = export.NewMemoryStore()
		return nil
	}
	s, err := export.OpenSQLite(path)
	if err != nil {
		return err
	}
	b.app.store = s
	b.onShutdown("export store", s.Close)
	return nil
}

// initTransport builds the cross-app transport: every configured backend
// behind its own circuit breaker, fanned out, then rate limited.
func (b *bootstrapper) initTransport() error {
	cfg := b.app.opts.Config.Transport
	log := logging.Component(b.app.opts.Logger, "transport")

	breaker := transport.DefaultBreakerConfig()
	if cfg.Breaker.ConsecutiveFailures > 0 {
		breaker.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
	}
	if cfg.Breaker.Timeout > 0 {
		breaker.Timeout = cfg.Breaker.Timeout.Std()
	}

	var backends transport.Fanout
	if cfg.NATSURL != "" {
		n, err := transport.DialNATS(cfg.NATSURL, transport.WithSubjectPrefix(cfg.SubjectPrefix))
		if err != nil {
			return err
		}
		bc := breaker
		bc.Name = "ups-nats"
		backends = append(backends, transport.WithBreaker(n, bc, log))
		log.Info().Str("subject", n.Wildcard()).Msg("nats transport connected")
	}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		r, err := transport.DialRedis(ctx, cfg.RedisURL, transport.WithChannel(cfg.RedisChannel))
		cancel()
		if err != nil {
			_ = backends.Close()
			return err
		}
		bc := breaker
		bc.Name = "ups-redis"
		backends = append(backends, transport.WithBreaker(r, bc, log))
		log.Info().Str("channel", r.Channel()).Msg("redis transport connected")
	}

	var t transport.Transport = transport.Noop{}
	switch len(backends) {
	case 0:
	case 1:
		t = backends[0]
	default:
		t = backends
	}
	if cfg.RatePerSecond > 0 {
		t = transport.WithRateLimit(t, cfg.RatePerSecond, cfg.RateBurst)
	}
	b.app.transport = t
	return nil
}

func (b *bootstrapper) initAssistant() error {
	cfg := b.app.opts.Config.Assistant
	if cfg.APIKey == "" {
		b.app.assistant = assistant.Disabled{}
		return nil
	}
	a, err := assistant.NewOpenAI(assistant.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}, logging.Component(b.app.opts.Logger, "assistant"))
	if err != nil {
		return err
	}
	b.app.assistant = a
	return nil
}

// initProvider hands the transport to the provider, which closes it.
func (b *bootstrapper) initProvider() error {
	p, err := ups.NewProvider(b.app.opts.Config.UPS(),
		ups.WithLogger(b.app.opts.Logger),
		ups.WithExportStore(b.app.store),
		ups.WithTransport(b.app.transport),
		ups.WithAssistant(b.app.assistant),
	)
	if err != nil {
		_ = b.app.transport.Close()
		return err
	}
	b.app.provider = p
	b.onShutdown("provider", p.Close)
	return nil
}

func (b *bootstrapper) initServer() error {
	b.app.server = server.New(b.app.provider, server.Options{
		CORSOrigins: b.app.opts.Config.Server.CORSOrigins,
		Logger:      b.app.opts.Logger,
	})
	return nil
}
