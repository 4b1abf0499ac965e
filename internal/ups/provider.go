package ups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/feature"
	"github.com/kazi-app/ups/internal/integration"
	"github.com/kazi-app/ups/internal/realtime"
	"github.com/kazi-app/ups/internal/transport"
)

// Source is the event source of everything the provider publishes itself.
const Source = "ups"

// Provider wires the bus, the integration service and the feature flags
// of one session together.
//
// A provider moves through Uninitialized, Initializing, Ready or Degraded
// and finally TornDown. Mount brings the session up and never fails on
// infrastructure errors: they are reported as toasts and leave the provider
// Degraded. Health is recomputed on a ticker and, debounced, whenever the
// connection or error state changes.
//
// Thread-safety: All methods are safe for concurrent use. Mount, Unmount and
// Close are serialized against each other; the context API may be called
// from any goroutine, including from event handlers.
type Provider struct {
	cfg Config

	bus        event.Bus
	ownsBus    bool
	svc        *integration.Service
	ownsSvc    bool
	pub        *event.Publisher
	features   *feature.Set
	transport  transport.Transport
	assistant  assistant.Assistant
	projects   ProjectResolver
	users      UserResolver
	toaster    Toaster
	clock      func() time.Time
	log        zerolog.Logger
	debouncer  *Debouncer
	lifecycle  sync.Mutex
	subscriber *event.Subscriber
	loopCancel func()
	loopDone   chan struct{}

	mu        sync.RWMutex
	state     State
	health    HealthStatus
	mountedAt time.Time

	checks      atomic.Int64
	transitions atomic.Int64
	closed      atomic.Bool
}

// NewProvider validates cfg and builds an unmounted provider.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := options{
		logger: zerolog.Nop(),
		clock:  time.Now,
		nodeID: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.With().Str("component", "ups").Logger()
	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel)
	}

	p := &Provider{
		cfg:       cfg,
		bus:       o.bus,
		svc:       o.service,
		transport: o.transport,
		assistant: o.assistant,
		projects:  o.projects,
		users:     o.users,
		toaster:   o.toaster,
		clock:     o.clock,
		log:       log,
		features:  feature.NewSet(cfg.EnabledFeatures...),
	}

	if p.bus == nil {
		p.bus = event.NewBus(
			event.WithSource(Source),
			event.WithLogger(log),
			event.WithClock(o.clock),
		)
		p.ownsBus = true
	}
	p.pub = event.NewPublisher(p.bus, Source)

	if p.svc == nil {
		svcOpts := []integration.Option{
			integration.WithBus(p.bus),
			integration.WithClock(o.clock),
			integration.WithLogger(log),
			integration.WithNodeID(o.nodeID),
		}
		if c := o.connector; c != nil {
			svcOpts = append(svcOpts, integration.WithConnector(c))
		} else if cfg.RealTimeEnabled {
			svcOpts = append(svcOpts, integration.WithConnector(defaultConnector(cfg, log)))
		}
		if o.store != nil {
			svcOpts = append(svcOpts, integration.WithExportStore(o.store))
		}
		svc, err := integration.NewService(svcOpts...)
		if err != nil {
			return nil, fmt.Errorf("create integration service: %w", err)
		}
		p.svc = svc
		p.ownsSvc = true
	}

	if p.transport == nil {
		p.transport = transport.Noop{}
	}
	if p.assistant == nil {
		p.assistant = assistant.Disabled{}
	}
	if p.projects == nil || p.users == nil {
		local := LocalResolver{Now: o.clock}
		if p.projects == nil {
			p.projects = local
		}
		if p.users == nil {
			p.users = local
		}
	}
	if p.toaster == nil {
		p.toaster = notificationToaster{svc: p.svc}
	}
	p.debouncer = NewDebouncer(cfg.HealthDebounce, func() { p.CheckHealth() })

	return p, nil
}

// defaultConnector dials NATS for nats:// endpoints and simulates the
// channel otherwise.
func defaultConnector(cfg Config, log zerolog.Logger) realtime.Connector {
	if strings.HasPrefix(cfg.WSEndpoint, "nats://") || strings.HasPrefix(cfg.WSEndpoint, "tls://") {
		return realtime.NewNATSConnector(cfg.WSEndpoint, realtime.WithNATSLogger(log))
	}
	return realtime.NewSimulated()
}

// Close unmounts the provider when needed and releases what it owns. A
// closed provider cannot be mounted again.
func (p *Provider) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	var errs []error
	if p.State().IsMounted() {
		if err := p.unmount(context.Background()); err != nil && !errors.Is(err, ErrNotMounted) {
			errs = append(errs, err)
		}
	}
	if p.ownsSvc {
		errs = append(errs, p.svc.Close())
	}
	errs = append(errs, p.transport.Close())
	return errors.Join(errs...)
}

// Config returns the effective configuration.
func (p *Provider) Config() Config {
	cfg := p.cfg
	cfg.EnabledFeatures = p.features.Defaults()
	return cfg
}

// State returns the lifecycle state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Bus returns the provider's event bus.
func (p *Provider) Bus() event.Bus {
	return p.bus
}

// Integration returns the integration service.
func (p *Provider) Integration() *integration.Service {
	return p.svc
}

// Features returns the feature flag set.
func (p *Provider) Features() *feature.Set {
	return p.features
}

func (p *Provider) setState(s State) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.state
	p.state = s
	return prev
}
