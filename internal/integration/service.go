package integration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/export"
	"github.com/kazi-app/ups/internal/realtime"
)

// Source is the event source of everything the service publishes.
const Source = "integration"

// Service is the domain state container of one session.
//
// It holds the current project and user, the comment and notification
// feeds, the connection status, filters, export history and the most recent
// error. Every mutation publishes a typed event on the bus so views and
// other widgets can follow along without polling.
//
// Thread-safety: All methods are safe for concurrent use. Mutations are
// serialized by a single mutex and the last write wins. Events are published
// after the mutex is released, so handlers observe the new state and may
// call back into the service.
type Service struct {
	mu sync.Mutex

	project       *domain.Project
	user          *domain.User
	comments      []domain.Comment
	selected      string
	notifications []domain.Notification
	connection    domain.ConnectionStatus
	filters       domain.Filters
	exports       []domain.ExportRecord
	lastErr       error
	lastErrAt     time.Time

	bus       event.Bus
	pub       *event.Publisher
	connector realtime.Connector
	store     export.Store
	scheduler *export.Scheduler
	ids       *snowflake.Node
	clock     func() time.Time
	log       zerolog.Logger

	closed    atomic.Bool
	startTime time.Time
}

// Option configures a Service.
type Option func(*options)

type options struct {
	bus       event.Bus
	connector realtime.Connector
	store     export.Store
	nodeID    int64
	clock     func() time.Time
	logger    zerolog.Logger
}

// WithBus sets the bus events are published on. Without one the service
// works but publishes nothing.
func WithBus(b event.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithConnector sets the real-time connector used by Connect.
func WithConnector(c realtime.Connector) Option {
	return func(o *options) {
		o.connector = c
	}
}

// WithExportStore sets the export archive. The default is in memory.
func WithExportStore(s export.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithNodeID sets the snowflake node id used for record ids (0-1023).
func WithNodeID(id int64) Option {
	return func(o *options) {
		o.nodeID = id
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewService creates a service with empty state.
func NewService(opts ...Option) (*Service, error) {
	o := options{
		nodeID: 1,
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	node, err := snowflake.NewNode(o.nodeID)
	if err != nil {
		return nil, fmt.Errorf("create id generator: %w", err)
	}
	if o.store == nil {
		o.store = export.NewMemoryStore()
	}

	s := &Service{
		connection: domain.ConnectionDisconnected,
		bus:        o.bus,
		connector:  o.connector,
		store:      o.store,
		scheduler:  export.NewScheduler(),
		ids:        node,
		clock:      o.clock,
		log:        o.logger.With().Str("component", Source).Logger(),
		startTime:  o.clock(),
	}
	if o.bus != nil {
		s.pub = event.NewPublisher(o.bus, Source)
	}
	if n, ok := o.connector.(realtime.StatusNotifier); ok {
		n.OnStatusChange(s.onConnectorStatus)
	}
	return s, nil
}

// Close cancels scheduled exports and rejects further mutation. It does
// not close the export store or the connector, which belong to the caller.
func (s *Service) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.scheduler.Stop()
	s.log.Debug().Dur("uptime", s.clock().Sub(s.startTime)).Msg("integration service closed")
	return nil
}

// IsClosed reports whether Close was called.
func (s *Service) IsClosed() bool {
	return s.closed.Load()
}

func (s *Service) nextID() string {
	return s.ids.Generate().String()
}

func (s *Service) checkOpen() error {
	if s.closed.Load() {
		return ErrServiceClosed
	}
	return nil
}

// publish emits p. Publish failures (a stopped bus) are logged, never
// returned: domain state has already changed.
func (s *Service) publish(ctx context.Context, p event.Payload) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, p); err != nil {
		s.log.Debug().Err(err).Str("event_type", p.EventType().String()).Msg("event not published")
	}
}

// fail records err and publishes it, then returns it for the caller.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	s.RecordError(ctx, wrapped)
	return wrapped
}

// RecordError stores err as the most recent error and publishes
// system.error.
func (s *Service) RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.lastErr = err
	s.lastErrAt = s.clock()
	s.mu.Unlock()

	s.log.Warn().Err(err).Msg("integration error")
	s.publish(ctx, events.SystemError{Message: err.Error(), Err: err, Component: Source})
}

// RecordWarning publishes system.warning. Warnings do not affect health.
func (s *Service) RecordWarning(ctx context.Context, msg string) {
	s.log.Info().Str("warning", msg).Msg("integration warning")
	s.publish(ctx, events.SystemWarning{Message: msg, Component: Source})
}

// LastError returns the most recent error, or nil.
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError forgets the most recent error.
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	s.lastErrAt = time.Time{}
}
