package ups

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/export"
	"github.com/kazi-app/ups/internal/integration"
	"github.com/kazi-app/ups/internal/realtime"
	"github.com/kazi-app/ups/internal/transport"
)

// Option configures a Provider.
type Option func(*options)

type options struct {
	bus       event.Bus
	service   *integration.Service
	connector realtime.Connector
	store     export.Store
	transport transport.Transport
	assistant assistant.Assistant
	projects  ProjectResolver
	users     UserResolver
	toaster   Toaster
	logger    zerolog.Logger
	clock     func() time.Time
	nodeID    int64
}

// WithBus shares an existing bus. The provider does not start or stop it.
// Without one the provider creates and owns a bus.
func WithBus(b event.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithIntegration shares an existing integration service.
func WithIntegration(s *integration.Service) Option {
	return func(o *options) {
		o.service = s
	}
}

// WithConnector sets the real-time connector of an owned integration
// service.
func WithConnector(c realtime.Connector) Option {
	return func(o *options) {
		o.connector = c
	}
}

// WithExportStore sets the export archive of an owned integration service.
func WithExportStore(s export.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithTransport sets the cross-app transport. The default discards.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithAssistant sets the AI backend.
func WithAssistant(a assistant.Assistant) Option {
	return func(o *options) {
		o.assistant = a
	}
}

// WithProjectResolver sets how Mount finds the current project.
func WithProjectResolver(r ProjectResolver) Option {
	return func(o *options) {
		o.projects = r
	}
}

// WithUserResolver sets how Mount finds the current user.
func WithUserResolver(r UserResolver) Option {
	return func(o *options) {
		o.users = r
	}
}

// WithToaster sets the toast surface. The default adds notifications.
func WithToaster(t Toaster) Option {
	return func(o *options) {
		o.toaster = t
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
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

// WithNodeID sets the snowflake node of an owned integration service.
func WithNodeID(id int64) Option {
	return func(o *options) {
		o.nodeID = id
	}
}
