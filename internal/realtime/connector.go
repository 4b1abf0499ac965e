package realtime

import (
	"context"
	"errors"

	"github.com/kazi-app/ups/internal/domain"
)

// ErrNotConnected is returned when an operation needs an open channel.
var ErrNotConnected = errors.New("realtime channel is not connected")

// Connector opens and closes the real-time channel.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Status() domain.ConnectionStatus
}

// StatusFunc receives status changes that happen outside Connect and
// Disconnect, such as a dropped connection. err is set for failures.
type StatusFunc func(status domain.ConnectionStatus, err error)

// StatusNotifier is implemented by connectors that report status changes
// on their own.
type StatusNotifier interface {
	OnStatusChange(fn StatusFunc)
}
