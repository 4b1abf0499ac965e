package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/kazi-app/ups/internal/domain"
)

// Simulated is an in-process Connector. It records calls so tests can
// assert on them.
type Simulated struct {
	mu          sync.Mutex
	status      domain.ConnectionStatus
	latency     time.Duration
	failWith    error
	connects    int
	disconnects int
	onStatus    StatusFunc
}

// SimulatedOption configures a Simulated connector.
type SimulatedOption func(*Simulated)

// WithLatency delays Connect by d, honouring ctx.
func WithLatency(d time.Duration) SimulatedOption {
	return func(s *Simulated) {
		s.latency = d
	}
}

// WithConnectError makes Connect fail with err.
func WithConnectError(err error) SimulatedOption {
	return func(s *Simulated) {
		s.failWith = err
	}
}

// NewSimulated returns a disconnected Simulated connector.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{status: domain.ConnectionDisconnected}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) Connect(ctx context.Context) error {
	s.mu.Lock()
	s.connects++
	latency, failWith := s.latency, s.failWith
	s.mu.Unlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if failWith != nil {
		s.status = domain.ConnectionError
		return failWith
	}
	s.status = domain.ConnectionConnected
	return nil
}

func (s *Simulated) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects++
	s.status = domain.ConnectionDisconnected
	return nil
}

func (s *Simulated) Status() domain.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Simulated) OnStatusChange(fn StatusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

// Drop simulates the remote end closing the channel.
func (s *Simulated) Drop(err error) {
	s.mu.Lock()
	s.status = domain.ConnectionError
	fn := s.onStatus
	s.mu.Unlock()

	if fn != nil {
		fn(domain.ConnectionError, err)
	}
}

// Connects returns how many times Connect was called.
func (s *Simulated) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

// Disconnects returns how many times Disconnect was called.
func (s *Simulated) Disconnects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnects
}
