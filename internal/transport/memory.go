package transport

import (
	"context"
	"slices"
	"sync"
)

// Listener receives envelopes posted to a Memory transport.
type Listener func(Envelope)

// Memory delivers envelopes to in-process listeners, synchronously and in
// registration order. It stands in for sibling widgets on the same page.
type Memory struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener
	order     []uint64
	next      uint64
	posted    []Envelope
	closed    bool
}

// NewMemory returns an empty Memory transport.
func NewMemory() *Memory {
	return &Memory{listeners: make(map[uint64]Listener)}
}

// Listen registers fn and returns a function that removes it.
func (m *Memory) Listen(fn Listener) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	m.listeners[id] = fn
	m.order = append(m.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners, id)
			m.order = slices.DeleteFunc(m.order, func(v uint64) bool { return v == id })
		})
	}
}

func (m *Memory) Post(_ context.Context, e Envelope) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.posted = append(m.posted, e)
	fns := make([]Listener, 0, len(m.order))
	for _, id := range m.order {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return nil
}

// Posted returns every envelope posted so far.
func (m *Memory) Posted() []Envelope {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.posted)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.listeners = make(map[uint64]Listener)
	m.order = nil
	return nil
}
