package event

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/kazi-app/ups/internal/event/topic"
)

// Payload is implemented by every event payload. The concrete types live in
// package events.
type Payload interface {
	EventType() topic.Topic
}

// Well-known metadata keys.
const (
	MetaChannel       = "channel"
	MetaPriority      = "priority"
	MetaCorrelationID = "correlation_id"
	MetaCausationID   = "causation_id"
)

// Event is a published notification. The bus fills ID, Type, Source and
// Timestamp when they are empty; an event is never modified after dispatch
// starts.
type Event struct {
	ID        string         `json:"id"`
	Type      topic.Topic    `json:"type"`
	Payload   Payload        `json:"payload"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// New returns an event carrying p, typed by p.
func New(p Payload) Event {
	e := Event{Payload: p}
	if p != nil {
		e.Type = p.EventType()
	}
	return e
}

// WithSource returns a copy with Source set.
func (e Event) WithSource(source string) Event {
	e.Source = source
	return e
}

// WithMetadata returns a copy with key set. The original map is not touched.
func (e Event) WithMetadata(key string, value any) Event {
	md := make(map[string]any, len(e.Metadata)+1)
	maps.Copy(md, e.Metadata)
	md[key] = value
	e.Metadata = md
	return e
}

// WithCorrelation returns a copy linked to a correlation id.
func (e Event) WithCorrelation(id string) Event {
	return e.WithMetadata(MetaCorrelationID, id)
}

// WithCausation returns a copy linked to the event that caused it.
func (e Event) WithCausation(id string) Event {
	return e.WithMetadata(MetaCausationID, id)
}

// Meta returns a metadata value.
func (e Event) Meta(key string) (any, bool) {
	v, ok := e.Metadata[key]
	return v, ok
}

// MetaString returns a string metadata value or "".
func (e Event) MetaString(key string) string {
	s, _ := e.Metadata[key].(string)
	return s
}

// CorrelationID returns the correlation id or "".
func (e Event) CorrelationID() string {
	return e.MetaString(MetaCorrelationID)
}

// Channel returns the broadcast channel or "" for plain publishes.
func (e Event) Channel() string {
	return e.MetaString(MetaChannel)
}

// BroadcastPriority returns the broadcast priority or "".
func (e Event) BroadcastPriority() BroadcastPriority {
	p, _ := e.Metadata[MetaPriority].(BroadcastPriority)
	return p
}

// normalize fills defaults and detaches the metadata map from the caller.
func (e Event) normalize(source string, now time.Time) (Event, error) {
	if e.Type == "" && e.Payload != nil {
		e.Type = e.Payload.EventType()
	}
	if e.Type == "" {
		return e, ErrInvalidEvent
	}
	if !e.Type.IsValid() || e.Type.IsWildcard() {
		return e, ErrInvalidTopic
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Source == "" {
		e.Source = source
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Metadata != nil {
		e.Metadata = maps.Clone(e.Metadata)
	}
	return e, nil
}
