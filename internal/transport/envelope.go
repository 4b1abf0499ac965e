package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnvelopeType marks messages produced by this package.
const EnvelopeType = "ups-broadcast"

// Envelope is the wire shape of a cross-app broadcast.
type Envelope struct {
	Type      string    `json:"type"`
	EventType string    `json:"eventType"`
	Target    string    `json:"target,omitempty"`
	Data      any       `json:"data,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope builds an envelope for eventType. An empty target addresses
// every app in the suite.
func NewEnvelope(eventType, target, source string, data any, at time.Time) Envelope {
	return Envelope{
		Type:      EnvelopeType,
		EventType: eventType,
		Target:    target,
		Data:      data,
		Source:    source,
		Timestamp: at,
	}
}

// Marshal encodes e as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope %s: %w", e.EventType, err)
	}
	return b, nil
}

// Unmarshal decodes an envelope and rejects foreign messages.
func Unmarshal(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if e.Type != EnvelopeType {
		return Envelope{}, fmt.Errorf("%w: %q", ErrForeignMessage, e.Type)
	}
	return e, nil
}

// IsBroadcast reports whether the envelope addresses the whole suite.
func (e Envelope) IsBroadcast() bool {
	return e.Target == ""
}
