package events

import "github.com/kazi-app/ups/internal/event/topic"

// SystemError reports a failure. The bus publishes one for every handler
// error or panic; SubscriptionID and HandledType are set in that case.
type SystemError struct {
	Message        string
	Err            error
	Component      string
	SubscriptionID string
	HandledType    topic.Topic
	Panicked       bool
}

func (SystemError) EventType() topic.Topic { return TypeSystemError }

// Error returns the underlying error text, falling back to Message.
func (e SystemError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// SystemWarning reports a recoverable anomaly.
type SystemWarning struct {
	Message   string
	Component string
}

func (SystemWarning) EventType() topic.Topic { return TypeSystemWarning }

// SystemInfo reports lifecycle milestones such as provider readiness.
type SystemInfo struct {
	Message   string
	Component string
}

func (SystemInfo) EventType() topic.Topic { return TypeSystemInfo }
