package events

import "github.com/kazi-app/ups/internal/event/topic"

// FeatureEnabled is published when a feature flag is switched on.
type FeatureEnabled struct {
	Feature string
}

func (FeatureEnabled) EventType() topic.Topic { return TypeFeatureEnabled }

// FeatureDisabled is published when a feature flag is switched off.
type FeatureDisabled struct {
	Feature string
}

func (FeatureDisabled) EventType() topic.Topic { return TypeFeatureDisabled }
