package ups

import (
	"context"
	"fmt"

	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/event/topic"
	"github.com/kazi-app/ups/internal/feature"
	"github.com/kazi-app/ups/internal/transport"
)

// PublishEvent publishes p with the provider as source.
func (p *Provider) PublishEvent(ctx context.Context, payload event.Payload) error {
	return p.pub.Publish(ctx, payload)
}

// PublishCustom publishes an ad-hoc event type.
func (p *Provider) PublishCustom(ctx context.Context, eventType string, data any) error {
	return p.pub.Publish(ctx, events.Custom{Type: topic.Topic(eventType), Data: data})
}

// SubscribeToEvent subscribes h to pattern. Call Unsubscribe on the result
// to stop.
func (p *Provider) SubscribeToEvent(pattern topic.Topic, h event.Handler, opts ...event.SubscriptionOption) (event.Subscription, error) {
	return p.bus.Subscribe(pattern, h, opts...)
}

// EnableFeature switches name on and publishes feature.enabled. Enabling
// an enabled feature publishes nothing.
func (p *Provider) EnableFeature(ctx context.Context, name string) {
	if !p.features.Enable(name) {
		return
	}
	p.log.Debug().Str("feature", name).Msg("feature enabled")
	p.publish(ctx, events.FeatureEnabled{Feature: name})
}

// DisableFeature switches name off and publishes feature.disabled.
func (p *Provider) DisableFeature(ctx context.Context, name string) {
	if !p.features.Disable(name) {
		return
	}
	p.log.Debug().Str("feature", name).Msg("feature disabled")
	p.publish(ctx, events.FeatureDisabled{Feature: name})
}

// IsFeatureEnabled reports whether name is on.
func (p *Provider) IsFeatureEnabled(name string) bool {
	return p.features.IsEnabled(name)
}

// FeatureConfig returns the static configuration of a known feature.
func (p *Provider) FeatureConfig(name string) (feature.Config, bool) {
	return feature.Lookup(name)
}

// SetFeatures replaces the enabled set, publishing an event per change.
// Used by configuration reloads.
func (p *Provider) SetFeatures(ctx context.Context, names []string) {
	added, removed := p.features.Replace(names)
	for _, n := range added {
		p.publish(ctx, events.FeatureEnabled{Feature: n})
	}
	for _, n := range removed {
		p.publish(ctx, events.FeatureDisabled{Feature: n})
	}
	if len(added)+len(removed) > 0 {
		p.log.Info().Strs("enabled", added).Strs("disabled", removed).Msg("features replaced")
	}
}

// NotifyApp sends kind to one app of the suite. It is broadcast on the bus
// and returns once local subscribers ran; the cross-app post happens on the
// bus's async workers, see forward.
func (p *Provider) NotifyApp(ctx context.Context, app, kind string, data any) error {
	channel := app
	if channel == "" {
		channel = event.DefaultChannel
	}
	err := p.pub.Broadcast(ctx, events.AppBroadcast{Target: app, Kind: kind, Data: data},
		event.WithChannel(channel))
	if err != nil {
		return fmt.Errorf("broadcast %s: %w", kind, err)
	}
	return nil
}

// forward posts an app.broadcast event through the cross-app transport.
// It runs as an async subscription so a slow transport never holds up the
// publisher. Failures are recorded as warnings and do not affect health.
func (p *Provider) forward(ctx context.Context, e event.Event, b events.AppBroadcast) error {
	env := transport.NewEnvelope(b.Kind, b.Target, e.Source, b.Data, e.Timestamp)
	if err := p.transport.Post(ctx, env); err != nil {
		p.log.Warn().Err(err).Str("event_type", b.Kind).Str("target", b.Target).Msg("cross-app post failed")
		p.svc.RecordWarning(ctx, fmt.Sprintf("cross-app post %s: %v", b.Kind, err))
	}
	return nil
}

// BroadcastToSuite sends kind to every app of the suite.
func (p *Provider) BroadcastToSuite(ctx context.Context, kind string, data any) error {
	return p.NotifyApp(ctx, "", kind, data)
}

// TrackEvent publishes analytics.track for the current user and project.
func (p *Provider) TrackEvent(ctx context.Context, name string, props map[string]any) {
	t := events.AnalyticsTrack{Name: name, Properties: props}
	if u := p.svc.CurrentUser(); u != nil {
		t.UserID = u.ID
	}
	if pr := p.svc.CurrentProject(); pr != nil {
		t.ProjectID = pr.ID
	}
	p.publish(ctx, t)
}

// ReportError records err, publishes system.error and shows a destructive
// toast.
func (p *Provider) ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	p.log.Error().Err(err).Msg("reported error")
	p.svc.RecordError(ctx, err)
	p.toaster.Toast(ctx, Toast{
		Title:   "Something went wrong",
		Message: err.Error(),
		Variant: ToastDestructive,
	})
}

// ClearError forgets the last recorded error and rechecks health.
func (p *Provider) ClearError() {
	p.svc.ClearError()
	p.CheckHealth()
}

func (p *Provider) publish(ctx context.Context, payload event.Payload) {
	if err := p.pub.Publish(ctx, payload); err != nil {
		p.log.Debug().Err(err).Str("event_type", payload.EventType().String()).Msg("event not published")
	}
}
