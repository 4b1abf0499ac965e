package ups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/events"
)

// Mount initializes the session. Failing steps are reported through
// ReportError and leave the provider Degraded; Mount itself only fails
// on misuse.
func (p *Provider) Mount(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.State().IsMounted() {
		return ErrAlreadyMounted
	}
	p.setState(StateInitializing)
	p.mu.Lock()
	p.mountedAt = p.clock()
	p.mu.Unlock()
	p.log.Debug().Bool("realtime", p.cfg.RealTimeEnabled).Msg("mounting provider")

	if p.ownsBus && !p.bus.IsRunning() {
		if err := p.bus.Start(); err != nil {
			return fmt.Errorf("start bus: %w", err)
		}
	}
	p.features.Reset()

	if err := p.subscribe(); err != nil {
		p.ReportError(ctx, &InitError{Step: "subscriptions", Err: err})
	}
	p.initSession(ctx)

	if p.cfg.RealTimeEnabled {
		if err := p.svc.Connect(ctx); err != nil {
			p.ReportError(ctx, &InitError{Step: "realtime", Err: err})
		}
	}

	p.startHealthLoop()
	p.evaluate(true)

	p.log.Info().Str("state", p.State().String()).Msg("provider mounted")
	return nil
}

func (p *Provider) initSession(ctx context.Context) {
	user, err := p.users.ResolveUser(ctx, p.cfg.UserID)
	if err != nil {
		p.ReportError(ctx, &InitError{Step: "user", Err: err})
	} else if err := p.svc.SetCurrentUser(ctx, user); err != nil {
		p.ReportError(ctx, &InitError{Step: "user", Err: err})
	}

	ownerID := p.cfg.UserID
	if user != nil {
		ownerID = user.ID
	}
	project, err := p.projects.ResolveProject(ctx, p.cfg.ProjectID, ownerID)
	if err != nil {
		p.ReportError(ctx, &InitError{Step: "project", Err: err})
		return
	}
	if err := p.svc.SetCurrentProject(ctx, project); err != nil {
		p.ReportError(ctx, &InitError{Step: "project", Err: err})
	}
}

// subscribe registers the provider's own bookkeeping subscriptions.
func (p *Provider) subscribe() error {
	p.subscriber = event.NewSubscriber(p.bus)
	high := event.WithPriority(event.PriorityHigh)

	recheck := func(context.Context, event.Event) error {
		p.debouncer.Call()
		return nil
	}
	if _, err := p.subscriber.SubscribeFunc(events.TypeConnectionStatus, recheck, high); err != nil {
		return err
	}
	if _, err := p.subscriber.SubscribeFunc(events.TypeSystemError, func(ctx context.Context, e event.Event) error {
		if se, ok := e.Payload.(events.SystemError); ok {
			p.log.Warn().
				Str("event_source", e.Source).
				Str("component", se.Component).
				Bool("panicked", se.Panicked).
				Msg(se.Message)
		}
		return recheck(ctx, e)
	}, high); err != nil {
		return err
	}
	if _, err := p.subscriber.SubscribeFunc("system.*", func(_ context.Context, e event.Event) error {
		switch pl := e.Payload.(type) {
		case events.SystemWarning:
			p.log.Info().Str("component", pl.Component).Msg(pl.Message)
		case events.SystemInfo:
			p.log.Debug().Str("component", pl.Component).Msg(pl.Message)
		}
		return nil
	}, event.WithPriority(event.PriorityLow)); err != nil {
		return err
	}
	if _, err := event.SubscribeTyped(p.subscriber, events.TypeAppBroadcast, p.forward,
		event.WithDeliveryMode(event.DeliveryAsync),
		event.WithFilter(event.FilterBySource(Source))); err != nil {
		return err
	}
	_, err := event.SubscribeTyped(p.subscriber, events.TypeNotificationCreated,
		func(_ context.Context, _ event.Event, n events.NotificationCreated) error {
			p.log.Debug().
				Str("notification", n.Notification.ID).
				Str("type", string(n.Notification.Type)).
				Msg("notification created")
			return nil
		}, event.WithPriority(event.PriorityLow))
	return err
}

func (p *Provider) startHealthLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.loopCancel = cancel
	p.loopDone = done

	interval := p.cfg.HealthInterval
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p.CheckHealth()
			}
		}
	}()
}

func (p *Provider) stopHealthLoop() {
	if p.loopCancel == nil {
		return
	}
	p.loopCancel()
	<-p.loopDone
	p.loopCancel = nil
	p.loopDone = nil
}

// Unmount stops the health loop, releases subscriptions, disconnects the
// real-time channel and stops an owned bus.
func (p *Provider) Unmount(ctx context.Context) error {
	return p.unmount(ctx)
}

func (p *Provider) unmount(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if !p.State().IsMounted() {
		return ErrNotMounted
	}
	p.setState(StateTornDown)

	p.stopHealthLoop()
	p.debouncer.Cancel()
	if p.subscriber != nil {
		p.subscriber.Close()
		p.subscriber = nil
	}

	var errs []error
	if p.cfg.RealTimeEnabled {
		if err := p.svc.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect: %w", err))
		}
	}
	if p.ownsBus {
		if err := p.bus.Stop(ctx); err != nil && !errors.Is(err, event.ErrBusNotRunning) {
			errs = append(errs, fmt.Errorf("stop bus: %w", err))
		}
	}

	p.log.Info().Msg("provider unmounted")
	return errors.Join(errs...)
}
