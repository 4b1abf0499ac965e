package ups

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/event/topic"
	"github.com/kazi-app/ups/internal/realtime"
	"github.com/kazi-app/ups/internal/transport"
)

type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Toast(_ context.Context, t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

type failingResolver struct{ err error }

func (f failingResolver) ResolveProject(context.Context, string, string) (*domain.Project, error) {
	return nil, f.err
}

func newTestProvider(t *testing.T, cfg Config, opts ...Option) *Provider {
	t.Helper()
	p, err := NewProvider(cfg, opts...)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func mount(t *testing.T, p *Provider) {
	t.Helper()
	if err := p.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative interval", Config{HealthInterval: -time.Second}},
		{"negative debounce", Config{HealthDebounce: -1}},
		{"unknown theme", Config{Theme: "neon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestProvider_Defaults(t *testing.T) {
	p := newTestProvider(t, Config{})
	cfg := p.Config()

	if cfg.HealthInterval != DefaultHealthInterval || cfg.Theme != "system" {
		t.Errorf("defaults = %+v", cfg)
	}
	if p.State() != StateUninitialized {
		t.Errorf("State = %v", p.State())
	}
	if !p.IsFeatureEnabled("comments") {
		t.Error("default features should be enabled")
	}
}

func TestProvider_MountReady(t *testing.T) {
	p := newTestProvider(t, Config{ProjectID: "p1", UserID: "u1"})
	mount(t, p)

	if p.State() != StateReady {
		t.Fatalf("State = %v, want ready", p.State())
	}
	if !p.IsHealthy() {
		t.Errorf("HealthStatus = %+v", p.HealthStatus())
	}
	if pr := p.Integration().CurrentProject(); pr == nil || pr.ID != "p1" {
		t.Errorf("project = %+v", pr)
	}
	if u := p.Integration().CurrentUser(); u == nil || u.ID != "u1" {
		t.Errorf("user = %+v", u)
	}
	if err := p.Mount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount = %v", err)
	}
}

func TestProvider_MountCreatesProject(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)

	pr := p.Integration().CurrentProject()
	if pr == nil || pr.ID == "" || pr.Status != domain.ProjectDraft {
		t.Errorf("created project = %+v", pr)
	}
	if u := p.Integration().CurrentUser(); u == nil || u.ID != AnonymousUserID {
		t.Errorf("user = %+v", u)
	}
}

func TestProvider_MountInitError(t *testing.T) {
	toasts := &toastRecorder{}
	boom := errors.New("projects unavailable")
	p := newTestProvider(t, Config{ProjectID: "p1"},
		WithProjectResolver(failingResolver{err: boom}),
		WithToaster(toasts),
	)

	if err := p.Mount(context.Background()); err != nil {
		t.Fatalf("Mount should not fail the caller: %v", err)
	}
	if p.State() != StateDegraded {
		t.Errorf("State = %v, want degraded", p.State())
	}

	got := toasts.all()
	if len(got) != 1 || got[0].Variant != ToastDestructive {
		t.Fatalf("toasts = %+v", got)
	}
	var initErr *InitError
	if !errors.As(p.Integration().LastError(), &initErr) || initErr.Step != "project" || !errors.Is(initErr, boom) {
		t.Errorf("LastError = %v", p.Integration().LastError())
	}
}

func TestProvider_DefaultToasterAddsNotification(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)

	p.ReportError(context.Background(), errors.New("upload failed"))

	list := p.Notifications().List()
	if len(list) != 1 || list[0].Type != domain.NotifyError || list[0].Message != "upload failed" {
		t.Errorf("notifications = %+v", list)
	}
}

func TestProvider_HealthRecomputation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		break_ func(p *Provider, conn *realtime.Simulated)
	}{
		{"bus unhealthy", func(p *Provider, _ *realtime.Simulated) { p.Bus().Pause() }},
		{"domain error", func(p *Provider, _ *realtime.Simulated) {
			p.Integration().RecordError(ctx, errors.New("boom"))
		}},
		{"disconnected", func(p *Provider, _ *realtime.Simulated) { _ = p.Integration().Disconnect(ctx) }},
		{"connection dropped", func(_ *Provider, conn *realtime.Simulated) { conn.Drop(errors.New("reset")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := realtime.NewSimulated()
			p := newTestProvider(t, Config{RealTimeEnabled: true, HealthInterval: time.Hour}, WithConnector(conn))
			mount(t, p)

			if h := p.CheckHealth(); !h.IsHealthy {
				t.Fatalf("baseline not healthy: %+v", h)
			}
			if p.State() != StateReady {
				t.Fatalf("State = %v", p.State())
			}

			tt.break_(p, conn)

			if h := p.CheckHealth(); h.IsHealthy {
				t.Errorf("still healthy: %+v", h)
			}
			if p.State() != StateDegraded {
				t.Errorf("State = %v, want degraded", p.State())
			}
		})
	}
}

func TestProvider_HealthRecovers(t *testing.T) {
	p := newTestProvider(t, Config{HealthInterval: time.Hour})
	mount(t, p)

	p.Integration().RecordError(context.Background(), errors.New("boom"))
	p.CheckHealth()
	if p.State() != StateDegraded {
		t.Fatalf("State = %v", p.State())
	}

	p.ClearError()
	if p.State() != StateReady {
		t.Errorf("State after ClearError = %v", p.State())
	}
	if p.Metrics().StateTransitions != 2 {
		t.Errorf("transitions = %d, want 2", p.Metrics().StateTransitions)
	}
}

func TestProvider_RealTimeDisabled(t *testing.T) {
	conn := realtime.NewSimulated()
	p := newTestProvider(t, Config{RealTimeEnabled: false}, WithConnector(conn))
	mount(t, p)

	if !p.IsHealthy() {
		t.Errorf("health should not require a connection: %+v", p.HealthStatus())
	}
	if err := p.Unmount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if conn.Connects() != 0 || conn.Disconnects() != 0 {
		t.Errorf("connects = %d, disconnects = %d", conn.Connects(), conn.Disconnects())
	}
}

func TestProvider_LifecycleCleanup(t *testing.T) {
	conn := realtime.NewSimulated()
	p := newTestProvider(t, Config{
		RealTimeEnabled: true,
		HealthInterval:  2 * time.Millisecond,
		HealthDebounce:  time.Millisecond,
	}, WithConnector(conn))
	mount(t, p)

	deadline := time.Now().Add(2 * time.Second)
	for p.HealthChecks() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.HealthChecks() < 3 {
		t.Fatalf("health loop not ticking: %d checks", p.HealthChecks())
	}

	if err := p.Unmount(context.Background()); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	after := p.HealthChecks()
	time.Sleep(20 * time.Millisecond)

	if got := p.HealthChecks(); got != after {
		t.Errorf("health checks after unmount: %d -> %d", after, got)
	}
	if conn.Disconnects() != 1 {
		t.Errorf("Disconnects = %d, want 1", conn.Disconnects())
	}
	if p.State() != StateTornDown {
		t.Errorf("State = %v", p.State())
	}
	if err := p.Unmount(context.Background()); !errors.Is(err, ErrNotMounted) {
		t.Errorf("second Unmount = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if conn.Disconnects() != 1 {
		t.Errorf("Close disconnected again: %d", conn.Disconnects())
	}
}

func TestProvider_DebouncedHealthOnConnectionEvents(t *testing.T) {
	conn := realtime.NewSimulated()
	p := newTestProvider(t, Config{
		RealTimeEnabled: true,
		HealthInterval:  time.Hour,
		HealthDebounce:  5 * time.Millisecond,
	}, WithConnector(conn))
	mount(t, p)
	if p.State() != StateReady {
		t.Fatalf("State = %v", p.State())
	}

	conn.Drop(errors.New("reset"))

	deadline := time.Now().Add(2 * time.Second)
	for p.State() != StateDegraded && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.State() != StateDegraded {
		t.Errorf("State = %v, want degraded after drop", p.State())
	}
}

func TestProvider_Remount(t *testing.T) {
	p := newTestProvider(t, Config{EnabledFeatures: []string{"comments"}})
	ctx := context.Background()
	mount(t, p)

	p.EnableFeature(ctx, "ai")
	if err := p.Unmount(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Bus().IsRunning() {
		t.Error("owned bus should stop on unmount")
	}

	mount(t, p)
	if p.IsFeatureEnabled("ai") {
		t.Error("features should reset to defaults on remount")
	}
	if !p.IsFeatureEnabled("comments") {
		t.Error("default feature lost on remount")
	}
	if !p.Bus().IsRunning() {
		t.Error("bus should restart on remount")
	}
}

func TestProvider_Closed(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Mount(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Mount after Close = %v", err)
	}
	if !p.Integration().IsClosed() {
		t.Error("owned service should be closed")
	}
}

func TestProvider_SharedBus(t *testing.T) {
	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}
	defer bus.Stop(context.Background())

	p := newTestProvider(t, Config{}, WithBus(bus))
	mount(t, p)
	if err := p.Unmount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !bus.IsRunning() {
		t.Error("shared bus must not be stopped by the provider")
	}
}

func TestProvider_FeatureRoundTrip(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	ctx := context.Background()

	var got []topic.Topic
	sub, err := p.SubscribeToEvent("feature.*", event.HandlerFunc(func(_ context.Context, e event.Event) error {
		got = append(got, e.Type)
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	p.EnableFeature(ctx, "x")
	if !p.IsFeatureEnabled("x") {
		t.Error("x should be enabled")
	}
	p.EnableFeature(ctx, "x")
	p.DisableFeature(ctx, "x")
	if p.IsFeatureEnabled("x") {
		t.Error("x should be disabled")
	}

	want := []topic.Topic{events.TypeFeatureEnabled, events.TypeFeatureDisabled}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}

	if c, ok := p.FeatureConfig("export"); !ok || c.Name != "export" {
		t.Errorf("FeatureConfig = %+v, %v", c, ok)
	}
	if _, ok := p.FeatureConfig("x"); ok {
		t.Error("x has no static config")
	}
}

func TestProvider_SetFeatures(t *testing.T) {
	p := newTestProvider(t, Config{EnabledFeatures: []string{"comments", "export"}})
	mount(t, p)
	ctx := context.Background()

	var enabled, disabled []string
	_, _ = event.On(p.Bus(), events.TypeFeatureEnabled, func(_ context.Context, _ event.Event, f events.FeatureEnabled) error {
		enabled = append(enabled, f.Feature)
		return nil
	})
	_, _ = event.On(p.Bus(), events.TypeFeatureDisabled, func(_ context.Context, _ event.Event, f events.FeatureDisabled) error {
		disabled = append(disabled, f.Feature)
		return nil
	})

	p.SetFeatures(ctx, []string{"export", "ai"})

	if len(enabled) != 1 || enabled[0] != "ai" || len(disabled) != 1 || disabled[0] != "comments" {
		t.Errorf("enabled = %v, disabled = %v", enabled, disabled)
	}
	if got := p.Config().EnabledFeatures; len(got) != 2 {
		t.Errorf("Config().EnabledFeatures = %v", got)
	}
}

func TestProvider_NotifyApp(t *testing.T) {
	mem := transport.NewMemory()
	posted := make(chan transport.Envelope, 2)
	defer mem.Listen(func(e transport.Envelope) { posted <- e })()

	p := newTestProvider(t, Config{}, WithTransport(mem))
	mount(t, p)
	ctx := context.Background()

	var seen []event.Event
	sub, _ := p.SubscribeToEvent(events.TypeAppBroadcast, event.HandlerFunc(func(_ context.Context, e event.Event) error {
		seen = append(seen, e)
		return nil
	}))
	defer sub.Unsubscribe()

	if err := p.NotifyApp(ctx, "invoices", "invoice.sent", map[string]string{"id": "inv-1"}); err != nil {
		t.Fatal(err)
	}
	if err := p.BroadcastToSuite(ctx, "theme.changed", "dark"); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 {
		t.Fatalf("bus events = %d", len(seen))
	}
	if seen[0].Channel() != "invoices" || seen[1].Channel() != event.DefaultChannel {
		t.Errorf("channels = %q, %q", seen[0].Channel(), seen[1].Channel())
	}
	if pl := seen[0].Payload.(events.AppBroadcast); pl.Target != "invoices" || pl.Kind != "invoice.sent" {
		t.Errorf("payload = %+v", pl)
	}

	// Async workers may post in either order.
	byType := make(map[string]transport.Envelope)
	for range 2 {
		select {
		case e := <-posted:
			byType[e.EventType] = e
		case <-time.After(time.Second):
			t.Fatalf("posted %d envelopes, want 2", len(byType))
		}
	}
	inv := byType["invoice.sent"]
	if inv.Type != transport.EnvelopeType || inv.Target != "invoices" || inv.Source != Source {
		t.Errorf("envelope = %+v", inv)
	}
	if !byType["theme.changed"].IsBroadcast() {
		t.Error("suite broadcast should have no target")
	}
}

func TestProvider_NotifyAppIgnoresForeignBroadcasts(t *testing.T) {
	mem := transport.NewMemory()
	p := newTestProvider(t, Config{}, WithTransport(mem))
	mount(t, p)

	foreign := event.New(events.AppBroadcast{Kind: "x.y"}).WithSource("other-widget")
	if err := p.Bus().Publish(context.Background(), foreign); err != nil {
		t.Fatal(err)
	}
	if err := p.BroadcastToSuite(context.Background(), "mine", nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Unmount(context.Background()); err != nil {
		t.Fatal(err)
	}

	posted := mem.Posted()
	if len(posted) != 1 || posted[0].EventType != "mine" {
		t.Errorf("posted = %+v", posted)
	}
}

type brokenTransport struct{}

func (brokenTransport) Post(context.Context, transport.Envelope) error { return errors.New("offline") }
func (brokenTransport) Close() error                                   { return nil }

func TestProvider_NotifyAppTransportFailure(t *testing.T) {
	p := newTestProvider(t, Config{}, WithTransport(brokenTransport{}))
	mount(t, p)

	warnings := make(chan events.SystemWarning, 1)
	sub, _ := event.On(p.Bus(), events.TypeSystemWarning, func(_ context.Context, _ event.Event, w events.SystemWarning) error {
		warnings <- w
		return nil
	})
	defer sub.Unsubscribe()

	if err := p.BroadcastToSuite(context.Background(), "x.y", nil); err != nil {
		t.Errorf("transport failure should not reach the caller: %v", err)
	}
	select {
	case <-warnings:
	case <-time.After(time.Second):
		t.Fatal("no system.warning for the failed post")
	}
	if !p.IsHealthy() {
		t.Error("transport failures must not degrade health")
	}
}

// blockingTransport holds every Post until release is closed.
type blockingTransport struct {
	entered chan struct{}
	release chan struct{}
}

func (b blockingTransport) Post(context.Context, transport.Envelope) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func (blockingTransport) Close() error { return nil }

func TestProvider_NotifyAppDoesNotWaitForTransport(t *testing.T) {
	bt := blockingTransport{entered: make(chan struct{}, 4), release: make(chan struct{})}
	p := newTestProvider(t, Config{}, WithTransport(bt))
	mount(t, p)
	defer close(bt.release)

	returned := make(chan error, 1)
	go func() { returned <- p.NotifyApp(context.Background(), "invoices", "invoice.sent", nil) }()

	select {
	case err := <-returned:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("NotifyApp blocked on the transport")
	}
	select {
	case <-bt.entered:
	case <-time.After(time.Second):
		t.Fatal("transport never received the envelope")
	}
}

func TestProvider_TrackEvent(t *testing.T) {
	p := newTestProvider(t, Config{ProjectID: "p1", UserID: "u1"})
	mount(t, p)

	got := make(chan events.AnalyticsTrack, 1)
	sub, _ := event.On(p.Bus(), events.TypeAnalyticsTrack, func(_ context.Context, _ event.Event, a events.AnalyticsTrack) error {
		got <- a
		return nil
	})
	defer sub.Unsubscribe()

	p.TrackEvent(context.Background(), "comment_added", map[string]any{"len": 4})

	a := <-got
	if a.Name != "comment_added" || a.UserID != "u1" || a.ProjectID != "p1" || a.Properties["len"] != 4 {
		t.Errorf("track = %+v", a)
	}
}

func TestProvider_PublishCustom(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)

	var got event.Event
	sub, _ := p.SubscribeToEvent("widget.opened", event.HandlerFunc(func(_ context.Context, e event.Event) error {
		got = e
		return nil
	}))
	defer sub.Unsubscribe()

	if err := p.PublishCustom(context.Background(), "widget.opened", 3); err != nil {
		t.Fatal(err)
	}
	if got.Source != Source || got.Payload.(events.Custom).Data != 3 {
		t.Errorf("event = %+v", got)
	}
}

func TestProvider_Metrics(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	ctx := context.Background()

	_, _ = p.Comments().Add(ctx, commentInput("hello"))
	_, _ = p.Notifications().Add(ctx, notificationInput("hi"))

	m := p.Metrics()
	if m.State != StateReady || !m.Healthy {
		t.Errorf("metrics = %+v", m)
	}
	if m.Comments != 1 || m.Notifications != 1 || m.Unread != 1 {
		t.Errorf("counts = %d/%d/%d", m.Comments, m.Notifications, m.Unread)
	}
	if m.Bus.EventsPublished == 0 {
		t.Error("bus metrics empty")
	}
	if m.HealthChecks == 0 {
		t.Error("Mount should run a health check")
	}
}
