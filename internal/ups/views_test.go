package ups

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/realtime"
)

type fakeAssistant struct {
	err error
	req assistant.Request
}

func (f *fakeAssistant) Suggest(_ context.Context, req assistant.Request) (assistant.Suggestion, error) {
	f.req = req
	if f.err != nil {
		return assistant.Suggestion{}, f.err
	}
	return assistant.Suggestion{CommentID: req.CommentID, Text: "Thanks!", Model: "fake"}, nil
}

func (f *fakeAssistant) Model() string { return "fake" }

func TestCommentsView(t *testing.T) {
	p := newTestProvider(t, Config{UserID: "u1"})
	mount(t, p)
	ctx := context.Background()
	v := p.Comments()

	c, err := v.Add(ctx, commentInput("first"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Assign(ctx, c.ID, "u2"); err != nil {
		t.Fatal(err)
	}
	resolved, err := v.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ResolvedBy != "u1" {
		t.Errorf("ResolvedBy = %q", resolved.ResolvedBy)
	}
	if err := v.Select(ctx, c.ID); err != nil || v.Selected() != c.ID {
		t.Errorf("Select = %v, Selected = %q", err, v.Selected())
	}
	if got, ok := v.Get(c.ID); !ok || got.AssignedTo != "u2" {
		t.Errorf("Get = %+v", got)
	}
	if err := v.Delete(ctx, c.ID); err != nil || len(v.List()) != 0 {
		t.Errorf("Delete = %v, List = %d", err, len(v.List()))
	}
	if !v.Enabled() {
		t.Error("comments enabled by default")
	}
}

func TestAIView(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by config", func(t *testing.T) {
		p := newTestProvider(t, Config{EnabledFeatures: []string{"ai"}}, WithAssistant(&fakeAssistant{}))
		mount(t, p)
		if _, err := p.AI().Suggest(ctx, "c1", ""); !errors.Is(err, ErrFeatureDisabled) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("disabled by feature", func(t *testing.T) {
		p := newTestProvider(t, Config{AIEnabled: true, EnabledFeatures: []string{}}, WithAssistant(&fakeAssistant{}))
		mount(t, p)
		if p.AI().Enabled() {
			t.Error("Enabled should be false")
		}
	})

	t.Run("suggest", func(t *testing.T) {
		fake := &fakeAssistant{}
		p := newTestProvider(t, Config{AIEnabled: true, ProjectID: "Brand refresh", EnabledFeatures: []string{"ai", "comments"}},
			WithAssistant(fake))
		mount(t, p)

		got := make(chan events.AISuggestion, 1)
		sub, _ := event.On(p.Bus(), events.TypeAISuggestion, func(_ context.Context, _ event.Event, s events.AISuggestion) error {
			got <- s
			return nil
		})
		defer sub.Unsubscribe()

		c, _ := p.Comments().Add(ctx, commentInput("logo too small"))
		s, err := p.AI().Suggest(ctx, c.ID, "Be brief.")
		if err != nil {
			t.Fatal(err)
		}
		if s.Text != "Thanks!" || p.AI().Model() != "fake" {
			t.Errorf("suggestion = %+v", s)
		}
		if fake.req.Comment != "logo too small" || fake.req.Context != "Brand refresh" || fake.req.Instruction != "Be brief." {
			t.Errorf("request = %+v", fake.req)
		}
		if ev := <-got; ev.CommentID != c.ID || ev.Model != "fake" {
			t.Errorf("event = %+v", ev)
		}
	})

	t.Run("assistant failure is reported", func(t *testing.T) {
		toasts := &toastRecorder{}
		fake := &fakeAssistant{err: errors.New("quota")}
		p := newTestProvider(t, Config{AIEnabled: true, EnabledFeatures: []string{"ai"}},
			WithAssistant(fake), WithToaster(toasts))
		mount(t, p)

		c, _ := p.Comments().Add(ctx, commentInput("x"))
		if _, err := p.AI().Suggest(ctx, c.ID, ""); err == nil {
			t.Fatal("expected an error")
		}
		if len(toasts.all()) != 1 || !p.Integration().Health().HasErrors {
			t.Error("failure should be toasted and recorded")
		}
	})
}

func TestCollaborationView(t *testing.T) {
	conn := realtime.NewSimulated()
	p := newTestProvider(t, Config{}, WithConnector(conn))
	mount(t, p)
	ctx := context.Background()
	v := p.Collaboration()

	if v.IsConnected() {
		t.Error("real time is off, Mount should not connect")
	}
	if err := v.Connect(ctx); err != nil || !v.IsConnected() {
		t.Errorf("Connect = %v, status = %s", err, v.Status())
	}
	if err := v.SetCurrentUser(ctx, &domain.User{ID: "u9"}); err != nil || v.CurrentUser().ID != "u9" {
		t.Errorf("SetCurrentUser = %v", err)
	}
	if err := v.SetCurrentProject(ctx, &domain.Project{ID: "p9"}); err != nil || v.CurrentProject().ID != "p9" {
		t.Errorf("SetCurrentProject = %v", err)
	}
	if err := v.Broadcast(ctx, "presence.joined", "u9"); err != nil {
		t.Error(err)
	}
	if err := v.Disconnect(ctx); err != nil || v.IsConnected() {
		t.Errorf("Disconnect = %v", err)
	}
}

func TestNotificationsView(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	ctx := context.Background()
	v := p.Notifications()

	n, _ := v.Add(ctx, notificationInput("one"))
	_, _ = v.Add(ctx, notificationInput("two"))
	if err := v.MarkRead(ctx, n.ID); err != nil || v.UnreadCount() != 1 {
		t.Errorf("MarkRead = %v, unread = %d", err, v.UnreadCount())
	}
	if c, _ := v.MarkAllRead(ctx); c != 1 {
		t.Errorf("MarkAllRead = %d", c)
	}
	v.Toast(ctx, Toast{Title: "Saved", Variant: ToastSuccess})
	if list := v.List(); len(list) != 3 || list[2].Type != domain.NotifySuccess {
		t.Errorf("List = %+v", list)
	}
	if err := v.Clear(ctx); err != nil || len(v.List()) != 0 {
		t.Errorf("Clear = %v", err)
	}
}

func TestFiltersView(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	ctx := context.Background()
	v := p.Filters()

	_, _ = p.Comments().Add(ctx, commentInput("logo"))
	_, _ = p.Comments().Add(ctx, commentInput("footer"))

	if err := v.Update(ctx, domain.Filters{Query: "logo"}); err != nil || len(v.Results()) != 1 {
		t.Errorf("Update = %v, results = %d", err, len(v.Results()))
	}
	if res, err := v.Search(ctx, "foot"); err != nil || len(res) != 1 || v.Current().Query != "foot" {
		t.Errorf("Search = %v, %v", res, err)
	}
	if err := v.Clear(ctx); err != nil || len(v.Results()) != 2 {
		t.Errorf("Clear = %v", err)
	}
}

func TestExportView(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	ctx := context.Background()
	v := p.Export()

	_, _ = p.Comments().Add(ctx, commentInput("logo"))

	rec, data, err := v.Comments(ctx, domain.FormatCSV)
	if err != nil || len(data) == 0 {
		t.Fatalf("Comments = %v", err)
	}
	if _, stored, err := v.Data(ctx, rec.ID); err != nil || string(stored) != string(data) {
		t.Errorf("Data = %v", err)
	}
	sched, err := v.Schedule(ctx, domain.FormatJSON, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Cancel(ctx, sched.ID); err != nil {
		t.Error(err)
	}
	if h := v.History(); len(h) != 2 {
		t.Errorf("History = %d", len(h))
	}
}

func TestHealthView(t *testing.T) {
	p := newTestProvider(t, Config{})
	mount(t, p)
	v := p.Health()

	if !v.IsHealthy() || v.State() != StateReady || !v.Check().IsHealthy {
		t.Errorf("health = %+v", v.Status())
	}
	p.ReportError(context.Background(), errors.New("boom"))
	if v.Check().IsHealthy || v.LastError() == nil {
		t.Error("reported error should degrade health")
	}
	if v.Metrics().State != StateDegraded {
		t.Errorf("Metrics().State = %v", v.Metrics().State)
	}
}
