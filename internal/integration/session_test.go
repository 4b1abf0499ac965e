package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/realtime"
)

func TestService_SetCurrentProject(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	p := &domain.Project{ID: "p1", Name: "Launch"}
	if err := s.SetCurrentProject(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Name = "mutated"
	if got := s.CurrentProject(); got == nil || got.Name != "Launch" {
		t.Errorf("CurrentProject = %+v", got)
	}

	_ = s.SetCurrentProject(ctx, &domain.Project{ID: "p2"})
	evts := log.ofType(events.TypeProjectChanged)
	if len(evts) != 2 {
		t.Fatalf("project.changed events = %d", len(evts))
	}
	changed := evts[1].Payload.(events.ProjectChanged)
	if changed.Project.ID != "p2" || changed.Previous == nil || changed.Previous.ID != "p1" {
		t.Errorf("payload = %+v", changed)
	}

	_ = s.SetCurrentProject(ctx, nil)
	if s.CurrentProject() != nil {
		t.Error("nil should clear the project")
	}
}

func TestService_SetCurrentUser(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	if err := s.SetCurrentUser(ctx, &domain.User{ID: "u1", Role: domain.RoleOwner}); err != nil {
		t.Fatal(err)
	}
	if got := s.CurrentUser(); got == nil || got.Role != domain.RoleOwner {
		t.Errorf("CurrentUser = %+v", got)
	}
	if len(log.ofType(events.TypeUserChanged)) != 1 {
		t.Error("user.changed not published")
	}
}

func TestService_Connect(t *testing.T) {
	conn := realtime.NewSimulated()
	s, log := newTestService(t, WithConnector(conn))
	ctx := context.Background()

	if err := s.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if s.ConnectionStatus() != domain.ConnectionConnected {
		t.Errorf("status = %q", s.ConnectionStatus())
	}
	if err := s.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}
	if s.ConnectionStatus() != domain.ConnectionDisconnected {
		t.Errorf("status = %q", s.ConnectionStatus())
	}
	if conn.Connects() != 1 || conn.Disconnects() != 1 {
		t.Errorf("connects = %d, disconnects = %d", conn.Connects(), conn.Disconnects())
	}

	var got []domain.ConnectionStatus
	for _, e := range log.ofType(events.TypeConnectionStatus) {
		got = append(got, e.Payload.(events.ConnectionStatus).Status)
	}
	want := []domain.ConnectionStatus{domain.ConnectionConnecting, domain.ConnectionConnected, domain.ConnectionDisconnected}
	if len(got) != len(want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("status[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestService_ConnectError(t *testing.T) {
	boom := errors.New("refused")
	s, log := newTestService(t, WithConnector(realtime.NewSimulated(realtime.WithConnectError(boom))))

	err := s.Connect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Connect = %v", err)
	}
	if s.ConnectionStatus() != domain.ConnectionError {
		t.Errorf("status = %q", s.ConnectionStatus())
	}
	if !s.Health().HasErrors {
		t.Error("connect failure should be recorded")
	}

	evts := log.ofType(events.TypeConnectionStatus)
	last := evts[len(evts)-1].Payload.(events.ConnectionStatus)
	if last.Status != domain.ConnectionError || last.Err != "refused" {
		t.Errorf("last status = %+v", last)
	}
}

func TestService_NoConnector(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if err := s.Connect(ctx); !errors.Is(err, ErrNoConnector) {
		t.Errorf("Connect = %v", err)
	}
	if err := s.Disconnect(ctx); err != nil {
		t.Errorf("Disconnect = %v", err)
	}
}

func TestService_ConnectorDrop(t *testing.T) {
	conn := realtime.NewSimulated()
	s, log := newTestService(t, WithConnector(conn))
	ctx := context.Background()

	_ = s.Connect(ctx)
	conn.Drop(errors.New("socket closed"))

	if s.ConnectionStatus() != domain.ConnectionError {
		t.Errorf("status = %q", s.ConnectionStatus())
	}
	if s.Health().IsConnected {
		t.Error("IsConnected after drop")
	}
	if len(log.ofType(events.TypeSystemError)) != 1 {
		t.Error("drop should publish system.error")
	}
}
