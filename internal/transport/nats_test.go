package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("new nats server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATS_Post(t *testing.T) {
	ns := runNATSServer(t)

	tr, err := DialNATS(ns.ClientURL())
	if err != nil {
		t.Fatalf("DialNATS: %v", err)
	}
	defer tr.Close()

	sub, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	msgs := make(chan *nats.Msg, 4)
	s, err := sub.ChanSubscribe(tr.Wildcard(), msgs)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Unsubscribe()
	if err := sub.Flush(); err != nil {
		t.Fatal(err)
	}

	e := NewEnvelope("comment.created", "invoices", "ups", map[string]string{"id": "c1"}, time.Now())
	if err := tr.Post(context.Background(), e); err != nil {
		t.Fatalf("Post: %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Subject != "ups.broadcast.comment.created" {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if msg.Header.Get("Ups-Target") != "invoices" {
			t.Errorf("target header = %q", msg.Header.Get("Ups-Target"))
		}
		got, err := Unmarshal(msg.Data)
		if err != nil {
			t.Fatal(err)
		}
		if got.EventType != "comment.created" || got.Target != "invoices" {
			t.Errorf("envelope = %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNATS_SubjectPrefix(t *testing.T) {
	n := NewNATS(nil, WithSubjectPrefix("kazi.apps"))
	if got := n.Subject("x.y"); got != "kazi.apps.x.y" {
		t.Errorf("Subject = %q", got)
	}
	if err := n.Post(context.Background(), testEnvelope("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Post without connection = %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestNATS_ClosedConnection(t *testing.T) {
	ns := runNATSServer(t)
	tr, err := DialNATS(ns.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Post(context.Background(), testEnvelope("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Post after Close = %v", err)
	}
}
