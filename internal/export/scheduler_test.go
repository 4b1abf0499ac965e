package export

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_Runs(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{})
	s.Schedule("a", time.Now().Add(10*time.Millisecond), func() { close(done) })

	if s.Pending() != 1 {
		t.Errorf("Pending = %d", s.Pending())
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	time.Sleep(5 * time.Millisecond)
	if s.Pending() != 0 {
		t.Errorf("Pending after run = %d", s.Pending())
	}
}

func TestScheduler_PastRunsNow(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{})
	s.Schedule("a", time.Now().Add(-time.Hour), func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("past job did not run")
	}
}

func TestScheduler_CancelReplaceStop(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	later := time.Now().Add(50 * time.Millisecond)

	s.Schedule("a", later, func() { runs.Add(1) })
	if !s.Cancel("a") || s.Cancel("a") {
		t.Error("Cancel should succeed exactly once")
	}

	s.Schedule("b", later, func() { runs.Add(10) })
	s.Schedule("b", later, func() { runs.Add(100) })

	s.Schedule("c", later, func() { runs.Add(1000) })
	s.Cancel("c")

	time.Sleep(100 * time.Millisecond)
	if n := runs.Load(); n != 100 {
		t.Errorf("runs = %d, want 100", n)
	}

	s.Schedule("d", later, func() { runs.Add(1) })
	s.Stop()
	if s.Schedule("e", time.Now(), func() {}) {
		t.Error("Schedule after Stop succeeded")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending after Stop = %d", s.Pending())
	}
}
