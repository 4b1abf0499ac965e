package ups

import (
	"sync"
	"time"
)

// Debouncer groups rapid calls into one callback after a quiet period.
//
// The provider uses it to fold bursts of connection.status and system.error
// events into a single health recomputation. Each Call pushes the deadline
// back, so the callback fires once, delay after the last call of a burst.
//
// Thread-safety: All methods are safe for concurrent use. The callback never
// runs concurrently with itself from the same debouncer, including when
// Flush races a timer that has just fired.
type Debouncer struct {
	mu       sync.Mutex
	run      sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64
	callback func()
}

// NewDebouncer returns a debouncer that runs callback delay after the last
// Call.
//
// A nil callback is allowed; Call then only tracks pending state.
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{delay: delay, callback: callback}
}

// Call schedules the callback, pushing back any pending run.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.invoke()
	})
}

// Flush runs a pending callback now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	pending := d.pending
	d.pending = false
	d.mu.Unlock()

	if pending {
		d.invoke()
	}
}

// Cancel drops a pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a callback is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) invoke() {
	if d.callback == nil {
		return
	}
	d.run.Lock()
	defer d.run.Unlock()
	d.callback()
}
