package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncDispatcher executes handlers on a bounded worker pool.
type AsyncDispatcher struct {
	queueSize    int
	workerCount  int
	timeout      time.Duration
	panicHandler PanicHandler

	mu      sync.Mutex // guards queue creation and close
	queue   chan asyncTask
	running atomic.Bool
	wg      sync.WaitGroup

	enqueued    atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	totalTimeNs atomic.Int64
}

type asyncTask struct {
	ctx     context.Context
	event   any
	handler Handler
	done    ResultHandler
}

// AsyncOption configures an AsyncDispatcher.
type AsyncOption func(*AsyncDispatcher)

// WithQueueSize sets the queue capacity.
func WithQueueSize(size int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of workers.
func WithWorkerCount(count int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// WithAsyncTimeout bounds each handler's context.
func WithAsyncTimeout(timeout time.Duration) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.timeout = timeout
	}
}

// WithAsyncPanicHandler sets the panic observer.
func WithAsyncPanicHandler(h PanicHandler) AsyncOption {
	return func(d *AsyncDispatcher) {
		if h != nil {
			d.panicHandler = h
		}
	}
}

// NewAsyncDispatcher creates a stopped dispatcher. Call Start before Enqueue.
func NewAsyncDispatcher(opts ...AsyncOption) *AsyncDispatcher {
	d := &AsyncDispatcher{
		queueSize:    1024,
		workerCount:  4,
		timeout:      5 * time.Second,
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers.
func (d *AsyncDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return ErrAlreadyRunning
	}

	d.queue = make(chan asyncTask, d.queueSize)
	d.running.Store(true)
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(d.queue)
	}
	return nil
}

// Stop closes the queue and waits for queued tasks to drain or ctx to end.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.running.Store(false)
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue schedules handler for event. done, if non-nil, receives the
// result on the worker goroutine. A full queue drops the task.
func (d *AsyncDispatcher) Enqueue(ctx context.Context, event any, handler Handler, done ResultHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return ErrNotRunning
	}

	select {
	case d.queue <- asyncTask{ctx: context.WithoutCancel(ctx), event: event, handler: handler, done: done}:
		d.enqueued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

func (d *AsyncDispatcher) worker(queue <-chan asyncTask) {
	defer d.wg.Done()

	executor := NewExecutor(WithExecutorPanicHandler(d.panicHandler))
	for task := range queue {
		result := executor.ExecuteWithTimeout(task.ctx, task.event, task.handler, d.timeout)

		d.processed.Add(1)
		d.totalTimeNs.Add(result.Duration.Nanoseconds())
		switch {
		case result.Panicked:
			d.panicked.Add(1)
		case result.Error != nil:
			d.failed.Add(1)
		default:
			d.succeeded.Add(1)
		}

		if task.done != nil {
			func() {
				defer func() { _ = recover() }()
				task.done(task.event, result)
			}()
		}
	}
}

// QueueDepth returns the number of queued tasks.
func (d *AsyncDispatcher) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return 0
	}
	return len(d.queue)
}

// IsRunning reports whether workers are active.
func (d *AsyncDispatcher) IsRunning() bool {
	return d.running.Load()
}

// AsyncStats are cumulative counters of an AsyncDispatcher.
type AsyncStats struct {
	Enqueued      uint64
	Processed     uint64
	Succeeded     uint64
	Failed        uint64
	Panicked      uint64
	Dropped       uint64
	QueueDepth    int
	TotalDuration time.Duration
}

// Stats returns a snapshot of the counters.
func (d *AsyncDispatcher) Stats() AsyncStats {
	return AsyncStats{
		Enqueued:      d.enqueued.Load(),
		Processed:     d.processed.Load(),
		Succeeded:     d.succeeded.Load(),
		Failed:        d.failed.Load(),
		Panicked:      d.panicked.Load(),
		Dropped:       d.dropped.Load(),
		QueueDepth:    d.QueueDepth(),
		TotalDuration: time.Duration(d.totalTimeNs.Load()),
	}
}
