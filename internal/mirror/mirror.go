package mirror

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Mirror receives a copy of every accepted room status.
type Mirror interface {
	Write(ctx context.Context, room, status string) error
}

// Result labels reported to an Observer.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultDropped = "dropped"
)

// Observer is told the outcome of every mirror write. May be nil.
type Observer func(result string)

type write struct {
	room   string
	status string
}

// Async drains writes to a Mirror on one goroutine so callers never block.
// Writes are applied in the order they were enqueued.
type Async struct {
	target  Mirror
	log     *zap.Logger
	observe Observer
	timeout time.Duration

	queue chan write

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts the drain goroutine. queueSize bounds pending writes.
func NewAsync(target Mirror, queueSize int, log *zap.Logger, observe Observer) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}
	if observe == nil {
		observe = func(string) {}
	}
	a := &Async{
		target:  target,
		log:     log,
		observe: observe,
		timeout: 2 * time.Second,
		queue:   make(chan write, queueSize),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Enqueue schedules a write and returns immediately. It reports false when
// the write was dropped because the queue is full or the mirror is closed.
func (a *Async) Enqueue(room, status string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.observe(ResultDropped)
		return false
	}
	select {
	case a.queue <- write{room: room, status: status}:
		return true
	default:
		a.log.Warn("mirror queue full, dropping write", zap.String("room", room), zap.String("status", status))
		a.observe(ResultDropped)
		return false
	}
}

// Close stops accepting writes, flushes what is queued and waits for the
// drain goroutine, or for ctx to expire.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for w := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.target.Write(ctx, w.room, w.status)
		cancel()
		if err != nil {
			a.log.Warn("mirror write failed", zap.String("room", w.room), zap.Error(err))
			a.observe(ResultError)
			continue
		}
		a.observe(ResultOK)
	}
}
