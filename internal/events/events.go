// Package events coalesces bursts of redraw requests into a single deferred action.
package events

import (
	"sync"
	"time"

	"chartsync/internal/logger"
)

// Engine owns one shared timer slot. A delayed trigger replaces whatever is pending, so
// within a debounce window only the last requested action runs.
type Engine struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64

	// held while a deferred action runs; nil runs it unguarded
	lock sync.Locker
	log  *logger.Logger
}

// New creates an engine. Deferred actions run while holding lock, which lets callers
// serialize them with their own synchronous work.
func New(lock sync.Locker) *Engine {
	return &Engine{
		lock: lock,
		log:  logger.GetGlobalLogger().WithComponent("events"),
	}
}

// Trigger runs fn now when delay is zero. Otherwise it schedules fn after delay, cancelling
// any action still pending from an earlier trigger.
func (e *Engine) Trigger(fn func(), delay time.Duration) {
	if fn == nil {
		return
	}
	if delay <= 0 {
		fn()
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
		e.log.Debug("replacing pending action", map[string]interface{}{"delay_ms": delay.Milliseconds()})
	}
	e.gen++
	gen := e.gen
	e.pending = fn
	e.timer = time.AfterFunc(delay, func() { e.fire(gen) })
}

// Pending reports whether a deferred action is waiting.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// Cancel drops the pending action, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clear()
}

// Flush runs the pending action immediately on the calling goroutine. The caller is
// expected to already hold the engine's lock if it has one.
func (e *Engine) Flush() {
	e.mu.Lock()
	fn := e.pending
	e.clear()
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.pending == nil {
		// superseded between the timer firing and this callback taking the lock
		e.mu.Unlock()
		return
	}
	fn := e.pending
	e.clear()
	e.mu.Unlock()

	if e.lock != nil {
		e.lock.Lock()
		defer e.lock.Unlock()
	}
	fn()
}

func (e *Engine) clear() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
	e.gen++
}
