package masonry

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a resize triggers a reposition.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces bursts of Trigger calls into a single call of fn once
// no trigger has arrived for the wait period. fn runs on its own goroutine;
// callers that own state should only post a message from it.
type Debouncer struct {
	wait time.Duration
	fn   func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer. A non-positive wait uses DefaultDebounce.
func NewDebouncer(wait time.Duration, fn func()) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fn)
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
