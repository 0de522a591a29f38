// Package timing provides debounce and throttle helpers for bursty UI events.
package timing

import (
	"sync"
	"time"
)

// Debouncer runs the most recent function once no new call arrived for the wait duration.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn, replacing any pending call.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel cancels any pending debounced function call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Debounce wraps fn so that bursts of calls collapse into one trailing call.
// The returned stop function cancels a pending call.
func Debounce(fn func(), wait time.Duration) (trigger func(), stop func()) {
	d := NewDebouncer(wait)
	return func() { d.Debounce(fn) }, d.Cancel
}

// Throttler lets at most one call through per interval; extra calls are dropped.
type Throttler struct {
	mu    sync.Mutex
	limit time.Duration
	last  time.Time
	now   func() time.Time
}

// NewThrottler creates a throttler with the given interval
func NewThrottler(limit time.Duration) *Throttler {
	return &Throttler{limit: limit, now: time.Now}
}

// Do runs fn unless a call already ran within the interval. It reports whether fn ran.
func (t *Throttler) Do(fn func()) bool {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.limit {
		t.mu.Unlock()
		return false
	}
	t.last = now
	t.mu.Unlock()

	fn()
	return true
}

// Throttle wraps fn so it runs at most once per limit.
func Throttle(fn func(), limit time.Duration) func() bool {
	t := NewThrottler(limit)
	return func() bool { return t.Do(fn) }
}
