package filter

import (
	"sync"
	"time"
)

// Debouncer collapses rapid search-term updates into a single commit after
// a quiet period. Each Set resets the timer, so typing "abc" inside the
// window commits once with "abc".
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	commit func(term string)
}

// NewDebouncer returns a debouncer that invokes commit once per quiet
// period. commit runs on a timer goroutine.
func NewDebouncer(delay time.Duration, commit func(term string)) *Debouncer {
	return &Debouncer{delay: delay, commit: commit}
}

// Set schedules term for commit, cancelling any pending one.
func (d *Debouncer) Set(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.commit(term) })
}

// Flush commits a pending term immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	t := d.timer
	d.timer = nil
	d.mu.Unlock()
	if t != nil && t.Stop() {
		// Stop returned true, so the callback never fired; fire it now by
		// resetting to zero delay.
		t.Reset(0)
	}
}

// Stop cancels any pending commit.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
