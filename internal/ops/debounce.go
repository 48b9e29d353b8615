package ops

import (
	"sync"
	"time"
)

const titleDebounce = 600 * time.Millisecond

// debouncer coalesces rapid per-card persistence calls: each schedule
// replaces the card's pending timer, so only the most recent write within
// the window reaches the persistence API. Flush fires a pending call
// immediately (blur/commit), Cancel drops it.
type debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	// pending keeps the latest scheduled fn per card so Flush can run
	// exactly what the timer would have.
	pending map[string]func()
}

func newDebouncer(delay time.Duration) *debouncer {
	if delay <= 0 {
		delay = titleDebounce
	}
	return &debouncer{
		delay:   delay,
		timers:  map[string]*time.Timer{},
		pending: map[string]func(){},
	}
}

// Schedule arms (or re-arms) the timer for cardID. The most recent
// scheduling wins; earlier pending calls for the same card never fire.
func (d *debouncer) Schedule(cardID string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[cardID] = fn
	if t, ok := d.timers[cardID]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[cardID] = time.AfterFunc(d.delay, func() { d.fire(cardID) })
}

func (d *debouncer) fire(cardID string) {
	d.mu.Lock()
	fn := d.pending[cardID]
	delete(d.pending, cardID)
	delete(d.timers, cardID)
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Flush runs cardID's pending call now, if any.
func (d *debouncer) Flush(cardID string) {
	d.mu.Lock()
	fn := d.pending[cardID]
	delete(d.pending, cardID)
	if t, ok := d.timers[cardID]; ok {
		t.Stop()
		delete(d.timers, cardID)
	}
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops cardID's pending call without running it.
func (d *debouncer) Cancel(cardID string) {
	d.mu.Lock()
	if t, ok := d.timers[cardID]; ok {
		t.Stop()
		delete(d.timers, cardID)
	}
	delete(d.pending, cardID)
	d.mu.Unlock()
}
