package loading

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// ShowDelay keeps the overlay hidden for calls that settle quickly.
const ShowDelay = 250 * time.Millisecond

// Overlay derives busy-indicator visibility from a Coordinator: it turns
// visible once the count has stayed positive for ShowDelay and hides as soon
// as the count returns to zero.
type Overlay struct {
	clock       clock.Clock
	unsubscribe func()

	mu        sync.Mutex
	visible   bool
	pending   *clock.Timer
	gen       int
	nextID    int
	listeners map[int]func(visible bool)
}

func NewOverlay(c *Coordinator, clk clock.Clock) *Overlay {
	o := &Overlay{clock: clk, listeners: make(map[int]func(bool))}
	o.unsubscribe = c.Subscribe(o.onCount)
	if c.Busy() {
		o.onCount(c.Count())
	}
	return o
}

// Visible reports whether the busy indicator should be drawn.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Subscribe registers fn for visibility changes and returns an unsubscribe func.
func (o *Overlay) Subscribe(fn func(visible bool)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// Close detaches the overlay from its coordinator and stops any pending timer.
func (o *Overlay) Close() {
	o.unsubscribe()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
}

func (o *Overlay) onCount(count int) {
	o.mu.Lock()
	if count > 0 {
		if o.pending == nil && !o.visible {
			o.gen++
			gen := o.gen
			o.pending = o.clock.AfterFunc(ShowDelay, func() { o.show(gen) })
		}
		o.mu.Unlock()
		return
	}

	o.gen++
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
	changed := o.visible
	o.visible = false
	listeners := o.snapshotLocked()
	o.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(false)
		}
	}
}

func (o *Overlay) show(gen int) {
	o.mu.Lock()
	if gen != o.gen || o.visible {
		o.mu.Unlock()
		return
	}
	o.pending = nil
	o.visible = true
	listeners := o.snapshotLocked()
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(true)
	}
}

func (o *Overlay) snapshotLocked() []func(bool) {
	out := make([]func(bool), 0, len(o.listeners))
	for _, fn := range o.listeners {
		out = append(out, fn)
	}
	return out
}
