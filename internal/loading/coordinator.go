package loading

import "sync"

// Listener receives the in-flight count after every change.
type Listener func(count int)

// Coordinator counts in-flight remote calls and notifies subscribers on change.
// Only aggregate concurrency is tracked, never per-request identity.
type Coordinator struct {
	// notifyMu serializes a change with its notification so subscribers
	// observe counts in the order they happened.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	count     int
	nextID    int
	listeners map[int]Listener
	closed    bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{listeners: make(map[int]Listener)}
}

// Begin records a dispatched call.
func (c *Coordinator) Begin() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.count++
	count, listeners := c.count, c.snapshotLocked()
	c.mu.Unlock()

	notify(listeners, count)
}

// End records a settled call. The count never drops below zero, which absorbs
// mismatched pairs from aborted or retried calls.
func (c *Coordinator) End() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.count > 0 {
		c.count--
	}
	count, listeners := c.count, c.snapshotLocked()
	c.mu.Unlock()

	notify(listeners, count)
}

// Count returns the current number of in-flight calls.
func (c *Coordinator) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Busy reports whether any call is in flight.
func (c *Coordinator) Busy() bool {
	return c.Count() > 0
}

// Subscribe registers a listener for future changes. Listeners must not call
// Begin or End. The returned function unsubscribes and is safe to call twice.
func (c *Coordinator) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close drops every subscriber. Begin and End keep counting afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.listeners = make(map[int]Listener)
}

func (c *Coordinator) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, count int) {
	for _, l := range listeners {
		l(count)
	}
}
