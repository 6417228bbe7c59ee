package extension

import (
	"errors"
	"time"
)

// AsyncEventBroker notifies its listeners of something that already happened, a buffered
// candidate list or a saved contact.  Each listener runs in its own goroutine and returns nothing.
type AsyncEventBroker[E any] struct {
	listeners[func(E)]
}

// Emit hands a copy of the event to every listener in parallel.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	for _, l := range eb.snapshot() {
		go l(*event)
	}
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.add(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.remove(name)
}

// AsyncTestListener registers a listener buffering up to capacity events, and returns a func
// that waits for the next one.  The listener removes itself once capacity events were read.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	events := make(chan E, capacity)
	eb.AddListener(name, func(msg E) { events <- msg })

	count := 0
	return func() (*E, error) {
		count++
		defer func() {
			if count >= capacity {
				eb.RemoveListener(name)
				close(events)
			}
		}()

		select {
		case event := <-events:
			return &event, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("timeout waiting for event")
		}
	}
}
