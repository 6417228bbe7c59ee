package extension

// FilterBroker passes an event through every listener in order, each receiving the output of the
// one before it.  Render and preference hooks use it to extend what the webmail host is about to
// send.
type FilterBroker[E any] struct {
	listeners[func(E) E]
}

// Emit passes a copy of the event through each listener, and returns the final value.
func (fb *FilterBroker[E]) Emit(event *E) *E {
	result := *event
	for _, l := range fb.snapshot() {
		result = l(result)
	}

	return &result
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (fb *FilterBroker[E]) AddListener(name string, listener func(E) E) {
	fb.add(name, listener)
}

// RemoveListener unregisters the named listener.
func (fb *FilterBroker[E]) RemoveListener(name string) {
	fb.remove(name)
}
