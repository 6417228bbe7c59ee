package extension

// EventBroker asks its listeners for a verdict on an event, such as whether a sent-to address may
// become a contact candidate.  The first listener with an opinion decides.
type EventBroker[E any, R interface{}] struct {
	listeners[func(E) *R]
}

// Emit offers a copy of the event to each listener in order, and returns the first non-nil
// result.  nil means no listener had an opinion.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	for _, l := range eb.snapshot() {
		if result := l(*event); result != nil {
			return result
		}
	}

	return nil
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
// Listeners should be added most significant first.
func (eb *EventBroker[E, R]) AddListener(name string, listener func(E) *R) {
	eb.add(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	eb.remove(name)
}
