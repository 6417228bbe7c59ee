package extension

import (
	"slices"
	"sync"
)

// listeners is the named, ordered listener list shared by the brokers.  Registering a name that is
// already present replaces the old listener and moves the name to the end of the list.
type listeners[F any] struct {
	mu    sync.RWMutex
	names []string
	funcs []F
}

func (l *listeners[F]) add(name string, fn F) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lockedRemove(name)
	l.names = append(l.names, name)
	l.funcs = append(l.funcs, fn)
}

func (l *listeners[F]) remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lockedRemove(name)
}

// snapshot returns the listener functions in order.  Emitting from a snapshot lets a listener
// register or remove listeners without deadlocking the broker.
func (l *listeners[F]) snapshot() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.funcs)
}

// Names returns the registered listener names, most significant first.
func (l *listeners[F]) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.names)
}

// Len returns the number of registered listeners.
func (l *listeners[F]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.funcs)
}

func (l *listeners[F]) lockedRemove(name string) {
	if i := slices.Index(l.names, name); i >= 0 {
		l.names = slices.Delete(l.names, i, i+1)
		l.funcs = slices.Delete(l.funcs, i, i+1)
	}
}
