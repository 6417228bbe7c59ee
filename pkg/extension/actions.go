package extension

import (
	"context"
	"sort"
	"sync"

	"github.com/inbucket/rcptcontact/pkg/extension/event"
)

// ActionFunc handles a named client action, returning the command the client should dispatch.
type ActionFunc func(ctx context.Context, req *event.ActionRequest) (*event.Command, error)

// Actions maps client action names to their handlers.
type Actions struct {
	sync.RWMutex
	handlers map[string]ActionFunc
}

// Register adds or replaces the handler for the named action.
func (a *Actions) Register(name string, handler ActionFunc) {
	a.Lock()
	defer a.Unlock()

	if a.handlers == nil {
		a.handlers = make(map[string]ActionFunc)
	}
	a.handlers[name] = handler
}

// Lookup returns the handler registered for name.
func (a *Actions) Lookup(name string) (ActionFunc, bool) {
	a.RLock()
	defer a.RUnlock()

	h, ok := a.handlers[name]
	return h, ok
}

// Names returns the registered action names, sorted.
func (a *Actions) Names() []string {
	a.RLock()
	defer a.RUnlock()

	names := make([]string, 0, len(a.handlers))
	for name := range a.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
