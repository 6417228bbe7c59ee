// Package msghub relays "contacts pending" notifications to monitor listeners, such as the
// websocket a webmail client keeps open.
package msghub

import (
	"container/ring"
	"context"

	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
)

// Length of msghub operation queue
const opChanLen = 100

// Listener receives the contents of the history buffer, followed by new events.
type Listener interface {
	Receive(ev event.CandidatesBuffered) error
	Clear(session string) error
}

// Hub relays events on to its listeners
type Hub struct {
	// history buffer, points next event to write.  Proceeding non-nil entry is oldest event
	history   *ring.Ring
	listeners map[Listener]struct{} // listeners interested in new events
	opChan    chan func(h *Hub)     // operations queued for this actor
}

// New constructs a new Hub which will cache historyLen events in memory for playback to future
// listeners.  Start must be called to process operations.
func New(historyLen int) *Hub {
	return &Hub{
		history:   ring.New(historyLen),
		listeners: make(map[Listener]struct{}),
		opChan:    make(chan func(h *Hub), opChanLen),
	}
}

// Init is an extension.Initializer, it subscribes the hub to the buffer events of a request's
// host.
func (hub *Hub) Init(_ context.Context, host *extension.Host, _ event.Request) error {
	host.Events.AfterCandidatesBuffered.AddListener("msghub", hub.Dispatch)
	host.Events.AfterBufferConsumed.AddListener("msghub",
		func(ev event.BufferConsumed) {
			hub.Clear(ev.Session)
		})
	return nil
}

// Start Hub processing loop.
func (hub *Hub) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Shutdown
			close(hub.opChan)
			return
		case op := <-hub.opChan:
			op(hub)
		}
	}
}

// Dispatch queues an event for broadcast by the hub.  The event will be placed into the history
// buffer and then relayed to all registered listeners.
func (hub *Hub) Dispatch(ev event.CandidatesBuffered) {
	hub.opChan <- func(h *Hub) {
		if h.history != nil {
			// Add to history buffer
			h.history.Value = ev
			h.history = h.history.Next()

			// Deliver event to all listeners, removing listeners if they return an error
			for l := range h.listeners {
				if err := l.Receive(ev); err != nil {
					delete(h.listeners, l)
				}
			}
		}
	}
}

// Clear removes the session's events from history and tells listeners its buffer is gone.
func (hub *Hub) Clear(session string) {
	hub.opChan <- func(h *Hub) {
		if h.history == nil {
			return
		}
		// Compact history, keeping order, so removed entries do not leave holes.
		kept := make([]event.CandidatesBuffered, 0, h.history.Len())
		h.history.Do(func(v any) {
			if ev, ok := v.(event.CandidatesBuffered); ok && ev.Session != session {
				kept = append(kept, ev)
			}
		})
		for range h.history.Len() {
			h.history.Value = nil
			h.history = h.history.Next()
		}
		for _, ev := range kept {
			h.history.Value = ev
			h.history = h.history.Next()
		}

		for l := range h.listeners {
			if err := l.Clear(session); err != nil {
				delete(h.listeners, l)
			}
		}
	}
}

// AddListener registers a listener to receive broadcasted events.
func (hub *Hub) AddListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		// Playback log
		h.history.Do(func(v any) {
			if v != nil {
				_ = l.Receive(v.(event.CandidatesBuffered))
			}
		})

		// Add to listeners
		h.listeners[l] = struct{}{}
	}
}

// RemoveListener deletes a listener registration, it will cease to receive events.
func (hub *Hub) RemoveListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		delete(h.listeners, l)
	}
}

// Sync blocks until the msghub has processed its queue up to this point, useful
// for unit tests.
func (hub *Hub) Sync() {
	done := make(chan struct{})
	hub.opChan <- func(h *Hub) {
		close(done)
	}
	<-done
}
