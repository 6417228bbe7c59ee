package extension

import (
	"context"
	"fmt"

	"github.com/inbucket/rcptcontact/pkg/extension/event"
)

// Host defines extension points for rcptcontact.  A Host lives for a single request, the
// registered Initializers decide which listeners and actions it carries.
type Host struct {
	Events  *Events
	Actions *Actions
}

// Events defines all the event types supported by the extension host.
//
// Before-events provide an opportunity for extensions to alter how rcptcontact responds to that
// type of event.  These events are processed synchronously.  The first listener in the list to
// respond with a non-nil value will determine the response, and the remaining listeners will not
// be called.
//
// After-events allow extensions to take an action after an event has completed.  These events are
// processed asynchronously.
//
// Filter events mirror the webmail host's render and preferences hooks: every listener sees and
// may rewrite the value produced by the previous one.
type Events struct {
	AfterBufferConsumed     AsyncEventBroker[event.BufferConsumed]
	AfterCandidatesBuffered AsyncEventBroker[event.CandidatesBuffered]
	AfterContactSaved       AsyncEventBroker[event.ContactSaved]
	BeforeRecipientChecked  EventBroker[event.Recipient, bool]
	MessageSent             EventBroker[event.SentMessage, Void]
	PreferencesList         FilterBroker[event.PrefsList]
	PreferencesSave         FilterBroker[event.PrefsSave]
	PreferencesSectionsList FilterBroker[event.PrefsSections]
	RenderMailboxList       FilterBroker[event.Page]
}

// Void indicates the event emitter will ignore any value returned by listeners.
type Void struct{}

// Initializer registers listeners and actions on a Host created for req.
type Initializer func(ctx context.Context, host *Host, req event.Request) error

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}, Actions: &Actions{}}
}

// NewRequestHost creates a Host for req and runs each initializer against it, in order.
func NewRequestHost(ctx context.Context, req event.Request, inits ...Initializer) (*Host, error) {
	host := NewHost()
	for i, initFn := range inits {
		if err := initFn(ctx, host, req); err != nil {
			return nil, fmt.Errorf("extension initializer %d: %w", i, err)
		}
	}

	return host, nil
}
