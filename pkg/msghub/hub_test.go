package msghub

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testListener implements the Listener interface, mock for unit tests
type testListener struct {
	events     []*event.CandidatesBuffered // received events
	clears     []string                    // received clears
	wantEvents int                         // how many events this listener wants to receive
	errorAfter int                         // when != 0, event count until Receive() begins returning error
	gotEvents  int

	done     chan struct{} // closed once we have received wantEvents
	overflow chan struct{} // closed if we receive wantEvents+1
}

func newTestListener(want int) *testListener {
	l := &testListener{
		events:     make([]*event.CandidatesBuffered, 0, want*2),
		clears:     make([]string, 0, want*2),
		wantEvents: want,
		done:       make(chan struct{}),
		overflow:   make(chan struct{}),
	}
	if want == 0 {
		close(l.done)
	}
	return l
}

// Receive an event, store it in the events slice, close applicable channels, and return an error
// if instructed
func (l *testListener) Receive(ev event.CandidatesBuffered) error {
	l.gotEvents++
	l.events = append(l.events, &ev)
	if l.gotEvents == l.wantEvents {
		close(l.done)
	}
	if l.gotEvents == l.wantEvents+1 {
		close(l.overflow)
	}
	if l.errorAfter > 0 && l.gotEvents > l.errorAfter {
		return errors.New("too many events")
	}
	return nil
}

func (l *testListener) Clear(session string) error {
	l.clears = append(l.clears, session)
	return nil
}

// String formats the got vs wanted event counts
func (l *testListener) String() string {
	return fmt.Sprintf("got %v events, wanted %v", len(l.events), l.wantEvents)
}

func buffered(session string, count int) event.CandidatesBuffered {
	return event.CandidatesBuffered{Request: event.Request{Session: session}, Count: count}
}

func TestHubZeroLen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(0)
	go hub.Start(ctx)
	for i := 0; i < 100; i++ {
		hub.Dispatch(buffered("s", i))
	}
	hub.Clear("s")
	hub.AddListener(newTestListener(0))
	hub.Sync()
	// Ensures Hub doesn't panic
}

func TestHubOneListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)
	l := newTestListener(1)

	hub.AddListener(l)
	hub.Dispatch(buffered("s", 1))

	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Error("Timeout:", l)
	}
}

func TestHubRemoveListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)
	l := newTestListener(1)

	hub.AddListener(l)
	hub.Dispatch(buffered("s", 1))
	hub.RemoveListener(l)
	hub.Dispatch(buffered("s", 2))
	hub.Sync()

	select {
	case <-l.overflow:
		t.Error(l)
	case <-time.After(50 * time.Millisecond):
		// Expected result, no overflow
	}
}

func TestHubRemoveListenerOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)

	// error after 1 means listener should receive 2 events before being removed
	l := newTestListener(2)
	l.errorAfter = 1

	hub.AddListener(l)
	for i := 0; i < 4; i++ {
		hub.Dispatch(buffered("s", i))
	}
	hub.Sync()

	select {
	case <-l.overflow:
		t.Error(l)
	case <-time.After(50 * time.Millisecond):
		// Expected result, no overflow
	}
}

func TestHubHistoryReplayWrap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)

	for i := 0; i < 20; i++ {
		hub.Dispatch(buffered(fmt.Sprintf("s%d", i), i))
	}

	l := newTestListener(5)
	hub.AddListener(l)
	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("Timeout:", l)
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, i+15, l.events[i].Count)
	}
}

func TestHubClearRemovesSessionHistory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)

	live := newTestListener(3)
	hub.AddListener(live)
	hub.Dispatch(buffered("a", 1))
	hub.Dispatch(buffered("b", 2))
	hub.Dispatch(buffered("a", 3))
	hub.Clear("a")
	hub.Clear("zzz")
	hub.Sync()
	assert.Equal(t, []string{"a", "zzz"}, live.clears)

	l := newTestListener(1)
	hub.AddListener(l)
	hub.Sync()
	require.Len(t, l.events, 1)
	assert.Equal(t, "b", l.events[0].Session)

	// Buffer keeps its configured size.
	assert.Equal(t, 5, hub.history.Len())
}

func TestHubInitSubscribesToHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := New(5)
	go hub.Start(ctx)
	l := newTestListener(1)
	hub.AddListener(l)

	host := extension.NewHost()
	require.NoError(t, hub.Init(ctx, host, event.Request{}))
	ev := buffered("s", 4)
	host.Events.AfterCandidatesBuffered.Emit(&ev)

	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("Timeout:", l)
	}
	assert.Equal(t, 4, l.events[0].Count)
}

func TestHubContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := New(5)
	go hub.Start(ctx)
	l := newTestListener(1)

	hub.AddListener(l)
	hub.Dispatch(buffered("s", 1))
	hub.Sync()
	cancel()

	select {
	case <-l.overflow:
		t.Error(l)
	case <-time.After(50 * time.Millisecond):
		// Expected result, no overflow
	}
}
