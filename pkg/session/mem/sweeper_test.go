package mem_test

import (
	"context"
	"testing"
	"time"

	"github.com/inbucket/rcptcontact/pkg/session/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := mem.NewStore(time.Minute)
	store.SetClock(func() time.Time { return now })
	require.NoError(t, store.Put(ctx, "a", "k", []byte("v")))

	sw := mem.NewSweeper(store, time.Minute, make(chan bool))
	assert.Zero(t, sw.DoSweep())

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Put(ctx, "b", "k", []byte("v")))
	assert.Equal(t, 1, sw.DoSweep())
	assert.Equal(t, 1, store.Len())
}

func TestSweeperDisabled(t *testing.T) {
	sw := mem.NewSweeper(mem.NewStore(0), time.Minute, make(chan bool))
	sw.Start()
	// Join returns immediately when the sweeper never ran.
	sw.Join()

	sw = mem.NewSweeper(mem.NewStore(time.Hour), 0, make(chan bool))
	sw.Start()
	sw.Join()
}

func TestSweeperShutdown(t *testing.T) {
	shutdown := make(chan bool)
	sw := mem.NewSweeper(mem.NewStore(time.Hour), time.Millisecond, shutdown)
	sw.Start()
	time.Sleep(5 * time.Millisecond)
	close(shutdown)

	done := make(chan struct{})
	go func() {
		sw.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Sweeper did not shut down")
	}
}
