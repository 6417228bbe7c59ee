package test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/inbucket/rcptcontact/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SessionFactory returns a new, empty session store for the test suite.
type SessionFactory func() (store session.Store, destroy func(), err error)

// SessionSuite runs a set of general tests on the provided session Store.
func SessionSuite(t *testing.T, factory SessionFactory) {
	testCases := []struct {
		name string
		test func(*testing.T, session.Store)
	}{
		{"get missing", testSessionGetMissing},
		{"put get", testSessionPutGet},
		{"scoping", testSessionScoping},
		{"remove", testSessionRemove},
		{"take once", testSessionTakeOnce},
		{"concurrent take", testSessionConcurrentTake},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, destroy, err := factory()
			require.NoError(t, err)
			defer destroy()
			tc.test(t, store)
		})
	}
}

func testSessionGetMissing(t *testing.T, store session.Store) {
	ctx := context.Background()
	_, err := store.Get(ctx, "s1", "k")
	assert.True(t, errors.Is(err, session.ErrNotExist), "got %v", err)

	has, err := store.Has(ctx, "s1", "k")
	require.NoError(t, err)
	assert.False(t, has)

	// Removing a missing value is not an error.
	assert.NoError(t, store.Remove(ctx, "s1", "k"))
}

func testSessionPutGet(t *testing.T, store session.Store) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("two")))

	got, err := store.Get(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	has, err := store.Has(ctx, "s1", "k")
	require.NoError(t, err)
	assert.True(t, has)
}

func testSessionScoping(t *testing.T, store session.Store) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("mine")))

	_, err := store.Get(ctx, "s2", "k")
	assert.True(t, errors.Is(err, session.ErrNotExist))
	_, err = store.Get(ctx, "s1", "other")
	assert.True(t, errors.Is(err, session.ErrNotExist))
}

func testSessionRemove(t *testing.T, store session.Store) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("v")))
	require.NoError(t, store.Remove(ctx, "s1", "k"))

	_, err := store.Get(ctx, "s1", "k")
	assert.True(t, errors.Is(err, session.ErrNotExist))
}

func testSessionTakeOnce(t *testing.T, store session.Store) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("v")))

	got, err := store.Take(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	_, err = store.Take(ctx, "s1", "k")
	assert.True(t, errors.Is(err, session.ErrNotExist))
}

func testSessionConcurrentTake(t *testing.T, store session.Store) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", "k", []byte("v")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Take(ctx, "s1", "k"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
