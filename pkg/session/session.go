// Package session holds per webmail session state, such as the buffer of recipients awaiting the
// contact dialog.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/inbucket/rcptcontact/pkg/config"
)

// ErrNotExist indicates the requested session value does not exist.
var ErrNotExist = errors.New("session value does not exist")

// Store is the interface every session backend implements.  Values are scoped by session ID and
// key.
type Store interface {
	// Get returns the value, or ErrNotExist.
	Get(ctx context.Context, session, key string) ([]byte, error)
	// Has reports whether a value is present.
	Has(ctx context.Context, session, key string) (bool, error)
	// Put stores the value, replacing any previous one.
	Put(ctx context.Context, session, key string, value []byte) error
	// Remove deletes the value, if present.
	Remove(ctx context.Context, session, key string) error
	// Take returns the value and removes it in one operation, or returns ErrNotExist.  Of several
	// concurrent callers at most one receives the value.
	Take(ctx context.Context, session, key string) ([]byte, error)
}

// Constructors maps session store type names to a constructor function.
var Constructors = make(map[string]func(config.Session) (Store, error))

// FromConfig creates an instance of the Store based on the provided config.
func FromConfig(c config.Session) (Store, error) {
	if ctor, ok := Constructors[c.Type]; ok {
		return ctor(c)
	}

	return nil, fmt.Errorf("unknown session store type configured: %q", c.Type)
}
