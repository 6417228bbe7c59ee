// Package mem implements a session store in process memory.
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/session"
)

// Store implements an in-memory session store.  Sessions idle longer than the TTL are dropped.
type Store struct {
	sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	values  map[string][]byte
	touched time.Time
}

var _ session.Store = &Store{}

// New returns an empty memory store.
func New(cfg config.Session) (session.Store, error) {
	return NewStore(cfg.TTL), nil
}

// NewStore returns an empty memory store, a zero ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.Lock()
	defer s.Unlock()
	s.now = now
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, sess, key string) ([]byte, error) {
	var value []byte
	found := false
	s.withSession(sess, false, func(e *entry) {
		value, found = e.values[key]
	})
	if !found {
		return nil, session.ErrNotExist
	}
	return append([]byte(nil), value...), nil
}

// Has implements session.Store.
func (s *Store) Has(ctx context.Context, sess, key string) (bool, error) {
	found := false
	s.withSession(sess, false, func(e *entry) {
		_, found = e.values[key]
	})
	return found, nil
}

// Put implements session.Store.
func (s *Store) Put(ctx context.Context, sess, key string, value []byte) error {
	s.withSession(sess, true, func(e *entry) {
		e.values[key] = append([]byte(nil), value...)
	})
	return nil
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, sess, key string) error {
	s.withSession(sess, false, func(e *entry) {
		delete(e.values, key)
	})
	return nil
}

// Take implements session.Store.
func (s *Store) Take(ctx context.Context, sess, key string) ([]byte, error) {
	var value []byte
	found := false
	s.withSession(sess, false, func(e *entry) {
		value, found = e.values[key]
		delete(e.values, key)
	})
	if !found {
		return nil, session.ErrNotExist
	}
	return value, nil
}

// Sweep removes every expired session.
func (s *Store) Sweep() int {
	s.Lock()
	defer s.Unlock()

	removed := 0
	now := s.now()
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.touched) > s.ttl
}

// withSession runs f with the session entry while holding the store lock.  If the session is
// missing or expired, f is only called when create is true.
func (s *Store) withSession(sess string, create bool, f func(e *entry)) {
	s.Lock()
	defer s.Unlock()

	now := s.now()
	e, ok := s.sessions[sess]
	if ok && s.expired(e, now) {
		delete(s.sessions, sess)
		ok = false
	}
	if !ok {
		if !create {
			return
		}
		e = &entry{values: make(map[string][]byte)}
		s.sessions[sess] = e
	}
	e.touched = now
	f(e)
}
