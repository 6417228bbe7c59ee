// Package prefs stores per user preferences and resolves whether the plugin is active for a
// user.
package prefs

import (
	"context"
	"fmt"
	"sync"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/database"
	"github.com/jmoiron/sqlx"
)

// UsePlugin is the preference that enables recipient scanning for a user.
const UsePlugin = "use_recipienttocontact"

// Store persists boolean user preferences.
type Store interface {
	// Get returns the stored value and whether one was found.
	Get(ctx context.Context, user, name string) (value bool, found bool, err error)
	// Set stores the value.
	Set(ctx context.Context, user, name string, value bool) error
}

// FromConfig creates the configured Store, sql stores share the database at sqlPath.
func FromConfig(c config.Prefs, sqlPath string) (Store, error) {
	switch c.Type {
	case "memory":
		return NewMemStore(), nil
	case "sql":
		db, err := database.Shared(sqlPath)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil
	}
	return nil, fmt.Errorf("unknown prefs store type configured: %q", c.Type)
}

// Enabled resolves the named preference for user: an explicit stored value wins, otherwise
// defaultValue applies.  A store error falls back to defaultValue and is returned.
func Enabled(ctx context.Context, store Store, user, name string, defaultValue bool) (bool, error) {
	value, found, err := store.Get(ctx, user, name)
	if err != nil {
		return defaultValue, err
	}
	if found {
		return value, nil
	}
	return defaultValue, nil
}

// MemStore keeps preferences in memory.
type MemStore struct {
	sync.RWMutex
	values map[string]map[string]bool
}

var _ Store = &MemStore{}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]map[string]bool)}
}

// Get implements Store.
func (m *MemStore) Get(ctx context.Context, user, name string) (bool, bool, error) {
	m.RLock()
	defer m.RUnlock()
	v, ok := m.values[user][name]
	return v, ok, nil
}

// Set implements Store.
func (m *MemStore) Set(ctx context.Context, user, name string, value bool) error {
	m.Lock()
	defer m.Unlock()
	if m.values[user] == nil {
		m.values[user] = make(map[string]bool)
	}
	m.values[user][name] = value
	return nil
}

// SQLStore keeps preferences in the user_prefs table.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = &SQLStore{}

// NewSQLStore returns a store on db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, user, name string) (bool, bool, error) {
	var values []bool
	err := s.db.SelectContext(ctx, &values,
		"SELECT value FROM user_prefs WHERE username = ? AND name = ?", user, name)
	if err != nil {
		return false, false, fmt.Errorf("reading pref %s: %w", name, err)
	}
	if len(values) == 0 {
		return false, false, nil
	}
	return values[0], true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, user, name string, value bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_prefs (username, name, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (username, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		user, name, value)
	if err != nil {
		return fmt.Errorf("writing pref %s: %w", name, err)
	}
	return nil
}
