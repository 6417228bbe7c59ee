// Package mem provides an in-memory address book, used for collected recipients and in tests.
package mem

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
)

// Book implements an in-memory address book.
type Book struct {
	sync.RWMutex
	contacts map[string]addressbook.Record
	groups   []addressbook.Group
	members  map[string]map[string]bool // Group ID to contact IDs.
	readOnly bool
}

var (
	_ addressbook.Book         = &Book{}
	_ addressbook.GroupCreator = &Book{}
)

// New returns an empty memory book.
func New(id string, cfg config.AddressBook) (addressbook.Book, error) {
	return NewBook(), nil
}

// NewBook returns an empty, writable memory book.
func NewBook() *Book {
	return &Book{
		contacts: make(map[string]addressbook.Record),
		members:  make(map[string]map[string]bool),
	}
}

// SetReadOnly controls whether Insert is accepted.
func (b *Book) SetReadOnly(readOnly bool) {
	b.Lock()
	defer b.Unlock()
	b.readOnly = readOnly
}

// Capabilities implements addressbook.Book.
func (b *Book) Capabilities() addressbook.Capabilities {
	b.RLock()
	defer b.RUnlock()
	return addressbook.Capabilities{Groups: true, ReadOnly: b.readOnly}
}

// Search implements addressbook.Book.
func (b *Book) Search(ctx context.Context, field, value string) (int, error) {
	b.RLock()
	defer b.RUnlock()

	count := 0
	for _, rec := range b.contacts {
		var v string
		switch field {
		case addressbook.FieldEmail:
			v = rec.Email
		case addressbook.FieldName:
			v = rec.Name
		default:
			return 0, fmt.Errorf("%w: %q", addressbook.ErrUnsupportedField, field)
		}
		if strings.EqualFold(v, value) {
			count++
		}
	}
	return count, nil
}

// Insert implements addressbook.Book.
func (b *Book) Insert(ctx context.Context, rec addressbook.Record) (string, error) {
	b.Lock()
	defer b.Unlock()

	if b.readOnly {
		return "", addressbook.ErrReadOnly
	}
	id := uuid.New().String()
	b.contacts[id] = rec
	return id, nil
}

// Contact returns the record stored under id.
func (b *Book) Contact(id string) (addressbook.Record, bool) {
	b.RLock()
	defer b.RUnlock()
	rec, ok := b.contacts[id]
	return rec, ok
}

// Len returns the number of stored contacts.
func (b *Book) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.contacts)
}

// CreateGroup implements addressbook.GroupCreator.
func (b *Book) CreateGroup(ctx context.Context, name string) (addressbook.Group, error) {
	b.Lock()
	defer b.Unlock()

	for _, g := range b.groups {
		if g.Name == name {
			return addressbook.Group{}, fmt.Errorf("group %q already exists", name)
		}
	}
	g := addressbook.Group{ID: uuid.New().String(), Name: name}
	b.groups = append(b.groups, g)
	b.members[g.ID] = make(map[string]bool)
	return g, nil
}

// ListGroups implements addressbook.Book.
func (b *Book) ListGroups(ctx context.Context) ([]addressbook.Group, error) {
	b.RLock()
	defer b.RUnlock()
	return append([]addressbook.Group{}, b.groups...), nil
}

// AddToGroup implements addressbook.Book.
func (b *Book) AddToGroup(ctx context.Context, groupID string, contactIDs ...string) error {
	b.Lock()
	defer b.Unlock()

	members, ok := b.members[groupID]
	if !ok {
		return fmt.Errorf("group %q: %w", groupID, addressbook.ErrNotExist)
	}
	for _, id := range contactIDs {
		if _, ok := b.contacts[id]; !ok {
			return fmt.Errorf("contact %q not found", id)
		}
	}
	for _, id := range contactIDs {
		members[id] = true
	}
	return nil
}

// Members returns the contact IDs in the group.
func (b *Book) Members(groupID string) []string {
	b.RLock()
	defer b.RUnlock()

	ids := make([]string, 0, len(b.members[groupID]))
	for id := range b.members[groupID] {
		ids = append(ids, id)
	}
	return ids
}
