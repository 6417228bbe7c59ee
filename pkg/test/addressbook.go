package test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/addressbook/mem"
)

// ErrBackend is returned by BookStub when a failure is requested.
var ErrBackend = errors.New("backend failure")

// BookStub wraps a memory book, recording searches and failing on demand.
type BookStub struct {
	*mem.Book
	mu sync.Mutex

	// FailSearch makes every Search return ErrBackend.
	FailSearch bool
	// FailInsertFor makes Insert return ErrBackend for these lowercased emails.
	FailInsertFor map[string]bool
	// FailGroups makes ListGroups and AddToGroup return ErrBackend.
	FailGroups bool
	// NoGroups reports the book as lacking group support.
	NoGroups bool

	searches []string
}

var _ addressbook.Book = &BookStub{}

// NewBook creates a BookStub containing a contact for each of the given emails.
func NewBook(emails ...string) *BookStub {
	b := &BookStub{Book: mem.NewBook(), FailInsertFor: make(map[string]bool)}
	for _, e := range emails {
		if _, err := b.Book.Insert(context.Background(), addressbook.Record{Name: e, Email: e}); err != nil {
			panic(err)
		}
	}
	return b
}

// Capabilities implements addressbook.Book.
func (b *BookStub) Capabilities() addressbook.Capabilities {
	caps := b.Book.Capabilities()
	caps.Groups = caps.Groups && !b.NoGroups
	return caps
}

// Search implements addressbook.Book.
func (b *BookStub) Search(ctx context.Context, field, value string) (int, error) {
	b.mu.Lock()
	b.searches = append(b.searches, value)
	b.mu.Unlock()
	if b.FailSearch {
		return 0, ErrBackend
	}
	return b.Book.Search(ctx, field, value)
}

// Searches returns the values searched for so far, in order.
func (b *BookStub) Searches() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.searches...)
}

// Insert implements addressbook.Book.
func (b *BookStub) Insert(ctx context.Context, rec addressbook.Record) (string, error) {
	if b.FailInsertFor[strings.ToLower(rec.Email)] {
		return "", ErrBackend
	}
	return b.Book.Insert(ctx, rec)
}

// ListGroups implements addressbook.Book.
func (b *BookStub) ListGroups(ctx context.Context) ([]addressbook.Group, error) {
	if b.FailGroups {
		return nil, ErrBackend
	}
	if b.NoGroups {
		return []addressbook.Group{}, nil
	}
	return b.Book.ListGroups(ctx)
}

// AddToGroup implements addressbook.Book.
func (b *BookStub) AddToGroup(ctx context.Context, groupID string, contactIDs ...string) error {
	if b.FailGroups {
		return ErrBackend
	}
	return b.Book.AddToGroup(ctx, groupID, contactIDs...)
}
