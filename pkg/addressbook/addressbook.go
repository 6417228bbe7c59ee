// Package addressbook contains implementation independent address book logic.
package addressbook

import (
	"context"
	"errors"
)

var (
	// ErrNotExist indicates the requested address book or group does not exist.
	ErrNotExist = errors.New("address book does not exist")

	// ErrReadOnly indicates the address book does not accept new contacts.
	ErrReadOnly = errors.New("address book is read only")

	// ErrUnsupportedField indicates a search on a field the book does not index.
	ErrUnsupportedField = errors.New("unsupported search field")
)

// Search fields understood by every Book.
const (
	FieldEmail = "email"
	FieldName  = "name"
)

// Record holds the details of a contact to be inserted.
type Record struct {
	Name      string
	Email     string
	FirstName string
	Surname   string
}

// Group is a named set of contacts within a single address book.
type Group struct {
	ID   string `json:"ID"`
	Name string `json:"name"`
}

// Capabilities describes optional Book features.
type Capabilities struct {
	Groups   bool
	ReadOnly bool
}

// Book is the interface every address book backend implements.
type Book interface {
	// Search returns the number of contacts whose field matches value exactly, ignoring case.
	Search(ctx context.Context, field, value string) (int, error)
	// Insert creates a contact and returns its ID.
	Insert(ctx context.Context, rec Record) (string, error)
	// ListGroups returns the groups of the book, empty when groups are unsupported.
	ListGroups(ctx context.Context) ([]Group, error)
	// AddToGroup adds the contacts to the group.
	AddToGroup(ctx context.Context, groupID string, contactIDs ...string) error
	// Capabilities reports optional features.
	Capabilities() Capabilities
}

// GroupCreator is implemented by books that can create groups.
type GroupCreator interface {
	CreateGroup(ctx context.Context, name string) (Group, error)
}

// Descriptor describes a configured address book to clients.
type Descriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Groups   bool   `json:"groups"`
	ReadOnly bool   `json:"readonly"`
}
