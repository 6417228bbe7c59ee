// Package sql provides an address book stored in SQLite.
package sql

import (
	"context"
	dbsql "database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/database"
	"github.com/jmoiron/sqlx"
)

// Book implements addressbook.Book on the contacts tables.  Several books may share one
// database, rows are partitioned by book ID.
type Book struct {
	db   *sqlx.DB
	book string
}

var (
	_ addressbook.Book         = &Book{}
	_ addressbook.GroupCreator = &Book{}
)

// New opens the shared database at cfg.SQLPath and returns the book stored under id.
func New(id string, cfg config.AddressBook) (addressbook.Book, error) {
	db, err := database.Shared(cfg.SQLPath)
	if err != nil {
		return nil, err
	}
	return NewBook(db, id), nil
}

// NewBook returns the book stored under id in db.
func NewBook(db *sqlx.DB, id string) *Book {
	return &Book{db: db, book: id}
}

// Capabilities implements addressbook.Book.
func (b *Book) Capabilities() addressbook.Capabilities {
	return addressbook.Capabilities{Groups: true}
}

// Search implements addressbook.Book.
func (b *Book) Search(ctx context.Context, field, value string) (int, error) {
	var column string
	switch field {
	case addressbook.FieldEmail:
		column = "email"
	case addressbook.FieldName:
		column = "name"
	default:
		return 0, fmt.Errorf("%w: %q", addressbook.ErrUnsupportedField, field)
	}

	var count int
	query := "SELECT COUNT(*) FROM contacts WHERE book = ? AND " + column + " = ? COLLATE NOCASE"
	if err := b.db.GetContext(ctx, &count, query, b.book, value); err != nil {
		return 0, fmt.Errorf("searching contacts by %s: %w", field, err)
	}
	return count, nil
}

// Insert implements addressbook.Book.
func (b *Book) Insert(ctx context.Context, rec addressbook.Record) (string, error) {
	result, err := b.db.ExecContext(ctx,
		"INSERT INTO contacts (book, name, email, firstname, surname) VALUES (?, ?, ?, ?, ?)",
		b.book, rec.Name, rec.Email, rec.FirstName, rec.Surname,
	)
	if err != nil {
		return "", fmt.Errorf("inserting contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("reading contact id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// CreateGroup implements addressbook.GroupCreator.
func (b *Book) CreateGroup(ctx context.Context, name string) (addressbook.Group, error) {
	result, err := b.db.ExecContext(ctx,
		"INSERT INTO contact_groups (book, name) VALUES (?, ?)", b.book, name)
	if err != nil {
		return addressbook.Group{}, fmt.Errorf("creating group %q: %w", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return addressbook.Group{}, fmt.Errorf("reading group id: %w", err)
	}
	return addressbook.Group{ID: strconv.FormatInt(id, 10), Name: name}, nil
}

// ListGroups implements addressbook.Book.
func (b *Book) ListGroups(ctx context.Context) ([]addressbook.Group, error) {
	rows, err := b.db.QueryxContext(ctx,
		"SELECT id, name FROM contact_groups WHERE book = ? ORDER BY name", b.book)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	groups := []addressbook.Group{}
	for rows.Next() {
		var id int64
		var g addressbook.Group
		if err := rows.Scan(&id, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning group row: %w", err)
		}
		g.ID = strconv.FormatInt(id, 10)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AddToGroup implements addressbook.Book.
func (b *Book) AddToGroup(ctx context.Context, groupID string, contactIDs ...string) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var gid int64
	err = tx.GetContext(ctx, &gid,
		"SELECT id FROM contact_groups WHERE id = ? AND book = ?", groupID, b.book)
	if errors.Is(err, dbsql.ErrNoRows) {
		return fmt.Errorf("group %q: %w", groupID, addressbook.ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("looking up group %q: %w", groupID, err)
	}

	for _, cid := range contactIDs {
		var n int
		err := tx.GetContext(ctx, &n,
			"SELECT COUNT(*) FROM contacts WHERE id = ? AND book = ?", cid, b.book)
		if err != nil {
			return fmt.Errorf("looking up contact %q: %w", cid, err)
		}
		if n == 0 {
			return fmt.Errorf("contact %q not found", cid)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO contact_group_members (group_id, contact_id) VALUES (?, ?)",
			gid, cid)
		if err != nil {
			return fmt.Errorf("adding contact %q to group %q: %w", cid, groupID, err)
		}
	}

	return tx.Commit()
}

// Members returns the contact IDs in the group, ascending.
func (b *Book) Members(ctx context.Context, groupID string) ([]string, error) {
	var ids []int64
	err := b.db.SelectContext(ctx, &ids,
		"SELECT contact_id FROM contact_group_members WHERE group_id = ? ORDER BY contact_id",
		groupID)
	if err != nil {
		return nil, fmt.Errorf("querying group members: %w", err)
	}
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = strconv.FormatInt(id, 10)
	}
	return result, nil
}
