package recipient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/session"
)

// DialogData is everything the client needs to render the contact dialog.
type DialogData struct {
	Contacts     []Candidate              `json:"contacts"`
	AddressBooks []addressbook.Descriptor `json:"address_books"`
	UseGroups    bool                     `json:"use_groups"`
}

// Buffer serves buffered candidates to the dialog.
type Buffer struct {
	Sessions  session.Store
	Sources   []addressbook.Descriptor
	UseGroups bool
}

// Pending reports whether candidates are waiting for sess.
func (b *Buffer) Pending(ctx context.Context, sess string) (bool, error) {
	return b.Sessions.Has(ctx, sess, BufferKey)
}

// Populate returns and clears the buffered candidates for sess, or nil when there are none.
func (b *Buffer) Populate(ctx context.Context, sess string) (*DialogData, error) {
	raw, err := b.Sessions.Take(ctx, sess, BufferKey)
	if errors.Is(err, session.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("taking candidates: %w", err)
	}

	var contacts []Candidate
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}
	sources := b.Sources
	if sources == nil {
		sources = []addressbook.Descriptor{}
	}
	return &DialogData{Contacts: contacts, AddressBooks: sources, UseGroups: b.UseGroups}, nil
}
