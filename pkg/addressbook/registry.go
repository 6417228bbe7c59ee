package addressbook

import (
	"fmt"
	"strings"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

const (
	// LegacySQLName is the configuration name of the built-in SQL address book.
	LegacySQLName = "sql"

	// LegacySQLID is the identifier the built-in SQL address book is listed under.
	LegacySQLID = "0"
)

// Constructors maps book type names to a constructor function.
var Constructors = make(map[string]func(id string, cfg config.AddressBook) (Book, error))

// Registry holds the configured address books in lookup order.
type Registry struct {
	ids   []string
	books map[string]Book
	descs map[string]Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		books: make(map[string]Book),
		descs: make(map[string]Descriptor),
	}
}

// FromConfig builds a Registry from the configured id:type source pairs.  Sources that are
// malformed, of an unknown type, or fail to initialize are logged and skipped.
func FromConfig(cfg config.AddressBook) *Registry {
	r := NewRegistry()
	for _, src := range cfg.Sources {
		id, typ, found := strings.Cut(strings.TrimSpace(src), ":")
		if !found || id == "" {
			log.Error().Str("module", "addressbook").Str("source", src).
				Msg("Address book source must be id:type, skipping")
			continue
		}
		ctor, ok := Constructors[typ]
		if !ok {
			log.Error().Str("module", "addressbook").Str("id", id).Str("type", typ).
				Msg("Unknown address book type, skipping")
			continue
		}
		book, err := ctor(id, cfg)
		if err != nil {
			log.Error().Str("module", "addressbook").Str("id", id).Str("type", typ).Err(err).
				Msg("Failed to open address book, skipping")
			continue
		}
		name := cfg.Names[id]
		if name == "" {
			name = id
		}
		r.Add(id, name, book)
		log.Debug().Str("module", "addressbook").Str("id", NormalizeID(id)).Str("type", typ).
			Msg("Registered address book")
	}

	return r
}

// NormalizeID maps the legacy "sql" name to the identifier it is listed under.
func NormalizeID(id string) string {
	if id == LegacySQLName {
		return LegacySQLID
	}
	return id
}

// Add registers book under id, after any existing books.  Adding an existing id replaces the
// book in place.
func (r *Registry) Add(id, name string, book Book) {
	id = NormalizeID(id)
	if _, ok := r.books[id]; !ok {
		r.ids = append(r.ids, id)
	}
	caps := book.Capabilities()
	r.books[id] = book
	r.descs[id] = Descriptor{ID: id, Name: name, Groups: caps.Groups, ReadOnly: caps.ReadOnly}
}

// Get returns the book registered under id.
func (r *Registry) Get(id string) (Book, error) {
	if book, ok := r.books[NormalizeID(id)]; ok {
		return book, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotExist, id)
}

// Sources returns descriptors for every registered book in lookup order.
func (r *Registry) Sources() []Descriptor {
	result := make([]Descriptor, 0, len(r.ids))
	for _, id := range r.ids {
		result = append(result, r.descs[id])
	}
	return result
}

// Resolve returns descriptors of the registered books named in ids, in registry order rather
// than the order of ids.  Unknown ids are ignored.
func (r *Registry) Resolve(ids []string) []Descriptor {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		wanted = append(wanted, NormalizeID(strings.TrimSpace(id)))
	}

	result := make([]Descriptor, 0, len(wanted))
	for _, id := range r.ids {
		if stringutil.SliceContains(wanted, id) {
			result = append(result, r.descs[id])
		}
	}
	return result
}

// Enabled resolves the books to scan, using the autocomplete list when books is empty.
func (r *Registry) Enabled(books, autocomplete []string) []Descriptor {
	if len(books) == 0 {
		return r.Resolve(autocomplete)
	}
	return r.Resolve(books)
}
