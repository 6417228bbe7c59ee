package contact

import (
	"context"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/rs/zerolog/log"
)

// GroupList answers a group lookup for the dialog row identified by Key.
type GroupList struct {
	Groups []addressbook.Group `json:"groups"`
	Key    string              `json:"key"`
}

// Groups lists the groups of the book bookID.  Unknown books, books without groups and failed
// lookups all yield an empty list.
func Groups(ctx context.Context, books *addressbook.Registry, bookID, key string) *GroupList {
	result := &GroupList{Groups: []addressbook.Group{}, Key: key}

	book, err := books.Get(bookID)
	if err != nil {
		log.Warn().Str("module", "contact").Str("book", bookID).Err(err).
			Msg("Group lookup for unknown address book")
		return result
	}
	if !book.Capabilities().Groups {
		return result
	}
	groups, err := book.ListGroups(ctx)
	if err != nil {
		log.Error().Str("module", "contact").Str("book", bookID).Err(err).
			Msg("Failed to list groups")
		return result
	}
	if groups != nil {
		result.Groups = groups
	}
	return result
}
