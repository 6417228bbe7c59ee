// Package contact validates and saves the contacts submitted from the dialog, and answers group
// lookups for it.
package contact

import (
	"context"
	"strings"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/inbucket/rcptcontact/pkg/policy"
	"github.com/rs/zerolog/log"
)

// Row statuses.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// GroupNone is the group selection meaning "no group".
const GroupNone = "none"

// Result is the outcome of saving one row.  Message is localized and HTML escaped.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Saver inserts submitted rows into address books.
type Saver struct {
	Books   *addressbook.Registry
	ExtHost *extension.Host
}

// Save attempts every row, a failing row does not stop the others.  Results are keyed like rows.
func (s *Saver) Save(ctx context.Context, req event.Request, rows map[string]Row) map[string]Result {
	results := make(map[string]Result, len(rows))
	for _, key := range SortedKeys(rows) {
		results[key] = s.saveRow(ctx, req, rows[key])
	}
	return results
}

func (s *Saver) saveRow(ctx context.Context, req event.Request, r Row) Result {
	logger := log.With().Str("module", "contact").Str("session", req.Session).
		Str("book", r.AddressBook).Logger()
	fail := func(key string) Result {
		return Result{Status: StatusFail, Message: l10n.Quote(req.Language, key)}
	}

	if strings.TrimSpace(r.Name) == "" {
		return fail(l10n.ResponseNameEmpty)
	}
	if !policy.CheckEmail(r.Email) {
		return fail(l10n.ResponseEmailInvalid)
	}

	book, err := s.Books.Get(r.AddressBook)
	if err != nil {
		logger.Warn().Err(err).Msg("Save to unknown address book")
		return fail(l10n.ResponseServerError)
	}
	email := strings.TrimSpace(r.Email)
	id, err := book.Insert(ctx, addressbook.Record{
		Name:      r.Name,
		Email:     email,
		FirstName: r.FirstName,
		Surname:   r.Surname,
	})
	if err != nil || id == "" {
		logger.Error().Err(err).Str("email", email).Msg("Failed to insert contact")
		return fail(l10n.ResponseServerError)
	}

	group := ""
	if r.Group != "" && r.Group != GroupNone {
		if err := book.AddToGroup(ctx, r.Group, id); err != nil {
			logger.Warn().Err(err).Str("group", r.Group).Msg("Failed to add contact to group")
		} else {
			group = r.Group
		}
	}

	logger.Debug().Str("id", id).Msg("Saved contact")
	if s.ExtHost != nil {
		s.ExtHost.Events.AfterContactSaved.Emit(&event.ContactSaved{
			Request:     req,
			AddressBook: addressbook.NormalizeID(r.AddressBook),
			ID:          id,
			Name:        r.Name,
			Email:       email,
			Group:       group,
		})
	}

	return Result{Status: StatusOK, Message: l10n.Quote(req.Language, l10n.ResponseConfirm)}
}
