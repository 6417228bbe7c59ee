// Package recipient finds message recipients missing from the address books and buffers them in
// the session until the contact dialog collects them.
package recipient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/session"
	"github.com/inbucket/rcptcontact/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

// BufferKey is the session key the candidates are stored under.
const BufferKey = "recipient_to_contact"

// Candidate is a recipient not found in any scanned address book.
type Candidate struct {
	Mailto string `json:"mailto"`
	Name   string `json:"name"`
}

// Scanner checks the recipients of sent messages against address books.
type Scanner struct {
	Books    *addressbook.Registry
	Sources  []addressbook.Descriptor // Books to search, in order.
	Sessions session.Store
	ExtHost  *extension.Host
}

// Scan looks up every recipient of msg and, when some are unknown, replaces the session buffer
// with them.  The unknown recipients are returned.
func (s *Scanner) Scan(ctx context.Context, msg event.SentMessage) ([]Candidate, error) {
	logger := log.With().Str("module", "recipient").Str("session", msg.Session).Logger()
	if IsReadReceipt(msg.Header) {
		logger.Debug().Msg("Skipping read receipt")
		return nil, nil
	}

	addrs, err := Addresses(msg.Header)
	if err != nil {
		return nil, err
	}
	logger.Debug().Strs("recipients", stringutil.StringAddressList(addrs)).Msg("Scanning recipients")

	seen := make(map[string]bool, len(addrs))
	var candidates []Candidate
	for _, addr := range addrs {
		key := strings.ToLower(addr.Address)
		if addr.Address == "" || seen[key] {
			continue
		}
		seen[key] = true

		if s.ExtHost != nil {
			check := s.ExtHost.Events.BeforeRecipientChecked.Emit(&event.Recipient{
				Request: msg.Request,
				Address: *addr,
			})
			if check != nil && !*check {
				logger.Debug().Str("address", addr.Address).Msg("Recipient vetoed by extension")
				continue
			}
		}

		if s.known(ctx, addr.Address) {
			continue
		}
		name := addr.Name
		if name == "" {
			name = addr.Address
		}
		candidates = append(candidates, Candidate{Mailto: addr.Address, Name: name})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	buf, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Put(ctx, msg.Session, BufferKey, buf); err != nil {
		return nil, fmt.Errorf("storing candidates: %w", err)
	}
	logger.Debug().Int("count", len(candidates)).Msg("Buffered unknown recipients")

	if s.ExtHost != nil {
		s.ExtHost.Events.AfterCandidatesBuffered.Emit(&event.CandidatesBuffered{
			Request: msg.Request,
			Count:   len(candidates),
		})
	}

	return candidates, nil
}

// known searches the books in order, stopping at the first with a match.  A failing book counts
// as no match.
func (s *Scanner) known(ctx context.Context, address string) bool {
	for _, src := range s.Sources {
		book, err := s.Books.Get(src.ID)
		if err != nil {
			log.Error().Str("module", "recipient").Str("book", src.ID).Err(err).
				Msg("Configured address book unavailable")
			continue
		}
		count, err := book.Search(ctx, addressbook.FieldEmail, address)
		if err != nil {
			log.Warn().Str("module", "recipient").Str("book", src.ID).Err(err).
				Msg("Address book search failed")
			continue
		}
		if count > 0 {
			return true
		}
	}
	return false
}
