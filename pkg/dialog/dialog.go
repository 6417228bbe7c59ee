// Package dialog holds the client side state of the add-contacts dialog: the rows offered for
// saving, their address book and group selection, and the save round trip.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/contact"
	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/inbucket/rcptcontact/pkg/policy"
	"github.com/inbucket/rcptcontact/pkg/recipient"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by operations that need an open dialog.
var ErrClosed = errors.New("dialog is not open")

// Transport carries the dialog requests to the server.  *client.Client implements it.
type Transport interface {
	GetContacts(ctx context.Context) (*recipient.DialogData, error)
	GetGroups(ctx context.Context, bookID, key string) (*contact.GroupList, error)
	SaveContacts(ctx context.Context, rows map[string]contact.Row) (map[string]contact.Result, error)
}

// KeyListeners are the host keyboard shortcuts, suspended while the dialog is open.
type KeyListeners interface {
	Suspend()
	Resume()
}

// Draft is the editable state of one row.
type Draft struct {
	Key         string
	Name        string
	Email       string
	FirstName   string
	Surname     string
	AddressBook string
	Group       string
	Groups      []addressbook.Group // Group choices, GroupNone first.
	Selected    bool
}

// ValidationError reports the first row that failed client side checks.  No request was made.
type ValidationError struct {
	Key     string // Row key, empty when no row was selected.
	Code    string // l10n text key.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("row %s: %s", e.Key, e.Message)
}

// Outcome summarizes a save round trip.
type Outcome struct {
	Saved    []string          // Keys of rows the server stored, removed from the dialog.
	Failed   map[string]string // Server messages for rows left in the dialog.
	Reopened bool              // Set when the emptied dialog found new candidates.
}

// Dialog is the add-contacts dialog of one session.  It is safe for concurrent use, group lookups
// for different rows may be in flight at the same time.
type Dialog struct {
	mu        sync.Mutex
	transport Transport
	keys      KeyListeners
	language  string
	open      bool
	books     []addressbook.Descriptor
	useGroups bool
	rows      map[string]*Draft
	errors    []string
}

// New creates a closed dialog.  keys may be nil.
func New(transport Transport, keys KeyListeners, language string) *Dialog {
	return &Dialog{
		transport: transport,
		keys:      keys,
		language:  language,
		rows:      make(map[string]*Draft),
	}
}

// Open asks the server for buffered candidates and shows the dialog when there are any.  It
// reports whether the dialog is now open.
func (d *Dialog) Open(ctx context.Context) (bool, error) {
	data, err := d.transport.GetContacts(ctx)
	if err != nil {
		return false, fmt.Errorf("getting contacts: %w", err)
	}
	if data == nil || len(data.Contacts) == 0 {
		return false, nil
	}

	d.mu.Lock()
	wasOpen := d.open
	d.open = true
	d.books = data.AddressBooks
	d.useGroups = data.UseGroups
	d.errors = nil
	d.rows = make(map[string]*Draft, len(data.Contacts))
	defaultBook := ""
	if len(d.books) > 0 {
		defaultBook = d.books[0].ID
	}
	for i, c := range data.Contacts {
		key := strconv.Itoa(i)
		d.rows[key] = &Draft{
			Key:         key,
			Name:        displayName(c),
			Email:       c.Mailto,
			AddressBook: defaultBook,
			Group:       contact.GroupNone,
			Groups:      noGroups(),
			Selected:    true,
		}
	}
	useGroups := d.useGroups
	d.mu.Unlock()

	if !wasOpen && d.keys != nil {
		d.keys.Suspend()
	}
	log.Debug().Str("module", "dialog").Int("rows", len(data.Contacts)).Msg("Dialog opened")

	if useGroups && defaultBook != "" {
		for i := range data.Contacts {
			d.lookupGroups(ctx, strconv.Itoa(i), defaultBook)
		}
	}
	return true, nil
}

// Close hides the dialog and discards every draft.
func (d *Dialog) Close() {
	d.mu.Lock()
	wasOpen := d.open
	d.open = false
	d.rows = make(map[string]*Draft)
	d.errors = nil
	d.mu.Unlock()

	if wasOpen && d.keys != nil {
		d.keys.Resume()
	}
}

// IsOpen reports whether the dialog is shown.
func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// AddressBooks returns the books rows may be saved to.
func (d *Dialog) AddressBooks() []addressbook.Descriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]addressbook.Descriptor(nil), d.books...)
}

// Rows returns copies of the current rows in key order.
func (d *Dialog) Rows() []Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows := make([]Draft, 0, len(d.rows))
	for _, key := range contact.SortedKeys(d.rows) {
		r := *d.rows[key]
		r.Groups = append([]addressbook.Group(nil), r.Groups...)
		rows = append(rows, r)
	}
	return rows
}

// Errors returns the messages of the last save.
func (d *Dialog) Errors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.errors...)
}

// Edit applies fn to the row with key.  The key, the address book and the group choices cannot be
// changed this way, use SetAddressBook to move a row to another book.
func (d *Dialog) Edit(key string, fn func(*Draft)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.lockedRow(key)
	if err != nil {
		return err
	}
	saved := *r
	fn(r)
	r.Key = saved.Key
	r.AddressBook = saved.AddressBook
	r.Groups = saved.Groups
	return nil
}

// SetSelected includes or excludes one row from the next save.
func (d *Dialog) SetSelected(key string, selected bool) error {
	return d.Edit(key, func(r *Draft) { r.Selected = selected })
}

// SelectAll toggles every row.
func (d *Dialog) SelectAll(selected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.rows {
		r.Selected = selected
	}
}

// AllSelected reports the state the select-all checkbox should show.
func (d *Dialog) AllSelected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.rows {
		if !r.Selected {
			return false
		}
	}
	return len(d.rows) > 0
}

// SetAddressBook changes the book of a row, and refreshes its group choices when groups are in
// use.
func (d *Dialog) SetAddressBook(ctx context.Context, key, bookID string) error {
	d.mu.Lock()
	r, err := d.lockedRow(key)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	r.AddressBook = bookID
	r.Group = contact.GroupNone
	useGroups := d.useGroups
	d.mu.Unlock()

	if useGroups {
		d.lookupGroups(ctx, key, bookID)
	}
	return nil
}

// lookupGroups fetches the groups of bookID and applies them to the row named in the response.
// Responses for the same row overwrite each other in arrival order.
func (d *Dialog) lookupGroups(ctx context.Context, key, bookID string) {
	logger := log.With().Str("module", "dialog").Str("row", key).Str("book", bookID).Logger()
	list, err := d.transport.GetGroups(ctx, bookID, key)
	if err != nil {
		logger.Warn().Err(err).Msg("Group lookup failed")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rows[list.Key]
	if !ok {
		logger.Debug().Str("key", list.Key).Msg("Group lookup for removed row")
		return
	}
	r.Groups = append(noGroups(), list.Groups...)
	r.Group = contact.GroupNone
}

// Validate checks the selected rows the way Save does, returning the first failure.
func (d *Dialog) Validate() (map[string]contact.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, ErrClosed
	}
	return d.lockedSelectedRows()
}

// Save validates the selected rows and sends them in one request.  A validation failure returns a
// *ValidationError without contacting the server.
func (d *Dialog) Save(ctx context.Context) (*Outcome, error) {
	rows, err := d.Validate()
	if err != nil {
		return nil, err
	}
	results, err := d.transport.SaveContacts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("saving contacts: %w", err)
	}
	return d.HandleSaveResponse(ctx, results)
}

// HandleSaveResponse removes the rows the server stored and keeps the failed ones with their
// message.  When no rows remain the dialog is closed and the server is polled for new candidates.
func (d *Dialog) HandleSaveResponse(
	ctx context.Context,
	results map[string]contact.Result,
) (*Outcome, error) {
	out := &Outcome{Failed: make(map[string]string)}

	d.mu.Lock()
	d.errors = nil
	for _, key := range contact.SortedKeys(results) {
		res := results[key]
		if _, ok := d.rows[key]; !ok {
			continue
		}
		switch res.Status {
		case contact.StatusOK:
			delete(d.rows, key)
			out.Saved = append(out.Saved, key)
		default:
			out.Failed[key] = res.Message
			d.errors = append(d.errors, res.Message)
		}
	}
	empty := len(d.rows) == 0
	d.mu.Unlock()

	log.Debug().Str("module", "dialog").Int("saved", len(out.Saved)).
		Int("failed", len(out.Failed)).Msg("Save response handled")
	if !empty {
		return out, nil
	}

	d.Close()
	reopened, err := d.Open(ctx)
	if err != nil {
		return out, err
	}
	out.Reopened = reopened
	return out, nil
}

func (d *Dialog) lockedRow(key string) (*Draft, error) {
	if !d.open {
		return nil, ErrClosed
	}
	r, ok := d.rows[key]
	if !ok {
		return nil, fmt.Errorf("no row %q", key)
	}
	return r, nil
}

func (d *Dialog) lockedSelectedRows() (map[string]contact.Row, error) {
	rows := make(map[string]contact.Row)
	for _, key := range contact.SortedKeys(d.rows) {
		r := d.rows[key]
		if !r.Selected {
			continue
		}
		if strings.TrimSpace(r.Name) == "" {
			return nil, d.invalid(key, l10n.ResponseNameEmpty)
		}
		if !policy.CheckEmail(r.Email) {
			return nil, d.invalid(key, l10n.ResponseEmailInvalid)
		}
		group := r.Group
		if group == "" {
			group = contact.GroupNone
		}
		rows[key] = contact.Row{
			Name:        r.Name,
			Email:       r.Email,
			FirstName:   r.FirstName,
			Surname:     r.Surname,
			AddressBook: r.AddressBook,
			Group:       group,
		}
	}
	if len(rows) == 0 {
		return nil, d.invalid("", l10n.ResponseContactNotSelected)
	}
	return rows, nil
}

func (d *Dialog) invalid(key, code string) *ValidationError {
	return &ValidationError{Key: key, Code: code, Message: l10n.Text(d.language, code)}
}

// displayName falls back to the local part when the server could not tell the name apart from
// the address.
func displayName(c recipient.Candidate) string {
	name := strings.TrimSpace(c.Name)
	if name == "" || strings.EqualFold(name, c.Mailto) {
		return policy.LocalPart(c.Mailto)
	}
	return name
}

func noGroups() []addressbook.Group {
	return []addressbook.Group{{ID: contact.GroupNone, Name: ""}}
}
