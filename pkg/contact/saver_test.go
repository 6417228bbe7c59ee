package contact_test

import (
	"context"
	"testing"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/contact"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/inbucket/rcptcontact/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaver() (*contact.Saver, *test.BookStub, *extension.Host) {
	book := test.NewBook()
	books := addressbook.NewRegistry()
	books.Add("sql", "Personal", book)
	host := extension.NewHost()
	return &contact.Saver{Books: books, ExtHost: host}, book, host
}

var req = event.Request{Session: "s", User: "u", Language: "en_US"}

func TestSaveAttemptsEveryRow(t *testing.T) {
	saver, book, _ := newSaver()
	book.FailInsertFor["broken@example.com"] = true

	got := saver.Save(context.Background(), req, map[string]contact.Row{
		"0": {Name: "", Email: "empty@example.com", AddressBook: "0"},
		"1": {Name: "Bad", Email: "not-an-email", AddressBook: "0"},
		"2": {Name: "Broken", Email: "broken@example.com", AddressBook: "0"},
		"3": {Name: "Good", Email: "good@example.com", AddressBook: "0", Group: "none"},
		"4": {Name: "Lost", Email: "lost@example.com", AddressBook: "missing"},
		"5": {Name: "Legacy", Email: "legacy@example.com", AddressBook: "sql"},
		"6": {Name: " \t ", Email: "blank@example.com", AddressBook: "0"},
	})

	assert.Equal(t, map[string]contact.Result{
		"0": {Status: "fail", Message: l10n.Text("en_US", l10n.ResponseNameEmpty)},
		"1": {Status: "fail", Message: l10n.Text("en_US", l10n.ResponseEmailInvalid)},
		"2": {Status: "fail", Message: l10n.Text("en_US", l10n.ResponseServerError)},
		"3": {Status: "ok", Message: l10n.Text("en_US", l10n.ResponseConfirm)},
		"4": {Status: "fail", Message: l10n.Text("en_US", l10n.ResponseServerError)},
		"5": {Status: "ok", Message: l10n.Text("en_US", l10n.ResponseConfirm)},
		"6": {Status: "fail", Message: l10n.Text("en_US", l10n.ResponseNameEmpty)},
	}, got)
	assert.Equal(t, 2, book.Len())
}

func TestSaveMessagesAreLocalizedAndEscaped(t *testing.T) {
	saver, _, _ := newSaver()
	it := event.Request{Session: "s", Language: "it_IT"}

	got := saver.Save(context.Background(), it, map[string]contact.Row{
		"0": {Name: "x", Email: "bad", AddressBook: "0"},
	})
	assert.Equal(t, "L&#39;indirizzo email non è valido", got["0"].Message)
}

func TestSaveAddsToGroup(t *testing.T) {
	ctx := context.Background()
	saver, book, _ := newSaver()
	g, err := book.CreateGroup(ctx, "Friends")
	require.NoError(t, err)

	got := saver.Save(ctx, req, map[string]contact.Row{
		"0": {Name: "Pal", Email: "pal@example.com", AddressBook: "0", Group: g.ID},
	})
	require.Equal(t, "ok", got["0"].Status)
	assert.Len(t, book.Members(g.ID), 1)
}

func TestSaveGroupFailureStaysOK(t *testing.T) {
	saver, book, _ := newSaver()
	book.FailGroups = true

	got := saver.Save(context.Background(), req, map[string]contact.Row{
		"0": {Name: "Pal", Email: "pal@example.com", AddressBook: "0", Group: "g1"},
	})
	assert.Equal(t, "ok", got["0"].Status)
	assert.Equal(t, 1, book.Len())
}

func TestSaveEmitsContactSaved(t *testing.T) {
	saver, _, host := newSaver()
	listener := host.Events.AfterContactSaved.AsyncTestListener("test", 1)

	saver.Save(context.Background(), req, map[string]contact.Row{
		"0": {Name: "Pal", Email: " pal@example.com ", AddressBook: "sql", Group: "none"},
	})

	ev, err := listener()
	require.NoError(t, err)
	assert.Equal(t, "0", ev.AddressBook)
	assert.Equal(t, "pal@example.com", ev.Email)
	assert.Equal(t, "Pal", ev.Name)
	assert.Empty(t, ev.Group)
	assert.NotEmpty(t, ev.ID)
}
