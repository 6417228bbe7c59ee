package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/inbucket/rcptcontact/pkg/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer records the last request it received.
type fakeServer struct {
	*httptest.Server
	router      *mux.Router
	lastForm    url.Values
	lastBody    []byte
	lastType    string
	lastSession string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{router: mux.NewRouter()}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastType = r.Header.Get("Content-Type")
		f.lastSession = r.Header.Get("X-Session-Id")
		f.lastBody, _ = io.ReadAll(r.Body)
		f.lastForm, _ = url.ParseQuery(string(f.lastBody))
		f.router.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) respond(path, body string) {
	f.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	c, err := New(f.URL, WithClientOptsSession("sess-1"))
	require.NoError(t, err)
	return c
}

func TestClientSendMessage(t *testing.T) {
	f := newFakeServer(t)
	f.router.HandleFunc("/hooks/message_sent", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("POST")
	c := newTestClient(t, f)

	err := c.SendMessage(context.Background(), map[string][]string{"To": {"a@example.com"}})
	require.NoError(t, err)

	assert.Equal(t, "application/json", f.lastType)
	assert.Equal(t, "sess-1", f.lastSession)
	var got map[string]map[string][]string
	require.NoError(t, json.Unmarshal(f.lastBody, &got))
	assert.Equal(t, []string{"a@example.com"}, got["headers"]["To"])

	err = c.SendRaw(context.Background(), []byte("To: b@example.com\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "message/rfc822", f.lastType)
}

func TestClientPending(t *testing.T) {
	f := newFakeServer(t)
	scripts := `{"scripts": ["recipient_to_contact.js"]}`
	f.router.HandleFunc("/hooks/render_mailboxlist", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, scripts)
	})
	c := newTestClient(t, f)

	pending, err := c.Pending(context.Background())
	require.NoError(t, err)
	assert.True(t, pending)

	scripts = `{"scripts": []}`
	pending, err = c.Pending(context.Background())
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestClientGetContacts(t *testing.T) {
	f := newFakeServer(t)
	f.respond("/plugin/"+actionGetContacts, `{
		"command": "plugin.recipient_to_contact_populate_dialog",
		"data": {
			"contacts": [{"mailto": "new@example.com", "name": "New"}],
			"address_books": [{"id": "0", "name": "Personal Addresses", "groups": true}],
			"use_groups": true
		}
	}`)
	c := newTestClient(t, f)

	data, err := c.GetContacts(context.Background())
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Len(t, data.Contacts, 1)
	assert.Equal(t, "new@example.com", data.Contacts[0].Mailto)
	assert.Equal(t, "New", data.Contacts[0].Name)
	require.Len(t, data.AddressBooks, 1)
	assert.Equal(t, "0", data.AddressBooks[0].ID)
	assert.True(t, data.AddressBooks[0].Groups)
	assert.True(t, data.UseGroups)
	assert.Equal(t, "1", f.lastForm.Get("_remote"))
}

func TestClientGetContactsEmpty(t *testing.T) {
	f := newFakeServer(t)
	f.respond("/plugin/"+actionGetContacts,
		`{"command": "plugin.recipient_to_contact_populate_dialog", "data": {}}`)
	c := newTestClient(t, f)

	data, err := c.GetContacts(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestClientGetContactsNotFound(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(t, f)

	_, err := c.GetContacts(context.Background())
	assert.Error(t, err)
}

func TestClientGetGroups(t *testing.T) {
	f := newFakeServer(t)
	f.respond("/plugin/"+actionGetGroups, `{
		"command": "plugin.recipient_to_contact_get_addressbook_groups_response",
		"data": {"groups": [{"ID": "g1", "name": "Friends"}], "key": "2"}
	}`)
	c := newTestClient(t, f)

	groups, err := c.GetGroups(context.Background(), "0", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", groups.Key)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "g1", groups.Groups[0].ID)
	assert.Equal(t, "Friends", groups.Groups[0].Name)
	assert.Equal(t, "0", f.lastForm.Get("address_book_id"))
	assert.Equal(t, "2", f.lastForm.Get("key"))
}

func TestClientSaveContacts(t *testing.T) {
	f := newFakeServer(t)
	f.respond("/plugin/"+actionSaveContacts, `{
		"command": "plugin.recipient_to_contact_save_contacts_response",
		"data": {"contacts": {
			"0": {"status": "ok", "message": "Contact saved successfully"},
			"1": {"status": "fail", "message": "Contact could not be saved"}
		}}
	}`)
	c := newTestClient(t, f)

	results, err := c.SaveContacts(context.Background(), map[string]contact.Row{
		"0": {Name: "Ann", Email: "ann@example.com", AddressBook: "0", Group: "none"},
		"1": {Name: "Bob", Email: "bob@example.com", AddressBook: "0", Group: "g1"},
	})
	require.NoError(t, err)
	assert.Equal(t, contact.StatusOK, results["0"].Status)
	assert.Equal(t, contact.StatusFail, results["1"].Status)

	assert.Equal(t, "ann@example.com", f.lastForm.Get("_contacts[0][_email]"))
	assert.Equal(t, "g1", f.lastForm.Get("_contacts[1][_group]"))
}
