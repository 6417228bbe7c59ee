// Package client provides a basic REST client for the rcptcontact plugin endpoints
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/inbucket/rcptcontact/pkg/contact"
	"github.com/inbucket/rcptcontact/pkg/recipient"
	"github.com/inbucket/rcptcontact/pkg/rest/model"
)

// Plugin actions invoked by the client.
const (
	actionGetContacts  = "plugin.recipient_to_contact_get_contacts"
	actionGetGroups    = "plugin.recipient_to_contact_get_addressbook_groups"
	actionSaveContacts = "plugin.recipient_to_contact_save_contacts"
)

const formType = "application/x-www-form-urlencoded"

// Client accesses the rcptcontact plugin actions and host hooks on behalf of one session.
type Client struct {
	restClient
}

// command is the envelope of every action response.
type command struct {
	Name string          `json:"command"`
	Data json.RawMessage `json:"data"`
}

// New creates a new REST API client given the base URL of an rcptcontact server, ex:
// "http://localhost:9010"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	c := &Client{
		restClient{
			client: &http.Client{
				Timeout:   options.timeout,
				Transport: options.transport,
			},
			baseURL:  parsedURL,
			session:  options.session,
			user:     options.user,
			language: options.language,
		},
	}
	return c, nil
}

// SendMessage reports the headers of a sent message to the message_sent hook.
func (c *Client) SendMessage(ctx context.Context, header map[string][]string) error {
	body, err := json.Marshal(struct {
		Headers map[string][]string `json:"headers"`
	}{header})
	if err != nil {
		return err
	}
	return c.doJSON(ctx, "POST", "/hooks/message_sent", "application/json", body, nil)
}

// SendRaw reports a sent message by its raw RFC 5322 source.
func (c *Client) SendRaw(ctx context.Context, source []byte) error {
	return c.doJSON(ctx, "POST", "/hooks/message_sent", "message/rfc822", source, nil)
}

// Scripts returns the client scripts the server wants included in the mailbox list.
func (c *Client) Scripts(ctx context.Context) ([]string, error) {
	scripts := &model.JSONScriptsV1{}
	if err := c.doJSON(ctx, "GET", "/hooks/render_mailboxlist", "", nil, scripts); err != nil {
		return nil, err
	}
	return scripts.Scripts, nil
}

// Pending reports whether recipients are waiting for review in the session.
func (c *Client) Pending(ctx context.Context) (bool, error) {
	scripts, err := c.Scripts(ctx)
	if err != nil {
		return false, err
	}
	return len(scripts) > 0, nil
}

// GetContacts collects the session's buffered recipients, emptying the buffer.  It returns nil
// when nothing is buffered.
func (c *Client) GetContacts(ctx context.Context) (*recipient.DialogData, error) {
	data := &recipient.DialogData{}
	if err := c.action(ctx, actionGetContacts, url.Values{"_remote": {"1"}}, data); err != nil {
		return nil, err
	}
	if len(data.Contacts) == 0 {
		return nil, nil
	}
	return data, nil
}

// GetGroups lists the groups of an address book, echoing key back in the result.
func (c *Client) GetGroups(ctx context.Context, bookID, key string) (*contact.GroupList, error) {
	groups := &contact.GroupList{}
	form := url.Values{"address_book_id": {bookID}, "key": {key}}
	if err := c.action(ctx, actionGetGroups, form, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SaveContacts saves rows in a single request, returning a result per row key.
func (c *Client) SaveContacts(
	ctx context.Context,
	rows map[string]contact.Row,
) (map[string]contact.Result, error) {
	form := url.Values{}
	contact.Encode(form, rows)
	var resp struct {
		Contacts map[string]contact.Result `json:"contacts"`
	}
	if err := c.action(ctx, actionSaveContacts, form, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// action posts form to the named plugin action and decodes the command data into v.
func (c *Client) action(ctx context.Context, name string, form url.Values, v any) error {
	cmd := &command{}
	err := c.doJSON(ctx, "POST", "/plugin/"+name, formType, []byte(form.Encode()), cmd)
	if err != nil {
		return err
	}
	if len(cmd.Data) == 0 {
		return fmt.Errorf("%s: response has no data", name)
	}
	return json.Unmarshal(cmd.Data, v)
}
