// Package plugin wires the recipient scanner, the dialog actions and the preferences hooks onto a
// per request extension host.
package plugin

import (
	"context"
	"fmt"
	"html"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/contact"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/inbucket/rcptcontact/pkg/prefs"
	"github.com/inbucket/rcptcontact/pkg/recipient"
	"github.com/inbucket/rcptcontact/pkg/session"
	"github.com/rs/zerolog/log"
)

// Client actions and the commands sent in reply.
const (
	ActionGetContacts  = "plugin.recipient_to_contact_get_contacts"
	ActionGetGroups    = "plugin.recipient_to_contact_get_addressbook_groups"
	ActionSaveContacts = "plugin.recipient_to_contact_save_contacts"

	CommandPopulateDialog = "plugin.recipient_to_contact_populate_dialog"
	CommandGroupsResponse = "plugin.recipient_to_contact_get_addressbook_groups_response"
	CommandSaveResponse   = "plugin.recipient_to_contact_save_contacts_response"
)

// Preferences integration.
const (
	PrefsSection = "recipienttocontact"
	PrefsField   = "_use_recipienttocontact"
	prefsFieldID = "rcmfd_use_recipienttocontact"
)

// Script is the client script injected into the mailbox list while candidates are pending.
const Script = "recipient_to_contact.js"

const listenerName = "recipient_to_contact"

// Plugin holds the shared state behind every request's hooks and actions.
type Plugin struct {
	Config   config.Plugin
	Books    *addressbook.Registry
	Sessions session.Store
	Prefs    prefs.Store
	Sources  []addressbook.Descriptor // Books scanned and offered, in registry order.
}

// New creates the plugin, resolving the books to scan from the configuration.
func New(cfg config.Plugin, books *addressbook.Registry, sessions session.Store,
	store prefs.Store) *Plugin {
	sources := books.Enabled(cfg.AddressBooks, cfg.AutocompleteAddressBooks)
	if len(sources) == 0 {
		log.Warn().Str("module", "plugin").Msg("No configured address book is available to scan")
	}
	return &Plugin{
		Config:   cfg,
		Books:    books,
		Sessions: sessions,
		Prefs:    store,
		Sources:  sources,
	}
}

// Enabled resolves whether the plugin is active for user.
func (p *Plugin) Enabled(ctx context.Context, user string) bool {
	enabled, err := prefs.Enabled(ctx, p.Prefs, user, prefs.UsePlugin, p.Config.EnabledByDefault)
	if err != nil {
		log.Error().Str("module", "plugin").Str("user", user).Err(err).
			Msg("Failed to read preference, using default")
	}
	return enabled
}

// Init is an extension.Initializer.  The preferences hooks are always registered, everything else
// only when the plugin is enabled for the user.
func (p *Plugin) Init(ctx context.Context, host *extension.Host, req event.Request) error {
	if p.Enabled(ctx, req.User) {
		p.registerEnabled(ctx, host)
	}

	host.Events.PreferencesSectionsList.AddListener(listenerName, prefsSectionLink)
	host.Events.PreferencesList.AddListener(listenerName, p.prefsContent(ctx))
	host.Events.PreferencesSave.AddListener(listenerName, prefsSave)
	return nil
}

func (p *Plugin) registerEnabled(ctx context.Context, host *extension.Host) {
	scanner := &recipient.Scanner{
		Books:    p.Books,
		Sources:  p.Sources,
		Sessions: p.Sessions,
		ExtHost:  host,
	}
	buffer := &recipient.Buffer{
		Sessions:  p.Sessions,
		Sources:   p.Sources,
		UseGroups: p.Config.UseGroups,
	}
	saver := &contact.Saver{Books: p.Books, ExtHost: host}

	host.Events.MessageSent.AddListener(listenerName,
		func(msg event.SentMessage) *extension.Void {
			expScanned.Add(1)
			found, err := scanner.Scan(ctx, msg)
			if err != nil {
				expErrors.Add(1)
				log.Error().Str("module", "plugin").Str("session", msg.Session).Err(err).
					Msg("Recipient scan failed")
				return nil
			}
			expBuffered.Add(int64(len(found)))
			return nil
		})

	host.Events.RenderMailboxList.AddListener(listenerName,
		func(page event.Page) event.Page {
			pending, err := buffer.Pending(ctx, page.Session)
			if err != nil {
				log.Error().Str("module", "plugin").Str("session", page.Session).Err(err).
					Msg("Failed to check session buffer")
				return page
			}
			if pending {
				page.Scripts = append(page.Scripts, Script)
			}
			return page
		})

	host.Actions.Register(ActionGetContacts,
		func(ctx context.Context, req *event.ActionRequest) (*event.Command, error) {
			data, err := buffer.Populate(ctx, req.Session)
			if err != nil {
				return nil, err
			}
			if data == nil {
				return &event.Command{Name: CommandPopulateDialog, Data: struct{}{}}, nil
			}
			host.Events.AfterBufferConsumed.Emit(&event.BufferConsumed{
				Request: req.Request,
				Count:   len(data.Contacts),
			})
			return &event.Command{Name: CommandPopulateDialog, Data: data}, nil
		})

	host.Actions.Register(ActionGetGroups,
		func(ctx context.Context, req *event.ActionRequest) (*event.Command, error) {
			groups := contact.Groups(ctx, p.Books, req.Form.Get("address_book_id"),
				req.Form.Get("key"))
			return &event.Command{Name: CommandGroupsResponse, Data: groups}, nil
		})

	host.Actions.Register(ActionSaveContacts,
		func(ctx context.Context, req *event.ActionRequest) (*event.Command, error) {
			results := saver.Save(ctx, req.Request, contact.ParseForm(req.Form))
			for _, r := range results {
				if r.Status == contact.StatusOK {
					expSaved.Add(1)
				} else {
					expFailed.Add(1)
				}
			}
			return &event.Command{
				Name: CommandSaveResponse,
				Data: map[string]any{"contacts": results},
			}, nil
		})
}

func prefsSectionLink(list event.PrefsSections) event.PrefsSections {
	list.List = append(list.List, event.PrefsSection{
		ID:    PrefsSection,
		Title: l10n.Quote(list.Language, l10n.PrefsTitle),
	})
	return list
}

func (p *Plugin) prefsContent(ctx context.Context) func(event.PrefsList) event.PrefsList {
	return func(list event.PrefsList) event.PrefsList {
		if list.Section != PrefsSection {
			return list
		}
		lang := list.Language
		checked := ""
		if p.Enabled(ctx, list.User) {
			checked = ` checked="checked"`
		}
		list.Blocks = append(list.Blocks, event.PrefsBlock{
			Name: l10n.Quote(lang, l10n.PrefsTitle),
			Options: []event.PrefsOption{
				{
					Key: "use_subscriptions",
					Title: fmt.Sprintf(`<label for="%s">%s</label>`, prefsFieldID,
						l10n.Quote(lang, l10n.PrefsOption)),
					Content: fmt.Sprintf(`<input type="checkbox" name="%s" id="%s" value="1"%s />`,
						html.EscapeString(PrefsField), prefsFieldID, checked),
				},
				{
					Key:   "description",
					Title: fmt.Sprintf("<div>%s</div><br />", l10n.Quote(lang, l10n.PrefsDescr)),
				},
			},
		})
		return list
	}
}

func prefsSave(save event.PrefsSave) event.PrefsSave {
	if save.Section != PrefsSection {
		return save
	}
	if save.Prefs == nil {
		save.Prefs = make(map[string]bool)
	}
	_, present := save.Form[PrefsField]
	save.Prefs[prefs.UsePlugin] = present
	return save
}
