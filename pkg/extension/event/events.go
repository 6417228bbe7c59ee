package event

import (
	"net/mail"
	"net/url"
)

// Request identifies the webmail session and user a hook or action runs on behalf of.
type Request struct {
	Session  string
	User     string
	Language string
}

// SentMessage contains the headers of a message the webmail host has just sent.
type SentMessage struct {
	Request
	Header map[string][]string
}

// Recipient is offered to extensions before it is looked up in the address books.
type Recipient struct {
	Request
	Address mail.Address
}

// CandidatesBuffered reports unknown recipients stored in a session buffer.
type CandidatesBuffered struct {
	Request
	Count int
}

// BufferConsumed reports that the dialog collected a session's buffered candidates.
type BufferConsumed struct {
	Request
	Count int
}

// ContactSaved contains the details of a contact inserted into an address book.
type ContactSaved struct {
	Request
	AddressBook string
	ID          string
	Name        string
	Email       string
	Group       string
}

// Page is passed to render hooks, listeners may append client scripts to it.
type Page struct {
	Request
	Template string
	Scripts  []string
}

// PrefsSection is a single entry in the preferences section list.
type PrefsSection struct {
	ID    string
	Title string
}

// PrefsSections is the ordered list of preference sections shown to a user.
type PrefsSections struct {
	Request
	List []PrefsSection
}

// PrefsOption is one labelled input inside a preferences block.  Content is HTML.
type PrefsOption struct {
	Key     string
	Title   string
	Content string
}

// PrefsBlock groups options under a heading.
type PrefsBlock struct {
	Name    string
	Options []PrefsOption
}

// PrefsList asks listeners to describe the blocks of one preferences section.
type PrefsList struct {
	Request
	Section string
	Blocks  []PrefsBlock
}

// PrefsSave carries a submitted preferences form, listeners record the values to persist in
// Prefs.
type PrefsSave struct {
	Request
	Section string
	Form    url.Values
	Prefs   map[string]bool
}

// ActionRequest is the input to a registered client action.
type ActionRequest struct {
	Request
	Form url.Values
}

// Command is the reply to a client action, the client dispatches Data to the handler registered
// for Name.
type Command struct {
	Name string `json:"command"`
	Data any    `json:"data"`
}
