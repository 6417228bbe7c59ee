package web

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/inbucket/rcptcontact/pkg/msghub"
	"github.com/inbucket/rcptcontact/pkg/prefs"
)

const (
	// SessionCookie names the cookie carrying the webmail session id.
	SessionCookie = "rcptcontact_session"

	// SessionHeader lets a webmail host pass its own session id.
	SessionHeader = "X-Session-Id"

	// UserHeader lets a webmail host pass the logged in user.
	UserHeader = "X-User"

	// LanguageHeader overrides Accept-Language negotiation.
	LanguageHeader = "X-Language"
)

// Context is passed into every request handler function.
type Context struct {
	Vars       map[string]string
	Request    event.Request
	ExtHost    *extension.Host
	MsgHub     *msghub.Hub
	Prefs      prefs.Store
	RootConfig *config.Root
	IsJSON     bool
}

// headerMatch returns true if the request header specified by name contains
// the specified value.  Case is ignored.
func headerMatch(req *http.Request, name string, value string) bool {
	name = http.CanonicalHeaderKey(name)
	value = strings.ToLower(value)

	if header := req.Header[name]; header != nil {
		for _, hv := range header {
			if value == strings.ToLower(hv) {
				return true
			}
		}
	}

	return false
}

// sessionID returns the session named by the request, issuing a new session cookie when the
// request carries neither the session header nor the cookie.
func sessionID(w http.ResponseWriter, req *http.Request, secure bool) string {
	if id := strings.TrimSpace(req.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := req.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// language picks the catalog for the request.
func language(req *http.Request) string {
	if lang := req.Header.Get(LanguageHeader); lang != "" {
		if l10n.Lookup(lang) != nil {
			return lang
		}
		return l10n.Match(lang)
	}
	return l10n.Match(req.Header.Values("Accept-Language")...)
}

// NewContext returns a Context for the given HTTP Request.  The extension host is built fresh
// for every request from the initializers handed to NewServer.
func NewContext(w http.ResponseWriter, req *http.Request) (*Context, error) {
	secure := rootConfig != nil && rootConfig.Web.CookieSecure
	r := event.Request{
		Session:  sessionID(w, req, secure),
		Language: language(req),
	}
	r.User = strings.TrimSpace(req.Header.Get(UserHeader))
	if r.User == "" {
		r.User = r.Session
	}

	host, err := extension.NewRequestHost(req.Context(), r, initializers...)
	if err != nil {
		return nil, err
	}

	return &Context{
		Vars:       mux.Vars(req),
		Request:    r,
		ExtHost:    host,
		MsgHub:     msgHub,
		Prefs:      prefsStore,
		RootConfig: rootConfig,
		IsJSON:     headerMatch(req, "Accept", "application/json"),
	}, nil
}
