package webui

import (
	"encoding/json"
	"expvar"
	"net/http"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/server/web"
)

// MetricsVar names the expvar map holding the plugin counters.
const MetricsVar = "rcptcontact"

// RootStatus serves the server configuration summary and the plugin counters.
func RootStatus(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	root := ctx.RootConfig
	if root == nil {
		root = &config.Root{}
	}

	metrics := json.RawMessage("{}")
	if v := expvar.Get(MetricsVar); v != nil {
		metrics = json.RawMessage(v.String())
	}

	return web.RenderJSON(w,
		&jsonStatus{
			Version:      config.Version,
			BuildDate:    config.BuildDate,
			WebListener:  root.Web.Addr,
			AddressBooks: nonNil(root.AddressBook.Sources),
			ScanBooks:    nonNil(root.Plugin.AddressBooks),
			SessionStore: root.Session.Type,
			PrefsStore:   root.Prefs.Type,
			Metrics:      metrics,
		})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
