package rest

import (
	"github.com/gorilla/mux"
	"github.com/inbucket/rcptcontact/pkg/server/web"
)

// SetupRoutes populates the routes for the plugin actions, host hooks and monitor API.
func SetupRoutes(r *mux.Router) {
	// Client actions.
	r.Path("/plugin/{action}").Handler(
		web.Handler(PluginActionV1)).Name("PluginActionV1").Methods("POST")

	// Webmail host hooks.
	r.Path("/hooks/message_sent").Handler(
		web.Handler(MessageSentV1)).Name("MessageSentV1").Methods("POST")
	r.Path("/hooks/render_mailboxlist").Handler(
		web.Handler(RenderMailboxListV1)).Name("RenderMailboxListV1").Methods("GET")

	// API v1
	r.Path("/api/v1/monitor/contacts").Handler(
		web.Handler(MonitorContactsV1)).Name("MonitorContactsV1").Methods("GET")
}
