// Package webui serves the preferences pages and the status page.
package webui

import (
	"github.com/gorilla/mux"
	"github.com/inbucket/rcptcontact/pkg/server/web"
)

// SetupRoutes populates routes for the webui into the provided Router.
func SetupRoutes(r *mux.Router) {
	r.Path("/settings/sections").Handler(
		web.Handler(SettingsSections)).Name("SettingsSections").Methods("GET")
	r.Path("/settings/{section}").Handler(
		web.Handler(SettingsShow)).Name("SettingsShow").Methods("GET")
	r.Path("/settings/{section}").Handler(
		web.Handler(SettingsSave)).Name("SettingsSave").Methods("POST")
	r.Path("/status").Handler(
		web.Handler(RootStatus)).Name("RootStatus").Methods("GET")
}
