// Package server wires the rcptcontact services together.
package server

import (
	"context"
	"io"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/luahost"
	"github.com/inbucket/rcptcontact/pkg/msghub"
	"github.com/inbucket/rcptcontact/pkg/plugin"
	"github.com/inbucket/rcptcontact/pkg/prefs"
	"github.com/inbucket/rcptcontact/pkg/rest"
	"github.com/inbucket/rcptcontact/pkg/server/web"
	"github.com/inbucket/rcptcontact/pkg/session"
	"github.com/inbucket/rcptcontact/pkg/session/mem"
	"github.com/inbucket/rcptcontact/pkg/stringutil"
	"github.com/inbucket/rcptcontact/pkg/webui"
	"github.com/rs/zerolog/log"
)

// Services holds the configured services.
type Services struct {
	Books     *addressbook.Registry
	Sessions  session.Store
	Prefs     prefs.Store
	Plugin    *plugin.Plugin
	MsgHub    *msghub.Hub
	LuaHost   *luahost.Host
	WebServer *web.Server
	Sweeper   *mem.Sweeper // nil unless sessions are kept in memory.
}

// FullAssembly wires up a complete rcptcontact environment, without starting it.
func FullAssembly(conf *config.Root, shutdownChan chan bool) (*Services, error) {
	books := addressbook.FromConfig(conf.AddressBook)

	sessions, err := session.FromConfig(conf.Session)
	if err != nil {
		return nil, err
	}
	var sweeper *mem.Sweeper
	if ms, ok := sessions.(*mem.Store); ok {
		sweeper = mem.NewSweeper(ms, conf.Session.SweepInterval, shutdownChan)
	}

	prefStore, err := prefs.FromConfig(conf.Prefs, conf.AddressBook.SQLPath)
	if err != nil {
		return nil, err
	}

	p := plugin.New(conf.Plugin, books, sessions, prefStore)
	msgHub := msghub.New(conf.Web.MonitorHistory)

	// Lua is optional, a nil host initializes nothing.
	luaHost, err := luahost.New(log.Logger, conf.Lua)
	if err != nil {
		return nil, err
	}

	// Configure routes and HTTP server.  Listeners are registered in priority order.
	inits := []extension.Initializer{luaHost.Init, p.Init, msgHub.Init}
	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	routes := web.Router.PathPrefix(prefix("/")).Subrouter()
	rest.SetupRoutes(routes)
	webui.SetupRoutes(routes)
	webServer := web.NewServer(conf, shutdownChan, msgHub, prefStore, inits...)

	return &Services{
		Books:     books,
		Sessions:  sessions,
		Prefs:     prefStore,
		Plugin:    p,
		MsgHub:    msgHub,
		LuaHost:   luaHost,
		WebServer: webServer,
		Sweeper:   sweeper,
	}, nil
}

// Start all services, calling readyFunc once the web server is listening.
func (s *Services) Start(ctx context.Context, readyFunc func()) {
	go s.MsgHub.Start(ctx)
	if s.Sweeper != nil {
		s.Sweeper.Start()
	}
	go s.WebServer.Start(ctx, readyFunc)
}

// Notify merges the error notification channels of all fallible services, allowing the process to
// be shutdown if needed.
func (s *Services) Notify() <-chan error {
	return s.WebServer.Notify()
}

// Join waits for background services to shut down, then releases the session store.
func (s *Services) Join() {
	if s.Sweeper != nil {
		s.Sweeper.Join()
	}
	if c, ok := s.Sessions.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Error().Str("module", "session").Str("phase", "shutdown").Err(err).
				Msg("Failed to close session store")
		}
	}
}
