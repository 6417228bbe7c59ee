// Package web provides the plumbing for the rcptcontact plugin endpoints, hooks and settings UI.
package web

import (
	"context"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/msghub"
	"github.com/inbucket/rcptcontact/pkg/prefs"
	"github.com/rs/zerolog/log"
)

var (
	// Router is shared between the rest and webui packages.  It sends incoming requests to the
	// correct handler function.
	Router = mux.NewRouter()

	rootConfig   *config.Root
	msgHub       *msghub.Hub
	prefsStore   prefs.Store
	initializers []extension.Initializer

	// ExpWebSocketConnectsCurrent tracks the number of open WebSockets.
	ExpWebSocketConnectsCurrent = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("http")
	m.Set("WebSocketConnectsCurrent", ExpWebSocketConnectsCurrent)
}

// Server defines an instance of the HTTP server.
type Server struct {
	server       *http.Server
	listener     net.Listener
	notify       chan error
	shutdownChan chan bool
}

// NewServer sets up things for unit tests or the Start() method.  Every request handled by Router
// gets an extension host prepared by inits, in order.
func NewServer(
	conf *config.Root,
	shutdownChan chan bool,
	mh *msghub.Hub,
	ps prefs.Store,
	inits ...extension.Initializer,
) *Server {
	rootConfig = conf
	msgHub = mh
	prefsStore = ps
	initializers = inits

	Router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	Router.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")

	return &Server{
		notify:       make(chan error, 1),
		shutdownChan: shutdownChan,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(ctx context.Context, readyFunc func()) {
	addr := rootConfig.Web.Addr
	s.server = &http.Server{
		Addr:         addr,
		Handler:      requestLoggingWrapper(Router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// We don't use ListenAndServe because it lacks a way to close the listener.
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", addr).Logger()
	slog.Info().Msg("HTTP listening on tcp4")
	var err error
	s.listener, err = net.Listen("tcp", addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP4 listener")
		s.emergencyShutdown()
		return
	}

	// Listener go routine.
	go s.serve(ctx)
	readyFunc()

	// Wait for shutdown.
	select {
	case <-ctx.Done():
		log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down")
	case err := <-s.notify:
		log.Error().Str("module", "web").Err(err).Msg("HTTP server failed")
		s.emergencyShutdown()
		return
	}

	// Closing the listener will cause the serve() go routine to exit.
	if err := s.listener.Close(); err != nil {
		log.Debug().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("Failed to close HTTP listener")
	}
}

// Notify allows the running HTTP server to be monitored for a fatal error.
func (s *Server) Notify() <-chan error {
	return s.notify
}

// serve begins serving HTTP requests.
func (s *Server) serve(ctx context.Context) {
	// server.Serve blocks until we close the listener.
	err := s.server.Serve(s.listener)

	select {
	case <-ctx.Done():
		// Nop
	default:
		s.notify <- err
	}
}

func (s *Server) emergencyShutdown() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}
