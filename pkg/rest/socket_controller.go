package rest

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/msghub"
	"github.com/inbucket/rcptcontact/pkg/rest/model"
	"github.com/inbucket/rcptcontact/pkg/server/web"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Events queued for a slow websocket before new ones are dropped.
	listenerQueueLen = 100
)

var errListenerClosed = errors.New("monitor listener closed")

// options for gorilla connection upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// contactListener relays the events of a single session from the msghub to a websocket.
type contactListener struct {
	hub     *msghub.Hub                    // Global message hub.
	c       chan *model.JSONMonitorEventV1 // Queue of outgoing events.
	done    chan struct{}                  // Closed when the socket goes away.
	once    sync.Once                      // Guards Close.
	session string                         // Session to monitor.
}

// newContactListener creates a listener and registers it.
func newContactListener(hub *msghub.Hub, session string) *contactListener {
	cl := &contactListener{
		hub:     hub,
		c:       make(chan *model.JSONMonitorEventV1, listenerQueueLen),
		done:    make(chan struct{}),
		session: session,
	}
	hub.AddListener(cl)
	return cl
}

// Receive handles a filled session buffer.
func (cl *contactListener) Receive(ev event.CandidatesBuffered) error {
	if ev.Session != cl.session {
		return nil
	}
	return cl.enqueue(&model.JSONMonitorEventV1{Variant: model.VariantPending, Count: ev.Count})
}

// Clear handles a consumed session buffer.
func (cl *contactListener) Clear(session string) error {
	if session != cl.session {
		return nil
	}
	return cl.enqueue(&model.JSONMonitorEventV1{Variant: model.VariantCleared})
}

// enqueue never blocks the hub, a full queue drops the event.
func (cl *contactListener) enqueue(ev *model.JSONMonitorEventV1) error {
	select {
	case <-cl.done:
		return errListenerClosed
	default:
	}
	select {
	case cl.c <- ev:
	default:
		log.Warn().Str("module", "rest").Str("session", cl.session).Str("variant", ev.Variant).
			Msg("Monitor queue full, dropping event")
	}
	return nil
}

// WSReader makes sure the websocket client is still connected, discards any messages from client
func (cl *contactListener) WSReader(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Str("session", cl.session).Logger()
	defer cl.Close()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn().Err(err).Msg("Failed to setup read deadline")
	}
	conn.SetPongHandler(func(string) error {
		slog.Debug().Msg("Got pong")
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			slog.Warn().Err(err).Msg("Failed to set read deadline in pong")
		}
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				// Unexpected close code
				slog.Warn().Err(err).Msg("Socket error")
			} else {
				slog.Debug().Msg("Closing socket")
			}
			break
		}
	}
}

// WSWriter makes sure the websocket client is still connected
func (cl *contactListener) WSWriter(conn *websocket.Conn) {
	slog := log.With().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Str("session", cl.session).Logger()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.Close()
	}()

	// Handle events from hub until the listener is closed
	for {
		select {
		case <-cl.done:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for close")
			}
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case ev := <-cl.c:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for event")
			}
			if conn.WriteJSON(ev) != nil {
				// Write failed
				return
			}
		case <-ticker.C:
			// Send ping
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.Warn().Err(err).Msg("Failed to set write deadline for ping")
			}
			if conn.WriteMessage(websocket.PingMessage, []byte{}) != nil {
				// Write error
				return
			}
			slog.Debug().Msg("Sent ping")
		}
	}
}

// Close removes the listener registration
func (cl *contactListener) Close() {
	cl.once.Do(func() {
		close(cl.done)
		cl.hub.RemoveListener(cl)
	})
}

// MonitorContactsV1 is a web handler which upgrades the connection to a websocket and notifies
// the client whenever its session has contacts waiting for review.
func MonitorContactsV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if ctx.MsgHub == nil {
		http.Error(w, "Monitor is not available", http.StatusServiceUnavailable)
		return nil
	}
	// Upgrade to Websocket.
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	web.ExpWebSocketConnectsCurrent.Add(1)
	defer func() {
		_ = conn.Close()
		web.ExpWebSocketConnectsCurrent.Add(-1)
	}()
	log.Debug().Str("module", "rest").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Str("session", ctx.Request.Session).
		Msg("Upgraded to WebSocket")
	// Create, register listener; then interact with conn.
	cl := newContactListener(ctx.MsgHub, ctx.Request.Session)
	go cl.WSWriter(conn)
	cl.WSReader(conn)
	return nil
}
