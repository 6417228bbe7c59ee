package rest

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/recipient"
	"github.com/inbucket/rcptcontact/pkg/rest/model"
	"github.com/inbucket/rcptcontact/pkg/server/web"
	"github.com/rs/zerolog/log"
)

// maxMessageBytes bounds the raw message accepted by the message_sent hook.
const maxMessageBytes = 10 << 20

// PluginActionV1 runs a client action registered on the request's extension host.  Actions the
// host does not know, including every action while the plugin is disabled, are reported as 404.
func PluginActionV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	name := ctx.Vars["action"]
	action, ok := ctx.ExtHost.Actions.Lookup(name)
	if !ok {
		log.Debug().Str("module", "rest").Str("session", ctx.Request.Session).
			Str("action", name).Msg("No handler for action")
		http.Error(w, "Unknown action", http.StatusNotFound)
		return nil
	}

	form, err := web.ReadForm(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	cmd, err := action(req.Context(), &event.ActionRequest{Request: ctx.Request, Form: form})
	if err != nil {
		return err
	}
	return web.RenderJSON(w, cmd)
}

// MessageSentV1 accepts the headers of a message the webmail host just sent, either as JSON or
// as the raw message/rfc822 source.
func MessageSentV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	var header map[string][]string
	body := io.LimitReader(req.Body, maxMessageBytes)
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "message/rfc822":
		h, err := recipient.ParseMessage(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		header = h
	default:
		sent := &model.JSONMessageSentV1{}
		if err := json.NewDecoder(body).Decode(sent); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		header = sent.Header()
	}

	ctx.ExtHost.Events.MessageSent.Emit(&event.SentMessage{
		Request: ctx.Request,
		Header:  header,
	})
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// RenderMailboxListV1 returns the client scripts to include in the mailbox list page.
func RenderMailboxListV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	page := ctx.ExtHost.Events.RenderMailboxList.Emit(&event.Page{
		Request:  ctx.Request,
		Template: "mailbox",
	})
	scripts := page.Scripts
	if scripts == nil {
		scripts = []string{}
	}
	return web.RenderJSON(w, &model.JSONScriptsV1{Scripts: scripts})
}
