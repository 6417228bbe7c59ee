// Package luahost lets a Lua script veto recipients and react to saved contacts.
package luahost

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/extension"
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const listenerName = "lua"

// Host of Lua extensions.
type Host struct {
	Functions  []string // Functions detected in lua script.
	pool       *statePool
	logContext zerolog.Context
}

// New constructs a new Lua Host, pre-compiling the source.  A missing script is not an error, nil
// is returned instead.
func New(logger zerolog.Logger, conf config.Lua) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	slog := log.With().Str("module", "lua").Str("phase", "startup").Str("path", scriptPath).
		Logger()

	// Pre-load, parse, and compile script.
	if fi, err := os.Stat(scriptPath); err != nil {
		slog.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("lua script %v is a directory", scriptPath)
	}

	slog.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(logger, bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a new Lua Host, loading Lua source from the provided reader.
// The provided path is used in logging and error messages.
func NewFromReader(logger zerolog.Logger, r io.Reader, path string) (*Host, error) {
	logContext := log.With().Str("module", "lua")

	// Pre-parse, and compile script.
	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	// Build the pool and confirm LState is retrievable.
	pool := newStatePool(logger, proto)
	h := &Host{pool: pool, logContext: logContext}
	ls, err := pool.getState()
	if err != nil {
		return nil, err
	}
	defer pool.putState(ls)

	rc, err := getRcptContact(ls)
	if err != nil {
		return nil, err
	}
	h.Functions = rc.defined()
	startupLog := logContext.Str("phase", "startup").Str("path", path).Logger()
	startupLog.Debug().Strs("functions", h.Functions).Msg("Detected Lua functions")

	return h, nil
}

// CreateChannel creates a channel and places it into the named global variable
// in newly created LStates.
func (h *Host) CreateChannel(name string) chan lua.LValue {
	return h.pool.createChannel(name)
}

// Init is an extension.Initializer, it registers a listener for each function the script defines.
// A nil Host registers nothing.
func (h *Host) Init(_ context.Context, extHost *extension.Host, _ event.Request) error {
	if h == nil {
		return nil
	}
	for _, name := range h.Functions {
		switch name {
		case "before." + hookRecipientChecked:
			extHost.Events.BeforeRecipientChecked.AddListener(listenerName,
				h.handleBeforeRecipientChecked)
		case "after." + hookCandidatesBuffered:
			extHost.Events.AfterCandidatesBuffered.AddListener(listenerName,
				h.handleAfterCandidatesBuffered)
		case "after." + hookContactSaved:
			extHost.Events.AfterContactSaved.AddListener(listenerName, h.handleAfterContactSaved)
		}
	}
	return nil
}

// handleBeforeRecipientChecked returns false when the script vetoes the recipient, nil when it
// has no opinion.
func (h *Host) handleBeforeRecipientChecked(ev event.Recipient) *bool {
	logger, ls, rc, ok := h.prepareFuncCall("before." + hookRecipientChecked)
	if !ok {
		return nil
	}
	defer h.pool.putState(ls)

	addr := ev.Address
	err := ls.CallByParam(
		lua.P{Fn: rc.Before.RecipientChecked, NRet: 1, Protect: true},
		requestTable(ls, ev.Request),
		wrapMailAddress(ls, &addr),
	)
	if err != nil {
		logger.Error().Err(err).Str("address", ev.Address.Address).Msg("Failed to call Lua function")
		return nil
	}

	lval := ls.Get(1)
	ls.Pop(1)
	logger.Debug().Str("address", ev.Address.Address).Str("result", lval.String()).
		Msg("Lua function returned")
	if lval == lua.LNil {
		return nil
	}
	result := lua.LVAsBool(lval)
	return &result
}

func (h *Host) handleAfterCandidatesBuffered(ev event.CandidatesBuffered) {
	logger, ls, rc, ok := h.prepareFuncCall("after." + hookCandidatesBuffered)
	if !ok {
		return
	}
	defer h.pool.putState(ls)

	err := ls.CallByParam(
		lua.P{Fn: rc.After.CandidatesBuffered, NRet: 0, Protect: true},
		candidatesBufferedTable(ls, &ev),
	)
	if err != nil {
		logger.Error().Err(err).Str("session", ev.Session).Msg("Failed to call Lua function")
	}
}

func (h *Host) handleAfterContactSaved(ev event.ContactSaved) {
	logger, ls, rc, ok := h.prepareFuncCall("after." + hookContactSaved)
	if !ok {
		return
	}
	defer h.pool.putState(ls)

	err := ls.CallByParam(
		lua.P{Fn: rc.After.ContactSaved, NRet: 0, Protect: true},
		contactSavedTable(ls, &ev),
	)
	if err != nil {
		logger.Error().Err(err).Str("session", ev.Session).Msg("Failed to call Lua function")
	}
}

// prepareFuncCall checks out an LState holding the named function.  On success the caller must
// return the state to the pool.
func (h *Host) prepareFuncCall(funcName string) (
	logger *zerolog.Logger, ls *lua.LState, rc *RcptContact, ok bool) {
	lctx := h.logContext.Str("function", funcName)
	l := lctx.Logger()
	logger = &l
	logger.Debug().Msg("Calling Lua function")

	ls, err := h.pool.getState()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get Lua state instance from pool")
		return logger, nil, nil, false
	}

	rc, err = getRcptContact(ls)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get rcptcontact Lua object")
		h.pool.putState(ls)
		return logger, nil, nil, false
	}

	prefix, name, _ := strings.Cut(funcName, ".")
	var slots map[string]**lua.LFunction
	if prefix == "before" {
		slots = rc.Before.slots()
	} else {
		slots = rc.After.slots()
	}
	if slot, found := slots[name]; !found || *slot == nil {
		logger.Warn().Msg("Lua function no longer defined")
		h.pool.putState(ls)
		return logger, nil, nil, false
	}

	return logger, ls, rc, true
}
