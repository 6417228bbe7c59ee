package luahost

import (
	"github.com/inbucket/rcptcontact/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

// requestTable exposes the webmail request an event belongs to.
func requestTable(ls *lua.LState, req event.Request) *lua.LTable {
	t := ls.NewTable()
	ls.SetField(t, "session", lua.LString(req.Session))
	ls.SetField(t, "user", lua.LString(req.User))
	ls.SetField(t, "language", lua.LString(req.Language))
	return t
}

func candidatesBufferedTable(ls *lua.LState, ev *event.CandidatesBuffered) *lua.LTable {
	t := requestTable(ls, ev.Request)
	ls.SetField(t, "count", lua.LNumber(ev.Count))
	return t
}

func contactSavedTable(ls *lua.LState, ev *event.ContactSaved) *lua.LTable {
	t := requestTable(ls, ev.Request)
	ls.SetField(t, "address_book", lua.LString(ev.AddressBook))
	ls.SetField(t, "id", lua.LString(ev.ID))
	ls.SetField(t, "name", lua.LString(ev.Name))
	ls.SetField(t, "email", lua.LString(ev.Email))
	ls.SetField(t, "group", lua.LString(ev.Group))
	return t
}
