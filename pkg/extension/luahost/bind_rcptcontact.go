package luahost

import (
	"errors"
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

const (
	rcptContactName      = "rcptcontact"
	rcptContactHooksName = "rcptcontact_hooks"
)

// Hook names, as seen from Lua.
const (
	hookRecipientChecked   = "recipient_checked"
	hookCandidatesBuffered = "candidates_buffered"
	hookContactSaved       = "contact_saved"
)

// RcptContact is the Go side of the rcptcontact global.
type RcptContact struct {
	Before BeforeFuncs
	After  AfterFuncs
}

// BeforeFuncs are called synchronously, their results alter the outcome of the event.
type BeforeFuncs struct {
	RecipientChecked *lua.LFunction
}

// AfterFuncs are called asynchronously once an event has happened.
type AfterFuncs struct {
	CandidatesBuffered *lua.LFunction
	ContactSaved       *lua.LFunction
}

// hookTable is implemented by the before and after function sets.
type hookTable interface {
	prefix() string
	slots() map[string]**lua.LFunction
}

func (b *BeforeFuncs) prefix() string { return "before" }

func (b *BeforeFuncs) slots() map[string]**lua.LFunction {
	return map[string]**lua.LFunction{
		hookRecipientChecked: &b.RecipientChecked,
	}
}

func (a *AfterFuncs) prefix() string { return "after" }

func (a *AfterFuncs) slots() map[string]**lua.LFunction {
	return map[string]**lua.LFunction{
		hookCandidatesBuffered: &a.CandidatesBuffered,
		hookContactSaved:       &a.ContactSaved,
	}
}

// defined returns the qualified names of the functions the script has set, ex:
// "after.contact_saved".
func (rc *RcptContact) defined() []string {
	var names []string
	for _, ht := range []hookTable{&rc.Before, &rc.After} {
		for name, slot := range ht.slots() {
			if *slot != nil {
				names = append(names, ht.prefix()+"."+name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func registerRcptContactTypes(ls *lua.LState) {
	// rcptcontact type.
	mt := ls.NewTypeMetatable(rcptContactName)
	ls.SetField(mt, "__index", ls.NewFunction(rcptContactIndex))

	// rcptcontact.before and rcptcontact.after type.
	mt = ls.NewTypeMetatable(rcptContactHooksName)
	ls.SetField(mt, "__index", ls.NewFunction(hooksIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(hooksNewIndex))

	// rcptcontact global.
	ud := ls.NewUserData()
	ud.Value = &RcptContact{}
	ls.SetMetatable(ud, ls.GetTypeMetatable(rcptContactName))
	ls.SetGlobal(rcptContactName, ud)
}

func getRcptContact(ls *lua.LState) (*RcptContact, error) {
	lv := ls.GetGlobal(rcptContactName)
	if lv == nil || lv == lua.LNil {
		return nil, errors.New("rcptcontact object was nil")
	}

	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("rcptcontact object was type %s instead of UserData", lv.Type())
	}

	val, ok := ud.Value.(*RcptContact)
	if !ok {
		return nil, fmt.Errorf("rcptcontact object (%v) could not be cast", ud.Value)
	}

	return val, nil
}

func wrapHooks(ls *lua.LState, val hookTable) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(rcptContactHooksName))

	return ud
}

func checkHooks(ls *lua.LState) hookTable {
	ud := ls.CheckUserData(1)
	if val, ok := ud.Value.(hookTable); ok {
		return val
	}
	ls.ArgError(1, rcptContactHooksName+" expected")
	return nil
}

// rcptcontact getter.
func rcptContactIndex(ls *lua.LState) int {
	ud := ls.CheckUserData(1)
	rc, ok := ud.Value.(*RcptContact)
	if !ok {
		ls.ArgError(1, rcptContactName+" expected")
		return 0
	}

	switch ls.CheckString(2) {
	case "before":
		ls.Push(wrapHooks(ls, &rc.Before))
	case "after":
		ls.Push(wrapHooks(ls, &rc.After))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// rcptcontact.before/after getter.
func hooksIndex(ls *lua.LState) int {
	ht := checkHooks(ls)
	slot, ok := ht.slots()[ls.CheckString(2)]
	if !ok || *slot == nil {
		ls.Push(lua.LNil)
		return 1
	}
	ls.Push(*slot)

	return 1
}

// rcptcontact.before/after setter.
func hooksNewIndex(ls *lua.LState) int {
	ht := checkHooks(ls)
	index := ls.CheckString(2)

	slot, ok := ht.slots()[index]
	if !ok {
		ls.RaiseError("invalid rcptcontact.%s index %q", ht.prefix(), index)
		return 0
	}
	*slot = ls.CheckFunction(3)

	return 0
}
