package luahost

import (
	"net/mail"
	"strings"

	"github.com/inbucket/rcptcontact/pkg/policy"
	lua "github.com/yuin/gopher-lua"
)

// Recipients reach scripts as `address` userdata.  name and address are read-write fields; the
// remaining methods derive from the address.
const mailAddressName = "address"

func registerMailAddressType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(mailAddressName)
	ls.SetGlobal(mailAddressName, mt)
	ls.SetField(mt, "new", ls.NewFunction(newMailAddress))
	ls.SetField(mt, "__index", ls.NewFunction(mailAddressIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(mailAddressNewIndex))
	ls.SetField(mt, "__tostring", ls.NewFunction(mailAddressString))
}

// address.new(name, address)
func newMailAddress(ls *lua.LState) int {
	ls.Push(wrapMailAddress(ls, &mail.Address{
		Name:    ls.CheckString(1),
		Address: ls.CheckString(2),
	}))
	return 1
}

func wrapMailAddress(ls *lua.LState, val *mail.Address) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(mailAddressName))
	return ud
}

func checkMailAddress(ls *lua.LState) *mail.Address {
	ud := ls.CheckUserData(1)
	if val, ok := ud.Value.(*mail.Address); ok {
		return val
	}
	ls.ArgError(1, mailAddressName+" expected")
	return nil
}

func mailAddressIndex(ls *lua.LState) int {
	val := checkMailAddress(ls)
	switch field := ls.CheckString(2); field {
	case "name":
		ls.Push(lua.LString(val.Name))
	case "address":
		ls.Push(lua.LString(val.Address))
	case "local_part":
		ls.Push(lua.LString(policy.LocalPart(val.Address)))
	case "domain":
		_, domain, _ := strings.Cut(val.Address, "@")
		ls.Push(lua.LString(strings.ToLower(domain)))
	case "valid":
		ls.Push(lua.LBool(policy.CheckEmail(val.Address)))
	default:
		ls.Push(lua.LNil)
	}
	return 1
}

func mailAddressNewIndex(ls *lua.LState) int {
	val := checkMailAddress(ls)
	switch field := ls.CheckString(2); field {
	case "name":
		val.Name = ls.CheckString(3)
	case "address":
		val.Address = ls.CheckString(3)
	default:
		ls.ArgError(2, "read-only or unknown field "+field)
	}
	return 0
}

func mailAddressString(ls *lua.LState) int {
	ls.Push(lua.LString(checkMailAddress(ls).String()))
	return 1
}
