package luahost

import (
	"github.com/inbucket/rcptcontact/pkg/policy"
	lua "github.com/yuin/gopher-lua"
)

// policy.allow forces a recipient into the candidate list, policy.deny drops it, and
// policy.defer leaves the decision to the address books.
const policyName = "policy"

func registerPolicyType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(policyName)
	ls.SetGlobal(policyName, mt)

	ls.SetField(mt, "allow", lua.LTrue)
	ls.SetField(mt, "deny", lua.LFalse)
	ls.SetField(mt, "defer", lua.LNil)
	ls.SetField(mt, "check_email", ls.NewFunction(policyCheckEmail))
}

// policy.check_email(s) applies the address book email rules.
func policyCheckEmail(ls *lua.LState) int {
	ls.Push(lua.LBool(policy.CheckEmail(ls.CheckString(1))))
	return 1
}
