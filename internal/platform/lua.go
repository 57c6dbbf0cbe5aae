package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable publishes a read-only `platform` global into the Lua
// state, so settings files can make platform-conditional choices, e.g.:
//
//	track = { "~/.zshrc", platform.when(platform.is_macos, "~/.zprofile") }
func InjectPlatformTable(L *lua.LState, info *Info) error {
	table := L.NewTable()

	L.SetField(table, "os", lua.LString(info.OS))
	L.SetField(table, "arch", lua.LString(info.Arch))
	L.SetField(table, "hostname", lua.LString(info.Hostname))
	L.SetField(table, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(table, "is_macos", lua.LBool(info.IsMacOS()))

	if info.IsLinux() && info.Platform != "" {
		distro := L.NewTable()
		L.SetField(distro, "id", lua.LString(info.Platform))
		L.SetField(distro, "family", lua.LString(info.Family))
		L.SetField(distro, "version", lua.LString(info.Version))
		L.SetField(table, "distro", distro)
	} else {
		L.SetField(table, "distro", lua.LNil)
	}

	// when(condition, value) returns value if condition holds, nil otherwise.
	L.SetField(table, "when", L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		if cond {
			L.Push(L.Get(2))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal("platform", makeReadOnly(L, table))
	return nil
}

// makeReadOnly wraps table in a proxy whose metatable redirects reads and
// rejects every write.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
