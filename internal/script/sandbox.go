package script

import lua "github.com/yuin/gopher-lua"

// openSafeLibraries opens only the pure Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Open base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package, channel.
}

// removedGlobals reach the file system or load code at run time.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

func installSandbox(L *lua.LState) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}
