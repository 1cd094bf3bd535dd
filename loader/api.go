package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the Lua constructors as globals.
//
//	Game { title = "...", start = "meadow", ... }
//	Level "meadow" { music = "...", objects = {...}, ... }
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Level "id" { ... } — curried: Level("id") returns a function that
	// takes the level table.
	L.SetGlobal("Level", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.levels = append(coll.levels, rawLevel{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}
