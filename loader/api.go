package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L)
}

// curried registers a `Name "id" { ... }` constructor that appends to dst.
func curried(L *lua.LState, name string, dst *[]rawDef) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Action "id" { ... } — curried: Action("id") returns a function that
	// takes a table.
	curried(L, "Action", &coll.actions)

	// Fighter "id" { ... } — curried.
	curried(L, "Fighter", &coll.fighters)

	// Encounter "id" { ... } — curried.
	curried(L, "Encounter", &coll.encounters)

	// DropTable "name" { ... } — curried.
	curried(L, "DropTable", &coll.dropTables)

	// AffixTable { family = "...", tier = 1, affixes = { ... } }
	L.SetGlobal("AffixTable", L.NewFunction(func(L *lua.LState) int {
		coll.affixTables = append(coll.affixTables, L.CheckTable(1))
		return 0
	}))

	// ScalingCurve { level_cap = 100, exponent = 1.5, fuzz_percent = 0.1 }
	L.SetGlobal("ScalingCurve", L.NewFunction(func(L *lua.LState) int {
		coll.scaling = L.CheckTable(1)
		return 0
	}))

	// RarityPolicy { rare = { count = 2, tiers = {1, 2} }, ... }
	L.SetGlobal("RarityPolicy", L.NewFunction(func(L *lua.LState) int {
		coll.rarity = L.CheckTable(1)
		return 0
	}))
}

// registerHelpers registers the pass-through table constructors. They add
// nothing over a bare table; content reads better with them.
func registerHelpers(L *lua.LState) {
	passThrough := func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}
	for _, name := range []string{"Effect", "Sub", "Condition", "Affix", "Item", "Drop"} {
		L.SetGlobal(name, L.NewFunction(passThrough))
	}
}
