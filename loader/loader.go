package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/diceforge/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game        *lua.LTable
	actions     []rawDef
	fighters    []rawDef
	encounters  []rawDef
	affixTables []*lua.LTable
	dropTables  []rawDef
	scaling     *lua.LTable
	rarity      *lua.LTable
}

// Load reads all .lua files from dir, compiles them into content
// definitions, validates references, and returns the immutable Defs. The
// Lua VM is discarded after loading.
func Load(dir string) (*state.Defs, error) {
	luaFiles, err := discoverLua(dir)
	if err != nil {
		return nil, err
	}

	L := newSandboxedVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}
	if err := validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// discoverLua lists the .lua files in dir, game.lua first so constructors
// defined there are available to the rest.
func discoverLua(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	return sortedLuaFiles(luaFiles), nil
}

// newSandboxedVM builds a Lua state with only the safe libraries (base,
// table, string, math) and the escape hatches removed. Content files can
// compute but cannot touch the filesystem or the process.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	// math.randomseed would break deterministic replay.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
	return L
}
