package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/diceforge/types"
)

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

const gameLua = `
Game {
    title = "Testgame",
    author = "tester",
    version = "0.1",
}
`

const contentLua = `
Action "fireball" {
    name = "Fireball",
    mana_cost = 10,
    cooldown = 2,
    dice_sides = 8,
    effect = Effect {
        type = "damage",
        target = "single_enemy",
        value_source = "static",
        base_value = 5,
        multiplier = 1.5,
        dice_count = 2,
        damage_type = "fire",
        condition = Condition {
            type = "target_hp_above",
            threshold = 0.5,
            pass_multiplier = 2.0,
        },
    },
}

Action "combo_slash" {
    effect = Effect {
        target = "single_enemy",
        dice_count = 2,
        effects = {
            Sub { type = "damage", value_source = "dice_total" },
            Sub { type = "add_status", status_id = "bleed", duration = 2 },
        },
    },
}

Fighter "hero" {
    name = "Hero",
    team = "hero",
    level = 3,
    max_hp = 100,
    max_mana = 50,
    stats = { strength = 8, armor = 3 },
    actions = { "fireball", "combo_slash" },
}

Fighter "goblin" {
    team = "enemy",
    max_hp = 30,
    actions = { "combo_slash" },
    behavior = {
        { action = "combo_slash", weight = 3 },
    },
    loot_table = "goblin_drops",
}

Encounter "ambush" {
    intro = "A goblin leaps from the bushes!",
    heroes = { "hero" },
    enemies = { "goblin" },
}
`

const lootLua = `
AffixTable {
    family = "offense",
    tier = 1,
    affixes = {
        Affix { name = "Sharp", effect = "bonus_damage", value_min = 1, value_max = 10, weight = 3 },
        Affix { name = "Keen", effect = "crit_chance", value = 5 },
    },
}

AffixTable {
    family = "value",
    tier = 2,
    element_filter = { "fire" },
    affixes = {
        Affix { name = "Burning", effect = "fire_damage", value = 3 },
    },
}

ScalingCurve {
    level_cap = 60,
    exponent = 1.5,
    fuzz_percent = 0.1,
}

RarityPolicy {
    rare = { count = 2, tiers = { 1, 1 } },
    epic = { count = 3, tiers = { 1, 1, 2 } },
}

DropTable "goblin_drops" {
    entries = {
        Drop {
            chance = 0.5,
            template = Item {
                id = "rusty_blade",
                name = "Rusty Blade",
                slot = "weapon",
                rarity = "rare",
                element = "fire",
                level_spread = 2,
            },
        },
    },
}
`

func TestLoad(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"game.lua":    gameLua,
		"content.lua": contentLua,
		"loot.lua":    lootLua,
	})

	defs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if defs.Meta.Title != "Testgame" || defs.Meta.Version != "0.1" {
		t.Errorf("meta = %+v", defs.Meta)
	}

	fb, ok := defs.Actions["fireball"]
	if !ok {
		t.Fatalf("fireball not compiled")
	}
	if fb.Name != "Fireball" || fb.ManaCost != 10 || fb.Cooldown != 2 || fb.DiceSides != 8 {
		t.Errorf("fireball = %+v", fb)
	}
	if fb.Effect.Type != types.EffectDamage || fb.Effect.Target != types.TargetSingleEnemy {
		t.Errorf("fireball effect = %+v", fb.Effect)
	}
	if fb.Effect.BaseValue != 5 || fb.Effect.Multiplier != 1.5 || fb.Effect.DamageType != "fire" {
		t.Errorf("fireball numbers = %+v", fb.Effect)
	}
	if fb.Effect.Condition == nil || fb.Effect.Condition.Type != types.CondTargetHPAbove ||
		fb.Effect.Condition.PassMultiplier != 2.0 {
		t.Errorf("fireball condition = %+v", fb.Effect.Condition)
	}

	combo := defs.Actions["combo_slash"]
	if combo.Name != "combo_slash" {
		t.Errorf("nameless action did not default to its id")
	}
	if len(combo.Effect.SubEffects) != 2 {
		t.Fatalf("sub-effects = %d, want 2", len(combo.Effect.SubEffects))
	}
	if combo.Effect.SubEffects[0].ValueSource != types.SourceDiceTotal {
		t.Errorf("sub 1 = %+v", combo.Effect.SubEffects[0])
	}
	if combo.Effect.SubEffects[1].StatusID != "bleed" || combo.Effect.SubEffects[1].Duration != 2 {
		t.Errorf("sub 2 = %+v", combo.Effect.SubEffects[1])
	}

	hero := defs.Fighters["hero"]
	if hero.Level != 3 || hero.MaxHP != 100 || hero.Stats["strength"] != 8 {
		t.Errorf("hero = %+v", hero)
	}
	goblin := defs.Fighters["goblin"]
	if goblin.Name != "goblin" {
		t.Errorf("nameless fighter did not default to its id")
	}
	if goblin.Level != 1 {
		t.Errorf("fighter level = %d, want default 1", goblin.Level)
	}
	if len(goblin.Behavior) != 1 || goblin.Behavior[0].Weight != 3 {
		t.Errorf("goblin behavior = %+v", goblin.Behavior)
	}

	enc := defs.Encounters["ambush"]
	if enc.Intro == "" || len(enc.Heroes) != 1 || len(enc.Enemies) != 1 {
		t.Errorf("encounter = %+v", enc)
	}

	offense, ok := defs.AffixTables["offense_1"]
	if !ok {
		t.Fatalf("affix table not keyed family_tier: %v", defs.AffixTables)
	}
	if len(offense.Affixes) != 2 || offense.Affixes[0].ValueMax != 10 {
		t.Errorf("offense table = %+v", offense)
	}
	value := defs.AffixTables["value_2"]
	if len(value.ElementFilter) != 1 || value.ElementFilter[0] != "fire" {
		t.Errorf("element filter = %v", value.ElementFilter)
	}

	if defs.Scaling == nil || defs.Scaling.LevelCap != 60 || defs.Scaling.Exponent != 1.5 {
		t.Errorf("scaling = %+v", defs.Scaling)
	}

	if defs.Rarity.AffixCount[types.RarityRare] != 2 {
		t.Errorf("rarity counts = %v", defs.Rarity.AffixCount)
	}
	if tiers := defs.Rarity.AffixTiers[types.RarityEpic]; len(tiers) != 3 || tiers[2] != 2 {
		t.Errorf("epic tiers = %v", tiers)
	}

	drops := defs.DropTables["goblin_drops"]
	if len(drops.Entries) != 1 {
		t.Fatalf("drop entries = %d, want 1", len(drops.Entries))
	}
	entry := drops.Entries[0]
	if entry.Chance != 0.5 || entry.Template.ID != "rusty_blade" ||
		entry.Template.Rarity != types.RarityRare || entry.Template.LevelSpread != 2 {
		t.Errorf("drop entry = %+v", entry)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "empty directory",
			files:   map[string]string{},
			wantErr: "no .lua files",
		},
		{
			name:    "missing game block",
			files:   map[string]string{"content.lua": `Fighter "x" { team = "enemy", max_hp = 1 }`},
			wantErr: "no Game{}",
		},
		{
			name: "lua syntax error",
			files: map[string]string{
				"game.lua": `Game { title = `,
			},
			wantErr: "executing game.lua",
		},
		{
			name: "missing title",
			files: map[string]string{
				"game.lua": `Game { author = "x" }`,
			},
			wantErr: "Game.Title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeContent(t, tt.files)
			_, err := Load(dir)
			if err == nil {
				t.Fatalf("Load accepted bad content")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("Load accepted a nonexistent directory")
	}
}

func TestLoadValidationErrors(t *testing.T) {
	base := map[string]string{"game.lua": gameLua}

	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name: "action without effect",
			extra: `Action "broken" { mana_cost = 1 }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "missing effect table",
		},
		{
			name: "unknown effect type",
			extra: `Action "broken" { effect = Effect { type = "teleport" } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "unknown effect type",
		},
		{
			name: "unknown value source",
			extra: `Action "broken" { effect = Effect { type = "damage", value_source = "moon_phase" } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "unknown value source",
		},
		{
			name: "unknown condition type",
			extra: `Action "broken" { effect = Effect { type = "damage", condition = Condition { type = "moon_full" } } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "unknown condition type",
		},
		{
			name: "bad team",
			extra: `Fighter "h" { team = "wizard", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "unknown team",
		},
		{
			name: "zero hp fighter",
			extra: `Fighter "h" { team = "hero" }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "positive max_hp",
		},
		{
			name: "fighter references missing action",
			extra: `Fighter "h" { team = "hero", max_hp = 1, actions = {"ghost"} }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "undefined action",
		},
		{
			name: "encounter references missing fighter",
			extra: `Fighter "h" { team = "hero", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"dragon"} }`,
			wantErr: "undefined fighter",
		},
		{
			name: "encounter with empty side",
			extra: `Fighter "h" { team = "hero", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {} }`,
			wantErr: "no enemies",
		},
		{
			name: "summon of undefined companion",
			extra: `Action "call" { effect = Effect { type = "summon_companion", companion_id = "ghost" } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "undefined fighter",
		},
		{
			name: "affix tier out of range",
			extra: `AffixTable { family = "offense", tier = 7, affixes = { Affix { name = "X" } } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "tier 7",
		},
		{
			name: "inverted affix range",
			extra: `AffixTable { family = "offense", tier = 1, affixes = { Affix { name = "X", value_min = 9, value_max = 2 } } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "value_min exceeds value_max",
		},
		{
			name: "drop chance out of range",
			extra: `DropTable "d" { entries = { Drop { chance = 1.5, template = Item { id = "x" } } } }
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
			wantErr: "out of [0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeContent(t, map[string]string{
				"game.lua":    base["game.lua"],
				"content.lua": tt.extra,
			})
			_, err := Load(dir)
			if err == nil {
				t.Fatalf("Load accepted invalid content")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// Multiple errors surface in a single ValidationError instead of failing
// one at a time.
func TestLoadCollectsAllErrors(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"game.lua": `Game { title = "T" }`,
		"content.lua": `
Fighter "a" { team = "wizard" }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"a"}, enemies = {"e"} }`,
	})

	_, err := Load(dir)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	// Bad team plus zero max_hp.
	if len(ve.Errors) < 2 {
		t.Errorf("errors = %v, want both collected", ve.Errors)
	}
}

// The sandbox must not expose file or code loading to content scripts.
func TestLoadSandbox(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"game.lua": `Game { title = "T" }
if dofile ~= nil or loadfile ~= nil or load ~= nil then
    error("sandbox leaked a loader")
end
if math.randomseed ~= nil then
    error("sandbox leaked randomseed")
end`,
		"content.lua": `
Fighter "h" { team = "hero", max_hp = 1 }
Fighter "e" { team = "enemy", max_hp = 1 }
Encounter "x" { heroes = {"h"}, enemies = {"e"} }`,
	})

	if _, err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

// game.lua runs first regardless of alphabetical order.
func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zebra.lua", "game.lua", "actions.lua"})
	want := []string{"game.lua", "actions.lua", "zebra.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
