package loot

import (
	"testing"

	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/types"
)

func testPolicy() types.RarityPolicy {
	return types.RarityPolicy{
		AffixCount: map[types.Rarity]int{
			types.RarityCommon: 0,
			types.RarityRare:   2,
			types.RarityEpic:   3,
		},
		AffixTiers: map[types.Rarity][]int{
			types.RarityRare: {1, 1},
			types.RarityEpic: {1, 1, 2},
		},
	}
}

func newTestRoller(seed int64) *Roller {
	r := rng.New(seed)
	registry := NewRegistry(testTables(), &types.ScalingConfig{LevelCap: 100, Exponent: 1.0}, r)
	drops := map[string]types.DropTable{
		"goblin_drops": {
			Name: "goblin_drops",
			Entries: []types.DropEntry{
				{Chance: 1.0, Template: types.ItemTemplate{
					ID: "rusty_blade", Name: "Rusty Blade", Slot: "weapon",
					Rarity: types.RarityRare, LevelSpread: 2,
				}},
				{Chance: 0.0, Template: types.ItemTemplate{
					ID: "crown", Name: "Crown", Rarity: types.RarityEpic,
				}},
			},
		},
	}
	return NewRoller(registry, testPolicy(), drops, r)
}

func TestRollMultiple(t *testing.T) {
	lr := newTestRoller(5)

	results := lr.RollMultiple(2, []int{1, 1, 1}, 50, "", false)
	if len(results) != 2 {
		t.Fatalf("got %d affixes, want count-capped 2", len(results))
	}
	for _, a := range results {
		if a.Tier != 1 {
			t.Errorf("tier = %d, want 1", a.Tier)
		}
	}
}

// With a single-affix pool, duplicate avoidance exhausts its retries and
// skips the slot instead of forcing a repeat.
func TestRollMultipleDuplicateAvoidance(t *testing.T) {
	tables := map[string]types.AffixTable{
		"offense_1": {Family: "offense", Tier: 1,
			Affixes: []types.Affix{{Name: "Sharp", Value: 1}}},
	}
	r := rng.New(2)
	registry := NewRegistry(tables, nil, r)
	lr := NewRoller(registry, testPolicy(), nil, r)

	results := lr.RollMultiple(3, []int{1, 1, 1}, 10, "", true)
	if len(results) != 1 {
		t.Fatalf("got %d affixes, want 1 (duplicates skipped)", len(results))
	}
	if results[0].Name != "Sharp" {
		t.Errorf("affix = %q, want Sharp", results[0].Name)
	}
}

func TestRollForRarity(t *testing.T) {
	lr := newTestRoller(9)

	rare := lr.RollForRarity(types.RarityRare, 30, "")
	if len(rare) == 0 || len(rare) > 2 {
		t.Errorf("rare rolled %d affixes, want 1-2", len(rare))
	}

	if got := lr.RollForRarity(types.RarityCommon, 30, ""); got != nil {
		t.Errorf("common rolled %d affixes, want none", len(got))
	}
	if got := lr.RollForRarity(types.RarityLegendary, 30, ""); got != nil {
		t.Errorf("unknown rarity rolled %d affixes, want none", len(got))
	}
}

// Item level jitters within the template's spread and never escapes [1, 100].
func TestGenerateDropLevelJitter(t *testing.T) {
	lr := newTestRoller(13)
	tmpl := types.ItemTemplate{
		ID: "rusty_blade", Name: "Rusty Blade", Slot: "weapon",
		Rarity: types.RarityRare, LevelSpread: 3,
	}

	for i := 0; i < 100; i++ {
		item := lr.GenerateDrop(tmpl, 20)
		if item.ItemLevel < 17 || item.ItemLevel > 23 {
			t.Fatalf("item level %d outside spread [17, 23]", item.ItemLevel)
		}
		if item.TemplateID != "rusty_blade" || item.Rarity != types.RarityRare {
			t.Fatalf("template fields lost: %+v", item)
		}
	}

	// Spread around level 1 clamps at the floor.
	for i := 0; i < 100; i++ {
		item := lr.GenerateDrop(tmpl, 1)
		if item.ItemLevel < 1 {
			t.Fatalf("item level %d below 1", item.ItemLevel)
		}
	}
}

func TestGenerateDropNoSpread(t *testing.T) {
	lr := newTestRoller(21)
	tmpl := types.ItemTemplate{ID: "crown", Rarity: types.RarityEpic}

	item := lr.GenerateDrop(tmpl, 42)
	if item.ItemLevel != 42 {
		t.Errorf("item level = %d, want exactly 42", item.ItemLevel)
	}
}

// Each entry rolls independently against its chance: a 1.0 entry always
// drops, a 0.0 entry never does.
func TestRollLoot(t *testing.T) {
	lr := newTestRoller(7)

	drops := lr.RollLoot("goblin_drops", 10)
	if len(drops) != 1 {
		t.Fatalf("got %d drops, want 1", len(drops))
	}
	if drops[0].TemplateID != "rusty_blade" {
		t.Errorf("drop = %q, want rusty_blade", drops[0].TemplateID)
	}

	if got := lr.RollLoot("no_such_table", 10); got != nil {
		t.Errorf("unknown table dropped %d items", len(got))
	}
}

// The same seed reproduces the same drops, affixes and values included.
func TestRollLootDeterministic(t *testing.T) {
	a := newTestRoller(99).RollLoot("goblin_drops", 25)
	b := newTestRoller(99).RollLoot("goblin_drops", 25)

	if len(a) != len(b) {
		t.Fatalf("drop counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ItemLevel != b[i].ItemLevel {
			t.Errorf("drop %d level differs: %d vs %d", i, a[i].ItemLevel, b[i].ItemLevel)
		}
		if len(a[i].Affixes) != len(b[i].Affixes) {
			t.Fatalf("drop %d affix counts differ", i)
		}
		for j := range a[i].Affixes {
			if a[i].Affixes[j].Name != b[i].Affixes[j].Name ||
				a[i].Affixes[j].EffectValue != b[i].Affixes[j].EffectValue {
				t.Errorf("drop %d affix %d differs", i, j)
			}
		}
	}
}
