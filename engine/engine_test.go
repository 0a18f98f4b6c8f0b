package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/diceforge/engine/events"
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Meta: types.GameMeta{Title: "Testgame"},
		Actions: map[string]types.ActionDef{
			"smite": {
				ID: "smite", Name: "Smite",
				Effect: types.EffectDescriptor{
					Type:        types.EffectDamage,
					Target:      types.TargetSingleEnemy,
					ValueSource: types.SourceStatic,
					BaseValue:   999,
				},
			},
			"jab": {
				ID: "jab", Name: "Jab",
				Effect: types.EffectDescriptor{
					Type:        types.EffectDamage,
					Target:      types.TargetSingleEnemy,
					ValueSource: types.SourceStatic,
					BaseValue:   5,
				},
			},
			"nova": {
				ID: "nova", Name: "Nova", ManaCost: 20, Cooldown: 2,
				Effect: types.EffectDescriptor{
					Type:        types.EffectDamage,
					Target:      types.TargetAllEnemies,
					ValueSource: types.SourceStatic,
					BaseValue:   3,
				},
			},
			"bite": {
				ID: "bite", Name: "Bite",
				Effect: types.EffectDescriptor{
					Type:        types.EffectDamage,
					Target:      types.TargetSingleEnemy,
					ValueSource: types.SourceStatic,
					BaseValue:   4,
				},
			},
		},
		Fighters: map[string]types.FighterDef{
			"hero": {ID: "hero", Name: "Hero", Team: "hero", Level: 1,
				MaxHP: 100, MaxMana: 50,
				Actions: []string{"jab", "smite", "nova"}},
			"goblin": {ID: "goblin", Name: "Goblin", Team: "enemy", Level: 4,
				MaxHP: 30, Actions: []string{"bite"},
				LootTable: "goblin_drops"},
		},
		Encounters: map[string]types.EncounterDef{
			"ambush": {ID: "ambush", Heroes: []string{"hero"}, Enemies: []string{"goblin"}},
		},
		DropTables: map[string]types.DropTable{
			"goblin_drops": {
				Name: "goblin_drops",
				Entries: []types.DropEntry{
					{Chance: 1.0, Template: types.ItemTemplate{
						ID: "rusty_blade", Name: "Rusty Blade",
						Rarity: types.RarityCommon,
					}},
				},
			},
		},
		Rarity: types.RarityPolicy{
			AffixCount: map[types.Rarity]int{},
			AffixTiers: map[types.Rarity][]int{},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testDefs(), "ambush", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func hasLine(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func hasEvent(evts []types.Event, eventType string) bool {
	for _, ev := range evts {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

func TestNewRejectsUnknownEncounter(t *testing.T) {
	if _, err := New(testDefs(), "nope", 1); err == nil {
		t.Errorf("unknown encounter accepted")
	}
}

// A lethal cast ends the combat, emits the end event, and rolls the
// defeated enemy's drop table exactly once.
func TestStepVictoryAndLoot(t *testing.T) {
	e := newTestEngine(t)

	result := e.Step("cast smite")
	if !e.Combat.Over || e.Combat.Victor != "heroes" {
		t.Fatalf("over=%v victor=%q, want heroes win", e.Combat.Over, e.Combat.Victor)
	}
	if !hasLine(result.Output, "Victory!") {
		t.Errorf("no victory line in %v", result.Output)
	}
	if !hasEvent(result.Events, events.CombatEnded) {
		t.Errorf("no combat-ended event")
	}
	if !hasEvent(result.Events, events.FighterDowned) {
		t.Errorf("no fighter-downed event")
	}
	if len(result.Loot) != 1 || result.Loot[0].TemplateID != "rusty_blade" {
		t.Fatalf("loot = %+v, want the rusty blade", result.Loot)
	}
	if !hasLine(result.Output, "Loot:") {
		t.Errorf("drop not narrated: %v", result.Output)
	}

	// The fight stays over; no second loot roll.
	again := e.Step("cast smite")
	if len(again.Loot) != 0 {
		t.Errorf("loot rolled twice")
	}
	if !hasLine(again.Output, "over") {
		t.Errorf("post-victory step output = %v", again.Output)
	}
}

// Info commands answer without spending the turn or waking the enemies.
func TestStepInfoCommandsAreFree(t *testing.T) {
	e := newTestEngine(t)
	hero := e.Combat.Player()

	for _, cmd := range []string{"status", "help", "actions"} {
		result := e.Step(cmd)
		if len(result.Output) == 0 {
			t.Errorf("%s produced no output", cmd)
		}
		if e.Combat.Turn != 1 {
			t.Errorf("%s consumed the turn", cmd)
		}
		if hero.CurHP != 100 {
			t.Errorf("%s let the enemies act", cmd)
		}
	}

	if !hasLine(e.Step("status").Output, "Turn 1") {
		t.Errorf("status missing turn header")
	}
	if !hasLine(e.Step("actions").Output, "Smite") {
		t.Errorf("actions missing the kit")
	}
}

// A refused cast (not enough mana) does not spend the turn: the enemy
// stays put and the turn counter holds.
func TestStepRefusedCastKeepsTurn(t *testing.T) {
	e := newTestEngine(t)
	hero := e.Combat.Player()
	hero.CurMana = 10 // nova costs 20

	result := e.Step("cast nova")
	if !hasLine(result.Output, "needs 20 mana") {
		t.Errorf("no mana refusal in %v", result.Output)
	}
	if len(result.Results) != 0 {
		t.Errorf("refused cast produced results")
	}
	if e.Combat.Turn != 1 {
		t.Errorf("refused cast consumed the turn")
	}
	if hero.CurHP != 100 {
		t.Errorf("refused cast let the enemy act")
	}
}

// Passing the turn lets the enemy act and advances the round.
func TestStepEndTurnEnemyActs(t *testing.T) {
	e := newTestEngine(t)
	hero := e.Combat.Player()

	result := e.Step("end")
	if e.Combat.Turn != 2 {
		t.Errorf("turn = %d, want 2", e.Combat.Turn)
	}
	if hero.CurHP != 96 {
		t.Errorf("hero HP = %d, want 96 after the goblin's bite", hero.CurHP)
	}
	if !hasEvent(result.Events, events.DamageDealt) {
		t.Errorf("enemy hit emitted no damage event")
	}
}

func TestStepCooldownGate(t *testing.T) {
	e := newTestEngine(t)

	first := e.Step("cast nova")
	if len(first.Results) == 0 {
		t.Fatalf("nova refused: %v", first.Output)
	}

	second := e.Step("cast nova")
	if !hasLine(second.Output, "cooldown") {
		t.Errorf("second cast not refused: %v", second.Output)
	}
	if len(second.Results) != 0 {
		t.Errorf("cooldown cast still executed")
	}
}

func TestStepUnknownInput(t *testing.T) {
	e := newTestEngine(t)

	if !hasLine(e.Step("dance").Output, "Unknown command") {
		t.Errorf("unknown verb not reported")
	}
	if !hasLine(e.Step("").Output, "What do you want") {
		t.Errorf("empty input not prompted")
	}
	if !hasLine(e.Step("cast moonbeam").Output, "don't know") {
		t.Errorf("unknown action not reported")
	}
	if e.Combat.Turn != 1 {
		t.Errorf("bad input consumed the turn")
	}
}

// The same seed and the same script replay to identical output.
func TestStepDeterministic(t *testing.T) {
	script := []string{"cast jab", "end", "cast jab at goblin", "cast smite"}

	run := func() []string {
		e, err := New(testDefs(), "ambush", 77)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		var output []string
		for _, cmd := range script {
			output = append(output, e.Step(cmd).Output...)
		}
		return output
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("output lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("line %d differs:\n  %q\n  %q", i, a[i], b[i])
		}
	}
}

// Restoring the RNG at a saved position continues the original stream.
func TestRestoreRNGContinuesStream(t *testing.T) {
	e := newTestEngine(t)
	e.Step("cast jab")

	seed, pos := e.RNG.Seed(), e.RNG.Position()
	want := e.RNG.Roll(20)

	e.RestoreRNG(seed, pos)
	if got := e.RNG.Roll(20); got != want {
		t.Errorf("post-restore roll = %d, want %d", got, want)
	}
}

func TestFindAction(t *testing.T) {
	e := newTestEngine(t)
	hero := e.Combat.Player()

	if _, ok := e.findAction(hero, "smite"); !ok {
		t.Errorf("id lookup failed")
	}
	if _, ok := e.findAction(hero, "Smite"); !ok {
		t.Errorf("display-name lookup failed")
	}
	if _, ok := e.findAction(hero, "SMITE"); !ok {
		t.Errorf("case-insensitive lookup failed")
	}
	if _, ok := e.findAction(hero, "fireball"); ok {
		t.Errorf("unknown action resolved")
	}
	// Actions outside the fighter's kit stay invisible even when defined.
	if _, ok := e.findAction(hero, "bite"); ok {
		t.Errorf("foreign action resolved")
	}
}
