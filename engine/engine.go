// Package engine provides the Step() orchestrator that wires together
// parsing, target selection, effect execution, reactions, and loot into a
// single combat turn.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/diceforge/engine/effects"
	"github.com/nathoo/diceforge/engine/events"
	"github.com/nathoo/diceforge/engine/parser"
	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/loot"
	"github.com/nathoo/diceforge/types"
)

// Engine holds the content definitions and the mutable combat state.
type Engine struct {
	Defs     *state.Defs
	Combat   *state.Combat
	RNG      *rng.RNG
	Executor *effects.Executor
	Registry *loot.Registry
	Roller   *loot.Roller

	downed map[*state.Fighter]bool
	looted bool
}

// New creates an engine for one encounter. Everything random in the
// session — dice, conditions, affix draws, level jitter — flows from the
// one seed.
func New(defs *state.Defs, encounterID string, seed int64) (*Engine, error) {
	combat, err := state.NewCombat(defs, encounterID)
	if err != nil {
		return nil, err
	}

	r := rng.New(seed)
	registry := loot.NewRegistry(defs.AffixTables, defs.Scaling, r)

	return &Engine{
		Defs:     defs,
		Combat:   combat,
		RNG:      r,
		Executor: effects.NewExecutor(r),
		Registry: registry,
		Roller:   loot.NewRoller(registry, defs.Rarity, defs.DropTables, r),
		downed:   map[*state.Fighter]bool{},
	}, nil
}

// RestoreRNG re-creates the RNG stream at a saved position. The executor
// and loot pipeline are rebuilt so they draw from the restored stream.
func (e *Engine) RestoreRNG(seed, position int64) {
	e.RNG = rng.Restore(seed, position)
	e.Executor = effects.NewExecutor(e.RNG)
	e.Registry = loot.NewRegistry(e.Defs.AffixTables, e.Defs.Scaling, e.RNG)
	e.Roller = loot.NewRoller(e.Registry, e.Defs.Rarity, e.Defs.DropTables, e.RNG)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	if e.Combat.Over {
		result.Output = append(result.Output, "The fight is over. Use /quit to exit or /load to restore a save.")
		return result
	}

	intent := parser.Parse(input)
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	player := e.Combat.Player()
	if player == nil || !player.Alive() {
		result.Output = append(result.Output, "You are in no state to act.")
		return result
	}

	// Informational commands don't consume the turn.
	switch intent.Verb {
	case "help":
		result.Output = append(result.Output, helpText()...)
		return result
	case "status":
		result.Output = append(result.Output, e.describeStatus()...)
		return result
	case "actions":
		result.Output = append(result.Output, e.describeActions(player)...)
		return result
	}

	acted := false
	switch intent.Verb {
	case "cast":
		if intent.Object == "" {
			result.Output = append(result.Output, "Cast what? (try: actions)")
			return result
		}
		action, ok := e.findAction(player, intent.Object)
		if !ok {
			result.Output = append(result.Output, fmt.Sprintf("You don't know %q.", intent.Object))
			return result
		}
		actionResult := e.castAction(player, action, intent.Target)
		mergeResult(&result, actionResult)
		acted = len(actionResult.Results) > 0

	case "attack":
		// Bare attack uses the first known action.
		if len(player.Def.Actions) == 0 {
			result.Output = append(result.Output, "You have no actions.")
			return result
		}
		action, ok := e.Defs.Actions[player.Def.Actions[0]]
		if !ok {
			result.Output = append(result.Output, "You have no actions.")
			return result
		}
		actionResult := e.castAction(player, action, intent.Object)
		mergeResult(&result, actionResult)
		acted = len(actionResult.Results) > 0

	case "end":
		result.Output = append(result.Output, fmt.Sprintf("%s bides their time.", player.Name()))
		acted = true

	default:
		result.Output = append(result.Output, fmt.Sprintf("Unknown command %q. (try: help)", intent.Verb))
		return result
	}

	if !acted {
		// The cast was refused (cooldown, mana, bad target) — the turn
		// is not spent and enemies don't move.
		return result
	}

	if e.checkEnd(&result) {
		return result
	}

	// Extra actions granted this turn let the player act again before
	// enemies respond.
	if player.TempActions > 0 {
		player.TempActions--
		result.Output = append(result.Output, fmt.Sprintf("%s has an extra action! (%d left)", player.Name(), player.TempActions))
		return result
	}

	// Enemy turns.
	for _, enemy := range e.enemies() {
		if e.Combat.Over {
			break
		}
		if !enemy.Alive() {
			continue
		}
		enemyResult := e.enemyTurn(enemy)
		mergeResult(&result, enemyResult)
		if e.checkEnd(&result) {
			return result
		}
	}

	// End-of-round upkeep.
	for _, f := range e.Combat.Fighters {
		if f.Alive() {
			f.TickUpkeep()
		}
	}
	e.Combat.Turn++

	return result
}

// enemies snapshots the AI-controlled fighters before the round plays out,
// so companions summoned mid-round don't shift the iteration.
func (e *Engine) enemies() []*state.Fighter {
	var out []*state.Fighter
	for _, f := range e.Combat.Fighters {
		if f.Def.Team == "enemy" {
			out = append(out, f)
		}
	}
	return out
}

// checkEnd tests for victory and, once, rolls the defeated enemies' drop
// tables. Returns true when the combat just ended or is already over.
func (e *Engine) checkEnd(result *types.Result) bool {
	if e.Combat.CheckVictory() && !e.looted {
		e.looted = true
		result.Events = append(result.Events, events.New(events.CombatEnded, "victor", e.Combat.Victor))

		if e.Combat.Victor == "heroes" {
			result.Output = append(result.Output, "Victory!")
			drops := e.rollVictoryLoot()
			result.Loot = append(result.Loot, drops...)
			for _, item := range drops {
				result.Output = append(result.Output, describeDrop(item))
			}
		} else {
			result.Output = append(result.Output, "You have fallen.")
		}
	}
	return e.Combat.Over
}

// rollVictoryLoot processes each downed enemy's drop table at its level.
func (e *Engine) rollVictoryLoot() []types.DroppedItem {
	var drops []types.DroppedItem
	for _, f := range e.Combat.Fighters {
		if f.Def.Team != "enemy" || f.Alive() || f.Def.LootTable == "" {
			continue
		}
		drops = append(drops, e.Roller.RollLoot(f.Def.LootTable, f.Def.Level)...)
	}
	return drops
}

// describeStatus renders every fighter's vital line.
func (e *Engine) describeStatus() []string {
	var output []string
	output = append(output, fmt.Sprintf("--- Turn %d ---", e.Combat.Turn))
	for _, f := range e.Combat.Fighters {
		line := fmt.Sprintf("%s [%s]  HP %d/%d  MP %d/%d",
			f.Name(), f.Def.Team, f.CurHP, f.MaxHP(), f.CurMana, f.MaxMana())
		if !f.Alive() {
			line += "  (down)"
		}
		if tags := statusTags(f); len(tags) > 0 {
			line += "  " + strings.Join(tags, " ")
		}
		output = append(output, line)
	}
	return output
}

func statusTags(f *state.Fighter) []string {
	var tags []string
	for _, s := range f.Statuses {
		tags = append(tags, fmt.Sprintf("[%s x%d]", s.ID, s.Stacks))
	}
	for _, s := range f.Shields {
		tags = append(tags, fmt.Sprintf("[shield %d]", s.Amount))
	}
	var marks []string
	for id := range f.Marks {
		marks = append(marks, id)
	}
	sort.Strings(marks)
	for _, id := range marks {
		tags = append(tags, fmt.Sprintf("[mark %s]", id))
	}
	if f.ChannelTurns > 0 {
		tags = append(tags, fmt.Sprintf("[channeling %s]", f.ChannelAbility))
	}
	return tags
}

// describeActions lists a fighter's kit with costs and availability.
func (e *Engine) describeActions(f *state.Fighter) []string {
	var output []string
	output = append(output, "Actions:")
	for _, id := range f.Def.Actions {
		action, ok := e.Defs.Actions[id]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %s", action.Name)
		if action.ManaCost > 0 {
			line += fmt.Sprintf("  (%d MP)", action.ManaCost)
		}
		if cd, onCooldown := f.Cooldowns[action.ID]; onCooldown {
			line += fmt.Sprintf("  [cooldown %d]", cd)
		}
		if action.Charges > 0 {
			line += fmt.Sprintf("  [%d/%d charges]", f.ChargesLeft(action), action.Charges)
		}
		output = append(output, line)
	}
	return output
}

func describeDrop(item types.DroppedItem) string {
	line := fmt.Sprintf("Loot: %s (%s, ilvl %d)", item.Name, item.Rarity, item.ItemLevel)
	for _, a := range item.Affixes {
		line += fmt.Sprintf("\n  + %s: %.1f", a.Name, a.EffectValue)
	}
	return line
}

func helpText() []string {
	return []string{
		"Commands:",
		"  cast <action> [at <target>]  — use an action",
		"  attack [<target>]            — use your first action",
		"  actions                      — list your actions",
		"  status                       — show all fighters",
		"  end                          — pass the turn",
	}
}

// mergeResult folds a sub-step's output into the turn result.
func mergeResult(dst *types.Result, src types.Result) {
	dst.Results = append(dst.Results, src.Results...)
	dst.Events = append(dst.Events, src.Events...)
	dst.Output = append(dst.Output, src.Output...)
	dst.Loot = append(dst.Loot, src.Loot...)
}
