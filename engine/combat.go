package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/engine/target"
	"github.com/nathoo/diceforge/types"
)

// defaultDiceSides is the die used when an action doesn't declare one.
const defaultDiceSides = 6

// findAction resolves an action name against a fighter's kit, matching
// action id or display name, case-insensitive.
func (e *Engine) findAction(actor *state.Fighter, name string) (types.ActionDef, bool) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	for _, id := range actor.Def.Actions {
		action, ok := e.Defs.Actions[id]
		if !ok {
			continue
		}
		if strings.ToLower(action.ID) == nameLower || strings.ToLower(action.Name) == nameLower {
			return action, true
		}
		if strings.ReplaceAll(nameLower, " ", "_") == strings.ToLower(action.ID) {
			return action, true
		}
	}
	return types.ActionDef{}, false
}

// castAction runs one action through the full pipeline: resource checks,
// dice roll, target selection, effect execution, and state application.
func (e *Engine) castAction(actor *state.Fighter, action types.ActionDef, targetName string) types.Result {
	var result types.Result

	if actor.ChannelTurns > 0 && actor.ChannelAbility != action.ID {
		result.Output = append(result.Output,
			fmt.Sprintf("%s is channeling %s and cannot act.", actor.Name(), actor.ChannelAbility))
		return result
	}
	if cd, onCooldown := actor.Cooldowns[action.ID]; onCooldown {
		result.Output = append(result.Output,
			fmt.Sprintf("%s is on cooldown (%d turns left).", action.Name, cd))
		return result
	}
	if actor.ChargesLeft(action) <= 0 {
		result.Output = append(result.Output,
			fmt.Sprintf("%s has no charges left.", action.Name))
		return result
	}
	if actor.CurMana < action.ManaCost {
		result.Output = append(result.Output,
			fmt.Sprintf("%s needs %d mana (%s has %d).", action.Name, action.ManaCost, actor.Name(), actor.CurMana))
		return result
	}

	targets, err := target.Select(e.Combat, actor, action.Effect.Target, targetName)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	dice := e.rollDice(action)

	result.Output = append(result.Output, castLine(actor, action, dice))

	combatants := make([]types.Combatant, len(targets))
	for i, t := range targets {
		combatants[i] = t
	}

	results, err := e.Executor.Execute(&action.Effect, actor, combatants, dice, e.seedFor(actor))
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	// Commit costs only after a successful cast.
	actor.ChangeMana(-action.ManaCost)
	if action.Cooldown > 0 {
		actor.Cooldowns[action.ID] = action.Cooldown
	}
	if action.Charges > 0 {
		actor.ChargesUsed[action.ID]++
	}

	evts, output := e.applyResults(actor, results)
	result.Results = results
	result.Events = evts
	result.Output = append(result.Output, output...)
	return result
}

// rollDice rolls the action's dice pool on the shared combat stream.
func (e *Engine) rollDice(action types.ActionDef) []int {
	count := action.Effect.DiceCount
	if count <= 0 {
		return nil
	}
	sides := action.DiceSides
	if sides <= 0 {
		sides = defaultDiceSides
	}
	return e.RNG.RollDice(count, sides)
}

// seedFor assembles the context overrides for an actor's execution.
func (e *Engine) seedFor(actor *state.Fighter) *types.ContextSeed {
	turn := e.Combat.Turn
	enemies := len(e.Combat.AliveEnemiesOf(actor))
	companions := e.Combat.AliveCompanions()
	return &types.ContextSeed{
		TurnNumber:      &turn,
		AliveEnemies:    &enemies,
		AliveCompanions: &companions,
	}
}

// enemyTurn selects and casts one action for an AI-controlled fighter,
// weighted by its behavior table. Fighters without a behavior table use
// their first action.
func (e *Engine) enemyTurn(enemy *state.Fighter) types.Result {
	var result types.Result

	action, ok := e.pickEnemyAction(enemy)
	if !ok {
		result.Output = append(result.Output, fmt.Sprintf("%s hesitates.", enemy.Name()))
		return result
	}

	return e.castAction(enemy, action, "")
}

// pickEnemyAction draws from the behavior weights, skipping entries that
// reference unknown actions.
func (e *Engine) pickEnemyAction(enemy *state.Fighter) (types.ActionDef, bool) {
	behavior := enemy.Def.Behavior
	if len(behavior) == 0 {
		if len(enemy.Def.Actions) == 0 {
			return types.ActionDef{}, false
		}
		action, ok := e.Defs.Actions[enemy.Def.Actions[0]]
		return action, ok
	}

	weights := make([]int, len(behavior))
	for i, b := range behavior {
		weights[i] = b.Weight
	}
	idx := e.RNG.WeightedSelect(weights)
	action, ok := e.Defs.Actions[behavior[idx].Action]
	return action, ok
}

// castLine narrates a cast, showing the raw dice so the player can follow
// the arithmetic.
func castLine(actor *state.Fighter, action types.ActionDef, dice []int) string {
	if len(dice) == 0 {
		return fmt.Sprintf("%s uses %s!", actor.Name(), action.Name)
	}
	total := 0
	parts := make([]string, len(dice))
	for i, v := range dice {
		total += v
		parts[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%s uses %s! Roll: %dd → [%s] = %d",
		actor.Name(), action.Name, len(dice), strings.Join(parts, ","), total)
}
