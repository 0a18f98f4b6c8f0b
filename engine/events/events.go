// Package events defines the combat event vocabulary and collects the
// reactive responses (counters, reflects) that stored fighter state fires
// when damage lands.
package events

import (
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

// Event type constants. Data payload keys are documented per constant.
const (
	// DamageDealt fires after damage reaches a fighter.
	// Data: "source", "target" (names), "amount" (int), "damage_type" (string).
	DamageDealt = "damage_dealt"

	// FighterDowned fires when a fighter's HP reaches zero.
	// Data: "name" (string), "team" (string).
	FighterDowned = "fighter_downed"

	// ShieldBroken fires when absorption empties a fighter's last shield.
	// Data: "name" (string).
	ShieldBroken = "shield_broken"

	// StatusApplied fires when a status gains stacks.
	// Data: "name", "status" (strings), "stacks" (int).
	StatusApplied = "status_applied"

	// CompanionSummoned fires when a companion joins the fight.
	// Data: "name" (string).
	CompanionSummoned = "companion_summoned"

	// CombatEnded fires once per combat, when one side is wiped out.
	// Data: "victor" (string).
	CombatEnded = "combat_ended"
)

// New builds an event from its type and payload pairs.
func New(eventType string, pairs ...any) types.Event {
	data := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			data[key] = pairs[i+1]
		}
	}
	return types.Event{Type: eventType, Data: data}
}

// Reaction is one reactive response owed to an attacker after their hit
// landed: a stored counterattack or a damage reflect.
type Reaction struct {
	Kind     string // "counter" or "reflect"
	Reactor  *state.Fighter
	Attacker *state.Fighter
	Damage   int     // flat damage for counters
	Percent  float64 // reflect fraction of the triggering hit
	Trigger  int     // damage amount that triggered the reaction
}

// CollectReactions inspects the victim's stored counter and reflect state
// after it took a hit and returns the reactions owed to the attacker.
// Counters are consumed; reflects persist for their remaining duration.
// A downed victim reacts to nothing.
func CollectReactions(victim, attacker *state.Fighter, damage int) []Reaction {
	if damage <= 0 || !victim.Alive() || attacker == nil || attacker == victim {
		return nil
	}

	var reactions []Reaction
	for _, c := range victim.Counters {
		reactions = append(reactions, Reaction{
			Kind:     "counter",
			Reactor:  victim,
			Attacker: attacker,
			Damage:   c.Damage,
			Trigger:  damage,
		})
	}
	victim.Counters = nil

	if victim.ReflectPct > 0 && victim.ReflectDuration > 0 {
		reactions = append(reactions, Reaction{
			Kind:     "reflect",
			Reactor:  victim,
			Attacker: attacker,
			Percent:  victim.ReflectPct,
			Trigger:  damage,
		})
	}
	return reactions
}
