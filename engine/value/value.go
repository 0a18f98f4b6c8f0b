// Package value resolves an effect's base number against a combat context
// using one of the closed set of scaling strategies. Resolution is pure:
// no randomness, no state mutation.
package value

import (
	"math"

	"github.com/nathoo/diceforge/types"
)

// Lookup names the stat or status a value source reads. Only source_stat,
// source_defense_stat, and target_status_stacks consult it.
type Lookup struct {
	StatName string
	StatusID string
}

// Resolve computes the scaled integer value for an effect.
//
// STATIC rounds base*multiplier. Every other source computes a float from
// the context and the base, then floors after applying the multiplier.
// The *_current_hp / *_max_hp / trigger_damage_amount family treats base as
// a percentage of the raw HP number (divided by 100) and is guaranteed to
// return at least 1 when base > 0 — a percent-of-HP effect must never
// round to a no-op. No other family gets that floor.
//
// Missing stats and statuses resolve to 0, not an error.
func Resolve(base int, source types.ValueSource, ctx *types.Context, multiplier float64, lookup Lookup) int {
	if multiplier == 0 {
		multiplier = 1.0
	}

	if source == types.SourceStatic || source == "" {
		result := int(math.Round(float64(base) * multiplier))
		if result < 0 {
			return 0
		}
		return result
	}

	var scaled float64
	switch source {
	case types.SourceDiceTotal:
		// The dice total stands in for the value itself; base is unused.
		scaled = float64(ctx.DiceTotal)

	case types.SourceDiceCount:
		scaled = float64(ctx.DiceCount) * float64(base)

	case types.SourceSourceStat, types.SourceSourceDefenseStat:
		scaled = float64(statOf(ctx.Source, lookup.StatName)) * float64(base)

	case types.SourceSourceHPPercent:
		scaled = hpPercent(ctx.Source) * float64(base)

	case types.SourceSourceMissingHP:
		scaled = (1.0 - hpPercent(ctx.Source)) * float64(base)

	case types.SourceTargetHPPercent:
		scaled = hpPercent(ctx.Target) * float64(base)

	case types.SourceTargetMissingHP:
		scaled = (1.0 - hpPercent(ctx.Target)) * float64(base)

	case types.SourceTargetStatusStacks:
		if ctx.Target != nil {
			scaled = float64(ctx.Target.StatusStacks(lookup.StatusID)) * float64(base)
		}

	case types.SourceActiveStatusCount:
		if ctx.Target != nil {
			scaled = float64(ctx.Target.ActiveStatusCount()) * float64(base)
		}

	case types.SourceTurnNumber:
		scaled = float64(ctx.TurnNumber) * float64(base)

	case types.SourceManaPercent:
		scaled = manaPercent(ctx.Source) * float64(base)

	case types.SourceAliveEnemyCount:
		scaled = float64(ctx.AliveEnemies) * float64(base)

	case types.SourceAliveCompanionCount:
		scaled = float64(ctx.AliveCompanions) * float64(base)

	case types.SourceSourceCurrentHP:
		return percentOf(hpOf(ctx.Source), base, multiplier)

	case types.SourceSourceMaxHP:
		return percentOf(maxHPOf(ctx.Source), base, multiplier)

	case types.SourceTargetCurrentHP:
		return percentOf(hpOf(ctx.Target), base, multiplier)

	case types.SourceTargetMaxHP:
		return percentOf(maxHPOf(ctx.Target), base, multiplier)

	case types.SourceTriggerDamageAmount:
		return percentOf(ctx.TriggerDamage, base, multiplier)

	default:
		scaled = 0
	}

	result := int(math.Floor(scaled * multiplier))
	if result < 0 {
		return 0
	}
	return result
}

// percentOf applies the percentage-of-raw-value convention: base is a
// percent applied to the raw number, floored, clamped to minimum 1 when
// both the percent and the raw value are positive. A percent of nothing
// stays nothing.
func percentOf(raw, base int, multiplier float64) int {
	result := int(math.Floor(float64(raw) * float64(base) / 100.0 * multiplier))
	if result < 0 {
		return 0
	}
	if result == 0 && base > 0 && raw > 0 {
		return 1
	}
	return result
}

func hpPercent(c types.Combatant) float64 {
	if c == nil || c.MaxHP() <= 0 {
		return 0
	}
	return float64(c.HP()) / float64(c.MaxHP())
}

func manaPercent(c types.Combatant) float64 {
	if c == nil || c.MaxMana() <= 0 {
		return 0
	}
	return float64(c.Mana()) / float64(c.MaxMana())
}

func hpOf(c types.Combatant) int {
	if c == nil {
		return 0
	}
	return c.HP()
}

func maxHPOf(c types.Combatant) int {
	if c == nil {
		return 0
	}
	return c.MaxHP()
}

func statOf(c types.Combatant, name string) int {
	if c == nil || name == "" {
		return 0
	}
	return c.Stat(name)
}
