// Package rules evaluates effect conditions: the gating predicates that
// block an effect or scale its magnitude before value resolution.
package rules

import (
	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/types"
)

// Verdict is the outcome of evaluating a condition against a context.
type Verdict struct {
	Blocked    bool
	Multiplier float64
}

// passed returns the verdict for a condition that fired, applying
// pass-multiplier or scales-on-pass semantics.
func passed(multiplier float64) Verdict {
	if multiplier == 0 {
		multiplier = 1.0
	}
	return Verdict{Blocked: false, Multiplier: multiplier}
}

var blocked = Verdict{Blocked: true, Multiplier: 0.0}

// Evaluate checks a condition against the context. A nil condition or
// condition type "none" never blocks and never scales. Random chance
// consumes one draw from the shared combat RNG; every other condition
// type is pure and idempotent given identical context.
func Evaluate(c *types.ConditionDescriptor, ctx *types.Context, r *rng.RNG) Verdict {
	if c == nil || c.Type == types.CondNone || c.Type == "" {
		return Verdict{Blocked: false, Multiplier: 1.0}
	}

	rawPass := rawPass(c, ctx, r)

	finalPass := rawPass
	if c.Invert {
		finalPass = !rawPass
	}
	if !finalPass {
		return blocked
	}

	if !c.ScalesOnPass {
		return passed(c.PassMultiplier)
	}
	return passed(scaledMultiplier(c, ctx))
}

// rawPass computes the un-inverted boolean for each condition type.
func rawPass(c *types.ConditionDescriptor, ctx *types.Context, r *rng.RNG) bool {
	switch c.Type {
	case types.CondSourceHPAbove:
		return hpPercent(ctx.Source) > c.Threshold
	case types.CondSourceHPBelow:
		return hpPercent(ctx.Source) < c.Threshold
	case types.CondTargetHPAbove:
		return hpPercent(ctx.Target) > c.Threshold
	case types.CondTargetHPBelow:
		return hpPercent(ctx.Target) < c.Threshold
	case types.CondTargetHasStatus:
		return ctx.Target != nil && ctx.Target.StatusStacks(c.StatusID) > 0
	case types.CondTargetMissingStatus:
		return ctx.Target == nil || ctx.Target.StatusStacks(c.StatusID) == 0
	case types.CondSourceHasStatus:
		return ctx.Source != nil && ctx.Source.StatusStacks(c.StatusID) > 0
	case types.CondDiceTotalAbove:
		return float64(ctx.DiceTotal) > c.Threshold
	case types.CondDiceTotalBelow:
		return float64(ctx.DiceTotal) < c.Threshold
	case types.CondDiceCountAbove:
		return float64(ctx.DiceCount) > c.Threshold
	case types.CondTurnNumberAbove:
		return float64(ctx.TurnNumber) > c.Threshold
	case types.CondManaAbove:
		return manaPercent(ctx.Source) > c.Threshold
	case types.CondManaBelow:
		return manaPercent(ctx.Source) < c.Threshold
	case types.CondRandomChance:
		return r.Float64() < c.Threshold
	default:
		return false
	}
}

// scaledMultiplier recomputes the pass multiplier from how far past the
// threshold the relevant context value is. HP-below conditions scale with
// the missing-HP fraction; above-threshold comparisons scale with the
// value/threshold ratio, falling back to the flat multiplier when the
// threshold would divide by zero.
func scaledMultiplier(c *types.ConditionDescriptor, ctx *types.Context) float64 {
	base := c.PassMultiplier
	if base == 0 {
		base = 1.0
	}

	switch c.Type {
	case types.CondSourceHPBelow:
		return base * (1.0 + (1.0 - hpPercent(ctx.Source)))
	case types.CondTargetHPBelow:
		return base * (1.0 + (1.0 - hpPercent(ctx.Target)))
	case types.CondDiceTotalAbove:
		return ratioMultiplier(base, float64(ctx.DiceTotal), c.Threshold)
	case types.CondDiceCountAbove:
		return ratioMultiplier(base, float64(ctx.DiceCount), c.Threshold)
	case types.CondTurnNumberAbove:
		return ratioMultiplier(base, float64(ctx.TurnNumber), c.Threshold)
	default:
		return base
	}
}

func ratioMultiplier(base, value, threshold float64) float64 {
	if threshold <= 0 {
		return base
	}
	return base * (value / threshold)
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
