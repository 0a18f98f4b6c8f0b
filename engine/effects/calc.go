package effects

import (
	"math"

	"github.com/nathoo/diceforge/engine/value"
	"github.com/nathoo/diceforge/types"
)

// compute dispatches a single step to its per-type calculator. The
// condition multiplier feeds value resolution; type-local multipliers
// (damage_multiplier, strike_multiplier, ...) apply on top.
func (x *Executor) compute(step types.SubEffect, ctx *types.Context, condMult float64) types.EffectResult {
	res := types.EffectResult{
		Type:       step.Type,
		Target:     ctx.Target,
		Success:    true,
		DamageType: step.DamageType,
	}

	switch step.Type {
	case types.EffectDamage:
		res.Damage, res.DiceTotal = damageOf(step, ctx, condMult)

	case types.EffectHeal:
		base := resolve(step, ctx, condMult)
		heal := base
		if step.UsesDice {
			heal += diceTotal(step, ctx)
		}
		res.Heal = scale(heal, step.Multiplier)

	case types.EffectAddStatus:
		res.StatusID = step.StatusID
		res.StatusDuration = step.Duration
		res.StatusStacks = countOrDefault(step.Count, 1)

	case types.EffectRemoveStatus:
		res.StatusID = step.StatusID
		res.StatusStacks = step.Count // 0 removes all stacks

	case types.EffectCleanse:
		res.CleanseCount = step.Count // 0 cleanses everything

	case types.EffectShield:
		amount := resolve(step, ctx, condMult)
		if step.UsesDice {
			amount += diceTotal(step, ctx)
		}
		res.ShieldAmount = scale(amount, step.Multiplier)
		res.ShieldDuration = countOrDefault(step.Duration, 1)

	case types.EffectArmorBuff:
		bonus := resolve(step, ctx, condMult)
		if step.UsesDice {
			bonus += diceTotal(step, ctx)
		}
		res.ArmorBonus = scale(bonus, step.Multiplier)
		res.BuffDuration = countOrDefault(step.Duration, 1)

	case types.EffectDamageReduction:
		amount := resolve(step, ctx, condMult)
		if step.UsesDice {
			amount += diceTotal(step, ctx)
		}
		res.ReductionAmount = scale(amount, step.Multiplier)
		res.ReductionIsPercent = step.ReductionIsPercent
		res.ReductionDuration = countOrDefault(step.Duration, 1)

	case types.EffectReflect:
		res.ReflectPercent = step.ReflectPercent
		res.ReflectDuration = countOrDefault(step.Duration, 1)

	case types.EffectLifesteal:
		res.LifestealPercent = step.LifestealPercent
		if step.LifestealDealsDamage {
			res.Damage, res.DiceTotal = damageOf(step, ctx, condMult)
		}

	case types.EffectExecute:
		dmg, dice := damageOf(step, ctx, condMult)
		res.DiceTotal = dice
		if hpPercent(ctx.Target) < step.ExecuteThreshold {
			res.ExecuteTriggered = true
			if step.ExecuteInstantKill {
				// Damage left unmodified; the applicator zeroes the
				// target directly on the instant-kill flag.
				res.ExecuteInstantKill = true
			} else {
				dmg = int(math.Floor(float64(dmg) * (1.0 + step.ExecuteBonus)))
			}
		}
		res.Damage = dmg

	case types.EffectComboMark:
		res.MarkID = step.MarkID
		res.MarkDuration = countOrDefault(step.Duration, 1)

	case types.EffectEcho:
		primary, dice := damageOf(step, ctx, condMult)
		res.Damage = primary
		res.DiceTotal = dice
		if dice >= step.EchoThreshold {
			// Echoes compound multiplicatively: echo #2 is
			// primary*mult*mult, not primary*mult*2.
			factor := step.EchoMultiplier
			for i := 0; i < step.EchoCount; i++ {
				echo := int(math.Floor(float64(primary) * factor))
				res.EchoDamages = append(res.EchoDamages, echo)
				factor *= step.EchoMultiplier
			}
		}

	case types.EffectSplash:
		primary, dice := damageOf(step, ctx, condMult)
		res.Damage = primary
		res.DiceTotal = dice
		res.SplashDamage = int(math.Floor(float64(primary) * step.SplashPercent))
		res.SplashAll = step.SplashAll

	case types.EffectChain:
		primary, dice := damageOf(step, ctx, condMult)
		res.Damage = primary
		res.DiceTotal = dice
		res.ChainRepeat = step.ChainCanRepeat
		prev := primary
		for i := 0; i < step.ChainCount; i++ {
			next := int(math.Floor(float64(prev) * step.ChainDecay))
			if next <= 0 {
				break
			}
			res.ChainDamages = append(res.ChainDamages, next)
			prev = next
		}

	case types.EffectRandomStrikes:
		// One per-strike value shared by every strike. Per-strike
		// randomization, if ever wanted, is a caller concern.
		base := resolve(step, ctx, condMult)
		if step.UsesDice {
			base += diceTotal(step, ctx)
		}
		res.StrikeCount = countOrDefault(step.StrikeCount, 1)
		res.StrikeDamage = scale(base, step.StrikeMultiplier)

	case types.EffectManaManipulate:
		amount := resolve(step, ctx, condMult)
		if step.ManaDrain {
			amount = -amount
		}
		res.ManaChange = amount

	case types.EffectModifyCooldown:
		res.CooldownDelta = step.CooldownDelta
		res.AbilityID = step.AbilityID

	case types.EffectRefundCharges:
		res.Charges = step.Charges
		if step.BaseValue > 0 {
			res.Charges = resolve(step, ctx, condMult)
		}
		res.AbilityID = step.AbilityID

	case types.EffectGrantTempAction:
		res.TempActions = countOrDefault(step.TempActions, 1)

	case types.EffectChannel:
		res.ChannelTurns = countOrDefault(step.ChannelTurns, 1)
		res.AbilityID = step.AbilityID

	case types.EffectCounterSetup:
		res.CounterDamage = resolve(step, ctx, condMult)
		res.CounterDuration = countOrDefault(step.Duration, 1)

	case types.EffectSummonCompanion:
		res.CompanionID = step.CompanionID
		res.CompanionCount = countOrDefault(step.Count, 1)
	}

	return res
}

// damageOf computes the standard damage formula shared by damage, execute,
// echo, splash, chain and lifesteal: dice total plus the resolved base,
// times the type-local multiplier. Returns the damage and the dice total
// that fed it.
func damageOf(step types.SubEffect, ctx *types.Context, condMult float64) (damage, dice int) {
	dice = diceTotal(step, ctx)
	base := resolve(step, ctx, condMult)
	damage = scale(dice+base, step.Multiplier)
	return damage, dice
}

// resolve runs the step's base value through the value resolver with the
// condition multiplier.
func resolve(step types.SubEffect, ctx *types.Context, condMult float64) int {
	return value.Resolve(step.BaseValue, step.ValueSource, ctx, condMult, value.Lookup{
		StatName: step.StatName,
		StatusID: step.StatusID,
	})
}

// diceTotal sums the dice available to the step. A sub-effect that
// declares a smaller dice count than was rolled uses only the first N dice.
func diceTotal(step types.SubEffect, ctx *types.Context) int {
	if step.DiceCount > 0 && step.DiceCount < len(ctx.DiceValues) {
		total := 0
		for _, v := range ctx.DiceValues[:step.DiceCount] {
			total += v
		}
		return total
	}
	return ctx.DiceTotal
}

// scale applies a type-local multiplier, flooring the result. A zero
// multiplier means "unset" and is treated as 1.0.
func scale(amount int, multiplier float64) int {
	if multiplier == 0 {
		multiplier = 1.0
	}
	result := int(math.Floor(float64(amount) * multiplier))
	if result < 0 {
		return 0
	}
	return result
}

func countOrDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

func hpPercent(c types.Combatant) float64 {
	if c == nil || c.MaxHP() <= 0 {
		return 0
	}
	return float64(c.HP()) / float64(c.MaxHP())
}
