// Package effects implements the action effect executor: the interpreter
// that turns declarative effect descriptors plus a combat context into
// structured numeric results. The executor never mutates combatant state —
// results are applied by an external applicator.
package effects

import (
	"errors"

	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/engine/rules"
	"github.com/nathoo/diceforge/types"
)

// SkipConditionFailed is the skip reason stamped on results whose
// condition blocked the effect.
const SkipConditionFailed = "condition_failed"

// Caller contract violations. Missing optional data (stats, statuses,
// trackers) is never an error — it resolves to zero and execution proceeds.
var (
	ErrNilDescriptor = errors.New("effects: nil descriptor")
	ErrNilSource     = errors.New("effects: nil source")
	ErrNoTargets     = errors.New("effects: empty target list")
)

// Executor resolves effect descriptors against combat contexts. The RNG is
// the shared combat stream; it is consumed only by random-chance conditions.
type Executor struct {
	rng *rng.RNG
}

// NewExecutor creates an executor drawing from the given RNG stream.
func NewExecutor(r *rng.RNG) *Executor {
	return &Executor{rng: r}
}

// NewContext assembles an execution context from live combat references,
// merging seed overrides over freshly computed defaults. Explicit seed
// values always win.
func NewContext(source, target types.Combatant, dice []int, seed *types.ContextSeed) *types.Context {
	ctx := &types.Context{
		Source:     source,
		Target:     target,
		DiceValues: dice,
		DiceCount:  len(dice),
	}
	for _, v := range dice {
		ctx.DiceTotal += v
	}
	if seed != nil {
		if seed.TurnNumber != nil {
			ctx.TurnNumber = *seed.TurnNumber
		}
		if seed.AliveEnemies != nil {
			ctx.AliveEnemies = *seed.AliveEnemies
		}
		if seed.AliveCompanions != nil {
			ctx.AliveCompanions = *seed.AliveCompanions
		}
		if seed.TriggerDamage != nil {
			ctx.TriggerDamage = *seed.TriggerDamage
			ctx.HasTriggerDamage = true
		}
	}
	return ctx
}

// Execute resolves the descriptor once per target and returns one result
// per (effect, target) pair — or per (sub-effect, target) pair for
// compound descriptors. A blocked condition yields a single skipped result
// for that target with no partial side effects.
func (x *Executor) Execute(d *types.EffectDescriptor, source types.Combatant, targets []types.Combatant, dice []int, seed *types.ContextSeed) ([]types.EffectResult, error) {
	if d == nil {
		return nil, ErrNilDescriptor
	}
	if source == nil {
		return nil, ErrNilSource
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	var results []types.EffectResult
	for _, target := range targets {
		ctx := NewContext(source, target, dice, seed)

		verdict := rules.Evaluate(d.Condition, ctx, x.rng)
		if verdict.Blocked {
			results = append(results, types.EffectResult{
				Type:       d.Type,
				Target:     target,
				Success:    false,
				SkipReason: SkipConditionFailed,
			})
			continue
		}

		if len(d.SubEffects) > 0 {
			results = append(results, x.executeCompound(d, ctx, verdict.Multiplier)...)
			continue
		}

		results = append(results, x.compute(stepFromDescriptor(d), ctx, verdict.Multiplier))
	}
	return results, nil
}

// executeCompound iterates sub-effects in declaration order. Each
// sub-effect may carry its own condition: a failing sub-effect is skipped
// individually without aborting the compound, and a sub-effect with its
// own condition uses that condition's multiplier instead of the parent's.
func (x *Executor) executeCompound(d *types.EffectDescriptor, ctx *types.Context, parentMult float64) []types.EffectResult {
	results := make([]types.EffectResult, 0, len(d.SubEffects))
	for _, sub := range d.SubEffects {
		step := withParentDefaults(sub, d)

		mult := parentMult
		if step.Condition != nil {
			verdict := rules.Evaluate(step.Condition, ctx, x.rng)
			if verdict.Blocked {
				results = append(results, types.EffectResult{
					Type:        step.Type,
					Target:      ctx.Target,
					Success:     false,
					SkipReason:  SkipConditionFailed,
					IsSubEffect: true,
				})
				continue
			}
			mult = verdict.Multiplier
		}

		res := x.compute(step, ctx, mult)
		res.IsSubEffect = true
		results = append(results, res)
	}
	return results
}

// stepFromDescriptor flattens a descriptor's single-effect parameters into
// a step for the shared per-type calculators.
func stepFromDescriptor(d *types.EffectDescriptor) types.SubEffect {
	return types.SubEffect{
		Type:        d.Type,
		ValueSource: d.ValueSource,

		BaseValue:  d.BaseValue,
		Multiplier: d.Multiplier,
		StatName:   d.StatName,
		StatusID:   d.StatusID,
		DiceCount:  d.DiceCount,
		UsesDice:   d.UsesDice,
		DamageType: d.DamageType,
		Duration:   d.Duration,

		ExecuteThreshold:   d.ExecuteThreshold,
		ExecuteBonus:       d.ExecuteBonus,
		ExecuteInstantKill: d.ExecuteInstantKill,
		ChainCount:         d.ChainCount,
		ChainDecay:         d.ChainDecay,
		ChainCanRepeat:     d.ChainCanRepeat,
		SplashPercent:      d.SplashPercent,
		SplashAll:          d.SplashAll,
		EchoThreshold:      d.EchoThreshold,
		EchoCount:          d.EchoCount,
		EchoMultiplier:     d.EchoMultiplier,
		ReductionIsPercent: d.ReductionIsPercent,
		ReflectPercent:     d.ReflectPercent,

		LifestealPercent:     d.LifestealPercent,
		LifestealDealsDamage: d.LifestealDealsDamage,
		StrikeCount:          d.StrikeCount,
		StrikeMultiplier:     d.StrikeMultiplier,
		MarkID:               d.MarkID,
		ManaDrain:            d.ManaDrain,
		CooldownDelta:        d.CooldownDelta,
		AbilityID:            d.AbilityID,
		Charges:              d.Charges,
		TempActions:          d.TempActions,
		ChannelTurns:         d.ChannelTurns,
		CompanionID:          d.CompanionID,
		Count:                d.Count,
	}
}

// withParentDefaults fills a sub-effect's unset shared fields from the
// parent descriptor. Sub-effects are resolved as pure values — no field
// swapping on shared state.
func withParentDefaults(sub types.SubEffect, parent *types.EffectDescriptor) types.SubEffect {
	if sub.DiceCount == 0 {
		sub.DiceCount = parent.DiceCount
	}
	if sub.DamageType == "" {
		sub.DamageType = parent.DamageType
	}
	return sub
}
