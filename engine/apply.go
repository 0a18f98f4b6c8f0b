package engine

import (
	"fmt"
	"math"

	"github.com/nathoo/diceforge/engine/events"
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/engine/target"
	"github.com/nathoo/diceforge/types"
)

// applyResults mutates combat state per the executor's structured results
// and returns the events and narration produced. Secondary hits (echo,
// chain, splash, strikes) are dealt here: the executor computed their
// numbers, the applicator picks their victims.
func (e *Engine) applyResults(source *state.Fighter, results []types.EffectResult) ([]types.Event, []string) {
	var evts []types.Event
	var output []string

	for _, res := range results {
		if !res.Success {
			output = append(output, fmt.Sprintf("  %s's %s fizzles (condition not met).", source.Name(), res.Type))
			continue
		}

		victim, _ := res.Target.(*state.Fighter)

		switch res.Type {
		case types.EffectDamage:
			ev, out := e.dealDamage(source, victim, res.Damage, res.DamageType, true)
			evts = append(evts, ev...)
			output = append(output, out...)

		case types.EffectHeal:
			healed := victim.Heal(res.Heal)
			output = append(output, fmt.Sprintf("  %s recovers %d HP.", victim.Name(), healed))

		case types.EffectAddStatus:
			victim.AddStatus(res.StatusID, res.StatusStacks, res.StatusDuration)
			evts = append(evts, events.New(events.StatusApplied,
				"name", victim.Name(), "status", res.StatusID, "stacks", res.StatusStacks))
			output = append(output, fmt.Sprintf("  %s gains %s (x%d, %d turns).",
				victim.Name(), res.StatusID, res.StatusStacks, res.StatusDuration))

		case types.EffectRemoveStatus:
			victim.RemoveStatus(res.StatusID, res.StatusStacks)
			output = append(output, fmt.Sprintf("  %s loses %s.", victim.Name(), res.StatusID))

		case types.EffectCleanse:
			removed := victim.Cleanse(res.CleanseCount)
			output = append(output, fmt.Sprintf("  %s is cleansed of %d effect(s).", victim.Name(), removed))

		case types.EffectShield:
			victim.Shields = append(victim.Shields, state.Shield{Amount: res.ShieldAmount, Duration: res.ShieldDuration})
			output = append(output, fmt.Sprintf("  %s gains a %d-point shield (%d turns).",
				victim.Name(), res.ShieldAmount, res.ShieldDuration))

		case types.EffectArmorBuff:
			victim.BonusArmor += res.ArmorBonus
			if res.BuffDuration > victim.ArmorDuration {
				victim.ArmorDuration = res.BuffDuration
			}
			output = append(output, fmt.Sprintf("  %s's armor rises by %d (%d turns).",
				victim.Name(), res.ArmorBonus, res.BuffDuration))

		case types.EffectDamageReduction:
			victim.Reductions = append(victim.Reductions, state.Reduction{
				Amount:    res.ReductionAmount,
				IsPercent: res.ReductionIsPercent,
				Duration:  res.ReductionDuration,
			})
			unit := ""
			if res.ReductionIsPercent {
				unit = "%"
			}
			output = append(output, fmt.Sprintf("  %s shrugs off %d%s of incoming damage (%d turns).",
				victim.Name(), res.ReductionAmount, unit, res.ReductionDuration))

		case types.EffectReflect:
			victim.ReflectPct = res.ReflectPercent
			victim.ReflectDuration = res.ReflectDuration
			output = append(output, fmt.Sprintf("  %s mirrors %.0f%% of incoming damage (%d turns).",
				victim.Name(), res.ReflectPercent*100, res.ReflectDuration))

		case types.EffectLifesteal:
			taken := 0
			if res.Damage > 0 {
				var ev []types.Event
				var out []string
				taken, ev, out = e.dealDamageTaken(source, victim, res.Damage, res.DamageType, true)
				evts = append(evts, ev...)
				output = append(output, out...)
			} else {
				taken = res.DiceTotal
			}
			healed := source.Heal(int(math.Floor(float64(taken) * res.LifestealPercent)))
			if healed > 0 {
				output = append(output, fmt.Sprintf("  %s drains %d HP.", source.Name(), healed))
			}

		case types.EffectExecute:
			if res.ExecuteInstantKill {
				taken := victim.HP()
				victim.CurHP = 0
				evts = append(evts, events.New(events.DamageDealt,
					"source", source.Name(), "target", victim.Name(), "amount", taken, "damage_type", res.DamageType))
				output = append(output, fmt.Sprintf("  %s executes %s outright!", source.Name(), victim.Name()))
				evts = append(evts, e.checkDowned(victim)...)
			} else {
				if res.ExecuteTriggered {
					output = append(output, fmt.Sprintf("  %s is weakened — the blow lands harder!", victim.Name()))
				}
				ev, out := e.dealDamage(source, victim, res.Damage, res.DamageType, true)
				evts = append(evts, ev...)
				output = append(output, out...)
			}

		case types.EffectComboMark:
			victim.Marks[res.MarkID] = res.MarkDuration
			output = append(output, fmt.Sprintf("  %s is marked with %s (%d turns).",
				victim.Name(), res.MarkID, res.MarkDuration))

		case types.EffectEcho:
			ev, out := e.dealDamage(source, victim, res.Damage, res.DamageType, true)
			evts = append(evts, ev...)
			output = append(output, out...)
			for _, echo := range res.EchoDamages {
				if !victim.Alive() {
					break
				}
				ev, out := e.dealDamage(source, victim, echo, res.DamageType, false)
				evts = append(evts, ev...)
				output = append(output, out...)
			}

		case types.EffectSplash:
			ev, out := e.dealDamage(source, victim, res.Damage, res.DamageType, true)
			evts = append(evts, ev...)
			output = append(output, out...)
			for _, bystander := range target.SplashTargets(e.Combat, source, victim, res.SplashAll) {
				ev, out := e.dealDamage(source, bystander, res.SplashDamage, res.DamageType, false)
				evts = append(evts, ev...)
				output = append(output, out...)
			}

		case types.EffectChain:
			ev, out := e.dealDamage(source, victim, res.Damage, res.DamageType, true)
			evts = append(evts, ev...)
			output = append(output, out...)
			links := target.ChainTargets(e.Combat, source, victim, len(res.ChainDamages), res.ChainRepeat)
			for i, link := range links {
				ev, out := e.dealDamage(source, link, res.ChainDamages[i], res.DamageType, false)
				evts = append(evts, ev...)
				output = append(output, out...)
			}

		case types.EffectRandomStrikes:
			for i := 0; i < res.StrikeCount; i++ {
				if !victim.Alive() {
					break
				}
				ev, out := e.dealDamage(source, victim, res.StrikeDamage, res.DamageType, i == 0)
				evts = append(evts, ev...)
				output = append(output, out...)
			}

		case types.EffectManaManipulate:
			victim.ChangeMana(res.ManaChange)
			if res.ManaChange < 0 {
				output = append(output, fmt.Sprintf("  %s loses %d mana.", victim.Name(), -res.ManaChange))
			} else {
				output = append(output, fmt.Sprintf("  %s gains %d mana.", victim.Name(), res.ManaChange))
			}

		case types.EffectModifyCooldown:
			cd := victim.Cooldowns[res.AbilityID] + res.CooldownDelta
			if cd <= 0 {
				delete(victim.Cooldowns, res.AbilityID)
			} else {
				victim.Cooldowns[res.AbilityID] = cd
			}
			output = append(output, fmt.Sprintf("  %s's %s cooldown shifts by %d.",
				victim.Name(), res.AbilityID, res.CooldownDelta))

		case types.EffectRefundCharges:
			victim.RefundCharges(res.AbilityID, res.Charges)
			output = append(output, fmt.Sprintf("  %s regains %d charge(s) of %s.",
				victim.Name(), res.Charges, res.AbilityID))

		case types.EffectGrantTempAction:
			victim.TempActions += res.TempActions
			output = append(output, fmt.Sprintf("  %s gains %d extra action(s) this turn.",
				victim.Name(), res.TempActions))

		case types.EffectChannel:
			victim.ChannelTurns = res.ChannelTurns
			victim.ChannelAbility = res.AbilityID
			output = append(output, fmt.Sprintf("  %s begins channeling %s (%d turns).",
				victim.Name(), res.AbilityID, res.ChannelTurns))

		case types.EffectCounterSetup:
			victim.Counters = append(victim.Counters, state.Counter{Damage: res.CounterDamage, Duration: res.CounterDuration})
			output = append(output, fmt.Sprintf("  %s readies a %d-damage counter (%d turns).",
				victim.Name(), res.CounterDamage, res.CounterDuration))

		case types.EffectSummonCompanion:
			def, ok := e.Defs.Fighters[res.CompanionID]
			if !ok {
				output = append(output, fmt.Sprintf("  Nothing answers the summons (%s).", res.CompanionID))
				break
			}
			for i := 0; i < res.CompanionCount; i++ {
				companion := e.Combat.Summon(def)
				evts = append(evts, events.New(events.CompanionSummoned, "name", companion.Name()))
				output = append(output, fmt.Sprintf("  %s joins the fight at %s's side!",
					companion.Name(), source.Name()))
			}
		}
	}

	return evts, output
}

// dealDamage routes a hit through dealDamageTaken, dropping the taken
// amount the callers of secondary hits don't need.
func (e *Engine) dealDamage(attacker, victim *state.Fighter, amount int, damageType string, react bool) ([]types.Event, []string) {
	_, evts, output := e.dealDamageTaken(attacker, victim, amount, damageType, react)
	return evts, output
}

// dealDamageTaken applies damage through the victim's mitigation, emits the
// resulting events, and fires the victim's stored reactions when react is
// set. Reactions are a single pass: a counter or reflect hit never triggers
// further reactions.
func (e *Engine) dealDamageTaken(attacker, victim *state.Fighter, amount int, damageType string, react bool) (int, []types.Event, []string) {
	if victim == nil || !victim.Alive() {
		return 0, nil, nil
	}

	hadShields := len(victim.Shields) > 0
	taken := victim.TakeDamage(amount)

	var evts []types.Event
	var output []string

	evts = append(evts, events.New(events.DamageDealt,
		"source", attacker.Name(), "target", victim.Name(), "amount", taken, "damage_type", damageType))
	output = append(output, fmt.Sprintf("  %s takes %d %s damage. (%d/%d HP)",
		victim.Name(), taken, damageTypeOrDefault(damageType), victim.CurHP, victim.MaxHP()))

	if hadShields && len(victim.Shields) == 0 {
		evts = append(evts, events.New(events.ShieldBroken, "name", victim.Name()))
		output = append(output, fmt.Sprintf("  %s's shield shatters!", victim.Name()))
	}

	evts = append(evts, e.checkDowned(victim)...)

	if react {
		ev, out := e.applyReactions(events.CollectReactions(victim, attacker, taken))
		evts = append(evts, ev...)
		output = append(output, out...)
	}

	return taken, evts, output
}

// applyReactions plays out stored counters and reflects against the
// attacker. Reflect damage is resolved through the executor so it follows
// the same trigger-damage scaling path as any other reactive effect.
func (e *Engine) applyReactions(reactions []events.Reaction) ([]types.Event, []string) {
	var evts []types.Event
	var output []string

	for _, r := range reactions {
		switch r.Kind {
		case "counter":
			output = append(output, fmt.Sprintf("  %s counterattacks!", r.Reactor.Name()))
			ev, out := e.dealDamage(r.Reactor, r.Attacker, r.Damage, "physical", false)
			evts = append(evts, ev...)
			output = append(output, out...)

		case "reflect":
			desc := &types.EffectDescriptor{
				Type:        types.EffectDamage,
				ValueSource: types.SourceTriggerDamageAmount,
				BaseValue:   int(math.Round(r.Percent * 100)),
			}
			trigger := r.Trigger
			seed := &types.ContextSeed{TriggerDamage: &trigger}
			results, err := e.Executor.Execute(desc, r.Reactor, []types.Combatant{r.Attacker}, nil, seed)
			if err != nil {
				continue
			}
			output = append(output, fmt.Sprintf("  %s's mirror flares!", r.Reactor.Name()))
			for _, res := range results {
				ev, out := e.dealDamage(r.Reactor, r.Attacker, res.Damage, "arcane", false)
				evts = append(evts, ev...)
				output = append(output, out...)
			}
		}
	}

	return evts, output
}

// checkDowned emits FighterDowned the moment a fighter's HP hits zero.
func (e *Engine) checkDowned(f *state.Fighter) []types.Event {
	if f.Alive() || e.downed[f] {
		return nil
	}
	e.downed[f] = true
	return []types.Event{events.New(events.FighterDowned, "name", f.Name(), "team", f.Def.Team)}
}

func damageTypeOrDefault(dt string) string {
	if dt == "" {
		return "physical"
	}
	return dt
}
