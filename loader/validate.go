package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types.
var validEffectTypes = map[types.EffectType]bool{
	types.EffectDamage:          true,
	types.EffectHeal:            true,
	types.EffectAddStatus:       true,
	types.EffectRemoveStatus:    true,
	types.EffectCleanse:         true,
	types.EffectShield:          true,
	types.EffectArmorBuff:       true,
	types.EffectDamageReduction: true,
	types.EffectReflect:         true,
	types.EffectLifesteal:       true,
	types.EffectExecute:         true,
	types.EffectComboMark:       true,
	types.EffectEcho:            true,
	types.EffectSplash:          true,
	types.EffectChain:           true,
	types.EffectRandomStrikes:   true,
	types.EffectManaManipulate:  true,
	types.EffectModifyCooldown:  true,
	types.EffectRefundCharges:   true,
	types.EffectGrantTempAction: true,
	types.EffectChannel:         true,
	types.EffectCounterSetup:    true,
	types.EffectSummonCompanion: true,
}

// Known target types.
var validTargetTypes = map[types.TargetType]bool{
	types.TargetSelf:        true,
	types.TargetSingleEnemy: true,
	types.TargetAllEnemies:  true,
	types.TargetSingleAlly:  true,
	types.TargetAllAllies:   true,
}

// Known value sources. The empty source means static.
var validValueSources = map[types.ValueSource]bool{
	"":                              true,
	types.SourceStatic:              true,
	types.SourceDiceTotal:           true,
	types.SourceDiceCount:           true,
	types.SourceSourceStat:          true,
	types.SourceSourceHPPercent:     true,
	types.SourceSourceMissingHP:     true,
	types.SourceTargetHPPercent:     true,
	types.SourceTargetMissingHP:     true,
	types.SourceTargetStatusStacks:  true,
	types.SourceTurnNumber:          true,
	types.SourceActiveStatusCount:   true,
	types.SourceManaPercent:         true,
	types.SourceSourceCurrentHP:     true,
	types.SourceSourceMaxHP:         true,
	types.SourceSourceDefenseStat:   true,
	types.SourceTargetCurrentHP:     true,
	types.SourceTargetMaxHP:         true,
	types.SourceAliveEnemyCount:     true,
	types.SourceAliveCompanionCount: true,
	types.SourceTriggerDamageAmount: true,
}

// Known condition types.
var validConditionTypes = map[types.ConditionType]bool{
	types.CondNone:                true,
	types.CondSourceHPAbove:       true,
	types.CondSourceHPBelow:       true,
	types.CondTargetHPAbove:       true,
	types.CondTargetHPBelow:       true,
	types.CondTargetHasStatus:     true,
	types.CondTargetMissingStatus: true,
	types.CondSourceHasStatus:     true,
	types.CondDiceTotalAbove:      true,
	types.CondDiceTotalBelow:      true,
	types.CondDiceCountAbove:      true,
	types.CondTurnNumberAbove:     true,
	types.CondManaAbove:           true,
	types.CondManaBelow:           true,
	types.CondRandomChance:        true,
}

var validTeams = map[string]bool{
	"hero": true, "enemy": true, "companion": true,
}

// validate checks the compiled defs for referential integrity and
// consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	// Game title required.
	if defs.Meta.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}

	// Actions: effect descriptors well-formed, ability refs resolvable.
	for id, action := range defs.Actions {
		validateDescriptor(id, &action.Effect, defs, ve)
	}

	// Fighters: teams, action refs, behavior refs, loot tables.
	for id, fighter := range defs.Fighters {
		if !validTeams[fighter.Team] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"fighter %q has unknown team %q", id, fighter.Team))
		}
		if fighter.MaxHP <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"fighter %q must have positive max_hp", id))
		}
		for _, actionID := range fighter.Actions {
			if _, ok := defs.Actions[actionID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"fighter %q references undefined action %q", id, actionID))
			}
		}
		for _, b := range fighter.Behavior {
			if _, ok := defs.Actions[b.Action]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"fighter %q behavior references undefined action %q", id, b.Action))
			}
			if b.Weight <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"fighter %q behavior entry %q must have positive weight", id, b.Action))
			}
		}
		if fighter.LootTable != "" {
			if _, ok := defs.DropTables[fighter.LootTable]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"fighter %q references undefined drop table %q", id, fighter.LootTable))
			}
		}
	}

	// Encounters: participant refs, at least one side each.
	for id, enc := range defs.Encounters {
		if len(enc.Heroes) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"encounter %q has no heroes", id))
		}
		if len(enc.Enemies) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"encounter %q has no enemies", id))
		}
		for _, ref := range append(append([]string{}, enc.Heroes...), enc.Enemies...) {
			if _, ok := defs.Fighters[ref]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"encounter %q references undefined fighter %q", id, ref))
			}
		}
	}

	// Affix tables: tier bounds, weights.
	for key, table := range defs.AffixTables {
		if table.Tier < 1 || table.Tier > 3 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"affix table %q has tier %d, want 1-3", key, table.Tier))
		}
		if len(table.Affixes) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"affix table %q has no affixes", key))
		}
		for _, a := range table.Affixes {
			if a.Name == "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"affix table %q contains an unnamed affix", key))
			}
			if a.ValueMin > a.ValueMax {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"affix %q value_min exceeds value_max", a.Name))
			}
		}
	}

	// Drop tables: chance range.
	for name, table := range defs.DropTables {
		for _, entry := range table.Entries {
			if entry.Chance < 0 || entry.Chance > 1 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"drop table %q entry %q chance %.2f out of [0,1]", name, entry.Template.ID, entry.Chance))
			}
			if entry.Template.ID == "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"drop table %q has an entry with no item template", name))
			}
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateDescriptor checks one effect descriptor and its sub-effects.
func validateDescriptor(actionID string, d *types.EffectDescriptor, defs *state.Defs, ve *ValidationError) {
	if !validEffectTypes[d.Type] && len(d.SubEffects) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has unknown effect type %q", actionID, d.Type))
	}
	if d.Target != "" && !validTargetTypes[d.Target] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has unknown target type %q", actionID, d.Target))
	}
	if !validValueSources[d.ValueSource] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has unknown value source %q", actionID, d.ValueSource))
	}
	validateCondition(actionID, d.Condition, ve)
	validateRefs(actionID, d.Type, d.CompanionID, d.AbilityID, defs, ve)

	for _, sub := range d.SubEffects {
		if !validEffectTypes[sub.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q sub-effect has unknown type %q", actionID, sub.Type))
		}
		if !validValueSources[sub.ValueSource] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q sub-effect has unknown value source %q", actionID, sub.ValueSource))
		}
		validateCondition(actionID, sub.Condition, ve)
		validateRefs(actionID, sub.Type, sub.CompanionID, sub.AbilityID, defs, ve)
	}
}

func validateCondition(actionID string, c *types.ConditionDescriptor, ve *ValidationError) {
	if c == nil {
		return
	}
	if !validConditionTypes[c.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has unknown condition type %q", actionID, c.Type))
	}
	if c.ScalesOnPass && c.PassMultiplier == 0 {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"action %q condition scales on pass with no pass_multiplier", actionID))
	}
}

// validateRefs checks the cross-definition references an effect can carry.
func validateRefs(actionID string, t types.EffectType, companionID, abilityID string, defs *state.Defs, ve *ValidationError) {
	if t == types.EffectSummonCompanion {
		if companionID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q summons without a companion_id", actionID))
		} else if _, ok := defs.Fighters[companionID]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q summons undefined fighter %q", actionID, companionID))
		}
	}
	if (t == types.EffectModifyCooldown || t == types.EffectRefundCharges) && abilityID != "" {
		if _, ok := defs.Actions[abilityID]; !ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"action %q targets undefined ability %q", actionID, abilityID))
		}
	}
}
