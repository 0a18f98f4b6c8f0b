// Package loader loads Lua content into Go structs at startup. The Lua VM
// is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds an id'd definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToIntMap converts a Lua table to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(n)
			}
		}
	})
	return m
}

// tableToStringList converts a Lua array to a []string.
func tableToStringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableToIntList converts a Lua array to a []int.
func tableToIntList(tbl *lua.LTable) []int {
	if tbl == nil {
		return nil
	}
	var out []int
	for i := 1; i <= tbl.MaxN(); i++ {
		if n, ok := tbl.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Actions:     map[string]types.ActionDef{},
		Fighters:    map[string]types.FighterDef{},
		Encounters:  map[string]types.EncounterDef{},
		AffixTables: map[string]types.AffixTable{},
		DropTables:  map[string]types.DropTable{},
	}

	// Game.
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Meta = compileGame(coll.game)

	// Actions.
	for _, raw := range coll.actions {
		action, err := compileAction(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling action %s: %w", raw.id, err)
		}
		defs.Actions[action.ID] = action
	}

	// Fighters.
	for _, raw := range coll.fighters {
		defs.Fighters[raw.id] = compileFighter(raw)
	}

	// Encounters.
	for _, raw := range coll.encounters {
		defs.Encounters[raw.id] = compileEncounter(raw)
	}

	// Affix tables, keyed by family_tier.
	for _, tbl := range coll.affixTables {
		table := compileAffixTable(tbl)
		if table.Family == "" {
			return nil, fmt.Errorf("affix table missing family")
		}
		defs.AffixTables[fmt.Sprintf("%s_%d", table.Family, table.Tier)] = table
	}

	// Drop tables.
	for _, raw := range coll.dropTables {
		defs.DropTables[raw.id] = compileDropTable(raw)
	}

	// Scaling curve.
	if coll.scaling != nil {
		defs.Scaling = &types.ScalingConfig{
			LevelCap:    getInt(coll.scaling, "level_cap"),
			Exponent:    getNumber(coll.scaling, "exponent"),
			FuzzPercent: getNumber(coll.scaling, "fuzz_percent"),
		}
	}

	// Rarity policy.
	defs.Rarity = compileRarityPolicy(coll.rarity)

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameMeta {
	return types.GameMeta{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
	}
}

func compileAction(raw rawDef) (types.ActionDef, error) {
	tbl := raw.table
	action := types.ActionDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		ManaCost:  getInt(tbl, "mana_cost"),
		Cooldown:  getInt(tbl, "cooldown"),
		Charges:   getInt(tbl, "charges"),
		DiceSides: getInt(tbl, "dice_sides"),
	}
	if action.Name == "" {
		action.Name = raw.id
	}

	effTbl := getTable(tbl, "effect")
	if effTbl == nil {
		return action, fmt.Errorf("missing effect table")
	}
	action.Effect = compileEffect(effTbl)
	return action, nil
}

// compileEffect converts an effect table into a descriptor. Sub-effect
// tables under "effects" recurse through the same field mapping.
func compileEffect(tbl *lua.LTable) types.EffectDescriptor {
	d := types.EffectDescriptor{
		Type:        types.EffectType(getString(tbl, "type")),
		Target:      types.TargetType(getString(tbl, "target")),
		ValueSource: types.ValueSource(getString(tbl, "value_source")),
	}
	fillStep(tbl, &d.BaseValue, &d.Multiplier, &d.StatName, &d.StatusID,
		&d.DiceCount, &d.UsesDice, &d.DamageType, &d.Duration)
	fillExtras(tbl, effectExtras{
		ExecuteThreshold:   &d.ExecuteThreshold,
		ExecuteBonus:       &d.ExecuteBonus,
		ExecuteInstantKill: &d.ExecuteInstantKill,
		ChainCount:         &d.ChainCount,
		ChainDecay:         &d.ChainDecay,
		ChainCanRepeat:     &d.ChainCanRepeat,
		SplashPercent:      &d.SplashPercent,
		SplashAll:          &d.SplashAll,
		EchoThreshold:      &d.EchoThreshold,
		EchoCount:          &d.EchoCount,
		EchoMultiplier:     &d.EchoMultiplier,
		ReductionIsPercent: &d.ReductionIsPercent,
		ReflectPercent:     &d.ReflectPercent,
		LifestealPercent:   &d.LifestealPercent,
		LifestealDamage:    &d.LifestealDealsDamage,
		StrikeCount:        &d.StrikeCount,
		StrikeMultiplier:   &d.StrikeMultiplier,
		MarkID:             &d.MarkID,
		ManaDrain:          &d.ManaDrain,
		CooldownDelta:      &d.CooldownDelta,
		AbilityID:          &d.AbilityID,
		Charges:            &d.Charges,
		TempActions:        &d.TempActions,
		ChannelTurns:       &d.ChannelTurns,
		CompanionID:        &d.CompanionID,
		Count:              &d.Count,
	})
	if condTbl := getTable(tbl, "condition"); condTbl != nil {
		d.Condition = compileCondition(condTbl)
	}
	if subsTbl := getTable(tbl, "effects"); subsTbl != nil {
		for i := 1; i <= subsTbl.MaxN(); i++ {
			if subTbl, ok := subsTbl.RawGetInt(i).(*lua.LTable); ok {
				d.SubEffects = append(d.SubEffects, compileSubEffect(subTbl))
			}
		}
	}
	return d
}

func compileSubEffect(tbl *lua.LTable) types.SubEffect {
	s := types.SubEffect{
		Type:        types.EffectType(getString(tbl, "type")),
		ValueSource: types.ValueSource(getString(tbl, "value_source")),
	}
	fillStep(tbl, &s.BaseValue, &s.Multiplier, &s.StatName, &s.StatusID,
		&s.DiceCount, &s.UsesDice, &s.DamageType, &s.Duration)
	fillExtras(tbl, effectExtras{
		ExecuteThreshold:   &s.ExecuteThreshold,
		ExecuteBonus:       &s.ExecuteBonus,
		ExecuteInstantKill: &s.ExecuteInstantKill,
		ChainCount:         &s.ChainCount,
		ChainDecay:         &s.ChainDecay,
		ChainCanRepeat:     &s.ChainCanRepeat,
		SplashPercent:      &s.SplashPercent,
		SplashAll:          &s.SplashAll,
		EchoThreshold:      &s.EchoThreshold,
		EchoCount:          &s.EchoCount,
		EchoMultiplier:     &s.EchoMultiplier,
		ReductionIsPercent: &s.ReductionIsPercent,
		ReflectPercent:     &s.ReflectPercent,
		LifestealPercent:   &s.LifestealPercent,
		LifestealDamage:    &s.LifestealDealsDamage,
		StrikeCount:        &s.StrikeCount,
		StrikeMultiplier:   &s.StrikeMultiplier,
		MarkID:             &s.MarkID,
		ManaDrain:          &s.ManaDrain,
		CooldownDelta:      &s.CooldownDelta,
		AbilityID:          &s.AbilityID,
		Charges:            &s.Charges,
		TempActions:        &s.TempActions,
		ChannelTurns:       &s.ChannelTurns,
		CompanionID:        &s.CompanionID,
		Count:              &s.Count,
	})
	if condTbl := getTable(tbl, "condition"); condTbl != nil {
		s.Condition = compileCondition(condTbl)
	}
	return s
}

// fillStep reads the value-resolution fields shared by descriptors and
// sub-effects.
func fillStep(tbl *lua.LTable, base *int, mult *float64, stat, status *string,
	dice *int, usesDice *bool, damageType *string, duration *int) {
	*base = getInt(tbl, "base_value")
	*mult = getNumber(tbl, "multiplier")
	*stat = getString(tbl, "stat_name")
	*status = getString(tbl, "status_id")
	*dice = getInt(tbl, "dice_count")
	*usesDice = getBool(tbl, "uses_dice", false)
	*damageType = getString(tbl, "damage_type")
	*duration = getInt(tbl, "duration")
}

// effectExtras addresses the per-type fields so descriptor and sub-effect
// compilation share one mapping.
type effectExtras struct {
	ExecuteThreshold   *float64
	ExecuteBonus       *float64
	ExecuteInstantKill *bool
	ChainCount         *int
	ChainDecay         *float64
	ChainCanRepeat     *bool
	SplashPercent      *float64
	SplashAll          *bool
	EchoThreshold      *int
	EchoCount          *int
	EchoMultiplier     *float64
	ReductionIsPercent *bool
	ReflectPercent     *float64
	LifestealPercent   *float64
	LifestealDamage    *bool
	StrikeCount        *int
	StrikeMultiplier   *float64
	MarkID             *string
	ManaDrain          *bool
	CooldownDelta      *int
	AbilityID          *string
	Charges            *int
	TempActions        *int
	ChannelTurns       *int
	CompanionID        *string
	Count              *int
}

func fillExtras(tbl *lua.LTable, x effectExtras) {
	*x.ExecuteThreshold = getNumber(tbl, "execute_threshold")
	*x.ExecuteBonus = getNumber(tbl, "execute_bonus")
	*x.ExecuteInstantKill = getBool(tbl, "execute_instant_kill", false)
	*x.ChainCount = getInt(tbl, "chain_count")
	*x.ChainDecay = getNumber(tbl, "chain_decay")
	*x.ChainCanRepeat = getBool(tbl, "chain_can_repeat", false)
	*x.SplashPercent = getNumber(tbl, "splash_percent")
	*x.SplashAll = getBool(tbl, "splash_all", false)
	*x.EchoThreshold = getInt(tbl, "echo_threshold")
	*x.EchoCount = getInt(tbl, "echo_count")
	*x.EchoMultiplier = getNumber(tbl, "echo_multiplier")
	*x.ReductionIsPercent = getBool(tbl, "reduction_is_percent", false)
	*x.ReflectPercent = getNumber(tbl, "reflect_percent")
	*x.LifestealPercent = getNumber(tbl, "lifesteal_percent")
	*x.LifestealDamage = getBool(tbl, "lifesteal_deals_damage", false)
	*x.StrikeCount = getInt(tbl, "strike_count")
	*x.StrikeMultiplier = getNumber(tbl, "strike_multiplier")
	*x.MarkID = getString(tbl, "mark_id")
	*x.ManaDrain = getBool(tbl, "mana_drain", false)
	*x.CooldownDelta = getInt(tbl, "cooldown_delta")
	*x.AbilityID = getString(tbl, "ability_id")
	*x.Charges = getInt(tbl, "charges")
	*x.TempActions = getInt(tbl, "temp_actions")
	*x.ChannelTurns = getInt(tbl, "channel_turns")
	*x.CompanionID = getString(tbl, "companion_id")
	*x.Count = getInt(tbl, "count")
}

func compileCondition(tbl *lua.LTable) *types.ConditionDescriptor {
	return &types.ConditionDescriptor{
		Type:           types.ConditionType(getString(tbl, "type")),
		Threshold:      getNumber(tbl, "threshold"),
		StatusID:       getString(tbl, "status_id"),
		Invert:         getBool(tbl, "invert", false),
		ScalesOnPass:   getBool(tbl, "scales_on_pass", false),
		PassMultiplier: getNumber(tbl, "pass_multiplier"),
	}
}

func compileFighter(raw rawDef) types.FighterDef {
	tbl := raw.table
	fighter := types.FighterDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Team:      getString(tbl, "team"),
		Level:     getInt(tbl, "level"),
		MaxHP:     getInt(tbl, "max_hp"),
		MaxMana:   getInt(tbl, "max_mana"),
		Stats:     tableToIntMap(getTable(tbl, "stats")),
		Actions:   tableToStringList(getTable(tbl, "actions")),
		LootTable: getString(tbl, "loot_table"),
	}
	if fighter.Name == "" {
		fighter.Name = raw.id
	}
	if fighter.Level <= 0 {
		fighter.Level = 1
	}

	if behaviorTbl := getTable(tbl, "behavior"); behaviorTbl != nil {
		for i := 1; i <= behaviorTbl.MaxN(); i++ {
			if entry, ok := behaviorTbl.RawGetInt(i).(*lua.LTable); ok {
				fighter.Behavior = append(fighter.Behavior, types.BehaviorEntry{
					Action: getString(entry, "action"),
					Weight: getInt(entry, "weight"),
				})
			}
		}
	}
	return fighter
}

func compileEncounter(raw rawDef) types.EncounterDef {
	tbl := raw.table
	enc := types.EncounterDef{
		ID:      raw.id,
		Name:    getString(tbl, "name"),
		Intro:   getString(tbl, "intro"),
		Heroes:  tableToStringList(getTable(tbl, "heroes")),
		Enemies: tableToStringList(getTable(tbl, "enemies")),
	}
	if enc.Name == "" {
		enc.Name = raw.id
	}
	return enc
}

func compileAffixTable(tbl *lua.LTable) types.AffixTable {
	table := types.AffixTable{
		Family:        getString(tbl, "family"),
		Tier:          getInt(tbl, "tier"),
		ElementFilter: tableToStringList(getTable(tbl, "element_filter")),
	}
	if affixesTbl := getTable(tbl, "affixes"); affixesTbl != nil {
		for i := 1; i <= affixesTbl.MaxN(); i++ {
			if affixTbl, ok := affixesTbl.RawGetInt(i).(*lua.LTable); ok {
				table.Affixes = append(table.Affixes, compileAffix(affixTbl))
			}
		}
	}
	return table
}

func compileAffix(tbl *lua.LTable) types.Affix {
	return types.Affix{
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Weight:      getInt(tbl, "weight"),
		Effect:      getString(tbl, "effect"),
		Value:       getNumber(tbl, "value"),
		ValueMin:    getNumber(tbl, "value_min"),
		ValueMax:    getNumber(tbl, "value_max"),
		Percent:     getBool(tbl, "percent", false),
	}
}

func compileDropTable(raw rawDef) types.DropTable {
	table := types.DropTable{Name: raw.id}
	if entriesTbl := getTable(raw.table, "entries"); entriesTbl != nil {
		for i := 1; i <= entriesTbl.MaxN(); i++ {
			entryTbl, ok := entriesTbl.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			entry := types.DropEntry{Chance: getNumber(entryTbl, "chance")}
			if itemTbl := getTable(entryTbl, "template"); itemTbl != nil {
				entry.Template = compileItemTemplate(itemTbl)
			}
			table.Entries = append(table.Entries, entry)
		}
	}
	return table
}

func compileItemTemplate(tbl *lua.LTable) types.ItemTemplate {
	return types.ItemTemplate{
		ID:          getString(tbl, "id"),
		Name:        getString(tbl, "name"),
		Slot:        getString(tbl, "slot"),
		Rarity:      types.Rarity(getString(tbl, "rarity")),
		Element:     getString(tbl, "element"),
		LevelSpread: getInt(tbl, "level_spread"),
	}
}

func compileRarityPolicy(tbl *lua.LTable) types.RarityPolicy {
	policy := types.RarityPolicy{
		AffixCount: map[types.Rarity]int{},
		AffixTiers: map[types.Rarity][]int{},
	}
	if tbl == nil {
		return policy
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		rarity := types.Rarity(string(ks))
		policy.AffixCount[rarity] = getInt(entry, "count")
		policy.AffixTiers[rarity] = tableToIntList(getTable(entry, "tiers"))
	})
	return policy
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
