// Package types defines the shared data structures for the diceforge engine.
// This package contains only type definitions — no logic, no methods.
package types

// EffectType identifies one of the closed set of effect behaviors.
type EffectType string

const (
	EffectDamage          EffectType = "damage"
	EffectHeal            EffectType = "heal"
	EffectAddStatus       EffectType = "add_status"
	EffectRemoveStatus    EffectType = "remove_status"
	EffectCleanse         EffectType = "cleanse"
	EffectShield          EffectType = "shield"
	EffectArmorBuff       EffectType = "armor_buff"
	EffectDamageReduction EffectType = "damage_reduction"
	EffectReflect         EffectType = "reflect"
	EffectLifesteal       EffectType = "lifesteal"
	EffectExecute         EffectType = "execute"
	EffectComboMark       EffectType = "combo_mark"
	EffectEcho            EffectType = "echo"
	EffectSplash          EffectType = "splash"
	EffectChain           EffectType = "chain"
	EffectRandomStrikes   EffectType = "random_strikes"
	EffectManaManipulate  EffectType = "mana_manipulate"
	EffectModifyCooldown  EffectType = "modify_cooldown"
	EffectRefundCharges   EffectType = "refund_charges"
	EffectGrantTempAction EffectType = "grant_temp_action"
	EffectChannel         EffectType = "channel"
	EffectCounterSetup    EffectType = "counter_setup"
	EffectSummonCompanion EffectType = "summon_companion"
)

// TargetType selects which combatants an effect applies to.
type TargetType string

const (
	TargetSelf        TargetType = "self"
	TargetSingleEnemy TargetType = "single_enemy"
	TargetAllEnemies  TargetType = "all_enemies"
	TargetSingleAlly  TargetType = "single_ally"
	TargetAllAllies   TargetType = "all_allies"
)

// ValueSource is the scaling strategy selecting which combat-context
// quantity drives an effect's magnitude.
type ValueSource string

const (
	SourceStatic              ValueSource = "static"
	SourceDiceTotal           ValueSource = "dice_total"
	SourceDiceCount           ValueSource = "dice_count"
	SourceSourceStat          ValueSource = "source_stat"
	SourceSourceHPPercent     ValueSource = "source_hp_percent"
	SourceSourceMissingHP     ValueSource = "source_missing_hp"
	SourceTargetHPPercent     ValueSource = "target_hp_percent"
	SourceTargetMissingHP     ValueSource = "target_missing_hp"
	SourceTargetStatusStacks  ValueSource = "target_status_stacks"
	SourceTurnNumber          ValueSource = "turn_number"
	SourceActiveStatusCount   ValueSource = "active_status_count"
	SourceManaPercent         ValueSource = "mana_percent"
	SourceSourceCurrentHP     ValueSource = "source_current_hp"
	SourceSourceMaxHP         ValueSource = "source_max_hp"
	SourceSourceDefenseStat   ValueSource = "source_defense_stat"
	SourceTargetCurrentHP     ValueSource = "target_current_hp"
	SourceTargetMaxHP         ValueSource = "target_max_hp"
	SourceAliveEnemyCount     ValueSource = "alive_enemy_count"
	SourceAliveCompanionCount ValueSource = "alive_companion_count"
	SourceTriggerDamageAmount ValueSource = "trigger_damage_amount"
)

// ConditionType identifies a gating predicate evaluated before an effect fires.
type ConditionType string

const (
	CondNone                ConditionType = "none"
	CondSourceHPAbove       ConditionType = "source_hp_above"
	CondSourceHPBelow       ConditionType = "source_hp_below"
	CondTargetHPAbove       ConditionType = "target_hp_above"
	CondTargetHPBelow       ConditionType = "target_hp_below"
	CondTargetHasStatus     ConditionType = "target_has_status"
	CondTargetMissingStatus ConditionType = "target_missing_status"
	CondSourceHasStatus     ConditionType = "source_has_status"
	CondDiceTotalAbove      ConditionType = "dice_total_above"
	CondDiceTotalBelow      ConditionType = "dice_total_below"
	CondDiceCountAbove      ConditionType = "dice_count_above"
	CondTurnNumberAbove     ConditionType = "turn_number_above"
	CondManaAbove           ConditionType = "mana_above"
	CondManaBelow           ConditionType = "mana_below"
	CondRandomChance        ConditionType = "random_chance"
)

// ConditionDescriptor gates or scales an effect before value resolution.
type ConditionDescriptor struct {
	Type           ConditionType
	Threshold      float64
	StatusID       string
	Invert         bool
	ScalesOnPass   bool
	PassMultiplier float64
}

// EffectDescriptor is the immutable, author-time template for one effect.
// Only the fields relevant to Type are meaningful; the rest are ignored.
// When SubEffects is non-empty the descriptor is compound: execution
// iterates the sub-effects and the top-level single-effect parameters are
// ignored except for shared defaults (DiceCount, DamageType).
type EffectDescriptor struct {
	Type        EffectType
	Target      TargetType
	ValueSource ValueSource

	// Value resolution.
	BaseValue  int     // base damage/heal/shield/mana amount fed to the resolver
	Multiplier float64 // type-local multiplier; 0 means 1.0
	StatName   string  // for source_stat / source_defense_stat
	StatusID   string  // for status-driven value sources and status effects
	DiceCount  int     // dice rolled for this action
	UsesDice   bool    // add the dice total on top of the resolved base
	DamageType string  // physical/fire/frost/... advisory tag
	Duration   int     // turns, for statuses/shields/buffs/marks

	// Execute.
	ExecuteThreshold   float64
	ExecuteBonus       float64
	ExecuteInstantKill bool

	// Chain.
	ChainCount     int
	ChainDecay     float64
	ChainCanRepeat bool

	// Splash.
	SplashPercent float64
	SplashAll     bool

	// Echo.
	EchoThreshold  int
	EchoCount      int
	EchoMultiplier float64

	// Damage reduction / reflect.
	ReductionIsPercent bool
	ReflectPercent     float64

	// Lifesteal.
	LifestealPercent     float64
	LifestealDealsDamage bool

	// Random strikes.
	StrikeCount      int
	StrikeMultiplier float64

	// Combo mark.
	MarkID string

	// Mana / cooldown / charges / actions / channel / summon.
	ManaDrain     bool // mana_manipulate drains instead of restores
	CooldownDelta int
	AbilityID     string
	Charges       int
	TempActions   int
	ChannelTurns  int
	CompanionID   string
	Count         int

	Condition  *ConditionDescriptor
	SubEffects []SubEffect
}

// SubEffect is one step of a compound effect. It has the same shape as a
// single-effect descriptor minus targeting; zero-valued shared fields
// (DiceCount, DamageType) fall back to the parent descriptor's values.
type SubEffect struct {
	Type        EffectType
	ValueSource ValueSource

	BaseValue  int
	Multiplier float64
	StatName   string
	StatusID   string
	DiceCount  int
	UsesDice   bool
	DamageType string
	Duration   int

	ExecuteThreshold   float64
	ExecuteBonus       float64
	ExecuteInstantKill bool
	ChainCount         int
	ChainDecay         float64
	ChainCanRepeat     bool
	SplashPercent      float64
	SplashAll          bool
	EchoThreshold      int
	EchoCount          int
	EchoMultiplier     float64
	ReductionIsPercent bool
	ReflectPercent     float64

	LifestealPercent     float64
	LifestealDealsDamage bool
	StrikeCount          int
	StrikeMultiplier     float64
	MarkID               string
	ManaDrain            bool
	CooldownDelta        int
	AbilityID            string
	Charges              int
	TempActions          int
	ChannelTurns         int
	CompanionID          string
	Count                int

	Condition *ConditionDescriptor
}

// Combatant is the capability surface the resolution core needs from any
// combatant-like entity. Implementations must return safe defaults (0) for
// stats and statuses they do not track.
type Combatant interface {
	Name() string
	HP() int
	MaxHP() int
	Mana() int
	MaxMana() int
	Stat(name string) int
	StatusStacks(statusID string) int
	ActiveStatusCount() int
}

// Context is the read-only combat snapshot an effect resolves against.
// It is assembled fresh per execution call and discarded after.
type Context struct {
	Source Combatant
	Target Combatant

	DiceValues []int
	DiceTotal  int
	DiceCount  int

	TurnNumber      int
	AliveEnemies    int
	AliveCompanions int

	TriggerDamage    int
	HasTriggerDamage bool
}

// ContextSeed carries externally supplied context overrides. Non-nil fields
// always win over freshly computed defaults, supporting injection of
// synthetic values like trigger damage for reactive sub-effects.
type ContextSeed struct {
	TurnNumber      *int
	AliveEnemies    *int
	AliveCompanions *int
	TriggerDamage   *int
}

// EffectResult is the structured outcome of one (effect, target) pair.
// The executor produces these; an external applicator mutates combat state.
type EffectResult struct {
	Type        EffectType
	Target      Combatant
	Success     bool
	SkipReason  string
	IsSubEffect bool

	Damage     int
	DamageType string
	DiceTotal  int
	Heal       int

	ShieldAmount   int
	ShieldDuration int

	ArmorBonus   int
	BuffDuration int

	ReductionAmount    int
	ReductionIsPercent bool
	ReductionDuration  int

	ReflectPercent  float64
	ReflectDuration int

	LifestealPercent float64

	ExecuteTriggered   bool
	ExecuteInstantKill bool

	MarkID       string
	MarkDuration int

	EchoDamages  []int
	ChainDamages []int
	ChainRepeat  bool

	SplashDamage int
	SplashAll    bool

	StrikeCount  int
	StrikeDamage int

	StatusID       string
	StatusDuration int
	StatusStacks   int
	CleanseCount   int

	ManaChange    int
	CooldownDelta int
	AbilityID     string
	Charges       int
	TempActions   int
	ChannelTurns  int

	CounterDamage   int
	CounterDuration int

	CompanionID    string
	CompanionCount int
}

// Affix is a named modifier template inside an affix table.
type Affix struct {
	Name        string
	Description string
	Weight      int
	Effect      string  // effect key the host applies (e.g. "bonus_damage")
	Value       float64 // fixed value when no scaling range is declared
	ValueMin    float64
	ValueMax    float64 // scaling range; min == max == 0 means no scaling
	Percent     bool
}

// RolledAffix is a runtime copy of an affix template with its final value
// populated. Created per roll, owned by the item it is attached to.
type RolledAffix struct {
	Affix
	EffectValue float64
	Tier        int
	Source      string // table key the affix was drawn from
	SourceType  string // "item" or "die"
}

// AffixTable is an author-time weighted pool of affix templates.
type AffixTable struct {
	Family        string // offense/defense/utility or value/combat/positional
	Tier          int    // 1-3
	Affixes       []Affix
	ElementFilter []string // empty matches any element
}

// ScalingConfig maps an item level to a 0.0-1.0 power position along the
// scaling curve, plus the fuzz applied when rolling a final affix value.
type ScalingConfig struct {
	LevelCap    int
	Exponent    float64 // curve shape; 1.0 is linear
	FuzzPercent float64 // random variance around the scaled value
}

// Rarity is an item rarity band.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RarityPolicy maps rarities to affix counts and eligible tiers.
// This is configuration data loaded from content, not hardcoded logic.
type RarityPolicy struct {
	AffixCount map[Rarity]int
	AffixTiers map[Rarity][]int
}

// ItemTemplate is the author-time description of a droppable item.
type ItemTemplate struct {
	ID          string
	Name        string
	Slot        string
	Rarity      Rarity
	Element     string
	LevelSpread int // jitter half-width around the source level
}

// DroppedItem is a rolled item instance produced by the loot pipeline.
type DroppedItem struct {
	TemplateID string
	Name       string
	Slot       string
	Rarity     Rarity
	ItemLevel  int
	Affixes    []RolledAffix
}

// Intent is the parsed representation of a simulator command.
type Intent struct {
	Verb   string
	Object string // optional: action or target name
	Target string // optional
}

// Event is emitted after results are applied to combat state.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single combat step.
type Result struct {
	Results []EffectResult
	Events  []Event
	Output  []string
	Loot    []DroppedItem
}

// GameMeta holds content metadata from Lua.
type GameMeta struct {
	Title   string
	Author  string
	Version string
}

// ActionDef is the author-time definition of a castable action.
type ActionDef struct {
	ID        string
	Name      string
	ManaCost  int
	Cooldown  int
	Charges   int // 0 means unlimited uses
	DiceSides int // faces per die; 0 defaults to 6
	Effect    EffectDescriptor
}

// BehaviorEntry weights one action in an AI-controlled fighter's kit.
type BehaviorEntry struct {
	Action string
	Weight int
}

// FighterDef is the author-time definition of a combatant.
type FighterDef struct {
	ID        string
	Name      string
	Team      string // "hero", "enemy", or "companion"
	Level     int
	MaxHP     int
	MaxMana   int
	Stats     map[string]int
	Actions   []string
	Behavior  []BehaviorEntry // AI action weights; empty means first action
	LootTable string          // drop table rolled when this fighter falls
}

// EncounterDef names the participants of one combat.
type EncounterDef struct {
	ID      string
	Name    string
	Intro   string
	Heroes  []string
	Enemies []string
}

// DropEntry is one chance-gated item inside a drop table.
type DropEntry struct {
	Template ItemTemplate
	Chance   float64 // 0.0-1.0 roll-under probability
}

// DropTable lists the items a defeated enemy or container can yield.
type DropTable struct {
	Name    string
	Entries []DropEntry
}
