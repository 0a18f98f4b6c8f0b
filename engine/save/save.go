// Package save implements JSON serialization and deserialization of combat
// state, including the RNG position needed to replay the random stream.
package save

import (
	"encoding/json"

	"github.com/nathoo/diceforge/engine/state"
)

// FighterState is the JSON-serializable runtime state of one fighter.
type FighterState struct {
	DefID string `json:"def_id"`
	HP    int    `json:"hp"`
	Mana  int    `json:"mana"`

	BonusArmor    int `json:"bonus_armor,omitempty"`
	ArmorDuration int `json:"armor_duration,omitempty"`

	Shields    []state.Shield    `json:"shields,omitempty"`
	Reductions []state.Reduction `json:"reductions,omitempty"`
	Counters   []state.Counter   `json:"counters,omitempty"`
	Statuses   []state.Status    `json:"statuses,omitempty"`

	ReflectPct      float64 `json:"reflect_pct,omitempty"`
	ReflectDuration int     `json:"reflect_duration,omitempty"`

	Marks       map[string]int `json:"marks,omitempty"`
	Cooldowns   map[string]int `json:"cooldowns,omitempty"`
	ChargesUsed map[string]int `json:"charges_used,omitempty"`

	TempActions    int    `json:"temp_actions,omitempty"`
	ChannelTurns   int    `json:"channel_turns,omitempty"`
	ChannelAbility string `json:"channel_ability,omitempty"`
}

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string         `json:"version"`
	Game        string         `json:"game"`
	Encounter   string         `json:"encounter"`
	Turn        int            `json:"turn"`
	Over        bool           `json:"over"`
	Victor      string         `json:"victor,omitempty"`
	Fighters    []FighterState `json:"fighters"`
	RNGSeed     int64          `json:"rng_seed"`
	RNGPosition int64          `json:"rng_position"`
}

// Save serializes combat state to JSON bytes.
func Save(c *state.Combat, defs *state.Defs, rngSeed, rngPosition int64) ([]byte, error) {
	data := SaveData{
		Version:     defs.Meta.Version,
		Game:        defs.Meta.Title,
		Encounter:   c.Encounter.ID,
		Turn:        c.Turn,
		Over:        c.Over,
		Victor:      c.Victor,
		RNGSeed:     rngSeed,
		RNGPosition: rngPosition,
	}
	for _, f := range c.Fighters {
		data.Fighters = append(data.Fighters, snapshotFighter(f))
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// Restore rebuilds a combat from loaded save data. Fighters are recreated
// from their definitions (companions included) and then overlaid with the
// saved runtime state; the caller restores the RNG separately.
func Restore(sd *SaveData, defs *state.Defs) (*state.Combat, error) {
	c, err := state.NewCombat(defs, sd.Encounter)
	if err != nil {
		return nil, err
	}
	c.Turn = sd.Turn
	c.Over = sd.Over
	c.Victor = sd.Victor

	c.Fighters = nil
	for _, fs := range sd.Fighters {
		def, ok := defs.Fighters[fs.DefID]
		if !ok {
			continue
		}
		f := state.NewFighter(def)
		applyFighter(f, fs)
		c.Fighters = append(c.Fighters, f)
	}
	return c, nil
}

func snapshotFighter(f *state.Fighter) FighterState {
	return FighterState{
		DefID:           f.Def.ID,
		HP:              f.CurHP,
		Mana:            f.CurMana,
		BonusArmor:      f.BonusArmor,
		ArmorDuration:   f.ArmorDuration,
		Shields:         f.Shields,
		Reductions:      f.Reductions,
		Counters:        f.Counters,
		Statuses:        f.Statuses,
		ReflectPct:      f.ReflectPct,
		ReflectDuration: f.ReflectDuration,
		Marks:           f.Marks,
		Cooldowns:       f.Cooldowns,
		ChargesUsed:     f.ChargesUsed,
		TempActions:     f.TempActions,
		ChannelTurns:    f.ChannelTurns,
		ChannelAbility:  f.ChannelAbility,
	}
}

func applyFighter(f *state.Fighter, fs FighterState) {
	f.CurHP = fs.HP
	f.CurMana = fs.Mana
	f.BonusArmor = fs.BonusArmor
	f.ArmorDuration = fs.ArmorDuration
	f.Shields = fs.Shields
	f.Reductions = fs.Reductions
	f.Counters = fs.Counters
	f.Statuses = fs.Statuses
	f.ReflectPct = fs.ReflectPct
	f.ReflectDuration = fs.ReflectDuration
	f.TempActions = fs.TempActions
	f.ChannelTurns = fs.ChannelTurns
	f.ChannelAbility = fs.ChannelAbility

	// Maps must never be nil after load.
	if fs.Marks != nil {
		f.Marks = fs.Marks
	}
	if fs.Cooldowns != nil {
		f.Cooldowns = fs.Cooldowns
	}
	if fs.ChargesUsed != nil {
		f.ChargesUsed = fs.ChargesUsed
	}
}
