// Package state holds the immutable content definitions loaded from Lua
// and the mutable combat state the simulator plays against.
package state

import (
	"fmt"

	"github.com/nathoo/diceforge/types"
)

// Defs holds the immutable content definitions loaded from Lua.
type Defs struct {
	Meta        types.GameMeta
	Actions     map[string]types.ActionDef
	Fighters    map[string]types.FighterDef
	Encounters  map[string]types.EncounterDef
	AffixTables map[string]types.AffixTable
	DropTables  map[string]types.DropTable
	Scaling     *types.ScalingConfig
	Rarity      types.RarityPolicy
}

// Combat is the mutable state of one encounter. Fighters are kept in
// initiative order: heroes first, then enemies, companions appended as
// they are summoned.
type Combat struct {
	Encounter types.EncounterDef
	Fighters  []*Fighter
	Turn      int
	Over      bool
	Victor    string // "heroes" or "enemies" once Over
}

// NewCombat builds a fresh combat from an encounter definition.
func NewCombat(defs *Defs, encounterID string) (*Combat, error) {
	enc, ok := defs.Encounters[encounterID]
	if !ok {
		return nil, fmt.Errorf("state: unknown encounter %q", encounterID)
	}

	c := &Combat{Encounter: enc, Turn: 1}
	for _, id := range enc.Heroes {
		def, ok := defs.Fighters[id]
		if !ok {
			return nil, fmt.Errorf("state: encounter %q references unknown fighter %q", encounterID, id)
		}
		c.Fighters = append(c.Fighters, NewFighter(def))
	}
	for _, id := range enc.Enemies {
		def, ok := defs.Fighters[id]
		if !ok {
			return nil, fmt.Errorf("state: encounter %q references unknown fighter %q", encounterID, id)
		}
		c.Fighters = append(c.Fighters, NewFighter(def))
	}
	return c, nil
}

// Player returns the player-controlled fighter: the first hero.
func (c *Combat) Player() *Fighter {
	for _, f := range c.Fighters {
		if f.Def.Team == "hero" {
			return f
		}
	}
	return nil
}

// AliveEnemiesOf returns the living fighters hostile to f, in initiative
// order.
func (c *Combat) AliveEnemiesOf(f *Fighter) []*Fighter {
	var out []*Fighter
	for _, other := range c.Fighters {
		if other.Alive() && hostile(f, other) {
			out = append(out, other)
		}
	}
	return out
}

// AliveAlliesOf returns the living fighters on f's side, including f.
func (c *Combat) AliveAlliesOf(f *Fighter) []*Fighter {
	var out []*Fighter
	for _, other := range c.Fighters {
		if other.Alive() && !hostile(f, other) {
			out = append(out, other)
		}
	}
	return out
}

// AliveCompanions counts living summoned companions on the hero side.
func (c *Combat) AliveCompanions() int {
	n := 0
	for _, f := range c.Fighters {
		if f.Alive() && f.Def.Team == "companion" {
			n++
		}
	}
	return n
}

// Summon appends a companion to the initiative order.
func (c *Combat) Summon(def types.FighterDef) *Fighter {
	f := NewFighter(def)
	c.Fighters = append(c.Fighters, f)
	return f
}

// CheckVictory marks the combat over when one side has no living
// fighters. Returns true if the combat just ended.
func (c *Combat) CheckVictory() bool {
	if c.Over {
		return false
	}
	heroes, enemies := 0, 0
	for _, f := range c.Fighters {
		if !f.Alive() {
			continue
		}
		if f.Def.Team == "enemy" {
			enemies++
		} else {
			heroes++
		}
	}
	switch {
	case enemies == 0:
		c.Over = true
		c.Victor = "heroes"
	case heroes == 0:
		c.Over = true
		c.Victor = "enemies"
	}
	return c.Over
}

// hostile reports whether two fighters are on opposing sides. Heroes and
// companions share a side.
func hostile(a, b *Fighter) bool {
	return (a.Def.Team == "enemy") != (b.Def.Team == "enemy")
}
