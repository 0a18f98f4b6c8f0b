package state

import "github.com/nathoo/diceforge/types"

// Status is one active status entry on a fighter.
type Status struct {
	ID       string
	Stacks   int
	Duration int // remaining turns; <0 means permanent
}

// Shield is a temporary damage absorber.
type Shield struct {
	Amount   int
	Duration int
}

// Reduction is an active incoming-damage reduction.
type Reduction struct {
	Amount    int
	IsPercent bool
	Duration  int
}

// Counter is a stored counterattack that fires when the fighter is hit.
type Counter struct {
	Damage   int
	Duration int
}

// Fighter is the runtime state of one combatant. It implements
// types.Combatant; missing stats and statuses read as zero.
type Fighter struct {
	Def types.FighterDef

	CurHP   int
	CurMana int

	BonusArmor    int
	ArmorDuration int

	Shields    []Shield
	Reductions []Reduction
	Counters   []Counter
	Statuses   []Status

	ReflectPct      float64
	ReflectDuration int

	Marks       map[string]int // mark id -> remaining duration
	Cooldowns   map[string]int // action id -> turns until ready
	ChargesUsed map[string]int // action id -> charges spent

	TempActions    int
	ChannelTurns   int
	ChannelAbility string
}

// NewFighter creates a fighter at full HP and mana from its definition.
func NewFighter(def types.FighterDef) *Fighter {
	return &Fighter{
		Def:         def,
		CurHP:       def.MaxHP,
		CurMana:     def.MaxMana,
		Marks:       map[string]int{},
		Cooldowns:   map[string]int{},
		ChargesUsed: map[string]int{},
	}
}

// Name implements types.Combatant.
func (f *Fighter) Name() string { return f.Def.Name }

// HP implements types.Combatant.
func (f *Fighter) HP() int { return f.CurHP }

// MaxHP implements types.Combatant.
func (f *Fighter) MaxHP() int { return f.Def.MaxHP }

// Mana implements types.Combatant.
func (f *Fighter) Mana() int { return f.CurMana }

// MaxMana implements types.Combatant.
func (f *Fighter) MaxMana() int { return f.Def.MaxMana }

// Stat returns a named stat, with temporary armor bonuses layered on top
// of the base value. Unknown stats read as zero.
func (f *Fighter) Stat(name string) int {
	v := f.Def.Stats[name]
	if name == "armor" {
		v += f.BonusArmor
	}
	return v
}

// StatusStacks returns the stack count for a status id, 0 when absent.
func (f *Fighter) StatusStacks(statusID string) int {
	for _, s := range f.Statuses {
		if s.ID == statusID {
			return s.Stacks
		}
	}
	return 0
}

// ActiveStatusCount returns the number of distinct active status entries.
func (f *Fighter) ActiveStatusCount() int {
	return len(f.Statuses)
}

// Alive reports whether the fighter can still act.
func (f *Fighter) Alive() bool { return f.CurHP > 0 }

// TakeDamage applies incoming damage through reductions and shields, then
// HP, clamping at 0. Returns the damage that reached HP.
func (f *Fighter) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}

	// Percent reductions first, then flat.
	for _, r := range f.Reductions {
		if r.IsPercent {
			amount -= amount * r.Amount / 100
		}
	}
	for _, r := range f.Reductions {
		if !r.IsPercent {
			amount -= r.Amount
		}
	}
	if amount < 0 {
		amount = 0
	}

	// Shields absorb before HP.
	for i := range f.Shields {
		if amount == 0 {
			break
		}
		absorbed := min(f.Shields[i].Amount, amount)
		f.Shields[i].Amount -= absorbed
		amount -= absorbed
	}
	f.Shields = pruneShields(f.Shields)

	f.CurHP -= amount
	if f.CurHP < 0 {
		f.CurHP = 0
	}
	return amount
}

// Heal restores HP, clamping to max.
func (f *Fighter) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := f.CurHP
	f.CurHP += amount
	if f.CurHP > f.Def.MaxHP {
		f.CurHP = f.Def.MaxHP
	}
	return f.CurHP - before
}

// ChangeMana adds (or drains, when negative) mana, clamped to [0, max].
func (f *Fighter) ChangeMana(delta int) {
	f.CurMana += delta
	if f.CurMana < 0 {
		f.CurMana = 0
	}
	if f.CurMana > f.Def.MaxMana {
		f.CurMana = f.Def.MaxMana
	}
}

// AddStatus adds stacks to a status, merging with an existing entry and
// refreshing its duration.
func (f *Fighter) AddStatus(id string, stacks, duration int) {
	for i := range f.Statuses {
		if f.Statuses[i].ID == id {
			f.Statuses[i].Stacks += stacks
			if duration > f.Statuses[i].Duration {
				f.Statuses[i].Duration = duration
			}
			return
		}
	}
	f.Statuses = append(f.Statuses, Status{ID: id, Stacks: stacks, Duration: duration})
}

// RemoveStatus removes stacks from a status; 0 stacks removes the entry.
func (f *Fighter) RemoveStatus(id string, stacks int) {
	for i := range f.Statuses {
		if f.Statuses[i].ID != id {
			continue
		}
		if stacks <= 0 || f.Statuses[i].Stacks <= stacks {
			f.Statuses = append(f.Statuses[:i], f.Statuses[i+1:]...)
		} else {
			f.Statuses[i].Stacks -= stacks
		}
		return
	}
}

// Cleanse removes up to count status entries (all when count <= 0).
// Returns the number removed.
func (f *Fighter) Cleanse(count int) int {
	if count <= 0 || count >= len(f.Statuses) {
		removed := len(f.Statuses)
		f.Statuses = nil
		return removed
	}
	f.Statuses = f.Statuses[count:]
	return count
}

// ChargesLeft returns remaining charges for an action; actions without a
// charge limit always have one available.
func (f *Fighter) ChargesLeft(action types.ActionDef) int {
	if action.Charges <= 0 {
		return 1
	}
	left := action.Charges - f.ChargesUsed[action.ID]
	if left < 0 {
		return 0
	}
	return left
}

// RefundCharges returns spent charges to an action.
func (f *Fighter) RefundCharges(actionID string, n int) {
	f.ChargesUsed[actionID] -= n
	if f.ChargesUsed[actionID] < 0 {
		f.ChargesUsed[actionID] = 0
	}
}

// TickUpkeep advances end-of-round durations: statuses, shields, buffs,
// reductions, reflects, counters, marks, and cooldowns.
func (f *Fighter) TickUpkeep() {
	var statuses []Status
	for _, s := range f.Statuses {
		if s.Duration < 0 {
			statuses = append(statuses, s)
			continue
		}
		s.Duration--
		if s.Duration > 0 {
			statuses = append(statuses, s)
		}
	}
	f.Statuses = statuses

	var shields []Shield
	for _, s := range f.Shields {
		s.Duration--
		if s.Duration > 0 && s.Amount > 0 {
			shields = append(shields, s)
		}
	}
	f.Shields = shields

	var reductions []Reduction
	for _, r := range f.Reductions {
		r.Duration--
		if r.Duration > 0 {
			reductions = append(reductions, r)
		}
	}
	f.Reductions = reductions

	var counters []Counter
	for _, c := range f.Counters {
		c.Duration--
		if c.Duration > 0 {
			counters = append(counters, c)
		}
	}
	f.Counters = counters

	if f.ArmorDuration > 0 {
		f.ArmorDuration--
		if f.ArmorDuration == 0 {
			f.BonusArmor = 0
		}
	}
	if f.ReflectDuration > 0 {
		f.ReflectDuration--
		if f.ReflectDuration == 0 {
			f.ReflectPct = 0
		}
	}

	for id, d := range f.Marks {
		if d <= 1 {
			delete(f.Marks, id)
		} else {
			f.Marks[id] = d - 1
		}
	}
	for id, cd := range f.Cooldowns {
		if cd <= 1 {
			delete(f.Cooldowns, id)
		} else {
			f.Cooldowns[id] = cd - 1
		}
	}
	if f.ChannelTurns > 0 {
		f.ChannelTurns--
		if f.ChannelTurns == 0 {
			f.ChannelAbility = ""
		}
	}
}

func pruneShields(shields []Shield) []Shield {
	var out []Shield
	for _, s := range shields {
		if s.Amount > 0 {
			out = append(out, s)
		}
	}
	return out
}
