package loot

import (
	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/types"
)

// duplicateRetries bounds how many re-rolls a by-name collision gets
// before the slot is skipped. Sparse tables legitimately yield fewer
// results than requested.
const duplicateRetries = 3

// Roller orchestrates loot generation: rarity policy lookup, affix draws
// through the registry, item-level jitter, and duplicate avoidance.
type Roller struct {
	registry   *Registry
	policy     types.RarityPolicy
	dropTables map[string]types.DropTable
	rng        *rng.RNG
}

// NewRoller creates a roller over the given registry. The rarity policy
// and drop tables are configuration data loaded by the host, not logic.
func NewRoller(registry *Registry, policy types.RarityPolicy, dropTables map[string]types.DropTable, r *rng.RNG) *Roller {
	if dropTables == nil {
		dropTables = map[string]types.DropTable{}
	}
	return &Roller{registry: registry, policy: policy, dropTables: dropTables, rng: r}
}

// RollMultiple performs one affix roll per provided tier, up to count
// results. With avoidDuplicates, a roll whose name collides with an
// already-accepted affix is retried up to 3 times, then the slot is
// skipped — never forced.
func (lr *Roller) RollMultiple(count int, tiers []int, itemLevel int, element string, avoidDuplicates bool) []types.RolledAffix {
	var results []types.RolledAffix
	for _, tier := range tiers {
		if len(results) >= count {
			break
		}

		var accepted *types.RolledAffix
		for attempt := 0; attempt < duplicateRetries; attempt++ {
			rolled := lr.registry.RollAffix(tier, itemLevel, element)
			if rolled == nil {
				break
			}
			if avoidDuplicates && hasName(results, rolled.Name) {
				continue
			}
			accepted = rolled
			break
		}

		if accepted != nil {
			results = append(results, *accepted)
		}
	}
	return results
}

// RollForRarity draws affixes per the rarity policy maps. Unknown
// rarities roll nothing.
func (lr *Roller) RollForRarity(rarity types.Rarity, itemLevel int, element string) []types.RolledAffix {
	count := lr.policy.AffixCount[rarity]
	tiers := lr.policy.AffixTiers[rarity]
	if count <= 0 || len(tiers) == 0 {
		return nil
	}
	return lr.RollMultiple(count, tiers, itemLevel, element, true)
}

// GenerateDrop rolls a finished item from a template. The item level
// jitters uniformly within the template's spread around the source level,
// clamped to [1, 100], before affix rolls.
func (lr *Roller) GenerateDrop(tmpl types.ItemTemplate, sourceLevel int) types.DroppedItem {
	level := sourceLevel
	if tmpl.LevelSpread > 0 {
		level += lr.rng.Range(-tmpl.LevelSpread, tmpl.LevelSpread)
	}
	level = clampLevel(level)

	return types.DroppedItem{
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Slot:       tmpl.Slot,
		Rarity:     tmpl.Rarity,
		ItemLevel:  level,
		Affixes:    lr.RollForRarity(tmpl.Rarity, level, tmpl.Element),
	}
}

// RollLoot processes a named drop table: each entry rolls independently
// against its chance, and successful entries become finished drops. An
// unknown table name yields an empty list.
func (lr *Roller) RollLoot(tableName string, sourceLevel int) []types.DroppedItem {
	table, ok := lr.dropTables[tableName]
	if !ok {
		return nil
	}

	var drops []types.DroppedItem
	for _, entry := range table.Entries {
		if lr.rng.Float64() < entry.Chance {
			drops = append(drops, lr.GenerateDrop(entry.Template, sourceLevel))
		}
	}
	return drops
}

func hasName(affixes []types.RolledAffix, name string) bool {
	for _, a := range affixes {
		if a.Name == name {
			return true
		}
	}
	return false
}
