package loot

import (
	"fmt"
	"sort"

	"github.com/nathoo/diceforge/engine/rng"
	"github.com/nathoo/diceforge/types"
)

// dieFamilies marks affix families that attach to dice rather than items.
var dieFamilies = map[string]bool{
	"value":      true,
	"combat":     true,
	"positional": true,
}

// Registry holds the family x tier grid of weighted affix pools. Tables
// are loaded once and read-only for the rest of the session; every roll
// duplicates the chosen template.
type Registry struct {
	tables  map[string]types.AffixTable // keyed "family_tier"
	scaling *types.ScalingConfig
	rng     *rng.RNG
}

// NewRegistry builds a registry over already-parsed affix tables. A nil
// scaling config falls back to linear power scaling.
func NewRegistry(tables map[string]types.AffixTable, scaling *types.ScalingConfig, r *rng.RNG) *Registry {
	if tables == nil {
		tables = map[string]types.AffixTable{}
	}
	return &Registry{tables: tables, scaling: scaling, rng: r}
}

// TableKey builds the registry key for a family/tier pair.
func TableKey(family string, tier int) string {
	return fmt.Sprintf("%s_%d", family, tier)
}

// TablesForTier returns the keys of all non-empty tables at the given
// tier, sorted for deterministic selection order.
func (g *Registry) TablesForTier(tier int) []string {
	return g.tablesForTier(tier, "")
}

// TablesForTierElement additionally excludes tables whose element filter
// is non-empty and does not contain the requested element. An empty filter
// is a wildcard: it matches any element.
func (g *Registry) TablesForTierElement(tier int, element string) []string {
	return g.tablesForTier(tier, element)
}

func (g *Registry) tablesForTier(tier int, element string) []string {
	var keys []string
	for key, table := range g.tables {
		if table.Tier != tier || len(table.Affixes) == 0 {
			continue
		}
		if element != "" && !elementMatches(table.ElementFilter, element) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func elementMatches(filter []string, element string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, e := range filter {
		if e == element {
			return true
		}
	}
	return false
}

// RollAffix selects a table uniformly at random among the eligible tables
// for the tier (table-level uniform pick, not affix-count-weighted), draws
// one affix by the table's per-entry weights, and scales its value by the
// item level's power position plus fuzz. Returns nil when no eligible
// table exists — fewer results than requested is an expected outcome.
func (g *Registry) RollAffix(tier, itemLevel int, element string) *types.RolledAffix {
	keys := g.tablesForTier(tier, element)
	if len(keys) == 0 {
		return nil
	}

	key := keys[g.rng.IntN(len(keys))]
	table := g.tables[key]

	affix := drawWeighted(table.Affixes, g.rng)
	if affix == nil {
		return nil
	}

	rolled := &types.RolledAffix{
		Affix:      *affix, // duplicate; the template is never shared
		Tier:       tier,
		Source:     key,
		SourceType: sourceType(table.Family),
	}
	rolled.EffectValue = g.rollValue(*affix, itemLevel)
	return rolled
}

// rollValue computes the affix's final value. Affixes without a scaling
// range keep their fixed value; otherwise the value interpolates along the
// power position and jitters by the configured fuzz, clamped to the range.
func (g *Registry) rollValue(affix types.Affix, itemLevel int) float64 {
	if affix.ValueMin == 0 && affix.ValueMax == 0 {
		return affix.Value
	}

	pos := PowerPosition(g.scaling, itemLevel)
	v := affix.ValueMin + (affix.ValueMax-affix.ValueMin)*pos

	if fuzz := fuzzPercent(g.scaling); fuzz > 0 {
		jitter := (g.rng.Float64()*2 - 1) * fuzz * v
		v += jitter
	}

	if v < affix.ValueMin {
		v = affix.ValueMin
	}
	if v > affix.ValueMax {
		v = affix.ValueMax
	}
	return v
}

// drawWeighted picks one affix by per-entry weight. Entries without a
// positive weight count as weight 1 so sparse tables still yield.
func drawWeighted(affixes []types.Affix, r *rng.RNG) *types.Affix {
	if len(affixes) == 0 {
		return nil
	}
	weights := make([]int, len(affixes))
	for i, a := range affixes {
		w := a.Weight
		if w <= 0 {
			w = 1
		}
		weights[i] = w
	}
	idx := r.WeightedSelect(weights)
	a := affixes[idx]
	return &a
}

func sourceType(family string) string {
	if dieFamilies[family] {
		return "die"
	}
	return "item"
}
