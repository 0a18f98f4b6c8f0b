// Package loot implements the affix table registry and the loot roller:
// weighted affix draws, item-level power scaling with fuzz, duplicate
// avoidance, and rarity-driven drop generation.
package loot

import (
	"math"

	"github.com/nathoo/diceforge/types"
)

// defaultLevelCap bounds item levels when no scaling config is provided.
const defaultLevelCap = 100

// PowerPosition maps an item level to its 0.0-1.0 position along the
// scaling curve. A nil config falls back to a linear curve over the
// default level cap — configuration absence is a soft failure.
func PowerPosition(cfg *types.ScalingConfig, itemLevel int) float64 {
	levelCap := defaultLevelCap
	exponent := 1.0
	if cfg != nil {
		if cfg.LevelCap > 1 {
			levelCap = cfg.LevelCap
		}
		if cfg.Exponent > 0 {
			exponent = cfg.Exponent
		}
	}

	if itemLevel <= 1 {
		return 0.0
	}
	if itemLevel >= levelCap {
		return 1.0
	}
	pos := float64(itemLevel-1) / float64(levelCap-1)
	return math.Pow(pos, exponent)
}

// fuzzPercent returns the configured fuzz, defaulting when absent.
func fuzzPercent(cfg *types.ScalingConfig) float64 {
	if cfg == nil || cfg.FuzzPercent < 0 {
		return 0.0
	}
	return cfg.FuzzPercent
}

// clampLevel bounds an item level to the valid [1, 100] band.
func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > defaultLevelCap {
		return defaultLevelCap
	}
	return level
}
