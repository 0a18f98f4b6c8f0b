// Package rng provides the single deterministic random stream shared by
// condition rolls, weighted table picks, affix fuzz, and item-level jitter.
// A fixed seed reproduces an entire combat and its loot.
package rng

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, enabling save/restore.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.pos++
	return r.src.Intn(sides) + 1
}

// RollDice rolls count dice with the given sides and returns each value.
func (r *RNG) RollDice(count, sides int) []int {
	values := make([]int, count)
	for i := range values {
		values[i] = r.Roll(sides)
	}
	return values
}

// Float64 returns a random float in [0.0, 1.0).
func (r *RNG) Float64() float64 {
	r.pos++
	return r.src.Float64()
}

// IntN returns a random integer in [0, n).
func (r *RNG) IntN(n int) int {
	r.pos++
	return r.src.Intn(n)
}

// Range returns a random integer in [min, max] inclusive.
// If min >= max it returns min.
func (r *RNG) Range(min, max int) int {
	if min >= max {
		return min
	}
	r.pos++
	return min + r.src.Intn(max-min+1)
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.pos++
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed this stream was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}
