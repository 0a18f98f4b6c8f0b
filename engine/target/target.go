// Package target maps target types and fighter names to concrete fighter
// lists, and implements the chain/splash target-selection policies that
// the effect executor leaves to its caller.
package target

import (
	"fmt"
	"strings"

	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

// AmbiguityError indicates multiple fighters matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no living fighter matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no target called %q", e.Name)
}

// Select resolves a target type (and an optional explicit name for the
// single-target types) into the concrete fighter list an effect applies
// to. With no name, single-target effects default to the first living
// candidate in initiative order.
func Select(c *state.Combat, source *state.Fighter, tt types.TargetType, name string) ([]*state.Fighter, error) {
	switch tt {
	case types.TargetSelf:
		return []*state.Fighter{source}, nil

	case types.TargetSingleEnemy:
		return selectOne(c.AliveEnemiesOf(source), name)

	case types.TargetAllEnemies:
		enemies := c.AliveEnemiesOf(source)
		if len(enemies) == 0 {
			return nil, &NotFoundError{Name: "any enemy"}
		}
		return enemies, nil

	case types.TargetSingleAlly:
		return selectOne(c.AliveAlliesOf(source), name)

	case types.TargetAllAllies:
		allies := c.AliveAlliesOf(source)
		if len(allies) == 0 {
			return nil, &NotFoundError{Name: "any ally"}
		}
		return allies, nil

	default:
		return []*state.Fighter{source}, nil
	}
}

// selectOne picks a single fighter from candidates, by name when given.
func selectOne(candidates []*state.Fighter, name string) ([]*state.Fighter, error) {
	if len(candidates) == 0 {
		return nil, &NotFoundError{Name: "any target"}
	}
	if name == "" {
		return candidates[:1], nil
	}

	var matches []*state.Fighter
	nameLower := strings.ToLower(name)
	for _, f := range candidates {
		if matchesName(f, nameLower) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches, nil
	default:
		var names []string
		for _, f := range matches {
			names = append(names, f.Name())
		}
		return nil, &AmbiguityError{Name: name, Candidates: names}
	}
}

// matchesName checks fighter id and display name, case-insensitive, with
// word-based partial matching ("wolf" matches "dire wolf").
func matchesName(f *state.Fighter, nameLower string) bool {
	if strings.ToLower(f.Def.ID) == nameLower {
		return true
	}
	display := strings.ToLower(f.Name())
	if display == nameLower {
		return true
	}
	for _, word := range strings.Fields(display) {
		if word == nameLower {
			return true
		}
	}
	return strings.ReplaceAll(nameLower, " ", "_") == strings.ToLower(f.Def.ID)
}

// ChainTargets builds the jump sequence for a chain effect: one fighter
// per chain link, walking living enemies of the source in initiative
// order after the primary. When canRepeat is set the walk wraps around
// exhausted candidates, but never hits the same fighter twice in a row.
func ChainTargets(c *state.Combat, source, primary *state.Fighter, links int, canRepeat bool) []*state.Fighter {
	if links <= 0 {
		return nil
	}

	var pool []*state.Fighter
	for _, f := range c.AliveEnemiesOf(source) {
		if f != primary {
			pool = append(pool, f)
		}
	}

	var out []*state.Fighter
	prev := primary
	for i := 0; i < links; i++ {
		next := nextChainTarget(pool, primary, prev, i, canRepeat)
		if next == nil {
			break
		}
		out = append(out, next)
		prev = next
	}
	return out
}

func nextChainTarget(pool []*state.Fighter, primary, prev *state.Fighter, link int, canRepeat bool) *state.Fighter {
	if len(pool) > link {
		return pool[link]
	}
	if !canRepeat {
		return nil
	}
	// Wrap around, bouncing back through the primary, never repeating
	// the immediately previous link.
	candidates := append([]*state.Fighter{primary}, pool...)
	for _, f := range candidates {
		if f != prev {
			return f
		}
	}
	return nil
}

// SplashTargets returns the fighters hit by splash damage around the
// primary: all other living enemies when splashAll is set, otherwise the
// adjacent neighbors in initiative order.
func SplashTargets(c *state.Combat, source, primary *state.Fighter, splashAll bool) []*state.Fighter {
	enemies := c.AliveEnemiesOf(source)

	if splashAll {
		var out []*state.Fighter
		for _, f := range enemies {
			if f != primary {
				out = append(out, f)
			}
		}
		return out
	}

	idx := -1
	for i, f := range enemies {
		if f == primary {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var out []*state.Fighter
	if idx > 0 {
		out = append(out, enemies[idx-1])
	}
	if idx+1 < len(enemies) {
		out = append(out, enemies[idx+1])
	}
	return out
}
