package target

import (
	"errors"
	"testing"

	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

func testCombat(t *testing.T) *state.Combat {
	t.Helper()
	defs := &state.Defs{
		Fighters: map[string]types.FighterDef{
			"hero":      {ID: "hero", Name: "Hero", Team: "hero", MaxHP: 100},
			"goblin":    {ID: "goblin", Name: "Goblin", Team: "enemy", MaxHP: 30},
			"dire_wolf": {ID: "dire_wolf", Name: "Dire Wolf", Team: "enemy", MaxHP: 40},
			"orc":       {ID: "orc", Name: "Orc", Team: "enemy", MaxHP: 50},
		},
		Encounters: map[string]types.EncounterDef{
			"pack": {ID: "pack", Heroes: []string{"hero"},
				Enemies: []string{"goblin", "dire_wolf", "orc"}},
		},
	}
	c, err := state.NewCombat(defs, "pack")
	if err != nil {
		t.Fatalf("NewCombat: %v", err)
	}
	return c
}

func fighterByID(c *state.Combat, id string) *state.Fighter {
	for _, f := range c.Fighters {
		if f.Def.ID == id {
			return f
		}
	}
	return nil
}

func ids(fighters []*state.Fighter) []string {
	var out []string
	for _, f := range fighters {
		out = append(out, f.Def.ID)
	}
	return out
}

func TestSelect(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()

	tests := []struct {
		name    string
		tt      types.TargetType
		target  string
		wantIDs []string
	}{
		{name: "self", tt: types.TargetSelf, wantIDs: []string{"hero"}},
		{name: "single enemy defaults to first", tt: types.TargetSingleEnemy, wantIDs: []string{"goblin"}},
		{name: "single enemy by id", tt: types.TargetSingleEnemy, target: "orc", wantIDs: []string{"orc"}},
		{name: "single enemy by display name", tt: types.TargetSingleEnemy, target: "Dire Wolf", wantIDs: []string{"dire_wolf"}},
		{name: "single enemy by word", tt: types.TargetSingleEnemy, target: "wolf", wantIDs: []string{"dire_wolf"}},
		{name: "single enemy case-insensitive", tt: types.TargetSingleEnemy, target: "GOBLIN", wantIDs: []string{"goblin"}},
		{name: "all enemies", tt: types.TargetAllEnemies, wantIDs: []string{"goblin", "dire_wolf", "orc"}},
		{name: "single ally defaults to self", tt: types.TargetSingleAlly, wantIDs: []string{"hero"}},
		{name: "all allies", tt: types.TargetAllAllies, wantIDs: []string{"hero"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(c, hero, tt.tt, tt.target)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("targets = %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Fatalf("targets = %v, want %v", gotIDs, tt.wantIDs)
				}
			}
		})
	}
}

func TestSelectErrors(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()

	_, err := Select(c, hero, types.TargetSingleEnemy, "dragon")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown name: got %v, want NotFoundError", err)
	}

	// Two enemies share the word "wolf": ambiguous.
	fighterByID(c, "goblin").Def.Name = "Wolf Rider"
	_, err = Select(c, hero, types.TargetSingleEnemy, "wolf")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("ambiguous name: got %v, want AmbiguityError", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", amb.Candidates)
	}
}

func TestSelectSkipsDead(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()
	fighterByID(c, "goblin").CurHP = 0

	got, err := Select(c, hero, types.TargetSingleEnemy, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got[0].Def.ID != "dire_wolf" {
		t.Errorf("default target = %s, want first living enemy", got[0].Def.ID)
	}

	all, err := Select(c, hero, types.TargetAllEnemies, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all enemies = %v, want the 2 living", ids(all))
	}
}

func TestSelectNoLivingTargets(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()
	for _, f := range c.Fighters {
		if f.Def.Team == "enemy" {
			f.CurHP = 0
		}
	}

	if _, err := Select(c, hero, types.TargetSingleEnemy, ""); err == nil {
		t.Errorf("single enemy with no living targets accepted")
	}
	if _, err := Select(c, hero, types.TargetAllEnemies, ""); err == nil {
		t.Errorf("all enemies with no living targets accepted")
	}
}

func TestChainTargets(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()
	primary := fighterByID(c, "goblin")

	// Two links, two other enemies: a plain walk.
	got := ChainTargets(c, hero, primary, 2, false)
	want := []string{"dire_wolf", "orc"}
	gotIDs := ids(got)
	if len(gotIDs) != 2 || gotIDs[0] != want[0] || gotIDs[1] != want[1] {
		t.Errorf("chain = %v, want %v", gotIDs, want)
	}

	// More links than candidates without repeat: the chain just stops.
	got = ChainTargets(c, hero, primary, 5, false)
	if len(got) != 2 {
		t.Errorf("non-repeating chain hit %d targets, want 2", len(got))
	}
}

// With repeats allowed the chain wraps around, but never strikes the same
// fighter twice in a row.
func TestChainTargetsWraparound(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()
	primary := fighterByID(c, "goblin")

	got := ChainTargets(c, hero, primary, 5, true)
	if len(got) != 5 {
		t.Fatalf("repeating chain hit %d targets, want 5", len(got))
	}
	prev := primary
	for i, f := range got {
		if f == prev {
			t.Errorf("link %d repeats the previous target %s", i, f.Def.ID)
		}
		prev = f
	}
}

func TestChainTargetsSoloEnemy(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()
	primary := fighterByID(c, "goblin")
	fighterByID(c, "dire_wolf").CurHP = 0
	fighterByID(c, "orc").CurHP = 0

	if got := ChainTargets(c, hero, primary, 3, false); len(got) != 0 {
		t.Errorf("chain with no other enemies hit %v", ids(got))
	}
	// Even with repeats there is nothing to alternate with but the primary,
	// and the first wrap lands on it.
	got := ChainTargets(c, hero, primary, 3, true)
	for i, f := range got {
		if i > 0 && f == got[i-1] {
			t.Errorf("solo chain repeated consecutively at link %d", i)
		}
	}
}

func TestSplashTargets(t *testing.T) {
	c := testCombat(t)
	hero := c.Player()

	// Middle primary splashes both neighbors.
	got := SplashTargets(c, hero, fighterByID(c, "dire_wolf"), false)
	gotIDs := ids(got)
	if len(gotIDs) != 2 || gotIDs[0] != "goblin" || gotIDs[1] != "orc" {
		t.Errorf("splash = %v, want [goblin orc]", gotIDs)
	}

	// Edge primary has a single neighbor.
	got = SplashTargets(c, hero, fighterByID(c, "goblin"), false)
	if len(got) != 1 || got[0].Def.ID != "dire_wolf" {
		t.Errorf("edge splash = %v, want [dire_wolf]", ids(got))
	}

	// splash-all hits everyone but the primary.
	got = SplashTargets(c, hero, fighterByID(c, "goblin"), true)
	if len(got) != 2 {
		t.Errorf("splash-all = %v, want both others", ids(got))
	}
}
