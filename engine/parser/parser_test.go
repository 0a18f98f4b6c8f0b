package parser

import (
	"testing"

	"github.com/nathoo/diceforge/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  types.Intent
	}{
		{input: "cast fireball", want: types.Intent{Verb: "cast", Object: "fireball"}},
		{input: "cast fireball at goblin", want: types.Intent{Verb: "cast", Object: "fireball", Target: "goblin"}},
		{input: "use fireball on the goblin", want: types.Intent{Verb: "cast", Object: "fireball", Target: "goblin"}},
		{input: "invoke chain lightning against dire wolf", want: types.Intent{Verb: "cast", Object: "chain lightning", Target: "dire wolf"}},
		{input: "c heal", want: types.Intent{Verb: "cast", Object: "heal"}},
		{input: "attack goblin", want: types.Intent{Verb: "attack", Object: "goblin"}},
		{input: "hit the orc", want: types.Intent{Verb: "attack", Object: "orc"}},
		{input: "strike a goblin", want: types.Intent{Verb: "attack", Object: "goblin"}},
		{input: "a orc", want: types.Intent{Verb: "attack", Object: "orc"}},
		{input: "status", want: types.Intent{Verb: "status"}},
		{input: "stats", want: types.Intent{Verb: "status"}},
		{input: "hp", want: types.Intent{Verb: "status"}},
		{input: "pass", want: types.Intent{Verb: "end"}},
		{input: "wait", want: types.Intent{Verb: "end"}},
		{input: "skip", want: types.Intent{Verb: "end"}},
		{input: "abilities", want: types.Intent{Verb: "actions"}},
		{input: "kit", want: types.Intent{Verb: "actions"}},
		{input: "?", want: types.Intent{Verb: "help"}},
		{input: "h", want: types.Intent{Verb: "help"}},
		{input: "q", want: types.Intent{Verb: "quit"}},
		{input: "CAST Fireball AT Goblin", want: types.Intent{Verb: "cast", Object: "fireball", Target: "goblin"}},
		{input: "  attack   goblin  ", want: types.Intent{Verb: "attack", Object: "goblin"}},
		{input: "", want: types.Intent{}},
		{input: "   ", want: types.Intent{}},
		{input: "dance", want: types.Intent{Verb: "dance"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
