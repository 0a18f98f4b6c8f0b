// Package parser converts simulator command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/diceforge/types"
)

var verbAliases = map[string]string{
	// Cast
	"use":    "cast",
	"c":      "cast",
	"invoke": "cast",

	// Attack
	"hit":    "attack",
	"strike": "attack",
	"a":      "attack",

	// Status
	"stats": "status",
	"st":    "status",
	"hp":    "status",

	// Pass / end turn
	"pass": "end",
	"wait": "end",
	"skip": "end",
	"e":    "end",

	// Actions list
	"abilities": "actions",
	"skills":    "actions",
	"kit":       "actions",

	// Misc
	"h": "help",
	"?": "help",
	"q": "quit",
}

var prepositions = map[string]bool{
	"at": true, "on": true, "against": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent. For cast commands
// the Object is the action name and the Target the fighter name; for
// attack commands the Object is the target fighter.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition. Words before
// it become the object, words after become the target. With no
// preposition, everything is the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
