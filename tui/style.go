package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleLoot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleVictory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDamage
	kindHeal
	kindLoot
	kindVictory
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(trimmed, "Loot:"), strings.HasPrefix(trimmed, "+ "):
		return kindLoot
	case trimmed == "Victory!", trimmed == "You have fallen.":
		return kindVictory
	case strings.Contains(trimmed, "damage."), strings.Contains(trimmed, "shatters"),
		strings.Contains(trimmed, "executes"):
		return kindDamage
	case strings.Contains(trimmed, "recovers"), strings.Contains(trimmed, "drains"):
		return kindHeal
	case strings.HasPrefix(trimmed, "Unknown command"), strings.HasPrefix(trimmed, "no target"),
		strings.HasPrefix(trimmed, "You don't know"):
		return kindError
	default:
		return kindNarration
	}
}

// renderLineKind styles a classified line, wrapping it to the given width.
func renderLineKind(line string, kind lineKind, width int) string {
	style := styleNarration
	switch kind {
	case kindDamage:
		style = styleDamage
	case kindHeal:
		style = styleHeal
	case kindLoot:
		style = styleLoot
	case kindVictory:
		style = styleVictory
	case kindSystem:
		style = styleSystem
	case kindError:
		style = styleError
	case kindTrace:
		style = styleTrace
	}
	return style.Width(width).Render(line)
}
