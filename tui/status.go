package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/diceforge/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// player's vitals, the living enemy count, and the turn number.
func (m Model) renderStatusBar() string {
	c := m.engine.Combat

	left := " (no player)"
	player := c.Player()
	if player != nil {
		left = fmt.Sprintf(" %s  HP %d/%d  MP %d/%d",
			player.Name(), player.CurHP, player.MaxHP(), player.CurMana, player.MaxMana())
		if tags := vitalsTags(player); tags != "" {
			left += "  " + tags
		}
	}

	enemies := 0
	if player != nil {
		enemies = len(c.AliveEnemiesOf(player))
	}
	right := fmt.Sprintf("Enemies: %d | T:%d ", enemies, c.Turn)
	if c.Over {
		right = fmt.Sprintf("%s wins | T:%d ", c.Victor, c.Turn)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// vitalsTags summarizes the player's shields and statuses for the bar.
func vitalsTags(f *state.Fighter) string {
	var tags []string
	shield := 0
	for _, s := range f.Shields {
		shield += s.Amount
	}
	if shield > 0 {
		tags = append(tags, fmt.Sprintf("SH:%d", shield))
	}
	for _, s := range f.Statuses {
		tags = append(tags, fmt.Sprintf("%s x%d", s.ID, s.Stacks))
	}
	return strings.Join(tags, " ")
}
