// Package tui provides a Bubble Tea terminal UI for the diceforge combat
// simulator.
package tui

// History keeps the most recent commands for Up/Down recall. Navigation
// is tracked as an offset back from the newest entry; offset 0 means the
// player is typing fresh input.
type History struct {
	entries []string
	max     int
	back    int
}

// NewHistory creates a history buffer holding at most max entries.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push records a command, skipping consecutive duplicates and evicting
// the oldest entry past the cap.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev steps to the next older entry, stopping at the oldest.
// Returns ("", false) when there is no history at all.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps toward the newest entry. Past the newest it returns
// ("", false) and the input line goes back to fresh text.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.back = 0
}
