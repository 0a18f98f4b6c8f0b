package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/diceforge/engine"
	"github.com/nathoo/diceforge/engine/save"
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

// logLine is one unstyled transcript line. Styling and wrapping happen at
// render time so a resize can re-flow the whole log.
type logLine struct {
	text   string
	kind   lineKind
	echo   bool // echoed player input
	system bool // meta-command output
}

// combatLog accumulates the session transcript.
type combatLog struct {
	lines []logLine
}

// echo records the player's submitted command.
func (l *combatLog) echo(input string) {
	l.lines = append(l.lines, logLine{text: "> " + input, echo: true})
}

// add appends engine output, classifying each line for styling.
func (l *combatLog) add(lines []string) {
	for _, line := range lines {
		l.lines = append(l.lines, logLine{text: line, kind: classifyLine(line)})
	}
	l.lines = append(l.lines, logLine{})
}

// addSystem appends meta-command output.
func (l *combatLog) addSystem(lines []string) {
	for _, line := range lines {
		l.lines = append(l.lines, logLine{text: line, system: true})
	}
	l.lines = append(l.lines, logLine{})
}

func (l *combatLog) clear() {
	l.lines = nil
}

// render styles and wraps the transcript for the given width.
func (l *combatLog) render(width int) string {
	if width < 10 {
		width = 10
	}
	out := make([]string, 0, len(l.lines))
	for _, ln := range l.lines {
		switch {
		case ln.text == "":
			out = append(out, "")
		case ln.echo:
			out = append(out, stylePlayerInput.Width(width).Render(ln.text))
		case ln.system:
			out = append(out, styleSystem.Width(width).Render("["+ln.text+"]"))
		default:
			out = append(out, renderLineKind(ln.text, ln.kind, width))
		}
	}
	return strings.Join(out, "\n")
}

// Model is the Bubble Tea model for the diceforge combat simulator.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History
	log      combatLog

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// stepMsg carries engine output into the Update loop.
type stepMsg struct {
	input  string
	lines  []string
	system bool
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		defs:    defs,
		input:   ti,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".diceforge", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	p := tea.NewProgram(New(eng, defs), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.openingOutput())
}

// openingOutput produces the title card, the encounter intro, and the
// first status readout.
func (m Model) openingOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{
			m.defs.Meta.Title + " v" + m.defs.Meta.Version + " by " + m.defs.Meta.Author,
			"",
		}
		if intro := m.engine.Combat.Encounter.Intro; intro != "" {
			lines = append(lines, intro, "")
		}
		lines = append(lines, m.engine.Step("status").Output...)
		return stepMsg{lines: lines}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := max(m.height-2, 1) // status bar + input line
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = scrollKeys()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.redraw()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+l":
			m.log.clear()
			m.redraw()
			return m, nil
		case "enter":
			return m.submit()
		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case stepMsg:
		m = m.record(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the typed command through the engine or the meta handler.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if lower := strings.ToLower(input); lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.record(stepMsg{input: input, lines: []string{"Nothing to repeat."}, system: true})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := m.runMeta(input)
		m = m.record(stepMsg{input: input, lines: output, system: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, traceLines(result)...)
	}
	m = m.record(stepMsg{input: input, lines: output})
	return m, nil
}

// record appends a step's output to the log and scrolls to it.
func (m Model) record(msg stepMsg) Model {
	if msg.input != "" {
		m.log.echo(msg.input)
	}
	if msg.system {
		m.log.addSystem(msg.lines)
	} else {
		m.log.add(msg.lines)
	}
	m.redraw()
	return m
}

func (m *Model) redraw() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.log.render(m.width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// runMeta dispatches slash commands. Returns output lines and a quit flag.
func (m *Model) runMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.saveCombat(arg), false
	case "/load":
		return m.loadCombat(arg), false
	case "/seed":
		return []string{fmt.Sprintf("Seed: %d  Position: %d",
			m.engine.RNG.Seed(), m.engine.RNG.Position())}, false
	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	case "/help":
		return helpText(), false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) saveCombat(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	data, err := save.Save(m.engine.Combat, m.defs, m.engine.RNG.Seed(), m.engine.RNG.Position())
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Combat saved to %s.", name)}
}

func (m *Model) loadCombat(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	data, err := os.ReadFile(filepath.Join(m.saveDir, name+".json"))
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	combat, err := save.Restore(sd, m.defs)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.engine.Combat = combat
	m.engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)

	output := []string{fmt.Sprintf("Combat loaded from %s (turn %d).", name, sd.Turn)}
	return append(output, m.engine.Step("status").Output...)
}

func helpText() []string {
	return []string{
		"System:",
		"  /save [name]  — Save combat (default: quicksave)",
		"  /load [name]  — Load combat (default: quicksave)",
		"  /seed         — Show the RNG seed and position",
		"  /trace        — Toggle debug trace output",
		"  /quit         — Exit",
		"",
		"Combat commands:",
		"  cast <action> [at <target>]  — Use an action",
		"  attack [<target>] (a)        — Use your first action",
		"  actions                      — List your actions",
		"  status (st)                  — Show all fighters",
		"  end (e)                      — Pass the turn",
		"  again (g)                    — Repeat your last command",
		"",
		"Keys: PgUp/PgDn scroll, Up/Down command history, Ctrl+L clear log",
	}
}

// traceLines renders a step's raw results, events, and drops for /trace.
func traceLines(result types.Result) []string {
	var lines []string
	for _, r := range result.Results {
		name := "-"
		if r.Target != nil {
			name = r.Target.Name()
		}
		lines = append(lines, fmt.Sprintf("[trace] %s → %s ok=%v dmg=%d heal=%d", r.Type, name, r.Success, r.Damage, r.Heal))
	}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace] event %s", e.Type))
	}
	for _, item := range result.Loot {
		lines = append(lines, fmt.Sprintf("[trace] drop %s L%d %s (%d affixes)",
			item.TemplateID, item.ItemLevel, item.Rarity, len(item.Affixes)))
	}
	return lines
}

// scrollKeys reserves Up/Down for input history; the viewport scrolls by
// page only.
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
