// Package cli provides the plain-terminal front end for the diceforge
// combat simulator: a prompt loop, slash meta-commands, and script
// playback for reproducible runs.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/diceforge/engine"
	"github.com/nathoo/diceforge/engine/save"
	"github.com/nathoo/diceforge/engine/state"
	"github.com/nathoo/diceforge/types"
)

// CLI drives a combat session over a line-oriented reader and writer.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (script playback)

	lastCmd string
}

// New creates a CLI on stdin/stdout with the default save directory.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".diceforge", "saves"),
	}
}

// Run shows the encounter intro and opening status, then loops until the
// input runs out or the player quits.
func (c *CLI) Run() {
	if intro := c.Engine.Combat.Encounter.Intro; intro != "" {
		c.say(intro)
		c.say("")
	}
	c.emit(c.Engine.Step("status"))

	scanner := bufio.NewScanner(c.In)
	for {
		fmt.Fprint(c.Out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.EchoInput {
			c.say(line)
		}
		if !c.dispatch(line) {
			return
		}
	}
}

// dispatch routes one input line. Returns false when the session ends.
func (c *CLI) dispatch(line string) bool {
	if strings.HasPrefix(line, "/") {
		return !c.runMeta(line)
	}

	// "again" / "g" repeats the last combat command.
	if lower := strings.ToLower(line); lower == "again" || lower == "g" {
		if c.lastCmd == "" {
			c.say("Nothing to repeat.")
			return true
		}
		line = c.lastCmd
	} else {
		c.lastCmd = line
	}

	result := c.Engine.Step(line)
	c.emit(result)
	if c.Trace {
		c.traceResult(result)
	}
	return true
}

// runMeta handles slash commands. Returns true on /quit.
func (c *CLI) runMeta(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		c.system("Goodbye.")
		return true
	case "/save":
		c.saveCombat(arg)
	case "/load":
		c.loadCombat(arg)
	case "/seed":
		c.system(fmt.Sprintf("Seed: %d  Position: %d",
			c.Engine.RNG.Seed(), c.Engine.RNG.Position()))
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.system("Trace output enabled.")
		} else {
			c.system("Trace output disabled.")
		}
	case "/help":
		for _, line := range helpLines {
			c.say(line)
		}
	default:
		c.system(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) saveCombat(name string) {
	data, err := save.Save(c.Engine.Combat, c.Defs, c.Engine.RNG.Seed(), c.Engine.RNG.Position())
	if err == nil {
		err = os.MkdirAll(c.SaveDir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(c.savePath(name), data, 0o644)
	}
	if err != nil {
		c.system(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.system(fmt.Sprintf("Combat saved to %s.", filepath.Base(c.savePath(name))))
}

func (c *CLI) loadCombat(name string) {
	data, err := os.ReadFile(c.savePath(name))
	if err != nil {
		c.system(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.system(fmt.Sprintf("Load failed: %v", err))
		return
	}
	combat, err := save.Restore(sd, c.Defs)
	if err != nil {
		c.system(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Engine.Combat = combat
	c.Engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	c.system(fmt.Sprintf("Combat loaded (turn %d).", sd.Turn))
	c.emit(c.Engine.Step("status"))
}

var helpLines = []string{
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
}

func (c *CLI) traceResult(result types.Result) {
	for _, r := range result.Results {
		name := "-"
		if r.Target != nil {
			name = r.Target.Name()
		}
		c.system(fmt.Sprintf("[trace] %s → %s ok=%v dmg=%d heal=%d",
			r.Type, name, r.Success, r.Damage, r.Heal))
	}
	for _, e := range result.Events {
		c.system(fmt.Sprintf("[trace] event %s", e.Type))
	}
	for _, item := range result.Loot {
		c.system(fmt.Sprintf("[trace] drop %s L%d %s (%d affixes)",
			item.TemplateID, item.ItemLevel, item.Rarity, len(item.Affixes)))
	}
}

func (c *CLI) emit(result types.Result) {
	for _, line := range result.Output {
		c.say(line)
	}
}

func (c *CLI) say(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) system(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
