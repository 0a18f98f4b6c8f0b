// Diceforge is a deterministic, data-driven dice combat and loot simulator.
// Usage: diceforge [--version] [--plain] [--script <file>] [--trace]
// [--seed <n>] [--encounter <id>] [--config <file>] <content_directory>
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/diceforge/cli"
	"github.com/nathoo/diceforge/engine"
	"github.com/nathoo/diceforge/loader"
	"github.com/nathoo/diceforge/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// simConfig is the optional YAML configuration for scripted runs.
type simConfig struct {
	Seed      int64  `yaml:"seed"`
	Encounter string `yaml:"encounter"`
	Script    string `yaml:"script"`
	Plain     bool   `yaml:"plain"`
	Trace     bool   `yaml:"trace"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := simConfig{Seed: 1}
	var contentDir string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("diceforge %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			cfg.Plain = true
		case "--trace":
			cfg.Trace = true
		case "--script":
			cfg.Script = nextArg(args, &i, "--script")
		case "--encounter":
			cfg.Encounter = nextArg(args, &i, "--encounter")
		case "--seed":
			seed, err := strconv.ParseInt(nextArg(args, &i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed requires an integer\n")
				os.Exit(1)
			}
			cfg.Seed = seed
		case "--config":
			path := nextArg(args, &i, "--config")
			if err := loadConfig(path, &cfg); err != nil {
				logger.Error("loading config", "path", path, "error", err)
				os.Exit(1)
			}
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	if contentDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: diceforge [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--encounter <id>] [--config <file>] <content_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua content.
	defs, err := loader.Load(contentDir)
	if err != nil {
		logger.Error("loading content", "dir", contentDir, "error", err)
		os.Exit(1)
	}

	// Default encounter: the only one, or fail with the choices.
	if cfg.Encounter == "" {
		if len(defs.Encounters) == 1 {
			for id := range defs.Encounters {
				cfg.Encounter = id
			}
		} else {
			logger.Error("multiple encounters defined, pick one with --encounter")
			for id := range defs.Encounters {
				fmt.Fprintf(os.Stderr, "  %s\n", id)
			}
			os.Exit(1)
		}
	}

	eng, err := engine.New(defs, cfg.Encounter, cfg.Seed)
	if err != nil {
		logger.Error("starting encounter", "encounter", cfg.Encounter, "error", err)
		os.Exit(1)
	}

	// Script mode: open file, force plain, echo commands.
	if cfg.Script != "" {
		f, err := os.Open(cfg.Script)
		if err != nil {
			logger.Error("opening script", "path", cfg.Script, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("%s v%s by %s\n\n", defs.Meta.Title, defs.Meta.Version, defs.Meta.Author)
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Trace = cfg.Trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		fmt.Printf("%s v%s by %s\n\n", defs.Meta.Title, defs.Meta.Version, defs.Meta.Author)
		c := cli.New(eng, defs)
		c.Trace = cfg.Trace
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		logger.Error("running tui", "error", err)
		os.Exit(1)
	}
}

// loadConfig overlays a YAML config file onto the current settings.
func loadConfig(path string, cfg *simConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func nextArg(args []string, i *int, flag string) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires an argument\n", flag)
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
