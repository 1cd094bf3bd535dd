// WanderCore is a data-driven engine for top-down exploration games.
// Usage: wandercore [--version] [--plain] [--script <file>] [--mute] <game_directory>
package main

import (
	"fmt"
	"os"

	"github.com/nathoo/wandercore/audio"
	"github.com/nathoo/wandercore/cli"
	"github.com/nathoo/wandercore/engine"
	"github.com/nathoo/wandercore/loader"
	"github.com/nathoo/wandercore/tui"
	"github.com/nathoo/wandercore/world"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	mute := false
	var gameDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("wandercore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--mute":
			mute = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: wandercore [--version] [--plain] [--script <file>] [--mute] <game_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua game content.
	defs, err := loader.Load(gameDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	// Script and plain modes are headless and always silent.
	headless := scriptFile != "" || plain || !isTerminal()

	var snd world.Audio
	var music world.Music
	if !mute && !headless {
		ae := audio.NewEngine()
		if err := ae.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Audio unavailable, continuing silent: %v\n", err)
		} else {
			defer ae.Close()
			snd = ae
			music = ae.Music()
		}
	}

	if headless {
		c, err := cli.NewSession(defs, nil, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		if scriptFile != "" {
			f, err := os.Open(scriptFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			c.In = f
			c.EchoInput = true
		}
		if err := c.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	input := world.NewMemInput()
	eng := engine.New(defs, engine.Deps{
		Audio: snd,
		Music: music,
		Input: input,
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	})
	start := defs.Levels[defs.Game.Start]
	if err := eng.EnterLevel(start.ID, world.SceneFromLevel(start)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(eng, defs, input); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
