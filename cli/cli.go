// Package cli provides a deterministic, scriptable frontend: commands
// read line by line drive the engine tick by tick, with every observable
// change printed as plain text. Used for headless play and replay tests.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/wandercore/engine"
	"github.com/nathoo/wandercore/engine/dialogue"
	"github.com/nathoo/wandercore/engine/save"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// tickStep is the fixed frame duration for scripted play.
const tickStep = 16

// CLI replays commands against an engine.
type CLI struct {
	Engine    *engine.Engine
	Defs      *types.Defs
	In        io.Reader
	Out       io.Writer
	EchoInput bool

	input *world.MemInput
	// lastText tracks the dialogue text already printed, so ticking
	// through a typing animation prints each line once.
	lastText    string
	lastChoice  int
	lastOutcome engine.Outcome
}

// New creates a CLI wired to the given engine. The engine must have
// been built with the returned input as its input port; use NewSession
// to get both halves consistently.
func New(eng *engine.Engine, defs *types.Defs, input *world.MemInput) *CLI {
	return &CLI{
		Engine:     eng,
		Defs:       defs,
		In:         os.Stdin,
		Out:        os.Stdout,
		input:      input,
		lastChoice: -1,
	}
}

// NewSession builds an engine and a CLI around it, entering the start
// level. Audio and music may be nil for silent runs.
func NewSession(defs *types.Defs, audio world.Audio, music world.Music) (*CLI, error) {
	input := world.NewMemInput()
	eng := engine.New(defs, engine.Deps{
		Audio: audio,
		Music: music,
		Input: input,
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	})
	start := defs.Game.Start
	level := defs.Levels[start]
	if err := eng.EnterLevel(start, world.SceneFromLevel(level)); err != nil {
		return nil, err
	}
	return New(eng, defs, input), nil
}

// Run reads commands until EOF or quit.
func (c *CLI) Run() error {
	scanner := bufio.NewScanner(c.In)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.EchoInput {
			c.printf("> %s\n", line)
		}
		if line == "quit" {
			return nil
		}
		if err := c.exec(line); err != nil {
			c.printf("error: %v\n", err)
		}
	}
	return scanner.Err()
}

// exec runs a single command.
//
//	tick <ms>          advance the clock
//	move <dx> <dy>     move the player one frame
//	press <action>     confirm, cancel, up, down
//	goto <level>       enter a level
//	status             print player, selection, scores
//	inventory          print held items
//	save <path>        write a snapshot
//	load <path>        restore a snapshot
func (c *CLI) exec(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "tick":
		ms := tickStep
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			ms = n
		}
		c.advance(ms)

	case "move":
		if len(args) != 2 {
			return fmt.Errorf("move needs dx dy")
		}
		dx, err1 := strconv.ParseFloat(args[0], 64)
		dy, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("move: bad delta %q %q", args[0], args[1])
		}
		c.Engine.MovePlayer(dx, dy)
		c.advance(tickStep)

	case "press":
		if len(args) != 1 {
			return fmt.Errorf("press needs an action")
		}
		action, ok := map[string]string{
			"confirm": world.ActConfirm,
			"cancel":  world.ActCancel,
			"up":      world.ActUp,
			"down":    world.ActDown,
		}[args[0]]
		if !ok {
			return fmt.Errorf("unknown action %q", args[0])
		}
		c.input.Press(action)
		c.advance(tickStep)
		c.input.EndFrame()

	case "goto":
		if len(args) != 1 {
			return fmt.Errorf("goto needs a level id")
		}
		level, ok := c.Defs.Levels[args[0]]
		if !ok {
			return fmt.Errorf("unknown level %q", args[0])
		}
		if err := c.Engine.EnterLevel(level.ID, world.SceneFromLevel(level)); err != nil {
			return err
		}
		c.printf("[%s]\n", level.ID)

	case "status":
		c.printStatus()

	case "inventory":
		c.printInventory()

	case "save":
		if len(args) != 1 {
			return fmt.Errorf("save needs a path")
		}
		return save.Write(args[0], c.Engine.Snapshot())

	case "load":
		if len(args) != 1 {
			return fmt.Errorf("load needs a path")
		}
		d, err := save.Read(args[0])
		if err != nil {
			return err
		}
		level, ok := c.Defs.Levels[d.Level]
		if !ok {
			return fmt.Errorf("snapshot names unknown level %q", d.Level)
		}
		if err := c.Engine.Restore(d, world.SceneFromLevel(level)); err != nil {
			return err
		}
		c.printf("[%s]\n", d.Level)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// advance ticks the engine in fixed steps, printing dialogue lines and
// outcomes as they appear.
func (c *CLI) advance(ms int) {
	for ms > 0 {
		step := tickStep
		if ms < step {
			step = ms
		}
		c.Engine.Tick(step)
		ms -= step
		c.observe()
	}
}

// observe prints state transitions since the previous frame.
func (c *CLI) observe() {
	r := c.Engine.Runner

	switch r.State() {
	case dialogue.AwaitingAdvance, dialogue.InChoice:
		full := r.VisibleText()
		if full != "" && full != c.lastText {
			c.lastText = full
			if sp := r.Speaker(); sp != "" {
				c.printf("%s: %s\n", sp, full)
			} else {
				c.printf("%s\n", full)
			}
		}
		if r.State() == dialogue.InChoice && r.Selected() != c.lastChoice {
			c.lastChoice = r.Selected()
			for i, opt := range r.Options() {
				marker := "  "
				if i == r.Selected() {
					marker = "> "
				}
				c.printf("  %s%d. %s\n", marker, i+1, opt.Text)
			}
		}
	default:
		c.lastText = ""
		c.lastChoice = -1
	}

	if out := c.Engine.Outcome(); out != c.lastOutcome {
		c.lastOutcome = out
		switch out {
		case engine.TrueEnding:
			c.printf("*** %s: the true ending ***\n", c.Defs.Game.Title)
		case engine.TimeUp:
			c.printf("*** time has run out ***\n")
		}
	}
}

func (c *CLI) printStatus() {
	p := c.Engine.Player()
	c.printf("player %.0f,%.0f", p.X, p.Y)
	if sel := c.Engine.Selected(); sel != nil {
		prompt := sel.Prompt
		if prompt == "" {
			prompt = sel.ID
		}
		c.printf("  [%s]", prompt)
	}
	s := c.Engine.State
	c.printf("  score %d  helped %d\n", s.Score, s.HelpScore)
}

func (c *CLI) printInventory() {
	s := c.Engine.State
	if len(s.Inventory) == 0 {
		c.printf("inventory: empty\n")
		return
	}
	items := make([]string, 0, len(s.Inventory))
	for name := range s.Inventory {
		items = append(items, name)
	}
	sort.Strings(items)
	c.printf("inventory:")
	for _, name := range items {
		if n := s.Inventory[name]; n > 1 {
			c.printf(" %s x%d", name, n)
		} else {
			c.printf(" %s", name)
		}
	}
	c.printf("\n")
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}
