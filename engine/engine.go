// Package engine provides the per-frame orchestrator that wires the
// session state, interaction registry, dialogue runner, effect applier,
// trigger zones, and NPC mover into a single Tick.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/wandercore/engine/dialogue"
	"github.com/nathoo/wandercore/engine/effects"
	"github.com/nathoo/wandercore/engine/flagkey"
	"github.com/nathoo/wandercore/engine/npc"
	"github.com/nathoo/wandercore/engine/registry"
	"github.com/nathoo/wandercore/engine/save"
	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/engine/zones"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// Outcome is the session's terminal condition, if any.
type Outcome int

const (
	Playing Outcome = iota
	TrueEnding
	TimeUp
)

func (o Outcome) String() string {
	names := [...]string{"playing", "true_ending", "time_up"}
	if int(o) < len(names) {
		return names[o]
	}
	return "unknown"
}

// Deps are the world-facing collaborators supplied by a frontend.
// Audio and Music may be nil for silent runs.
type Deps struct {
	Audio world.Audio
	Music world.Music
	Input world.Input
	Warnf func(format string, args ...any)
}

// Engine holds the immutable definitions and the live session.
type Engine struct {
	Defs   *types.Defs
	State  *state.State
	Runner *dialogue.Runner
	Mover  *npc.Mover

	deps  Deps
	level *types.LevelDef
	scene world.Scene
	items []*registry.Interactable
	eval  *zones.Evaluator
	rt    *registry.Runtime

	player   types.Point
	facing   types.Point // unit look direction
	lastGood types.Point
	selected *registry.Interactable
	outcome  Outcome
}

// New creates an engine from loaded definitions.
func New(defs *types.Defs, deps Deps) *Engine {
	if deps.Warnf == nil {
		deps.Warnf = func(string, ...any) {}
	}
	cfg := dialogue.Config{
		TypeIntervalMs:  defs.Game.TypeIntervalMs,
		InputCooldownMs: defs.Game.InputCooldownMs,
	}
	return &Engine{
		Defs:   defs,
		State:  state.New(),
		Runner: dialogue.NewRunner(cfg),
		deps:   deps,
		facing: types.Point{Y: 1},
	}
}

// Level returns the active level definition, or nil before EnterLevel.
func (e *Engine) Level() *types.LevelDef { return e.level }

// Player returns the player position.
func (e *Engine) Player() types.Point { return e.player }

// Selected returns the currently targeted interactable, or nil.
func (e *Engine) Selected() *registry.Interactable { return e.selected }

// Interactables returns the active level's interaction entries.
func (e *Engine) Interactables() []*registry.Interactable { return e.items }

// Scene returns the bound scene, or nil before EnterLevel.
func (e *Engine) Scene() world.Scene { return e.scene }

// Outcome returns the session's terminal condition.
func (e *Engine) Outcome() Outcome { return e.outcome }

// EnterLevel binds the engine to a level and its scene: it rebuilds the
// interactable registry and trigger zones, then replays every persisted
// override so the level looks exactly as the player left it.
func (e *Engine) EnterLevel(id string, scene world.Scene) error {
	level, ok := e.Defs.Levels[id]
	if !ok {
		return fmt.Errorf("unknown level %q", id)
	}
	if e.eval != nil {
		e.eval.Stop()
	}
	e.Runner.Stop()

	e.level = level
	e.scene = scene
	e.Mover = npc.New(scene, e.deps.Warnf)
	e.rt = &registry.Runtime{
		State:  e.State,
		Runner: e.Runner,
		Env: effects.Env{
			State: e.State,
			Scene: scene,
			Audio: e.deps.Audio,
			Music: e.deps.Music,
			Mover: e.Mover,
			Level: level,
			Warnf: e.deps.Warnf,
		},
		Mover:      e.Mover,
		Companions: e.Defs.Game.Companions,
		Warnf:      e.deps.Warnf,
	}
	e.items = registry.Build(level, e.rt)
	e.eval = zones.New(e.items, scene, e.deps.Audio, e.deps.Music, e.deps.Warnf)
	e.selected = nil

	if spawn, ok := level.Points["spawn"]; ok {
		e.player = spawn
	}
	e.lastGood = e.player

	e.replay()
	return nil
}

// replay re-applies the persisted world overrides for the active level:
// hidden layers, removed colliders and tiles, NPC poses, and the music
// override. Only recorded outcomes are replayed, never the effects that
// produced them.
func (e *Engine) replay() {
	s := e.State
	sceneID := e.level.ID

	for _, name := range state.HiddenLayersFor(s, sceneID) {
		if l, ok := e.scene.Layer(name); ok {
			l.SetVisible(false)
		} else {
			e.deps.Warnf("persisted hidden layer %q missing in %q", name, sceneID)
		}
	}

	for cid := range state.FlagsWithPrefix(s, flagkey.Prefix(flagkey.Collider, sceneID)) {
		if c, ok := e.scene.Collider(cid); ok {
			c.Destroy()
		}
	}

	for suffix := range state.FlagsWithPrefix(s, flagkey.Prefix(flagkey.Tile, sceneID)) {
		// Suffix is "<object>|<col>,<row>"; the cell is the last part.
		parts := strings.Split(suffix, "|")
		if col, row, ok := parseCell(parts[len(parts)-1]); ok {
			e.scene.RemoveTile(col, row)
		}
	}

	for nid, v := range state.FlagsWithPrefix(s, flagkey.Prefix(flagkey.NpcPos, sceneID)) {
		pos, ok := parsePoint(v)
		if !ok {
			continue
		}
		if h, ok := e.scene.NPC(nid); ok {
			h.SetPos(pos)
		}
	}
	for nid, v := range state.FlagsWithPrefix(s, flagkey.Prefix(flagkey.NpcFlip, sceneID)) {
		flipped, _ := v.(bool)
		if h, ok := e.scene.NPC(nid); ok {
			h.SetFlip(flipped)
		}
	}

	if e.deps.Music != nil {
		track := e.level.Music
		if ov := state.FlagStr(s, flagkey.New(flagkey.Music, sceneID, "override").String()); ov != "" {
			track = ov
		}
		if track != "" && track != e.deps.Music.Current() {
			e.deps.Music.Switch(track)
		}
	}
}

// MovePlayer shifts the player by (dx, dy) and updates the look
// direction from the dominant movement. Ignored while dialogue holds
// the world lock.
func (e *Engine) MovePlayer(dx, dy float64) {
	if e.Runner.WorldLocked() || e.outcome != Playing {
		return
	}
	if dx == 0 && dy == 0 {
		return
	}
	e.player.X += dx
	e.player.Y += dy
	d := math.Hypot(dx, dy)
	e.facing = types.Point{X: dx / d, Y: dy / d}
}

// SetPlayer teleports the player, also resetting the deny rewind point.
func (e *Engine) SetPlayer(p types.Point) {
	e.player = p
	e.lastGood = p
}

// Tick advances one frame: dialogue timers, the session clock, NPC
// routes, input dispatch, trigger zones, and target selection, in that
// order. The session clock pauses while dialogue is active.
func (e *Engine) Tick(dtMs int) {
	if e.level == nil || e.outcome != Playing {
		return
	}

	if e.deps.Music != nil {
		e.deps.Music.Tick(dtMs)
	}
	e.Runner.Tick(dtMs)
	if !e.Runner.Active() {
		state.AddRealTime(e.State, int64(dtMs))
	}
	e.Mover.Tick(dtMs)
	e.dispatchInput()

	if e.Runner.WorldLocked() {
		// Membership is frozen during dialogue, but in-flight fades
		// keep ramping.
		e.eval.TickFades(dtMs)
	} else {
		corrected, denied := e.eval.Tick(dtMs, e.player, e.lastGood)
		if denied {
			e.player = corrected
		} else {
			e.lastGood = e.player
		}
	}

	e.selected = e.selectTarget()

	if state.TimeUp(e.State, e.Defs.Game.TimeLimitMs) {
		e.outcome = TimeUp
	} else if state.TrueEnding(e.State, e.Defs.Game.HelpGoal) {
		e.outcome = TrueEnding
	}
}

// dispatchInput routes the frame's key edges: to the dialogue runner
// while a script runs, to the selected interactable otherwise.
func (e *Engine) dispatchInput() {
	in := e.deps.Input
	if in == nil {
		return
	}
	if e.Runner.Active() {
		switch {
		case in.JustPressed(world.ActCancel):
			e.Runner.Stop()
		case in.JustPressed(world.ActUp):
			e.Runner.Up()
		case in.JustPressed(world.ActDown):
			e.Runner.Down()
		case in.JustPressed(world.ActConfirm):
			e.Runner.Confirm()
		}
		return
	}
	if e.Runner.WorldLocked() {
		return
	}
	if in.JustPressed(world.ActConfirm) && e.selected != nil {
		e.selected.Action()
	}
}

// selectTarget picks the interactable the confirm key would fire:
// the nearest enabled selectable entry within touch range, or failing
// that the nearest one the player is looking at within look range.
func (e *Engine) selectTarget() *registry.Interactable {
	var touch, look *registry.Interactable
	touchDist, lookDist := math.MaxFloat64, math.MaxFloat64

	for _, it := range e.items {
		if !it.Selectable || !it.Enabled() {
			continue
		}
		dx := it.Center.X - e.player.X
		dy := it.Center.Y - e.player.Y
		d := math.Hypot(dx, dy)

		if d <= it.MaxDist && d < touchDist {
			touch, touchDist = it, d
		}
		if d <= it.LookMaxDist && d > 0 && d < lookDist {
			dot := (dx*e.facing.X + dy*e.facing.Y) / d
			if dot >= it.LookMinDot {
				look, lookDist = it, d
			}
		}
	}
	if touch != nil {
		return touch
	}
	return look
}

// Snapshot captures the session for saving.
func (e *Engine) Snapshot() *save.Data {
	levelID := ""
	if e.level != nil {
		levelID = e.level.ID
	}
	return save.Snapshot(e.Defs.Game.Title, levelID, e.player, e.State)
}

// Restore replaces the session from a snapshot. The caller supplies the
// scene for the snapshot's level; EnterLevel then replays the persisted
// overrides against it.
func (e *Engine) Restore(d *save.Data, scene world.Scene) error {
	if d.State == nil {
		return fmt.Errorf("snapshot has no state")
	}
	save.Normalize(d.State)
	e.State = d.State
	e.outcome = Playing
	if err := e.EnterLevel(d.Level, scene); err != nil {
		return err
	}
	e.SetPlayer(d.Player)
	return nil
}

func parseCell(s string) (col, row int, ok bool) {
	cs, rs, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, false
	}
	col, err1 := strconv.Atoi(strings.TrimSpace(cs))
	row, err2 := strconv.Atoi(strings.TrimSpace(rs))
	return col, row, err1 == nil && err2 == nil
}

func parsePoint(v any) (types.Point, bool) {
	s, ok := v.(string)
	if !ok {
		return types.Point{}, false
	}
	xs, ys, found := strings.Cut(s, ",")
	if !found {
		return types.Point{}, false
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	return types.Point{X: x, Y: y}, true
}
