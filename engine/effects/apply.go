package effects

import (
	"strconv"
	"strings"

	"github.com/nathoo/wandercore/engine/flagkey"
	"github.com/nathoo/wandercore/engine/npc"
	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// EventKind identifies which interaction event an effect set fires on.
type EventKind int

const (
	EventFirst EventKind = iota
	EventRepeat
	EventChoice
	EventPostHelp
)

// Event is the interaction event an effect application belongs to.
// Choice carries the selected option index for EventChoice.
type Event struct {
	Kind   EventKind
	Choice int
}

// SubKey renders the event as a stable key component for once-guards,
// so "+10 once on choice 2" and "+10 once per visit" are guarded
// independently. First and repeat visits share a key: an unprefixed
// "once" score fires on the first visit and never again.
func (e Event) SubKey() string {
	switch e.Kind {
	case EventChoice:
		return "choice" + strconv.Itoa(e.Choice)
	case EventPostHelp:
		return "posthelp"
	default:
		return "visit"
	}
}

// Env bundles the collaborators an application needs. Every field may
// be nil except State; nil collaborators turn the affected effect
// families into logged no-ops.
type Env struct {
	State *state.State
	Scene world.Scene
	Audio world.Audio
	Music world.Music
	Mover *npc.Mover
	Level *types.LevelDef

	// TrackSound, when set, receives every sound started by an
	// application so a dialogue runner can stop it on cancel.
	TrackSound func(world.Sound)

	Warnf func(format string, args ...any)
}

func (env *Env) warnf(format string, args ...any) {
	if env.Warnf != nil {
		env.Warnf(format, args...)
	}
}

func (env *Env) sceneID() string {
	if env.Level != nil {
		return env.Level.ID
	}
	if env.Scene != nil {
		return env.Scene.ID()
	}
	return ""
}

// Apply applies a compiled effect set for one interaction event. Every
// "once" family is guarded here, not by the caller: invoking Apply N
// times changes state exactly as much as invoking it once. Effects are
// order-independent and individually skippable; a missing layer,
// collider, NPC, or sound key is logged and ignored.
func Apply(env Env, id string, set *Set, ev Event) {
	if set == nil || env.State == nil {
		return
	}
	s := env.State
	scene := env.sceneID()

	for _, d := range set.Give {
		if d.Once && !claim(s, flagkey.New(flagkey.ItemOnce, scene, id, "give", d.Item)) {
			continue
		}
		state.AddItem(s, d.Item, d.Count)
	}
	for _, d := range set.Take {
		if d.Once && !claim(s, flagkey.New(flagkey.ItemOnce, scene, id, "take", d.Item)) {
			continue
		}
		state.TakeItem(s, d.Item, d.Count)
	}

	for _, d := range set.Scores {
		cat := flagkey.ScoreOnce
		if d.Help {
			cat = flagkey.HelpOnce
		}
		if d.Once && !claim(s, flagkey.New(cat, scene, id, ev.SubKey())) {
			continue
		}
		if d.Help {
			state.AddHelpScore(s, d.Amount)
		} else {
			state.AddScore(s, d.Amount)
		}
	}

	for _, name := range set.SetFlags {
		state.SetFlag(s, name, true)
	}
	for _, name := range set.ClearFlags {
		state.ClearFlag(s, name)
	}

	for _, layer := range set.Hide {
		env.setLayerVisible(layer, false)
		state.HideLayer(s, scene, layer)
	}
	for _, layer := range set.Show {
		env.setLayerVisible(layer, true)
		state.ShowLayer(s, scene, layer)
	}

	for _, cid := range set.RemoveColliders {
		key := flagkey.New(flagkey.Collider, scene, cid)
		if state.FlagBool(s, key.String()) {
			continue // already removed on a previous visit
		}
		if env.Scene != nil {
			if c, ok := env.Scene.Collider(cid); ok {
				c.Destroy()
			} else {
				env.warnf("collider %q not found in scene %q", cid, scene)
			}
		}
		state.SetFlag(s, key.String(), true)
	}

	for _, tile := range set.RemoveTiles {
		sub := strconv.Itoa(tile.Col) + "," + strconv.Itoa(tile.Row)
		key := flagkey.New(flagkey.Tile, scene, id, sub)
		if state.FlagBool(s, key.String()) {
			continue
		}
		if env.Scene != nil {
			env.Scene.RemoveTile(tile.Col, tile.Row)
		}
		state.SetFlag(s, key.String(), true)
	}

	for _, ref := range set.Enable {
		target := ref.Scene
		if target == "" {
			target = scene
		}
		state.EnableInteraction(s, target, ref.ID)
	}
	for _, ref := range set.Disable {
		target := ref.Scene
		if target == "" {
			target = scene
		}
		state.DisableInteraction(s, target, ref.ID)
	}

	if set.DisableSelf {
		state.DisableInteraction(s, scene, id)
	}
	if set.MaxUses > 0 && state.InteractionCount(s, scene, id) >= set.MaxUses {
		state.DisableInteraction(s, scene, id)
	}

	for _, nid := range set.NpcFlips {
		env.flipNpc(nid)
	}
	for _, mv := range set.NpcMoves {
		env.moveNpc(mv)
	}

	if set.Music != nil {
		env.switchMusic(id, *set.Music)
	}
	if set.Sfx != nil {
		env.playSfx(id, *set.Sfx)
	}

	if set.MarkHelped {
		state.MarkHelped(s, scene, id)
	}
}

// claim returns true exactly once per key, setting the guard flag.
func claim(s *state.State, key flagkey.Key) bool {
	k := key.String()
	if state.FlagBool(s, k) {
		return false
	}
	state.SetFlag(s, k, true)
	return true
}

func (env *Env) setLayerVisible(name string, visible bool) {
	if env.Scene == nil {
		return
	}
	l, ok := env.Scene.Layer(name)
	if !ok {
		env.warnf("layer %q not found in scene %q", name, env.sceneID())
		return
	}
	l.SetVisible(visible)
}

// flipNpc toggles the NPC's orientation and persists the final value.
func (env *Env) flipNpc(nid string) {
	if env.Scene == nil {
		return
	}
	h, ok := env.Scene.NPC(nid)
	if !ok {
		env.warnf("npc %q not found in scene %q", nid, env.sceneID())
		return
	}
	flipped := !h.Flip()
	h.SetFlip(flipped)
	state.SetFlag(env.State, flagkey.New(flagkey.NpcFlip, env.sceneID(), nid).String(), flipped)
}

// moveNpc starts the waypoint route and immediately persists the final
// waypoint as the NPC's pose, so re-entering the level reconstructs the
// end position without replaying the movement.
func (env *Env) moveNpc(mv NpcMove) {
	if env.Mover == nil {
		return
	}
	pts := make([]types.Point, 0, len(mv.Points))
	for _, name := range mv.Points {
		p, ok := env.resolvePoint(name)
		if !ok {
			env.warnf("point %q not found in level %q", name, env.sceneID())
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return
	}
	env.Mover.Start(mv.NpcID, pts, mv.Speed, 0)

	final := pts[len(pts)-1]
	val := strconv.FormatFloat(final.X, 'f', -1, 64) + "," + strconv.FormatFloat(final.Y, 'f', -1, 64)
	state.SetFlag(env.State, flagkey.New(flagkey.NpcPos, env.sceneID(), mv.NpcID).String(), val)
}

// resolvePoint looks the name up in the level's named points, falling
// back to an "x,y" literal.
func (env *Env) resolvePoint(name string) (types.Point, bool) {
	if env.Level != nil {
		if p, ok := env.Level.Points[name]; ok {
			return p, true
		}
	}
	xs, ys, found := strings.Cut(name, ",")
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

func (env *Env) switchMusic(id string, mc MusicChange) {
	if env.Music == nil {
		return
	}
	if mc.Once && !claim(env.State, flagkey.New(flagkey.MusicOnce, env.sceneID(), id, mc.Key)) {
		return
	}
	env.Music.Switch(mc.Key)
	if mc.Persist {
		state.SetFlag(env.State, flagkey.New(flagkey.Music, env.sceneID(), "override").String(), mc.Key)
	}
}

func (env *Env) playSfx(id string, sp SfxPlay) {
	if env.Audio == nil {
		return
	}
	if sp.Once && !claim(env.State, flagkey.New(flagkey.SfxOnce, env.sceneID(), id, sp.Key)) {
		return
	}
	h, ok := env.Audio.Add(sp.Key, world.SoundOpts{})
	if !ok {
		env.warnf("sound %q not loaded", sp.Key)
		return
	}
	h.Play()
	if env.TrackSound != nil {
		env.TrackSound(h)
	}
}
