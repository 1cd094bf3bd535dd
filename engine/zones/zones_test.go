package zones

import (
	"math"
	"testing"

	"github.com/nathoo/wandercore/engine/dialogue"
	"github.com/nathoo/wandercore/engine/effects"
	"github.com/nathoo/wandercore/engine/npc"
	"github.com/nathoo/wandercore/engine/registry"
	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

type fixture struct {
	level *types.LevelDef
	scene *world.MemScene
	audio *world.MemAudio
	music *world.MemMusic
	rt    *registry.Runtime
	eval  *Evaluator
}

func newFixture(objects ...types.ObjectDef) *fixture {
	f := &fixture{
		audio: world.NewMemAudio("pond_loop", "chime"),
		music: &world.MemMusic{},
	}
	scene := world.NewMemScene("meadow")
	f.scene = scene
	f.level = &types.LevelDef{ID: "meadow", Objects: objects}
	mover := npc.New(scene, nil)
	f.rt = &registry.Runtime{
		State:  state.New(),
		Runner: dialogue.NewRunner(dialogue.Config{TypeIntervalMs: 1, InputCooldownMs: 1, LockCooldownMs: 1}),
		Env: effects.Env{
			Scene: scene,
			Audio: f.audio,
			Music: f.music,
			Mover: mover,
			Level: f.level,
		},
		Mover: mover,
	}
	f.rt.Env.State = f.rt.State
	items := registry.Build(f.level, f.rt)
	f.eval = New(items, scene, f.audio, f.music, nil)
	return f
}

func zoneObj(bounds types.Rect, props map[string]any) types.ObjectDef {
	return types.ObjectDef{Bounds: bounds, Props: props}
}

var square = types.Rect{X: 0, Y: 0, W: 20, H: 20}

func TestAutoZone_FiresOnEntryEdgeOnly(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":   "cave_mouth",
		"auto": "true",
		"give": "echo",
	}))

	outside := types.Point{X: 50, Y: 50}
	inside := types.Point{X: 5, Y: 5}

	f.eval.Tick(16, outside, outside)
	if state.ItemCount(f.rt.State, "echo") != 0 {
		t.Fatal("zone must not fire while outside")
	}

	f.eval.Tick(16, inside, outside)
	f.eval.Tick(16, inside, outside) // still inside: no re-fire
	if got := state.ItemCount(f.rt.State, "echo"); got != 1 {
		t.Fatalf("expected exactly one entry fire, got %d", got)
	}

	f.eval.Tick(16, outside, outside)
	f.eval.Tick(16, inside, outside)
	if got := state.ItemCount(f.rt.State, "echo"); got != 2 {
		t.Errorf("re-entry must fire again, got %d", got)
	}
}

func TestAmbience_FadesInAndDucksMusic(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":        "pond",
		"zonesound": "pond_loop",
		"zonefade":  "400",
		"duckmusic": "true",
	}))

	inside := types.Point{X: 5, Y: 5}
	f.eval.Tick(16, inside, inside)

	if len(f.audio.Created) != 1 {
		t.Fatalf("expected one ambience sound, got %d", len(f.audio.Created))
	}
	snd := f.audio.Created[0]
	if !snd.Playing || !snd.Loop {
		t.Error("ambience must start playing as a loop")
	}
	if snd.Volume != 0 {
		t.Errorf("ambience must start silent, got volume %v", snd.Volume)
	}
	if !f.music.Ducked {
		t.Error("entering a ducking zone must duck the music")
	}

	f.eval.Tick(200, inside, inside)
	if math.Abs(snd.Volume-0.5) > 1e-9 {
		t.Errorf("expected volume 0.5 halfway through the fade, got %v", snd.Volume)
	}
	f.eval.Tick(200, inside, inside)
	if snd.Volume != 1 {
		t.Errorf("expected full volume after the fade, got %v", snd.Volume)
	}
}

func TestAmbience_FadesOutAndStopsOnExit(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":        "pond",
		"zonesound": "pond_loop",
		"zonefade":  "400",
		"duckmusic": "true",
	}))

	inside := types.Point{X: 5, Y: 5}
	outside := types.Point{X: 50, Y: 50}

	f.eval.Tick(16, inside, inside)
	f.eval.Tick(400, inside, inside) // fade in fully
	snd := f.audio.Created[0]

	f.eval.Tick(16, outside, outside)
	if f.music.Ducked {
		t.Error("exiting must restore the music immediately")
	}
	if !snd.Playing {
		t.Fatal("ambience keeps playing through the fade out")
	}
	f.eval.Tick(400, outside, outside)
	if snd.Playing {
		t.Error("ambience must stop once faded out")
	}
	if snd.Volume != 0 {
		t.Errorf("expected silence after fade out, got %v", snd.Volume)
	}
}

func TestZoneLayers_EnterExitRoundTrip(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":       "grove",
		"zonehide": "canopy",
		"zoneshow": "fireflies",
	}))
	canopy := f.scene.AddLayer("canopy")
	fireflies := f.scene.AddLayer("fireflies")
	fireflies.SetVisible(false)

	inside := types.Point{X: 5, Y: 5}
	outside := types.Point{X: 50, Y: 50}

	f.eval.Tick(16, inside, inside)
	if canopy.Visible {
		t.Error("entering must hide the zonehide layer")
	}
	if !fireflies.Visible {
		t.Error("entering must show the zoneshow layer")
	}

	f.eval.Tick(16, inside, inside) // still inside: no flicker
	if canopy.Visible || !fireflies.Visible {
		t.Error("layer state must hold while inside")
	}

	f.eval.Tick(16, outside, outside)
	if !canopy.Visible {
		t.Error("exiting must restore the hidden layer")
	}
	if fireflies.Visible {
		t.Error("exiting must re-hide the shown layer")
	}
}

func TestTickFades_AdvancesRampWithoutEvaluation(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":        "pond",
		"zonesound": "pond_loop",
		"zonefade":  "400",
	}))

	inside := types.Point{X: 5, Y: 5}
	f.eval.Tick(16, inside, inside) // enter, fade starts at 0
	snd := f.audio.Created[0]

	f.eval.TickFades(200)
	if math.Abs(snd.Volume-0.5) > 1e-9 {
		t.Errorf("expected volume 0.5 after ticking fades alone, got %v", snd.Volume)
	}
	f.eval.TickFades(200)
	if snd.Volume != 1 {
		t.Errorf("expected full volume once the ramp completes, got %v", snd.Volume)
	}
}

func TestDeny_RewindRestoresLastGoodPosition(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":   "deep_water",
		"deny": "true",
	}))

	lastGood := types.Point{X: 30, Y: 10}
	pos := types.Point{X: 5, Y: 5}

	corrected, denied := f.eval.Tick(16, pos, lastGood)
	if !denied {
		t.Fatal("expected a deny hit")
	}
	if corrected != lastGood {
		t.Errorf("rewind must restore the last good position, got %v", corrected)
	}
}

func TestDeny_PushPlacesAtConfiguredDistance(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":       "deep_water",
		"deny":     "true",
		"denymode": "push",
		"denypush": "12",
	}))

	// Zone center is (10,10); entering at (13,14) is 5 units out.
	pos := types.Point{X: 13, Y: 14}
	corrected, denied := f.eval.Tick(16, pos, pos)
	if !denied {
		t.Fatal("expected a deny hit")
	}
	d := math.Hypot(corrected.X-10, corrected.Y-10)
	if math.Abs(d-12) > 1e-9 {
		t.Errorf("push must land exactly 12 from center, got %v (%v)", d, corrected)
	}
	// Same direction as the offending position.
	if corrected.X < 13 || corrected.Y < 14 {
		t.Errorf("push must move away from center, got %v", corrected)
	}
}

func TestDeny_FeedbackRespectsCooldown(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":           "thorns",
		"deny":         "true",
		"denycooldown": "500",
		"give":         "scratch",
	}))

	pos := types.Point{X: 5, Y: 5}
	good := types.Point{X: 50, Y: 50}

	f.eval.Tick(16, pos, good)
	f.eval.Tick(16, pos, good)
	f.eval.Tick(16, pos, good)
	if got := state.ItemCount(f.rt.State, "scratch"); got != 1 {
		t.Fatalf("feedback must fire once per cooldown window, got %d", got)
	}

	f.eval.Tick(600, good, good) // cooldown expires while outside
	f.eval.Tick(16, pos, good)
	if got := state.ItemCount(f.rt.State, "scratch"); got != 2 {
		t.Errorf("feedback must fire again after the cooldown, got %d", got)
	}
}

func TestDeny_DisabledZoneIsInert(t *testing.T) {
	f := newFixture(zoneObj(square, map[string]any{
		"id":         "deep_water",
		"deny":       "true",
		"requireall": "flood_season",
	}))

	pos := types.Point{X: 5, Y: 5}
	good := types.Point{X: 50, Y: 50}

	if corrected, denied := f.eval.Tick(16, pos, good); denied || corrected != pos {
		t.Error("a gated-off deny zone must not correct the position")
	}
	state.SetFlag(f.rt.State, "flood_season", true)
	if _, denied := f.eval.Tick(16, pos, good); !denied {
		t.Error("the zone must deny once its gate passes")
	}
}
