package engine

import (
	"testing"

	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// meadowDefs builds a small single-level game used across these tests.
func meadowDefs() *types.Defs {
	return &types.Defs{
		Game: types.GameDef{
			Title:           "Wander",
			Start:           "meadow",
			HelpGoal:        100,
			TypeIntervalMs:  1,
			InputCooldownMs: 1,
			Companions:      []string{"mira"},
		},
		Levels: map[string]*types.LevelDef{
			"meadow": {
				ID:     "meadow",
				Music:  "theme_meadow",
				Layers: []string{"ground", "brambles"},
				Points: map[string]types.Point{
					"spawn":     {X: 50, Y: 50},
					"cave_door": {X: 120, Y: 40},
				},
				NPCs: map[string]types.NPCDef{
					"old_man": {ID: "old_man", Start: types.Point{X: 80, Y: 50}},
				},
				Objects: []types.ObjectDef{
					{Bounds: types.Rect{X: 58, Y: 48, W: 4, H: 4}, Props: map[string]any{
						"id":       "well",
						"prompt":   "Draw water",
						"dialogue": "Cool and clear.",
						"giveonce": "water",
						"hide":     "brambles",
						"removecollider": "boulder",
						"npcmoveto":      "old_man@cave_door",
						"music":          "theme_dusk",
						"musicpersist":   "true",
						"helpscoreonce":  "20",
					}},
					{Bounds: types.Rect{X: 0, Y: 0, W: 20, H: 20}, Props: map[string]any{
						"id":   "deep_water",
						"deny": "true",
					}},
				},
			},
		},
	}
}

// meadowScene builds a fresh scene matching the level, as a frontend
// would after loading its map.
func meadowScene() *world.MemScene {
	sc := world.NewMemScene("meadow")
	sc.AddLayer("ground")
	sc.AddLayer("brambles")
	sc.AddCollider("boulder")
	sc.AddNPC("old_man", types.Point{X: 80, Y: 50})
	return sc
}

type harness struct {
	eng   *Engine
	scene *world.MemScene
	music *world.MemMusic
	input *world.MemInput
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		scene: meadowScene(),
		music: &world.MemMusic{},
		input: world.NewMemInput(),
	}
	h.eng = New(meadowDefs(), Deps{
		Audio: world.NewMemAudio(),
		Music: h.music,
		Input: h.input,
	})
	if err := h.eng.EnterLevel("meadow", h.scene); err != nil {
		t.Fatalf("enter level: %v", err)
	}
	return h
}

// press feeds one key edge through a frame.
func (h *harness) press(action string) {
	h.input.Press(action)
	h.eng.Tick(16)
	h.input.EndFrame()
}

// finishDialogue confirms through the running script.
func (h *harness) finishDialogue(t *testing.T) {
	t.Helper()
	for i := 0; i < 50 && h.eng.Runner.Active(); i++ {
		h.eng.Tick(1000) // reveal text
		h.press(world.ActConfirm)
	}
	if h.eng.Runner.Active() {
		t.Fatal("dialogue never completed")
	}
	h.eng.Tick(1000) // release the post-dialogue world lock
}

func TestEnterLevel_UnknownLevelErrors(t *testing.T) {
	eng := New(meadowDefs(), Deps{})
	if err := eng.EnterLevel("void", world.NewMemScene("void")); err == nil {
		t.Error("unknown level must error")
	}
}

func TestEnterLevel_SpawnAndMusic(t *testing.T) {
	h := newHarness(t)
	if p := h.eng.Player(); p.X != 50 || p.Y != 50 {
		t.Errorf("expected spawn point, got %v", p)
	}
	if h.music.Track != "theme_meadow" {
		t.Errorf("expected level music, got %q", h.music.Track)
	}
}

func TestSelection_NearestEnabledWithinRange(t *testing.T) {
	h := newHarness(t)

	h.eng.Tick(16)
	if sel := h.eng.Selected(); sel == nil || sel.ID != "well" {
		t.Fatalf("expected the well selected at spawn, got %v", sel)
	}

	h.eng.SetPlayer(types.Point{X: 500, Y: 500})
	h.eng.Tick(16)
	if h.eng.Selected() != nil {
		t.Error("nothing must be selected out of range")
	}
}

func TestConfirm_RunsSelectedInteraction(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16) // establish selection

	h.press(world.ActConfirm)
	if !h.eng.Runner.Active() {
		t.Fatal("confirm near the well must start its dialogue")
	}
	h.finishDialogue(t)

	if !state.HasItem(h.eng.State, "water") {
		t.Error("completing the dialogue must apply its effects")
	}
	if h.scene.Layers["brambles"].Visible {
		t.Error("hide effect must conceal the layer")
	}
	if _, ok := h.scene.Collider("boulder"); ok {
		t.Error("removecollider effect must destroy the collider")
	}
	if h.music.Track != "theme_dusk" {
		t.Errorf("music effect must switch the track, got %q", h.music.Track)
	}
}

func TestClock_PausesWhileDialogueActive(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16)
	before := h.eng.State.RealTimeMs

	h.press(world.ActConfirm) // start dialogue
	h.eng.Tick(5000)
	if h.eng.State.RealTimeMs != before+16 {
		t.Errorf("clock must pause during dialogue, got %d", h.eng.State.RealTimeMs)
	}
	h.finishDialogue(t)
	h.eng.Tick(100)
	if h.eng.State.RealTimeMs <= before+16 {
		t.Error("clock must resume after dialogue")
	}
}

func TestMovement_LockedDuringDialogue(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16)
	h.press(world.ActConfirm)

	p := h.eng.Player()
	h.eng.MovePlayer(10, 0)
	if h.eng.Player() != p {
		t.Error("movement must be ignored while dialogue runs")
	}
}

func TestZoneAmbience_FadeContinuesDuringDialogue(t *testing.T) {
	defs := meadowDefs()
	defs.Levels["meadow"].Objects = append(defs.Levels["meadow"].Objects, types.ObjectDef{
		Bounds: types.Rect{X: 40, Y: 40, W: 20, H: 20},
		Props: map[string]any{
			"id":        "reeds",
			"zonesound": "pond_loop",
		},
	})
	audio := world.NewMemAudio("pond_loop")
	input := world.NewMemInput()
	eng := New(defs, Deps{Audio: audio, Music: &world.MemMusic{}, Input: input})
	if err := eng.EnterLevel("meadow", meadowScene()); err != nil {
		t.Fatal(err)
	}

	eng.Tick(16) // spawn is inside the reeds, ambience starts fading in
	if len(audio.Created) != 1 {
		t.Fatalf("expected the ambience sound, got %d", len(audio.Created))
	}
	snd := audio.Created[0]

	input.Press(world.ActConfirm) // the well dialogue locks the world
	eng.Tick(16)
	input.EndFrame()
	if !eng.Runner.Active() {
		t.Fatal("expected the well dialogue running")
	}

	before := snd.Volume
	eng.Tick(400)
	if snd.Volume <= before {
		t.Errorf("ambience fade must keep ramping during dialogue, stuck at %v", snd.Volume)
	}
}

func TestDenyZone_CorrectsPlayerPosition(t *testing.T) {
	h := newHarness(t)

	h.eng.SetPlayer(types.Point{X: 25, Y: 10}) // outside, near the pond
	h.eng.Tick(16)
	h.eng.MovePlayer(-20, 0) // step into the deny zone
	h.eng.Tick(16)

	if p := h.eng.Player(); p.X != 25 || p.Y != 10 {
		t.Errorf("deny rewind must restore the last good position, got %v", p)
	}
}

func TestOutcome_TrueEndingOnHelpGoal(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16)
	if h.eng.Outcome() != Playing {
		t.Fatal("must start playing")
	}

	state.AddHelpScore(h.eng.State, 100)
	h.eng.Tick(16)
	if h.eng.Outcome() != TrueEnding {
		t.Errorf("expected true ending at help goal, got %v", h.eng.Outcome())
	}
}

func TestOutcome_TimeUp(t *testing.T) {
	defs := meadowDefs()
	defs.Game.TimeLimitMs = 1000
	defs.Game.HelpGoal = 0
	eng := New(defs, Deps{})
	if err := eng.EnterLevel("meadow", meadowScene()); err != nil {
		t.Fatal(err)
	}
	eng.Tick(999)
	if eng.Outcome() != Playing {
		t.Fatal("must still be playing before the limit")
	}
	eng.Tick(2)
	if eng.Outcome() != TimeUp {
		t.Errorf("expected time up, got %v", eng.Outcome())
	}
}

func TestReentry_ReplaysPersistedOverrides(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16)
	h.press(world.ActConfirm)
	h.finishDialogue(t)

	// Walk the NPC route to completion so the pose is both persisted
	// and visible.
	for i := 0; i < 100; i++ {
		h.eng.Tick(100)
	}

	// Fresh scene, as if the player left and came back.
	fresh := meadowScene()
	if err := h.eng.EnterLevel("meadow", fresh); err != nil {
		t.Fatalf("re-enter: %v", err)
	}

	if fresh.Layers["brambles"].Visible {
		t.Error("hidden layer must be replayed on re-entry")
	}
	if _, ok := fresh.Collider("boulder"); ok {
		t.Error("collider removal must be replayed on re-entry")
	}
	npc := fresh.NPCs["old_man"]
	if npc.Position.X != 120 || npc.Position.Y != 40 {
		t.Errorf("npc pose must be replayed, got %v", npc.Position)
	}
	if h.music.Track != "theme_dusk" {
		t.Errorf("music override must survive re-entry, got %q", h.music.Track)
	}

	// The once-guarded families must not fire again.
	h.eng.Tick(16)
	h.press(world.ActConfirm)
	h.finishDialogue(t)
	if state.ItemCount(h.eng.State, "water") != 1 {
		t.Errorf("giveonce must hold across re-entry, got %d", state.ItemCount(h.eng.State, "water"))
	}
	if h.eng.State.HelpScore != 20 {
		t.Errorf("helpscoreonce must hold across re-entry, got %d", h.eng.State.HelpScore)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	h := newHarness(t)
	h.eng.Tick(16)
	h.press(world.ActConfirm)
	h.finishDialogue(t)
	h.eng.SetPlayer(types.Point{X: 70, Y: 30})

	d := h.eng.Snapshot()

	fresh := meadowScene()
	restored := New(meadowDefs(), Deps{Music: &world.MemMusic{}})
	if err := restored.Restore(d, fresh); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if p := restored.Player(); p.X != 70 || p.Y != 30 {
		t.Errorf("player position lost, got %v", p)
	}
	if !state.HasItem(restored.State, "water") {
		t.Error("inventory lost across restore")
	}
	if fresh.Layers["brambles"].Visible {
		t.Error("restored session must replay world overrides")
	}
}
