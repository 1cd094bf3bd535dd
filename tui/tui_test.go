package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/wandercore/engine"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

func testModel(t *testing.T) Model {
	t.Helper()
	defs := &types.Defs{
		Game: types.GameDef{
			Title:           "Wander",
			Start:           "meadow",
			TypeIntervalMs:  1,
			InputCooldownMs: 1,
		},
		Levels: map[string]*types.LevelDef{
			"meadow": {
				ID:     "meadow",
				Layers: []string{"ground"},
				Points: map[string]types.Point{"spawn": {X: 50, Y: 50}},
				NPCs: map[string]types.NPCDef{
					"old_man": {ID: "old_man", Start: types.Point{X: 80, Y: 50}},
				},
				Objects: []types.ObjectDef{
					{Bounds: types.Rect{X: 58, Y: 48, W: 4, H: 4}, Props: map[string]any{
						"id":       "well",
						"prompt":   "Draw water",
						"speaker":  "well",
						"dialogue": "Cool and clear.",
					}},
				},
			},
		},
	}
	input := world.NewMemInput()
	eng := engine.New(defs, engine.Deps{Input: input})
	if err := eng.EnterLevel("meadow", world.SceneFromLevel(defs.Levels["meadow"])); err != nil {
		t.Fatal(err)
	}
	return New(eng, defs, input)
}

func frame(m Model) Model {
	next, _ := m.Update(tickMsg(time.Now()))
	return next.(Model)
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestUpdate_TickAdvancesEngineClock(t *testing.T) {
	m := testModel(t)
	before := m.eng.State.RealTimeMs
	m = frame(m)
	if m.eng.State.RealTimeMs != before+frameMs {
		t.Errorf("expected clock +%d, got %d", frameMs, m.eng.State.RealTimeMs)
	}
}

func TestUpdate_MovementKeys(t *testing.T) {
	m := testModel(t)
	m = frame(m)

	m = press(m, "d")
	if p := m.eng.Player(); p.X != 50+moveStep {
		t.Errorf("expected move right, got %v", p)
	}
	m = press(m, "up")
	if p := m.eng.Player(); p.Y != 50-moveStep {
		t.Errorf("expected move up, got %v", p)
	}
}

func TestUpdate_ConfirmStartsDialogueAndArrowsRoute(t *testing.T) {
	m := testModel(t)
	m = frame(m) // selection pass

	m = press(m, "enter")
	m = frame(m) // input dispatch
	if !m.eng.Runner.Active() {
		t.Fatal("confirm near the well must start dialogue")
	}

	// While the dialogue runs, vertical keys go to the runner, not the
	// player.
	p := m.eng.Player()
	m = press(m, "down")
	m = frame(m)
	if m.eng.Player() != p {
		t.Error("player must not move during dialogue")
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected the quitting flag set")
	}
}

func TestView_GridAndStatus(t *testing.T) {
	m := testModel(t)
	m.width = 80
	m = frame(m)

	out := m.View()
	if !strings.Contains(out, "@") {
		t.Error("expected the player glyph")
	}
	if !strings.Contains(out, "Wander") || !strings.Contains(out, "meadow") {
		t.Errorf("expected the status bar, got %q", out)
	}
	if !strings.Contains(out, "[enter] Draw water") {
		t.Errorf("expected the prompt hint, got %q", out)
	}
}

func TestView_DialogueBox(t *testing.T) {
	m := testModel(t)
	m.width = 80
	m = frame(m)
	m = press(m, "enter")
	m = frame(m)

	// Let the typing animation finish.
	for i := 0; i < 30; i++ {
		m = frame(m)
	}
	out := m.View()
	if !strings.Contains(out, "well") || !strings.Contains(out, "Cool and clear.") {
		t.Errorf("expected the dialogue box, got %q", out)
	}
}
