// Package tui is the interactive terminal frontend: a Bubble Tea
// program that renders the level as a character grid, drives the engine
// on a fixed tick, and overlays the dialogue box.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/wandercore/engine"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// frameMs is the fixed tick duration.
const frameMs = 33

// moveStep is how far one held movement key moves the player per frame.
const moveStep = 4.0

// keyMap defines the TUI bindings.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "w")),
		Down:    key.NewBinding(key.WithKeys("down", "s")),
		Left:    key.NewBinding(key.WithKeys("left", "a")),
		Right:   key.NewBinding(key.WithKeys("right", "d")),
		Confirm: key.NewBinding(key.WithKeys("enter", " ")),
		Cancel:  key.NewBinding(key.WithKeys("esc")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q")),
	}
}

// tickMsg drives one engine frame.
type tickMsg time.Time

// Model is the Bubble Tea model for the WanderCore TUI.
type Model struct {
	eng   *engine.Engine
	defs  *types.Defs
	input *world.MemInput
	keys  keyMap

	width    int
	height   int
	quitting bool
}

// New creates a TUI model wired to the given engine and its input port.
func New(eng *engine.Engine, defs *types.Defs, input *world.MemInput) Model {
	return Model{
		eng:   eng,
		defs:  defs,
		input: input,
		keys:  defaultKeyMap(),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *types.Defs, input *world.MemInput) error {
	p := tea.NewProgram(New(eng, defs, input), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init schedules the first frame.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameMs*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses, resizes, and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.eng.Runner.Active() {
				m.input.Press(world.ActUp)
			} else {
				m.eng.MovePlayer(0, -moveStep)
			}
		case key.Matches(msg, m.keys.Down):
			if m.eng.Runner.Active() {
				m.input.Press(world.ActDown)
			} else {
				m.eng.MovePlayer(0, moveStep)
			}
		case key.Matches(msg, m.keys.Left):
			m.eng.MovePlayer(-moveStep, 0)
		case key.Matches(msg, m.keys.Right):
			m.eng.MovePlayer(moveStep, 0)
		case key.Matches(msg, m.keys.Confirm):
			m.input.Press(world.ActConfirm)
		case key.Matches(msg, m.keys.Cancel):
			m.input.Press(world.ActCancel)
		}
		return m, nil

	case tickMsg:
		m.eng.Tick(frameMs)
		m.input.EndFrame()
		return m, tick()
	}
	return m, nil
}
