package tui

import (
	"fmt"
	"strings"

	"github.com/nathoo/wandercore/engine"
	"github.com/nathoo/wandercore/engine/dialogue"
)

// cellSize is how many level units one map character covers.
const cellSize = 8.0

// View renders the status bar, the level grid, and the dialogue box.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.eng.Level() == nil {
		return "loading..."
	}

	switch m.eng.Outcome() {
	case engine.TrueEnding:
		return styleEnding.Width(max(m.width, 40)).Render(
			"\nEveryone you met is better off for it.\n\nThe true ending.\n")
	case engine.TimeUp:
		return styleEnding.Width(max(m.width, 40)).Render(
			"\nThe day is over.\n")
	}

	var b strings.Builder
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.grid())

	if m.eng.Runner.Active() {
		b.WriteString("\n")
		b.WriteString(m.dialogueBox())
	} else if sel := m.eng.Selected(); sel != nil && sel.Prompt != "" {
		b.WriteString("\n")
		b.WriteString(stylePromptHint.Render("[enter] " + sel.Prompt))
	}
	return b.String()
}

// statusBar shows the title, level, scores, and elapsed time.
func (m Model) statusBar() string {
	s := m.eng.State
	elapsed := s.RealTimeMs / 1000
	text := fmt.Sprintf(" %s — %s | score %d | helped %d | %d:%02d ",
		m.defs.Game.Title, m.eng.Level().ID, s.Score, s.HelpScore,
		elapsed/60, elapsed%60)
	return styleStatusBar.Render(text)
}

// grid draws the level as characters: @ player, letters for NPCs and
// interactables, shaded cells for zones.
func (m Model) grid() string {
	level := m.eng.Level()

	// Grid extent from the level's content.
	maxX, maxY := 1.0, 1.0
	expand := func(x, y float64) {
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	p := m.eng.Player()
	expand(p.X, p.Y)
	for _, obj := range level.Objects {
		expand(obj.Bounds.X+obj.Bounds.W, obj.Bounds.Y+obj.Bounds.H)
	}
	for _, def := range level.NPCs {
		expand(def.Start.X, def.Start.Y)
	}

	cols := int(maxX/cellSize) + 2
	rows := int(maxY/cellSize) + 2

	cells := make([][]string, rows)
	for r := range cells {
		cells[r] = make([]string, cols)
		for c := range cells[r] {
			cells[r][c] = "."
		}
	}
	put := func(x, y float64, s string) {
		c, r := int(x/cellSize), int(y/cellSize)
		if r >= 0 && r < rows && c >= 0 && c < cols {
			cells[r][c] = s
		}
	}

	for _, it := range m.eng.Interactables() {
		if !it.Enabled() {
			continue
		}
		glyph := styleInteractable.Render(string(initial(it.ID)))
		if it.Auto || it.Deny {
			glyph = styleZone.Render("~")
		}
		put(it.Center.X, it.Center.Y, glyph)
	}
	scene := m.eng.Scene()
	for id, def := range level.NPCs {
		pos := def.Start
		if h, ok := scene.NPC(id); ok {
			pos = h.Pos()
		}
		put(pos.X, pos.Y, styleNpc.Render(string(initial(id))))
	}
	put(p.X, p.Y, stylePlayer.Render("@"))

	var b strings.Builder
	for r := range cells {
		b.WriteString(strings.Join(cells[r], ""))
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// dialogueBox renders the running script: speaker, revealed text, and
// the choice list with its cursor.
func (m Model) dialogueBox() string {
	r := m.eng.Runner

	var b strings.Builder
	if sp := r.Speaker(); sp != "" {
		b.WriteString(styleSpeaker.Render(sp))
		b.WriteString("\n")
	}
	b.WriteString(styleDialogue.Render(r.VisibleText()))

	if r.State() == dialogue.InChoice {
		for i, opt := range r.Options() {
			b.WriteString("\n")
			if i == r.Selected() {
				b.WriteString(styleChoiceCursor.Render("> " + opt.Text))
			} else {
				b.WriteString("  " + opt.Text)
			}
		}
	}

	width := m.width - 4
	if width < 20 {
		width = 40
	}
	return styleDialogueBox.Width(width).Render(b.String())
}

func initial(id string) rune {
	for _, r := range id {
		return r
	}
	return '?'
}
