// Package types defines the shared data structures for the WanderCore engine.
// This package contains only data types and small geometry helpers.
package types

// Point is a position in level coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in level coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Center returns the center point of the rectangle. Degenerate zero-size
// rectangles are treated as points.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// ObjectDef is a named object from a level's interaction layer.
// Props holds the raw property bag exactly as authored: either a keyed
// map or an array of {name, value} pairs. engine/props normalizes it.
type ObjectDef struct {
	Name   string
	Bounds Rect
	Props  any
}

// NPCDef is the authored placement of a scripted NPC.
type NPCDef struct {
	ID    string
	Start Point
	Speed float64
}

// LevelDef is one authored level document.
type LevelDef struct {
	ID      string
	Music   string
	Layers  []string
	Points  map[string]Point
	NPCs    map[string]NPCDef
	Objects []ObjectDef
}

// GameDef holds game metadata and session configuration from Lua.
type GameDef struct {
	Title           string
	Author          string
	Version         string
	Start           string // starting level ID
	HelpGoal        int    // help score required for the true ending
	TimeLimitMs     int64  // 0 = no global time limit
	TypeIntervalMs  int    // dialogue character reveal interval
	InputCooldownMs int    // gate between accepted dialogue inputs
	Companions      []string
}

// Defs holds all immutable definitions loaded from Lua.
type Defs struct {
	Game   GameDef
	Levels map[string]*LevelDef
}

// StepKind tags a dialogue step.
type StepKind int

const (
	StepSay StepKind = iota
	StepPause
	StepChoice
	StepAction
	StepEnd
)

func (k StepKind) String() string {
	names := [...]string{"say", "pause", "choice", "action", "end"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ChoiceOption is one selectable branch of a choice step. Next is an
// absolute step index within the same script; a negative Next means
// "advance to the following step".
type ChoiceOption struct {
	Text     string
	Next     int
	OnSelect func()
}

// DialogueStep is one step of a dialogue script, tagged by Kind.
// Only the fields relevant to the kind are populated.
type DialogueStep struct {
	Kind    StepKind
	Speaker string
	Text    string         // say text, or the choice prompt
	PauseMs int            // pause duration
	Options []ChoiceOption // choice options
	Run     func()         // action callback
}

// Facing is a cardinal walk direction selected from movement.
type Facing int

const (
	FaceDown Facing = iota
	FaceUp
	FaceLeft
	FaceRight
)

func (f Facing) String() string {
	names := [...]string{"down", "up", "left", "right"}
	if int(f) < len(names) {
		return names[f]
	}
	return "down"
}
