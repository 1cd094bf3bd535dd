// Package npc advances scripted characters along ordered waypoint routes.
package npc

import (
	"math"

	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// DefaultTolerance is the arrival tolerance used when none is configured.
const DefaultTolerance = 2.0

type route struct {
	points []types.Point
	idx    int
	speed  float64 // units per second
	tol    float64
}

// Mover tracks every NPC currently moving along a route.
type Mover struct {
	scene  world.Scene
	active map[string]*route
	warnf  func(format string, args ...any)
}

// New creates a mover bound to a scene. warnf may be nil.
func New(scene world.Scene, warnf func(format string, args ...any)) *Mover {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Mover{scene: scene, active: map[string]*route{}, warnf: warnf}
}

// Start begins moving the NPC along the given waypoints. A zero speed
// falls back to a slow walk; a zero tolerance uses DefaultTolerance.
// Starting an already-moving NPC replaces its route.
func (m *Mover) Start(id string, points []types.Point, speed, tolerance float64) {
	if len(points) == 0 {
		return
	}
	if _, ok := m.scene.NPC(id); !ok {
		m.warnf("npc %q not registered in scene %q, ignoring move", id, m.scene.ID())
		return
	}
	if speed <= 0 {
		speed = 30
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	m.active[id] = &route{points: points, speed: speed, tol: tolerance}
}

// Stop cancels movement for an NPC, zeroing its velocity.
func (m *Mover) Stop(id string) {
	if _, ok := m.active[id]; !ok {
		return
	}
	if h, ok := m.scene.NPC(id); ok {
		h.SetVelocity(0, 0)
	}
	delete(m.active, id)
}

// Moving reports whether the NPC is mid-route. Interactions bound to a
// moving NPC report themselves disabled while this is true.
func (m *Mover) Moving(id string) bool {
	_, ok := m.active[id]
	return ok
}

// Tick advances every active route by dtMs milliseconds. An NPC within
// tolerance of its current target snaps exactly onto it; when the final
// waypoint is reached the route is cleared on the same tick, so the NPC
// is interactable again without waiting a frame.
func (m *Mover) Tick(dtMs int) {
	step := float64(dtMs) / 1000.0
	for id, r := range m.active {
		h, ok := m.scene.NPC(id)
		if !ok {
			m.warnf("npc %q vanished mid-route", id)
			delete(m.active, id)
			continue
		}

		pos := h.Pos()
		target := r.points[r.idx]
		dx := target.X - pos.X
		dy := target.Y - pos.Y
		dist := math.Hypot(dx, dy)

		if dist <= r.tol {
			h.SetPos(target)
			r.idx++
			if r.idx >= len(r.points) {
				h.SetVelocity(0, 0)
				h.SetAnim("idle_" + facing(dx, dy).String())
				delete(m.active, id)
				continue
			}
			pos = target
			target = r.points[r.idx]
			dx = target.X - pos.X
			dy = target.Y - pos.Y
			dist = math.Hypot(dx, dy)
			if dist == 0 {
				continue
			}
		}

		// Don't overshoot the target this tick. Snapping onto the final
		// waypoint clears the route right away, same as the tolerance
		// branch above.
		travel := r.speed * step
		if travel >= dist {
			h.SetPos(target)
			r.idx++
			if r.idx >= len(r.points) {
				h.SetVelocity(0, 0)
				h.SetAnim("idle_" + facing(dx, dy).String())
				delete(m.active, id)
				continue
			}
		} else {
			h.SetVelocity(dx/dist*r.speed, dy/dist*r.speed)
			h.SetPos(types.Point{X: pos.X + dx/dist*travel, Y: pos.Y + dy/dist*travel})
		}
		f := facing(dx, dy)
		h.SetAnim("walk_" + f.String())
		h.SetFlip(f == types.FaceLeft)
	}
}

// facing selects a walk direction from the dominant movement axis.
func facing(dx, dy float64) types.Facing {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return types.FaceLeft
		}
		return types.FaceRight
	}
	if dy < 0 {
		return types.FaceUp
	}
	return types.FaceDown
}
