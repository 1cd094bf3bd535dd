package npc

import (
	"testing"

	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

func TestMover_ArrivesExactlyAndClearsSameTick(t *testing.T) {
	sc := world.NewMemScene("meadow")
	h := sc.AddNPC("old_man", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("old_man", []types.Point{{X: 100, Y: 0}}, 50, 2)

	// 50 units/s: 100 units takes 2000ms. Give it margin.
	for i := 0; i < 300; i++ {
		m.Tick(16)
		if !m.Moving("old_man") {
			break
		}
	}

	if m.Moving("old_man") {
		t.Fatal("npc never arrived")
	}
	if h.Position.X != 100 || h.Position.Y != 0 {
		t.Errorf("expected exact arrival at (100,0), got (%v,%v)", h.Position.X, h.Position.Y)
	}
	if h.VelX != 0 || h.VelY != 0 {
		t.Errorf("expected zero velocity after arrival, got (%v,%v)", h.VelX, h.VelY)
	}
}

func TestMover_ClearedOnArrivalTick(t *testing.T) {
	sc := world.NewMemScene("meadow")
	sc.AddNPC("pip", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("pip", []types.Point{{X: 1, Y: 0}}, 1000, 2)

	// Target is within tolerance on the very first tick.
	m.Tick(16)
	if m.Moving("pip") {
		t.Error("movement state must clear on the same tick as final arrival")
	}
}

func TestMover_OvershootClearsOnArrivalTick(t *testing.T) {
	sc := world.NewMemScene("meadow")
	h := sc.AddNPC("pip", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("pip", []types.Point{{X: 10, Y: 0}}, 1000, 2)

	// One 16ms tick at 1000 units/s travels 16 units, overshooting the
	// 10-unit leg while starting outside tolerance.
	m.Tick(16)
	if m.Moving("pip") {
		t.Error("movement state must clear on the overshooting arrival tick")
	}
	if h.Position != (types.Point{X: 10, Y: 0}) {
		t.Errorf("expected snap onto the final waypoint, got %v", h.Position)
	}
	if h.VelX != 0 || h.VelY != 0 {
		t.Errorf("expected zero velocity after arrival, got (%v,%v)", h.VelX, h.VelY)
	}
	if h.Anim != "idle_right" {
		t.Errorf("expected idle_right after +X arrival, got %q", h.Anim)
	}
}

func TestMover_WalksWaypointsInOrder(t *testing.T) {
	sc := world.NewMemScene("meadow")
	h := sc.AddNPC("guard", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("guard", []types.Point{{X: 40, Y: 0}, {X: 40, Y: 40}}, 100, 2)

	sawRight := false
	for i := 0; i < 200 && m.Moving("guard"); i++ {
		m.Tick(16)
		if h.Anim == "walk_right" {
			sawRight = true
		}
	}

	if m.Moving("guard") {
		t.Fatal("route never completed")
	}
	if !sawRight {
		t.Error("expected walk_right while moving along +X")
	}
	if h.Position != (types.Point{X: 40, Y: 40}) {
		t.Errorf("expected final point (40,40), got %v", h.Position)
	}
	if h.Anim != "idle_down" {
		t.Errorf("expected idle_down facing after +Y arrival, got %q", h.Anim)
	}
}

func TestMover_FacingFromDominantAxis(t *testing.T) {
	sc := world.NewMemScene("meadow")
	h := sc.AddNPC("cat", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("cat", []types.Point{{X: -100, Y: 10}}, 50, 2)
	m.Tick(16)

	if h.Anim != "walk_left" {
		t.Errorf("expected walk_left for dominant -X movement, got %q", h.Anim)
	}
	if !h.Flipped {
		t.Error("expected flip while walking left")
	}
}

func TestMover_UnknownNpcIgnored(t *testing.T) {
	sc := world.NewMemScene("meadow")
	var warned bool
	m := New(sc, func(string, ...any) { warned = true })

	m.Start("ghost", []types.Point{{X: 5, Y: 5}}, 50, 2)
	if m.Moving("ghost") {
		t.Error("unregistered npc must not start moving")
	}
	if !warned {
		t.Error("expected a warning for unregistered npc")
	}
}

func TestMover_StopZeroesVelocity(t *testing.T) {
	sc := world.NewMemScene("meadow")
	h := sc.AddNPC("guard", types.Point{X: 0, Y: 0})

	m := New(sc, nil)
	m.Start("guard", []types.Point{{X: 100, Y: 0}}, 50, 2)
	m.Tick(100)
	m.Stop("guard")

	if m.Moving("guard") {
		t.Error("expected movement cleared after Stop")
	}
	if h.VelX != 0 || h.VelY != 0 {
		t.Error("expected zero velocity after Stop")
	}
}
