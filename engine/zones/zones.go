// Package zones evaluates trigger regions against the player position
// each tick: auto-firing interactions on entry, looping zone ambience
// with volume fades and music ducking, transient layer visibility
// swaps reversed on exit, and deny regions that correct the player's
// position.
package zones

import (
	"math"

	"github.com/nathoo/wandercore/engine/registry"
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// Defaults, overridable per zone through object properties.
const (
	DefaultFadeMs         = 800
	DefaultDenyPush       = 8.0
	DefaultDenyCooldownMs = 1000
)

type fadeDir int

const (
	fadeNone fadeDir = iota
	fadeIn
	fadeOut
)

type zone struct {
	it *registry.Interactable

	soundKey string
	volume   float64
	fadeMs   int
	duck     bool
	hide     []string // layers hidden on entry, shown again on exit
	show     []string // layers shown on entry, hidden again on exit

	denyMode   string // "rewind" or "push"
	denyPush   float64
	denyCdMs   int
	cooldownMs int // remaining deny feedback cooldown

	inside bool
	sound  world.Sound
	fade   fadeDir
	fadeAt int // elapsed ms of the current fade
}

// Evaluator drives every zone of a level. Rebuilt on level entry
// together with the interactable list.
type Evaluator struct {
	zones []*zone
	scene world.Scene
	audio world.Audio
	music world.Music
	warnf func(format string, args ...any)
}

// New collects the zones from an interactable list: entries flagged
// auto or deny, plus any entry carrying zone ambience or layer swaps.
func New(items []*registry.Interactable, scene world.Scene, audio world.Audio, music world.Music, warnf func(format string, args ...any)) *Evaluator {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	e := &Evaluator{scene: scene, audio: audio, music: music, warnf: warnf}

	for _, it := range items {
		tbl := it.Props
		if !it.Auto && !it.Deny && !tbl.Has("zonesound") &&
			!tbl.Has("zonehide") && !tbl.Has("zoneshow") {
			continue
		}
		z := &zone{
			it:       it,
			soundKey: tbl.Str("zonesound"),
			volume:   1,
			fadeMs:   DefaultFadeMs,
			duck:     tbl.Bool("duckmusic"),
			hide:     tbl.List("zonehide"),
			show:     tbl.List("zoneshow"),
			denyMode: "rewind",
			denyPush: DefaultDenyPush,
			denyCdMs: DefaultDenyCooldownMs,
		}
		if tbl.Has("zonevolume") {
			z.volume = tbl.Float("zonevolume")
		}
		if tbl.Has("zonefade") {
			z.fadeMs = tbl.Int("zonefade")
		}
		if tbl.Has("denymode") {
			z.denyMode = tbl.Str("denymode")
		}
		if tbl.Has("denypush") {
			z.denyPush = tbl.Float("denypush")
		}
		if tbl.Has("denycooldown") {
			z.denyCdMs = tbl.Int("denycooldown")
		}
		e.zones = append(e.zones, z)
	}
	return e
}

// Tick evaluates every zone against the player position. It returns the
// corrected position (the input position when no deny zone objects) and
// whether any deny zone fired. lastGood is the most recent position
// known to be outside every deny zone; rewind-mode zones return it.
func (e *Evaluator) Tick(dtMs int, pos, lastGood types.Point) (types.Point, bool) {
	corrected := pos
	denied := false
	e.TickFades(dtMs)

	for _, z := range e.zones {
		in := z.it.Bounds.Contains(pos) && z.it.Enabled()
		switch {
		case in && !z.inside:
			z.inside = true
			e.enter(z)
		case !in && z.inside:
			z.inside = false
			e.exit(z)
		}

		if in && z.it.Deny {
			denied = true
			corrected = z.resolve(pos, lastGood)
			if z.cooldownMs <= 0 {
				z.cooldownMs = z.denyCdMs
				if z.it.Action != nil {
					z.it.Action()
				}
			}
			// The correction counts as leaving the zone.
			z.inside = false
			e.exit(z)
		}
	}
	return corrected, denied
}

// TickFades advances ambience fades and deny feedback cooldowns
// without evaluating zone membership. The engine calls it while
// dialogue holds the world lock, so an in-flight fade keeps ramping
// instead of freezing for the length of the script.
func (e *Evaluator) TickFades(dtMs int) {
	for _, z := range e.zones {
		z.tickFade(dtMs)
		if z.cooldownMs > 0 {
			z.cooldownMs -= dtMs
		}
	}
}

// Stop silences every zone immediately. Used on level exit.
func (e *Evaluator) Stop() {
	for _, z := range e.zones {
		if z.inside {
			e.setLayers(z.hide, true)
			e.setLayers(z.show, false)
		}
		if z.sound != nil {
			z.sound.Stop()
			z.sound = nil
		}
		z.fade = fadeNone
		z.inside = false
		if z.duck && e.music != nil {
			e.music.Duck(false)
		}
	}
}

func (e *Evaluator) enter(z *zone) {
	if z.it.Auto && z.it.Action != nil && !z.it.Deny {
		z.it.Action()
	}
	e.setLayers(z.hide, false)
	e.setLayers(z.show, true)
	if z.soundKey == "" || e.audio == nil {
		return
	}
	if z.sound == nil {
		h, ok := e.audio.Add(z.soundKey, world.SoundOpts{Loop: true, Volume: z.volume})
		if !ok {
			e.warnf("zone sound %q not loaded", z.soundKey)
			return
		}
		z.sound = h
	}
	z.sound.SetVolume(0)
	z.sound.Play()
	z.fade = fadeIn
	z.fadeAt = 0
	if z.duck && e.music != nil {
		e.music.Duck(true)
	}
}

func (e *Evaluator) exit(z *zone) {
	e.setLayers(z.hide, true)
	e.setLayers(z.show, false)
	if z.sound != nil {
		z.fade = fadeOut
		z.fadeAt = 0
	}
	if z.duck && e.music != nil {
		e.music.Duck(false)
	}
}

// setLayers flips the visibility of the named layers. The changes are
// transient: nothing here is persisted, the reverse call on the exit
// edge restores the authored state.
func (e *Evaluator) setLayers(names []string, visible bool) {
	if e.scene == nil || len(names) == 0 {
		return
	}
	for _, name := range names {
		if l, ok := e.scene.Layer(name); ok {
			l.SetVisible(visible)
		} else {
			e.warnf("zone layer %q missing in %q", name, e.scene.ID())
		}
	}
}

// tickFade advances the zone's volume ramp.
func (z *zone) tickFade(dtMs int) {
	if z.fade == fadeNone || z.sound == nil {
		return
	}
	z.fadeAt += dtMs
	t := float64(z.fadeAt) / float64(z.fadeMs)
	if t > 1 {
		t = 1
	}
	switch z.fade {
	case fadeIn:
		z.sound.SetVolume(z.volume * t)
	case fadeOut:
		z.sound.SetVolume(z.volume * (1 - t))
	}
	if t >= 1 {
		if z.fade == fadeOut {
			z.sound.Stop()
		}
		z.fade = fadeNone
	}
}

// resolve computes the corrected position for a deny hit: push mode
// places the player on the ray from the zone center through the
// offending position at the configured distance; rewind mode restores
// the last good position.
func (z *zone) resolve(pos, lastGood types.Point) types.Point {
	if z.denyMode != "push" {
		return lastGood
	}
	c := z.it.Center
	dx := pos.X - c.X
	dy := pos.Y - c.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		// Dead center: push straight down, an arbitrary but stable pick.
		return types.Point{X: c.X, Y: c.Y + z.denyPush}
	}
	return types.Point{X: c.X + dx/d*z.denyPush, Y: c.Y + dy/d*z.denyPush}
}
