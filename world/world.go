// Package world declares the narrow ports through which the engine talks
// to its rendering, audio, and input collaborators. The engine never
// assumes anything about what sits behind these interfaces; a missing
// layer, collider, NPC, or sound key degrades to a logged no-op.
package world

import "github.com/nathoo/wandercore/types"

// Layer is a rendering layer handle.
type Layer interface {
	SetVisible(visible bool)
}

// Collider is a physics collider handle.
type Collider interface {
	Destroy()
}

// NPC is a controllable scripted character handle.
type NPC interface {
	Pos() types.Point
	SetPos(p types.Point)
	Flip() bool
	SetFlip(flipped bool)
	SetVelocity(vx, vy float64)
	SetAnim(name string)
}

// Scene is the level collaborator: object layers, tiles, colliders, NPCs.
type Scene interface {
	ID() string
	Layer(name string) (Layer, bool)
	RemoveTile(col, row int)
	Collider(id string) (Collider, bool)
	NPC(id string) (NPC, bool)
}

// SoundOpts configures a sound instance at creation.
type SoundOpts struct {
	Loop   bool
	Volume float64 // 0..1; 0 means "default full volume"
}

// Sound is a playable sound handle.
type Sound interface {
	Play()
	Stop()
	SetVolume(v float64)
	IsPlaying() bool
}

// Audio is the audio collaborator. Add returns false when the key is
// not loaded; callers treat that as a no-op.
type Audio interface {
	Add(key string, opts SoundOpts) (Sound, bool)
	Exists(key string) bool
}

// Music controls the background track. Switch starts the new bed; when
// one is already playing the two crossfade, driven by Tick from the
// engine's frame loop. Duck temporarily lowers the track under zone
// ambience and is reversed with Duck(false).
type Music interface {
	Current() string
	Switch(key string)
	Duck(on bool)
	Tick(dtMs int)
}

// Input is the input collaborator. JustPressed reports a rising edge
// for the named action this frame.
type Input interface {
	JustPressed(name string) bool
	Held(name string) bool
}

// Input action names understood by the engine.
const (
	ActConfirm = "confirm"
	ActCancel  = "cancel"
	ActUp      = "up"
	ActDown    = "down"
)
