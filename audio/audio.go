// Package audio implements the world audio ports on top of a beep
// mixer with procedurally generated sounds: no asset files, every
// effect and music bed is synthesized.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/nathoo/wandercore/world"
)

const sampleRate = beep.SampleRate(48000)

// duckVolume is the music attenuation applied while a zone ducks it.
const duckVolume = 0.35

// musicFadeMs is how long a music crossfade takes, in engine-tick time.
const musicFadeMs = 1200

// Generator builds a fresh streamer for one playback of a sound.
type Generator func(rate beep.SampleRate) beep.Streamer

// Engine owns the speaker and the mixer. It implements world.Audio;
// its Music() accessor implements world.Music.
type Engine struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	sounds      map[string]Generator
	music       *musicPlayer
	initialized bool
}

// NewEngine creates an engine with the built-in sound bank.
func NewEngine() *Engine {
	e := &Engine{
		mixer:  &beep.Mixer{},
		sounds: map[string]Generator{},
	}
	e.music = &musicPlayer{engine: e}
	for key, gen := range builtinSounds() {
		e.sounds[key] = gen
	}
	return e
}

// Init opens the speaker and starts the mixer. Safe to call once.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(e.mixer)
	e.initialized = true
	return nil
}

// Close silences everything. The speaker itself stays open; beep has no
// close, so clearing the mixer is the shutdown path.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	speaker.Lock()
	e.mixer.Clear()
	speaker.Unlock()
	e.initialized = false
}

// Register adds or replaces a sound generator under a key.
func (e *Engine) Register(key string, gen Generator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sounds[key] = gen
}

// Exists reports whether a sound key is registered.
func (e *Engine) Exists(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sounds[key]
	return ok
}

// Add instantiates a sound. The instance is not playing yet.
func (e *Engine) Add(key string, opts world.SoundOpts) (world.Sound, bool) {
	e.mu.Lock()
	gen, ok := e.sounds[key]
	initialized := e.initialized
	e.mu.Unlock()
	if !ok || !initialized {
		return nil, false
	}

	vol := opts.Volume
	if vol == 0 {
		vol = 1
	}
	var streamer beep.Streamer = gen(sampleRate)
	if opts.Loop {
		if ls, ok := streamer.(beep.StreamSeeker); ok {
			streamer = beep.Loop(-1, ls)
		} else {
			streamer = loopForever(gen)
		}
	}
	s := &sound{engine: e}
	s.volume = &effects.Volume{Streamer: streamer, Base: 2, Volume: math.Log2(vol), Silent: vol <= 0}
	s.ctrl = &beep.Ctrl{Streamer: s.volume, Paused: true}
	return s, true
}

// Music returns the engine's music channel.
func (e *Engine) Music() world.Music { return e.music }

// sound is one playable instance wired into the mixer on first Play.
type sound struct {
	engine  *Engine
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	added   bool
	playing bool
}

func (s *sound) Play() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	if !s.added {
		s.engine.mixer.Add(s.ctrl)
		s.added = true
	}
	s.playing = true
}

func (s *sound) Stop() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.playing = false
}

func (s *sound) SetVolume(v float64) {
	speaker.Lock()
	if v <= 0 {
		s.volume.Silent = true
	} else {
		s.volume.Silent = false
		s.volume.Volume = math.Log2(v)
	}
	speaker.Unlock()
}

func (s *sound) IsPlaying() bool { return s.playing }

// musicPlayer keeps one looping bed playing at a time, crossfading on
// track switches.
type musicPlayer struct {
	engine   *Engine
	current  string
	handle   world.Sound
	outgoing world.Sound // previous bed, fading out
	ducked   bool
	fading   bool
	fadeAt   int // elapsed ms of the current crossfade
}

func (m *musicPlayer) Current() string { return m.current }

// Switch starts the new bed. When another bed is already playing the
// two crossfade over musicFadeMs, advanced by Tick; with nothing
// playing the new bed starts at full volume right away. Switching to
// the already-playing track is a no-op.
func (m *musicPlayer) Switch(key string) {
	if key == m.current {
		return
	}
	// A switch mid-crossfade cuts the previous outgoing bed.
	if m.outgoing != nil {
		m.outgoing.Stop()
		m.outgoing = nil
	}
	old := m.handle
	m.handle = nil
	m.current = key
	if key != "" {
		if h, ok := m.engine.Add(key, world.SoundOpts{Loop: true}); ok {
			m.handle = h
		}
	}

	if old == nil {
		m.fading = false
		if m.handle != nil {
			m.handle.SetVolume(m.target())
			m.handle.Play()
		}
		return
	}
	m.outgoing = old
	m.fading = true
	m.fadeAt = 0
	if m.handle != nil {
		m.handle.SetVolume(0)
		m.handle.Play()
	}
}

// Tick advances the crossfade: the outgoing bed ramps down as the
// incoming one ramps up, and the outgoing handle stops once silent.
func (m *musicPlayer) Tick(dtMs int) {
	if !m.fading {
		return
	}
	m.fadeAt += dtMs
	t := float64(m.fadeAt) / float64(musicFadeMs)
	if t > 1 {
		t = 1
	}
	if m.outgoing != nil {
		m.outgoing.SetVolume(m.target() * (1 - t))
	}
	if m.handle != nil {
		m.handle.SetVolume(m.target() * t)
	}
	if t >= 1 {
		if m.outgoing != nil {
			m.outgoing.Stop()
			m.outgoing = nil
		}
		m.fading = false
	}
}

// Duck attenuates the bed while zone ambience plays over it. During a
// crossfade the next Tick folds the new target into the ramp.
func (m *musicPlayer) Duck(on bool) {
	m.ducked = on
	if !m.fading {
		m.applyVolume()
	}
}

func (m *musicPlayer) target() float64 {
	if m.ducked {
		return duckVolume
	}
	return 1
}

func (m *musicPlayer) applyVolume() {
	if m.handle == nil {
		return
	}
	m.handle.SetVolume(m.target())
}

// loopForever restarts a generator-backed streamer whenever it drains,
// for generators whose streamers cannot seek.
func loopForever(gen Generator) beep.Streamer {
	current := gen(sampleRate)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		filled := 0
		for filled < len(samples) {
			n, ok := current.Stream(samples[filled:])
			filled += n
			if !ok {
				current = gen(sampleRate)
			}
		}
		return filled, true
	})
}
