package world

import "github.com/nathoo/wandercore/types"

// In-memory implementations of the world ports. The TUI and CLI
// frontends use them as their backing store, and engine tests use them
// to observe side effects without a rendering surface.

// MemLayer records visibility changes.
type MemLayer struct {
	Name    string
	Visible bool
}

func (l *MemLayer) SetVisible(visible bool) { l.Visible = visible }

// MemCollider records destruction.
type MemCollider struct {
	ID        string
	Destroyed bool
}

func (c *MemCollider) Destroy() { c.Destroyed = true }

// MemNPC is a scripted character with recorded pose and animation.
type MemNPC struct {
	ID       string
	Position types.Point
	Flipped  bool
	VelX     float64
	VelY     float64
	Anim     string
}

func (n *MemNPC) Pos() types.Point            { return n.Position }
func (n *MemNPC) SetPos(p types.Point)        { n.Position = p }
func (n *MemNPC) Flip() bool                  { return n.Flipped }
func (n *MemNPC) SetFlip(flipped bool)        { n.Flipped = flipped }
func (n *MemNPC) SetVelocity(vx, vy float64)  { n.VelX, n.VelY = vx, vy }
func (n *MemNPC) SetAnim(name string)         { n.Anim = name }

// MemScene is an in-memory Scene.
type MemScene struct {
	SceneID      string
	Layers       map[string]*MemLayer
	Colliders    map[string]*MemCollider
	NPCs         map[string]*MemNPC
	RemovedTiles map[[2]int]bool
}

// NewMemScene creates an empty scene with the given id.
func NewMemScene(id string) *MemScene {
	return &MemScene{
		SceneID:      id,
		Layers:       map[string]*MemLayer{},
		Colliders:    map[string]*MemCollider{},
		NPCs:         map[string]*MemNPC{},
		RemovedTiles: map[[2]int]bool{},
	}
}

// AddLayer registers a visible layer and returns it.
func (s *MemScene) AddLayer(name string) *MemLayer {
	l := &MemLayer{Name: name, Visible: true}
	s.Layers[name] = l
	return l
}

// AddCollider registers a collider and returns it.
func (s *MemScene) AddCollider(id string) *MemCollider {
	c := &MemCollider{ID: id}
	s.Colliders[id] = c
	return c
}

// AddNPC registers an NPC at the given position and returns it.
func (s *MemScene) AddNPC(id string, at types.Point) *MemNPC {
	n := &MemNPC{ID: id, Position: at, Anim: "idle_down"}
	s.NPCs[id] = n
	return n
}

func (s *MemScene) ID() string { return s.SceneID }

func (s *MemScene) Layer(name string) (Layer, bool) {
	l, ok := s.Layers[name]
	return l, ok
}

func (s *MemScene) RemoveTile(col, row int) {
	s.RemovedTiles[[2]int{col, row}] = true
}

func (s *MemScene) Collider(id string) (Collider, bool) {
	c, ok := s.Colliders[id]
	if !ok || c.Destroyed {
		return nil, false
	}
	return c, true
}

func (s *MemScene) NPC(id string) (NPC, bool) {
	n, ok := s.NPCs[id]
	return n, ok
}

// MemSound records playback state.
type MemSound struct {
	Key     string
	Playing bool
	Volume  float64
	Loop    bool
	Plays   int
	Stops   int
}

func (s *MemSound) Play()              { s.Playing = true; s.Plays++ }
func (s *MemSound) Stop()              { s.Playing = false; s.Stops++ }
func (s *MemSound) SetVolume(v float64) { s.Volume = v }
func (s *MemSound) IsPlaying() bool    { return s.Playing }

// MemAudio hands out MemSounds for registered keys.
type MemAudio struct {
	Keys    map[string]bool
	Created []*MemSound
}

// NewMemAudio creates an audio fake that knows the given keys.
func NewMemAudio(keys ...string) *MemAudio {
	a := &MemAudio{Keys: map[string]bool{}}
	for _, k := range keys {
		a.Keys[k] = true
	}
	return a
}

func (a *MemAudio) Add(key string, opts SoundOpts) (Sound, bool) {
	if !a.Keys[key] {
		return nil, false
	}
	vol := opts.Volume
	if vol == 0 {
		vol = 1
	}
	s := &MemSound{Key: key, Volume: vol, Loop: opts.Loop}
	a.Created = append(a.Created, s)
	return s, true
}

func (a *MemAudio) Exists(key string) bool { return a.Keys[key] }

// MemMusic records track switches and ducking.
type MemMusic struct {
	Track    string
	Switches []string
	Ducked   bool
}

func (m *MemMusic) Current() string { return m.Track }

func (m *MemMusic) Switch(key string) {
	m.Track = key
	m.Switches = append(m.Switches, key)
}

func (m *MemMusic) Duck(on bool) { m.Ducked = on }

// Tick satisfies the Music port; the fake switches instantly, so there
// is no fade to advance.
func (m *MemMusic) Tick(int) {}

// MemInput feeds scripted key edges one frame at a time.
type MemInput struct {
	pressed map[string]bool
	held    map[string]bool
}

func NewMemInput() *MemInput {
	return &MemInput{pressed: map[string]bool{}, held: map[string]bool{}}
}

// Press marks a rising edge for the next frame.
func (i *MemInput) Press(name string) { i.pressed[name] = true }

// Hold marks a key as held.
func (i *MemInput) Hold(name string, down bool) { i.held[name] = down }

// EndFrame clears edges after a frame has consumed them.
func (i *MemInput) EndFrame() { i.pressed = map[string]bool{} }

func (i *MemInput) JustPressed(name string) bool { return i.pressed[name] }
func (i *MemInput) Held(name string) bool        { return i.held[name] }
