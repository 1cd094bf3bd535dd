// Package state holds the shared session store: inventory, flags,
// interaction counters, layer visibility, scores, and elapsed time.
// The store is created once per session and passed explicitly to every
// component; all mutation goes through the accessor functions here.
package state

import "strings"

// Interactions tracks per-interaction bookkeeping, keyed by
// scene-qualified interaction id.
type Interactions struct {
	Counts   map[string]int  `json:"counts"`
	Disabled map[string]bool `json:"disabled"`
	Enabled  map[string]bool `json:"enabled"` // forced-enable overrides
	Choices  map[string]int  `json:"choices"` // last selected branch index
}

// State is the complete mutable session state.
type State struct {
	Inventory    map[string]int             `json:"inventory"`
	Flags        map[string]any             `json:"flags"`
	Inter        Interactions               `json:"interactions"`
	HiddenLayers map[string]map[string]bool `json:"hidden_layers"`
	Score        int                        `json:"score"`
	HelpScore    int                        `json:"help_score"`
	RealTimeMs   int64                      `json:"real_time_ms"`
}

// New creates a fresh session state.
func New() *State {
	return &State{
		Inventory: map[string]int{},
		Flags:     map[string]any{},
		Inter: Interactions{
			Counts:   map[string]int{},
			Disabled: map[string]bool{},
			Enabled:  map[string]bool{},
			Choices:  map[string]int{},
		},
		HiddenLayers: map[string]map[string]bool{},
	}
}

// Reset clears the state in place for a new game.
func (s *State) Reset() {
	*s = *New()
}

// QualifyID builds the scene-qualified interaction key used by the
// Interactions maps.
func QualifyID(scene, id string) string {
	return scene + "/" + id
}

// --- Inventory ---

// AddItem adds count of an item (count defaults to 1 when <= 0).
func AddItem(s *State, item string, count int) {
	if count <= 0 {
		count = 1
	}
	s.Inventory[item] += count
}

// TakeItem removes count of an item, clamping at zero.
func TakeItem(s *State, item string, count int) {
	if count <= 0 {
		count = 1
	}
	n := s.Inventory[item] - count
	if n <= 0 {
		delete(s.Inventory, item)
		return
	}
	s.Inventory[item] = n
}

// HasItem reports whether at least one of the item is held.
func HasItem(s *State, item string) bool {
	return s.Inventory[item] > 0
}

// ItemCount returns how many of the item are held.
func ItemCount(s *State, item string) int {
	return s.Inventory[item]
}

// --- Flags ---

// SetFlag stores a flag value (bool, string, or number).
func SetFlag(s *State, name string, value any) {
	s.Flags[name] = value
}

// ClearFlag removes a flag.
func ClearFlag(s *State, name string) {
	delete(s.Flags, name)
}

// FlagBool returns a flag as bool. Unset flags read false.
func FlagBool(s *State, name string) bool {
	v, ok := s.Flags[name]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// FlagStr returns a flag as string, or "" when unset or non-string.
func FlagStr(s *State, name string) string {
	v, _ := s.Flags[name].(string)
	return v
}

// FlagInt returns a flag as int, handling float64 from JSON round-trips.
func FlagInt(s *State, name string) int {
	switch n := s.Flags[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// FlagsWithPrefix returns suffix -> value for every flag whose key
// starts with the given prefix. Used to replay persisted overrides on
// level entry.
func FlagsWithPrefix(s *State, prefix string) map[string]any {
	out := map[string]any{}
	for k, v := range s.Flags {
		if strings.HasPrefix(k, prefix) {
			out[k[len(prefix):]] = v
		}
	}
	return out
}

// --- Interactions ---

// CountInteraction increments the interaction counter and returns the
// new count (1 on the first invocation).
func CountInteraction(s *State, scene, id string) int {
	k := QualifyID(scene, id)
	s.Inter.Counts[k]++
	return s.Inter.Counts[k]
}

// InteractionCount returns the current counter without incrementing.
func InteractionCount(s *State, scene, id string) int {
	return s.Inter.Counts[QualifyID(scene, id)]
}

// DisableInteraction permanently masks an interaction.
func DisableInteraction(s *State, scene, id string) {
	k := QualifyID(scene, id)
	s.Inter.Disabled[k] = true
	delete(s.Inter.Enabled, k)
}

// EnableInteraction force-enables an interaction, clearing any disable.
func EnableInteraction(s *State, scene, id string) {
	k := QualifyID(scene, id)
	delete(s.Inter.Disabled, k)
	s.Inter.Enabled[k] = true
}

// IsDisabled reports whether the interaction is masked.
func IsDisabled(s *State, scene, id string) bool {
	return s.Inter.Disabled[QualifyID(scene, id)]
}

// IsForceEnabled reports whether the interaction carries a
// forced-enable override.
func IsForceEnabled(s *State, scene, id string) bool {
	return s.Inter.Enabled[QualifyID(scene, id)]
}

// RecordChoice stores the last selected branch index for an interaction.
func RecordChoice(s *State, scene, id string, option int) {
	s.Inter.Choices[QualifyID(scene, id)] = option
}

// LastChoice returns the last selected branch index, or -1 when none
// was ever taken.
func LastChoice(s *State, scene, id string) int {
	if v, ok := s.Inter.Choices[QualifyID(scene, id)]; ok {
		return v
	}
	return -1
}

// --- Layer visibility ---

// HideLayer records a layer as hidden for a scene.
func HideLayer(s *State, scene, layer string) {
	if s.HiddenLayers[scene] == nil {
		s.HiddenLayers[scene] = map[string]bool{}
	}
	s.HiddenLayers[scene][layer] = true
}

// ShowLayer clears a hidden-layer record.
func ShowLayer(s *State, scene, layer string) {
	if m, ok := s.HiddenLayers[scene]; ok {
		delete(m, layer)
	}
}

// IsLayerHidden reports the persisted visibility of a layer.
func IsLayerHidden(s *State, scene, layer string) bool {
	return s.HiddenLayers[scene][layer]
}

// HiddenLayersFor returns the hidden layer names for a scene.
func HiddenLayersFor(s *State, scene string) []string {
	var out []string
	for name, hidden := range s.HiddenLayers[scene] {
		if hidden {
			out = append(out, name)
		}
	}
	return out
}

// --- Scores and time ---

// AddScore adjusts the score total.
func AddScore(s *State, delta int) {
	s.Score += delta
}

// AddHelpScore adjusts the help score total.
func AddHelpScore(s *State, delta int) {
	s.HelpScore += delta
}

// AddRealTime advances the elapsed wall-clock counter. The engine
// skips this while dialogue is active.
func AddRealTime(s *State, dtMs int64) {
	s.RealTimeMs += dtMs
}

// TrueEnding reports whether the help score has reached the goal.
// A goal of zero never triggers.
func TrueEnding(s *State, goal int) bool {
	return goal > 0 && s.HelpScore >= goal
}

// TimeUp reports whether the global time limit has elapsed.
// A limit of zero never triggers.
func TimeUp(s *State, limitMs int64) bool {
	return limitMs > 0 && s.RealTimeMs >= limitMs
}

// --- Companions ---

// companionFlag is the flag prefix marking a companion as present.
const companionFlag = "follower_"

// SetCompanion marks a companion character as present or absent.
func SetCompanion(s *State, name string, present bool) {
	if present {
		s.Flags[companionFlag+name] = true
		return
	}
	delete(s.Flags, companionFlag+name)
}

// HasCompanion reports whether a companion is currently present.
func HasCompanion(s *State, name string) bool {
	return FlagBool(s, companionFlag+name)
}

// PresentCompanions filters the given roster down to present companions,
// preserving roster order.
func PresentCompanions(s *State, roster []string) []string {
	var out []string
	for _, name := range roster {
		if HasCompanion(s, name) {
			out = append(out, name)
		}
	}
	return out
}
