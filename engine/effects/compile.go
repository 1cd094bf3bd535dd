// Package effects compiles an object's property table into a typed set
// of effect descriptors and applies them to session state and world
// presentation. Properties are parsed once per object and cached by the
// registry; the applier never re-interprets raw strings.
//
// Recognized properties (each optionally namespaced by an event prefix,
// e.g. "choice2give" or "posthelpscore"):
//
//	give, giveonce, take, takeonce   comma list of "item" or "item:count"
//	score, scoreonce                 signed delta
//	helpscore, helpscoreonce         signed delta
//	setflag, clearflag               comma list of flag names
//	show, hide                       comma list of layer names
//	removecollider                   comma list of collider ids
//	removetile                       "col,row" pairs joined by ";"
//	enable, disable                  comma list of "scene:id" or "id"
//	disableself                      bool
//	maxuses                          int, disable after N uses
//	npcflip                          comma list of npc ids
//	npcmoveto                        "npc@point" or "npc@x,y"
//	npcpath                          "npc@p1;p2;p3"
//	npcspeed                         units per second for moves above
//	music, musiconce, musicpersist   track key + once/persist modifiers
//	sfx, sfxonce                     sound key + once modifier
//	helped                           bool, mark interaction helped
package effects

import (
	"strconv"
	"strings"

	"github.com/nathoo/wandercore/engine/props"
)

// ItemDelta is one inventory adjustment.
type ItemDelta struct {
	Item  string
	Count int
	Once  bool
}

// ScoreDelta is one score or help-score adjustment.
type ScoreDelta struct {
	Amount int
	Help   bool
	Once   bool
}

// TileRef addresses one removable tile by grid coordinate.
type TileRef struct {
	Col int
	Row int
}

// SceneRef addresses an interaction in a (possibly different) scene.
// An empty Scene means the scene the effect runs in.
type SceneRef struct {
	Scene string
	ID    string
}

// NpcMove is a move-to-point or waypoint-path instruction.
type NpcMove struct {
	NpcID  string
	Points []string // named points or "x,y" literals, in order
	Speed  float64  // 0 = npc default
}

// MusicChange switches the background track.
type MusicChange struct {
	Key     string
	Once    bool
	Persist bool
}

// SfxPlay plays a one-shot sound.
type SfxPlay struct {
	Key  string
	Once bool
}

// Set is the compiled, typed form of every effect an object declares
// for one event group.
type Set struct {
	Give            []ItemDelta
	Take            []ItemDelta
	Scores          []ScoreDelta
	SetFlags        []string
	ClearFlags      []string
	Show            []string
	Hide            []string
	RemoveColliders []string
	RemoveTiles     []TileRef
	Enable          []SceneRef
	Disable         []SceneRef
	DisableSelf     bool
	MaxUses         int
	NpcFlips        []string
	NpcMoves        []NpcMove
	Music           *MusicChange
	Sfx             *SfxPlay
	MarkHelped      bool
}

// Empty reports whether the set holds no effects at all.
func (s *Set) Empty() bool {
	return len(s.Give) == 0 && len(s.Take) == 0 && len(s.Scores) == 0 &&
		len(s.SetFlags) == 0 && len(s.ClearFlags) == 0 &&
		len(s.Show) == 0 && len(s.Hide) == 0 &&
		len(s.RemoveColliders) == 0 && len(s.RemoveTiles) == 0 &&
		len(s.Enable) == 0 && len(s.Disable) == 0 &&
		!s.DisableSelf && s.MaxUses == 0 &&
		len(s.NpcFlips) == 0 && len(s.NpcMoves) == 0 &&
		s.Music == nil && s.Sfx == nil && !s.MarkHelped
}

// Compile reads every recognized property under the given event prefix
// ("" for the base group) into a typed Set. Unknown properties are left
// for other components (dialogue, zones, registry) to interpret.
func Compile(tbl props.Table, prefix string) *Set {
	p := func(name string) string { return prefix + name }
	set := &Set{}

	set.Give = appendItems(set.Give, tbl.List(p("give")), false)
	set.Give = appendItems(set.Give, tbl.List(p("giveonce")), true)
	set.Take = appendItems(set.Take, tbl.List(p("take")), false)
	set.Take = appendItems(set.Take, tbl.List(p("takeonce")), true)

	for _, sc := range []struct {
		key  string
		help bool
		once bool
	}{
		{"score", false, false},
		{"scoreonce", false, true},
		{"helpscore", true, false},
		{"helpscoreonce", true, true},
	} {
		if tbl.Has(p(sc.key)) {
			if amt := tbl.Int(p(sc.key)); amt != 0 {
				set.Scores = append(set.Scores, ScoreDelta{Amount: amt, Help: sc.help, Once: sc.once})
			}
		}
	}

	set.SetFlags = tbl.List(p("setflag"))
	set.ClearFlags = tbl.List(p("clearflag"))
	set.Show = tbl.List(p("show"))
	set.Hide = tbl.List(p("hide"))
	set.RemoveColliders = tbl.List(p("removecollider"))
	set.RemoveTiles = parseTiles(tbl.Str(p("removetile")))
	set.Enable = parseSceneRefs(tbl.List(p("enable")))
	set.Disable = parseSceneRefs(tbl.List(p("disable")))
	set.DisableSelf = tbl.Bool(p("disableself"))
	set.MaxUses = tbl.Int(p("maxuses"))
	set.NpcFlips = tbl.List(p("npcflip"))

	speed := tbl.Float(p("npcspeed"))
	if mv, ok := parseNpcMove(tbl.Str(p("npcmoveto")), speed); ok {
		set.NpcMoves = append(set.NpcMoves, mv)
	}
	if mv, ok := parseNpcMove(tbl.Str(p("npcpath")), speed); ok {
		set.NpcMoves = append(set.NpcMoves, mv)
	}

	if key := tbl.Str(p("music")); key != "" {
		set.Music = &MusicChange{
			Key:     key,
			Once:    tbl.Bool(p("musiconce")),
			Persist: tbl.Bool(p("musicpersist")),
		}
	}
	if key := tbl.Str(p("sfx")); key != "" {
		set.Sfx = &SfxPlay{Key: key, Once: tbl.Bool(p("sfxonce"))}
	}
	set.MarkHelped = tbl.Bool(p("helped"))

	return set
}

// appendItems parses "item" or "item:count" entries.
func appendItems(dst []ItemDelta, entries []string, once bool) []ItemDelta {
	for _, e := range entries {
		item, countStr, found := strings.Cut(e, ":")
		count := 1
		if found {
			if n, err := strconv.Atoi(strings.TrimSpace(countStr)); err == nil && n > 0 {
				count = n
			}
		}
		item = strings.TrimSpace(item)
		if item != "" {
			dst = append(dst, ItemDelta{Item: item, Count: count, Once: once})
		}
	}
	return dst
}

// parseTiles parses "col,row" pairs joined by ";". Malformed pairs are
// dropped.
func parseTiles(s string) []TileRef {
	if s == "" {
		return nil
	}
	var out []TileRef
	for _, pair := range strings.Split(s, ";") {
		cs, rs, found := strings.Cut(pair, ",")
		if !found {
			continue
		}
		col, err1 := strconv.Atoi(strings.TrimSpace(cs))
		row, err2 := strconv.Atoi(strings.TrimSpace(rs))
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, TileRef{Col: col, Row: row})
	}
	return out
}

// parseSceneRefs parses "scene:id" entries; a bare id targets the
// current scene.
func parseSceneRefs(entries []string) []SceneRef {
	var out []SceneRef
	for _, e := range entries {
		scene, id, found := strings.Cut(e, ":")
		if !found {
			out = append(out, SceneRef{ID: strings.TrimSpace(e)})
			continue
		}
		out = append(out, SceneRef{Scene: strings.TrimSpace(scene), ID: strings.TrimSpace(id)})
	}
	return out
}

// parseNpcMove parses "npc@p1;p2;..." where each point is a named level
// point or an "x,y" literal.
func parseNpcMove(s string, speed float64) (NpcMove, bool) {
	if s == "" {
		return NpcMove{}, false
	}
	id, rest, found := strings.Cut(s, "@")
	if !found || strings.TrimSpace(rest) == "" {
		return NpcMove{}, false
	}
	var pts []string
	for _, p := range strings.Split(rest, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return NpcMove{}, false
	}
	return NpcMove{NpcID: strings.TrimSpace(id), Points: pts, Speed: speed}, true
}
