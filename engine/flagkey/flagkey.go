// Package flagkey builds the composite keys that address every persisted
// "has this already happened" value. All key construction goes through
// this package so unrelated effects can never collide.
package flagkey

import "strings"

// Category namespaces a key by the kind of effect it guards.
type Category string

const (
	ItemOnce  Category = "item_once"
	SfxOnce   Category = "sfx_once"
	ScoreOnce Category = "score_once"
	HelpOnce  Category = "help_once"
	MusicOnce Category = "music_once"
	Tile      Category = "tile"
	Collider  Category = "collider"
	NpcPos    Category = "npc_pos"
	NpcFlip   Category = "npc_flip"
	Music     Category = "music"
	Helped    Category = "helped"
)

// sep joins key components. Authored identifiers never contain it.
const sep = "|"

// Key is a structured composite persistence key. Two keys built from
// equal components always stringify identically.
type Key struct {
	Category Category
	Scene    string
	Object   string
	Sub      []string
}

// New builds a key from (category, scene, object, sub...).
func New(cat Category, scene, object string, sub ...string) Key {
	return Key{Category: cat, Scene: scene, Object: object, Sub: sub}
}

// String renders the key in its canonical flat form.
func (k Key) String() string {
	parts := make([]string, 0, 3+len(k.Sub))
	parts = append(parts, string(k.Category), k.Scene, k.Object)
	parts = append(parts, k.Sub...)
	return strings.Join(parts, sep)
}

// Prefix returns the canonical prefix shared by every key in the given
// category and scene, including the trailing separator. Useful for
// scanning the flat flag map on level entry.
func Prefix(cat Category, scene string) string {
	return string(cat) + sep + scene + sep
}
