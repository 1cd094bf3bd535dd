package state

import "github.com/nathoo/wandercore/engine/flagkey"

// MarkHelped records that an interaction's "helped" milestone happened.
// The mark is persisted through the ordinary flag map, so it survives
// level re-entry and full restarts.
func MarkHelped(s *State, scene, id string) {
	SetFlag(s, flagkey.New(flagkey.Helped, scene, id).String(), true)
}

// IsHelped reports whether the interaction was ever marked helped.
func IsHelped(s *State, scene, id string) bool {
	return FlagBool(s, flagkey.New(flagkey.Helped, scene, id).String())
}
