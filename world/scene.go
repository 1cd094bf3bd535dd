package world

import "github.com/nathoo/wandercore/types"

// SceneFromLevel builds an in-memory scene matching a level definition:
// one visible layer per declared name and every NPC at its start
// position. Frontends without a real rendering surface use this as
// their world model.
func SceneFromLevel(level *types.LevelDef) *MemScene {
	sc := NewMemScene(level.ID)
	for _, name := range level.Layers {
		sc.AddLayer(name)
	}
	for id, def := range level.NPCs {
		sc.AddNPC(id, def.Start)
	}
	return sc
}
