package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/wandercore/engine/props"
	"github.com/nathoo/wandercore/types"
)

// validate cross-checks references after compilation: the start level,
// NPC movement targets, named points, and cross-level enable/disable
// targets. Broken content fails loudly at load time instead of silently
// at runtime.
func validate(defs *types.Defs) error {
	if defs.Game.Start == "" {
		return fmt.Errorf("game has no start level")
	}
	if _, ok := defs.Levels[defs.Game.Start]; !ok {
		return fmt.Errorf("start level %q not defined", defs.Game.Start)
	}

	for id, level := range defs.Levels {
		for _, obj := range level.Objects {
			tbl := props.Parse(obj.Props)
			oid := tbl.Str("id")
			if oid == "" {
				continue
			}
			if err := validateNpcRef(level, tbl.Str("npcmoveto")); err != nil {
				return fmt.Errorf("level %q object %q: %w", id, oid, err)
			}
			if err := validateNpcRef(level, tbl.Str("npcpath")); err != nil {
				return fmt.Errorf("level %q object %q: %w", id, oid, err)
			}
			for _, ref := range tbl.List("enable") {
				if err := validateSceneRef(defs, ref); err != nil {
					return fmt.Errorf("level %q object %q enable: %w", id, oid, err)
				}
			}
			for _, ref := range tbl.List("disable") {
				if err := validateSceneRef(defs, ref); err != nil {
					return fmt.Errorf("level %q object %q disable: %w", id, oid, err)
				}
			}
		}
	}
	return nil
}

// validateNpcRef checks a "npc@point" or "npc@p1;p2" movement property.
// Coordinate literals ("x,y") need no point definition.
func validateNpcRef(level *types.LevelDef, ref string) error {
	if ref == "" {
		return nil
	}
	npcID, rest, found := strings.Cut(ref, "@")
	if !found {
		return fmt.Errorf("movement %q missing @", ref)
	}
	if _, ok := level.NPCs[npcID]; !ok {
		return fmt.Errorf("movement references unknown npc %q", npcID)
	}
	for _, pt := range strings.Split(rest, ";") {
		pt = strings.TrimSpace(pt)
		if pt == "" || strings.Contains(pt, ",") {
			continue
		}
		if _, ok := level.Points[pt]; !ok {
			return fmt.Errorf("movement references unknown point %q", pt)
		}
	}
	return nil
}

// validateSceneRef checks a "scene:id" target names a defined level.
// Bare ids target the current scene and are always valid.
func validateSceneRef(defs *types.Defs, ref string) error {
	scene, _, found := strings.Cut(ref, ":")
	if !found {
		return nil
	}
	if _, ok := defs.Levels[strings.TrimSpace(scene)]; !ok {
		return fmt.Errorf("unknown level %q", scene)
	}
	return nil
}
