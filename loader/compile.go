package loader

import (
	"fmt"

	"github.com/nathoo/wandercore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawLevel holds a level table before compilation.
type rawLevel struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a plain Go value. Tables become
// map[string]any or []any depending on their shape.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Array-shaped tables become slices.
		if val.Len() > 0 {
			var arr []any
			val.ForEach(func(k, item lua.LValue) {
				if _, ok := k.(lua.LNumber); ok {
					arr = append(arr, toGoValue(item))
				}
			})
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, item lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(item)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStrings converts an array-shaped table to a string slice.
func tableToStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	tbl.ForEach(func(k, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

// toPoint reads a point from either {x, y} array form or {x=, y=} form.
func toPoint(tbl *lua.LTable) types.Point {
	if tbl.Len() >= 2 {
		x, _ := tbl.RawGetInt(1).(lua.LNumber)
		y, _ := tbl.RawGetInt(2).(lua.LNumber)
		return types.Point{X: float64(x), Y: float64(y)}
	}
	return types.Point{X: getNumber(tbl, "x"), Y: getNumber(tbl, "y")}
}

func compile(coll *collector) (*types.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game {} block defined")
	}
	defs := &types.Defs{
		Game:   compileGame(coll.game),
		Levels: map[string]*types.LevelDef{},
	}

	for _, raw := range coll.levels {
		if raw.id == "" {
			return nil, fmt.Errorf("level with empty id")
		}
		if _, exists := defs.Levels[raw.id]; exists {
			return nil, fmt.Errorf("duplicate level id %q", raw.id)
		}
		level, err := compileLevel(raw)
		if err != nil {
			return nil, err
		}
		defs.Levels[raw.id] = level
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:           getString(tbl, "title"),
		Author:          getString(tbl, "author"),
		Version:         getString(tbl, "version"),
		Start:           getString(tbl, "start"),
		HelpGoal:        getInt(tbl, "help_goal"),
		TimeLimitMs:     int64(getNumber(tbl, "time_limit_ms")),
		TypeIntervalMs:  getInt(tbl, "type_interval_ms"),
		InputCooldownMs: getInt(tbl, "input_cooldown_ms"),
		Companions:      tableToStrings(getTable(tbl, "companions")),
	}
}

func compileLevel(raw rawLevel) (*types.LevelDef, error) {
	tbl := raw.table
	level := &types.LevelDef{
		ID:     raw.id,
		Music:  getString(tbl, "music"),
		Layers: tableToStrings(getTable(tbl, "layers")),
		Points: map[string]types.Point{},
		NPCs:   map[string]types.NPCDef{},
	}

	if points := getTable(tbl, "points"); points != nil {
		points.ForEach(func(k, v lua.LValue) {
			name, ok1 := k.(lua.LString)
			pt, ok2 := v.(*lua.LTable)
			if ok1 && ok2 {
				level.Points[string(name)] = toPoint(pt)
			}
		})
	}

	if npcs := getTable(tbl, "npcs"); npcs != nil {
		npcs.ForEach(func(k, v lua.LValue) {
			name, ok1 := k.(lua.LString)
			def, ok2 := v.(*lua.LTable)
			if !ok1 || !ok2 {
				return
			}
			level.NPCs[string(name)] = types.NPCDef{
				ID:    string(name),
				Start: types.Point{X: getNumber(def, "x"), Y: getNumber(def, "y")},
				Speed: getNumber(def, "speed"),
			}
		})
	}

	var err error
	if objects := getTable(tbl, "objects"); objects != nil {
		objects.ForEach(func(_, v lua.LValue) {
			obj, ok := v.(*lua.LTable)
			if !ok {
				if err == nil {
					err = fmt.Errorf("level %q: objects must be tables", raw.id)
				}
				return
			}
			def := types.ObjectDef{
				Name: getString(obj, "name"),
				Bounds: types.Rect{
					X: getNumber(obj, "x"),
					Y: getNumber(obj, "y"),
					W: getNumber(obj, "w"),
					H: getNumber(obj, "h"),
				},
			}
			if props := getTable(obj, "props"); props != nil {
				def.Props = toGoValue(props)
			}
			level.Objects = append(level.Objects, def)
		})
	}
	return level, err
}
