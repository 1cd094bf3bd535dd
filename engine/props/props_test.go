package props

import "testing"

func TestParse_PairArray(t *testing.T) {
	raw := []any{
		map[string]any{"name": "ID", "value": "well"},
		map[string]any{"name": "Prompt", "value": "Look in"},
		map[string]any{"name": "score", "value": float64(5)},
	}

	tbl := Parse(raw)
	if tbl.Str("id") != "well" {
		t.Errorf("expected id=well, got %q", tbl.Str("id"))
	}
	if tbl.Str("prompt") != "Look in" {
		t.Errorf("expected prompt, got %q", tbl.Str("prompt"))
	}
	if tbl.Int("Score") != 5 {
		t.Errorf("expected score 5, got %d", tbl.Int("Score"))
	}
}

func TestParse_KeyedMap(t *testing.T) {
	tbl := Parse(map[string]any{"Id": "gate", "Deny": true})
	if tbl.Str("id") != "gate" {
		t.Errorf("expected id=gate, got %q", tbl.Str("id"))
	}
	if !tbl.Bool("deny") {
		t.Error("expected deny=true")
	}
}

func TestParse_MalformedInput(t *testing.T) {
	for _, raw := range []any{nil, 42, "junk", []any{1, "two", nil}} {
		tbl := Parse(raw)
		if len(tbl) != 0 {
			t.Errorf("expected empty table for %v, got %v", raw, tbl)
		}
	}
}

func TestTable_Coercion(t *testing.T) {
	tbl := Parse(map[string]any{
		"count":  "12",
		"ratio":  1.5,
		"flag":   "yes",
		"off":    "nope",
		"number": float64(3),
	})

	if tbl.Int("count") != 12 {
		t.Errorf("expected 12, got %d", tbl.Int("count"))
	}
	if tbl.Float("ratio") != 1.5 {
		t.Errorf("expected 1.5, got %v", tbl.Float("ratio"))
	}
	if !tbl.Bool("flag") {
		t.Error("expected flag=true")
	}
	if tbl.Bool("off") {
		t.Error("expected off=false")
	}
	if tbl.Str("number") != "3" {
		t.Errorf("expected \"3\", got %q", tbl.Str("number"))
	}
	if tbl.Bool("missing") {
		t.Error("absent key must read false")
	}
}

func TestTable_List(t *testing.T) {
	tbl := Parse(map[string]any{"hide": "trees, cave , , secret"})
	got := tbl.List("hide")
	want := []string{"trees", "cave", "secret"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if tbl.List("missing") != nil {
		t.Error("absent key must yield nil list")
	}
}
