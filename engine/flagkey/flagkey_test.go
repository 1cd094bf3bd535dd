package flagkey

import (
	"strings"
	"testing"
)

func TestKey_Deterministic(t *testing.T) {
	a := New(ItemOnce, "meadow", "well", "first")
	b := New(ItemOnce, "meadow", "well", "first")
	if a.String() != b.String() {
		t.Errorf("equal tuples must produce equal keys: %q vs %q", a, b)
	}
}

func TestKey_CategoriesDisambiguate(t *testing.T) {
	sfx := New(SfxOnce, "meadow", "well").String()
	item := New(ItemOnce, "meadow", "well").String()
	if sfx == item {
		t.Errorf("different categories must not collide: %q", sfx)
	}
}

func TestKey_SubComponents(t *testing.T) {
	base := New(ScoreOnce, "meadow", "well").String()
	sub := New(ScoreOnce, "meadow", "well", "choice2").String()
	if base == sub {
		t.Error("sub components must change the key")
	}
	if !strings.HasPrefix(sub, base) {
		t.Errorf("sub key %q should extend base key %q", sub, base)
	}
}

func TestPrefix_MatchesKeys(t *testing.T) {
	k := New(Collider, "meadow", "boulder_3").String()
	p := Prefix(Collider, "meadow")
	if !strings.HasPrefix(k, p) {
		t.Errorf("key %q should start with prefix %q", k, p)
	}
	other := New(Collider, "cave", "boulder_3").String()
	if strings.HasPrefix(other, p) {
		t.Errorf("key %q from another scene must not match prefix %q", other, p)
	}
}
