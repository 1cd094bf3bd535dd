// Package registry builds, from a level's object collection, the list
// of interactable entities with enablement predicates, prompts, and
// action callbacks wired to the dialogue runner and effect applier.
package registry

import (
	"strconv"

	"github.com/nathoo/wandercore/engine/dialogue"
	"github.com/nathoo/wandercore/engine/effects"
	"github.com/nathoo/wandercore/engine/npc"
	"github.com/nathoo/wandercore/engine/props"
	"github.com/nathoo/wandercore/engine/state"
	"github.com/nathoo/wandercore/types"
)

// Default interaction ranges, overridable per object.
const (
	DefaultMaxDist     = 48.0
	DefaultLookMaxDist = 72.0
	DefaultLookMinDot  = 0.5
)

// Interactable is one runtime interaction entry. It is rebuilt on every
// level entry from object data plus session-state overrides and is
// never persisted itself.
type Interactable struct {
	ID         string
	Selectable bool
	Prompt     string
	Center     types.Point
	Bounds     types.Rect

	MaxDist     float64
	LookMaxDist float64
	LookMinDot  float64

	// Zone classification, consumed by the trigger-zone evaluator.
	Auto bool
	Deny bool

	NpcID string // linked NPC whose movement suppresses this entry

	Props   props.Table
	Enabled func() bool
	Action  func()

	effectSets map[string]*effects.Set
}

// Effects returns the compiled effect set for an event prefix,
// compiling it on first use and caching it for the level's lifetime.
func (it *Interactable) Effects(prefix string) *effects.Set {
	if set, ok := it.effectSets[prefix]; ok {
		return set
	}
	set := effects.Compile(it.Props, prefix)
	it.effectSets[prefix] = set
	return set
}

// Runtime bundles everything an interaction needs when it fires.
type Runtime struct {
	State      *state.State
	Runner     *dialogue.Runner
	Env        effects.Env
	Mover      *npc.Mover
	Companions []string // full companion roster from the game def
	Warnf      func(format string, args ...any)
}

func (rt *Runtime) warnf(format string, args ...any) {
	if rt.Warnf != nil {
		rt.Warnf(format, args...)
	}
}

// Build parses the level's objects into interactables. Objects without
// an id are skipped; duplicate ids keep the first entry and warn.
func Build(level *types.LevelDef, rt *Runtime) []*Interactable {
	var out []*Interactable
	seen := map[string]bool{}

	for _, obj := range level.Objects {
		tbl := props.Parse(obj.Props)
		id := tbl.Str("id")
		if id == "" {
			continue
		}
		if seen[id] {
			rt.warnf("level %q: duplicate interaction id %q, keeping first", level.ID, id)
			continue
		}
		seen[id] = true
		out = append(out, build(level, rt, obj, tbl, id))
	}
	return out
}

func build(level *types.LevelDef, rt *Runtime, obj types.ObjectDef, tbl props.Table, id string) *Interactable {
	it := &Interactable{
		ID:          id,
		Prompt:      tbl.Str("prompt"),
		Center:      obj.Bounds.Center(),
		Bounds:      obj.Bounds,
		MaxDist:     DefaultMaxDist,
		LookMaxDist: DefaultLookMaxDist,
		LookMinDot:  DefaultLookMinDot,
		Auto:        tbl.Bool("auto"),
		Deny:        tbl.Bool("deny"),
		Props:       tbl,
		effectSets:  map[string]*effects.Set{},
	}
	if tbl.Has("maxdist") {
		it.MaxDist = tbl.Float("maxdist")
	}
	if tbl.Has("lookmaxdist") {
		it.LookMaxDist = tbl.Float("lookmaxdist")
	}
	if tbl.Has("lookmindot") {
		it.LookMinDot = tbl.Float("lookmindot")
	}

	// Zones fire by walk-in, not by prompt selection.
	it.Selectable = !it.Auto && !it.Deny
	if tbl.Has("selectable") {
		it.Selectable = tbl.Bool("selectable")
	}

	// Linked NPC: explicit "npc" property, else an NPC sharing the id.
	it.NpcID = tbl.Str("npc")
	if it.NpcID == "" {
		if _, ok := level.NPCs[id]; ok {
			it.NpcID = id
		}
	}

	it.Enabled = enablement(level.ID, it, rt)
	it.Action = func() { rt.runInteraction(level, it) }
	return it
}

// enablement builds the predicate chain, evaluated in order:
// forced-disable override, disabled-set membership, forced-enable
// override, all-of / any-of / none-of flag gates, linked-NPC movement
// suppression, required prior choice index.
func enablement(scene string, it *Interactable, rt *Runtime) func() bool {
	tbl := it.Props
	authoredDisabled := tbl.Bool("disabled")
	requireAll := tbl.List("requireall")
	requireAny := tbl.List("requireany")
	forbid := tbl.List("forbid")
	requireChoice := 0
	if tbl.Has("requirechoice") {
		requireChoice = tbl.Int("requirechoice")
	}

	return func() bool {
		s := rt.State
		if state.IsDisabled(s, scene, it.ID) {
			return false
		}
		if authoredDisabled && !state.IsForceEnabled(s, scene, it.ID) {
			return false
		}
		for _, f := range requireAll {
			if !state.FlagBool(s, f) {
				return false
			}
		}
		if len(requireAny) > 0 {
			any := false
			for _, f := range requireAny {
				if state.FlagBool(s, f) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		}
		for _, f := range forbid {
			if state.FlagBool(s, f) {
				return false
			}
		}
		if it.NpcID != "" && rt.Mover != nil && rt.Mover.Moving(it.NpcID) {
			return false
		}
		if requireChoice > 0 && state.LastChoice(s, scene, it.ID)+1 != requireChoice {
			return false
		}
		return true
	}
}

// runInteraction is the interaction runner: it selects the dialogue
// variant for this visit, assembles the script (including choice
// branches), and schedules the matching effect application.
func (rt *Runtime) runInteraction(level *types.LevelDef, it *Interactable) {
	s := rt.State
	scene := level.ID
	tbl := it.Props
	count := state.CountInteraction(s, scene, it.ID)
	defaultSpeaker := tbl.Str("speaker")
	progressive := tbl.Bool("progressive")

	var steps []types.DialogueStep
	var ev effects.Event
	var prefixes []string

	if state.IsHelped(s, scene, it.ID) {
		companions := state.PresentCompanions(s, rt.Companions)
		last := state.LastChoice(s, scene, it.ID)
		if p := dialogue.PostHelpPrefix(tbl, companions, last); p != "" {
			lines := dialogue.Lines(tbl, p, defaultSpeaker)
			visit := state.CountInteraction(s, scene, it.ID+"@posthelp")
			if progressive {
				steps = dialogue.ProgressiveSteps(lines, visit)
			} else {
				steps = dialogue.SequenceSteps(lines)
			}
			ev = effects.Event{Kind: effects.EventPostHelp}
			prefixes = []string{"posthelp"}
		}
	}

	if steps == nil {
		// Unprefixed effects fire on every pre-help activation; the
		// "once" families guard themselves. Repeat visits additionally
		// fire the repeat-prefixed set.
		if count <= 1 {
			ev = effects.Event{Kind: effects.EventFirst}
			prefixes = []string{""}
		} else {
			ev = effects.Event{Kind: effects.EventRepeat}
			prefixes = []string{"", "repeat"}
		}
		group := "dialogue"
		if ev.Kind == effects.EventRepeat && dialogue.HasGroup(tbl, "repeatdialogue") {
			group = "repeatdialogue"
		}
		lines := dialogue.Lines(tbl, group, defaultSpeaker)
		if progressive {
			steps = dialogue.ProgressiveSteps(lines, count)
		} else {
			steps = dialogue.SequenceSteps(lines)
		}

		if ev.Kind == effects.EventFirst || tbl.Bool("choicealways") {
			steps = rt.appendChoice(level, it, steps, defaultSpeaker)
		}
	}

	env := rt.Env
	env.TrackSound = rt.Runner.TrackSound
	done := func() {
		for _, prefix := range prefixes {
			effects.Apply(env, it.ID, it.Effects(prefix), ev)
		}
	}

	// Scripts with no visible steps apply their effects immediately.
	if len(steps) == 1 && steps[0].Kind == types.StepEnd {
		done()
		return
	}
	rt.Runner.Start(steps, done)
}

// appendChoice replaces the script's trailing end step with a choice
// step followed by one branch body per option. Option jumps are
// absolute indexes, so empty branches can share the common end.
func (rt *Runtime) appendChoice(level *types.LevelDef, it *Interactable, steps []types.DialogueStep, defaultSpeaker string) []types.DialogueStep {
	tbl := it.Props
	if !tbl.Has("choice1") {
		return steps
	}

	var optTexts []string
	for n := 1; ; n++ {
		key := "choice" + strconv.Itoa(n)
		if !tbl.Has(key) {
			break
		}
		optTexts = append(optTexts, tbl.Str(key))
	}

	// Drop the trailing end; the choice machinery owns script ends now.
	if n := len(steps); n > 0 && steps[n-1].Kind == types.StepEnd {
		steps = steps[:n-1]
	}

	choiceIdx := len(steps)
	endIdx := choiceIdx + 1
	choice := types.DialogueStep{
		Kind:    types.StepChoice,
		Speaker: defaultSpeaker,
		Text:    tbl.Str("choiceprompt"),
	}
	steps = append(steps, choice, types.DialogueStep{Kind: types.StepEnd})

	scene := level.ID
	env := rt.Env
	env.TrackSound = rt.Runner.TrackSound

	for n, text := range optTexts {
		optNum := n + 1
		optIdx := n
		branchPrefix := "choice" + strconv.Itoa(optNum)
		onSelect := func() {
			state.RecordChoice(rt.State, scene, it.ID, optIdx)
			effects.Apply(env, it.ID, it.Effects(branchPrefix),
				effects.Event{Kind: effects.EventChoice, Choice: optIdx})
		}

		branchLines := dialogue.Lines(tbl, branchPrefix+"dialogue", defaultSpeaker)
		next := endIdx
		if len(branchLines) > 0 {
			next = len(steps)
			for _, l := range branchLines {
				steps = append(steps, types.DialogueStep{Kind: types.StepSay, Speaker: l.Speaker, Text: l.Text})
			}
			steps = append(steps, types.DialogueStep{Kind: types.StepEnd})
		}

		steps[choiceIdx].Options = append(steps[choiceIdx].Options, types.ChoiceOption{
			Text:     text,
			Next:     next,
			OnSelect: onSelect,
		})
	}
	return steps
}
