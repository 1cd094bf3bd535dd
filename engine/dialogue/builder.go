package dialogue

import (
	"strconv"

	"github.com/nathoo/wandercore/engine/props"
	"github.com/nathoo/wandercore/types"
)

// Line is one authored dialogue line with its resolved speaker.
type Line struct {
	Speaker string
	Text    string
}

// LineKey returns the property key for the nth line (1-based) of a
// numbered group: "prefix", "prefix2", "prefix3", ...
func LineKey(prefix string, n int) string {
	if n <= 1 {
		return prefix
	}
	return prefix + strconv.Itoa(n)
}

// Lines collects the numbered lines of a property group, stopping at
// the first gap. The speaker for each line resolves line-specific
// override ("prefixNspeaker") first, then the group override
// ("prefixspeaker"), then the interaction default.
func Lines(tbl props.Table, prefix, defaultSpeaker string) []Line {
	groupSpeaker := tbl.Str(prefix + "speaker")
	if groupSpeaker == "" {
		groupSpeaker = defaultSpeaker
	}

	var out []Line
	for n := 1; ; n++ {
		key := LineKey(prefix, n)
		if !tbl.Has(key) {
			break
		}
		speaker := tbl.Str(key + "speaker")
		if speaker == "" {
			speaker = groupSpeaker
		}
		out = append(out, Line{Speaker: speaker, Text: tbl.Str(key)})
	}
	return out
}

// HasGroup reports whether a numbered group has at least one line.
func HasGroup(tbl props.Table, prefix string) bool {
	return tbl.Has(prefix)
}

// SequenceSteps turns a whole line run into say steps ending the script.
func SequenceSteps(lines []Line) []types.DialogueStep {
	steps := make([]types.DialogueStep, 0, len(lines)+1)
	for _, l := range lines {
		steps = append(steps, types.DialogueStep{Kind: types.StepSay, Speaker: l.Speaker, Text: l.Text})
	}
	steps = append(steps, types.DialogueStep{Kind: types.StepEnd})
	return steps
}

// ProgressiveSteps shows exactly one line per visit: visit K (1-based)
// shows line K, clamped at the last line for later visits.
func ProgressiveSteps(lines []Line, visit int) []types.DialogueStep {
	if len(lines) == 0 {
		return []types.DialogueStep{{Kind: types.StepEnd}}
	}
	idx := visit - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(lines) {
		idx = len(lines) - 1
	}
	l := lines[idx]
	return []types.DialogueStep{
		{Kind: types.StepSay, Speaker: l.Speaker, Text: l.Text},
		{Kind: types.StepEnd},
	}
}

// PostHelpPrefix selects the property group for an already-helped
// interaction. Priority: a "both companions present" variant, then a
// single-companion variant (roster order), then the variant for the
// last taken choice, then the generic post-help group. Returns "" when
// the object authored no post-help dialogue at all.
func PostHelpPrefix(tbl props.Table, companions []string, lastChoice int) string {
	if len(companions) >= 2 && HasGroup(tbl, "helpeddialogueboth") {
		return "helpeddialogueboth"
	}
	for _, c := range companions {
		if HasGroup(tbl, "helpeddialogue"+c) {
			return "helpeddialogue" + c
		}
	}
	if lastChoice >= 0 {
		variant := "choice" + strconv.Itoa(lastChoice+1) + "postdialogue"
		if HasGroup(tbl, variant) {
			return variant
		}
	}
	if HasGroup(tbl, "helpeddialogue") {
		return "helpeddialogue"
	}
	return ""
}
