// Package dialogue executes dialogue scripts: ordered typed steps with
// typing animation, input gating, branching jumps, and sound tracking.
package dialogue

import (
	"github.com/nathoo/wandercore/types"
	"github.com/nathoo/wandercore/world"
)

// RunState is the runner's state machine state.
type RunState int

const (
	Idle RunState = iota
	Typing
	AwaitingAdvance
	InChoice
	Stopped
)

func (s RunState) String() string {
	names := [...]string{"idle", "typing", "awaiting_advance", "in_choice", "stopped"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Config tunes the runner's timing.
type Config struct {
	TypeIntervalMs  int // per-character reveal interval
	InputCooldownMs int // gate between any two accepted inputs
	LockCooldownMs  int // world-interaction lock held after a stop
}

// DefaultConfig returns the standard timing.
func DefaultConfig() Config {
	return Config{TypeIntervalMs: 30, InputCooldownMs: 200, LockCooldownMs: 250}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TypeIntervalMs <= 0 {
		c.TypeIntervalMs = d.TypeIntervalMs
	}
	if c.InputCooldownMs <= 0 {
		c.InputCooldownMs = d.InputCooldownMs
	}
	if c.LockCooldownMs <= 0 {
		c.LockCooldownMs = d.LockCooldownMs
	}
	return c
}

// Runner executes one script at a time. All methods are called from the
// single frame tick; nothing blocks.
type Runner struct {
	cfg Config

	steps   []types.DialogueStep
	index   int
	run     RunState
	text    []rune // current step's full text
	visible int    // revealed rune count
	typeAcc int    // ms accumulated toward the next character
	pauseMs int    // remaining pause for a pause step

	gateMs   int // input acceptance cooldown
	lockMs   int // world-interaction lock cooldown after stop
	selected int

	onDone    func()
	doneFired bool
	sounds    []world.Sound
}

// NewRunner creates a runner with the given timing. Zero fields fall
// back to defaults.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg.withDefaults(), run: Idle}
}

// Start begins executing a script at step 0. A script already running
// is cancelled first (without firing its completion callback).
func (r *Runner) Start(steps []types.DialogueStep, onDone func()) {
	if r.Active() {
		r.Stop()
	}
	r.steps = steps
	r.onDone = onDone
	r.doneFired = false
	r.index = 0
	r.lockMs = 0
	r.sounds = nil
	r.enter()
}

// Active reports whether a script is being executed.
func (r *Runner) Active() bool {
	switch r.run {
	case Typing, AwaitingAdvance, InChoice:
		return true
	default:
		return false
	}
}

// WorldLocked reports whether world interaction should stay suppressed:
// while the script runs and for a short cooldown after it stops, so a
// single physical press never registers as both "advance dialogue" and
// "re-trigger interaction".
func (r *Runner) WorldLocked() bool {
	return r.Active() || r.lockMs > 0
}

// State returns the current machine state.
func (r *Runner) State() RunState { return r.run }

// Speaker returns the current step's speaker, or "".
func (r *Runner) Speaker() string {
	if s, ok := r.current(); ok {
		return s.Speaker
	}
	return ""
}

// VisibleText returns the portion of the current text revealed so far.
func (r *Runner) VisibleText() string {
	if r.visible >= len(r.text) {
		return string(r.text)
	}
	return string(r.text[:r.visible])
}

// Options returns the current choice options, or nil outside a choice.
func (r *Runner) Options() []types.ChoiceOption {
	if r.run != InChoice {
		return nil
	}
	if s, ok := r.current(); ok {
		return s.Options
	}
	return nil
}

// Selected returns the highlighted option index.
func (r *Runner) Selected() int { return r.selected }

// TrackSound registers a sound the runner must stop when it stops.
func (r *Runner) TrackSound(s world.Sound) {
	if s != nil {
		r.sounds = append(r.sounds, s)
	}
}

// Tick advances timers: typing reveal, pause steps, and cooldowns.
func (r *Runner) Tick(dtMs int) {
	if r.gateMs > 0 {
		r.gateMs -= dtMs
	}
	if r.lockMs > 0 {
		r.lockMs -= dtMs
	}
	if r.run != Typing {
		return
	}

	step, ok := r.current()
	if !ok {
		r.finish()
		return
	}

	if step.Kind == types.StepPause {
		r.pauseMs -= dtMs
		if r.pauseMs <= 0 {
			r.advance()
		}
		return
	}

	r.typeAcc += dtMs
	for r.typeAcc >= r.cfg.TypeIntervalMs && r.visible < len(r.text) {
		r.typeAcc -= r.cfg.TypeIntervalMs
		r.visible++
	}
	if r.visible >= len(r.text) {
		r.textDone(step)
	}
}

// Confirm handles the confirm input. During typing it completes the
// text instantly (never skipping the step); while awaiting it advances;
// in a choice it fires the selected option.
func (r *Runner) Confirm() {
	step, ok := r.current()
	if !ok {
		return
	}
	// Pause steps accept no input at all.
	if r.run == Typing && step.Kind == types.StepPause {
		return
	}
	if !r.acceptInput() {
		return
	}

	switch r.run {
	case Typing:
		r.visible = len(r.text)
		r.textDone(step)

	case AwaitingAdvance:
		r.advance()

	case InChoice:
		if len(step.Options) == 0 {
			r.advance()
			return
		}
		opt := step.Options[r.selected]
		if opt.OnSelect != nil {
			opt.OnSelect()
		}
		if opt.Next >= 0 {
			r.index = opt.Next
			r.enter()
		} else {
			r.advance()
		}
	}
}

// Up moves the choice selection up, wrapping.
func (r *Runner) Up() { r.moveSelection(-1) }

// Down moves the choice selection down, wrapping.
func (r *Runner) Down() { r.moveSelection(1) }

func (r *Runner) moveSelection(delta int) {
	if r.run != InChoice || !r.acceptInput() {
		return
	}
	step, ok := r.current()
	if !ok || len(step.Options) == 0 {
		return
	}
	n := len(step.Options)
	r.selected = (r.selected + delta + n) % n
}

// Stop cancels the script. It is idempotent, does not fire the
// completion callback, stops every tracked sound, and schedules the
// world-interaction release cooldown.
func (r *Runner) Stop() {
	if r.run == Stopped || r.run == Idle {
		return
	}
	r.doneFired = true // completion callback never fires after a cancel
	r.halt()
}

// acceptInput consumes the input gate, returning false while the
// cooldown window from the previous accepted input is still open.
func (r *Runner) acceptInput() bool {
	if r.gateMs > 0 {
		return false
	}
	r.gateMs = r.cfg.InputCooldownMs
	return true
}

func (r *Runner) current() (types.DialogueStep, bool) {
	if r.index < 0 || r.index >= len(r.steps) {
		return types.DialogueStep{}, false
	}
	return r.steps[r.index], true
}

// enter initializes the step at the current index, running through
// non-blocking steps synchronously.
func (r *Runner) enter() {
	for {
		step, ok := r.current()
		if !ok || step.Kind == types.StepEnd {
			r.finish()
			return
		}

		switch step.Kind {
		case types.StepAction:
			if step.Run != nil {
				step.Run()
			}
			r.index++
			continue

		case types.StepPause:
			r.pauseMs = step.PauseMs
			r.run = Typing
			return

		default: // say, choice
			r.text = []rune(step.Text)
			r.visible = 0
			r.typeAcc = 0
			r.selected = 0
			r.run = Typing
			if len(r.text) == 0 {
				r.textDone(step)
			}
			return
		}
	}
}

// textDone transitions out of typing once the full text is revealed.
func (r *Runner) textDone(step types.DialogueStep) {
	if step.Kind == types.StepChoice {
		r.run = InChoice
		return
	}
	r.run = AwaitingAdvance
}

func (r *Runner) advance() {
	r.index++
	r.enter()
}

// finish is the normal completion path: fires the callback exactly
// once, then halts.
func (r *Runner) finish() {
	if !r.doneFired {
		r.doneFired = true
		if r.onDone != nil {
			r.onDone()
		}
	}
	r.halt()
}

// halt releases input, stops tracked sounds, and schedules the world
// lock cooldown. Safe to call repeatedly.
func (r *Runner) halt() {
	r.run = Stopped
	r.lockMs = r.cfg.LockCooldownMs
	for _, s := range r.sounds {
		s.Stop()
	}
	r.sounds = nil
	r.text = nil
	r.visible = 0
}
