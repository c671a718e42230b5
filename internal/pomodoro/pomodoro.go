// Package pomodoro implements the focus/break countdown state machine.
package pomodoro

import "time"

// Phase is the side of the cycle the timer is in.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Timer counts one phase down one second at a time. Reaching zero flips the
// phase, reloads the new phase's duration, and stops; the user has to start
// the next phase explicitly.
type Timer struct {
	focus    time.Duration
	brk      time.Duration
	phase    Phase
	left     time.Duration
	active   bool
	sessions int
}

// New returns a stopped timer in the focus phase. Non-positive durations
// fall back to 25/5 minutes.
func New(focus, brk time.Duration) *Timer {
	if focus <= 0 {
		focus = 25 * time.Minute
	}
	if brk <= 0 {
		brk = 5 * time.Minute
	}
	return &Timer{
		focus: focus,
		brk:   brk,
		phase: PhaseFocus,
		left:  focus,
	}
}

// Toggle starts a paused timer and pauses a running one.
func (t *Timer) Toggle() {
	t.active = !t.active
}

// Active reports whether the countdown is running.
func (t *Timer) Active() bool {
	return t.active
}

// Phase returns the current phase.
func (t *Timer) Phase() Phase {
	return t.phase
}

// Remaining returns the time left in the current phase.
func (t *Timer) Remaining() time.Duration {
	return t.left
}

// Sessions returns how many focus phases have completed.
func (t *Timer) Sessions() int {
	return t.sessions
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (t *Timer) Progress() float64 {
	total := t.phaseDuration()
	if total <= 0 {
		return 0
	}
	return float64(total-t.left) / float64(total)
}

// Tick advances the countdown by one second. It does nothing while the
// timer is paused. When the phase reaches zero the session counter is
// incremented if a focus phase ended, the phase flips, the new duration is
// loaded, and the timer stops.
func (t *Timer) Tick() {
	if !t.active {
		return
	}
	if t.left > time.Second {
		t.left -= time.Second
		return
	}
	t.left = 0
	if t.phase == PhaseFocus {
		t.sessions++
		t.phase = PhaseBreak
	} else {
		t.phase = PhaseFocus
	}
	t.left = t.phaseDuration()
	t.active = false
}

// Reset forces the timer back to a full, stopped focus phase. The session
// count is kept.
func (t *Timer) Reset() {
	t.active = false
	t.phase = PhaseFocus
	t.left = t.focus
}

func (t *Timer) phaseDuration() time.Duration {
	if t.phase == PhaseBreak {
		return t.brk
	}
	return t.focus
}
