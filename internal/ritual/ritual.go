// Package ritual is the focus timer: a work countdown followed by a break.
package ritual

import (
	"fmt"
	"time"
)

// Mode is the current ritual phase.
type Mode int

const (
	None Mode = iota
	Work
	Break
)

func (m Mode) String() string {
	switch m {
	case Work:
		return "work"
	case Break:
		return "break"
	default:
		return "none"
	}
}

// Event is what a Tick produced.
type Event int

const (
	NoEvent Event = iota
	WorkDone
	BreakDone
)

// Timer counts down whole seconds like a wall clock.
type Timer struct {
	WorkLength  time.Duration
	BreakLength time.Duration

	mode      Mode
	remaining int // seconds
	running   bool
	carry     time.Duration
}

// New returns an idle timer.
func New(work, brk time.Duration) *Timer {
	return &Timer{WorkLength: work, BreakLength: brk}
}

// Start begins a countdown in mode. Starting None stops the timer.
func (t *Timer) Start(m Mode) {
	t.carry = 0
	switch m {
	case Work:
		t.mode, t.remaining, t.running = Work, int(t.WorkLength/time.Second), true
	case Break:
		t.mode, t.remaining, t.running = Break, int(t.BreakLength/time.Second), true
	default:
		t.Stop()
	}
}

// Stop abandons the ritual.
func (t *Timer) Stop() {
	t.mode, t.remaining, t.running, t.carry = None, 0, false, 0
}

func (t *Timer) Mode() Mode { return t.mode }
func (t *Timer) Active() bool { return t.mode != None }
func (t *Timer) Remaining() int { return t.remaining }
func (t *Timer) Running() bool { return t.running }

// Tick advances the clock by elapsed. A finished work countdown rolls
// straight into a break.
func (t *Timer) Tick(elapsed time.Duration) Event {
	if !t.running {
		return NoEvent
	}
	t.carry += elapsed
	for t.carry >= time.Second && t.remaining > 0 {
		t.carry -= time.Second
		t.remaining--
	}
	if t.remaining > 0 {
		return NoEvent
	}
	if t.mode == Work {
		t.Start(Break)
		return WorkDone
	}
	t.Stop()
	return BreakDone
}

// Clock renders the remaining time as M:SS.
func (t *Timer) Clock() string {
	return FormatClock(t.remaining)
}

// FormatClock renders seconds as M:SS.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
