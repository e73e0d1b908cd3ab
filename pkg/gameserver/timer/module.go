package timer

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

const (
	stateIdle = iota
	stateActive
	stateExpired
)

// The Timer type counts down simulation time. Unlike time.Timer it never
// fires on its own: the owner advances it with the frame delta and learns
// about expiry from the return value of Advance.
// A Timer must be created with New.
type Timer struct {
	l        *deadlock.Mutex // to synchronize access to the fields below
	state    int
	duration time.Duration
	left     time.Duration
}

// New returns an idle Timer that will expire after d of advanced time once
// started.
func New(d time.Duration) *Timer {
	return &Timer{
		duration: d,
		left:     d,
		l:        new(deadlock.Mutex),
	}
}

// Seconds converts a fractional number of seconds, as found in configuration
// and frame deltas, to a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Start starts or resumes the countdown.
func (t *Timer) Start() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateIdle {
		return false
	}
	t.state = stateActive
	return true
}

// Pause stops the countdown until Start is called again. The remaining
// time is kept.
func (t *Timer) Pause() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateActive {
		return false
	}
	t.state = stateIdle
	return true
}

// Paused returns true if the timer is in idle state, either because Start() hasn't been called yet
// or because Pause() was called.
func (t *Timer) Paused() bool {
	t.l.Lock()
	defer t.l.Unlock()
	return t.state == stateIdle
}

// Expired reports whether the countdown reached zero or was stopped.
func (t *Timer) Expired() bool {
	t.l.Lock()
	defer t.l.Unlock()
	return t.state == stateExpired
}

// Advance moves the countdown forward by dt. It returns true only on the
// call that makes the timer expire.
func (t *Timer) Advance(dt time.Duration) bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateActive {
		return false
	}
	t.left -= dt
	if t.left > 0 {
		return false
	}
	t.left = 0
	t.state = stateExpired
	return true
}

// Reset rearms the timer with a new duration and starts it.
func (t *Timer) Reset(d time.Duration) {
	t.l.Lock()
	defer t.l.Unlock()
	t.duration = d
	t.left = d
	t.state = stateActive
}

// SetTimeLeft adjusts the remaining time to d.
// It returns false if the timer already expired, true otherwise.
func (t *Timer) SetTimeLeft(d time.Duration) bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state == stateExpired {
		return false
	}
	t.left = d
	return true
}

// Stop prevents the Timer from expiring. It returns true if the call stops the timer,
// false if the timer has already expired or been stopped.
func (t *Timer) Stop() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state == stateExpired {
		return false
	}
	t.state = stateExpired
	t.left = 0
	return true
}

// Duration returns the duration the timer was last armed with.
func (t *Timer) Duration() time.Duration {
	t.l.Lock()
	defer t.l.Unlock()
	return t.duration
}

// TimeLeft returns the duration left to run before the timer expires.
// TimeLeft is safe to be called on a nil timer and will return 0 in that case.
func (t *Timer) TimeLeft() time.Duration {
	if t == nil {
		return 0
	}

	t.l.Lock()
	defer t.l.Unlock()

	switch t.state {
	case stateIdle, stateActive:
		return t.left
	case stateExpired:
		return 0
	default:
		panic("unhandled timer state")
	}
}
