package realtime

import "time"

// Timer is a cancelable deadline owned by a game session. It never fires on
// its own: the owner polls Due/Fire with the current time, and a session loop
// sleeps until the earliest Deadline. A Timer with Interval > 0 repeats.
//
// Suspend freezes the remaining time (pause); Resume re-arms it relative to
// the resume instant.
type Timer struct {
	Interval time.Duration

	at        time.Time
	remaining time.Duration
	armed     bool
	suspended bool
}

// Schedule arms a one-shot deadline d after now, replacing any pending one.
func (t *Timer) Schedule(now time.Time, d time.Duration) {
	t.Interval = 0
	t.arm(now, d)
}

// Every arms a repeating deadline firing every d, the first one d after now.
func (t *Timer) Every(now time.Time, d time.Duration) {
	t.Interval = d
	t.arm(now, d)
}

func (t *Timer) arm(now time.Time, d time.Duration) {
	t.at = now.Add(d)
	t.remaining = 0
	t.armed = true
	t.suspended = false
}

// Cancel disarms the timer. Cancelling an idle timer is a no-op.
func (t *Timer) Cancel() {
	t.at = time.Time{}
	t.remaining = 0
	t.armed = false
	t.suspended = false
}

// Armed reports whether the timer is pending, suspended or not.
func (t *Timer) Armed() bool {
	return t.armed
}

// Suspended reports whether the timer is armed but frozen.
func (t *Timer) Suspended() bool {
	return t.armed && t.suspended
}

// Deadline returns the next firing time. ok is false when the timer is idle
// or suspended.
func (t *Timer) Deadline() (at time.Time, ok bool) {
	if !t.armed || t.suspended {
		return time.Time{}, false
	}
	return t.at, true
}

// Remaining returns how long until the timer fires, zero if idle.
func (t *Timer) Remaining(now time.Time) time.Duration {
	if !t.armed {
		return 0
	}
	if t.suspended {
		return t.remaining
	}
	left := t.at.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Due reports whether the deadline has passed. The deadline instant itself
// is not due yet.
func (t *Timer) Due(now time.Time) bool {
	at, ok := t.Deadline()
	return ok && now.After(at)
}

// Fire consumes one due deadline and returns the instant it was scheduled
// for. A repeating timer moves to its next period, a one-shot timer disarms.
func (t *Timer) Fire(now time.Time) (at time.Time, fired bool) {
	if !t.Due(now) {
		return time.Time{}, false
	}
	at = t.at
	if t.Interval > 0 {
		t.at = t.at.Add(t.Interval)
	} else {
		t.Cancel()
	}
	return at, true
}

// Suspend freezes the timer, keeping the time left until its deadline.
func (t *Timer) Suspend(now time.Time) {
	if !t.armed || t.suspended {
		return
	}
	t.remaining = t.Remaining(now)
	t.suspended = true
}

// Resume re-arms a suspended timer so it fires after the time it had left.
func (t *Timer) Resume(now time.Time) {
	if !t.armed || !t.suspended {
		return
	}
	t.at = now.Add(t.remaining)
	t.remaining = 0
	t.suspended = false
}

// Earliest returns the soonest deadline among timers. ok is false when none
// of them is running.
func Earliest(timers ...*Timer) (next time.Time, ok bool) {
	for _, t := range timers {
		at, armed := t.Deadline()
		if !armed {
			continue
		}
		if !ok || at.Before(next) {
			next = at
			ok = true
		}
	}
	return next, ok
}
