// Package station implements the sensor-fusion control loop of the
// waste-classification station: timed activation windows, illumination,
// throttled classification and the per-tick state machine that ties them
// together.
package station

import "time"

// TimedWindow is a single "active until T" value. Activity is always
// derived from the expiry timestamp, never stored as a flag, so the flag
// can never drift from the timer.
type TimedWindow struct {
	expiry time.Time
}

// Arm sets expiry = now + d, unconditionally overwriting any prior expiry.
// Re-arming before expiry always extends the window.
func (w *TimedWindow) Arm(now time.Time, d time.Duration) {
	w.expiry = now.Add(d)
}

// Active reports whether the window is open at now.
func (w *TimedWindow) Active(now time.Time) bool {
	return now.Before(w.expiry)
}

// Armed reports whether the window has ever been armed since the last
// Clear. Used to distinguish "expired" from "never opened".
func (w *TimedWindow) Armed() bool {
	return !w.expiry.IsZero()
}

// Clear drops the expiry entirely.
func (w *TimedWindow) Clear() {
	w.expiry = time.Time{}
}

// WindowTracker is a TimedWindow that additionally reports the moment the
// window closes, exactly once per arm/expire cycle, so dependent state can
// be reset on the transition instead of on every tick while inactive.
type WindowTracker struct {
	win       TimedWindow
	wasActive bool
}

// Arm opens (or extends) the window.
func (t *WindowTracker) Arm(now time.Time, d time.Duration) {
	t.win.Arm(now, d)
	t.wasActive = true
}

// Active reports whether the window is open at now.
func (t *WindowTracker) Active(now time.Time) bool {
	return t.win.Active(now)
}

// Closed reports true exactly once when an armed window is first observed
// inactive. Subsequent calls return false until the window is armed again.
func (t *WindowTracker) Closed(now time.Time) bool {
	if t.wasActive && !t.win.Active(now) {
		t.wasActive = false
		return true
	}
	return false
}
