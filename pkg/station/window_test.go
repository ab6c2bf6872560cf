package station

import (
	"testing"
	"time"
)

func TestTimedWindow_ActiveUntilExpiry(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var w TimedWindow
	if w.Active(t0) {
		t.Fatal("unarmed window should be inactive")
	}
	if w.Armed() {
		t.Fatal("unarmed window should not report armed")
	}

	w.Arm(t0, 5*time.Second)
	cases := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{4 * time.Second, true},
		{5 * time.Second, false},
		{8 * time.Second, false},
	}
	for _, c := range cases {
		if got := w.Active(t0.Add(c.offset)); got != c.want {
			t.Errorf("Active at +%v = %v, want %v", c.offset, got, c.want)
		}
	}
}

func TestTimedWindow_RearmExtends(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var w TimedWindow
	w.Arm(t0, 5*time.Second)
	w.Arm(t0.Add(3*time.Second), 5*time.Second)

	if !w.Active(t0.Add(7 * time.Second)) {
		t.Error("re-armed window should be active at +7s")
	}
	if w.Active(t0.Add(8 * time.Second)) {
		t.Error("re-armed window should be inactive at +8s")
	}
}

func TestTimedWindow_IndependentInstances(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var a, b TimedWindow
	a.Arm(t0, 10*time.Second)
	b.Arm(t0, 2*time.Second)

	at := t0.Add(5 * time.Second)
	if !a.Active(at) {
		t.Error("window a should still be active")
	}
	if b.Active(at) {
		t.Error("arming a must not extend b")
	}
}

func TestWindowTracker_ClosedFiresOnce(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var w WindowTracker
	if w.Closed(t0) {
		t.Fatal("never-armed tracker must not report closed")
	}

	w.Arm(t0, 2*time.Second)
	if w.Closed(t0.Add(time.Second)) {
		t.Fatal("tracker must not report closed while active")
	}

	if !w.Closed(t0.Add(3 * time.Second)) {
		t.Fatal("tracker should report closed on the first inactive tick")
	}
	if w.Closed(t0.Add(4 * time.Second)) {
		t.Fatal("closed must fire exactly once per cycle")
	}

	// Re-arming starts a fresh cycle.
	w.Arm(t0.Add(5*time.Second), time.Second)
	if !w.Closed(t0.Add(10 * time.Second)) {
		t.Fatal("closed should fire again after re-arm and expiry")
	}
}
