package station

import (
	"testing"
	"time"

	"sortstation/pkg/hw"
)

type fakeStrip struct {
	color  hw.Color
	shows  int
	closed bool
}

func (f *fakeStrip) SetAll(c hw.Color) error { f.color = c; return nil }
func (f *fakeStrip) Show() error             { f.shows++; return nil }
func (f *fakeStrip) Close() error            { f.closed = true; return nil }

func TestIllumination_ActivateLightsStrip(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	strip := &fakeStrip{}
	l := NewIllumination(strip, hw.White)

	l.Activate(t0, 5*time.Second)

	if strip.color != hw.White {
		t.Errorf("strip color = %+v, want white", strip.color)
	}
	if strip.shows != 1 {
		t.Errorf("shows = %d, want 1", strip.shows)
	}
	if !l.Active(t0.Add(4 * time.Second)) {
		t.Error("should be active before expiry")
	}
	if l.Active(t0.Add(5 * time.Second)) {
		t.Error("should be inactive at expiry")
	}
}

func TestIllumination_DeactivateKeepsExpiry(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	strip := &fakeStrip{}
	l := NewIllumination(strip, hw.White)

	l.Activate(t0, 10*time.Second)
	l.Deactivate()

	if strip.color != hw.Off {
		t.Errorf("strip color = %+v, want off", strip.color)
	}
	if l.On() {
		t.Error("On should be false after Deactivate")
	}
	// The window is still open; only the hardware was switched off.
	if !l.Active(t0.Add(time.Second)) {
		t.Error("Deactivate must not touch the expiry")
	}

	l.Clear()
	if l.Active(t0.Add(time.Second)) {
		t.Error("Clear should drop the expiry")
	}
	if l.Armed() {
		t.Error("Clear should drop the armed state")
	}
}

func TestIllumination_RearmExtendsWindow(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIllumination(&fakeStrip{}, hw.White)

	l.Activate(t0, 5*time.Second)
	l.Activate(t0.Add(4*time.Second), 5*time.Second)

	if !l.Active(t0.Add(8 * time.Second)) {
		t.Error("re-activation should extend the window to +9s")
	}
	if l.Active(t0.Add(9 * time.Second)) {
		t.Error("window should expire at +9s")
	}
}

func TestIllumination_RedundantApplySkipsHardware(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	strip := &fakeStrip{}
	l := NewIllumination(strip, hw.White)

	l.Activate(t0, 5*time.Second)
	l.Activate(t0.Add(time.Second), 5*time.Second)

	if strip.shows != 1 {
		t.Errorf("shows = %d, re-activating while lit should not rewrite the strip", strip.shows)
	}

	l.Deactivate()
	l.Deactivate()
	if strip.shows != 2 {
		t.Errorf("shows = %d, repeated Deactivate should write the strip once", strip.shows)
	}
}

func TestIllumination_NilStrip(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIllumination(nil, hw.White)

	l.Activate(t0, 5*time.Second)
	if !l.On() {
		t.Error("window bookkeeping should run without hardware")
	}
	if l.HasStrip() {
		t.Error("HasStrip should be false")
	}
	l.Deactivate()
}
