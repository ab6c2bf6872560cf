package station

import (
	"time"

	log "github.com/sirupsen/logrus"

	"sortstation/pkg/hw"
)

// Illumination drives the light strip off a TimedWindow. The physical
// on/off state follows the window on every Sync; Deactivate turns the
// hardware off without touching the expiry, so a live window will switch
// the light back on at the next Sync.
type Illumination struct {
	strip hw.LightArray
	win   TimedWindow
	color hw.Color
	on    bool
}

// NewIllumination returns an Illumination over strip. A nil strip is
// allowed; all hardware operations become no-ops and only the window
// bookkeeping runs.
func NewIllumination(strip hw.LightArray, color hw.Color) *Illumination {
	return &Illumination{
		strip: strip,
		color: color,
	}
}

// Activate opens (or extends) the lit window to now + d and turns the
// strip on.
func (l *Illumination) Activate(now time.Time, d time.Duration) {
	l.win.Arm(now, d)
	l.apply(true)
}

// Deactivate turns the strip off. The window expiry is left as-is.
func (l *Illumination) Deactivate() {
	l.apply(false)
}

// Active reports whether the lit window is open at now.
func (l *Illumination) Active(now time.Time) bool {
	return l.win.Active(now)
}

// Armed reports whether the window has been opened since the last Clear.
func (l *Illumination) Armed() bool {
	return l.win.Armed()
}

// Clear drops the window expiry without touching the hardware.
func (l *Illumination) Clear() {
	l.win.Clear()
}

// On reports the last commanded hardware state.
func (l *Illumination) On() bool {
	return l.on
}

// HasStrip reports whether a physical strip is attached.
func (l *Illumination) HasStrip() bool {
	return l.strip != nil
}

func (l *Illumination) apply(on bool) {
	if on == l.on {
		return
	}
	l.on = on
	if l.strip == nil {
		return
	}

	color := hw.Off
	if on {
		color = l.color
	}
	if err := l.strip.SetAll(color); err != nil {
		log.WithError(err).Error("failed to set light strip color")
		return
	}
	if err := l.strip.Show(); err != nil {
		log.WithError(err).Error("failed to show light strip color")
	}
}
