package station

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"sortstation/pkg/sensor"
)

// SelfTestReport is the outcome of one hardware self-test pass. A skipped
// check (hardware not attached) reports OK=false together with an entry in
// Errors explaining why.
type SelfTestReport struct {
	Time       time.Time `json:"time"`
	RangeOK    bool      `json:"rangeOK"`
	DistanceCM float64   `json:"distanceCM"`
	Dark       bool      `json:"dark"`
	StripOK    bool      `json:"stripOK"`
	CameraOK   bool      `json:"cameraOK"`
	Errors     []string  `json:"errors,omitempty"`
}

// OK reports whether every check of the attached hardware passed.
func (r SelfTestReport) OK() bool {
	return len(r.Errors) == 0
}

// SelfTest exercises each hardware path once: a range measurement, a light
// sensor read, a strip pulse, and a camera capture. It holds the same lock
// as Tick for the whole pass, so a self-test never interleaves with a
// control-loop iteration on the shared pins.
func (c *Controller) SelfTest(now time.Time) SelfTestReport {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	log.Info("running hardware self-test")

	report := SelfTestReport{Time: now}

	distance, err := c.ranger.Measure()
	switch {
	case err == nil:
		report.RangeOK = true
		report.DistanceCM = distance
	case errors.Is(err, sensor.ErrNoReading):
		report.Errors = append(report.Errors, "range sensor: no echo within deadline")
	default:
		report.Errors = append(report.Errors, fmt.Sprintf("range sensor: %v", err))
	}

	report.Dark = c.darkSensor.IsDark()

	if c.illum.HasStrip() {
		// Pulse the strip only when illumination is not mid-window, so a
		// self-test never cuts a live light window short.
		if !c.illum.Active(now) {
			c.illum.Activate(now, 500*time.Millisecond)
			c.illum.Deactivate()
			c.illum.Clear()
		}
		report.StripOK = true
	} else {
		report.Errors = append(report.Errors, "light strip: not attached")
	}

	if c.cam != nil {
		c.throttle.Exclusive(func() {
			frame, err := c.cam.CaptureFrame()
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("camera: %v", err))
				return
			}
			if len(frame) == 0 {
				report.Errors = append(report.Errors, "camera: empty frame")
				return
			}
			report.CameraOK = true
		})
	} else {
		report.Errors = append(report.Errors, "camera: not attached")
	}

	log.WithFields(log.Fields{
		"rangeOK":  report.RangeOK,
		"stripOK":  report.StripOK,
		"cameraOK": report.CameraOK,
		"errors":   len(report.Errors),
	}).Info("hardware self-test finished")

	return report
}
