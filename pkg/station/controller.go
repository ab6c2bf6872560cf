package station

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sortstation/pkg/config"
	"sortstation/pkg/hw"
	"sortstation/pkg/sensor"
)

// Ranger measures distance in centimeters.
type Ranger interface {
	Measure() (float64, error)
}

// DarkSensor reports whether the environment is dark.
type DarkSensor interface {
	IsDark() bool
}

// Display consumes station snapshots. Render must not block; slow
// consumers should buffer internally.
type Display interface {
	Render(Snapshot)
}

// Snapshot is the externally visible state of the station, rebuilt from
// scratch on every tick. Consumers treat it as read-only.
type Snapshot struct {
	Time           time.Time `json:"time"`
	DistanceCM     float64   `json:"distanceCM"`
	HasReading     bool      `json:"hasReading"`
	Dark           bool      `json:"dark"`
	Motion         bool      `json:"motion"`
	LightOn        bool      `json:"lightOn"`
	CameraActive   bool      `json:"cameraActive"`
	Classification Result    `json:"classification"`
}

// Controller runs the station's periodic control loop. All decision state
// (windows, motion baseline, current classification) is touched only under
// opMu, which Tick, SelfTest and Teardown share, so the API and scheduler
// goroutines can drive the same hardware as the loop. The snapshot and
// current result are additionally readable from any goroutine.
type Controller struct {
	conf       config.Config
	ranger     Ranger
	darkSensor DarkSensor
	motion     *sensor.Motion
	illum      *Illumination
	cam        hw.Camera
	clf        hw.Classifier
	camWindow  WindowTracker
	throttle   Throttle
	displays   []Display

	opMu sync.Mutex

	mu      sync.RWMutex
	current Result
	last    Snapshot

	prevLogged Snapshot
	hasLogged  bool
}

// NewController wires the control loop together. cam and clf may be nil
// when the station runs without a camera; classification is then skipped
// while the rest of the loop behaves normally.
func NewController(conf config.Config, ranger Ranger, darkSensor DarkSensor, illum *Illumination, cam hw.Camera, clf hw.Classifier, displays ...Display) *Controller {
	return &Controller{
		conf:       conf,
		ranger:     ranger,
		darkSensor: darkSensor,
		motion:     sensor.NewMotion(conf.MotionDeltaCM()),
		illum:      illum,
		cam:        cam,
		clf:        clf,
		displays:   displays,
		current:    Result{Category: CategoryWaiting},
	}
}

// Tick executes one iteration of the control sequence: measure, arm
// windows, classify or reset on window expiry, reconcile illumination,
// then publish a snapshot. A sensor failure never aborts the tick; the
// affected decision branch is simply skipped.
func (c *Controller) Tick(now time.Time) Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.motion.SetDelta(c.conf.MotionDeltaCM())

	distance, err := c.ranger.Measure()
	hasReading := err == nil
	if err != nil && !errors.Is(err, sensor.ErrNoReading) {
		log.WithError(err).Error("range measurement failed")
	}

	dark := c.darkSensor.IsDark()

	moved := false
	if hasReading {
		moved = c.motion.Observe(distance)
		if distance <= c.conf.MotionThresholdCM() {
			c.camWindow.Arm(now, c.conf.CameraWindow())
			if dark {
				c.illum.Activate(now, c.conf.LightDuration())
			}
		}
	} else {
		// A missed echo invalidates the motion baseline. The next sample
		// must not be compared against the pre-gap distance.
		c.motion.Reset()
	}

	if c.camWindow.Active(now) {
		if c.cam != nil && c.clf != nil {
			if res, ok := c.throttle.TryClassify(now, c.conf.ClassifyCooldown(), c.conf.MinConfidence(), c.cam, c.clf); ok {
				c.setCurrent(res)
			}
		}
	} else if c.camWindow.Closed(now) {
		c.setCurrent(Result{Category: CategoryWaiting})
		c.throttle.Reset()
	}

	if !c.illum.Active(now) && c.illum.On() {
		c.illum.Deactivate()
		c.illum.Clear()
	}

	snap := Snapshot{
		Time:           now,
		DistanceCM:     distance,
		HasReading:     hasReading,
		Dark:           dark,
		Motion:         moved,
		LightOn:        c.illum.On(),
		CameraActive:   c.camWindow.Active(now),
		Classification: c.Current(),
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()

	c.logStatus(snap)

	for _, d := range c.displays {
		d.Render(snap)
	}

	return snap
}

// Run executes Tick at the configured polling interval until ctx is
// canceled. The sleep between ticks is the only suspension point.
func (c *Controller) Run(ctx context.Context) {
	log.WithFields(log.Fields{
		"pollInterval": c.conf.PollInterval(),
	}).Info("starting station control loop")

	for {
		c.Tick(time.Now())

		select {
		case <-ctx.Done():
			log.Info("station control loop stopped")
			return
		case <-time.After(c.conf.PollInterval()):
		}
	}
}

// Teardown releases the resources the loop drives: illumination is forced
// off and the camera is released. Each step failing is logged and ignored
// so one failed release cannot block the others.
func (c *Controller) Teardown() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.illum.Deactivate()
	c.illum.Clear()

	if c.cam != nil {
		if err := c.cam.Close(); err != nil {
			log.WithError(err).Error("failed to release camera")
		}
	}
}

// Snapshot returns the snapshot built by the most recent tick. Safe to
// call from any goroutine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Current returns the current classification result.
func (c *Controller) Current() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Idle reports whether the camera window is inactive, i.e. the station is
// not mid-observation. Safe to call from any goroutine.
func (c *Controller) Idle(now time.Time) bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return !c.camWindow.Active(now)
}

func (c *Controller) setCurrent(r Result) {
	c.mu.Lock()
	c.current = r
	c.mu.Unlock()
}

// logStatus logs the snapshot only when something other than the raw
// distance changed, to keep the journal readable at a 200ms poll rate.
func (c *Controller) logStatus(snap Snapshot) {
	changed := !c.hasLogged ||
		snap.HasReading != c.prevLogged.HasReading ||
		snap.Dark != c.prevLogged.Dark ||
		snap.Motion != c.prevLogged.Motion ||
		snap.LightOn != c.prevLogged.LightOn ||
		snap.CameraActive != c.prevLogged.CameraActive ||
		snap.Classification != c.prevLogged.Classification
	if !changed {
		return
	}
	c.prevLogged = snap
	c.hasLogged = true

	log.WithFields(log.Fields{
		"distanceCM":   snap.DistanceCM,
		"hasReading":   snap.HasReading,
		"dark":         snap.Dark,
		"motion":       snap.Motion,
		"lightOn":      snap.LightOn,
		"cameraActive": snap.CameraActive,
		"category":     snap.Classification.Category,
		"confidence":   snap.Classification.Confidence,
	}).Info("station status")
}
