// Package config holds the station's runtime-tunable parameters.
package config

import "time"

// Config is the interface the daemon and the control loop read their
// parameters from. Getters are safe for concurrent use with setters.
type Config interface {
	// MotionThresholdCM is the maximum distance at which an object is
	// considered present in front of the sensor.
	MotionThresholdCM() float64
	// MotionDeltaCM is the minimum change between consecutive readings
	// that counts as motion.
	MotionDeltaCM() float64
	// PollInterval is the control-loop tick interval.
	PollInterval() time.Duration
	// LightDuration is how long the light stays on after being triggered
	// in a dark environment.
	LightDuration() time.Duration
	// CameraWindow is how long the camera stays active after an object
	// is detected.
	CameraWindow() time.Duration
	// ClassifyCooldown is the minimum time between two classification
	// attempts.
	ClassifyCooldown() time.Duration
	// MinConfidence is the acceptance threshold (percent) below which
	// detections are ignored.
	MinConfidence() float64
	// SelfTestCron is the cron expression for scheduled hardware
	// self-tests, empty when disabled.
	SelfTestCron() string
	AllowNonRootAccess() bool

	SetMotionThresholdCM(float64)
	SetMotionDeltaCM(float64)
	SetPollIntervalMS(int)
	SetLightSeconds(float64)
	SetCameraSeconds(float64)
	SetCooldownSeconds(float64)
	SetMinConfidence(float64)
	SetSelfTestCron(string)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
