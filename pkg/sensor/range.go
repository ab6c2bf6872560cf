// Package sensor implements the station's input sensors on top of the
// hw.DigitalIO capability.
package sensor

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"sortstation/pkg/hw"
)

// ErrNoReading is returned when the echo line does not produce a complete
// pulse within the measurement deadline. It is an expected condition (no
// object in range, or a stuck line), not a hardware fault.
var ErrNoReading = errors.New("no echo within deadline")

const (
	triggerPulseWidth = 10 * time.Microsecond
	echoTimeout       = 100 * time.Millisecond
	// speedOfSoundCMS is the speed of sound in cm/s at room temperature.
	speedOfSoundCMS = 34300.0
)

// Range measures distance with an ultrasonic trigger/echo pair (HC-SR04
// style). It owns no state besides the pin assignments; every call is an
// independent measurement.
type Range struct {
	io      hw.DigitalIO
	trigger int
	echo    int
	timeout time.Duration
}

// NewRange returns a range sensor on the given trigger/echo pins.
func NewRange(io hw.DigitalIO, triggerPin, echoPin int) *Range {
	return &Range{
		io:      io,
		trigger: triggerPin,
		echo:    echoPin,
		timeout: echoTimeout,
	}
}

// Measure emits one trigger pulse and converts the echo round-trip time to
// a distance in centimeters. It returns ErrNoReading when the echo line is
// stuck (high or low) past the deadline; both wait loops check against one
// deadline fixed at call entry, so a stuck line can never extend the wait.
func (s *Range) Measure() (float64, error) {
	logrus.Tracef("range measure on trigger=%d echo=%d", s.trigger, s.echo)

	if err := s.io.Write(s.trigger, true); err != nil {
		return 0, pkgerrors.Wrap(err, "failed to raise trigger")
	}
	time.Sleep(triggerPulseWidth)
	if err := s.io.Write(s.trigger, false); err != nil {
		return 0, pkgerrors.Wrap(err, "failed to lower trigger")
	}

	deadline := time.Now().Add(s.timeout)

	pulseStart, err := s.waitEcho(true, deadline)
	if err != nil {
		return 0, err
	}
	pulseEnd, err := s.waitEcho(false, deadline)
	if err != nil {
		return 0, err
	}

	distance := pulseEnd.Sub(pulseStart).Seconds() * speedOfSoundCMS / 2
	return distance, nil
}

// waitEcho polls the echo line until it reads the wanted level, returning
// the time of the transition.
func (s *Range) waitEcho(want bool, deadline time.Time) (time.Time, error) {
	for {
		v, err := s.io.Read(s.echo)
		if err != nil {
			return time.Time{}, pkgerrors.Wrap(err, "failed to read echo")
		}
		now := time.Now()
		if v == want {
			return now, nil
		}
		if now.After(deadline) {
			return time.Time{}, ErrNoReading
		}
	}
}
