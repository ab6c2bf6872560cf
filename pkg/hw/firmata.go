package hw

import (
	"github.com/kraman/go-firmata"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FirmataStrip implements LightArray over a firmata-speaking microcontroller
// that drives the LED strip through three PWM channels (one per color).
// The strip hardware applies PWM output immediately, so SetAll stages the
// color locally and Show pushes it out.
type FirmataStrip struct {
	client  *firmata.FirmataClient
	rPin    uint8
	gPin    uint8
	bPin    uint8
	staged  Color
	current Color
}

// NewFirmataStrip connects to the board on the given serial device and
// claims the three PWM pins.
func NewFirmataStrip(device string, baud int, rPin, gPin, bPin uint8) (*FirmataStrip, error) {
	client, err := firmata.NewClient(device, baud)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to firmata board on %s", device)
	}

	for _, pin := range []uint8{rPin, gPin, bPin} {
		client.SetPinMode(pin, firmata.PWM)
	}

	logrus.Infof("firmata LED strip connected on %s", device)

	return &FirmataStrip{
		client: client,
		rPin:   rPin,
		gPin:   gPin,
		bPin:   bPin,
	}, nil
}

// SetAll stages a color on every element.
func (s *FirmataStrip) SetAll(c Color) error {
	s.staged = c
	return nil
}

// Show writes the staged color to the PWM channels.
func (s *FirmataStrip) Show() error {
	if s.staged == s.current {
		return nil
	}

	s.client.AnalogWrite(uint(s.rPin), s.staged.R)
	s.client.AnalogWrite(uint(s.gPin), s.staged.G)
	s.client.AnalogWrite(uint(s.bPin), s.staged.B)
	s.current = s.staged

	logrus.Tracef("LED strip set to %+v", s.current)
	return nil
}

// Close blanks the strip and releases the serial connection.
func (s *FirmataStrip) Close() error {
	s.client.AnalogWrite(uint(s.rPin), 0)
	s.client.AnalogWrite(uint(s.gPin), 0)
	s.client.AnalogWrite(uint(s.bPin), 0)
	s.client.Close()
	return nil
}
