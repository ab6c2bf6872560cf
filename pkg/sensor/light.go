package sensor

import (
	"github.com/sirupsen/logrus"

	"sortstation/pkg/hw"
)

// Light reads a binary ambient-light indicator (LDR module). The module
// asserts the line low when bright, so the reading is inverted.
type Light struct {
	io  hw.DigitalIO
	pin int
}

// NewLight returns a light sensor on the given input pin.
func NewLight(io hw.DigitalIO, pin int) *Light {
	return &Light{io: io, pin: pin}
}

// IsDark reports whether the environment is dark. A read failure is
// treated as "not dark" so a faulty sensor never triggers illumination
// on its own.
func (s *Light) IsDark() bool {
	v, err := s.io.Read(s.pin)
	if err != nil {
		logrus.Errorf("failed to read light sensor: %v", err)
		return false
	}
	return v
}
