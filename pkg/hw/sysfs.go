package hw

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PinDirection is the claimed direction of a GPIO line.
type PinDirection string

const (
	// In claims the pin as an input.
	In PinDirection = "in"
	// Out claims the pin as an output.
	Out PinDirection = "out"
)

// SysfsGPIO implements DigitalIO on top of the Linux sysfs GPIO interface.
// Pins are exported and given a direction at construction and unexported
// on Close.
type SysfsGPIO struct {
	base    string
	claimed []int
}

// NewSysfsGPIO claims the given pins with their directions. Already-exported
// pins are reused. The returned handle owns the pins until Close.
func NewSysfsGPIO(pins map[int]PinDirection) (*SysfsGPIO, error) {
	return newSysfsGPIO("/sys/class/gpio", pins)
}

func newSysfsGPIO(base string, pins map[int]PinDirection) (*SysfsGPIO, error) {
	g := &SysfsGPIO{base: base}

	for pin, dir := range pins {
		if err := g.claim(pin, dir); err != nil {
			// Release whatever we already claimed; a half-claimed
			// handle is useless to the caller.
			_ = g.Close()
			return nil, err
		}
		g.claimed = append(g.claimed, pin)
	}

	return g, nil
}

func (g *SysfsGPIO) claim(pin int, dir PinDirection) error {
	logrus.Tracef("claiming gpio %d as %s", pin, dir)

	pinDir := g.pinPath(pin)
	if _, err := os.Stat(pinDir); os.IsNotExist(err) {
		err := os.WriteFile(filepath.Join(g.base, "export"), []byte(strconv.Itoa(pin)), 0220)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to export gpio %d", pin)
		}
	}

	err := os.WriteFile(filepath.Join(pinDir, "direction"), []byte(dir), 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to set direction of gpio %d", pin)
	}

	return nil
}

// Write drives an output pin.
func (g *SysfsGPIO) Write(pin int, high bool) error {
	v := []byte("0")
	if high {
		v = []byte("1")
	}

	err := os.WriteFile(filepath.Join(g.pinPath(pin), "value"), v, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to write gpio %d", pin)
	}
	return nil
}

// Read samples an input pin.
func (g *SysfsGPIO) Read(pin int) (bool, error) {
	b, err := os.ReadFile(filepath.Join(g.pinPath(pin), "value"))
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to read gpio %d", pin)
	}
	return len(bytes.TrimSpace(b)) > 0 && bytes.TrimSpace(b)[0] == '1', nil
}

// Close unexports every claimed pin. Failures are logged and swallowed so
// one stuck pin does not prevent releasing the rest.
func (g *SysfsGPIO) Close() error {
	for _, pin := range g.claimed {
		err := os.WriteFile(filepath.Join(g.base, "unexport"), []byte(strconv.Itoa(pin)), 0220)
		if err != nil {
			logrus.Warnf("failed to unexport gpio %d: %v", pin, err)
		}
	}
	g.claimed = nil
	return nil
}

func (g *SysfsGPIO) pinPath(pin int) string {
	return filepath.Join(g.base, fmt.Sprintf("gpio%d", pin))
}
