// Package hw defines the hardware capabilities the station consumes and
// the concrete backends that implement them. The control loop only ever
// sees these interfaces, so every backend can be substituted with a fake
// in tests.
package hw

// DigitalIO reads and writes single GPIO lines. Pins must be claimed with
// the proper direction before the control loop starts.
type DigitalIO interface {
	// Write drives an output pin high (true) or low (false).
	Write(pin int, high bool) error
	// Read samples an input pin. true means the line is high.
	Read(pin int) (bool, error)
	// Close releases all claimed pins.
	Close() error
}

// Color is a single RGB value for the light array.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// White is the full-brightness color used when illuminating the bin.
var White = Color{R: 0xFF, G: 0xFF, B: 0xFF}

// Off turns every element dark.
var Off = Color{}

// LightArray is an addressable light source. SetAll stages a color on every
// element; Show pushes the staged state to the hardware.
type LightArray interface {
	SetAll(c Color) error
	Show() error
	Close() error
}

// Frame is one captured camera image, encoded (typically JPEG).
// A zero-length frame is treated as a capture failure.
type Frame []byte

// Camera produces frames for classification.
type Camera interface {
	CaptureFrame() (Frame, error)
	Close() error
}

// Detection is a single detected object reported by the classifier.
type Detection struct {
	// Label is the raw model label, e.g. "green-glass".
	Label string `json:"label"`
	// Confidence is a percentage in [0,100].
	Confidence float64 `json:"confidence"`
	// Box is the bounding box as x1,y1,x2,y2. Unused by the station
	// logic but carried for consumers that render frames.
	Box [4]int `json:"box"`
}

// Classifier runs inference on a frame and returns all detections.
type Classifier interface {
	Infer(frame Frame) ([]Detection, error)
}
