package events

import "encoding/json"

// Event name constants
const (
	// StationSnapshot carries the full station state, published once per
	// control-loop tick.
	StationSnapshot = "station.snapshot"
	// StationClassification is published when the current classification
	// result changes.
	StationClassification = "station.classification"
	// StationWindowClosed is published once when the camera window
	// expires.
	StationWindowClosed = "station.windowClosed"
	// StationSelfTest carries the report of a finished hardware
	// self-test.
	StationSelfTest = "station.selfTest"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// ClassificationEvent is the typed payload for station.classification.
type ClassificationEvent struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Ts         int64   `json:"ts"`
}

// WindowClosedEvent is the typed payload for station.windowClosed.
type WindowClosedEvent struct {
	Ts int64 `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.ClassificationEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Category, payload.Confidence)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
