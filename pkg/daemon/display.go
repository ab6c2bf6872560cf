package daemon

import (
	"sortstation/pkg/events"
	"sortstation/pkg/station"
)

// HubDisplay bridges control-loop snapshots onto the event hub. Every tick
// publishes a snapshot event; change-triggered events (classification,
// window closed) are derived by comparing against the previous tick.
// Render is only ever called from the loop goroutine, so the previous
// snapshot needs no locking.
type HubDisplay struct {
	hub  *events.EventHub
	prev station.Snapshot
	has  bool
}

func NewHubDisplay(hub *events.EventHub) *HubDisplay {
	return &HubDisplay{hub: hub}
}

func (d *HubDisplay) Render(s station.Snapshot) {
	d.hub.Publish(events.StationSnapshot, s)

	if d.has {
		if s.Classification != d.prev.Classification {
			d.hub.Publish(events.StationClassification, events.ClassificationEvent{
				Category:   s.Classification.Category,
				Confidence: s.Classification.Confidence,
				Ts:         s.Time.Unix(),
			})
		}
		if d.prev.CameraActive && !s.CameraActive {
			d.hub.Publish(events.StationWindowClosed, events.WindowClosedEvent{
				Ts: s.Time.Unix(),
			})
		}
	}

	d.prev = s
	d.has = true
}
