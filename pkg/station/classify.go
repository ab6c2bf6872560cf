package station

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sortstation/pkg/hw"
)

// Categories reported by the station. The sentinel values are stable API:
// clients key on them to render state.
const (
	CategoryWaiting      = "WAITING"
	CategoryUnidentified = "UNIDENTIFIED"
	CategoryCameraError  = "CAMERA_ERROR"

	CategoryPlastic   = "PLASTIC"
	CategoryPaper     = "PAPER"
	CategoryCardboard = "CARDBOARD"
	CategoryOrganic   = "ORGANIC"
	CategoryGlass     = "GLASS"
)

// labelCategories maps detector labels to station categories. Labels not
// listed here never produce a classification, no matter how confident the
// detector is about them.
var labelCategories = map[string]string{
	"plastic":     CategoryPlastic,
	"paper":       CategoryPaper,
	"cardboard":   CategoryCardboard,
	"organic":     CategoryOrganic,
	"green-glass": CategoryGlass,
}

// Result is the outcome of one classification attempt. Confidence is a
// percentage and only meaningful for mapped categories.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// selectDetection picks the category for a set of detections: the mapped
// label with the highest confidence strictly above minConfidence wins.
// Unmapped labels are skipped even when they score higher.
func selectDetection(detections []hw.Detection, minConfidence float64) Result {
	best := Result{Category: CategoryUnidentified}
	for _, d := range detections {
		category, ok := labelCategories[d.Label]
		if !ok {
			continue
		}
		if d.Confidence <= minConfidence {
			continue
		}
		if best.Category == CategoryUnidentified || d.Confidence > best.Confidence {
			best = Result{
				Category:   category,
				Confidence: d.Confidence,
			}
		}
	}
	return best
}

// Throttle serializes access to the camera and rate-limits classification
// attempts. The camera mutex is held for the full capture+infer span so a
// concurrent self-test can never interleave with a live classification.
type Throttle struct {
	mu          sync.Mutex
	lastAttempt time.Time
	hasAttempt  bool
}

// TryClassify runs one classification attempt if the cooldown since the
// previous attempt has elapsed. The cooldown slot is consumed even when
// the attempt fails, so a misbehaving camera cannot be hammered in a tight
// loop. Returns false when the attempt was skipped.
func (t *Throttle) TryClassify(now time.Time, cooldown time.Duration, minConfidence float64, cam hw.Camera, clf hw.Classifier) (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasAttempt && now.Sub(t.lastAttempt) < cooldown {
		return Result{}, false
	}
	t.lastAttempt = now
	t.hasAttempt = true

	frame, err := cam.CaptureFrame()
	if err != nil || len(frame) == 0 {
		log.WithError(err).Error("camera capture failed")
		return Result{Category: CategoryCameraError}, true
	}

	detections, err := clf.Infer(frame)
	if err != nil {
		log.WithError(err).Error("classifier inference failed")
		return Result{Category: CategoryCameraError}, true
	}

	return selectDetection(detections, minConfidence), true
}

// Reset forgets the last attempt so the next TryClassify runs immediately.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hasAttempt = false
}

// Exclusive runs fn while holding the camera lock, so out-of-band camera
// consumers (self-test, preview) cannot interleave with a classification
// mid-capture.
func (t *Throttle) Exclusive(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}
