package hw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPClassifier implements Classifier against a detector sidecar: POST one
// encoded frame, receive the detection list as JSON.
type HTTPClassifier struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClassifier returns a classifier that posts frames to url.
func NewHTTPClassifier(url string) *HTTPClassifier {
	return &HTTPClassifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Infer runs one inference round trip.
func (c *HTTPClassifier) Infer(frame Frame) ([]Detection, error) {
	resp, err := c.httpClient.Post(c.url, "image/jpeg", bytes.NewReader(frame))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to send frame to detector")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Errorf("failed to close detector response body: %v", err)
		}
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read detector response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, string(b))
	}

	var dets []Detection
	if err := json.Unmarshal(b, &dets); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal detections")
	}

	return dets, nil
}
