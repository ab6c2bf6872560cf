package hw

import (
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SnapshotCamera implements Camera against an HTTP snapshot endpoint
// (the camera service answers GET with one encoded frame per request).
type SnapshotCamera struct {
	url        string
	httpClient *http.Client
}

// NewSnapshotCamera returns a camera that fetches frames from url.
func NewSnapshotCamera(url string) *SnapshotCamera {
	return &SnapshotCamera{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// CaptureFrame fetches one frame.
func (c *SnapshotCamera) CaptureFrame() (Frame, error) {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch frame")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Errorf("failed to close frame response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("camera returned %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read frame body")
	}

	return Frame(b), nil
}

// Close is a no-op; the snapshot endpoint is stateless.
func (c *SnapshotCamera) Close() error { return nil }
