// Package client implements the CLI side of the daemon's unix-socket API.
package client

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client issues requests against the daemon's unix socket. The host part of
// request URLs is a placeholder; every connection dials the socket path.
type Client struct {
	socketPath string
	httpClient *http.Client
}

// NewClient returns a client bound to the daemon socket at socketPath.
func NewClient(socketPath string) *Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &Client{
		socketPath: socketPath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					conn, err := dialer.DialContext(ctx, "unix", socketPath)
					return conn, mapDialError(err)
				},
			},
		},
	}
}

// mapDialError turns socket-level failures into the sentinel errors the CLI
// matches on to print actionable hints. errors.Is unwraps through the
// net.OpError the dialer returns.
func mapDialError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return ErrDaemonNotRunning
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return err
	}
}

func (c *Client) do(method, path, body string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"socket": c.socketPath,
	}).Debug("daemon request")

	req, err := http.NewRequest(method, "http://unix"+path, strings.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to build request")
	}
	if body != "" {
		// Every request body in this API is a JSON value.
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "request to daemon failed")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Errorf("failed to close response body: %v", err)
		}
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to read daemon response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", pkgerrors.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return string(b), nil
}

// Get sends a GET request to the daemon.
func (c *Client) Get(path string) (string, error) {
	return c.do(http.MethodGet, path, "")
}

// Put sends a PUT request with a JSON body to the daemon.
func (c *Client) Put(path string, data string) (string, error) {
	return c.do(http.MethodPut, path, data)
}

// Post sends a POST request to the daemon.
func (c *Client) Post(path string, data string) (string, error) {
	return c.do(http.MethodPost, path, data)
}
