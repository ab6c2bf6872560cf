package client

import (
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
)

// newTestDaemon serves handler on a unix socket in a temp dir and returns a
// client bound to it.
func newTestDaemon(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	sock := filepath.Join(t.TempDir(), "d.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen on %s: %v", sock, err)
	}

	srv := &http.Server{Handler: handler}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return NewClient(sock)
}

func TestClient_GetVersion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"1.2.3"`))
	})
	c := newTestDaemon(t, mux)

	v, err := c.GetVersion()
	if err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
	if v != "1.2.3" {
		t.Errorf("GetVersion() = %q, want %q", v, "1.2.3")
	}
}

func TestClient_GetVersionMalformedBody(t *testing.T) {
	// A truncated or empty body must surface as an error, never a panic.
	bodies := []string{"", `"`, "1.2.3"}
	for _, body := range bodies {
		mux := http.NewServeMux()
		mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		c := newTestDaemon(t, mux)

		if _, err := c.GetVersion(); err == nil {
			t.Errorf("GetVersion() with body %q: expected error", body)
		}
	}
}

func TestClient_NotFound(t *testing.T) {
	c := newTestDaemon(t, http.NotFoundHandler())

	if _, err := c.Get("/snapshot"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClient_ErrorStatusIncludesBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "strip offline", http.StatusInternalServerError)
	})
	c := newTestDaemon(t, mux)

	_, err := c.Get("/snapshot")
	if err == nil {
		t.Fatal("Get() should fail on a 500")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "strip offline") {
		t.Errorf("error %q should carry the status and the daemon's message", err)
	}
}

func TestClient_PutSendsJSON(t *testing.T) {
	var contentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/motion-threshold", func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestDaemon(t, mux)

	if _, err := c.SetMotionThreshold(50); err != nil {
		t.Fatalf("SetMotionThreshold() error: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "absent.sock"))

	if _, err := c.Get("/snapshot"); !errors.Is(err, ErrDaemonNotRunning) {
		t.Errorf("Get() error = %v, want ErrDaemonNotRunning", err)
	}
}
