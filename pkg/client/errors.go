package client

import "errors"

// Sentinel errors the CLI matches on with errors.Is to print actionable
// hints instead of raw transport failures.
var (
	// ErrDaemonNotRunning means the socket path does not exist, i.e. no
	// daemon has created it.
	ErrDaemonNotRunning = errors.New("sortstation daemon is not running")

	// ErrPermissionDenied means the socket exists but the caller may not
	// open it.
	ErrPermissionDenied = errors.New("permission denied accessing the daemon socket")

	// ErrNotFound means the daemon answered 404, typically a version
	// mismatch between CLI and daemon.
	ErrNotFound = errors.New("endpoint not found on the daemon")
)
