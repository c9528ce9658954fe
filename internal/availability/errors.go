package availability

import (
	"errors"
	"strings"
)

var (
	// ErrPermissionDenied marks store failures caused by missing or expired
	// credentials. They are never retried.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable marks transient store failures (network, busy, unavailable).
	ErrUnavailable = errors.New("store unavailable")
)

// permissionMarkers are substrings that identify authorization failures coming
// from stores that do not wrap ErrPermissionDenied.
var permissionMarkers = []string{
	"permission-denied",
	"permission denied",
	"permission_denied",
	"unauthenticated",
	"unauthorized",
	"insufficient permissions",
}

// IsPermissionError reports whether err carries an authorization signal.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range permissionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
