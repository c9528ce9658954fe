package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/camp-rental/backend/internal/availability"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// classify tags SQLite failures so the retry wrapper can tell terminal
// authorization problems from transient contention.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return err
	}

	switch sqlErr.Code {
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
		return fmt.Errorf("%w: %w", availability.ErrPermissionDenied, err)
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrCantOpen, sqlite3.ErrProtocol:
		return fmt.Errorf("%w: %w", availability.ErrUnavailable, err)
	default:
		return err
	}
}
