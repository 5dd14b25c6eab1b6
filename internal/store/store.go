package store

import (
	"context"
	"errors"
	"fmt"
)

// Blob keys. Each names one whole-collection JSON snapshot.
const (
	KeyProjects       = "projects"
	KeyNotifications  = "notifications"
	KeyDocuments      = "documents"
	KeyFolders        = "folders"
	KeyChat           = "chat"
	KeySessionCurrent = "session.current"
	KeySessionUsers   = "session.users"
)

// ErrAbsent is returned by Load when nothing is stored under the key.
var ErrAbsent = errors.New("key absent")

// Backend is a key-value byte store holding whole snapshots. Save always
// overwrites the full value; there is no diffing, versioning or migration
// of the stored bytes.
type Backend interface {
	// Load returns the bytes stored under key, or ErrAbsent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the value under key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// SaveError reports that a snapshot could not be written. The in-memory
// mutation that produced the snapshot has already been applied.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
