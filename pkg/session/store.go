package session

import (
	"context"
	"time"
)

// Store persists serialized session snapshots by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists data under name until expiresAt, replacing any
	// previous snapshot.
	Save(ctx context.Context, name string, data []byte, expiresAt time.Time) error

	// Load returns (nil, nil) when name is unknown or has expired.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes name. Unknown names are not an error.
	Delete(ctx context.Context, name string) error

	// Touch moves the expiry of name. Unknown names are not an error.
	Touch(ctx context.Context, name string, expiresAt time.Time) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "session store is closed"
}
