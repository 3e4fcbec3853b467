package crashreports

import (
	"context"
	"errors"
	"time"
)

// ErrExists is returned by Storage.Create when the name is taken.
var ErrExists = errors.New("report already exists")

// Storage persists report bytes under <root>/<user>/<name>. user and name are
// already sanitized single segments.
type Storage interface {
	// Create writes a new report and returns its location. It never
	// overwrites and fails with ErrExists instead.
	Create(ctx context.Context, user, name string, data []byte) (string, error)
	// Prune removes the oldest generated reports of user beyond keep.
	Prune(ctx context.Context, user string, keep int) (int, error)
	// Sweep removes generated reports last modified before cutoff.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

const maxNameAttempts = 100
