package capture

import (
	"context"
	"errors"
)

// ErrDeviceBusy is returned when a source that is already open is
// opened again. A capture device is exclusively owned by one source
// for the lifetime of a session.
var ErrDeviceBusy = errors.New("capture device already in use")

// ErrNotOpen is returned by Snapshot on a source that was never opened
// or has been closed.
var ErrNotOpen = errors.New("capture source not open")

// Source provides periodic still-frame snapshots from a media input as
// encoded JPEG buffers. Close must release the underlying device
// deterministically; a leaked device handle blocks it for other
// applications and is treated as a bug, not a nicety. Close is
// idempotent.
type Source interface {
	Open(ctx context.Context) error
	Snapshot(ctx context.Context) ([]byte, error)
	Close() error
}
