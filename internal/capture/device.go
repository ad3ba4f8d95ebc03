// Package capture owns the acquisition lifecycle of a video capture device.
// It knows nothing about attendance semantics: it hands out exclusive
// sessions and streams frames, and that is all.
package capture

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDeviceUnavailable means no device matched the constraints or
	// permission to use it was denied.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrDeviceBusy means the device is already held by another session.
	ErrDeviceBusy = errors.New("capture device busy")
)

// Facing selects which way the requested camera points.
type Facing string

const (
	FacingAny   Facing = "any"
	FacingFront Facing = "front"
	FacingRear  Facing = "rear"
)

// Constraints narrows which device (and mode) Acquire may pick.
// Zero Width/Height means "whatever the device offers".
type Constraints struct {
	Width  int
	Height int
	Facing Facing
}

// Frame is one unit of live device output.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// Device grants exclusive access to a video source. Implementations must
// return ErrDeviceBusy while a previous session has not been released, and
// ErrDeviceUnavailable when no device matches the constraints.
type Device interface {
	Acquire(ctx context.Context, c Constraints) (Session, error)
}

// Session is one exclusive hold on a device.
//
// Frames is a live, unbuffered sink: it always reflects the current device
// output, frames produced while nobody is receiving are dropped, and the
// channel is closed when the session is released.
//
// Release is idempotent and must be safe to call on every exit path.
type Session interface {
	Frames() <-chan Frame
	Release()
}
