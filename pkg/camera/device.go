package camera

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotOpened is returned when a device cannot be opened.
	ErrNotOpened = errors.New("camera: device not opened")

	// ErrReleased is returned when a released device is used.
	ErrReleased = errors.New("camera: device released")
)

// Device is an open camera handle.
// Callers must Release it; the handle is not meant to be held long.
type Device interface {
	// Parameters returns the current capability report.
	Parameters() (Parameters, error)

	// SetParameters pushes current-value parameters to the camera.
	SetParameters(p Parameters) error

	// Release frees the handle.
	Release() error
}

// Opener opens a camera handle.
type Opener interface {
	Open(ctx context.Context) (Device, error)
}

// OpenerFunc adapts a function to an Opener.
type OpenerFunc func(ctx context.Context) (Device, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Device, error) {
	return f(ctx)
}

// ReadParameters opens a handle, reads its report and releases it.
func ReadParameters(ctx context.Context, opener Opener) (Parameters, error) {
	dev, err := opener.Open(ctx)
	if err != nil {
		return Parameters{}, err
	}

	params, err := dev.Parameters()
	if relErr := dev.Release(); relErr != nil && err == nil {
		err = relErr
	}
	if err != nil {
		return Parameters{}, err
	}
	return params, nil
}

// StaticOpener serves a fixed capability report. It is used for fake
// cameras and tests, and counts how often handles are opened and released.
type StaticOpener struct {
	mu       sync.Mutex
	params   Parameters
	applied  Parameters
	opens    int
	releases int

	// OpenErr, when set, is returned by Open.
	OpenErr error
}

// NewStaticOpener creates an opener serving params.
func NewStaticOpener(params Parameters) *StaticOpener {
	return &StaticOpener{params: params.Clone()}
}

// NewStaticOpenerFromString creates an opener from a flattened report.
func NewStaticOpenerFromString(flattened string) *StaticOpener {
	return NewStaticOpener(Unflatten(flattened))
}

// Open returns a handle over the fixed report.
func (o *StaticOpener) Open(ctx context.Context) (Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	o.opens++
	return &staticDevice{owner: o}, nil
}

// Opens returns the number of handles opened.
func (o *StaticOpener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// Releases returns the number of handles released.
func (o *StaticOpener) Releases() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.releases
}

// Applied returns the parameters last pushed through SetParameters.
func (o *StaticOpener) Applied() Parameters {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applied.Clone()
}

type staticDevice struct {
	owner    *StaticOpener
	released bool
}

func (d *staticDevice) Parameters() (Parameters, error) {
	d.owner.mu.Lock()
	defer d.owner.mu.Unlock()
	if d.released {
		return Parameters{}, ErrReleased
	}
	return d.owner.params.Clone(), nil
}

func (d *staticDevice) SetParameters(p Parameters) error {
	d.owner.mu.Lock()
	defer d.owner.mu.Unlock()
	if d.released {
		return ErrReleased
	}
	d.owner.applied = p.Clone()
	return nil
}

func (d *staticDevice) Release() error {
	d.owner.mu.Lock()
	defer d.owner.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true
	d.owner.releases++
	return nil
}
