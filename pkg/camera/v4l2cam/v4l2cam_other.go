//go:build !linux

package v4l2cam

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-camsettings/pkg/camera"
)

// Open always fails: V4L2 exists only on Linux.
func (o *Opener) Open(ctx context.Context) (camera.Device, error) {
	return nil, fmt.Errorf("%w: %s: v4l2 requires linux", camera.ErrNotOpened, o.Path)
}
