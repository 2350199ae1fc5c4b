// Package v4l2cam opens a Video4Linux2 device through go4vl and reports
// what its controls support as a camera capability report.
package v4l2cam

import (
	"github.com/teslashibe/go-camsettings/pkg/camera/capability"
)

// DefaultPath is the device opened when none is given.
const DefaultPath = "/dev/video0"

// Opener opens a V4L2 device node. Sizes are the picture size candidates
// checked against the frame sizes the device enumerates.
type Opener struct {
	Path  string
	Sizes []string
}

// New creates an opener for a device node.
func New(path string) *Opener {
	if path == "" {
		path = DefaultPath
	}
	return &Opener{Path: path, Sizes: capability.DefaultSizes}
}

func (o *Opener) sizes() []string {
	if len(o.Sizes) == 0 {
		return capability.DefaultSizes
	}
	return o.Sizes
}
