// Package gocvcam opens a local capture device through OpenCV and reports
// what it supports as a camera capability report.
package gocvcam

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/camera/capability"
	"github.com/teslashibe/go-camsettings/pkg/debug"
	"gocv.io/x/gocv"
)

// DefaultProbeSizes are the picture sizes tried against the device.
var DefaultProbeSizes = capability.DefaultSizes

var properties = map[capability.Property]gocv.VideoCaptureProperties{
	capability.FrameWidth:    gocv.VideoCaptureFrameWidth,
	capability.FrameHeight:   gocv.VideoCaptureFrameHeight,
	capability.Brightness:    gocv.VideoCaptureBrightness,
	capability.AutoWB:        gocv.VideoCaptureAutoWB,
	capability.WBTemperature: gocv.VideoCaptureWBTemperature,
	capability.ISOSpeed:      gocv.VideoCaptureISOSpeed,
	capability.AutoFocus:     gocv.VideoCaptureAutoFocus,
	capability.Focus:         gocv.VideoCaptureFocus,
}

// Opener opens a gocv VideoCapture by device index.
type Opener struct {
	DeviceID   int
	ProbeSizes []string
}

// New creates an opener for a device index.
func New(deviceID int) *Opener {
	return &Opener{DeviceID: deviceID, ProbeSizes: DefaultProbeSizes}
}

// Open opens the capture device.
func (o *Opener) Open(ctx context.Context) (camera.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(o.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", camera.ErrNotOpened, o.DeviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d", camera.ErrNotOpened, o.DeviceID)
	}

	sizes := o.ProbeSizes
	if len(sizes) == 0 {
		sizes = DefaultProbeSizes
	}
	debug.Log("📷 Opened capture device %d\n", o.DeviceID)
	return &capture{vc: vc, sizes: sizes}, nil
}

type capture struct {
	mu    sync.Mutex
	vc    *gocv.VideoCapture
	sizes []string
}

func (c *capture) Get(p capability.Property) float64 {
	return c.vc.Get(properties[p])
}

func (c *capture) Set(p capability.Property, v float64) {
	c.vc.Set(properties[p], v)
}

func (c *capture) Parameters() (camera.Parameters, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vc == nil {
		return camera.Parameters{}, camera.ErrReleased
	}
	return capability.CaptureReport(c, c.sizes), nil
}

// SetParameters applies the subset of current values OpenCV can drive.
func (c *capture) SetParameters(p camera.Parameters) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vc == nil {
		return camera.ErrReleased
	}

	if size, ok := p.Get(camera.ParamPictureSize); ok {
		w, h, err := camera.ParsePictureSize(size)
		if err != nil {
			return err
		}
		c.Set(capability.FrameWidth, float64(w))
		c.Set(capability.FrameHeight, float64(h))
	}

	if b, ok := p.Get(camera.ParamBrightness); ok {
		level, err := strconv.Atoi(b)
		if err != nil {
			return fmt.Errorf("invalid brightness %q: %w", b, err)
		}
		c.Set(capability.Brightness, float64(level)/float64(camera.MaxBrightness))
	}

	if wb, ok := p.Get(camera.ParamWhiteBalance); ok {
		if kelvin, manual := capability.WhiteBalanceKelvin[wb]; manual {
			c.Set(capability.AutoWB, 0)
			c.Set(capability.WBTemperature, kelvin)
		} else {
			c.Set(capability.AutoWB, 1)
		}
	}

	if iso, ok := p.Get(camera.ParamISO); ok && iso != "auto" {
		n, err := strconv.Atoi(iso)
		if err != nil {
			return fmt.Errorf("invalid iso %q: %w", iso, err)
		}
		c.Set(capability.ISOSpeed, float64(n))
	}

	if fm, ok := p.Get(camera.ParamFocusMode); ok {
		switch fm {
		case "auto":
			c.Set(capability.AutoFocus, 1)
		case "infinity":
			c.Set(capability.AutoFocus, 0)
			c.Set(capability.Focus, 0)
		}
	}

	return nil
}

func (c *capture) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	debug.Logln("📷 Released capture device")
	return err
}
