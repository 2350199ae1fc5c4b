//go:build linux

package v4l2cam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"

	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/camera/capability"
	"github.com/teslashibe/go-camsettings/pkg/debug"
)

// Open opens the device node. Streaming is never started; only controls
// and frame sizes are used.
func (o *Opener) Open(ctx context.Context) (camera.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dev, err := device.Open(o.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", camera.ErrNotOpened, o.Path, err)
	}
	debug.Log("📷 Opened V4L2 device %s\n", o.Path)
	return &node{dev: dev, path: o.Path, sizes: o.sizes()}, nil
}

type node struct {
	mu    sync.Mutex
	dev   *device.Device
	path  string
	sizes []string
}

// controls reads every known control the device implements.
func (n *node) controls() (capability.Controls, error) {
	ctrls := make(capability.Controls)
	for _, id := range capability.ControlIDs {
		ctrl, err := v4l2.GetControl(n.dev.Fd(), v4l2.CtrlID(id))
		if err != nil {
			debug.ProbeLog("   control %d not supported: %v\n", id, err)
			continue
		}
		c := capability.Control{
			ID:      uint32(ctrl.ID),
			Name:    ctrl.Name,
			Min:     ctrl.Minimum,
			Max:     ctrl.Maximum,
			Step:    ctrl.Step,
			Default: ctrl.Default,
			Value:   int32(ctrl.Value),
		}
		if ctrl.IsMenu() {
			items, err := ctrl.GetMenuItems()
			if err != nil {
				return nil, fmt.Errorf("menu of control %q: %w", ctrl.Name, err)
			}
			c.Menu = make(map[uint32]string, len(items))
			for _, item := range items {
				c.Menu[item.Index] = item.Name
			}
		}
		debug.ProbeLog("   control %q [%d..%d] = %d\n", c.Name, c.Min, c.Max, c.Value)
		ctrls[id] = c
	}
	return ctrls, nil
}

func (n *node) frameSizes() []capability.FrameSize {
	enums, err := v4l2.GetAllFormatFrameSizes(n.dev.Fd())
	if err != nil {
		debug.ProbeLog("   frame sizes unavailable: %v\n", err)
		return nil
	}
	sizes := make([]capability.FrameSize, 0, len(enums))
	for _, e := range enums {
		sizes = append(sizes, capability.FrameSize{
			MinWidth:   e.Size.MinWidth,
			MaxWidth:   e.Size.MaxWidth,
			StepWidth:  e.Size.StepWidth,
			MinHeight:  e.Size.MinHeight,
			MaxHeight:  e.Size.MaxHeight,
			StepHeight: e.Size.StepHeight,
		})
	}
	return sizes
}

func (n *node) Parameters() (camera.Parameters, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return camera.Parameters{}, camera.ErrReleased
	}

	ctrls, err := n.controls()
	if err != nil {
		return camera.Parameters{}, err
	}
	return capability.V4L2Report(ctrls, n.frameSizes(), n.sizes), nil
}

// SetParameters writes the controls the current values map to. Every
// write is attempted; failures are joined.
func (n *node) SetParameters(p camera.Parameters) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return camera.ErrReleased
	}

	ctrls, err := n.controls()
	if err != nil {
		return err
	}
	values, err := capability.V4L2Values(p, ctrls)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range capability.ControlIDs {
		v, ok := values[id]
		if !ok {
			continue
		}
		if err := n.dev.SetControlValue(v4l2.CtrlID(id), v4l2.CtrlValue(v)); err != nil {
			debug.Log("⚠️  set control %q to %d: %v\n", ctrls[id].Name, v, err)
			errs = append(errs, fmt.Errorf("control %q: %w", ctrls[id].Name, err))
		}
	}
	return errors.Join(errs...)
}

func (n *node) Release() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return nil
	}
	err := n.dev.Close()
	n.dev = nil
	debug.Log("📷 Released V4L2 device %s\n", n.path)
	return err
}
