// Package capability turns what a capture backend exposes into a camera
// capability report. It has no hardware dependencies; the gocvcam and
// v4l2cam openers feed it.
package capability

import (
	"math"
	"strconv"

	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/debug"
)

// Property is a capture property a backend may implement.
type Property int

const (
	FrameWidth Property = iota
	FrameHeight
	Brightness
	AutoWB
	WBTemperature
	ISOSpeed
	AutoFocus
	Focus
)

// Capture reads and writes capture properties. Backends read 0 or -1 for
// properties they do not implement and ignore writes to them.
type Capture interface {
	Get(p Property) float64
	Set(p Property, v float64)
}

// DefaultSizes are the picture sizes tried against a device.
var DefaultSizes = []string{
	"2048x1536",
	"1920x1080",
	"1600x1200",
	"1280x720",
	"1024x768",
	"640x480",
}

// ISOCandidates are the manual sensitivities tried against a device.
var ISOCandidates = []int{100, 200, 400, 800}

// WhiteBalanceKelvin maps manual white balance modes to color temperatures.
var WhiteBalanceKelvin = map[string]float64{
	"incandescent":    2700,
	"fluorescent":     4000,
	"daylight":        5500,
	"cloudy-daylight": 6500,
}

// WhiteBalanceOrder lists the manual modes in report order.
var WhiteBalanceOrder = []string{"incandescent", "fluorescent", "daylight", "cloudy-daylight"}

const kelvinTolerance = 100

// Supports reports whether c implements p. A reading other than 0 or -1
// counts as implemented. Otherwise trial is written and p counts as
// implemented if the reading changes; the old value is restored.
func Supports(c Capture, p Property, trial float64) bool {
	v := c.Get(p)
	if v != 0 && v != -1 {
		debug.ProbeLog("   property %d = %v\n", int(p), v)
		return true
	}
	c.Set(p, trial)
	got := c.Get(p)
	c.Set(p, v)
	debug.ProbeLog("   property %d = %v, wrote %v, read %v\n", int(p), v, trial, got)
	return got != v && got != -1
}

// CaptureReport reports what c implements. Each candidate in sizes is set and read back;
// the original size is restored. Manual white balance modes and ISO
// sensitivities are kept only if the device reads them back.
func CaptureReport(c Capture, sizes []string) camera.Parameters {
	var p camera.Parameters

	origW := c.Get(FrameWidth)
	origH := c.Get(FrameHeight)

	var supported []string
	for _, size := range sizes {
		w, h, err := camera.ParsePictureSize(size)
		if err != nil {
			continue
		}
		c.Set(FrameWidth, float64(w))
		c.Set(FrameHeight, float64(h))
		gotW, gotH := int(c.Get(FrameWidth)), int(c.Get(FrameHeight))
		debug.ProbeLog("   probe %s -> %dx%d\n", size, gotW, gotH)
		if gotW == w && gotH == h {
			supported = append(supported, size)
		}
	}
	c.Set(FrameWidth, origW)
	c.Set(FrameHeight, origH)

	if len(supported) > 0 {
		p.Set(camera.SupportedPictureSize, camera.JoinTokens(supported))
	}
	if origW > 0 && origH > 0 {
		p.Set(camera.ParamPictureSize, camera.FormatPictureSize(int(origW), int(origH)))
	}

	// Effects are not a capture property; only the passthrough is reported.
	p.Set(camera.SupportedEffect, "none")

	wb := []string{"auto"}
	if Supports(c, WBTemperature, WhiteBalanceKelvin["fluorescent"]) {
		orig := c.Get(WBTemperature)
		for _, mode := range WhiteBalanceOrder {
			kelvin := WhiteBalanceKelvin[mode]
			c.Set(WBTemperature, kelvin)
			if math.Abs(c.Get(WBTemperature)-kelvin) <= kelvinTolerance {
				wb = append(wb, mode)
			}
		}
		c.Set(WBTemperature, orig)
	}
	p.Set(camera.SupportedWhiteBalance, camera.JoinTokens(wb))

	if Supports(c, Brightness, 0.5) {
		p.Set(camera.SupportedBrightness, brightnessLevels())
	}

	if Supports(c, ISOSpeed, float64(ISOCandidates[0])) {
		orig := c.Get(ISOSpeed)
		iso := []string{"auto"}
		for _, v := range ISOCandidates {
			c.Set(ISOSpeed, float64(v))
			if int(c.Get(ISOSpeed)) == v {
				iso = append(iso, strconv.Itoa(v))
			}
		}
		c.Set(ISOSpeed, orig)
		p.Set(camera.SupportedISO, camera.JoinTokens(iso))
	}

	if Supports(c, AutoFocus, 1) {
		p.Set(camera.SupportedFocusMode, "auto,infinity")
	} else {
		p.Set(camera.SupportedFocusMode, "infinity")
	}

	return p
}

func brightnessLevels() string {
	levels := make([]string, 0, camera.MaxBrightness+1)
	for i := 0; i <= camera.MaxBrightness; i++ {
		levels = append(levels, strconv.Itoa(i))
	}
	return camera.JoinTokens(levels)
}
