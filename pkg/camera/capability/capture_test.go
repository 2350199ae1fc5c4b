package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/go-camsettings/pkg/camera"
)

// fakeCapture stores written values for implemented properties and reads
// unset for anything else. The allow lists restrict which writes stick.
type fakeCapture struct {
	values   map[Property]float64
	widths   map[int]bool
	kelvins  map[float64]bool
	isoSpeed map[float64]bool
	unset    float64
}

func (f *fakeCapture) Get(p Property) float64 {
	if v, ok := f.values[p]; ok {
		return v
	}
	return f.unset
}

func (f *fakeCapture) Set(p Property, v float64) {
	if _, ok := f.values[p]; !ok {
		return
	}
	switch p {
	case FrameWidth:
		if !f.widths[int(v)] {
			return
		}
	case WBTemperature:
		if f.kelvins != nil && !f.kelvins[v] {
			return
		}
	case ISOSpeed:
		if f.isoSpeed != nil && !f.isoSpeed[v] {
			return
		}
	}
	f.values[p] = v
}

func TestSupports(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		has   bool
		unset float64
		want  bool
	}{
		{"positive reading", 0.5, true, 0, true},
		{"zero reading on implemented property", 0, true, 0, true},
		{"negative reading on implemented property", -0.25, true, 0, true},
		{"unimplemented reads zero", 0, false, 0, false},
		{"unimplemented reads minus one", 0, false, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCapture{values: map[Property]float64{}, unset: tt.unset}
			if tt.has {
				c.values[Brightness] = tt.value
			}
			assert.Equal(t, tt.want, Supports(c, Brightness, 0.5))
			if tt.has {
				assert.Equal(t, tt.value, c.values[Brightness], "reading restored")
			}
		})
	}
}

func TestCaptureReport(t *testing.T) {
	c := &fakeCapture{
		values: map[Property]float64{
			FrameWidth:    1280,
			FrameHeight:   720,
			Brightness:    0,
			WBTemperature: 4600,
			ISOSpeed:      100,
			AutoFocus:     1,
		},
		widths:   map[int]bool{1280: true, 640: true},
		kelvins:  map[float64]bool{4000: true, 4600: true, 5500: true},
		isoSpeed: map[float64]bool{100: true, 400: true},
	}

	p := CaptureReport(c, []string{"1920x1080", "1280x720", "640x480", "bogus"})

	assert.Equal(t, []string{"1280x720", "640x480"}, p.Supported(camera.SupportedPictureSize))
	v, _ := p.Get(camera.ParamPictureSize)
	assert.Equal(t, "1280x720", v)
	assert.Equal(t, float64(1280), c.values[FrameWidth], "size restored")

	assert.Equal(t, []string{"none"}, p.Supported(camera.SupportedEffect))
	assert.Equal(t, []string{"auto", "fluorescent", "daylight"}, p.Supported(camera.SupportedWhiteBalance))
	assert.Equal(t, float64(4600), c.values[WBTemperature], "temperature restored")

	assert.Len(t, p.Supported(camera.SupportedBrightness), camera.MaxBrightness+1, "brightness reading 0 is still a control")
	assert.Equal(t, []string{"auto", "100", "400"}, p.Supported(camera.SupportedISO))
	assert.Equal(t, []string{"auto", "infinity"}, p.Supported(camera.SupportedFocusMode))
}

func TestCaptureReport_BareDevice(t *testing.T) {
	c := &fakeCapture{values: map[Property]float64{}, unset: -1}

	p := CaptureReport(c, DefaultSizes)

	assert.False(t, p.Has(camera.SupportedPictureSize))
	assert.False(t, p.Has(camera.ParamPictureSize))
	assert.Equal(t, []string{"auto"}, p.Supported(camera.SupportedWhiteBalance))
	assert.False(t, p.Has(camera.SupportedBrightness))
	assert.False(t, p.Has(camera.SupportedISO))
	assert.Equal(t, []string{"infinity"}, p.Supported(camera.SupportedFocusMode))
}
