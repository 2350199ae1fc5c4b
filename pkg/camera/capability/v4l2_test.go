package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-camsettings/pkg/camera"
)

func uvcControls() Controls {
	return Controls{
		CIDBrightness:       {ID: CIDBrightness, Name: "Brightness", Min: -64, Max: 64, Step: 1, Value: 0},
		CIDAutoWhiteBalance: {ID: CIDAutoWhiteBalance, Name: "White Balance Temperature, Auto", Max: 1, Step: 1, Value: 1},
		CIDWhiteBalanceTemp: {ID: CIDWhiteBalanceTemp, Name: "White Balance Temperature", Min: 2800, Max: 6500, Step: 1, Value: 4600},
		CIDFocusAbsolute:    {ID: CIDFocusAbsolute, Name: "Focus (absolute)", Min: 0, Max: 250, Step: 5},
		CIDFocusAuto:        {ID: CIDFocusAuto, Name: "Focus, Auto", Max: 1, Step: 1, Value: 1},
	}
}

func sensorControls() Controls {
	return Controls{
		CIDColorFX: {ID: CIDColorFX, Name: "Color Effects", Max: 15, Value: 2, Menu: map[uint32]string{
			0: "None", 1: "Black & White", 2: "Sepia", 3: "Negative", 10: "Aqua", 14: "Set Cb/Cr",
		}},
		CIDAutoNPresetWB: {ID: CIDAutoNPresetWB, Name: "White Balance, Auto & Preset", Max: 9, Value: 1, Menu: map[uint32]string{
			0: "Manual", 1: "Auto", 2: "Incandescent", 6: "Daylight",
		}},
		CIDISOSensitivity: {ID: CIDISOSensitivity, Name: "ISO Sensitivity", Max: 4, Menu: map[uint32]string{
			0: "100", 1: "200", 2: "400", 3: "800", 4: "1600",
		}},
		CIDISOSensitivityAuto: {ID: CIDISOSensitivityAuto, Name: "ISO Sensitivity, Auto", Max: 1, Value: 1},
		CIDCompressionQuality: {ID: CIDCompressionQuality, Name: "Compression Quality", Min: 1, Max: 100, Step: 1, Value: 90},
	}
}

func TestFrameSize_Fits(t *testing.T) {
	tests := []struct {
		name string
		f    FrameSize
		w, h int
		want bool
	}{
		{"discrete match", FrameSize{MinWidth: 640, MaxWidth: 640, MinHeight: 480, MaxHeight: 480}, 640, 480, true},
		{"discrete mismatch", FrameSize{MinWidth: 640, MaxWidth: 640, MinHeight: 480, MaxHeight: 480}, 1280, 720, false},
		{"stepwise on step", FrameSize{MinWidth: 320, MaxWidth: 1920, StepWidth: 16, MinHeight: 240, MaxHeight: 1080, StepHeight: 8}, 1280, 720, true},
		{"stepwise off step", FrameSize{MinWidth: 320, MaxWidth: 1920, StepWidth: 16, MinHeight: 240, MaxHeight: 1080, StepHeight: 8}, 1281, 720, false},
		{"stepwise too large", FrameSize{MinWidth: 320, MaxWidth: 1920, StepWidth: 16, MinHeight: 240, MaxHeight: 1080, StepHeight: 8}, 2048, 1536, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Fits(tt.w, tt.h))
		})
	}
}

func TestV4L2Report_RangeControls(t *testing.T) {
	frames := []FrameSize{
		{MinWidth: 640, MaxWidth: 640, MinHeight: 480, MaxHeight: 480},
		{MinWidth: 1280, MaxWidth: 1280, MinHeight: 720, MaxHeight: 720},
	}

	p := V4L2Report(uvcControls(), frames, DefaultSizes)

	assert.Equal(t, []string{"1280x720", "640x480"}, p.Supported(camera.SupportedPictureSize))
	assert.False(t, p.Has(camera.SupportedEffect), "no color effect control")
	assert.Equal(t, []string{"auto", "fluorescent", "daylight", "cloudy-daylight"}, p.Supported(camera.SupportedWhiteBalance),
		"incandescent is below the temperature range")
	assert.Len(t, p.Supported(camera.SupportedBrightness), camera.MaxBrightness+1)
	v, _ := p.Get(camera.ParamBrightness)
	assert.Equal(t, "3", v, "midpoint of the range")
	assert.False(t, p.Has(camera.SupportedISO))
	assert.Equal(t, []string{"auto", "infinity"}, p.Supported(camera.SupportedFocusMode))
}

func TestV4L2Report_MenuControls(t *testing.T) {
	p := V4L2Report(sensorControls(), nil, DefaultSizes)

	assert.False(t, p.Has(camera.SupportedPictureSize))
	assert.Equal(t, []string{"none", "mono", "sepia", "negative", "aqua"}, p.Supported(camera.SupportedEffect))
	v, _ := p.Get(camera.ParamEffect)
	assert.Equal(t, "sepia", v)
	assert.Equal(t, []string{"auto", "incandescent", "daylight"}, p.Supported(camera.SupportedWhiteBalance))
	assert.False(t, p.Has(camera.SupportedBrightness))
	assert.Equal(t, []string{"auto", "100", "200", "400", "800"}, p.Supported(camera.SupportedISO))
	assert.Equal(t, []string{"infinity"}, p.Supported(camera.SupportedFocusMode))
	v, _ = p.Get(camera.ParamJPEGQuality)
	assert.Equal(t, "90", v)
}

func TestV4L2Values(t *testing.T) {
	tests := []struct {
		name   string
		ctrls  Controls
		params map[string]string
		want   map[uint32]int32
	}{
		{
			name:   "manual white balance on range controls",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamWhiteBalance: "daylight"},
			want:   map[uint32]int32{CIDAutoWhiteBalance: 0, CIDWhiteBalanceTemp: 5500},
		},
		{
			name:   "temperature clamped to range",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamWhiteBalance: "incandescent"},
			want:   map[uint32]int32{CIDAutoWhiteBalance: 0, CIDWhiteBalanceTemp: 2800},
		},
		{
			name:   "auto white balance",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamWhiteBalance: "auto"},
			want:   map[uint32]int32{CIDAutoWhiteBalance: 1},
		},
		{
			name:   "preset white balance",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamWhiteBalance: "daylight"},
			want:   map[uint32]int32{CIDAutoNPresetWB: 6},
		},
		{
			name:   "brightness scaled",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamBrightness: "6"},
			want:   map[uint32]int32{CIDBrightness: 64},
		},
		{
			name:   "lowest brightness",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamBrightness: "0"},
			want:   map[uint32]int32{CIDBrightness: -64},
		},
		{
			name:   "infinity focus",
			ctrls:  uvcControls(),
			params: map[string]string{camera.ParamFocusMode: "infinity"},
			want:   map[uint32]int32{CIDFocusAuto: 0, CIDFocusAbsolute: 0},
		},
		{
			name:   "effect by menu index",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamEffect: "aqua"},
			want:   map[uint32]int32{CIDColorFX: 10},
		},
		{
			name:   "effect the menu lacks",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamEffect: "solarize"},
			want:   map[uint32]int32{},
		},
		{
			name:   "manual iso",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamISO: "400"},
			want:   map[uint32]int32{CIDISOSensitivityAuto: 0, CIDISOSensitivity: 2},
		},
		{
			name:   "auto iso",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamISO: "auto"},
			want:   map[uint32]int32{CIDISOSensitivityAuto: 1},
		},
		{
			name:   "jpeg quality clamped",
			ctrls:  sensorControls(),
			params: map[string]string{camera.ParamJPEGQuality: "120"},
			want:   map[uint32]int32{CIDCompressionQuality: 100},
		},
		{
			name:   "no matching controls",
			ctrls:  Controls{},
			params: map[string]string{camera.ParamBrightness: "3", camera.ParamISO: "100"},
			want:   map[uint32]int32{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := V4L2Values(camera.NewParameters(tt.params), tt.ctrls)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestV4L2Values_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		ctrls  Controls
		params map[string]string
	}{
		{"brightness not a number", uvcControls(), map[string]string{camera.ParamBrightness: "bright"}},
		{"brightness out of range", uvcControls(), map[string]string{camera.ParamBrightness: "7"}},
		{"iso not a number", sensorControls(), map[string]string{camera.ParamISO: "fast"}},
		{"jpeg quality not a number", sensorControls(), map[string]string{camera.ParamJPEGQuality: "fine"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := V4L2Values(camera.NewParameters(tt.params), tt.ctrls)
			assert.Error(t, err)
		})
	}
}
