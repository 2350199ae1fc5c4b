package capability

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/teslashibe/go-camsettings/pkg/camera"
)

// V4L2 control IDs read by the v4l2 opener.
const (
	CIDBrightness         uint32 = 9963776  // V4L2_CID_BRIGHTNESS
	CIDAutoWhiteBalance   uint32 = 9963788  // V4L2_CID_AUTO_WHITE_BALANCE
	CIDWhiteBalanceTemp   uint32 = 9963802  // V4L2_CID_WHITE_BALANCE_TEMPERATURE
	CIDColorFX            uint32 = 9963807  // V4L2_CID_COLORFX
	CIDFocusAbsolute      uint32 = 10094858 // V4L2_CID_FOCUS_ABSOLUTE
	CIDFocusAuto          uint32 = 10094860 // V4L2_CID_FOCUS_AUTO
	CIDAutoNPresetWB      uint32 = 10094868 // V4L2_CID_AUTO_N_PRESET_WHITE_BALANCE
	CIDISOSensitivity     uint32 = 10094871 // V4L2_CID_ISO_SENSITIVITY
	CIDISOSensitivityAuto uint32 = 10094872 // V4L2_CID_ISO_SENSITIVITY_AUTO
	CIDCompressionQuality uint32 = 10291459 // V4L2_CID_JPEG_COMPRESSION_QUALITY
)

// ControlIDs are the controls a v4l2 opener reads.
var ControlIDs = []uint32{
	CIDBrightness,
	CIDAutoWhiteBalance,
	CIDWhiteBalanceTemp,
	CIDColorFX,
	CIDFocusAbsolute,
	CIDFocusAuto,
	CIDAutoNPresetWB,
	CIDISOSensitivity,
	CIDISOSensitivityAuto,
	CIDCompressionQuality,
}

// Control is a V4L2 control as read from a device. Menu holds the names
// of menu items by index and is empty for range controls.
type Control struct {
	ID      uint32
	Name    string
	Min     int32
	Max     int32
	Step    int32
	Default int32
	Value   int32
	Menu    map[uint32]string
}

// Controls is the set of controls a device implements, by ID.
type Controls map[uint32]Control

// FrameSize is a V4L2 frame size entry. Discrete sizes have Min == Max.
type FrameSize struct {
	MinWidth, MaxWidth, StepWidth    uint32
	MinHeight, MaxHeight, StepHeight uint32
}

// Fits reports whether width x height is one of the sizes f describes.
func (f FrameSize) Fits(width, height int) bool {
	return fitsRange(uint32(width), f.MinWidth, f.MaxWidth, f.StepWidth) &&
		fitsRange(uint32(height), f.MinHeight, f.MaxHeight, f.StepHeight)
}

func fitsRange(v, lo, hi, step uint32) bool {
	if v < lo || v > hi {
		return false
	}
	if step == 0 {
		return v == lo || v == hi
	}
	return (v-lo)%step == 0
}

// colorFX maps V4L2 color effect menu indexes to effect values.
var colorFX = map[uint32]string{
	0:  "none",
	1:  "mono",
	2:  "sepia",
	3:  "negative",
	4:  "emboss",
	5:  "sketch",
	10: "aqua",
	13: "solarize",
}

// presetWB maps V4L2 white balance preset menu indexes to white balance values.
var presetWB = map[uint32]string{
	1: "auto",
	2: "incandescent",
	3: "fluorescent",
	6: "daylight",
	8: "cloudy-daylight",
}

const (
	isoManual = 0 // V4L2_ISO_SENSITIVITY_MANUAL
	isoAuto   = 1 // V4L2_ISO_SENSITIVITY_AUTO
)

// V4L2Report builds a capability report from a device's controls and frame
// sizes. Only candidates from sizes that some frame size fits are reported.
func V4L2Report(ctrls Controls, frames []FrameSize, sizes []string) camera.Parameters {
	var p camera.Parameters

	var supported []string
	for _, size := range sizes {
		w, h, err := camera.ParsePictureSize(size)
		if err != nil {
			continue
		}
		for _, f := range frames {
			if f.Fits(w, h) {
				supported = append(supported, size)
				break
			}
		}
	}
	if len(supported) > 0 {
		p.Set(camera.SupportedPictureSize, camera.JoinTokens(supported))
	}

	if fx, ok := ctrls[CIDColorFX]; ok {
		if tokens := menuTokens(fx, colorFX); len(tokens) > 0 {
			p.Set(camera.SupportedEffect, camera.JoinTokens(tokens))
		}
		if v, ok := colorFX[uint32(fx.Value)]; ok {
			p.Set(camera.ParamEffect, v)
		}
	}

	if wb := whiteBalanceTokens(ctrls); len(wb) > 0 {
		p.Set(camera.SupportedWhiteBalance, camera.JoinTokens(wb))
	}

	if b, ok := ctrls[CIDBrightness]; ok && b.Max > b.Min {
		p.Set(camera.SupportedBrightness, brightnessLevels())
		p.Set(camera.ParamBrightness, strconv.Itoa(brightnessLevel(b)))
	}

	if iso := isoTokens(ctrls); len(iso) > 0 {
		p.Set(camera.SupportedISO, camera.JoinTokens(iso))
	}

	var focus []string
	if _, ok := ctrls[CIDFocusAuto]; ok {
		focus = append(focus, "auto")
	}
	focus = append(focus, "infinity")
	p.Set(camera.SupportedFocusMode, camera.JoinTokens(focus))

	if q, ok := ctrls[CIDCompressionQuality]; ok {
		p.Set(camera.ParamJPEGQuality, strconv.Itoa(int(q.Value)))
	}

	return p
}

// menuTokens returns the values of the menu items ctrl offers, by index.
func menuTokens(ctrl Control, names map[uint32]string) []string {
	indexes := make([]uint32, 0, len(ctrl.Menu))
	for i := range ctrl.Menu {
		if _, ok := names[i]; ok {
			indexes = append(indexes, i)
		}
	}
	sort.Slice(indexes, func(a, b int) bool { return indexes[a] < indexes[b] })

	tokens := make([]string, len(indexes))
	for i, idx := range indexes {
		tokens[i] = names[idx]
	}
	return tokens
}

func whiteBalanceTokens(ctrls Controls) []string {
	if preset, ok := ctrls[CIDAutoNPresetWB]; ok && len(preset.Menu) > 0 {
		return menuTokens(preset, presetWB)
	}

	var tokens []string
	if _, ok := ctrls[CIDAutoWhiteBalance]; ok {
		tokens = append(tokens, "auto")
	}
	if temp, ok := ctrls[CIDWhiteBalanceTemp]; ok {
		for _, mode := range WhiteBalanceOrder {
			k := int32(WhiteBalanceKelvin[mode])
			if k >= temp.Min && k <= temp.Max {
				tokens = append(tokens, mode)
			}
		}
	}
	return tokens
}

func isoTokens(ctrls Controls) []string {
	iso, ok := ctrls[CIDISOSensitivity]
	if !ok {
		return nil
	}

	var tokens []string
	if _, ok := ctrls[CIDISOSensitivityAuto]; ok {
		tokens = append(tokens, "auto")
	}
	for _, v := range ISOCandidates {
		if _, ok := isoIndex(iso, v); ok {
			tokens = append(tokens, strconv.Itoa(v))
		}
	}
	return tokens
}

// isoIndex returns the control value selecting sensitivity v. Menu
// controls are selected by index; range controls take v itself.
func isoIndex(iso Control, v int) (int32, bool) {
	if len(iso.Menu) == 0 {
		return int32(v), int32(v) >= iso.Min && int32(v) <= iso.Max
	}
	for idx, name := range iso.Menu {
		if n, err := strconv.Atoi(name); err == nil && n == v {
			return int32(idx), true
		}
	}
	return 0, false
}

// brightnessLevel maps the control value onto 0..MaxBrightness.
func brightnessLevel(b Control) int {
	frac := float64(b.Value-b.Min) / float64(b.Max-b.Min)
	return int(math.Round(frac * camera.MaxBrightness))
}

// brightnessValue maps a level onto the control range.
func brightnessValue(b Control, level int) int32 {
	frac := float64(level) / camera.MaxBrightness
	return b.Min + int32(math.Round(frac*float64(b.Max-b.Min)))
}

func reverse(m map[uint32]string, token string) (uint32, bool) {
	for idx, v := range m {
		if v == token {
			return idx, true
		}
	}
	return 0, false
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// V4L2Values translates current-value parameters into control writes.
// Parameters the device has no control for are skipped.
func V4L2Values(p camera.Parameters, ctrls Controls) (map[uint32]int32, error) {
	out := make(map[uint32]int32)

	if v, ok := p.Get(camera.ParamEffect); ok {
		if fx, has := ctrls[CIDColorFX]; has {
			if idx, known := reverse(colorFX, v); known {
				if _, offered := fx.Menu[idx]; offered {
					out[CIDColorFX] = int32(idx)
				}
			}
		}
	}

	if v, ok := p.Get(camera.ParamWhiteBalance); ok {
		setWhiteBalance(out, ctrls, v)
	}

	if v, ok := p.Get(camera.ParamBrightness); ok {
		if b, has := ctrls[CIDBrightness]; has && b.Max > b.Min {
			level, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid brightness %q: %w", v, err)
			}
			if level < 0 || level > camera.MaxBrightness {
				return nil, fmt.Errorf("brightness %d out of range [0,%d]", level, camera.MaxBrightness)
			}
			out[CIDBrightness] = brightnessValue(b, level)
		}
	}

	if v, ok := p.Get(camera.ParamISO); ok {
		if err := setISO(out, ctrls, v); err != nil {
			return nil, err
		}
	}

	if v, ok := p.Get(camera.ParamFocusMode); ok {
		_, hasAuto := ctrls[CIDFocusAuto]
		switch v {
		case "auto":
			if hasAuto {
				out[CIDFocusAuto] = 1
			}
		case "infinity":
			if hasAuto {
				out[CIDFocusAuto] = 0
			}
			// UVC drivers put infinity at the bottom of the focus range.
			if f, has := ctrls[CIDFocusAbsolute]; has {
				out[CIDFocusAbsolute] = f.Min
			}
		}
	}

	if v, ok := p.Get(camera.ParamJPEGQuality); ok {
		if q, has := ctrls[CIDCompressionQuality]; has {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid jpeg quality %q: %w", v, err)
			}
			out[CIDCompressionQuality] = clamp(int32(n), q.Min, q.Max)
		}
	}

	return out, nil
}

func setWhiteBalance(out map[uint32]int32, ctrls Controls, v string) {
	if preset, ok := ctrls[CIDAutoNPresetWB]; ok && len(preset.Menu) > 0 {
		if idx, known := reverse(presetWB, v); known {
			if _, offered := preset.Menu[idx]; offered {
				out[CIDAutoNPresetWB] = int32(idx)
			}
		}
		return
	}

	_, hasAuto := ctrls[CIDAutoWhiteBalance]
	if v == "auto" {
		if hasAuto {
			out[CIDAutoWhiteBalance] = 1
		}
		return
	}
	temp, hasTemp := ctrls[CIDWhiteBalanceTemp]
	kelvin, manual := WhiteBalanceKelvin[v]
	if !hasTemp || !manual {
		return
	}
	if hasAuto {
		out[CIDAutoWhiteBalance] = 0
	}
	out[CIDWhiteBalanceTemp] = clamp(int32(kelvin), temp.Min, temp.Max)
}

func setISO(out map[uint32]int32, ctrls Controls, v string) error {
	iso, has := ctrls[CIDISOSensitivity]
	_, hasAuto := ctrls[CIDISOSensitivityAuto]
	if v == "auto" {
		if hasAuto {
			out[CIDISOSensitivityAuto] = isoAuto
		}
		return nil
	}
	if !has {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid iso %q: %w", v, err)
	}
	idx, ok := isoIndex(iso, n)
	if !ok {
		return nil
	}
	if hasAuto {
		out[CIDISOSensitivityAuto] = isoManual
	}
	out[CIDISOSensitivity] = idx
	return nil
}
