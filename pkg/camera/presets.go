package camera

import "sort"

// Preset names for common shooting situations
const (
	PresetDefault  = "default"
	PresetDaylight = "daylight"
	PresetIndoor   = "indoor"
	PresetNight    = "night"
	PresetDocument = "document"
)

// Presets returns all available presets as current-value parameter bundles.
// Values a given camera does not support are skipped when a preset is applied.
func Presets() map[string]map[string]string {
	return map[string]map[string]string{
		PresetDefault:  DefaultPreset(),
		PresetDaylight: DaylightPreset(),
		PresetIndoor:   IndoorPreset(),
		PresetNight:    NightPreset(),
		PresetDocument: DocumentPreset(),
	}
}

// PresetNames returns the list of available preset names, sorted.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset by name, or nil if not found.
func GetPreset(name string) map[string]string {
	if p, ok := Presets()[name]; ok {
		return p
	}
	return nil
}

// DefaultPreset mirrors DefaultConfig.
func DefaultPreset() map[string]string {
	cfg := DefaultConfig()
	return map[string]string{
		ParamWhiteBalance: cfg.WhiteBalance,
		ParamEffect:       cfg.Effect,
		ParamBrightness:   "3",
		ParamISO:          cfg.ISO,
		ParamFocusMode:    cfg.FocusMode,
	}
}

// DaylightPreset is tuned for outdoor light.
func DaylightPreset() map[string]string {
	return map[string]string{
		ParamWhiteBalance: "daylight",
		ParamISO:          "100",
		ParamBrightness:   "3",
	}
}

// IndoorPreset compensates for tungsten lighting.
func IndoorPreset() map[string]string {
	return map[string]string{
		ParamWhiteBalance: "incandescent",
		ParamISO:          "400",
		ParamBrightness:   "4",
	}
}

// NightPreset raises sensitivity and brightness for low light.
func NightPreset() map[string]string {
	return map[string]string{
		ParamWhiteBalance: "auto",
		ParamISO:          "800",
		ParamBrightness:   "5",
		ParamEffect:       "none",
	}
}

// DocumentPreset favors legible text: mono, fine JPEG, close focus.
func DocumentPreset() map[string]string {
	return map[string]string{
		ParamEffect:      "mono",
		ParamJPEGQuality: "100",
		ParamFocusMode:   "auto",
	}
}
