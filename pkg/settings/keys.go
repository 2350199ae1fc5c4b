package settings

// Key identifies a camera setting in the preference store.
type Key string

// Known setting keys.
const (
	KeyVideoQuality Key = "pref_camera_videoquality_key"
	KeyWhiteBalance Key = "pref_camera_whitebalance_key"
	KeyEffect       Key = "pref_camera_effect_key"
	KeyBrightness   Key = "pref_camera_brightness_key"
	KeyPictureSize  Key = "pref_camera_picturesize_key"
	KeyJPEGQuality  Key = "pref_camera_jpegquality_key"
	KeyFocusMode    Key = "pref_camera_focusmode_key"
	KeyISO          Key = "pref_camera_iso_key"
)

var allKeys = []Key{
	KeyVideoQuality,
	KeyWhiteBalance,
	KeyEffect,
	KeyBrightness,
	KeyPictureSize,
	KeyJPEGQuality,
	KeyFocusMode,
	KeyISO,
}

// gatedKeys are offered only the values the camera reports.
var gatedKeys = map[Key]bool{
	KeyWhiteBalance: true,
	KeyEffect:       true,
	KeyBrightness:   true,
	KeyPictureSize:  true,
	KeyISO:          true,
}

// defaultedKeys get a stored value when none exists.
var defaultedKeys = map[Key]bool{
	KeyJPEGQuality: true,
	KeyFocusMode:   true,
}

// Gated reports whether k's options depend on camera capabilities.
func (k Key) Gated() bool { return gatedKeys[k] }

// Defaulted reports whether k gets a default when nothing is stored.
func (k Key) Defaulted() bool { return defaultedKeys[k] }

// Keys returns every known key in screen order.
func Keys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// ParseKey returns the Key for s if it is known.
func ParseKey(s string) (Key, bool) {
	for _, k := range allKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k Key) String() string {
	return string(k)
}
