package camera

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the camera configuration applied from the user's selections.
type Config struct {
	// VideoQualityHigh selects high-quality recording (long clips, full size).
	VideoQualityHigh bool `json:"video_quality_high"`

	// === Picture ===
	Width   int `json:"width"`   // Picture width in pixels
	Height  int `json:"height"`  // Picture height in pixels
	Quality int `json:"quality"` // JPEG quality 1-100

	// === Image processing ===
	WhiteBalance string `json:"white_balance"`
	Effect       string `json:"effect"`

	// Brightness is a driver level, 0 to MaxBrightness.
	Brightness int `json:"brightness"`

	// ISO is "auto" or a sensitivity token reported by the driver.
	ISO string `json:"iso"`

	// FocusMode is e.g. "auto" or "infinity".
	FocusMode string `json:"focus_mode"`
}

// Sensor limits
const (
	MinPictureWidth  = 160
	MinPictureHeight = 120
	MaxPictureWidth  = 4608
	MaxPictureHeight = 3456
	MaxBrightness    = 6

	// DefaultVideoQualityHigh is the video quality used when nothing is stored.
	DefaultVideoQualityHigh = true
)

// DefaultConfig returns the configuration used before any selection is applied.
func DefaultConfig() Config {
	return Config{
		VideoQualityHigh: DefaultVideoQualityHigh,
		Width:            2048,
		Height:           1536,
		Quality:          85,
		WhiteBalance:     "auto",
		Effect:           "none",
		Brightness:       3,
		ISO:              "auto",
		FocusMode:        "auto",
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width < MinPictureWidth || c.Width > MaxPictureWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinPictureWidth, MaxPictureWidth))
	}
	if c.Height < MinPictureHeight || c.Height > MaxPictureHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinPictureHeight, MaxPictureHeight))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.Brightness < 0 || c.Brightness > MaxBrightness {
		errors = append(errors, fmt.Sprintf("brightness must be between 0 and %d", MaxBrightness))
	}
	if c.WhiteBalance == "" {
		errors = append(errors, "white_balance must not be empty")
	}
	if c.Effect == "" {
		errors = append(errors, "effect must not be empty")
	}
	if c.FocusMode == "" {
		errors = append(errors, "focus_mode must not be empty")
	}
	if c.ISO == "" {
		errors = append(errors, "iso must not be empty")
	}

	return errors
}

// PictureSize returns the size token, e.g. "2048x1536".
func (c *Config) PictureSize() string {
	return FormatPictureSize(c.Width, c.Height)
}

// Parameters renders the configuration as current-value camera parameters.
func (c *Config) Parameters() Parameters {
	var p Parameters
	p.Set(ParamVideoQuality, FormatVideoQuality(c.VideoQualityHigh))
	p.Set(ParamPictureSize, c.PictureSize())
	p.Set(ParamJPEGQuality, strconv.Itoa(c.Quality))
	p.Set(ParamWhiteBalance, c.WhiteBalance)
	p.Set(ParamEffect, c.Effect)
	p.Set(ParamBrightness, strconv.Itoa(c.Brightness))
	p.Set(ParamISO, c.ISO)
	p.Set(ParamFocusMode, c.FocusMode)
	return p
}

// ParsePictureSize parses "WIDTHxHEIGHT".
func ParsePictureSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid picture size %q", s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid picture width %q: %w", ws, err)
	}
	height, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid picture height %q: %w", hs, err)
	}
	return width, height, nil
}

// FormatPictureSize renders a size token.
func FormatPictureSize(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// FormatVideoQuality renders the video quality value stored in preferences.
func FormatVideoQuality(high bool) string {
	if high {
		return "1"
	}
	return "0"
}

// Capabilities summarizes what a report says the camera supports.
func Capabilities(p Parameters) map[string][]string {
	out := make(map[string][]string)
	for _, name := range []string{
		SupportedWhiteBalance,
		SupportedEffect,
		SupportedBrightness,
		SupportedPictureSize,
		SupportedISO,
		SupportedFocusMode,
	} {
		if p.Has(name) {
			out[name] = p.Supported(name)
		}
	}
	return out
}
