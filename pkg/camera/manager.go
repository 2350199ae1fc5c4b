package camera

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// PresetParam is the UpdateConfig key that selects a preset before overrides.
const PresetParam = "preset"

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// Callback when config changes (for applying to camera)
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager with default config.
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the camera configuration.
func (m *Manager) SetConfig(cfg Config) error {
	if errors := cfg.Validate(); len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	m.mu.Lock()
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// UpdateConfig updates specific fields of the configuration.
// Keys are current-value parameter names (ParamEffect, ParamISO, ...);
// unknown keys are ignored. A "preset" key is applied first.
func (m *Manager) UpdateConfig(params map[string]string) error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if presetName, ok := params[PresetParam]; ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", presetName)
		}
		merged := make(map[string]string, len(preset)+len(params))
		for k, v := range preset {
			merged[k] = v
		}
		for k, v := range params {
			if k != PresetParam {
				merged[k] = v
			}
		}
		params = merged
	}

	for key, value := range params {
		if err := applyParam(&cfg, key, value); err != nil {
			return err
		}
	}

	return m.SetConfig(cfg)
}

func applyParam(cfg *Config, key, value string) error {
	switch key {
	case ParamVideoQuality:
		cfg.VideoQualityHigh = value != "0"
	case ParamPictureSize:
		w, h, err := ParsePictureSize(value)
		if err != nil {
			return err
		}
		cfg.Width, cfg.Height = w, h
	case ParamJPEGQuality:
		q, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid jpeg quality %q: %w", value, err)
		}
		cfg.Quality = q
	case ParamBrightness:
		b, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid brightness %q: %w", value, err)
		}
		cfg.Brightness = b
	case ParamWhiteBalance:
		cfg.WhiteBalance = value
	case ParamEffect:
		cfg.Effect = value
	case ParamISO:
		cfg.ISO = value
	case ParamFocusMode:
		cfg.FocusMode = value
	}
	return nil
}

// PushConfig opens a handle, applies cfg as current-value parameters and
// releases the handle.
func PushConfig(ctx context.Context, opener Opener, cfg Config) error {
	dev, err := opener.Open(ctx)
	if err != nil {
		return err
	}
	err = dev.SetParameters(cfg.Parameters())
	if relErr := dev.Release(); relErr != nil && err == nil {
		err = relErr
	}
	return err
}
