// Package config provides configuration helpers for the camera settings commands.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when the environment does not say otherwise.
const (
	DefaultListenPort   = "8181"
	DefaultLogLevel     = "info"
	DefaultCameraDevice = 0
	settingsDirName     = ".camsettings"
	settingsFileName    = "prefs.json"
)

// Config holds the settings shared by the commands.
type Config struct {
	// CameraDevice is the capture device index opened through gocv.
	CameraDevice int

	// CameraV4L2Device is a V4L2 device node. When set it is opened
	// through go4vl instead of the gocv device index.
	CameraV4L2Device string

	// CameraParams is a flattened parameter report ("k=v;k=v").
	// When set it replaces the hardware probe.
	CameraParams string

	// CameraParamsURL points at an HTTP endpoint serving a flattened report.
	CameraParamsURL string

	// SettingsPath is the JSON preference file.
	SettingsPath string

	// CatalogPath is an optional YAML catalog. Empty uses the embedded one.
	CatalogPath string

	ListenPort string
	LogLevel   string
	Debug      bool
}

// Load reads a .env file if present (or the given files), then the environment.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		CameraDevice:     getEnvInt("CAMERA_DEVICE", DefaultCameraDevice),
		CameraV4L2Device: getEnv("CAMERA_V4L2_DEVICE", ""),
		CameraParams:     getEnv("CAMERA_PARAMS", ""),
		CameraParamsURL:  getEnv("CAMERA_PARAMS_URL", ""),
		SettingsPath:     getEnv("SETTINGS_PATH", DefaultSettingsPath()),
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		ListenPort:       getEnv("LISTEN_PORT", DefaultListenPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		Debug:            getEnvBool("DEBUG", false),
	}
}

// DefaultSettingsPath returns ~/.camsettings/prefs.json, or a relative path
// when the home directory cannot be resolved.
func DefaultSettingsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(settingsDirName, settingsFileName)
	}
	return filepath.Join(homeDir, settingsDirName, settingsFileName)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
