// camsettings - camera settings from the command line or over HTTP
//
// Reads what the camera supports, offers each setting only the values the
// camera reports, and keeps the selections in a JSON preference file.
//
// Usage:
//
//	camsettings                                  # list settings
//	camsettings -set pref_camera_effect_key=mono # select a value
//	camsettings -preset night                    # apply a preset
//	camsettings -serve -port 8181                # JSON API + websocket feed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-camsettings/internal/config"
	"github.com/teslashibe/go-camsettings/internal/log"
	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/camera/gocvcam"
	"github.com/teslashibe/go-camsettings/pkg/camera/v4l2cam"
	"github.com/teslashibe/go-camsettings/pkg/catalog"
	"github.com/teslashibe/go-camsettings/pkg/debug"
	"github.com/teslashibe/go-camsettings/pkg/prefs"
	"github.com/teslashibe/go-camsettings/pkg/settings"
	"github.com/teslashibe/go-camsettings/pkg/web"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*a = append(*a, v)
	return nil
}

type options struct {
	config.Config
	sets   assignments
	preset string
	serve  bool
	probe  bool
}

func main() {
	opts := parseFlags()

	log.Init(opts.LogLevel)
	debug.Enabled = opts.Debug
	debug.Probe = opts.probe

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

// parseFlags reads the environment, then lets flags override it.
func parseFlags() options {
	opts := options{Config: config.Load()}

	device := flag.Int("device", opts.CameraDevice, "Capture device index")
	v4l2Path := flag.String("v4l2", opts.CameraV4L2Device, "V4L2 device node, e.g. /dev/video0 (read through go4vl instead of gocv)")
	params := flag.String("params", opts.CameraParams, "Flattened capability report (k=v;k=v) instead of probing a device")
	paramsURL := flag.String("params-url", opts.CameraParamsURL, "URL serving a flattened capability report")
	store := flag.String("store", opts.SettingsPath, "Preference file")
	catalogPath := flag.String("catalog", opts.CatalogPath, "YAML catalog (default: embedded)")
	port := flag.String("port", opts.ListenPort, "HTTP port for -serve")
	logLevel := flag.String("log-level", opts.LogLevel, "Log level: debug, info, warn, error")
	dbg := flag.Bool("debug", opts.Debug, "Enable verbose debug logging")
	flag.Var(&opts.sets, "set", "Select a value, key=value (repeatable)")
	flag.StringVar(&opts.preset, "preset", "", "Apply a preset: "+strings.Join(camera.PresetNames(), ", "))
	flag.BoolVar(&opts.serve, "serve", false, "Serve the settings API until interrupted")
	flag.BoolVar(&opts.probe, "debug-probe", false, "Log every hardware probe step")
	flag.Parse()

	opts.CameraDevice = *device
	opts.CameraV4L2Device = *v4l2Path
	opts.CameraParams = *params
	opts.CameraParamsURL = *paramsURL
	opts.SettingsPath = *store
	opts.CatalogPath = *catalogPath
	opts.ListenPort = *port
	opts.LogLevel = *logLevel
	opts.Debug = *dbg
	return opts
}

func newOpener(cfg config.Config) camera.Opener {
	switch {
	case cfg.CameraParams != "":
		return camera.NewStaticOpenerFromString(cfg.CameraParams)
	case cfg.CameraParamsURL != "":
		return camera.NewHTTPOpener(cfg.CameraParamsURL)
	case cfg.CameraV4L2Device != "":
		return v4l2cam.New(cfg.CameraV4L2Device)
	default:
		return gocvcam.New(cfg.CameraDevice)
	}
}

func run(ctx context.Context, opts options) error {
	cat, err := catalog.LoadOrDefault(opts.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	store, err := prefs.NewJSONStore(opts.SettingsPath)
	if err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	defer store.Close()

	opener := newOpener(opts.Config)
	ctrl, err := settings.New(opener, store, cat)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	fmt.Println("📷 Reading camera capabilities...")
	if err := ctrl.Initialize(ctx); err != nil {
		return err
	}
	ctrl.Resume()
	fmt.Printf("✅ Camera ready (%d parameters reported)\n", ctrl.Capabilities().Len())

	manager := camera.NewManager()
	manager.OnConfigChange = func(cfg camera.Config) error {
		return camera.PushConfig(ctx, opener, cfg)
	}

	for _, a := range opts.sets {
		name, value, _ := strings.Cut(a, "=")
		key, ok := settings.ParseKey(name)
		if !ok {
			return fmt.Errorf("%w: %s", settings.ErrUnknownKey, name)
		}
		if err := ctrl.Select(key, value); err != nil {
			return err
		}
		fmt.Printf("✏️  %s = %s\n", key, value)
	}

	if opts.preset != "" {
		applied, err := ctrl.ApplyPreset(opts.preset)
		if err != nil {
			return err
		}
		fmt.Printf("🎨 Preset %q applied to %d settings\n", opts.preset, len(applied))
	}

	applyToCamera(manager, ctrl)
	printSettings(ctrl)

	if !opts.serve {
		return nil
	}

	server := web.NewServer(opts.ListenPort, ctrl, manager)
	ctrl.OnSummaryChange = func(snap settings.Snapshot) {
		server.PublishSetting(snap)
		applyToCamera(manager, ctrl)
	}

	fmt.Printf("🌐 Settings API: http://localhost:%s/api/settings\n", opts.ListenPort)
	fmt.Println("   Press Ctrl+C to stop")
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	fmt.Println("\n👋 Stopped")
	return nil
}

// applyToCamera pushes the current selections to the device.
// Failures are reported but do not stop the command.
func applyToCamera(manager *camera.Manager, ctrl *settings.Controller) {
	if err := manager.UpdateConfig(ctrl.CameraParams()); err != nil {
		fmt.Printf("⚠️  Could not apply settings to camera: %v\n", err)
	}
}

func printSettings(ctrl *settings.Controller) {
	fmt.Println()
	for _, snap := range ctrl.Snapshots() {
		summary := snap.Summary
		switch {
		case !snap.Enabled:
			summary = "(not supported)"
		case summary == "":
			summary = "-"
		}

		labels := make([]string, len(snap.Options))
		for i, o := range snap.Options {
			labels[i] = o.Label
		}
		fmt.Printf("  %-16s %-16s %s\n", snap.Title, summary, strings.Join(labels, " | "))
	}
	fmt.Println()
}
