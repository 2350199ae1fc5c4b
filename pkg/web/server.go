// Package web serves the camera settings over HTTP and streams summary
// changes to websocket subscribers.
package web

import (
	"context"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-camsettings/internal/log"
	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/hub"
	"github.com/teslashibe/go-camsettings/pkg/settings"
)

// Server is the settings API server
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	ctrl    *settings.Controller
	manager *camera.Manager

	// Hub for the /ws/settings feed
	settingsHub *hub.Hub
}

// NewServer creates a server for ctrl. manager may be nil, in which case
// /api/camera reports that no configuration is applied.
func NewServer(port string, ctrl *settings.Controller, manager *camera.Manager) *Server {
	s := &Server{
		port:        port,
		logger:      log.Component("web"),
		ctrl:        ctrl,
		manager:     manager,
		settingsHub: hub.New("settings"),
	}
	s.settingsHub.Welcome = func() (hub.Message, error) {
		return hub.Encode(hub.NewEvent(hub.EventSnapshot, s.ctrl.Snapshots()))
	}

	app := fiber.New(fiber.Config{
		AppName:               "Camera Settings",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/settings", s.handleListSettings)
	api.Get("/settings/:key", s.handleGetSetting)
	api.Put("/settings/:key", s.handlePutSetting)
	api.Get("/capabilities", s.handleCapabilities)
	api.Get("/presets", s.handleListPresets)
	api.Post("/presets/:name", s.handleApplyPreset)
	api.Get("/camera", s.handleCameraConfig)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/settings", websocket.New(s.handleSettingsWS))

	s.app = app
	return s
}

// SetLogger replaces the server and hub loggers.
func (s *Server) SetLogger(l *slog.Logger) {
	s.logger = l
	s.settingsHub.SetLogger(l.With("hub", "settings"))
}

// App returns the fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the settings feed hub.
func (s *Server) Hub() *hub.Hub {
	return s.settingsHub
}

// Start listens on the configured port until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves ln until ctx is done. It may be called once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.settingsHub.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("serving settings", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// PublishSetting streams a selector snapshot to subscribers. It is meant
// to be installed as the controller's OnSummaryChange.
func (s *Server) PublishSetting(snap settings.Snapshot) {
	if err := s.settingsHub.Publish(hub.NewEvent(hub.EventSetting, snap)); err != nil {
		s.logger.Warn("failed to publish setting", "key", snap.Key, "error", err)
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
