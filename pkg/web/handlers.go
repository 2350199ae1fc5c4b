package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/hub"
	"github.com/teslashibe/go-camsettings/pkg/settings"
)

// SelectRequest is the body of PUT /api/settings/:key
type SelectRequest struct {
	Value *string `json:"value"`
}

// PresetResponse reports which settings a preset changed
type PresetResponse struct {
	Preset  string         `json:"preset"`
	Applied []settings.Key `json:"applied"`
}

// errorHandler renders every error as {"error": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, settings.ErrUnknownKey), errors.Is(err, settings.ErrUnknownPreset):
		return fiber.StatusNotFound
	case errors.Is(err, settings.ErrDisabled):
		return fiber.StatusConflict
	case errors.Is(err, settings.ErrUnsupportedValue):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, settings.ErrNotInitialized):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) selector(c *fiber.Ctx) (*settings.ListPreference, error) {
	key, ok := settings.ParseKey(c.Params("key"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown setting: "+c.Params("key"))
	}
	sel, _ := s.ctrl.Selector(key)
	return sel, nil
}

func (s *Server) handleListSettings(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Snapshots())
}

func (s *Server) handleGetSetting(c *fiber.Ctx) error {
	sel, err := s.selector(c)
	if err != nil {
		return err
	}
	return c.JSON(sel.Snapshot())
}

// handlePutSetting stores a selection. The summary refresh and the feed
// event follow from the store notification.
func (s *Server) handlePutSetting(c *fiber.Ctx) error {
	sel, err := s.selector(c)
	if err != nil {
		return err
	}

	var req SelectRequest
	if err := c.BodyParser(&req); err != nil || req.Value == nil {
		return fiber.NewError(fiber.StatusBadRequest, `body must be {"value": "..."}`)
	}

	if err := s.ctrl.Select(sel.Key(), *req.Value); err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	s.logger.Info("setting selected", "key", sel.Key(), "value", *req.Value)
	return c.JSON(sel.Snapshot())
}

func (s *Server) handleCapabilities(c *fiber.Ctx) error {
	return c.JSON(camera.Capabilities(s.ctrl.Capabilities()))
}

func (s *Server) handleListPresets(c *fiber.Ctx) error {
	return c.JSON(camera.Presets())
}

func (s *Server) handleApplyPreset(c *fiber.Ctx) error {
	name := c.Params("name")
	applied, err := s.ctrl.ApplyPreset(name)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	if applied == nil {
		applied = []settings.Key{}
	}

	if err := s.settingsHub.Publish(hub.NewEvent(hub.EventPreset, name)); err != nil {
		s.logger.Warn("failed to publish preset", "preset", name, "error", err)
	}
	return c.JSON(PresetResponse{Preset: name, Applied: applied})
}

// handleCameraConfig returns the configuration last applied to the camera
func (s *Server) handleCameraConfig(c *fiber.Ctx) error {
	if s.manager == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no camera configuration applied")
	}
	return c.JSON(s.manager.GetConfig())
}

// handleSettingsWS streams setting events until the client disconnects.
func (s *Server) handleSettingsWS(c *websocket.Conn) {
	hub.NewClient(s.settingsHub, c).Run()
}
