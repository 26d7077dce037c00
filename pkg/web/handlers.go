package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-moodshell/pkg/camera"
	"github.com/teslashibe/go-moodshell/pkg/hub"
	"github.com/teslashibe/go-moodshell/pkg/mood"
	"github.com/teslashibe/go-moodshell/pkg/router"
	"github.com/teslashibe/go-moodshell/pkg/selfie"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (s *Server) viewCount() int {
	if s.cfg.Bridge == nil {
		return 0
	}
	return s.cfg.Bridge.ViewCount()
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.cfg.Version,
		"views":   s.viewCount(),
	})
}

// StatusResponse is the router and shell state
type StatusResponse struct {
	Registered     bool    `json:"registered"`
	Pending        *string `json:"pending"`
	CurrentURL     string  `json:"current_url"`
	BaseURL        string  `json:"base_url"`
	NativeFeatures bool    `json:"native_features"`
	DeepLinking    bool    `json:"deep_linking"`
	Views          int     `json:"views"`
	Detector       bool    `json:"detector"`
}

// handleStatus returns the router state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	r := s.cfg.Router
	dec := r.Decoder()

	resp := StatusResponse{
		Registered:     r.Registered(),
		CurrentURL:     r.CurrentURL(),
		BaseURL:        r.BaseURL(),
		NativeFeatures: dec.NativeEnabled,
		DeepLinking:    dec.DeepLinking,
		Views:          s.viewCount(),
		Detector:       s.cfg.Analyzer != nil && s.cfg.Analyzer.HasDetector(),
	}
	if p := r.Pending(); p != nil {
		str := p.String()
		resp.Pending = &str
	}
	return c.JSON(resp)
}

// handleListActions returns the registered native action names
func (s *Server) handleListActions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"actions": s.cfg.Router.ActionNames()})
}

// handleRunAction runs a native action directly with the JSON body as data.
// Unlike notification dispatch, failures are reported to the caller.
func (s *Server) handleRunAction(c *fiber.Ctx) error {
	data := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&data); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid action json")
		}
	}

	name := c.Params("name")
	if err := s.cfg.Router.RunAction(name, data); err != nil {
		if errors.Is(err, router.ErrUnknownAction) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"action": name, "ok": true})
}

// handleNotification feeds a push notification into the router.
// Undecodable payloads are accepted and reported as not handled.
func (s *Server) handleNotification(c *fiber.Ctx) error {
	var n router.Notification
	if err := c.BodyParser(&n); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid notification json")
	}
	handled := s.cfg.Router.HandleNotification(n)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"handled": handled})
}

// DeepLinkRequest is the request body for POST /api/deeplinks
type DeepLinkRequest struct {
	URL string `json:"url"`
}

// handleDeepLink feeds an OS deep link into the router
func (s *Server) handleDeepLink(c *fiber.Ctx) error {
	var req DeepLinkRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "url is required")
	}
	handled := s.cfg.Router.HandleDeepLink(req.URL)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"handled": handled})
}

// handleAnalyze runs the selfie pipeline on an uploaded JPEG
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	if s.cfg.Analyzer == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "selfie analysis not configured")
	}

	body := c.Body()
	if len(body) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "image body is required")
	}

	// Copy: fasthttp reuses the request buffer after the handler returns.
	img := append([]byte(nil), body...)

	a, err := s.cfg.Analyzer.Analyze(c.UserContext(), img)
	if err != nil {
		if errors.Is(err, selfie.ErrInvalidImage) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	s.PublishAnalysis(a)
	return c.JSON(a)
}

// handleCapture takes a selfie from the local camera after the configured
// countdown and analyzes it
func (s *Server) handleCapture(c *fiber.Ctx) error {
	if s.cfg.Analyzer == nil || s.cfg.Source == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "camera capture not configured")
	}

	a, err := s.cfg.Analyzer.Capture(c.UserContext(), s.cfg.Source)
	if err != nil {
		if errors.Is(err, selfie.ErrInvalidImage) {
			return errorJSON(c, fiber.StatusBadGateway, err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	s.PublishAnalysis(a)
	return c.JSON(a)
}

// handleLastAnalysis returns the most recent analysis
func (s *Server) handleLastAnalysis(c *fiber.Ctx) error {
	a := s.LastAnalysis()
	if a == nil {
		return errorJSON(c, fiber.StatusNotFound, "no analysis yet")
	}
	return c.JSON(a)
}

// MoodRequest is the request body for POST /api/moods.
// With Selfie set the latest analysis is confirmed, otherwise a manual
// entry is created.
type MoodRequest struct {
	selfie.Confirmation
	Selfie bool `json:"selfie"`
}

// handleCreateMood confirms a mood and forwards it to the backend
func (s *Server) handleCreateMood(c *fiber.Ctx) error {
	if s.cfg.Moods == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "mood backend not configured")
	}

	var req MoodRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid mood json")
	}

	var entry mood.Entry
	if req.Selfie {
		a := s.LastAnalysis()
		if a == nil {
			return errorJSON(c, fiber.StatusConflict, "no selfie analysis to confirm")
		}
		entry = selfie.Confirm(a, req.Confirmation)
	} else {
		entry = mood.NewManualEntry(req.MoodScore, req.Note).
			WithEvent(req.EventID).
			WithTags(req.TagIDs...)
	}

	if err := entry.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := s.cfg.Moods.Create(c.UserContext(), entry)
	if err != nil {
		var apiErr *mood.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":           apiErr.Message,
				"upstream_status": apiErr.StatusCode,
			})
		}
		return errorJSON(c, fiber.StatusBadGateway, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"entry":   entry,
		"created": created,
		"label":   entry.Label(),
	})
}

// handleGetCamera returns the current camera settings
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(s.cfg.Camera.GetConfigJSON())
}

// handleUpdateCamera applies a partial camera settings update
func (s *Server) handleUpdateCamera(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid camera json")
	}
	if err := s.cfg.Camera.UpdateConfig(params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(s.cfg.Camera.GetConfigJSON())
}

// handleCameraPresets lists presets and supported settings
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets":      camera.PresetNames(),
		"capabilities": camera.Capabilities(),
	})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleLogsWS streams logs, starting with the backlog
func (s *Server) handleLogsWS(c *websocket.Conn) {
	s.logsMu.RLock()
	backlog := append([]LogEntry(nil), s.logs...)
	s.logsMu.RUnlock()

	for _, entry := range backlog {
		if err := c.WriteJSON(entry); err != nil {
			return
		}
	}

	hub.NewClient(s.logHub, c).Run()
}

// handleAnalysisWS streams analyses, starting with the latest one.
// Each result is followed by its selfie as a binary frame.
func (s *Server) handleAnalysisWS(c *websocket.Conn) {
	if a := s.LastAnalysis(); a != nil {
		if err := c.WriteJSON(a); err != nil {
			return
		}
		if len(a.Image) > 0 {
			if err := c.WriteMessage(websocket.BinaryMessage, a.Image); err != nil {
				return
			}
		}
	}

	hub.NewClient(s.analysisHub, c).Run()
}
