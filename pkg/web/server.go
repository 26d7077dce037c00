// Package web provides the local HTTP API and debug overlay for the shell.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/bridge"
	"github.com/teslashibe/go-moodshell/pkg/camera"
	"github.com/teslashibe/go-moodshell/pkg/hub"
	"github.com/teslashibe/go-moodshell/pkg/mood"
	"github.com/teslashibe/go-moodshell/pkg/protocol"
	"github.com/teslashibe/go-moodshell/pkg/router"
	"github.com/teslashibe/go-moodshell/pkg/selfie"
)

// maxLogs is the size of the log backlog sent to new overlay clients.
const maxLogs = 500

// MoodCreator saves confirmed mood entries.
type MoodCreator interface {
	Create(ctx context.Context, e mood.Entry) (*mood.Created, error)
}

// Config wires the server to the rest of the shell.
// Router is required; nil collaborators disable their endpoints.
type Config struct {
	Version      string
	AllowOrigins string
	Debug        bool // Log every request

	Router   *router.Router
	Bridge   *bridge.Bridge
	Analyzer *selfie.Analyzer
	Moods    MoodCreator
	Camera   *camera.Manager
	Source   camera.Source // Local camera for /api/selfies/capture
	Gatherer prometheus.Gatherer
}

// LogEntry represents a log line for the debug overlay
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Server is the local API server
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	// Log buffer (last maxLogs entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	lastAnalysis   *selfie.Analysis
	lastAnalysisMu sync.RWMutex

	// Hubs for websocket broadcast
	logHub      *hub.Hub
	analysisHub *hub.Hub
}

// NewServer creates the API server and registers all routes
func NewServer(cfg Config) *Server {
	if cfg.Camera == nil {
		cfg.Camera = camera.NewManager()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}

	s := &Server{
		cfg:         cfg,
		logger:      log.With("component", "web"),
		logs:        make([]LogEntry, 0, maxLogs),
		logHub:      hub.New("logs"),
		analysisHub: hub.New("analysis"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "moodshell",
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if cfg.Debug {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/actions", s.handleListActions)
	api.Post("/actions/:name", s.handleRunAction)
	api.Post("/notifications", s.handleNotification)
	api.Post("/deeplinks", s.handleDeepLink)
	api.Post("/selfies/analyze", s.handleAnalyze)
	api.Post("/selfies/capture", s.handleCapture)
	api.Get("/selfies/last", s.handleLastAnalysis)
	api.Post("/moods", s.handleCreateMood)
	api.Get("/camera", s.handleGetCamera)
	api.Put("/camera", s.handleUpdateCamera)
	api.Get("/camera/presets", s.handleCameraPresets)
	api.Get("/logs", s.handleGetLogs)

	if cfg.Bridge != nil {
		cfg.Bridge.RegisterRoutes(app)
		cfg.Bridge.RegisterAPIRoutes(api)
	}

	// WebSocket upgrade middleware for overlay streams
	overlay := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
	app.Get("/ws/logs", overlay, websocket.New(s.handleLogsWS))
	app.Get("/ws/analysis", overlay, websocket.New(s.handleAnalysisWS))

	s.app = app
	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the hubs and serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	go s.logHub.Run(ctx)
	go s.analysisHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down api", "grace", grace)
		return s.app.ShutdownWithTimeout(grace)
	}
}

// AddLog adds a log entry and broadcasts it to overlay clients
func (s *Server) AddLog(level, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Level:   level,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}

// LogSink adapts AddLog for log.AddSink
func (s *Server) LogSink(level slog.Level, message string) {
	s.AddLog(level.String(), message)
}

// PublishAnalysis stores a as the latest analysis and sends it to overlay
// clients and connected content views. Overlay clients get the JSON result
// followed by the normalized selfie as a binary frame.
func (s *Server) PublishAnalysis(a *selfie.Analysis) {
	s.lastAnalysisMu.Lock()
	s.lastAnalysis = a
	s.lastAnalysisMu.Unlock()

	if err := s.analysisHub.BroadcastJSON(a); err != nil {
		s.logger.Error("encode analysis", "error", err)
		return
	}
	s.analysisHub.BroadcastImage(a.Image)

	if s.cfg.Bridge != nil {
		msg, err := protocol.NewAnalysisMessage(a)
		if err != nil {
			s.logger.Error("encode analysis", "error", err)
			return
		}
		s.cfg.Bridge.Broadcast(msg)
	}
}

// LastAnalysis returns the most recent analysis, or nil
func (s *Server) LastAnalysis() *selfie.Analysis {
	s.lastAnalysisMu.RLock()
	defer s.lastAnalysisMu.RUnlock()
	return s.lastAnalysis
}

// LogHub returns the log hub for external use
func (s *Server) LogHub() *hub.Hub {
	return s.logHub
}

// AnalysisHub returns the analysis hub for external use
func (s *Server) AnalysisHub() *hub.Hub {
	return s.analysisHub
}
