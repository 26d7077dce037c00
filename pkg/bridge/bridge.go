// Package bridge connects content views to the router over WebSocket.
//
// A content view connects to /ws/view, sends "ready" once it can navigate,
// and from then on receives navigate and reload commands. The most recent
// ready view owns navigation.
package bridge

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/debug"
	"github.com/teslashibe/go-moodshell/pkg/metrics"
	"github.com/teslashibe/go-moodshell/pkg/protocol"
	"github.com/teslashibe/go-moodshell/pkg/router"
)

// View represents a connected content view
type View struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	mu           sync.Mutex
	lastSeen     time.Time
	url          string
	registration router.Registration
}

// Send sends a message to the view
func (v *View) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Conn.WriteMessage(websocket.TextMessage, data)
}

func (v *View) touch() {
	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()
}

// Bridge manages WebSocket connections from content views
type Bridge struct {
	router  *router.Router
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.RWMutex
	views map[string]*View

	onWebAction func(viewID string, action *protocol.WebActionData)

	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
}

// New creates a bridge that registers ready views with r
func New(r *router.Router, m *metrics.Metrics) *Bridge {
	return &Bridge{
		router:  r,
		metrics: m,
		logger:  log.With("component", "bridge"),
		views:   make(map[string]*View),
	}
}

// OnWebAction sets the callback for web_action messages
func (b *Bridge) OnWebAction(callback func(viewID string, action *protocol.WebActionData)) {
	b.mu.Lock()
	b.onWebAction = callback
	b.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (b *Bridge) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/view", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/view", websocket.New(b.handleView))
	app.Get("/ws/view/:id", websocket.New(b.handleView))
}

// handleView handles a content view WebSocket connection
func (b *Bridge) handleView(c *websocket.Conn) {
	viewID := c.Params("id")
	if viewID == "" {
		viewID = uuid.NewString()
	}

	now := time.Now()
	view := &View{
		ID:        viewID,
		Conn:      c,
		Connected: now,
		lastSeen:  now,
	}

	b.mu.Lock()
	if old, ok := b.views[viewID]; ok {
		old.Conn.Close()
	}
	b.views[viewID] = view
	count := len(b.views)
	b.mu.Unlock()

	b.metrics.SetViewsConnected(count)
	b.logger.Info("view connected", "view", viewID, "total", count)

	defer func() {
		b.mu.Lock()
		if b.views[viewID] == view {
			delete(b.views, viewID)
		}
		count := len(b.views)
		b.mu.Unlock()

		view.mu.Lock()
		reg := view.registration
		view.mu.Unlock()
		if reg != 0 {
			b.router.Unregister(reg)
		}

		b.metrics.SetViewsConnected(count)
		b.logger.Info("view disconnected", "view", viewID, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			b.logger.Debug("view read ended", "view", viewID, "error", err)
			return
		}

		view.touch()
		b.messagesReceived.Add(1)
		debug.Log("bridge <- %s: %s\n", viewID, data)
		b.handleMessage(view, data)
	}
}

// handleMessage processes an incoming message from a view
func (b *Bridge) handleMessage(view *View, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		b.logger.Warn("parse error", "view", view.ID, "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeReady:
		ready, err := msg.GetReadyData()
		if err != nil {
			b.logger.Warn("bad ready payload", "view", view.ID, "error", err)
			return
		}
		b.registerView(view, ready.URL)

	case protocol.TypeURLChanged:
		changed, err := msg.GetURLChangedData()
		if err != nil || changed.URL == "" {
			return
		}
		view.mu.Lock()
		view.url = changed.URL
		reg := view.registration
		view.mu.Unlock()
		if reg != 0 && reg == b.router.Current() {
			b.router.SetCurrentURL(changed.URL)
		}

	case protocol.TypeWebAction:
		action, err := msg.GetWebActionData()
		if err != nil || action.Action == "" {
			b.logger.Warn("bad web_action payload", "view", view.ID)
			return
		}
		b.mu.RLock()
		cb := b.onWebAction
		b.mu.RUnlock()
		b.logger.Info("web action", "view", view.ID, "action", action.Action)
		if cb != nil {
			cb(view.ID, action)
		}

	case protocol.TypePing:
		ping, _ := msg.GetPingData()
		id := ""
		if ping != nil {
			id = ping.ID
		}
		b.send(view, func() (*protocol.Message, error) {
			return protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli())
		})

	default:
		b.logger.Debug("ignoring message", "view", view.ID, "type", msg.Type)
	}
}

// registerView makes view the router's navigation target
func (b *Bridge) registerView(view *View, url string) {
	if url != "" {
		view.mu.Lock()
		view.url = url
		view.mu.Unlock()
		b.router.SetCurrentURL(url)
	}

	navigate := func(target string) {
		b.send(view, func() (*protocol.Message, error) {
			return protocol.NewNavigateMessage(target)
		})
	}
	reload := func() {
		b.send(view, protocol.NewReloadMessage)
	}

	view.mu.Lock()
	prev := view.registration
	view.mu.Unlock()
	if prev != 0 {
		b.router.Unregister(prev)
	}

	reg := b.router.RegisterTarget(navigate, reload)

	view.mu.Lock()
	view.registration = reg
	view.mu.Unlock()

	b.logger.Info("view registered for navigation", "view", view.ID, "registration", reg)
}

func (b *Bridge) send(view *View, build func() (*protocol.Message, error)) {
	msg, err := build()
	if err != nil {
		b.logger.Error("build message", "error", err)
		return
	}
	if err := view.Send(msg); err != nil {
		b.logger.Warn("send failed", "view", view.ID, "type", msg.Type, "error", err)
		return
	}
	b.messagesSent.Add(1)
}

// SendToView sends a message to a specific view
func (b *Bridge) SendToView(viewID string, msg *protocol.Message) error {
	b.mu.RLock()
	view, ok := b.views[viewID]
	b.mu.RUnlock()

	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "view not connected")
	}

	b.messagesSent.Add(1)
	return view.Send(msg)
}

// Broadcast sends a message to all connected views
func (b *Bridge) Broadcast(msg *protocol.Message) {
	for _, view := range b.snapshot() {
		b.messagesSent.Add(1)
		if err := view.Send(msg); err != nil {
			b.logger.Warn("broadcast error", "view", view.ID, "error", err)
		}
	}
}

// Alert broadcasts an alert to all views. It matches router.AlertFunc.
func (b *Bridge) Alert(title, message string) {
	msg, err := protocol.NewAlertMessage(title, message)
	if err != nil {
		return
	}
	b.Broadcast(msg)
}

func (b *Bridge) snapshot() []*View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	views := make([]*View, 0, len(b.views))
	for _, v := range b.views {
		views = append(views, v)
	}
	return views
}

// ViewCount returns the number of connected views
func (b *Bridge) ViewCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.views)
}

// Stats contains bridge statistics
type Stats struct {
	ViewCount        int    `json:"view_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	Registered       bool   `json:"registered"`
}

// GetStats returns bridge statistics
func (b *Bridge) GetStats() Stats {
	return Stats{
		ViewCount:        b.ViewCount(),
		MessagesReceived: b.messagesReceived.Load(),
		MessagesSent:     b.messagesSent.Load(),
		Registered:       b.router.Registered(),
	}
}

// ViewInfo contains info about a connected view
type ViewInfo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url,omitempty"`
	Connected  time.Time `json:"connected"`
	LastSeen   time.Time `json:"last_seen"`
	Navigating bool      `json:"navigating"`
}

// GetViewInfos returns info about all connected views
func (b *Bridge) GetViewInfos() []ViewInfo {
	current := b.router.Current()
	views := b.snapshot()

	infos := make([]ViewInfo, 0, len(views))
	for _, v := range views {
		v.mu.Lock()
		infos = append(infos, ViewInfo{
			ID:         v.ID,
			URL:        v.url,
			Connected:  v.Connected,
			LastSeen:   v.lastSeen,
			Navigating: v.registration != 0 && v.registration == current,
		})
		v.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers API routes for view management
func (b *Bridge) RegisterAPIRoutes(api fiber.Router) {
	views := api.Group("/views")

	views.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"views": b.GetViewInfos(),
			"count": b.ViewCount(),
		})
	})

	views.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(b.GetStats())
	})

	// Send an alert to one view
	views.Post("/:id/alert", func(c *fiber.Ctx) error {
		var req protocol.AlertData
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		msg, err := protocol.NewAlertMessage(req.Title, req.Message)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if err := b.SendToView(c.Params("id"), msg); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "sent"})
	})
}
