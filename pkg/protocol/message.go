// Package protocol defines the WebSocket message types exchanged between the
// shell and its content views.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// View → Shell messages
	TypeReady      MessageType = "ready"       // View mounted and can navigate
	TypeURLChanged MessageType = "url_changed" // View finished loading a URL
	TypeWebAction  MessageType = "web_action"  // Web app requests a native action

	// Shell → View messages
	TypeNavigate MessageType = "navigate" // Load a URL
	TypeReload   MessageType = "reload"   // Reload the current page
	TypeAnalysis MessageType = "analysis" // Selfie analysis result
	TypeAlert    MessageType = "alert"    // Show a native alert

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Web actions sent by the web application
const (
	WebActionLoginSuccess = "loginSuccess"
	WebActionLogout       = "logout"
	WebActionShare        = "share"
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// View → Shell Message Types
// =============================================================================

// ReadyData announces a mounted view
type ReadyData struct {
	URL string `json:"url,omitempty"` // URL the view is showing, if any
}

// URLChangedData reports the view's current URL
type URLChangedData struct {
	URL string `json:"url"`
}

// WebActionData is a request from the web application.
// Known actions: loginSuccess, logout, share.
type WebActionData struct {
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// =============================================================================
// Shell → View Message Types
// =============================================================================

// NavigateData instructs the view to load a URL
type NavigateData struct {
	URL string `json:"url"`
}

// AlertData asks the view to display an alert
type AlertData struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
