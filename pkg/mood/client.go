package mood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-moodshell/internal/httpc"
	"github.com/teslashibe/go-moodshell/internal/log"
)

// MoodsPath is the backend path for mood entries.
const MoodsPath = "/api/moods"

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mood api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("mood api: status %d: %s", e.StatusCode, e.Message)
}

// Created is the backend's response to a saved entry.
type Created struct {
	ID        any    `json:"id"`
	MoodScore int    `json:"mood_score"`
	Message   string `json:"message,omitempty"`
}

// Client posts mood entries to the backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL, authenticating
// with token. A nil hc uses the shared httpc.Client.
func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = httpc.Client
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
		logger:  log.With("component", "mood"),
	}
}

// SetToken replaces the bearer token, e.g. after loginSuccess.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Create validates and posts an entry.
func (c *Client) Create(ctx context.Context, e Entry) (*Created, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	headers := map[string]string{"X-Request-ID": requestID}
	if token := c.Token(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	c.logger.Info("creating mood entry", "request_id", requestID, "score", e.MoodScore, "type", e.EntryType)

	var out Created
	err := httpc.PostJSON(ctx, c.http, c.baseURL+MoodsPath, headers, e, &out)
	if err != nil {
		var se *httpc.StatusError
		if errors.As(err, &se) {
			apiErr := &APIError{StatusCode: se.StatusCode, Message: errorMessage(se.Body)}
			c.logger.Error("mood entry rejected", "request_id", requestID, "status", se.StatusCode, "error", apiErr.Message)
			return nil, apiErr
		}
		c.logger.Error("mood entry failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("create mood entry: %w", err)
	}

	c.logger.Info("mood entry created", "request_id", requestID, "id", out.ID)
	return &out, nil
}

// errorMessage extracts {"message": "..."} from an error body, falling back
// to the raw body.
func errorMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return body
}
