// Package push registers the device's push token with the backend.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teslashibe/go-moodshell/internal/httpc"
	"github.com/teslashibe/go-moodshell/internal/log"
)

// Defaults for token registration retries.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 10 * time.Second
)

var ErrMissingParams = errors.New("push: user id, auth token and endpoint are required")

// Registration is the body posted to the push token endpoint.
type Registration struct {
	UserID        string `json:"userId"`
	Platform      string `json:"platform"`
	PushToken     string `json:"pushToken,omitempty"`
	HasPermission *bool  `json:"hasPermission,omitempty"`
	Remove        bool   `json:"remove,omitempty"`
}

// Config configures a Registrar.
type Config struct {
	Endpoint       string
	UserID         string
	AuthToken      string
	Platform       string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Registrar sends push token registrations with retry.
type Registrar struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRegistrar creates a registrar. Zero retry fields take the defaults.
func NewRegistrar(cfg Config, hc *http.Client) *Registrar {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if hc == nil {
		hc = httpc.Client
	}
	return &Registrar{
		cfg:    cfg,
		http:   hc,
		logger: log.With("component", "push"),
		sleep:  sleepCtx,
	}
}

// Register sends the device token. An empty token registers the device as
// having no notification permission.
func (r *Registrar) Register(ctx context.Context, token string) error {
	reg := Registration{UserID: r.cfg.UserID, Platform: r.cfg.Platform}
	if token != "" {
		reg.PushToken = token
	} else {
		denied := false
		reg.HasPermission = &denied
	}
	return r.send(ctx, reg)
}

// Unregister asks the backend to forget this device, e.g. on logout.
func (r *Registrar) Unregister(ctx context.Context) error {
	return r.send(ctx, Registration{UserID: r.cfg.UserID, Platform: r.cfg.Platform, Remove: true})
}

// Backoff returns the delay before retry number attempt (1-based):
// min(initial * 2^(attempt-1), max).
func Backoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

func (r *Registrar) send(ctx context.Context, reg Registration) error {
	if r.cfg.UserID == "" || r.cfg.AuthToken == "" || r.cfg.Endpoint == "" {
		r.logger.Warn("missing required parameters", "user", r.cfg.UserID != "", "token", r.cfg.AuthToken != "", "endpoint", r.cfg.Endpoint)
		return ErrMissingParams
	}

	headers := map[string]string{"Authorization": "Bearer " + r.cfg.AuthToken}

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		r.logger.Debug("sending push registration", "attempt", attempt, "max", r.cfg.MaxAttempts, "remove", reg.Remove)

		err := httpc.PostJSON(ctx, r.http, r.cfg.Endpoint, headers, reg, nil)
		if err == nil {
			r.logger.Info("push token registered", "platform", reg.Platform, "remove", reg.Remove, "attempt", attempt)
			return nil
		}
		lastErr = err

		var se *httpc.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			r.logger.Error("push registration rejected, not retrying", "status", se.StatusCode)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := Backoff(attempt, r.cfg.InitialBackoff, r.cfg.MaxBackoff)
		r.logger.Warn("push registration failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	r.logger.Error("push registration gave up", "attempts", r.cfg.MaxAttempts, "error", lastErr)
	return fmt.Errorf("push registration failed after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
