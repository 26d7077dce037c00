package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-moodshell/internal/config"
	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/protocol"
	"github.com/teslashibe/go-moodshell/pkg/push"
)

// tokenSetter is the part of the mood client the session updates on login.
type tokenSetter interface {
	SetToken(token string)
}

// session tracks the signed-in user reported by the content view and keeps
// the push registration in step with it.
type session struct {
	cfg    *config.Config
	moods  tokenSetter
	logger *slog.Logger

	mu     sync.Mutex
	userID string
	token  string

	// newRegistrar is replaced in tests.
	newRegistrar func(push.Config) registrar
}

type registrar interface {
	Register(ctx context.Context, token string) error
	Unregister(ctx context.Context) error
}

func newSession(cfg *config.Config, moods tokenSetter) *session {
	s := &session{
		cfg:    cfg,
		moods:  moods,
		logger: log.With("component", "session"),
		userID: cfg.Push.UserID,
		token:  cfg.API.Token,
	}
	s.newRegistrar = func(pc push.Config) registrar {
		return push.NewRegistrar(pc, nil)
	}
	return s
}

func (s *session) registrar() registrar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newRegistrar(push.Config{
		Endpoint:       s.cfg.PushURL(),
		UserID:         s.userID,
		AuthToken:      s.token,
		Platform:       s.cfg.Push.Platform,
		MaxAttempts:    s.cfg.Push.MaxAttempts,
		InitialBackoff: s.cfg.Push.InitialBackoff.Duration,
		MaxBackoff:     s.cfg.Push.MaxBackoff.Duration,
	})
}

// registerPush sends the configured device token for the current user.
func (s *session) registerPush(ctx context.Context) error {
	return s.registrar().Register(ctx, s.cfg.Push.DeviceToken)
}

// handleWebAction reacts to web_action messages from the content view.
func (s *session) handleWebAction(ctx context.Context, viewID string, action *protocol.WebActionData) {
	switch action.Action {
	case protocol.WebActionLoginSuccess:
		userID := stringField(action.Data, "userId")
		token := stringField(action.Data, "token")
		if userID == "" || token == "" {
			s.logger.Warn("loginSuccess without credentials", "view", viewID)
			return
		}

		s.mu.Lock()
		s.userID, s.token = userID, token
		s.mu.Unlock()
		s.moods.SetToken(token)
		s.logger.Info("user signed in", "view", viewID, "user", userID)

		if s.cfg.Push.Enabled {
			go func() {
				if err := s.registerPush(ctx); err != nil {
					s.logger.Warn("push registration after login failed", "error", err)
				}
			}()
		}

	case protocol.WebActionLogout:
		s.logger.Info("user signed out", "view", viewID)
		if s.cfg.Push.Enabled {
			// Bound to the signed-out user before the credentials are cleared.
			reg := s.registrar()
			go func() {
				if err := reg.Unregister(ctx); err != nil {
					s.logger.Warn("push unregister failed", "error", err)
				}
			}()
		}

		s.mu.Lock()
		s.userID, s.token = "", ""
		s.mu.Unlock()
		s.moods.SetToken("")

	case protocol.WebActionShare:
		s.logger.Info("share requested", "view", viewID,
			"url", stringField(action.Data, "url"), "message", stringField(action.Data, "message"))

	default:
		s.logger.Debug("unhandled web action", "view", viewID, "action", action.Action)
	}
}

func stringField(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (s *session) credentials() (userID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.token
}
