// Package router routes push notifications and deep links to the content view.
//
// A Router holds at most one registered content view (its navigate and reload
// callbacks) and at most one pending target. Targets that arrive while no view
// is registered are buffered, latest wins, and flushed on the next
// registration.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/metrics"
)

// NavigateFunc navigates the content view to an absolute URL.
type NavigateFunc func(url string)

// ReloadFunc reloads the content view's current page.
type ReloadFunc func()

// ActionHandler runs a named native action with the notification data.
type ActionHandler func(data map[string]any) error

// AlertFunc shows a native alert. Used by the built-in "alert" action.
type AlertFunc func(title, message string)

// Registration identifies one content-view registration.
type Registration uint64

// Router is the process-wide notification and deep-link router.
type Router struct {
	decoder Decoder
	logger  *slog.Logger
	metrics *metrics.Metrics
	alert   AlertFunc

	mu         sync.Mutex
	navigate   NavigateFunc
	reload     ReloadFunc
	regID      Registration
	nextID     Registration
	pending    Target
	currentURL string
	actions    map[string]ActionHandler
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithMetrics records routing counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithNativeFeatures toggles notification handling.
func WithNativeFeatures(enabled bool) Option {
	return func(r *Router) { r.decoder.NativeEnabled = enabled }
}

// WithDeepLinking toggles deep-link handling.
func WithDeepLinking(enabled bool) Option {
	return func(r *Router) { r.decoder.DeepLinking = enabled }
}

// WithAlertHook sets the function the built-in "alert" action calls.
func WithAlertHook(fn AlertFunc) Option {
	return func(r *Router) { r.alert = fn }
}

// New creates a router for the web application at baseURL with the
// built-in "refresh" and "alert" actions registered.
func New(baseURL string, opts ...Option) *Router {
	r := &Router{
		decoder: NewDecoder(baseURL),
		actions: make(map[string]ActionHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.With("component", "router")
	}
	r.registerBuiltins()
	return r
}

// Decoder returns the router's payload decoder.
func (r *Router) Decoder() Decoder {
	return r.decoder
}

// BaseURL returns the web application root.
func (r *Router) BaseURL() string {
	return r.decoder.BaseURL
}

// RegisterTarget installs the content view's callbacks, replacing any
// previous registration. A pending target is dispatched once and cleared.
func (r *Router) RegisterTarget(navigate NavigateFunc, reload ReloadFunc) Registration {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.regID = id
	r.navigate = navigate
	r.reload = reload
	var pending Target
	if navigate != nil {
		pending, r.pending = r.pending, nil
	}
	r.mu.Unlock()

	r.logger.Debug("content view registered", "registration", id, "pending", pending != nil)

	if pending != nil {
		r.logger.Info("flushing pending target", "target", pending.String())
		r.Dispatch(pending)
	}
	return id
}

// Unregister removes the registration if it is still the current one.
// A stale id from an earlier mount is ignored.
func (r *Router) Unregister(id Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.regID != id {
		return
	}
	r.navigate = nil
	r.reload = nil
	r.regID = 0
	r.logger.Debug("content view unregistered", "registration", id)
}

// Current returns the id of the current registration, or 0 if none.
func (r *Router) Current() Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regID
}

// Registered reports whether a content view is registered.
func (r *Router) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigate != nil
}

// Pending returns the buffered target, or nil.
func (r *Router) Pending() Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// SetCurrentURL records the URL the content view is showing.
func (r *Router) SetCurrentURL(url string) {
	r.mu.Lock()
	r.currentURL = url
	r.mu.Unlock()
}

// CurrentURL returns the last known content view URL.
func (r *Router) CurrentURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentURL
}

// Receive dispatches t if a content view is registered, otherwise it
// replaces the pending target.
func (r *Router) Receive(t Target) {
	if t == nil {
		return
	}
	r.metrics.IncReceived(string(t.Kind()))

	r.mu.Lock()
	if r.navigate == nil {
		replaced := r.pending != nil
		if replaced {
			r.logger.Warn("pending target replaced", "dropped", r.pending.String(), "target", t.String())
		}
		r.pending = t
		r.mu.Unlock()

		r.metrics.IncBuffered(replaced)
		r.logger.Info("no content view registered, target buffered", "target", t.String())
		return
	}
	r.mu.Unlock()

	r.Dispatch(t)
}

// Dispatch performs t against the registered content view or the action
// registry. Failures are logged and never returned.
func (r *Router) Dispatch(t Target) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("dispatch panicked", "target", fmt.Sprint(t), "panic", rec)
		}
	}()

	switch t := t.(type) {
	case URLTarget:
		r.dispatchURL(t)
	case ActionTarget:
		r.dispatchAction(t)
	default:
		r.logger.Error("unhandled target type", "type", fmt.Sprintf("%T", t))
	}
}

func (r *Router) dispatchURL(t URLTarget) {
	r.mu.Lock()
	navigate, reload := r.navigate, r.reload
	same := t.URL == r.currentURL
	if navigate != nil {
		r.currentURL = t.URL
	}
	r.mu.Unlock()

	switch {
	case same && reload != nil:
		r.logger.Info("reloading current url", "url", t.URL)
		r.metrics.IncDispatched("reload")
		reload()
	case navigate != nil:
		r.logger.Info("navigating", "url", t.URL)
		r.metrics.IncDispatched("navigate")
		navigate(t.URL)
	default:
		r.logger.Warn("no navigate callback, url dropped", "url", t.URL)
		r.metrics.IncDispatched("dropped")
	}
}

func (r *Router) dispatchAction(t ActionTarget) {
	err := r.RunAction(t.Name, t.Data)
	switch {
	case errors.Is(err, ErrUnknownAction):
		r.logger.Warn("unknown native action", "action", t.Name)
		r.metrics.IncDispatched("unknown_action")
	case err != nil:
		r.metrics.IncDispatched("action")
		r.metrics.IncActionFailure(t.Name)
		r.logger.Error("native action failed", "action", t.Name, "error", err)
	default:
		r.metrics.IncDispatched("action")
	}
}

// RunAction runs the named action synchronously. It returns ErrUnknownAction
// when nothing is registered under name and an *ActionError when the handler
// fails or panics.
func (r *Router) RunAction(name string, data map[string]any) error {
	r.mu.Lock()
	handler, ok := r.actions[name]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return r.runAction(name, handler, data)
}

func (r *Router) runAction(name string, h ActionHandler, data map[string]any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ActionError{Action: name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if herr := h(data); herr != nil {
		return &ActionError{Action: name, Err: herr}
	}
	return nil
}

// RegisterAction adds or replaces a native action handler.
func (r *Router) RegisterAction(name string, h ActionHandler) {
	if name == "" || h == nil {
		return
	}
	r.mu.Lock()
	r.actions[name] = h
	r.mu.Unlock()
}

// ActionNames returns the registered action names, sorted.
func (r *Router) ActionNames() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return names
}

// HandleNotification decodes n and hands the target to Receive.
// It reports whether a target was produced.
func (r *Router) HandleNotification(n Notification) bool {
	t, err := r.decoder.DecodeNotification(n)
	if err != nil {
		r.logDecodeError("notification", err)
		return false
	}
	r.Receive(t)
	return true
}

// HandleDeepLink decodes a deep-link URL and hands the target to Receive.
// It reports whether a target was produced.
func (r *Router) HandleDeepLink(raw string) bool {
	t, err := r.decoder.DecodeDeepLink(raw)
	if err != nil {
		r.logDecodeError("deeplink", err)
		return false
	}
	r.Receive(t)
	return true
}

func (r *Router) logDecodeError(source string, err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, ErrUnknownType):
		r.logger.Info("ignoring notification", "source", source, "reason", err)
		r.metrics.IncDecodeFailure("unknown_type")
		return
	case errors.Is(err, ErrNativeDisabled), errors.Is(err, ErrDeepLinkingDisabled):
		r.logger.Debug("routing disabled", "source", source, "reason", err)
		r.metrics.IncDecodeFailure("disabled")
		return
	case errors.Is(err, ErrInvalidDeepLink):
		reason = "invalid_deeplink"
	}
	r.logger.Warn("payload produced no target", "source", source, "error", err)
	r.metrics.IncDecodeFailure(reason)
}
