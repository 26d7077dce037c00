// Package log provides structured logging for go-moodshell.
// It wraps slog with sensible defaults for production use.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	once.Do(func() {
		opts := &slog.HandlerOptions{
			Level: ParseLevel(level),
		}

		// Use JSON in production, text in development
		var base slog.Handler
		if os.Getenv("GO_ENV") == "production" {
			base = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			base = slog.NewTextHandler(os.Stdout, opts)
		}
		logger = slog.New(&sinkHandler{next: base})

		slog.SetDefault(logger)
	})
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Sink receives each record the global logger handles, already formatted
// as the message followed by key=value attributes.
type Sink func(level slog.Level, msg string)

var (
	sinksMu  sync.RWMutex
	sinks    = map[int]Sink{}
	nextSink int
)

// AddSink registers fn with the global handler. Loggers derived with With
// before the call are covered too. The returned func removes the sink.
func AddSink(fn Sink) (remove func()) {
	sinksMu.Lock()
	id := nextSink
	nextSink++
	sinks[id] = fn
	sinksMu.Unlock()

	return func() {
		sinksMu.Lock()
		delete(sinks, id)
		sinksMu.Unlock()
	}
}

func currentSinks() []Sink {
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	if len(sinks) == 0 {
		return nil
	}
	out := make([]Sink, 0, len(sinks))
	for _, fn := range sinks {
		out = append(out, fn)
	}
	return out
}

// sinkHandler forwards every record to next and to the registered sinks.
type sinkHandler struct {
	next slog.Handler
	pre  []slog.Attr
}

func (h *sinkHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *sinkHandler) Handle(ctx context.Context, r slog.Record) error {
	if fns := currentSinks(); len(fns) > 0 {
		msg := h.format(r)
		for _, fn := range fns {
			fn(r.Level, msg)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *sinkHandler) format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.pre {
		write(a)
	}
	r.Attrs(write)
	return b.String()
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	pre := append(append([]slog.Attr{}, h.pre...), attrs...)
	return &sinkHandler{next: h.next.WithAttrs(attrs), pre: pre}
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	return &sinkHandler{next: h.next.WithGroup(name), pre: h.pre}
}

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
