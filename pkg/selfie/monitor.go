package selfie

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-moodshell/pkg/camera"
)

// DefaultMonitorInterval is the realtime analysis period.
const DefaultMonitorInterval = 2 * time.Second

// Monitor periodically captures a frame and analyzes it.
// It stops when its context is canceled or Stop is called.
type Monitor struct {
	analyzer *Analyzer
	source   camera.Source
	interval time.Duration
	onResult func(*Analysis)

	stop     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	running bool
	last    *Analysis
}

// NewMonitor creates a monitor. A non-positive interval uses the default.
func NewMonitor(a *Analyzer, src camera.Source, interval time.Duration, onResult func(*Analysis)) *Monitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &Monitor{
		analyzer: a,
		source:   src,
		interval: interval,
		onResult: onResult,
		stop:     make(chan struct{}),
	}
}

// Run captures and analyzes one frame per interval until stopped.
// It returns nil on Stop and the context error on cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("selfie: monitor already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.analyzer.logger.Info("realtime monitor started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			m.analyzer.logger.Info("realtime monitor stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-m.stop:
			m.analyzer.logger.Info("realtime monitor stopped")
			return nil
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	frame, err := m.source.CaptureFrame(ctx)
	if err != nil {
		m.analyzer.logger.Debug("capture failed", "error", err)
		return
	}

	result, err := m.analyzer.Analyze(ctx, frame)
	if err != nil {
		m.analyzer.logger.Debug("realtime analysis failed", "error", err)
		return
	}

	m.mu.Lock()
	m.last = result
	m.mu.Unlock()

	if m.onResult != nil {
		m.onResult(result)
	}
}

// Stop ends Run. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Running reports whether Run is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Last returns the most recent analysis, or nil.
func (m *Monitor) Last() *Analysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
