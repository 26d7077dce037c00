package selfie

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-moodshell/pkg/camera"
)

// Realtime keeps a Monitor in step with the camera's realtime settings.
// Its Apply method is meant for camera.Manager.OnConfigChange.
type Realtime struct {
	ctx      context.Context
	analyzer *Analyzer
	source   camera.Source
	onResult func(*Analysis)

	mu       sync.Mutex
	monitor  *Monitor
	interval time.Duration
	done     chan struct{}
}

// NewRealtime creates a controller whose monitors run until ctx ends.
func NewRealtime(ctx context.Context, a *Analyzer, src camera.Source, onResult func(*Analysis)) *Realtime {
	return &Realtime{
		ctx:      ctx,
		analyzer: a,
		source:   src,
		onResult: onResult,
	}
}

// Apply starts a monitor when cfg.Realtime is set, stops it when cleared,
// and restarts it when the interval changes.
func (r *Realtime) Apply(cfg camera.Config) error {
	interval := time.Duration(cfg.RealtimeIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.monitor != nil && (!cfg.Realtime || interval != r.interval) {
		r.stopLocked()
	}
	if !cfg.Realtime || r.monitor != nil {
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}

	m := NewMonitor(r.analyzer, r.source, interval, r.onResult)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(r.ctx)
	}()

	r.monitor = m
	r.interval = interval
	r.done = done
	return nil
}

func (r *Realtime) stopLocked() {
	r.monitor.Stop()
	<-r.done
	r.monitor = nil
	r.done = nil
}

// Running reports whether a monitor is active.
func (r *Realtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.monitor != nil
}

// Interval returns the active monitor's period, or zero.
func (r *Realtime) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.monitor == nil {
		return 0
	}
	return r.interval
}

// Close stops the active monitor and waits for it to return.
func (r *Realtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.monitor != nil {
		r.stopLocked()
	}
}
