// moodshell: native shell for the mood journal web app.
// Hosts the content-view bridge, routes push notifications and deep links,
// and analyzes mood selfies.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-moodshell/internal/config"
	"github.com/teslashibe/go-moodshell/internal/httpc"
	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/bridge"
	"github.com/teslashibe/go-moodshell/pkg/camera"
	"github.com/teslashibe/go-moodshell/pkg/debug"
	"github.com/teslashibe/go-moodshell/pkg/detection"
	"github.com/teslashibe/go-moodshell/pkg/metrics"
	"github.com/teslashibe/go-moodshell/pkg/mood"
	"github.com/teslashibe/go-moodshell/pkg/protocol"
	"github.com/teslashibe/go-moodshell/pkg/router"
	"github.com/teslashibe/go-moodshell/pkg/selfie"
	"github.com/teslashibe/go-moodshell/pkg/web"
)

var (
	version    = "1.0.0"
	configPath = flag.String("config", "", "Path to TOML config (default: search standard paths)")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
	debugFlag  = flag.Bool("debug", false, "Enable debug logging")
	monitor    = flag.Bool("monitor", false, "Enable realtime camera analysis")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Server.LogLevel)
	debug.Enabled = cfg.Server.Debug
	debug.Detection = cfg.Server.DebugDetection

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("moodshell exited", "error", err)
		os.Exit(1)
	}
	log.Info("moodshell stopped")
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debugFlag {
		cfg.Server.Debug = true
		cfg.Server.LogLevel = "debug"
	}
	if *monitor {
		cfg.Monitor.Enabled = true
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config) error {
	log.Info("starting moodshell", "version", version, "web", cfg.Web.BaseURL, "addr", cfg.Server.Addr)

	m := metrics.New(prometheus.DefaultRegisterer)

	// The bridge needs the router and the router's alert hook needs the
	// bridge, so the hook resolves the bridge lazily.
	var br *bridge.Bridge
	r := router.New(cfg.Web.BaseURL,
		router.WithMetrics(m),
		router.WithNativeFeatures(cfg.Web.NativeFeatures),
		router.WithDeepLinking(cfg.Web.DeepLinking),
		router.WithAlertHook(func(title, message string) {
			if br != nil {
				br.Alert(title, message)
			}
		}),
	)
	br = bridge.New(r, m)

	cam := camera.NewManager()
	if preset := camera.GetPreset(cfg.Camera.Preset); preset != nil {
		p := *preset
		p.Device = cfg.Camera.Device
		if err := cam.SetConfig(p); err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	}

	det := openDetector(cfg)
	if det != nil {
		defer det.Close()
	}
	analyzer := selfie.NewAnalyzer(det, cam, m)

	moods := mood.NewClient(cfg.API.BaseURL, cfg.API.Token, httpc.NewClient(cfg.API.Timeout.Duration))

	sess := newSession(cfg, moods)
	br.OnWebAction(func(viewID string, action *protocol.WebActionData) {
		sess.handleWebAction(ctx, viewID, action)
	})

	src := camera.NewDeviceSource(cam)
	defer src.Close()

	srv := web.NewServer(web.Config{
		Version:      version,
		AllowOrigins: cfg.Server.AllowOrigins,
		Debug:        cfg.Server.Debug,
		Router:       r,
		Bridge:       br,
		Analyzer:     analyzer,
		Moods:        moods,
		Camera:       cam,
		Source:       src,
		Gatherer:     prometheus.DefaultGatherer,
	})
	defer log.AddSink(srv.LogSink)()

	g, ctx := errgroup.WithContext(ctx)

	rt := selfie.NewRealtime(ctx, analyzer, src, srv.PublishAnalysis)
	defer rt.Close()
	cam.OnConfigChange = rt.Apply
	if err := applyMonitor(cam, cfg.Monitor); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	g.Go(func() error {
		return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownGrace.Duration)
	})

	if cfg.Push.Enabled {
		g.Go(func() error {
			if err := sess.registerPush(ctx); err != nil {
				// Push failures never stop the shell.
				log.Warn("push registration failed", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// applyMonitor pushes the camera config through its change hook once, so a
// realtime preset starts the monitor. [monitor] or -monitor force it on.
func applyMonitor(cam *camera.Manager, mc config.MonitorConfig) error {
	c := cam.GetConfig()
	if mc.Enabled {
		c.Realtime = true
		if mc.Interval.Duration > 0 {
			c.RealtimeIntervalMs = int(mc.Interval.Duration / time.Millisecond)
		}
	}
	return cam.SetConfig(c)
}

// openDetector loads the face detector. Without a model the shell still
// runs and reports every selfie as undetected.
func openDetector(cfg *config.Config) detection.Detector {
	dc := detection.DefaultConfig()
	dc.ModelPath = cfg.Detection.ModelPath
	dc.SmileCascade = cfg.Detection.SmileCascade
	dc.EyeCascade = cfg.Detection.EyeCascade
	dc.ConfidenceThresh = cfg.Detection.Confidence

	det, err := detection.NewYuNet(dc)
	if err != nil {
		log.Warn("face detector unavailable, selfies will report no face", "model", dc.ModelPath, "error", err)
		return nil
	}
	log.Info("face detector loaded", "model", dc.ModelPath)
	return det
}
