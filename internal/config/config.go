// Package config provides TOML configuration for the moodshell service,
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-moodshell/pkg/camera"
)

// Default service configuration.
const (
	DefaultAddr       = ":8080"
	DefaultWebURL     = "https://feelith.com"
	DefaultAPIURL     = DefaultWebURL
	DefaultPlatform   = "ios"
	DefaultPushPath   = "/api/push-tokens"
	DefaultConfigName = "moodshell.toml"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Web       WebConfig       `toml:"web"`
	API       APIConfig       `toml:"api"`
	Push      PushConfig      `toml:"push"`
	Detection DetectionConfig `toml:"detection"`
	Camera    CameraConfig    `toml:"camera"`
	Monitor   MonitorConfig   `toml:"monitor"`
}

// ServerConfig controls the HTTP listener and logging.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	LogLevel       string   `toml:"log_level"`
	Debug          bool     `toml:"debug"`
	DebugDetection bool     `toml:"debug_detection"`
	AllowOrigins   string   `toml:"allow_origins"`
	ShutdownGrace  Duration `toml:"shutdown_grace"`
}

// WebConfig describes the web application hosted in the content view.
type WebConfig struct {
	BaseURL        string `toml:"base_url"`
	NativeFeatures bool   `toml:"native_features"`
	DeepLinking    bool   `toml:"deep_linking"`
}

// APIConfig points at the mood backend.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout"`
}

// PushConfig controls push token registration.
type PushConfig struct {
	Enabled        bool     `toml:"enabled"`
	Endpoint       string   `toml:"endpoint"`
	UserID         string   `toml:"user_id"`
	DeviceToken    string   `toml:"device_token"`
	Platform       string   `toml:"platform"`
	MaxAttempts    int      `toml:"max_attempts"`
	InitialBackoff Duration `toml:"initial_backoff"`
	MaxBackoff     Duration `toml:"max_backoff"`
}

// DetectionConfig configures the face detector.
type DetectionConfig struct {
	ModelPath    string  `toml:"model_path"`
	SmileCascade string  `toml:"smile_cascade"`
	EyeCascade   string  `toml:"eye_cascade"`
	Confidence   float64 `toml:"confidence"`
}

// CameraConfig selects the capture preset and device.
type CameraConfig struct {
	Preset string `toml:"preset"`
	Device int    `toml:"device"`
}

// MonitorConfig controls periodic realtime analysis.
type MonitorConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          DefaultAddr,
			LogLevel:      "info",
			AllowOrigins:  "*",
			ShutdownGrace: Duration{5 * time.Second},
		},
		Web: WebConfig{
			BaseURL:        DefaultWebURL,
			NativeFeatures: true,
			DeepLinking:    true,
		},
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: Duration{15 * time.Second},
		},
		Push: PushConfig{
			Enabled:        false,
			Platform:       DefaultPlatform,
			MaxAttempts:    3,
			InitialBackoff: Duration{1 * time.Second},
			MaxBackoff:     Duration{10 * time.Second},
		},
		Detection: DetectionConfig{
			ModelPath:    "models/face_detection_yunet.onnx",
			SmileCascade: "models/haarcascade_smile.xml",
			EyeCascade:   "models/haarcascade_eye.xml",
			Confidence:   0.5,
		},
		Camera: CameraConfig{
			Preset: camera.PresetSelfie,
		},
		Monitor: MonitorConfig{
			Enabled:  false,
			Interval: Duration{2 * time.Second},
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if err := validateAbsURL("web.base_url", c.Web.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateAbsURL("api.base_url", c.API.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Push.Enabled {
		if c.Push.DeviceToken == "" {
			errs = append(errs, errors.New("push.device_token is required when push is enabled"))
		}
		if c.Push.UserID == "" {
			errs = append(errs, errors.New("push.user_id is required when push is enabled"))
		}
		if c.Push.Platform != "ios" && c.Push.Platform != "android" {
			errs = append(errs, fmt.Errorf("push.platform must be ios or android, got %q", c.Push.Platform))
		}
	}
	if c.Push.MaxAttempts < 1 {
		errs = append(errs, errors.New("push.max_attempts must be at least 1"))
	}
	if c.Push.MaxBackoff.Duration < c.Push.InitialBackoff.Duration {
		errs = append(errs, errors.New("push.max_backoff must not be less than push.initial_backoff"))
	}
	if c.Detection.Confidence <= 0 || c.Detection.Confidence > 1 {
		errs = append(errs, errors.New("detection.confidence must be in (0, 1]"))
	}
	if camera.GetPreset(c.Camera.Preset) == nil {
		errs = append(errs, fmt.Errorf("camera.preset %q is unknown", c.Camera.Preset))
	}
	if c.Monitor.Enabled && c.Monitor.Interval.Duration < camera.MinRealtimeMs*time.Millisecond {
		errs = append(errs, errors.New("monitor.interval must be at least 250ms"))
	}

	return errors.Join(errs...)
}

// PushURL returns the push token endpoint. A relative endpoint is joined
// onto the API base URL.
func (c *Config) PushURL() string {
	endpoint := c.Push.Endpoint
	if endpoint == "" {
		endpoint = DefaultPushPath
	}
	if u, err := url.Parse(endpoint); err == nil && u.IsAbs() {
		return endpoint
	}
	return strings.TrimRight(c.API.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func validateAbsURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
