// Package camera provides runtime-configurable selfie capture settings.
// Settings can be changed through the camera API while the service runs.
package camera

// Facing values
const (
	FacingFront = "front"
	FacingBack  = "back"
)

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// === Capture ===
	Device  int    `json:"device"`  // Capture device index
	Facing  string `json:"facing"`  // "front" or "back"
	Width   int    `json:"width"`   // Capture width in pixels
	Height  int    `json:"height"`  // Capture height in pixels
	Quality int    `json:"quality"` // JPEG quality 1-100 for the captured photo

	// Mirror flips front-camera frames horizontally before detection.
	// Front cameras deliver a mirrored image and detection quality is
	// undefined on uncorrected frames.
	Mirror bool `json:"mirror"`

	// === Upload ===
	// MaxDimension is the longest side of the image after normalization.
	MaxDimension  int `json:"max_dimension"`
	UploadQuality int `json:"upload_quality"` // JPEG quality 1-100 for the normalized image

	// CountdownSeconds is the "hold still" delay before capture.
	CountdownSeconds int `json:"countdown_seconds"`

	// === Realtime guidance ===
	// Realtime enables periodic analysis while the camera is open.
	// Off by default to avoid repeated shutter activity.
	Realtime           bool `json:"realtime"`
	RealtimeIntervalMs int  `json:"realtime_interval_ms"`
}

// Limits
const (
	MaxWidth            = 4096
	MaxHeight           = 4096
	MinRealtimeMs       = 250
	MaxCountdown        = 10
	DefaultIntervalMs   = 2000
	DefaultMaxDimension = 1024
)

// DefaultConfig returns the front-camera selfie configuration.
func DefaultConfig() Config {
	return Config{
		Device:  0,
		Facing:  FacingFront,
		Width:   1280,
		Height:  720,
		Quality: 90,
		Mirror:  true,

		MaxDimension:  DefaultMaxDimension,
		UploadQuality: 70,

		CountdownSeconds: 3,

		Realtime:           false,
		RealtimeIntervalMs: DefaultIntervalMs,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must be 0 or greater")
	}
	if c.Facing != FacingFront && c.Facing != FacingBack {
		errors = append(errors, "facing must be front or back")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 4096")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.UploadQuality < 1 || c.UploadQuality > 100 {
		errors = append(errors, "upload_quality must be between 1 and 100")
	}
	if c.MaxDimension < 64 || c.MaxDimension > MaxWidth {
		errors = append(errors, "max_dimension must be between 64 and 4096")
	}
	if c.CountdownSeconds < 0 || c.CountdownSeconds > MaxCountdown {
		errors = append(errors, "countdown_seconds must be between 0 and 10")
	}
	if c.RealtimeIntervalMs < MinRealtimeMs {
		errors = append(errors, "realtime_interval_ms must be at least 250")
	}

	return errors
}

// Capabilities returns the supported camera settings.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"facings":         []string{FacingFront, FacingBack},
		"max_width":       MaxWidth,
		"max_height":      MaxHeight,
		"min_realtime_ms": MinRealtimeMs,
		"max_countdown":   MaxCountdown,
		"presets":         PresetNames(),
	}
}
