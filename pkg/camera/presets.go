package camera

// Preset names for common configurations
const (
	PresetSelfie   = "selfie"
	PresetRealtime = "realtime"
	PresetCompact  = "compact"
	PresetHQ       = "hq"
	PresetRear     = "rear"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetSelfie:   DefaultConfig(),
		PresetRealtime: RealtimeConfig(),
		PresetCompact:  CompactConfig(),
		PresetHQ:       HQConfig(),
		PresetRear:     RearConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetSelfie,
		PresetRealtime,
		PresetCompact,
		PresetHQ,
		PresetRear,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// RealtimeConfig analyses a medium-quality frame every two seconds
// to guide the user before capture.
func RealtimeConfig() Config {
	cfg := DefaultConfig()
	cfg.Quality = 80
	cfg.Realtime = true
	cfg.RealtimeIntervalMs = DefaultIntervalMs
	return cfg
}

// CompactConfig keeps a small, heavily compressed image.
// Good enough for facial analysis, roughly 50-100KB.
func CompactConfig() Config {
	cfg := DefaultConfig()
	cfg.Quality = 80
	cfg.MaxDimension = 640
	cfg.UploadQuality = 30
	return cfg
}

// HQConfig captures at 1080p and keeps a large image.
func HQConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.MaxDimension = 2048
	cfg.UploadQuality = 85
	return cfg
}

// RearConfig uses the back camera, which needs no mirroring.
func RearConfig() Config {
	cfg := DefaultConfig()
	cfg.Facing = FacingBack
	cfg.Mirror = false
	return cfg
}
