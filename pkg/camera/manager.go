package camera

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// OnConfigChange runs after every accepted change. Set it before the
	// manager is shared.
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager with default config.
func NewManager() *Manager {
	return NewManagerWithConfig(DefaultConfig())
}

// NewManagerWithConfig creates a camera manager starting from cfg.
func NewManagerWithConfig(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the camera configuration.
func (m *Manager) SetConfig(cfg Config) error {
	if errors := cfg.Validate(); len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	m.mu.Lock()
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values. A "preset" key is applied first.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if presetName, ok := params["preset"].(string); ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", presetName)
		}
		cfg = *preset
	}

	for key, value := range params {
		switch key {
		case "device":
			if v, ok := toInt(value); ok {
				cfg.Device = v
			}
		case "facing":
			if v, ok := value.(string); ok {
				cfg.Facing = v
			}
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		case "mirror":
			if v, ok := value.(bool); ok {
				cfg.Mirror = v
			}
		case "max_dimension":
			if v, ok := toInt(value); ok {
				cfg.MaxDimension = v
			}
		case "upload_quality":
			if v, ok := toInt(value); ok {
				cfg.UploadQuality = v
			}
		case "countdown_seconds":
			if v, ok := toInt(value); ok {
				cfg.CountdownSeconds = v
			}
		case "realtime":
			if v, ok := value.(bool); ok {
				cfg.Realtime = v
			}
		case "realtime_interval_ms":
			if v, ok := toInt(value); ok {
				cfg.RealtimeIntervalMs = v
			}
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	cfg := m.GetConfig()

	data, _ := json.Marshal(cfg)
	var result map[string]interface{}
	json.Unmarshal(data, &result)

	return result
}

// Helper functions for type conversion

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}
