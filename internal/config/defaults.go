package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"state_path": "state",
		"scheduler": map[string]interface{}{
			"check_interval_seconds":   30,
			"default_interval_minutes": 10,
			"default_snooze_minutes":   []int{5, 10, 15},
		},
		"defense": map[string]interface{}{
			"poll_interval_minutes": 5,
			"character":             "default",
			"tone":                  "urgent",
		},
		"voice": map[string]interface{}{
			"enabled":   true,
			"character": "default",
		},
		"tone": map[string]interface{}{
			"enabled": true,
			"id":      "gentle",
			"volume":  0.7,
		},
		"discord": map[string]interface{}{
			"token":      "",
			"channel_id": "",
		},
		"history": map[string]interface{}{
			"archive_enabled": true,
			"archive_file":    "interventions.db",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
