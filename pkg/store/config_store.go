// Package store persists CareBell state in fyne preferences as JSON strings
// and primitive keys.
package store

import (
	"encoding/json"

	"fyne.io/fyne/v2"

	"github.com/borgmon/carebell/pkg/models"
)

// ConfigStore handles configuration persistence using Fyne preferences
type ConfigStore struct {
	app fyne.App
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(app fyne.App) *ConfigStore {
	return &ConfigStore{app: app}
}

// Load loads configuration from preferences
func (cs *ConfigStore) Load() *models.Config {
	prefs := cs.app.Preferences()

	config := &models.Config{
		AutoStart:            prefs.BoolWithFallback("auto_start", false),
		NotificationsEnabled: prefs.BoolWithFallback("notifications_enabled", true),
		HoldTimeSeconds:      prefs.IntWithFallback("hold_time_seconds", 3),
		SnoozeOffsets:        prefs.StringWithFallback("snooze_offsets", models.DefaultSnoozeOffsets),
		DailyTipEnabled:      prefs.BoolWithFallback("daily_tip_enabled", true),
		UpdateInterval:       prefs.IntWithFallback("update_interval", 30),
	}

	config.ICalSources = []models.ICalSource{}
	if raw := prefs.String("ical_sources"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &config.ICalSources); err != nil {
			config.ICalSources = []models.ICalSource{}
		}
	}

	return config
}

// Save saves configuration to preferences
func (cs *ConfigStore) Save(config *models.Config) {
	prefs := cs.app.Preferences()

	prefs.SetBool("auto_start", config.AutoStart)
	prefs.SetBool("notifications_enabled", config.NotificationsEnabled)
	prefs.SetInt("hold_time_seconds", config.HoldTimeSeconds)
	prefs.SetString("snooze_offsets", config.SnoozeOffsets)
	prefs.SetBool("daily_tip_enabled", config.DailyTipEnabled)
	prefs.SetInt("update_interval", config.UpdateInterval)

	if raw, err := json.Marshal(config.ICalSources); err == nil {
		prefs.SetString("ical_sources", string(raw))
	}
}
