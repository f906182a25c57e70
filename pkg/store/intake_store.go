package store

import (
	"encoding/json"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/carebell/pkg/models"
)

const (
	takenKeyPrefix = "taken-"
	tipDateKey     = "last_tip_date"
	tipTextKey     = "last_tip_text"
)

// IntakeStore records which medications were marked taken, per local day,
// plus the cached daily tip. Taken marks never suppress alarms.
type IntakeStore struct {
	app fyne.App
	mu  sync.Mutex
}

// NewIntakeStore creates a new IntakeStore instance
func NewIntakeStore(app fyne.App) *IntakeStore {
	return &IntakeStore{app: app}
}

func takenKey(day time.Time) string {
	return takenKeyPrefix + models.DateKey(day)
}

func (is *IntakeStore) takenMap(day time.Time) map[string]bool {
	taken := map[string]bool{}
	if raw := is.app.Preferences().String(takenKey(day)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &taken); err != nil {
			return map[string]bool{}
		}
	}
	return taken
}

// Taken returns the medication IDs marked taken on day
func (is *IntakeStore) Taken(day time.Time) map[string]bool {
	is.mu.Lock()
	defer is.mu.Unlock()
	return is.takenMap(day)
}

// SetTaken marks or clears a medication for day
func (is *IntakeStore) SetTaken(day time.Time, medID string, taken bool) {
	is.mu.Lock()
	defer is.mu.Unlock()

	m := is.takenMap(day)
	if taken {
		m[medID] = true
	} else {
		delete(m, medID)
	}
	if raw, err := json.Marshal(m); err == nil {
		is.app.Preferences().SetString(takenKey(day), string(raw))
	}
}

// Toggle flips the taken mark and returns the new value
func (is *IntakeStore) Toggle(day time.Time, medID string) bool {
	is.mu.Lock()
	m := is.takenMap(day)
	is.mu.Unlock()

	next := !m[medID]
	is.SetTaken(day, medID, next)
	return next
}

// Forget drops the taken mark of day
func (is *IntakeStore) Forget(day time.Time) {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.app.Preferences().RemoveValue(takenKey(day))
}

// LastTip returns the cached tip and the date-key it was fetched for
func (is *IntakeStore) LastTip() (date, text string) {
	prefs := is.app.Preferences()
	return prefs.String(tipDateKey), prefs.String(tipTextKey)
}

// SaveTip caches the tip shown on day
func (is *IntakeStore) SaveTip(day time.Time, text string) {
	prefs := is.app.Preferences()
	prefs.SetString(tipDateKey, models.DateKey(day))
	prefs.SetString(tipTextKey, text)
}
