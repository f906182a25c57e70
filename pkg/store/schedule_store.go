package store

import (
	"encoding/json"
	"fmt"

	"fyne.io/fyne/v2"

	"github.com/borgmon/carebell/pkg/models"
)

const (
	medicationsKey  = "medications"
	appointmentsKey = "appointments"
)

// ScheduleStore keeps medications and appointments as JSON lists
type ScheduleStore struct {
	app fyne.App
}

// NewScheduleStore creates a new ScheduleStore instance
func NewScheduleStore(app fyne.App) *ScheduleStore {
	return &ScheduleStore{app: app}
}

// LoadMedications returns the saved medications; a missing key is an empty list
func (ss *ScheduleStore) LoadMedications() ([]models.Medication, error) {
	meds := []models.Medication{}
	if err := ss.load(medicationsKey, &meds); err != nil {
		return nil, err
	}
	return meds, nil
}

// SaveMedications replaces the saved medications
func (ss *ScheduleStore) SaveMedications(meds []models.Medication) error {
	return ss.save(medicationsKey, meds)
}

// LoadAppointments returns the saved appointments; a missing key is an empty list
func (ss *ScheduleStore) LoadAppointments() ([]models.Appointment, error) {
	appts := []models.Appointment{}
	if err := ss.load(appointmentsKey, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// SaveAppointments replaces the saved appointments
func (ss *ScheduleStore) SaveAppointments(appts []models.Appointment) error {
	return ss.save(appointmentsKey, appts)
}

func (ss *ScheduleStore) load(key string, v any) error {
	raw := ss.app.Preferences().String(key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (ss *ScheduleStore) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	ss.app.Preferences().SetString(key, string(raw))
	return nil
}
