// Package schedule owns the user's medications and appointments. Every
// mutation is persisted and then published to subscribers as a new
// immutable snapshot.
package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/models"
)

var (
	// ErrNotFound is returned when no item has the given ID
	ErrNotFound = errors.New("schedule: item not found")
	// ErrEmptyName is returned when a medication or appointment has no label
	ErrEmptyName = errors.New("schedule: name is required")
)

// Store persists the schedule
type Store interface {
	LoadMedications() ([]models.Medication, error)
	SaveMedications(meds []models.Medication) error
	LoadAppointments() ([]models.Appointment, error)
	SaveAppointments(appts []models.Appointment) error
}

// Service is the single writer of the schedule
type Service struct {
	mu     sync.RWMutex
	store  Store
	sched  models.Schedule
	subs   []chan models.Schedule
	logger *zap.Logger
}

// NewService loads the persisted schedule
func NewService(store Store, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	meds, err := store.LoadMedications()
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	appts, err := store.LoadAppointments()
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	logger.Info("Schedule loaded",
		zap.Int("medications", len(meds)),
		zap.Int("appointments", len(appts)))

	return &Service{
		store:  store,
		sched:  models.Schedule{Version: 1, Medications: meds, Appointments: appts},
		logger: logger,
	}, nil
}

// Snapshot returns the current schedule
func (s *Service) Snapshot() models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sched.Clone()
}

// Subscribe returns a channel that always holds the newest snapshot.
// Slow readers skip intermediate versions. The current snapshot is
// delivered immediately.
func (s *Service) Subscribe() <-chan models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.Schedule, 1)
	ch <- s.sched.Clone()
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Service) publish() {
	snap := s.sched.Clone()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// commitMedications persists meds and publishes. Caller holds s.mu.
func (s *Service) commitMedications(meds []models.Medication) error {
	if err := s.store.SaveMedications(meds); err != nil {
		return fmt.Errorf("save medications: %w", err)
	}
	s.sched.Medications = meds
	s.sched.Version++
	s.publish()
	return nil
}

// commitAppointments persists appts and publishes. Caller holds s.mu.
func (s *Service) commitAppointments(appts []models.Appointment) error {
	if err := s.store.SaveAppointments(appts); err != nil {
		return fmt.Errorf("save appointments: %w", err)
	}
	s.sched.Appointments = appts
	s.sched.Version++
	s.publish()
	return nil
}

// AddMedication creates an enabled medication with a fresh ID
func (s *Service) AddMedication(name, dosage string, at models.TimeOfDay) (models.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Medication{}, ErrEmptyName
	}
	med := models.Medication{
		ID:      uuid.NewString(),
		Name:    name,
		Dosage:  strings.TrimSpace(dosage),
		Time:    at,
		Enabled: true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meds := append(append([]models.Medication(nil), s.sched.Medications...), med)
	if err := s.commitMedications(meds); err != nil {
		return models.Medication{}, err
	}
	s.logger.Info("Medication added", zap.String("id", med.ID), zap.String("time", med.Time.String()))
	return med, nil
}

// UpdateMedication replaces the medication with the same ID
func (s *Service) UpdateMedication(med models.Medication) error {
	med.Name = strings.TrimSpace(med.Name)
	if med.Name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meds := append([]models.Medication(nil), s.sched.Medications...)
	i := indexOfMedication(meds, med.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, med.ID)
	}
	meds[i] = med
	return s.commitMedications(meds)
}

// SetMedicationEnabled toggles whether a medication can fire
func (s *Service) SetMedicationEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meds := append([]models.Medication(nil), s.sched.Medications...)
	i := indexOfMedication(meds, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if meds[i].Enabled == enabled {
		return nil
	}
	meds[i].Enabled = enabled
	return s.commitMedications(meds)
}

// RemoveMedication deletes a medication
func (s *Service) RemoveMedication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfMedication(s.sched.Medications, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	meds := make([]models.Medication, 0, len(s.sched.Medications)-1)
	meds = append(meds, s.sched.Medications[:i]...)
	meds = append(meds, s.sched.Medications[i+1:]...)
	return s.commitMedications(meds)
}

// AddAppointment creates an enabled appointment with a fresh ID
func (s *Service) AddAppointment(appt models.Appointment) (models.Appointment, error) {
	appt.Title = strings.TrimSpace(appt.Title)
	if appt.Title == "" {
		return models.Appointment{}, ErrEmptyName
	}
	if err := appt.ValidateDate(); err != nil {
		return models.Appointment{}, err
	}
	appt.ID = uuid.NewString()
	appt.Enabled = true

	s.mu.Lock()
	defer s.mu.Unlock()

	appts := append(append([]models.Appointment(nil), s.sched.Appointments...), appt)
	if err := s.commitAppointments(appts); err != nil {
		return models.Appointment{}, err
	}
	s.logger.Info("Appointment added", zap.String("id", appt.ID), zap.String("date", appt.Date))
	return appt, nil
}

// SetAppointmentEnabled toggles whether an appointment can fire
func (s *Service) SetAppointmentEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := append([]models.Appointment(nil), s.sched.Appointments...)
	i := indexOfAppointment(appts, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if appts[i].Enabled == enabled {
		return nil
	}
	appts[i].Enabled = enabled
	return s.commitAppointments(appts)
}

// RemoveAppointment deletes an appointment
func (s *Service) RemoveAppointment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfAppointment(s.sched.Appointments, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	appts := make([]models.Appointment, 0, len(s.sched.Appointments)-1)
	appts = append(appts, s.sched.Appointments[:i]...)
	appts = append(appts, s.sched.Appointments[i+1:]...)
	return s.commitAppointments(appts)
}

// ImportAppointments replaces every appointment previously imported from
// sourceID with imported. Appointments that keep their ID keep the user's
// enabled flag. Nothing is saved or published when the result is unchanged.
// It returns the number of appointments now held for the source.
func (s *Service) ImportAppointments(sourceID string, imported []models.Appointment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]bool)
	appts := make([]models.Appointment, 0, len(s.sched.Appointments)+len(imported))
	for _, a := range s.sched.Appointments {
		if a.SourceID == sourceID {
			previous[a.ID] = a.Enabled
			continue
		}
		appts = append(appts, a)
	}

	for _, a := range imported {
		if err := a.ValidateDate(); err != nil {
			s.logger.Warn("Skipping imported appointment", zap.String("id", a.ID), zap.Error(err))
			continue
		}
		a.SourceID = sourceID
		if enabled, ok := previous[a.ID]; ok {
			a.Enabled = enabled
		} else {
			a.Enabled = true
		}
		appts = append(appts, a)
	}

	held := 0
	for _, a := range appts {
		if a.SourceID == sourceID {
			held++
		}
	}
	if slices.Equal(appts, s.sched.Appointments) {
		s.logger.Debug("Imported appointments unchanged", zap.String("source", sourceID), zap.Int("count", held))
		return held, nil
	}

	if err := s.commitAppointments(appts); err != nil {
		return 0, err
	}
	s.logger.Info("Appointments imported", zap.String("source", sourceID), zap.Int("count", held))
	return held, nil
}

// PruneAppointments removes appointments that started before cutoff and
// returns how many were removed
func (s *Service) PruneAppointments(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := make([]models.Appointment, 0, len(s.sched.Appointments))
	for _, a := range s.sched.Appointments {
		if start, ok := a.At(cutoff.Location()); ok && start.Before(cutoff) {
			continue
		}
		appts = append(appts, a)
	}

	removed := len(s.sched.Appointments) - len(appts)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commitAppointments(appts); err != nil {
		return 0, err
	}
	s.logger.Info("Past appointments pruned", zap.Int("removed", removed))
	return removed, nil
}

func indexOfMedication(meds []models.Medication, id string) int {
	for i, m := range meds {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAppointment(appts []models.Appointment, id string) int {
	for i, a := range appts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
