package models

// Schedule is an immutable view of every scheduled item, in list order
type Schedule struct {
	Version      uint64
	Medications  []Medication
	Appointments []Appointment
}

// Clone returns a copy that does not share slices with s
func (s Schedule) Clone() Schedule {
	return Schedule{
		Version:      s.Version,
		Medications:  append([]Medication(nil), s.Medications...),
		Appointments: append([]Appointment(nil), s.Appointments...),
	}
}

// EnabledMedications returns the enabled medications in list order
func (s Schedule) EnabledMedications() []Medication {
	enabled := make([]Medication, 0, len(s.Medications))
	for _, m := range s.Medications {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}
