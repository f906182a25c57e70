package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidTime is returned when a time of day is not in HH:MM form
	ErrInvalidTime = errors.New("invalid time of day, expected HH:MM")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// ItemKind distinguishes the two variants of a scheduled item
type ItemKind string

const (
	KindMedication  ItemKind = "medication"
	KindAppointment ItemKind = "appointment"
)

// TimeOfDay is a wall-clock time at minute granularity
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// String returns the minute-key form "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is earlier in the day than o
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Hour*60+t.Minute < o.Hour*60+o.Minute
}

// On returns the instant at this time of day on the given day, in day's location
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// MarshalText implements encoding.TextMarshaler
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Medication recurs every day at Time
type Medication struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Dosage  string    `json:"dosage"`
	Time    TimeOfDay `json:"time"`
	Enabled bool      `json:"enabled"`
}

// Appointment fires once, at Date + Time
type Appointment struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Date     string    `json:"date"` // YYYY-MM-DD
	Time     TimeOfDay `json:"time"`
	Enabled  bool      `json:"enabled"`
	SourceID string    `json:"source_id,omitempty"` // iCal source the appointment was imported from
}

// ValidateDate checks that the appointment date is a calendar date
func (a *Appointment) ValidateDate() error {
	if _, err := time.Parse(DateKeyLayout, a.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, a.Date)
	}
	return nil
}

// At returns the appointment instant in loc, or false if the date is malformed
func (a *Appointment) At(loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(DateKeyLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return a.Time.On(day), true
}

// Item is the shared shape of both variants, used where the kind does not matter
type Item struct {
	Kind    ItemKind
	ID      string
	Label   string // medication name or appointment title
	Detail  string // dosage or location
	Time    TimeOfDay
	Enabled bool
}

// Item returns the shared view of a medication
func (m Medication) Item() Item {
	return Item{Kind: KindMedication, ID: m.ID, Label: m.Name, Detail: m.Dosage, Time: m.Time, Enabled: m.Enabled}
}

// Item returns the shared view of an appointment
func (a Appointment) Item() Item {
	return Item{Kind: KindAppointment, ID: a.ID, Label: a.Title, Detail: a.Location, Time: a.Time, Enabled: a.Enabled}
}

// DayPart groups medications for presentation
type DayPart string

const (
	Morning   DayPart = "Morning"
	Afternoon DayPart = "Afternoon"
	Night     DayPart = "Night"
)

// PartOfDay returns the group a time falls into
func PartOfDay(t TimeOfDay) DayPart {
	switch {
	case t.Hour < 12:
		return Morning
	case t.Hour < 18:
		return Afternoon
	default:
		return Night
	}
}

// SortByTime returns a copy of meds ordered by time of day, stable on ties
func SortByTime(meds []Medication) []Medication {
	sorted := make([]Medication, len(meds))
	copy(sorted, meds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// EarliestEnabled returns the earliest time among enabled medications
func EarliestEnabled(meds []Medication) (TimeOfDay, bool) {
	var earliest TimeOfDay
	found := false
	for _, m := range meds {
		if !m.Enabled {
			continue
		}
		if !found || m.Time.Before(earliest) {
			earliest = m.Time
			found = true
		}
	}
	return earliest, found
}
