package models

import "time"

const (
	// MinuteKeyLayout formats the match and dedup unit "HH:MM"
	MinuteKeyLayout = "15:04"
	// DateKeyLayout formats the calendar date "YYYY-MM-DD"
	DateKeyLayout = "2006-01-02"
)

// FiredAlarmBatch is the set of items that matched one minute-key
type FiredAlarmBatch struct {
	MinuteKey    string
	DateKey      string
	Medications  []Medication
	Appointments []Appointment
}

// Empty reports whether nothing matched
func (b *FiredAlarmBatch) Empty() bool {
	return b == nil || (len(b.Medications) == 0 && len(b.Appointments) == 0)
}

// Len returns the number of items in the batch
func (b *FiredAlarmBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Medications) + len(b.Appointments)
}

// Items returns the shared view of every item, medications first
func (b *FiredAlarmBatch) Items() []Item {
	items := make([]Item, 0, b.Len())
	for _, m := range b.Medications {
		items = append(items, m.Item())
	}
	for _, a := range b.Appointments {
		items = append(items, a.Item())
	}
	return items
}

// Merge adds the items of other that are not already present, keeping order.
// It returns the number of items added.
func (b *FiredAlarmBatch) Merge(other *FiredAlarmBatch) int {
	if other.Empty() {
		return 0
	}
	seen := make(map[string]bool, b.Len())
	for _, m := range b.Medications {
		seen[m.ID] = true
	}
	for _, a := range b.Appointments {
		seen[a.ID] = true
	}

	added := 0
	for _, m := range other.Medications {
		if !seen[m.ID] {
			b.Medications = append(b.Medications, m)
			seen[m.ID] = true
			added++
		}
	}
	for _, a := range other.Appointments {
		if !seen[a.ID] {
			b.Appointments = append(b.Appointments, a)
			seen[a.ID] = true
			added++
		}
	}
	if added > 0 {
		b.MinuteKey = other.MinuteKey
		b.DateKey = other.DateKey
	}
	return added
}

// Clone returns a copy that does not share slices with b
func (b *FiredAlarmBatch) Clone() *FiredAlarmBatch {
	if b == nil {
		return nil
	}
	c := &FiredAlarmBatch{MinuteKey: b.MinuteKey, DateKey: b.DateKey}
	c.Medications = append([]Medication(nil), b.Medications...)
	c.Appointments = append([]Appointment(nil), b.Appointments...)
	return c
}

// RoundToMinute rounds a time down to the nearest minute
func RoundToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// MinuteKey returns the local "HH:MM" of t
func MinuteKey(t time.Time) string {
	return t.Format(MinuteKeyLayout)
}

// DateKey returns the local "YYYY-MM-DD" of t
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}
