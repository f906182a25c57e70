package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/borgmon/carebell/pkg/models"
)

const productID = "-//CareBell//Reminders//EN"

// Export writes enabled medications as daily recurring events and enabled
// appointments as single events
func Export(w io.Writer, sched models.Schedule, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, med := range sched.Medications {
		if !med.Enabled {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, med.ID+"@carebell")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, med.Time.On(today))
		event.Props.SetText(ical.PropSummary, medicationSummary(med))
		event.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.DAILY})
		cal.Children = append(cal.Children, event.Component)
	}

	for _, appt := range sched.Appointments {
		if !appt.Enabled {
			continue
		}
		start, ok := appt.At(now.Location())
		if !ok {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, appt.ID+"@carebell")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, start)
		event.Props.SetText(ical.PropSummary, appt.Title)
		if appt.Location != "" {
			event.Props.SetText(ical.PropLocation, appt.Location)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func medicationSummary(med models.Medication) string {
	if med.Dosage == "" {
		return med.Name
	}
	return fmt.Sprintf("%s (%s)", med.Name, med.Dosage)
}
