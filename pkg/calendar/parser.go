package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

var cancelledTitleRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// feedEvent is a VEVENT reduced to what an appointment needs
type feedEvent struct {
	UID      string
	Title    string
	Location string
	Start    time.Time
	End      time.Time
	Status   string
	AllDay   bool
}

func parseEvent(comp *ical.Component) feedEvent {
	event := feedEvent{}

	if uidProp := comp.Props.Get(ical.PropUID); uidProp != nil {
		event.UID = uidProp.Value
	}

	if summaryProp := comp.Props.Get(ical.PropSummary); summaryProp != nil {
		event.Title = strings.TrimSpace(summaryProp.Value)
	}

	if locProp := comp.Props.Get(ical.PropLocation); locProp != nil {
		event.Location = strings.TrimSpace(locProp.Value)
	}

	if startProp := comp.Props.Get(ical.PropDateTimeStart); startProp != nil {
		event.AllDay = startProp.ValueType() == ical.ValueDate
		if t, err := parseDateTimeProperty(startProp); err == nil {
			event.Start = t
		}
	}

	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if t, err := parseDateTimeProperty(endProp); err == nil {
			event.End = t
		}
	}
	// DTEND is optional; a timed event without one lasts no time at all
	if event.End.IsZero() && !event.Start.IsZero() {
		event.End = event.Start
	}

	if statusProp := comp.Props.Get(ical.PropStatus); statusProp != nil {
		event.Status = strings.ToUpper(statusProp.Value)
	}

	if event.Status != "CANCELLED" && isCancelledTitle(event.Title) {
		event.Status = "CANCELLED"
	}

	return event
}

func parseDateTimeProperty(prop *ical.Prop) (time.Time, error) {
	if t, err := prop.DateTime(time.Local); err == nil {
		return t.In(time.Local), nil
	}

	formats := []string{
		"20060102T150405",
		"20060102T150405Z",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, time.Local); err == nil {
			return t.In(time.Local), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", prop.Value)
}

func isCancelledTitle(title string) bool {
	clean := cancelledTitleRe.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(clean, "canceled") || strings.HasPrefix(clean, "cancelled")
}
