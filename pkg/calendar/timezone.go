package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Windows zone names some feeds (Outlook, Exchange) put in TZID
var windowsToIANA = map[string]string{
	"E. South America Standard Time": "America/Sao_Paulo",
	"SA Eastern Standard Time":       "America/Cayenne",
	"Pacific Standard Time":          "America/Los_Angeles",
	"Mountain Standard Time":         "America/Denver",
	"Central Standard Time":          "America/Chicago",
	"Eastern Standard Time":          "America/New_York",
	"GMT Standard Time":              "Europe/London",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Central Europe Standard Time":    "Europe/Budapest",
	"Romance Standard Time":          "Europe/Paris",
	"GTB Standard Time":              "Europe/Bucharest",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"India Standard Time":            "Asia/Kolkata",
	"AUS Eastern Standard Time":      "Australia/Sydney",
}

var tzProps = []string{
	ical.PropDateTimeStart,
	ical.PropDateTimeEnd,
	ical.PropExceptionDates,
	ical.PropRecurrenceDates,
}

// normalizeComponentTimezones rewrites Windows TZIDs to IANA names in place
func normalizeComponentTimezones(comp *ical.Component) {
	for _, name := range tzProps {
		for i := range comp.Props[name] {
			prop := &comp.Props[name][i]
			if iana, ok := windowsToIANA[prop.Params.Get(ical.ParamTimezoneID)]; ok {
				prop.Params.Set(ical.ParamTimezoneID, iana)
			}
		}
	}
}

// getTimezoneFromComponent picks the zone recurrences are expanded in
func getTimezoneFromComponent(comp *ical.Component) *time.Location {
	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return time.Local
	}

	if tzid := dtstart.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if iana, ok := windowsToIANA[tzid]; ok {
			tzid = iana
		}
		if loc, err := time.LoadLocation(tzid); err == nil {
			return loc
		}
	}

	if strings.HasSuffix(dtstart.Value, "Z") {
		return time.UTC
	}
	return time.Local
}
