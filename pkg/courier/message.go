package courier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/borgmon/carebell/pkg/models"
)

// Message types accepted by the courier
const (
	TypeScheduleAlarms = "SCHEDULE_ALARMS"
	TypeTriggerAlarm   = "TRIGGER_ALARM"
)

// Tag prefixes. Everything under AlarmTagPrefix belongs to the snooze ladder;
// one medication's rungs share alarm-<id>-.
const (
	AlarmTagPrefix   = "alarm-"
	TriggerTagPrefix = "trigger-"
)

// Notification actions
const (
	ActionConfirm = "confirm"
	ActionOpen    = "open"
	ActionDefault = "default"
)

// DefaultVibration is the vibrate/pause pattern in milliseconds
var DefaultVibration = []int{500, 200, 500, 200, 500, 200, 800, 100, 800}

// Message is sent from the foreground to the courier
type Message struct {
	Type        string               `json:"type"`
	Medications []models.Medication  `json:"medications,omitempty"` // SCHEDULE_ALARMS
	Meds        []models.Medication  `json:"meds,omitempty"`        // TRIGGER_ALARM
	Appts       []models.Appointment `json:"appts,omitempty"`       // TRIGGER_ALARM
	MinuteKey   string               `json:"minuteKey,omitempty"`   // TRIGGER_ALARM
}

// ScheduleAlarms builds a sync message carrying the enabled medications
func ScheduleAlarms(sched models.Schedule) Message {
	return Message{Type: TypeScheduleAlarms, Medications: sched.EnabledMedications()}
}

// TriggerAlarm builds an immediate-alert message mirroring a fired batch
func TriggerAlarm(batch *models.FiredAlarmBatch) Message {
	return Message{
		Type:      TypeTriggerAlarm,
		Meds:      batch.Medications,
		Appts:     batch.Appointments,
		MinuteKey: batch.MinuteKey,
	}
}

// NotificationAction is a button on a notification
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// NotificationData links a notification back to its item
type NotificationData struct {
	ItemID string `json:"itemId"`
	URL    string `json:"url"`
}

// Notification is the host-level alert contract
type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Tag                string               `json:"tag"`
	RequireInteraction bool                 `json:"requireInteraction"`
	Vibrate            []int                `json:"vibrate,omitempty"`
	Actions            []NotificationAction `json:"actions"`
	Data               NotificationData     `json:"data"`
}

func defaultActions() []NotificationAction {
	return []NotificationAction{
		{Action: ActionConfirm, Title: "✅ Taken"},
		{Action: ActionOpen, Title: "Open CareBell"},
	}
}

// Delivery is a notification due at a wall-clock instant
type Delivery struct {
	At           time.Time    `json:"at"`
	Recurring    bool         `json:"recurring"` // re-planned a day later once shown
	Notification Notification `json:"notification"`

	// Medication the rung was planned from; empty for trigger deliveries
	Medication models.Medication `json:"medication"`
}

// NextOccurrence returns the next instant at which t falls, in now's
// location: today if it has not passed yet, otherwise tomorrow.
func NextOccurrence(t models.TimeOfDay, now time.Time) (time.Time, error) {
	expr := fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d", models.ErrInvalidTime, t.Hour, t.Minute)
	}
	// Next is strictly after its argument; step back so "now" itself counts.
	return sched.Next(now.Add(-time.Nanosecond)), nil
}

func medTagPrefix(id string) string {
	return AlarmTagPrefix + id + "-"
}

func alarmTag(id string, at time.Time) string {
	return fmt.Sprintf("%s%s-%d", AlarmTagPrefix, id, at.UnixMilli())
}

// LadderNotification builds one rung of a medication's ladder
func LadderNotification(med models.Medication, at time.Time, icon string) Notification {
	body := fmt.Sprintf("Time for your medication: %s", med.Name)
	if med.Dosage != "" {
		body += fmt.Sprintf(" (%s)", med.Dosage)
	}
	body += ". Please take it now to stay well."

	return Notification{
		Title:              "🚨 ALERT: " + med.Name,
		Body:               body,
		Icon:               icon,
		Tag:                alarmTag(med.ID, at),
		RequireInteraction: true,
		Vibrate:            DefaultVibration,
		Actions:            defaultActions(),
		Data:               NotificationData{ItemID: med.ID, URL: "/"},
	}
}

// PlanLadder schedules, for each enabled medication, one delivery per offset
// (in minutes) after its next occurrence. Output is ordered by medication,
// then offset. Medications with an impossible time are skipped and reported
// in the returned error; the rest are still planned.
func PlanLadder(meds []models.Medication, now time.Time, offsets []int, icon string) ([]Delivery, error) {
	var (
		plan []Delivery
		errs []error
	)
	for _, med := range meds {
		if !med.Enabled {
			continue
		}
		base, err := NextOccurrence(med.Time, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("medication %s: %w", med.ID, err))
			continue
		}
		for _, off := range offsets {
			at := base.Add(time.Duration(off) * time.Minute)
			plan = append(plan, Delivery{
				At:           at,
				Recurring:    true,
				Notification: LadderNotification(med, at, icon),
				Medication:   med,
			})
		}
	}
	return plan, errors.Join(errs...)
}

// TriggerNotification summarizes a fired batch in one notification. The tag
// is keyed on the minute so repeats coalesce.
func TriggerNotification(msg Message, icon string) Notification {
	var lines []string
	for _, m := range msg.Meds {
		line := "Medication: " + m.Name
		if m.Dosage != "" {
			line += " (" + m.Dosage + ")"
		}
		lines = append(lines, line)
	}
	for _, a := range msg.Appts {
		line := "Appointment: " + a.Title
		if a.Location != "" {
			line += " at " + a.Location
		}
		lines = append(lines, line)
	}

	title := "Medication reminder"
	if len(msg.Meds) == 0 {
		title = "Appointment reminder"
	}

	itemID := ""
	switch {
	case len(msg.Meds) > 0:
		itemID = msg.Meds[0].ID
	case len(msg.Appts) > 0:
		itemID = msg.Appts[0].ID
	}

	return Notification{
		Title:              title,
		Body:               strings.Join(lines, "\n"),
		Icon:               icon,
		Tag:                TriggerTagPrefix + msg.MinuteKey,
		RequireInteraction: true,
		Vibrate:            DefaultVibration,
		Actions:            defaultActions(),
		Data:               NotificationData{ItemID: itemID, URL: "/"},
	}
}
