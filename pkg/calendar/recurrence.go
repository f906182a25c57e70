package calendar

import (
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"
)

// expandRecurring returns one event per occurrence of comp inside w, honoring
// RRULE, RDATE and EXDATE
func (f *Fetcher) expandRecurring(comp *ical.Component, base feedEvent, w window) []feedEvent {
	set, err := comp.RecurrenceSet(getTimezoneFromComponent(comp))
	if err != nil {
		f.logger.Warn("Unsupported recurrence, using first instance only",
			zap.String("title", base.Title), zap.Error(err))
		return []feedEvent{base}
	}
	if set == nil {
		return []feedEvent{base}
	}

	duration := base.End.Sub(base.Start)
	var events []feedEvent
	for _, start := range set.Between(w.from, w.until, true) {
		instance := base
		instance.Start = start.In(time.Local)
		instance.End = instance.Start.Add(duration)
		instance.UID = base.UID + "-" + instance.Start.Format(time.RFC3339)
		events = append(events, instance)
	}

	f.logger.Debug("Expanded recurring event",
		zap.String("title", base.Title),
		zap.Int("instances", len(events)))
	return events
}
