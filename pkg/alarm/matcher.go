// Package alarm decides when a reminder fires and owns the foreground alarm
// session: matching, per-minute deduplication, the active-alarm state
// machine and recovery when the application becomes visible again.
package alarm

import (
	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

// Match returns the enabled items due at the sampled minute. Medications
// recur daily and ignore the date; appointments need date and time to match.
// The result is nil when nothing is due. Match has no side effects.
func Match(s clock.Sample, sched models.Schedule) *models.FiredAlarmBatch {
	var batch *models.FiredAlarmBatch

	for _, med := range sched.Medications {
		if !med.Enabled || med.Time.String() != s.MinuteKey {
			continue
		}
		if batch == nil {
			batch = &models.FiredAlarmBatch{MinuteKey: s.MinuteKey, DateKey: s.DateKey}
		}
		batch.Medications = append(batch.Medications, med)
	}

	for _, appt := range sched.Appointments {
		if !appt.Enabled || appt.Date != s.DateKey || appt.Time.String() != s.MinuteKey {
			continue
		}
		if batch == nil {
			batch = &models.FiredAlarmBatch{MinuteKey: s.MinuteKey, DateKey: s.DateKey}
		}
		batch.Appointments = append(batch.Appointments, appt)
	}

	return batch
}

// Matcher wraps Match with the fire guard: at most one dispatch per minute,
// however many samples land inside it.
type Matcher struct {
	lastFiredMinute string
	lastFiredDate   string
}

// Check returns a batch to dispatch, or false when nothing is due or the
// minute was already dispatched. The guard is keyed on date and minute so
// a daily medication fires again the next day at the same minute-key.
func (m *Matcher) Check(s clock.Sample, sched models.Schedule) (*models.FiredAlarmBatch, bool) {
	batch := Match(s, sched)
	if batch.Empty() {
		return nil, false
	}
	if s.MinuteKey == m.lastFiredMinute && s.DateKey == m.lastFiredDate {
		return nil, false
	}

	m.lastFiredMinute = s.MinuteKey
	m.lastFiredDate = s.DateKey
	return batch, true
}

// LastFiredMinute returns the minute-key of the last dispatch, or ""
func (m *Matcher) LastFiredMinute() string {
	return m.lastFiredMinute
}
