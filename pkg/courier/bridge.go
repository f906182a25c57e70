package courier

import (
	"context"
	"slices"

	"github.com/borgmon/carebell/pkg/models"
)

// Gate reports whether system notifications are currently allowed
type Gate func() bool

// Forward posts a SCHEDULE_ALARMS message whenever the enabled medications
// of a snapshot differ from the last ones posted. Snapshots seen while the
// gate is closed are skipped, and the next one after it opens is always
// posted. It returns when ctx is done or snapshots is closed.
func (c *Courier) Forward(ctx context.Context, snapshots <-chan models.Schedule, allowed Gate) {
	var (
		last   []models.Medication
		posted bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case sched, ok := <-snapshots:
			if !ok {
				return
			}
			if allowed != nil && !allowed() {
				posted = false
				continue
			}
			msg := ScheduleAlarms(sched)
			if posted && slices.Equal(msg.Medications, last) {
				continue
			}
			if c.Post(msg) {
				last, posted = msg.Medications, true
			}
		}
	}
}

// GatedNotifier forwards foreground alarms to the courier only while its
// gate is open
type GatedNotifier struct {
	courier *Courier
	allowed Gate
}

// Gated wraps the courier's NotifyAlarm behind allowed
func (c *Courier) Gated(allowed Gate) *GatedNotifier {
	return &GatedNotifier{courier: c, allowed: allowed}
}

// NotifyAlarm posts a TRIGGER_ALARM message when allowed
func (g *GatedNotifier) NotifyAlarm(batch *models.FiredAlarmBatch) error {
	if g.allowed != nil && !g.allowed() {
		return nil
	}
	return g.courier.NotifyAlarm(batch)
}
