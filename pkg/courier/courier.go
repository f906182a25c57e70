// Package courier is the background delivery channel. It receives schedule
// snapshots and immediate-alert requests from the foreground, keeps a
// min-heap of pending host notifications and shows each one when due,
// independently of the foreground alarm loop.
package courier

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/spool"
)

const (
	maxSleepCap = 60 * time.Second

	// DefaultGrace is how late a spooled delivery may still be shown after a restart
	DefaultGrace = 15 * time.Minute
)

// Host shows and closes system notifications
type Host interface {
	Show(n Notification) error
	CloseTagged(prefix string) error
}

// Queue persists pending deliveries across restarts
type Queue interface {
	ReplacePrefix(ctx context.Context, prefix string, ds []spool.Delivery) error
	Add(ctx context.Context, ds ...spool.Delivery) error
	Pending(ctx context.Context) ([]spool.Delivery, error)
	MarkDelivered(ctx context.Context, tag string) error
}

// Options tune a Courier
type Options struct {
	Offsets []int         // ladder offsets in minutes; defaults to 0,5,10
	Icon    string        // icon reference carried by every notification
	Grace   time.Duration // restart grace; defaults to DefaultGrace
	Clock   clock.Clock
	OnOpen  func() // raise the application window
}

// Courier owns the background schedule. Its heap is touched only by Run.
type Courier struct {
	host   Host
	queue  Queue
	opts   Options
	clock  clock.Clock
	logger *zap.Logger

	inbox chan Message

	h                 deliveryHeap
	planned           map[string]models.Medication // by ID, as last planned
	timestampDelivery bool
}

// New creates a courier. A nil queue starts it in immediate-only mode,
// where only the zero-offset rung of each ladder is kept.
func New(host Host, queue Queue, opts Options, logger *zap.Logger) *Courier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Offsets) == 0 {
		opts.Offsets = []int{0, 5, 10}
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	return &Courier{
		host:              host,
		queue:             queue,
		opts:              opts,
		clock:             opts.Clock,
		logger:            logger,
		inbox:             make(chan Message, 16),
		planned:           make(map[string]models.Medication),
		timestampDelivery: queue != nil,
	}
}

// Post hands a message to the courier without blocking. A full inbox drops
// the message; the foreground alarm still fires on its own.
func (c *Courier) Post(msg Message) bool {
	select {
	case c.inbox <- msg:
		return true
	default:
		c.logger.Warn("Courier inbox full, message dropped", zap.String("type", msg.Type))
		return false
	}
}

// NotifyAlarm mirrors an active foreground alarm as a system notification
func (c *Courier) NotifyAlarm(batch *models.FiredAlarmBatch) error {
	if batch.Empty() {
		return nil
	}
	c.Post(TriggerAlarm(batch))
	return nil
}

// HandleAction reacts to a click on one of our notifications. Every action
// closes the notification and raises the application; confirm is not
// recorded as an intake.
func (c *Courier) HandleAction(tag, action string) {
	if err := c.host.CloseTagged(tag); err != nil {
		c.logger.Debug("Close notification failed", zap.String("tag", tag), zap.Error(err))
	}
	c.logger.Info("Notification action", zap.String("tag", tag), zap.String("action", action))

	if c.opts.OnOpen != nil {
		c.opts.OnOpen()
	}
}

// Run restores spooled deliveries and then serves the inbox until ctx is
// cancelled
func (c *Courier) Run(ctx context.Context) error {
	c.restore(ctx)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if c.h.Len() == 0 {
			return nil
		}
		dur := c.h[0].At.Sub(c.clock.Now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	c.logger.Info("Courier started",
		zap.Bool("timestamp_delivery", c.timestampDelivery),
		zap.Int("pending", c.h.Len()))

	timerCh := resetTimer()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Courier stopped")
			return nil

		case msg := <-c.inbox:
			c.handle(ctx, msg)
			timerCh = resetTimer()

		case <-timerCh:
			c.fireDue(ctx, c.clock.Now())
			timerCh = resetTimer()
		}
	}
}

func (c *Courier) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeScheduleAlarms:
		c.sync(ctx, msg.Medications)
	case TypeTriggerAlarm:
		c.show(ctx, TriggerNotification(msg, c.opts.Icon))
	default:
		c.logger.Warn("Unknown courier message", zap.String("type", msg.Type))
	}
}

// sync re-plans the ladder of every medication that was added, edited or
// removed since the last sync. Rungs of unchanged medications stay pending,
// including ones already shown today.
func (c *Courier) sync(ctx context.Context, meds []models.Medication) {
	next := make(map[string]models.Medication, len(meds))
	var changed []models.Medication
	for _, m := range meds {
		next[m.ID] = m
		if prev, ok := c.planned[m.ID]; !ok || prev != m {
			changed = append(changed, m)
		}
	}
	var removed []string
	for id := range c.planned {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)

	if len(changed) == 0 && len(removed) == 0 {
		c.logger.Debug("Alarm ladder unchanged", zap.Int("medications", len(meds)))
		return
	}

	now := c.clock.Now()
	dropped := 0
	for _, m := range changed {
		if _, ok := c.planned[m.ID]; ok {
			dropped += c.drop(m.ID)
		}
	}
	for _, id := range removed {
		dropped += c.drop(id)
	}

	var plan []Delivery
	for _, m := range changed {
		rungs, err := PlanLadder([]models.Medication{m}, now, c.offsets(), c.opts.Icon)
		if err != nil {
			c.logger.Warn("Medication not scheduled", zap.String("id", m.ID), zap.Error(err))
		}
		if c.timestampDelivery {
			if err := c.queue.ReplacePrefix(ctx, medTagPrefix(m.ID), toRows(rungs)); err != nil {
				c.degrade(err, meds, next, now)
				return
			}
		}
		plan = append(plan, rungs...)
	}
	for _, id := range removed {
		if c.timestampDelivery {
			if err := c.queue.ReplacePrefix(ctx, medTagPrefix(id), nil); err != nil {
				c.degrade(err, meds, next, now)
				return
			}
		}
	}

	for _, d := range plan {
		heapPush(&c.h, d)
	}
	c.planned = next

	c.logger.Info("Alarms scheduled",
		zap.Int("medications", len(meds)),
		zap.Int("changed", len(changed)),
		zap.Int("removed", len(removed)),
		zap.Int("deliveries", len(plan)),
		zap.Int("replaced", dropped))
}

// drop removes a medication's pending rungs and closes its shown ones
func (c *Courier) drop(id string) int {
	prefix := medTagPrefix(id)
	if err := c.host.CloseTagged(prefix); err != nil {
		c.logger.Debug("Clearing shown alarms failed", zap.String("prefix", prefix), zap.Error(err))
	}
	return heapRemovePrefix(&c.h, prefix)
}

// degrade switches to immediate-only delivery and rebuilds the whole ladder
// in memory
func (c *Courier) degrade(err error, meds []models.Medication, next map[string]models.Medication, now time.Time) {
	c.logger.Warn("Spool unavailable, falling back to immediate-only delivery", zap.Error(err))
	c.timestampDelivery = false

	heapRemovePrefix(&c.h, AlarmTagPrefix)
	plan, err := PlanLadder(meds, now, c.offsets(), c.opts.Icon)
	if err != nil {
		c.logger.Warn("Medications not scheduled", zap.Error(err))
	}
	for _, d := range plan {
		heapPush(&c.h, d)
	}
	c.planned = next
}

func (c *Courier) offsets() []int {
	if !c.timestampDelivery {
		return []int{0}
	}
	return c.opts.Offsets
}

// fireDue shows every delivery due at or before now. Recurring deliveries
// are planned again a day later.
func (c *Courier) fireDue(ctx context.Context, now time.Time) {
	var again []Delivery
	for c.h.Len() > 0 && !c.h[0].At.After(now) {
		d := heapPop(&c.h)
		c.show(ctx, d.Notification)
		if d.Recurring {
			again = append(again, nextDay(d, now.Location()))
		}
	}
	if len(again) == 0 {
		return
	}

	for _, d := range again {
		heapPush(&c.h, d)
	}
	if c.timestampDelivery {
		if err := c.queue.Add(ctx, toRows(again)...); err != nil {
			c.logger.Warn("Spooling next-day deliveries failed", zap.Error(err))
		}
	}
}

func (c *Courier) show(ctx context.Context, n Notification) {
	if err := c.host.Show(n); err != nil {
		c.logger.Warn("Notification not shown", zap.String("tag", n.Tag), zap.Error(err))
	}
	if c.timestampDelivery && strings.HasPrefix(n.Tag, AlarmTagPrefix) {
		if err := c.queue.MarkDelivered(ctx, n.Tag); err != nil {
			c.logger.Debug("Mark delivered failed", zap.String("tag", n.Tag), zap.Error(err))
		}
	}
}

// restore reloads undelivered rows. Late rows within the grace period are
// shown at once; older ones are skipped. Recurring rows are planned again.
func (c *Courier) restore(ctx context.Context) {
	if !c.timestampDelivery {
		return
	}
	rows, err := c.queue.Pending(ctx)
	if err != nil {
		c.logger.Warn("Spool unreadable, falling back to immediate-only delivery", zap.Error(err))
		c.timestampDelivery = false
		return
	}

	now := c.clock.Now()
	var (
		late, future, stale int
		rebased             []Delivery
	)
	for _, row := range rows {
		var d Delivery
		if err := json.Unmarshal(row.Payload, &d); err != nil {
			c.logger.Warn("Dropping unreadable spool row", zap.String("tag", row.Tag), zap.Error(err))
			continue
		}
		if d.Medication.ID != "" {
			c.planned[d.Medication.ID] = d.Medication
		}
		switch {
		case d.At.Before(now.Add(-c.opts.Grace)):
			stale++
			if err := c.queue.MarkDelivered(ctx, row.Tag); err != nil {
				c.logger.Debug("Mark delivered failed", zap.String("tag", row.Tag), zap.Error(err))
			}
			if !d.Recurring {
				continue
			}
			next, err := rebase(d, now)
			if err != nil {
				c.logger.Warn("Dropping spool row", zap.String("tag", row.Tag), zap.Error(err))
				continue
			}
			heapPush(&c.h, next)
			rebased = append(rebased, next)
		case d.At.After(now):
			future++
			heapPush(&c.h, d)
		default:
			late++
			c.show(ctx, d.Notification)
			if d.Recurring {
				next := nextDay(d, now.Location())
				heapPush(&c.h, next)
				rebased = append(rebased, next)
			}
		}
	}

	if len(rebased) > 0 {
		if err := c.queue.Add(ctx, toRows(rebased)...); err != nil {
			c.logger.Warn("Spooling rebased deliveries failed", zap.Error(err))
		}
	}

	if len(rows) > 0 {
		c.logger.Info("Spool restored",
			zap.Int("future", future),
			zap.Int("late", late),
			zap.Int("stale", stale))
	}
}

// nextDay moves a delivery to the same wall-clock time in loc on the next day
func nextDay(d Delivery, loc *time.Location) Delivery {
	next := d
	next.At = d.At.In(loc).AddDate(0, 0, 1)
	next.Notification.Tag = retag(d.Notification.Tag, next.At)
	return next
}

// rebase moves a stale recurring delivery to its next occurrence after now
func rebase(d Delivery, now time.Time) (Delivery, error) {
	next := d
	local := d.At.In(now.Location())
	at, err := NextOccurrence(models.TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}, now)
	if err != nil {
		return Delivery{}, err
	}
	next.At = at
	next.Notification.Tag = retag(d.Notification.Tag, next.At)
	return next, nil
}

// retag swaps the timestamp suffix of an alarm tag
func retag(tag string, at time.Time) string {
	i := strings.LastIndex(tag, "-")
	if i < 0 || !strings.HasPrefix(tag, AlarmTagPrefix) {
		return tag
	}
	return alarmTag(strings.TrimPrefix(tag[:i], AlarmTagPrefix), at)
}

func toRows(ds []Delivery) []spool.Delivery {
	rows := make([]spool.Delivery, 0, len(ds))
	for _, d := range ds {
		payload, err := json.Marshal(d)
		if err != nil {
			continue
		}
		rows = append(rows, spool.Delivery{
			Tag:     d.Notification.Tag,
			ItemID:  d.Notification.Data.ItemID,
			FireAt:  d.At,
			Payload: payload,
		})
	}
	return rows
}
