package alarm

import (
	"context"

	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

// MinuteObserver is told about every new minute-key the controller samples,
// with the schedule in force at that moment.
type MinuteObserver func(s clock.Sample, sched models.Schedule)

// Controller owns the foreground path: it feeds clock samples through the
// matcher into the session and re-checks when the app becomes visible.
// All matching happens on the Run goroutine.
type Controller struct {
	sampler *clock.Sampler
	session *Session
	matcher Matcher
	logger  *zap.Logger

	schedules  chan models.Schedule
	visibility chan bool
	observers  []MinuteObserver

	current    models.Schedule
	visible    bool
	lastMinute string
}

// NewController creates a controller over an initial schedule
func NewController(sampler *clock.Sampler, session *Session, initial models.Schedule, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sampler:    sampler,
		session:    session,
		logger:     logger,
		schedules:  make(chan models.Schedule, 1),
		visibility: make(chan bool, 1),
		current:    initial.Clone(),
		visible:    true,
	}
}

// Session returns the alarm session driven by this controller
func (c *Controller) Session() *Session {
	return c.session
}

// OnMinute registers an observer. Must be called before Run.
func (c *Controller) OnMinute(fn MinuteObserver) {
	c.observers = append(c.observers, fn)
}

// UpdateSchedule hands a new schedule to the loop. Only the latest pending
// schedule is kept.
func (c *Controller) UpdateSchedule(sched models.Schedule) {
	sched = sched.Clone()
	for {
		select {
		case c.schedules <- sched:
			return
		default:
		}
		select {
		case <-c.schedules:
		default:
		}
	}
}

// SetVisible reports a visibility change of the application. Becoming
// visible while no alarm is active triggers an immediate check.
func (c *Controller) SetVisible(visible bool) {
	for {
		select {
		case c.visibility <- visible:
			return
		default:
		}
		select {
		case <-c.visibility:
		default:
		}
	}
}

// Run drives the loop until ctx is cancelled
func (c *Controller) Run(ctx context.Context) error {
	samples := make(chan clock.Sample)
	go c.sampler.Run(ctx, func(s clock.Sample) {
		select {
		case samples <- s:
		case <-ctx.Done():
		}
	})

	c.logger.Info("Alarm controller started", zap.Duration("period", c.sampler.Period()))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Alarm controller stopped")
			return nil

		case sched := <-c.schedules:
			c.applySchedule(sched)

		case visible := <-c.visibility:
			c.applyVisibility(visible)

		case s := <-samples:
			c.check(s)
		}
	}
}

func (c *Controller) applySchedule(sched models.Schedule) {
	c.current = sched
	c.logger.Debug("Schedule updated",
		zap.Uint64("version", sched.Version),
		zap.Int("medications", len(sched.Medications)),
		zap.Int("appointments", len(sched.Appointments)))
}

func (c *Controller) applyVisibility(visible bool) {
	wasHidden := !c.visible
	c.visible = visible
	if !visible || !wasHidden {
		return
	}
	if c.session.State() != StateIdle {
		return
	}
	c.logger.Debug("Resumed, reconciling")
	c.check(c.sampler.Now())
}

// check runs one evaluation. A panic here is logged and swallowed so the
// next sample still gets evaluated.
func (c *Controller) check(s clock.Sample) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Alarm check failed",
				zap.Any("panic", r),
				zap.String("minute", s.MinuteKey))
		}
	}()

	if batch, ok := c.matcher.Check(s, c.current); ok {
		c.session.Dispatch(batch)
	}

	if s.MinuteKey == c.lastMinute {
		return
	}
	c.lastMinute = s.MinuteKey
	for _, fn := range c.observers {
		fn(s, c.current)
	}
}
