package tips

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

// TipSource produces a tip; it must not fail
type TipSource interface {
	DailyTip(ctx context.Context) string
}

// TipCache remembers the last tip and the day it was shown
type TipCache interface {
	LastTip() (date, text string)
	SaveTip(day time.Time, text string)
}

// Daily fetches one tip per day when the earliest enabled medication is due.
// Fetching runs in its own goroutine so the alarm loop never waits on it.
type Daily struct {
	source  TipSource
	cache   TipCache
	enabled func() bool
	onTip   func(tip string)
	timeout time.Duration
	logger  *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewDaily creates the trigger. onTip is called from a background goroutine.
func NewDaily(source TipSource, cache TipCache, enabled func() bool, onTip func(string), timeout time.Duration, logger *zap.Logger) *Daily {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Daily{source: source, cache: cache, enabled: enabled, onTip: onTip, timeout: timeout, logger: logger}
}

// Observe is called once per sampled minute
func (d *Daily) Observe(s clock.Sample, sched models.Schedule) {
	if d.enabled != nil && !d.enabled() {
		return
	}
	first, ok := models.EarliestEnabled(sched.Medications)
	if !ok || first.String() != s.MinuteKey {
		return
	}
	if date, _ := d.cache.LastTip(); date == s.DateKey {
		return
	}
	if !d.running.CompareAndSwap(false, true) {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		tip := d.source.DailyTip(ctx)
		d.cache.SaveTip(s.At, tip)
		d.logger.Info("Daily tip ready", zap.String("date", s.DateKey))
		if d.onTip != nil {
			d.onTip(tip)
		}
	}()
}

// Wait blocks until in-flight fetches finish
func (d *Daily) Wait() {
	d.wg.Wait()
}
