package clock

import (
	"context"
	"time"
)

// Sampler invokes a callback with the current Sample on a fixed period.
// It keeps no state between ticks; recovering a missed window after the
// process was suspended is the caller's job.
type Sampler struct {
	clock  Clock
	period time.Duration
}

// NewSampler creates a sampler; the period is clamped to [MinPeriod, MaxPeriod]
func NewSampler(c Clock, period time.Duration) *Sampler {
	if c == nil {
		c = System{}
	}
	return &Sampler{clock: c, period: ClampPeriod(period)}
}

// Period returns the effective sampling period
func (s *Sampler) Period() time.Duration {
	return s.period
}

// Now samples the clock once
func (s *Sampler) Now() Sample {
	return SampleAt(s.clock.Now())
}

// Run samples immediately and then every period until ctx is done
func (s *Sampler) Run(ctx context.Context, onSample func(Sample)) {
	onSample(s.Now())

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			onSample(s.Now())
		}
	}
}
