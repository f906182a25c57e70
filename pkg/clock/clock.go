// Package clock samples local wall-clock time at a fixed resolution and
// reports it as minute-keys ("HH:MM") and date-keys ("YYYY-MM-DD").
package clock

import (
	"sync"
	"time"

	"github.com/borgmon/carebell/pkg/models"
)

const (
	// MinPeriod and MaxPeriod bound the sampling resolution. Anything coarser
	// than MaxPeriod risks skipping a minute when polling and drift interact.
	MinPeriod     = time.Second
	MaxPeriod     = 5 * time.Second
	DefaultPeriod = MaxPeriod
)

// Clock reports the current wall-clock time
type Clock interface {
	Now() time.Time
}

// System is the real local clock
type System struct{}

// Now returns time.Now()
func (System) Now() time.Time { return time.Now() }

// Fixed is a settable clock for tests and previews
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed returns a clock stopped at t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now returns the stored time
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set moves the clock to t
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// Sample is one observation of the clock
type Sample struct {
	At        time.Time
	MinuteKey string // HH:MM
	DateKey   string // YYYY-MM-DD
}

// SampleAt quantizes t to a Sample
func SampleAt(t time.Time) Sample {
	return Sample{
		At:        t,
		MinuteKey: models.MinuteKey(t),
		DateKey:   models.DateKey(t),
	}
}

// ClampPeriod keeps a sampling period within [MinPeriod, MaxPeriod]
func ClampPeriod(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultPeriod
	case d < MinPeriod:
		return MinPeriod
	case d > MaxPeriod:
		return MaxPeriod
	default:
		return d
	}
}
