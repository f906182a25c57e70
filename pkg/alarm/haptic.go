package alarm

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultVibrationPattern alternates vibrate/pause durations
var DefaultVibrationPattern = []time.Duration{
	500 * time.Millisecond, 200 * time.Millisecond,
	500 * time.Millisecond, 200 * time.Millisecond,
	800 * time.Millisecond,
}

// DefaultHapticInterval is how often the pattern is replayed
const DefaultHapticInterval = 2 * time.Second

// Vibrator plays a vibrate/pause pattern once
type Vibrator interface {
	Vibrate(pattern []time.Duration) error
}

// HapticLoop replays a vibration pattern on a fixed interval until stopped.
// The first failure ends the loop; hosts without a vibrator simply get none.
type HapticLoop struct {
	vibrator Vibrator
	pattern  []time.Duration
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewHapticLoop creates a stopped loop
func NewHapticLoop(v Vibrator, pattern []time.Duration, interval time.Duration, logger *zap.Logger) *HapticLoop {
	return &HapticLoop{
		vibrator: v,
		pattern:  pattern,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start vibrates immediately and then every interval
func (h *HapticLoop) Start() {
	go func() {
		defer close(h.done)

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			if err := h.vibrator.Vibrate(h.pattern); err != nil {
				h.logger.Debug("Haptic feedback unavailable", zap.Error(err))
				return
			}
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (h *HapticLoop) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	<-h.done
}
