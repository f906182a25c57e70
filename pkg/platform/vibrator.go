package platform

import "time"

// Vibrator drives a haptic motor. Desktop hosts have none.
type Vibrator struct{}

// Vibrate always reports ErrUnsupported on desktop hosts
func (Vibrator) Vibrate(pattern []time.Duration) error {
	return ErrUnsupported
}
