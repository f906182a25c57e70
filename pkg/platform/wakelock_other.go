//go:build !linux && !darwin

package platform

// WakeLock is unavailable on this host
type WakeLock struct{}

// NewWakeLock returns a lock that can never be acquired
func NewWakeLock(appName string) *WakeLock {
	return &WakeLock{}
}

// Acquire reports ErrUnsupported
func (w *WakeLock) Acquire() error {
	return ErrUnsupported
}

// Release is a no-op
func (w *WakeLock) Release() error {
	return nil
}
