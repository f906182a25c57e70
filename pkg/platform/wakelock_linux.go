//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
)

// WakeLock inhibits the screensaver through the session bus
type WakeLock struct {
	appName string

	mu     sync.Mutex
	conn   *dbus.Conn
	cookie uint32
}

// NewWakeLock creates a released lock
func NewWakeLock(appName string) *WakeLock {
	return &WakeLock{appName: appName}
}

// Acquire inhibits the screensaver. Acquiring a held lock is a no-op.
func (w *WakeLock) Acquire() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		return nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("%w: session bus: %v", ErrUnsupported, err)
	}

	var cookie uint32
	obj := conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverDest+".Inhibit", 0, w.appName, "Medication alarm active").Store(&cookie); err != nil {
		conn.Close()
		return fmt.Errorf("%w: inhibit: %v", ErrUnsupported, err)
	}

	w.conn = conn
	w.cookie = cookie
	return nil
}

// Release lifts the inhibition. Releasing a free lock is a no-op.
func (w *WakeLock) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	defer func() {
		w.conn.Close()
		w.conn = nil
	}()

	obj := w.conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverDest+".UnInhibit", 0, w.cookie).Err; err != nil {
		return fmt.Errorf("uninhibit: %w", err)
	}
	return nil
}
