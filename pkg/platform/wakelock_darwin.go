//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <stdlib.h>
#include <IOKit/pwr_mgt/IOPMLib.h>

static int carebellPreventSleep(const char *reason, unsigned int *id) {
    CFStringRef name = CFStringCreateWithCString(kCFAllocatorDefault, reason, kCFStringEncodingUTF8);
    IOPMAssertionID assertion = 0;
    IOReturn rc = IOPMAssertionCreateWithName(kIOPMAssertionTypePreventUserIdleDisplaySleep,
        kIOPMAssertionLevelOn, name, &assertion);
    CFRelease(name);
    if (rc != kIOReturnSuccess) {
        return (int)rc;
    }
    *id = assertion;
    return 0;
}

static int carebellAllowSleep(unsigned int id) {
    return (int)IOPMAssertionRelease(id);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// WakeLock holds an IOKit power assertion that keeps the display awake
type WakeLock struct {
	appName string

	mu        sync.Mutex
	held      bool
	assertion C.uint
}

// NewWakeLock creates a released lock
func NewWakeLock(appName string) *WakeLock {
	return &WakeLock{appName: appName}
}

// Acquire keeps the display from idling to sleep. Acquiring a held lock is
// a no-op.
func (w *WakeLock) Acquire() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.held {
		return nil
	}

	reason := C.CString(w.appName + ": medication alarm active")
	defer C.free(unsafe.Pointer(reason))

	var id C.uint
	if rc := C.carebellPreventSleep(reason, &id); rc != 0 {
		return fmt.Errorf("%w: power assertion failed (0x%x)", ErrUnsupported, uint32(rc))
	}
	w.assertion = id
	w.held = true
	return nil
}

// Release drops the power assertion. Releasing a free lock is a no-op.
func (w *WakeLock) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.held {
		return nil
	}
	w.held = false
	if rc := C.carebellAllowSleep(w.assertion); rc != 0 {
		return fmt.Errorf("release power assertion: 0x%x", uint32(rc))
	}
	return nil
}
