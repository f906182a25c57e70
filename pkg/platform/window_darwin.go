//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

static void carebellAccessory(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
}

static int carebellFrontmost(void) {
    return [NSApp isActive] ? 1 : 0;
}

static void carebellRaise(void) {
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"

// HideDockIcon keeps CareBell in the menu bar only
func HideDockIcon() {
	C.carebellAccessory()
}

// Frontmost reports whether CareBell owns keyboard focus
func Frontmost() bool {
	return C.carebellFrontmost() == 1
}

// Raise steals focus for the alarm window
func Raise() {
	C.carebellRaise()
}
