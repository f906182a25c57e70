//go:build !darwin

package platform

// HideDockIcon is a no-op outside macOS
func HideDockIcon() {}

// Frontmost always reports true outside macOS; fyne's RequestFocus covers it
func Frontmost() bool { return true }

// Raise is a no-op outside macOS
func Raise() {}
