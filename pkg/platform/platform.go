// Package platform wraps host capabilities that only some operating systems
// offer: window activation, the stay-awake lock, vibration and native
// notifications. Missing capabilities report ErrUnsupported.
package platform

import "errors"

// ErrUnsupported is returned when the host lacks a capability
var ErrUnsupported = errors.New("platform: capability not supported")
