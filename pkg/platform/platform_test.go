package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVibratorUnsupported(t *testing.T) {
	err := Vibrator{}.Vibrate([]time.Duration{time.Second})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestWakeLockReleaseWithoutAcquire(t *testing.T) {
	assert.NoError(t, NewWakeLock("carebell-test").Release())
}

func TestNotifierCloseBeforeShow(t *testing.T) {
	n := NewNotifier("carebell-test")
	assert.NoError(t, n.CloseMatching("alarm-"))
	n.Shutdown()
}
