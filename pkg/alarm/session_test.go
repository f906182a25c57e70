package alarm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/carebell/pkg/models"
)

func batchOf(minute string, meds ...models.Medication) *models.FiredAlarmBatch {
	return &models.FiredAlarmBatch{MinuteKey: minute, DateKey: "2026-03-01", Medications: meds}
}

func TestSessionStartsIdle(t *testing.T) {
	f := newFixture()
	assert.Equal(t, StateIdle, f.session.State())
	assert.Nil(t, f.session.Active())
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "ALARM_ACTIVE", StateActive.String())
}

func TestSessionDispatchStartsEverything(t *testing.T) {
	f := newFixture()

	entered := f.session.Dispatch(batchOf("08:00", med("m1", "Levodopa", "08:00", true)))
	require.True(t, entered)

	assert.Equal(t, StateActive, f.session.State())
	assert.Equal(t, 1, f.presenter.count("show"))
	assert.Equal(t, 1, f.sounder.count("start"))
	assert.Equal(t, 1, f.wakeLock.count("acquire"))
	assert.Eventually(t, func() bool { return f.notifier.count("notify") == 1 }, time.Second, 10*time.Millisecond)

	f.session.Dismiss()
}

func TestSessionIgnoresEmptyBatch(t *testing.T) {
	f := newFixture()
	assert.False(t, f.session.Dispatch(nil))
	assert.False(t, f.session.Dispatch(&models.FiredAlarmBatch{MinuteKey: "08:00"}))
	assert.Equal(t, StateIdle, f.session.State())
	assert.Equal(t, 0, f.presenter.count("show"))
}

func TestSessionMergesWhileActive(t *testing.T) {
	f := newFixture()

	require.True(t, f.session.Dispatch(batchOf("07:00", med("m1", "Levodopa", "07:00", true))))
	assert.False(t, f.session.Dispatch(batchOf("07:01", med("m2", "Levodopa CR", "07:01", true))))

	assert.Equal(t, 1, f.presenter.count("show"))
	assert.Equal(t, 1, f.presenter.count("update"))

	active := f.session.Active()
	require.NotNil(t, active)
	assert.Equal(t, 2, active.Len())
	assert.Equal(t, "07:01", active.MinuteKey)
	assert.Equal(t, 2, f.presenter.lastBatch().Len())

	assert.False(t, f.session.Dispatch(batchOf("07:01", med("m2", "Levodopa CR", "07:01", true))))
	assert.Equal(t, 1, f.presenter.count("update"))
	assert.Equal(t, 1, f.sounder.count("start"))

	f.session.Dismiss()
}

func TestSessionDismissIsTotalAndIdempotent(t *testing.T) {
	f := newFixture()
	require.True(t, f.session.Dispatch(batchOf("08:00", med("m1", "Levodopa", "08:00", true))))

	assert.True(t, f.session.Dismiss())
	assert.False(t, f.session.Dismiss())
	assert.False(t, f.session.Dismiss())

	assert.Equal(t, StateIdle, f.session.State())
	assert.Nil(t, f.session.Active())
	assert.Equal(t, 1, f.sounder.count("stop"))
	assert.Equal(t, 1, f.wakeLock.count("release"))
	assert.Equal(t, 1, f.presenter.count("close"))
}

func TestSessionDismissWhileIdleDoesNothing(t *testing.T) {
	f := newFixture()
	assert.False(t, f.session.Dismiss())
	assert.Equal(t, 0, f.sounder.count("stop"))
	assert.Equal(t, 0, f.presenter.count("close"))
}

func TestSessionToleratesMissingCapabilities(t *testing.T) {
	f := newFixture()
	f.sounder.err = errors.New("no audio device")
	f.wakeLock.err = errors.New("no session bus")

	require.True(t, f.session.Dispatch(batchOf("08:00", med("m1", "Levodopa", "08:00", true))))
	assert.Equal(t, StateActive, f.session.State())
	assert.Equal(t, 1, f.presenter.count("show"))

	require.True(t, f.session.Dismiss())
	assert.Equal(t, 0, f.wakeLock.count("release"))
}

func TestSessionWithoutFeedback(t *testing.T) {
	s := NewSession(Feedback{}, nil)
	require.True(t, s.Dispatch(batchOf("08:00", med("m1", "Levodopa", "08:00", true))))
	assert.True(t, s.Dismiss())
}

func TestSessionCanRestartAfterDismiss(t *testing.T) {
	f := newFixture()
	require.True(t, f.session.Dispatch(batchOf("08:00", med("m1", "Levodopa", "08:00", true))))
	f.session.Dismiss()
	require.True(t, f.session.Dispatch(batchOf("12:00", med("m2", "Amantadine", "12:00", true))))
	assert.Equal(t, 2, f.presenter.count("show"))
	f.session.Dismiss()
}

func TestHapticLoopStopsOnFailure(t *testing.T) {
	v := &fakeVibrator{err: errors.New("unsupported")}
	loop := NewHapticLoop(v, DefaultVibrationPattern, 10*time.Millisecond, zapNop())
	loop.Start()

	time.Sleep(50 * time.Millisecond)
	loop.Stop()
	loop.Stop()
	assert.Equal(t, 1, v.count("vibrate"))
}

func TestHapticLoopRepeats(t *testing.T) {
	v := &fakeVibrator{}
	loop := NewHapticLoop(v, DefaultVibrationPattern, 10*time.Millisecond, zapNop())
	loop.Start()

	assert.Eventually(t, func() bool { return v.count("vibrate") >= 3 }, time.Second, 5*time.Millisecond)
	loop.Stop()

	n := v.count("vibrate")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, v.count("vibrate"))
}
