package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

func localTime(day, hhmmss string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", day+" "+hhmmss, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestController(f *fixture, now time.Time, sched models.Schedule) (*Controller, *clock.Fixed) {
	fixed := clock.NewFixed(now)
	return NewController(clock.NewSampler(fixed, time.Second), f.session, sched, nil), fixed
}

func TestControllerThreePollsOneDispatch(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:00", true)}}
	c, _ := newTestController(f, localTime("2026-03-01", "07:59:58"), sched)

	for _, ts := range []string{"08:00:00", "08:00:05", "08:00:10"} {
		c.check(clock.SampleAt(localTime("2026-03-01", ts)))
	}

	assert.Equal(t, 1, f.presenter.count("show"))
	assert.Equal(t, 1, f.sounder.count("start"))
	assert.Equal(t, StateActive, f.session.State())
}

func TestControllerConsecutiveMinutes(t *testing.T) {
	sched := models.Schedule{Medications: []models.Medication{
		med("m1", "Levodopa", "07:00", true),
		med("m2", "Levodopa CR", "07:01", true),
	}}

	t.Run("dismissed in between", func(t *testing.T) {
		f := newFixture()
		c, _ := newTestController(f, localTime("2026-03-01", "06:59:00"), sched)

		c.check(clock.SampleAt(localTime("2026-03-01", "07:00:02")))
		require.Equal(t, StateActive, f.session.State())
		f.session.Dismiss()

		c.check(clock.SampleAt(localTime("2026-03-01", "07:00:40")))
		assert.Equal(t, StateIdle, f.session.State())

		c.check(clock.SampleAt(localTime("2026-03-01", "07:01:01")))
		assert.Equal(t, StateActive, f.session.State())
		assert.Equal(t, 2, f.presenter.count("show"))
		assert.Equal(t, "m2", f.session.Active().Medications[0].ID)
	})

	t.Run("still active", func(t *testing.T) {
		f := newFixture()
		c, _ := newTestController(f, localTime("2026-03-01", "06:59:00"), sched)

		c.check(clock.SampleAt(localTime("2026-03-01", "07:00:02")))
		c.check(clock.SampleAt(localTime("2026-03-01", "07:01:01")))

		assert.Equal(t, 1, f.presenter.count("show"))
		assert.Equal(t, 1, f.presenter.count("update"))
		assert.Equal(t, 2, f.session.Active().Len())
	})
}

func TestControllerSkipsDisabled(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:00", false)}}
	c, _ := newTestController(f, localTime("2026-03-01", "08:00:00"), sched)

	c.check(clock.SampleAt(localTime("2026-03-01", "08:00:00")))
	assert.Equal(t, StateIdle, f.session.State())
}

func TestControllerResumeReconciles(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:00", true)}}
	c, fixed := newTestController(f, localTime("2026-03-01", "07:50:00"), sched)

	c.applyVisibility(false)
	fixed.Set(localTime("2026-03-01", "08:00:20"))
	c.applyVisibility(true)

	assert.Equal(t, StateActive, f.session.State())
	assert.Equal(t, 1, f.presenter.count("show"))
}

func TestControllerResumeDoesNotRefire(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:00", true)}}
	c, fixed := newTestController(f, localTime("2026-03-01", "08:00:01"), sched)

	c.check(c.sampler.Now())
	f.session.Dismiss()

	c.applyVisibility(false)
	fixed.Set(localTime("2026-03-01", "08:00:30"))
	c.applyVisibility(true)

	assert.Equal(t, StateIdle, f.session.State())
	assert.Equal(t, 1, f.presenter.count("show"))
}

func TestControllerResumeWhileActiveSkipsCheck(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{
		med("m1", "Levodopa", "08:00", true),
		med("m2", "Entacapone", "08:01", true),
	}}
	c, fixed := newTestController(f, localTime("2026-03-01", "08:00:01"), sched)

	c.check(c.sampler.Now())
	c.applyVisibility(false)
	fixed.Set(localTime("2026-03-01", "08:01:10"))
	c.applyVisibility(true)

	assert.Equal(t, 0, f.presenter.count("update"))
	assert.Equal(t, 1, f.session.Active().Len())
}

func TestControllerRecoversFromPanic(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:01", true)}}
	c, _ := newTestController(f, localTime("2026-03-01", "08:00:00"), sched)

	calls := 0
	c.OnMinute(func(clock.Sample, models.Schedule) {
		calls++
		if calls == 1 {
			panic("observer exploded")
		}
	})

	assert.NotPanics(t, func() {
		c.check(clock.SampleAt(localTime("2026-03-01", "08:00:00")))
	})
	c.check(clock.SampleAt(localTime("2026-03-01", "08:01:00")))

	assert.Equal(t, 2, calls)
	assert.Equal(t, StateActive, f.session.State())
}

func TestControllerObserverOncePerMinute(t *testing.T) {
	f := newFixture()
	c, _ := newTestController(f, localTime("2026-03-01", "08:00:00"), models.Schedule{})

	var minutes []string
	c.OnMinute(func(s clock.Sample, _ models.Schedule) { minutes = append(minutes, s.MinuteKey) })

	for _, ts := range []string{"08:00:00", "08:00:05", "08:01:00", "08:01:05"} {
		c.check(clock.SampleAt(localTime("2026-03-01", ts)))
	}
	assert.Equal(t, []string{"08:00", "08:01"}, minutes)
}

func TestControllerRun(t *testing.T) {
	f := newFixture()
	sched := models.Schedule{Medications: []models.Medication{med("m1", "Levodopa", "08:00", true)}}
	c, fixed := newTestController(f, localTime("2026-03-01", "08:00:00"), sched)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool { return f.presenter.count("show") == 1 }, 2*time.Second, 10*time.Millisecond)

	c.UpdateSchedule(models.Schedule{Version: 2, Medications: []models.Medication{
		med("m1", "Levodopa", "08:00", true),
		med("m2", "Entacapone", "08:01", true),
	}})
	time.Sleep(50 * time.Millisecond)
	fixed.Set(localTime("2026-03-01", "08:01:00"))

	assert.Eventually(t, func() bool { return f.presenter.count("update") == 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not stop")
	}
	f.session.Dismiss()
}
