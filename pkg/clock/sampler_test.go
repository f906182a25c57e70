package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleAt(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	s := SampleAt(time.Date(2026, 1, 2, 7, 5, 59, 999, loc))

	assert.Equal(t, "07:05", s.MinuteKey)
	assert.Equal(t, "2026-01-02", s.DateKey)
}

func TestClampPeriod(t *testing.T) {
	assert.Equal(t, DefaultPeriod, ClampPeriod(0))
	assert.Equal(t, MinPeriod, ClampPeriod(100*time.Millisecond))
	assert.Equal(t, MaxPeriod, ClampPeriod(time.Minute))
	assert.Equal(t, 3*time.Second, ClampPeriod(3*time.Second))
}

func TestSamplerRunSamplesImmediately(t *testing.T) {
	fixed := NewFixed(time.Date(2026, 10, 16, 8, 0, 1, 0, time.Local))
	s := NewSampler(fixed, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Sample, 8)
	go s.Run(ctx, func(sample Sample) { got <- sample })

	select {
	case first := <-got:
		assert.Equal(t, "08:00", first.MinuteKey)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected an immediate sample")
	}

	fixed.Advance(time.Minute)
	select {
	case next := <-got:
		assert.Equal(t, "08:01", next.MinuteKey)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a periodic sample")
	}
}

func TestSamplerStopsOnCancel(t *testing.T) {
	s := NewSampler(NewFixed(time.Now()), time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, func(Sample) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "sampler did not stop")
	}
}
