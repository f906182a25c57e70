package components

import (
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestHoldButtonCompletesAfterHold(t *testing.T) {
	test.NewApp()
	var done atomic.Int32
	b := NewHoldButton("Dismiss", 150*time.Millisecond, func() { done.Add(1) })

	b.Press()
	assert.Eventually(t, func() bool { return done.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, b.Progress())

	b.Release()
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), done.Load())
}

func TestHoldButtonEarlyReleaseResets(t *testing.T) {
	test.NewApp()
	var done atomic.Int32
	b := NewHoldButton("Dismiss", 300*time.Millisecond, func() { done.Add(1) })

	b.Press()
	time.Sleep(120 * time.Millisecond)
	b.Release()
	time.Sleep(300 * time.Millisecond)

	assert.Zero(t, done.Load())
	assert.Zero(t, b.Progress())
}

func TestListManagerRemoveSelected(t *testing.T) {
	test.NewApp()
	var removed []string
	lm, _ := NewListManager([]string{"a", "b", "c"}, ListManagerConfig[string]{
		Render:   func(s string) string { return s },
		OnRemove: func(s string) { removed = append(removed, s) },
	})

	lm.RemoveSelected()
	assert.Empty(t, removed)

	lm.list.Select(1)
	selected, ok := lm.Selected()
	assert.True(t, ok)
	assert.Equal(t, "b", selected)
	lm.RemoveSelected()
	assert.Equal(t, []string{"b"}, removed)
	assert.Equal(t, []string{"a", "c"}, lm.Items())
	_, ok = lm.Selected()
	assert.False(t, ok)
}
