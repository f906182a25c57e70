package main

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/courier"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/platform"
)

type fakeToaster struct {
	err    error
	shown  []platform.Toast
	closed []string
}

func (f *fakeToaster) Show(t platform.Toast) error {
	if f.err != nil {
		return f.err
	}
	f.shown = append(f.shown, t)
	return nil
}

func (f *fakeToaster) CloseMatching(prefix string) error {
	f.closed = append(f.closed, prefix)
	return nil
}

func ladderNotification() courier.Notification {
	med := models.Medication{ID: "m1", Name: "Levodopa", Dosage: "100mg", Time: models.MustTimeOfDay("08:00"), Enabled: true}
	return courier.LadderNotification(med, time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local), "carebell")
}

func TestToToast(t *testing.T) {
	toast := toToast(ladderNotification())

	assert.Equal(t, "🚨 ALERT: Levodopa", toast.Title)
	assert.True(t, toast.Persistent)
	assert.True(t, toast.Critical)
	require.Len(t, toast.Actions, 2)
	assert.Equal(t, courier.ActionConfirm, toast.Actions[0].ID)
	assert.Equal(t, courier.ActionOpen, toast.Actions[1].ID)
}

func TestNotificationHostNative(t *testing.T) {
	native := &fakeToaster{}
	var fallback []*fyne.Notification
	h := &notificationHost{native: native, send: func(n *fyne.Notification) { fallback = append(fallback, n) }, logger: zap.NewNop()}

	require.NoError(t, h.Show(ladderNotification()))
	require.NoError(t, h.CloseTagged(courier.AlarmTagPrefix))

	assert.Len(t, native.shown, 1)
	assert.Empty(t, fallback)
	assert.Equal(t, []string{courier.AlarmTagPrefix}, native.closed)
}

func TestNotificationHostFallsBack(t *testing.T) {
	native := &fakeToaster{err: platform.ErrUnsupported}
	var fallback []*fyne.Notification
	h := &notificationHost{native: native, send: func(n *fyne.Notification) { fallback = append(fallback, n) }, logger: zap.NewNop()}

	require.NoError(t, h.Show(ladderNotification()))
	require.Len(t, fallback, 1)
	assert.Equal(t, "🚨 ALERT: Levodopa", fallback[0].Title)
}
